package handlers

import (
	"net/http"
	"strings"

	"github.com/sah-lishi/backend-journey/internal/auth"
	"github.com/sah-lishi/backend-journey/internal/feed"
	"github.com/sah-lishi/backend-journey/internal/httpserver"
	"github.com/sah-lishi/backend-journey/internal/videos"
)

// VideoHandler serves the video feed and the video use cases.
type VideoHandler struct {
	Feed      FeedLister
	Catalog   VideoCatalog
	UploadDir string
}

// List handles GET /api/v1/videos.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	title := q.Get("query")
	if title == "" {
		title = q.Get("title")
	}
	page, limit := pageParams(r)

	result, err := h.Feed.ListVideos(ctx, feed.Query{
		Title:    title,
		OwnerID:  q.Get("userId"),
		SortBy:   q.Get("sortBy"),
		SortType: q.Get("sortType"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, result, "Videos fetched successfully")
}

// Publish handles POST /api/v1/videos.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := requireUser(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	if err := parseMultipart(w, r); err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	videoPath, err := spool(r, "videoFile", h.UploadDir)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	thumbPath, err := spool(r, "thumbnail", h.UploadDir)
	if err != nil {
		removeTemp(videoPath)
		httpserver.Fail(ctx, w, err)
		return
	}

	video, err := h.Catalog.Publish(ctx, videos.PublishInput{
		OwnerID:       userID,
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		VideoPath:     videoPath,
		ThumbnailPath: thumbPath,
	})
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	httpserver.Respond(ctx, w, http.StatusCreated, video, "Video published successfully")
}

// Get handles GET /api/v1/videos/{videoId}. An authenticated caller's view
// is recorded.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID, _ := auth.UserIDFromContext(ctx)

	video, err := h.Catalog.Get(ctx, viewerID, r.PathValue("videoId"))
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, video, "Video fetched successfully")
}

type videoUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Update handles PATCH /api/v1/videos/{videoId}. It accepts a multipart
// form carrying an optional thumbnail, or a JSON body.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := requireUser(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	var in videos.UpdateInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := parseMultipart(w, r); err != nil {
			httpserver.Fail(ctx, w, err)
			return
		}
		if title, ok := formValue(r, "title"); ok {
			in.Title = &title
		}
		if description, ok := formValue(r, "description"); ok {
			in.Description = &description
		}
		if in.ThumbnailPath, err = spool(r, "thumbnail", h.UploadDir); err != nil {
			httpserver.Fail(ctx, w, err)
			return
		}
	} else {
		var req videoUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			httpserver.Fail(ctx, w, err)
			return
		}
		in.Title, in.Description = req.Title, req.Description
	}

	video, err := h.Catalog.Update(ctx, userID, r.PathValue("videoId"), in)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, video, "Video updated successfully")
}

// Delete handles DELETE /api/v1/videos/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := requireUser(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	if _, err := h.Catalog.Delete(ctx, userID, r.PathValue("videoId")); err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, struct{}{}, "Video deleted successfully")
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := requireUser(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	video, err := h.Catalog.TogglePublish(ctx, userID, r.PathValue("videoId"))
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, video, "Publish status toggled successfully")
}
