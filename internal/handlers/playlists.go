package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/sah-lishi/backend-journey/internal/apperr"
	"github.com/sah-lishi/backend-journey/internal/httpserver"
	"github.com/sah-lishi/backend-journey/internal/models"
	"github.com/sah-lishi/backend-journey/internal/repositories"
)

// PlaylistHandler serves user playlists.
type PlaylistHandler struct {
	Playlists repositories.PlaylistRepository
}

type playlistRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Videos      []string `json:"videos"`
}

// Create handles POST /api/v1/playlist.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := requireUser(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	var req playlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	if name, err = requiredText(name, "name"); err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	for _, id := range req.Videos {
		if !models.ValidID(id) {
			httpserver.Fail(ctx, w, apperr.InvalidArgument("invalid video id "+id))
			return
		}
	}

	now := time.Now().UTC()
	playlist := models.Playlist{
		ID:        models.NewID(),
		OwnerID:   userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != nil {
		playlist.Description = strings.TrimSpace(*req.Description)
	}
	if err := h.Playlists.Create(ctx, playlist, req.Videos); err != nil {
		httpserver.Fail(ctx, w, storeError(err, "video not found", "unable to create playlist"))
		return
	}

	created, err := h.Playlists.FindByID(ctx, playlist.ID)
	if err != nil {
		httpserver.Fail(ctx, w, storeError(err, "playlist not found", "unable to load playlist"))
		return
	}
	httpserver.Respond(ctx, w, http.StatusCreated, created, "Playlist created successfully")
}

// ListByUser handles GET /api/v1/playlist/user/{userId}.
func (h PlaylistHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, err := pathID(r, "userId", "user")
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	page, limit := pageParams(r)
	playlists, err := h.Playlists.ListByOwner(ctx, ownerID, page, limit)
	if err != nil {
		httpserver.Fail(ctx, w, apperr.Internal("unable to fetch playlists", err))
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, pageOf(playlists, page, limit), "Playlists fetched successfully")
}

// Get handles GET /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID, err := pathID(r, "playlistId", "playlist")
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		httpserver.Fail(ctx, w, storeError(err, "playlist not found", "unable to load playlist"))
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, playlist, "Playlist fetched successfully")
}

func (h PlaylistHandler) ownedPlaylist(r *http.Request) (string, error) {
	userID, err := requireUser(r)
	if err != nil {
		return "", err
	}
	playlistID, err := pathID(r, "playlistId", "playlist")
	if err != nil {
		return "", err
	}
	playlist, err := h.Playlists.FindByID(r.Context(), playlistID)
	if err != nil {
		return "", storeError(err, "playlist not found", "unable to load playlist")
	}
	if playlist.OwnerID != userID {
		return "", apperr.Forbidden("only the owner can modify this playlist")
	}
	return playlistID, nil
}

// AddVideo handles PATCH /api/v1/playlist/add/{videoId}/{playlistId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, true)
}

// RemoveVideo handles PATCH /api/v1/playlist/remove/{videoId}/{playlistId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, false)
}

func (h PlaylistHandler) changeMembership(w http.ResponseWriter, r *http.Request, add bool) {
	ctx := r.Context()
	videoID, err := pathID(r, "videoId", "video")
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	playlistID, err := h.ownedPlaylist(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	message := "Video added to playlist"
	if add {
		err = h.Playlists.AddVideo(ctx, playlistID, videoID)
	} else {
		err = h.Playlists.RemoveVideo(ctx, playlistID, videoID)
		message = "Video removed from playlist"
	}
	if err != nil {
		httpserver.Fail(ctx, w, storeError(err, "video not found", "unable to update playlist"))
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		httpserver.Fail(ctx, w, storeError(err, "playlist not found", "unable to load playlist"))
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, playlist, message)
}

// Update handles PATCH /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req playlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	if req.Name == nil && req.Description == nil {
		httpserver.Fail(ctx, w, apperr.InvalidArgument("name or description is required"))
		return
	}
	if req.Name != nil {
		name, err := requiredText(*req.Name, "name")
		if err != nil {
			httpserver.Fail(ctx, w, err)
			return
		}
		req.Name = &name
	}

	playlistID, err := h.ownedPlaylist(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	updated, err := h.Playlists.Update(ctx, playlistID, req.Name, req.Description)
	if err != nil {
		httpserver.Fail(ctx, w, storeError(err, "playlist not found", "unable to update playlist"))
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, updated, "Playlist updated successfully")
}

// Delete handles DELETE /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID, err := h.ownedPlaylist(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	if err := h.Playlists.Delete(ctx, playlistID); err != nil {
		httpserver.Fail(ctx, w, storeError(err, "playlist not found", "unable to delete playlist"))
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, struct{}{}, "Playlist deleted successfully")
}
