package handlers

import (
	"net/http"
	"time"

	"github.com/sah-lishi/backend-journey/internal/apperr"
	"github.com/sah-lishi/backend-journey/internal/httpserver"
	"github.com/sah-lishi/backend-journey/internal/models"
	"github.com/sah-lishi/backend-journey/internal/repositories"
)

// CommentHandler serves comments on videos.
type CommentHandler struct {
	Comments repositories.CommentRepository
	Videos   VideoLookup
}

type contentRequest struct {
	Content string `json:"content"`
}

// List handles GET /api/v1/comments/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID, err := pathID(r, "videoId", "video")
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		httpserver.Fail(ctx, w, storeError(err, "video not found", "unable to load video"))
		return
	}

	page, limit := pageParams(r)
	comments, err := h.Comments.ListByVideo(ctx, videoID, page, limit)
	if err != nil {
		httpserver.Fail(ctx, w, apperr.Internal("unable to fetch comments", err))
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, pageOf(comments, page, limit), "Comments fetched successfully")
}

// Add handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := requireUser(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	videoID, err := pathID(r, "videoId", "video")
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	content, err := requiredText(req.Content, "content")
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	now := time.Now().UTC()
	comment := models.Comment{
		ID:        models.NewID(),
		VideoID:   videoID,
		OwnerID:   userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Comments.Create(ctx, comment); err != nil {
		httpserver.Fail(ctx, w, storeError(err, "video not found", "unable to add comment"))
		return
	}
	httpserver.Respond(ctx, w, http.StatusCreated, comment, "Comment added successfully")
}

// ownedComment loads the comment at {commentId} and checks the caller owns it.
func (h CommentHandler) ownedComment(r *http.Request) (string, error) {
	userID, err := requireUser(r)
	if err != nil {
		return "", err
	}
	commentID, err := pathID(r, "commentId", "comment")
	if err != nil {
		return "", err
	}
	comment, err := h.Comments.FindByID(r.Context(), commentID)
	if err != nil {
		return "", storeError(err, "comment not found", "unable to load comment")
	}
	if comment.OwnerID != userID {
		return "", apperr.Forbidden("only the owner can modify this comment")
	}
	return commentID, nil
}

// Update handles PATCH /api/v1/comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	content, err := requiredText(req.Content, "content")
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	commentID, err := h.ownedComment(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	updated, err := h.Comments.UpdateContent(ctx, commentID, content)
	if err != nil {
		httpserver.Fail(ctx, w, storeError(err, "comment not found", "unable to update comment"))
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, updated, "Comment updated successfully")
}

// Delete handles DELETE /api/v1/comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	commentID, err := h.ownedComment(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	if err := h.Comments.Delete(ctx, commentID); err != nil {
		httpserver.Fail(ctx, w, storeError(err, "comment not found", "unable to delete comment"))
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, struct{}{}, "Comment deleted successfully")
}

// listPage is the paged list body shared by comments, tweets and playlists.
type listPage[T any] struct {
	Items []T `json:"docs"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func pageOf[T any](items []T, page, limit int) listPage[T] {
	if items == nil {
		items = []T{}
	}
	return listPage[T]{Items: items, Page: page, Limit: limit}
}
