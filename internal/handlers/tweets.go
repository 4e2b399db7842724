package handlers

import (
	"net/http"
	"time"

	"github.com/sah-lishi/backend-journey/internal/apperr"
	"github.com/sah-lishi/backend-journey/internal/httpserver"
	"github.com/sah-lishi/backend-journey/internal/models"
	"github.com/sah-lishi/backend-journey/internal/repositories"
)

// TweetHandler serves short text posts.
type TweetHandler struct {
	Tweets repositories.TweetRepository
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := requireUser(r)
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
	tweet := models.Tweet{ID: models.NewID(), OwnerID: userID, Content: content, CreatedAt: now, UpdatedAt: now}
	if err := h.Tweets.Create(ctx, tweet); err != nil {
		httpserver.Fail(ctx, w, storeError(err, "user not found", "unable to create tweet"))
		return
	}
	httpserver.Respond(ctx, w, http.StatusCreated, tweet, "Tweet created successfully")
}

// ListByUser handles GET /api/v1/tweets/user/{userId}.
func (h TweetHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, err := pathID(r, "userId", "user")
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	page, limit := pageParams(r)
	tweets, err := h.Tweets.ListByOwner(ctx, ownerID, page, limit)
	if err != nil {
		httpserver.Fail(ctx, w, apperr.Internal("unable to fetch tweets", err))
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, pageOf(tweets, page, limit), "Tweets fetched successfully")
}

func (h TweetHandler) ownedTweet(r *http.Request) (string, error) {
	userID, err := requireUser(r)
	if err != nil {
		return "", err
	}
	tweetID, err := pathID(r, "tweetId", "tweet")
	if err != nil {
		return "", err
	}
	tweet, err := h.Tweets.FindByID(r.Context(), tweetID)
	if err != nil {
		return "", storeError(err, "tweet not found", "unable to load tweet")
	}
	if tweet.OwnerID != userID {
		return "", apperr.Forbidden("only the owner can modify this tweet")
	}
	return tweetID, nil
}

// Update handles PATCH /api/v1/tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	tweetID, err := h.ownedTweet(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	updated, err := h.Tweets.UpdateContent(ctx, tweetID, content)
	if err != nil {
		httpserver.Fail(ctx, w, storeError(err, "tweet not found", "unable to update tweet"))
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, updated, "Tweet updated successfully")
}

// Delete handles DELETE /api/v1/tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tweetID, err := h.ownedTweet(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	if err := h.Tweets.Delete(ctx, tweetID); err != nil {
		httpserver.Fail(ctx, w, storeError(err, "tweet not found", "unable to delete tweet"))
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, struct{}{}, "Tweet deleted successfully")
}
