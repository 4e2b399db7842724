package handlers

import (
	"net/http"

	"github.com/sah-lishi/backend-journey/internal/engagement"
	"github.com/sah-lishi/backend-journey/internal/httpserver"
	"github.com/sah-lishi/backend-journey/internal/models"
)

// LikeHandler toggles and lists likes.
type LikeHandler struct {
	Engagement Engagement
}

type likeResponse struct {
	TargetID string           `json:"targetId"`
	Kind     models.Target    `json:"kind"`
	State    engagement.State `json:"state"`
	IsLiked  bool             `json:"isLiked"`
}

var likeMessages = map[models.Target][2]string{
	models.TargetVideo:   {"Video liked", "Video unliked"},
	models.TargetComment: {"Comment liked", "Comment unliked"},
	models.TargetTweet:   {"Tweet liked", "Tweet unliked"},
}

// Toggle returns a handler flipping the caller's like on the target named
// by the param path value.
func (h LikeHandler) Toggle(kind models.Target, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := requireUser(r)
		if err != nil {
			httpserver.Fail(ctx, w, err)
			return
		}

		targetID := r.PathValue(param)
		state, err := h.Engagement.Toggle(ctx, userID, kind, targetID)
		if err != nil {
			httpserver.Fail(ctx, w, err)
			return
		}

		messages := likeMessages[kind]
		message := messages[1]
		if state == engagement.Active {
			message = messages[0]
		}
		httpserver.Respond(ctx, w, http.StatusOK, likeResponse{
			TargetID: targetID,
			Kind:     kind,
			State:    state,
			IsLiked:  state == engagement.Active,
		}, message)
	}
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := requireUser(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	liked, err := h.Engagement.ListLikedVideos(ctx, userID)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, liked, "Liked videos fetched successfully")
}

// SubscriptionHandler toggles and lists channel subscriptions.
type SubscriptionHandler struct {
	Engagement Engagement
}

type subscriptionResponse struct {
	ChannelID    string           `json:"channelId"`
	State        engagement.State `json:"state"`
	IsSubscribed bool             `json:"isSubscribed"`
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := requireUser(r)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	channelID := r.PathValue("channelId")
	state, err := h.Engagement.ToggleSubscription(ctx, userID, channelID)
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}

	message := "Unsubscribed successfully"
	if state == engagement.Active {
		message = "Subscribed successfully"
	}
	httpserver.Respond(ctx, w, http.StatusOK, subscriptionResponse{
		ChannelID:    channelID,
		State:        state,
		IsSubscribed: state == engagement.Active,
	}, message)
}

// Subscribers handles GET /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subs, err := h.Engagement.ListSubscribers(ctx, r.PathValue("channelId"))
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, subs, "Subscribers fetched successfully")
}

// Subscriptions handles GET /api/v1/subscriptions/u/{subscriberId}.
func (h SubscriptionHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subs, err := h.Engagement.ListSubscriptions(ctx, r.PathValue("subscriberId"))
	if err != nil {
		httpserver.Fail(ctx, w, err)
		return
	}
	httpserver.Respond(ctx, w, http.StatusOK, subs, "Subscribed channels fetched successfully")
}
