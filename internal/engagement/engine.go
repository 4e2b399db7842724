// Package engagement toggles likes and subscriptions. Each (actor, target)
// pair holds at most one active relation; the store enforces that with a
// uniqueness constraint inside a single transaction.
package engagement

import (
	"context"
	"errors"
	"strings"

	"github.com/sah-lishi/backend-journey/internal/apperr"
	"github.com/sah-lishi/backend-journey/internal/logging"
	"github.com/sah-lishi/backend-journey/internal/models"
	"github.com/sah-lishi/backend-journey/internal/repositories"
)

// State is the relation state after a toggle.
type State string

const (
	// Active means the relation exists after the toggle.
	Active State = "active"
	// Inactive means the relation was removed by the toggle.
	Inactive State = "inactive"
)

func stateOf(active bool) State {
	if active {
		return Active
	}
	return Inactive
}

// Store performs the atomic toggles. ToggleLike and ToggleSubscription
// report whether the relation exists afterwards and return
// repositories.ErrNotFound when the target does not exist.
type Store interface {
	ToggleLike(ctx context.Context, actorID string, kind models.Target, targetID string) (bool, error)
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.Subscription, error)
	ListSubscriptions(ctx context.Context, subscriberID string) ([]models.Subscription, error)
	ListLikedVideos(ctx context.Context, userID string) ([]models.Video, error)
}

// Recorder observes toggle outcomes.
type Recorder interface {
	ObserveToggle(kind models.Target, state State)
}

type nopRecorder struct{}

func (nopRecorder) ObserveToggle(models.Target, State) {}

// Engine validates and dispatches engagement operations.
type Engine struct {
	store    Store
	recorder Recorder
}

// NewEngine constructs an Engine. A nil recorder disables observation.
func NewEngine(store Store, recorder Recorder) *Engine {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Engine{store: store, recorder: recorder}
}

// Toggle flips the like relation between actorID and the target. Malformed
// ids are rejected before the store is touched.
func (e *Engine) Toggle(ctx context.Context, actorID string, kind models.Target, targetID string) (State, error) {
	if !kind.Likeable() {
		return "", apperr.InvalidArgument("unsupported like target")
	}
	if !models.ValidID(actorID) {
		return "", apperr.Unauthorized("unauthorized request")
	}
	targetID = strings.TrimSpace(targetID)
	if !models.ValidID(targetID) {
		return "", apperr.InvalidArgument("invalid " + string(kind) + " id")
	}

	ctx, span := logging.StartSpan(ctx, "engagement.toggle_like")
	defer span.End()

	active, err := e.store.ToggleLike(ctx, actorID, kind, targetID)
	if err != nil {
		span.Fail(err)
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apperr.NotFound(string(kind) + " not found")
		}
		return "", apperr.Internal("unable to toggle like", err)
	}

	state := stateOf(active)
	e.recorder.ObserveToggle(kind, state)
	logging.FromContext(ctx).Debug("like toggled", "kind", kind, "targetId", targetID, "state", state)
	return state, nil
}

// ToggleSubscription flips the subscription from subscriberID to channelID.
func (e *Engine) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (State, error) {
	if !models.ValidID(subscriberID) {
		return "", apperr.Unauthorized("unauthorized request")
	}
	channelID = strings.TrimSpace(channelID)
	if !models.ValidID(channelID) {
		return "", apperr.InvalidArgument("invalid channel id")
	}
	if subscriberID == channelID {
		return "", apperr.InvalidArgument("cannot subscribe to your own channel")
	}

	ctx, span := logging.StartSpan(ctx, "engagement.toggle_subscription")
	defer span.End()

	active, err := e.store.ToggleSubscription(ctx, subscriberID, channelID)
	if err != nil {
		span.Fail(err)
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apperr.NotFound("channel not found")
		}
		return "", apperr.Internal("unable to toggle subscription", err)
	}

	state := stateOf(active)
	e.recorder.ObserveToggle(models.TargetChannel, state)
	return state, nil
}

// ListSubscribers returns the channel's subscribers, newest first.
func (e *Engine) ListSubscribers(ctx context.Context, channelID string) ([]models.Subscription, error) {
	if !models.ValidID(strings.TrimSpace(channelID)) {
		return nil, apperr.InvalidArgument("invalid channel id")
	}
	subs, err := e.store.ListSubscribers(ctx, strings.TrimSpace(channelID))
	if err != nil {
		return nil, apperr.Internal("unable to fetch subscribers", err)
	}
	return nonNil(subs), nil
}

// ListSubscriptions returns the channels subscriberID follows, newest first.
func (e *Engine) ListSubscriptions(ctx context.Context, subscriberID string) ([]models.Subscription, error) {
	if !models.ValidID(strings.TrimSpace(subscriberID)) {
		return nil, apperr.InvalidArgument("invalid subscriber id")
	}
	subs, err := e.store.ListSubscriptions(ctx, strings.TrimSpace(subscriberID))
	if err != nil {
		return nil, apperr.Internal("unable to fetch subscribed channels", err)
	}
	return nonNil(subs), nil
}

// ListLikedVideos returns the videos userID liked, newest like first.
func (e *Engine) ListLikedVideos(ctx context.Context, userID string) ([]models.Video, error) {
	if !models.ValidID(userID) {
		return nil, apperr.Unauthorized("unauthorized request")
	}
	videos, err := e.store.ListLikedVideos(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("unable to fetch liked videos", err)
	}
	return nonNil(videos), nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
