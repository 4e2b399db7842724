package engagement

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sah-lishi/backend-journey/internal/apperr"
	"github.com/sah-lishi/backend-journey/internal/models"
)

type countingStore struct {
	Store
	calls int
}

func (c *countingStore) ToggleLike(ctx context.Context, actorID string, kind models.Target, targetID string) (bool, error) {
	c.calls++
	return c.Store.ToggleLike(ctx, actorID, kind, targetID)
}

func (c *countingStore) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	c.calls++
	return c.Store.ToggleSubscription(ctx, subscriberID, channelID)
}

type recordedToggle struct {
	kind  models.Target
	state State
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []recordedToggle
}

func (r *fakeRecorder) ObserveToggle(kind models.Target, state State) {
	r.mu.Lock()
	r.events = append(r.events, recordedToggle{kind: kind, state: state})
	r.mu.Unlock()
}

func TestToggleRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	recorder := &fakeRecorder{}
	engine := NewEngine(store, recorder)

	actor := models.NewID()
	targets := map[models.Target]string{
		models.TargetVideo:   models.NewID(),
		models.TargetComment: models.NewID(),
		models.TargetTweet:   models.NewID(),
	}
	store.AddVideo(models.Video{ID: targets[models.TargetVideo]})
	store.AddTarget(models.TargetComment, targets[models.TargetComment])
	store.AddTarget(models.TargetTweet, targets[models.TargetTweet])

	for kind, id := range targets {
		state, err := engine.Toggle(ctx, actor, kind, id)
		if err != nil {
			t.Fatalf("toggle %s: %v", kind, err)
		}
		if state != Active || store.Likes(actor, kind, id) != 1 {
			t.Fatalf("expected one active %s like, got %s", kind, state)
		}

		state, err = engine.Toggle(ctx, actor, kind, id)
		if err != nil {
			t.Fatalf("toggle %s again: %v", kind, err)
		}
		if state != Inactive || store.Likes(actor, kind, id) != 0 {
			t.Fatalf("expected %s like removed, got %s", kind, state)
		}
	}

	if len(recorder.events) != 6 {
		t.Fatalf("expected 6 recorded toggles, got %d", len(recorder.events))
	}
}

func TestToggleRejectsMalformedIDWithoutStoreAccess(t *testing.T) {
	store := &countingStore{Store: NewMemoryStore()}
	engine := NewEngine(store, nil)
	actor := models.NewID()

	for _, id := range []string{"", "123", "not-a-uuid", "  "} {
		_, err := engine.Toggle(context.Background(), actor, models.TargetVideo, id)
		if !apperr.Is(err, apperr.KindInvalidArgument) {
			t.Fatalf("expected invalid argument for %q, got %v", id, err)
		}
	}
	if _, err := engine.ToggleSubscription(context.Background(), actor, "bogus"); !apperr.Is(err, apperr.KindInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err := engine.Toggle(context.Background(), actor, models.TargetChannel, models.NewID()); !apperr.Is(err, apperr.KindInvalidArgument) {
		t.Fatalf("channels are not likeable, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected no store access, got %d calls", store.calls)
	}
}

func TestToggleMissingTarget(t *testing.T) {
	engine := NewEngine(NewMemoryStore(), nil)
	_, err := engine.Toggle(context.Background(), models.NewID(), models.TargetComment, models.NewID())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err = engine.ToggleSubscription(context.Background(), models.NewID(), models.NewID())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type failingStore struct{ Store }

func (failingStore) ToggleLike(context.Context, string, models.Target, string) (bool, error) {
	return false, errors.New("connection reset")
}

func TestToggleStoreFailureIsInternal(t *testing.T) {
	engine := NewEngine(failingStore{Store: NewMemoryStore()}, nil)
	_, err := engine.Toggle(context.Background(), models.NewID(), models.TargetVideo, models.NewID())
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal, got %v", err)
	}
	if apperr.PublicMessage(err) == "connection reset" {
		t.Fatal("store errors must not leak")
	}
}

func TestConcurrentTogglesKeepAtMostOneRelation(t *testing.T) {
	store := NewMemoryStore()
	engine := NewEngine(store, nil)
	actor, video := models.NewID(), models.NewID()
	store.AddVideo(models.Video{ID: video})

	const calls = 16
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.Toggle(context.Background(), actor, models.TargetVideo, video); err != nil {
				t.Errorf("toggle: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := store.Likes(actor, models.TargetVideo, video); got != 0 {
		t.Fatalf("an even number of toggles must leave no relation, got %d", got)
	}
}

func TestSubscriptions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	engine := NewEngine(store, nil)

	channel, alice, bob := models.NewID(), models.NewID(), models.NewID()
	store.AddUser(channel, "chan")
	store.AddUser(alice, "alice")
	store.AddUser(bob, "bob")

	if _, err := engine.ToggleSubscription(ctx, channel, channel); !apperr.Is(err, apperr.KindInvalidArgument) {
		t.Fatalf("self subscription must be rejected, got %v", err)
	}

	subs, err := engine.ListSubscribers(ctx, channel)
	if err != nil || subs == nil || len(subs) != 0 {
		t.Fatalf("expected empty subscriber list, got %v %v", subs, err)
	}

	for _, id := range []string{alice, bob} {
		if state, err := engine.ToggleSubscription(ctx, id, channel); err != nil || state != Active {
			t.Fatalf("subscribe: %v %v", state, err)
		}
	}

	subs, err = engine.ListSubscribers(ctx, channel)
	if err != nil {
		t.Fatalf("list subscribers: %v", err)
	}
	if len(subs) != 2 || subs[0].Username != "bob" || subs[1].Username != "alice" {
		t.Fatalf("expected newest first with usernames, got %+v", subs)
	}

	channels, err := engine.ListSubscriptions(ctx, alice)
	if err != nil {
		t.Fatalf("list subscriptions: %v", err)
	}
	if len(channels) != 1 || channels[0].ChannelID != channel || channels[0].Username != "chan" {
		t.Fatalf("unexpected subscriptions %+v", channels)
	}

	if state, err := engine.ToggleSubscription(ctx, alice, channel); err != nil || state != Inactive {
		t.Fatalf("unsubscribe: %v %v", state, err)
	}
	if channels, _ := engine.ListSubscriptions(ctx, alice); len(channels) != 0 {
		t.Fatalf("expected no subscriptions, got %+v", channels)
	}
}

func TestListLikedVideosNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	engine := NewEngine(store, nil)
	actor := models.NewID()

	first := models.Video{ID: models.NewID(), Title: "first"}
	second := models.Video{ID: models.NewID(), Title: "second"}
	store.AddVideo(first)
	store.AddVideo(second)

	videos, err := engine.ListLikedVideos(ctx, actor)
	if err != nil || len(videos) != 0 || videos == nil {
		t.Fatalf("expected empty success, got %v %v", videos, err)
	}

	for _, v := range []models.Video{first, second} {
		if _, err := engine.Toggle(ctx, actor, models.TargetVideo, v.ID); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	videos, err = engine.ListLikedVideos(ctx, actor)
	if err != nil {
		t.Fatalf("list liked: %v", err)
	}
	if len(videos) != 2 || videos[0].Title != "second" {
		t.Fatalf("unexpected order %+v", videos)
	}
}
