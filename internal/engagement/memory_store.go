package engagement

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sah-lishi/backend-journey/internal/models"
	"github.com/sah-lishi/backend-journey/internal/repositories"
)

type likeKey struct {
	actor  string
	kind   models.Target
	target string
}

type subKey struct {
	subscriber string
	channel    string
}

// MemoryStore is a mutex-guarded Store for tests and local development.
// Targets must be registered before they can be toggled.
type MemoryStore struct {
	mu       sync.Mutex
	targets  map[models.Target]map[string]struct{}
	users    map[string]string
	videos   map[string]models.Video
	likes    map[likeKey]time.Time
	subs     map[subKey]time.Time
	now      func() time.Time
	lastTick time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		targets: make(map[models.Target]map[string]struct{}),
		users:   make(map[string]string),
		videos:  make(map[string]models.Video),
		likes:   make(map[likeKey]time.Time),
		subs:    make(map[subKey]time.Time),
		now:     time.Now,
	}
}

// AddUser registers a channel.
func (s *MemoryStore) AddUser(id, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = username
}

// AddVideo registers a likeable video.
func (s *MemoryStore) AddVideo(video models.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[video.ID] = video
	s.addTarget(models.TargetVideo, video.ID)
}

// AddTarget registers a likeable comment or tweet.
func (s *MemoryStore) AddTarget(kind models.Target, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addTarget(kind, id)
}

func (s *MemoryStore) addTarget(kind models.Target, id string) {
	if s.targets[kind] == nil {
		s.targets[kind] = make(map[string]struct{})
	}
	s.targets[kind][id] = struct{}{}
}

// tick returns strictly increasing timestamps so newest-first ordering is stable.
func (s *MemoryStore) tick() time.Time {
	t := s.now()
	if !t.After(s.lastTick) {
		t = s.lastTick.Add(time.Nanosecond)
	}
	s.lastTick = t
	return t
}

// ToggleLike implements Store.
func (s *MemoryStore) ToggleLike(_ context.Context, actorID string, kind models.Target, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.targets[kind][targetID]; !ok {
		return false, repositories.ErrNotFound
	}
	key := likeKey{actor: actorID, kind: kind, target: targetID}
	if _, ok := s.likes[key]; ok {
		delete(s.likes, key)
		return false, nil
	}
	s.likes[key] = s.tick()
	return true, nil
}

// ToggleSubscription implements Store.
func (s *MemoryStore) ToggleSubscription(_ context.Context, subscriberID, channelID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[channelID]; !ok {
		return false, repositories.ErrNotFound
	}
	key := subKey{subscriber: subscriberID, channel: channelID}
	if _, ok := s.subs[key]; ok {
		delete(s.subs, key)
		return false, nil
	}
	s.subs[key] = s.tick()
	return true, nil
}

// ListSubscribers implements Store.
func (s *MemoryStore) ListSubscribers(_ context.Context, channelID string) ([]models.Subscription, error) {
	return s.listSubs(func(k subKey) (bool, string) { return k.channel == channelID, k.subscriber }), nil
}

// ListSubscriptions implements Store.
func (s *MemoryStore) ListSubscriptions(_ context.Context, subscriberID string) ([]models.Subscription, error) {
	return s.listSubs(func(k subKey) (bool, string) { return k.subscriber == subscriberID, k.channel }), nil
}

func (s *MemoryStore) listSubs(match func(subKey) (bool, string)) []models.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Subscription
	for key, at := range s.subs {
		ok, counterpart := match(key)
		if !ok {
			continue
		}
		out = append(out, models.Subscription{
			SubscriberID: key.subscriber,
			ChannelID:    key.channel,
			Username:     s.users[counterpart],
			CreatedAt:    at,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ListLikedVideos implements Store.
func (s *MemoryStore) ListLikedVideos(_ context.Context, userID string) ([]models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	type liked struct {
		video models.Video
		at    time.Time
	}
	var found []liked
	for key, at := range s.likes {
		if key.actor == userID && key.kind == models.TargetVideo {
			found = append(found, liked{video: s.videos[key.target], at: at})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].at.After(found[j].at) })
	out := make([]models.Video, 0, len(found))
	for _, f := range found {
		out = append(out, f.video)
	}
	return out, nil
}

// Likes reports how many like rows exist for the triple. Useful for tests.
func (s *MemoryStore) Likes(actorID string, kind models.Target, targetID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.likes[likeKey{actor: actorID, kind: kind, target: targetID}]; ok {
		return 1
	}
	return 0
}

var _ Store = (*MemoryStore)(nil)
