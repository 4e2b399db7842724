package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sah-lishi/backend-journey/internal/models"
	"github.com/sah-lishi/backend-journey/internal/repositories"
)

type knownVideos map[string]models.Video

func (k knownVideos) FindByID(_ context.Context, id string) (models.Video, error) {
	v, ok := k[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return v, nil
}

// pageWindow returns the newest-first window of items for page and limit.
func pageWindow[T any](items []T, page, limit int) []T {
	out := make([]T, 0, limit)
	for i := len(items) - 1 - (page-1)*limit; i >= 0 && len(out) < limit; i-- {
		out = append(out, items[i])
	}
	return out
}

type memoryComments struct {
	mu     sync.Mutex
	videos knownVideos
	items  []models.Comment
}

func newMemoryComments(videos knownVideos) *memoryComments {
	return &memoryComments{videos: videos}
}

func (m *memoryComments) Create(_ context.Context, c models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.videos[c.VideoID]; !ok {
		return repositories.ErrNotFound
	}
	m.items = append(m.items, c)
	return nil
}

func (m *memoryComments) FindByID(_ context.Context, id string) (models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Comment{}, repositories.ErrNotFound
}

func (m *memoryComments) ListByVideo(_ context.Context, videoID string, page, limit int) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matching []models.Comment
	for _, c := range m.items {
		if c.VideoID == videoID {
			matching = append(matching, c)
		}
	}
	return pageWindow(matching, page, limit), nil
}

func (m *memoryComments) UpdateContent(_ context.Context, id, content string) (models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Content = content
			return m.items[i], nil
		}
	}
	return models.Comment{}, repositories.ErrNotFound
}

func (m *memoryComments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

type memoryTweets struct {
	mu    sync.Mutex
	items []models.Tweet
}

func newMemoryTweets() *memoryTweets { return &memoryTweets{} }

func (m *memoryTweets) Create(_ context.Context, t models.Tweet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, t)
	return nil
}

func (m *memoryTweets) FindByID(_ context.Context, id string) (models.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.items {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Tweet{}, repositories.ErrNotFound
}

func (m *memoryTweets) ListByOwner(_ context.Context, ownerID string, page, limit int) ([]models.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matching []models.Tweet
	for _, t := range m.items {
		if t.OwnerID == ownerID {
			matching = append(matching, t)
		}
	}
	return pageWindow(matching, page, limit), nil
}

func (m *memoryTweets) UpdateContent(_ context.Context, id, content string) (models.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Content = content
			return m.items[i], nil
		}
	}
	return models.Tweet{}, repositories.ErrNotFound
}

func (m *memoryTweets) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

type memoryPlaylists struct {
	mu      sync.Mutex
	videos  knownVideos
	lists   map[string]models.Playlist
	members map[string][]string
}

func newMemoryPlaylists(videos knownVideos) *memoryPlaylists {
	return &memoryPlaylists{videos: videos, lists: map[string]models.Playlist{}, members: map[string][]string{}}
}

func (m *memoryPlaylists) Create(_ context.Context, p models.Playlist, videoIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range videoIDs {
		if _, ok := m.videos[id]; !ok {
			return repositories.ErrNotFound
		}
	}
	m.lists[p.ID] = p
	m.members[p.ID] = append([]string(nil), videoIDs...)
	return nil
}

func (m *memoryPlaylists) FindByID(_ context.Context, id string) (models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.lists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	p.Videos = []models.Video{}
	for _, videoID := range m.members[id] {
		p.Videos = append(p.Videos, m.videos[videoID])
	}
	return p, nil
}

func (m *memoryPlaylists) ListByOwner(_ context.Context, ownerID string, _, _ int) ([]models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Playlist{}
	for _, p := range m.lists {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryPlaylists) AddVideo(_ context.Context, playlistID, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.videos[videoID]; !ok {
		return repositories.ErrNotFound
	}
	for _, id := range m.members[playlistID] {
		if id == videoID {
			return nil
		}
	}
	m.members[playlistID] = append(m.members[playlistID], videoID)
	return nil
}

func (m *memoryPlaylists) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.members[playlistID][:0]
	for _, id := range m.members[playlistID] {
		if id != videoID {
			kept = append(kept, id)
		}
	}
	m.members[playlistID] = kept
	return nil
}

func (m *memoryPlaylists) Update(_ context.Context, id string, name, description *string) (models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.lists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	if name != nil {
		p.Name = *name
	}
	if description != nil {
		p.Description = *description
	}
	m.lists[id] = p
	p.Videos = []models.Video{}
	return p, nil
}

func (m *memoryPlaylists) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.lists, id)
	delete(m.members, id)
	return nil
}

func TestCommentLifecycle(t *testing.T) {
	router := newTestRouter(t)
	listPath := "/api/v1/comments/" + videoID

	rec := serve(router, bearer(httptest.NewRequest(http.MethodGet, "/api/v1/comments/"+aliceID, nil), "alice-token"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected comments on a missing video to return %d, got %d", http.StatusNotFound, rec.Code)
	}

	rec = serve(router, bearer(jsonRequest(t, http.MethodPost, listPath, contentRequest{Content: "  "}), "alice-token"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected empty content to fail with %d, got %d", http.StatusBadRequest, rec.Code)
	}

	var first, second models.Comment
	rec = serve(router, bearer(jsonRequest(t, http.MethodPost, listPath, contentRequest{Content: "first"}), "alice-token"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d", http.StatusCreated, rec.Code)
	}
	decodeData(t, decodeEnvelope(t, rec), &first)
	rec = serve(router, bearer(jsonRequest(t, http.MethodPost, listPath, contentRequest{Content: "second"}), "bob-token"))
	decodeData(t, decodeEnvelope(t, rec), &second)

	rec = serve(router, bearer(httptest.NewRequest(http.MethodGet, listPath+"?limit=1", nil), "alice-token"))
	var page listPage[models.Comment]
	decodeData(t, decodeEnvelope(t, rec), &page)
	if len(page.Items) != 1 || page.Items[0].ID != second.ID || page.Limit != 1 {
		t.Fatalf("expected the newest comment first, got %+v", page)
	}

	commentPath := "/api/v1/comments/c/" + first.ID
	rec = serve(router, bearer(jsonRequest(t, http.MethodPatch, commentPath, contentRequest{Content: "hijacked"}), "bob-token"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected a foreign edit to fail with %d, got %d", http.StatusForbidden, rec.Code)
	}

	rec = serve(router, bearer(jsonRequest(t, http.MethodPatch, commentPath, contentRequest{Content: "edited"}), "alice-token"))
	var edited models.Comment
	decodeData(t, decodeEnvelope(t, rec), &edited)
	if edited.Content != "edited" {
		t.Fatalf("expected edited content, got %+v", edited)
	}

	rec = serve(router, bearer(httptest.NewRequest(http.MethodDelete, commentPath, nil), "alice-token"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	rec = serve(router, bearer(httptest.NewRequest(http.MethodDelete, commentPath, nil), "alice-token"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected a second delete to return %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestTweetLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, bearer(httptest.NewRequest(http.MethodGet, "/api/v1/tweets/user/"+aliceID, nil), "alice-token"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected an empty listing to succeed, got %d", rec.Code)
	}
	var empty listPage[models.Tweet]
	decodeData(t, decodeEnvelope(t, rec), &empty)
	if empty.Items == nil || len(empty.Items) != 0 {
		t.Fatalf("expected an empty list, got %+v", empty)
	}

	rec = serve(router, bearer(jsonRequest(t, http.MethodPost, "/api/v1/tweets", contentRequest{Content: "hello"}), "alice-token"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d", http.StatusCreated, rec.Code)
	}
	var tweet models.Tweet
	decodeData(t, decodeEnvelope(t, rec), &tweet)
	if tweet.OwnerID != aliceID || tweet.Content != "hello" {
		t.Fatalf("unexpected tweet %+v", tweet)
	}

	tests := []struct {
		name   string
		req    func() *http.Request
		status int
	}{
		{
			name:   "invalid id",
			req:    func() *http.Request { return jsonRequest(t, http.MethodPatch, "/api/v1/tweets/nope", contentRequest{Content: "x"}) },
			status: http.StatusBadRequest,
		},
		{
			name:   "not the owner",
			req:    func() *http.Request { return jsonRequest(t, http.MethodDelete, "/api/v1/tweets/"+tweet.ID, nil) },
			status: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(router, bearer(tt.req(), "bob-token")); rec.Code != tt.status {
				t.Fatalf("expected status %d got %d", tt.status, rec.Code)
			}
		})
	}

	rec = serve(router, bearer(jsonRequest(t, http.MethodPatch, "/api/v1/tweets/"+tweet.ID, contentRequest{Content: "updated"}), "alice-token"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	rec = serve(router, bearer(httptest.NewRequest(http.MethodDelete, "/api/v1/tweets/"+tweet.ID, nil), "alice-token"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
}

func TestPlaylistLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, bearer(jsonRequest(t, http.MethodPost, "/api/v1/playlist", map[string]any{
		"name":   "mix",
		"videos": []string{"not-a-uuid"},
	}), "alice-token"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected invalid video ids to fail with %d, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = serve(router, bearer(jsonRequest(t, http.MethodPost, "/api/v1/playlist", map[string]any{"description": "no name"}), "alice-token"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected a missing name to fail with %d, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = serve(router, bearer(jsonRequest(t, http.MethodPost, "/api/v1/playlist", map[string]any{"name": " mix "}), "alice-token"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	var playlist models.Playlist
	decodeData(t, decodeEnvelope(t, rec), &playlist)
	if playlist.Name != "mix" || playlist.OwnerID != aliceID {
		t.Fatalf("unexpected playlist %+v", playlist)
	}

	addPath := "/api/v1/playlist/add/" + videoID + "/" + playlist.ID
	for i := 0; i < 2; i++ {
		rec = serve(router, bearer(httptest.NewRequest(http.MethodPatch, addPath, nil), "alice-token"))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
		}
	}
	var withVideo models.Playlist
	decodeData(t, decodeEnvelope(t, rec), &withVideo)
	if len(withVideo.Videos) != 1 {
		t.Fatalf("expected adding twice to keep one entry, got %+v", withVideo.Videos)
	}

	removePath := "/api/v1/playlist/remove/" + videoID + "/" + playlist.ID
	rec = serve(router, bearer(httptest.NewRequest(http.MethodPatch, removePath, nil), "bob-token"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected a foreign removal to fail with %d, got %d", http.StatusForbidden, rec.Code)
	}

	rec = serve(router, bearer(jsonRequest(t, http.MethodPatch, "/api/v1/playlist/"+playlist.ID, map[string]any{}), "alice-token"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected an empty update to fail with %d, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = serve(router, bearer(jsonRequest(t, http.MethodPatch, "/api/v1/playlist/"+playlist.ID, map[string]any{"description": "weekend"}), "alice-token"))
	var updated models.Playlist
	decodeData(t, decodeEnvelope(t, rec), &updated)
	if updated.Description != "weekend" || updated.Name != "mix" {
		t.Fatalf("unexpected update %+v", updated)
	}

	rec = serve(router, bearer(httptest.NewRequest(http.MethodGet, "/api/v1/playlist/user/"+aliceID, nil), "bob-token"))
	var owned listPage[models.Playlist]
	decodeData(t, decodeEnvelope(t, rec), &owned)
	if len(owned.Items) != 1 {
		t.Fatalf("expected one playlist, got %+v", owned)
	}

	rec = serve(router, bearer(httptest.NewRequest(http.MethodDelete, "/api/v1/playlist/"+playlist.ID, nil), "alice-token"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if _, ok := router.playlists.lists[playlist.ID]; ok {
		t.Fatal("expected the playlist to be removed")
	}
}
