package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sah-lishi/backend-journey/internal/engagement"
	"github.com/sah-lishi/backend-journey/internal/models"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read scrape: %v", err)
	}
	return string(body)
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := New(nil)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/videos/{videoId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := m.Middleware(mux)

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+id, nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("unexpected status %d", rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	body := scrape(t, m)
	want := `vidtube_http_request_duration_seconds_count{method="GET",route="GET /api/v1/videos/{videoId}",status="418"} 2`
	if !strings.Contains(body, want) {
		t.Fatalf("expected %q in scrape:\n%s", want, body)
	}
	if !strings.Contains(body, `route="unmatched",status="404"`) {
		t.Fatalf("expected unmatched route series in scrape")
	}
	if !strings.Contains(body, "vidtube_http_requests_in_flight 0") {
		t.Fatalf("expected in-flight gauge back at zero")
	}
}

func TestRecorders(t *testing.T) {
	m := New(nil)

	m.ObserveToggle(models.TargetVideo, engagement.Active)
	m.ObserveToggle(models.TargetVideo, engagement.Active)
	m.ObserveToggle(models.TargetChannel, engagement.Inactive)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	body := scrape(t, m)
	for _, want := range []string{
		`vidtube_engagement_toggles_total{kind="video",state="active"} 2`,
		`vidtube_engagement_toggles_total{kind="channel",state="inactive"} 1`,
		`vidtube_video_cache_hits_total 1`,
		`vidtube_video_cache_misses_total 2`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in scrape", want)
		}
	}
	if strings.Contains(body, "db_pool") {
		t.Fatal("expected no pool gauges without a pool")
	}
}
