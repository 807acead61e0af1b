package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/icco/moviefinder/lib/client"
	"github.com/icco/moviefinder/lib/recommend"
	"github.com/icco/moviefinder/lib/validation"
	"github.com/icco/moviefinder/models"
)

type fakeRecommender struct {
	mu      sync.Mutex
	queries []models.PreferenceQuery
	release chan struct{}
	movies  []models.Movie
	err     error
}

func (f *fakeRecommender) Recommend(ctx context.Context, q models.PreferenceQuery) ([]models.Movie, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	return f.movies, f.err
}

func (f *fakeRecommender) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }
func (p fakePinger) BaseURL() string            { return "http://upstream.test" }

func newTestServer(rec recommend.Recommender) (*Server, http.Handler, *recommend.State) {
	return newLimitedServer(rec, 0)
}

func newLimitedServer(rec recommend.Recommender, limit int) (*Server, http.Handler, *recommend.State) {
	st := recommend.NewState()
	form := recommend.NewForm(st, rec, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s := New(context.Background(), form, st, limit)
	return s, s.Router(fakePinger{}), st
}

func post(t *testing.T, h http.Handler, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandleHome_Initial(t *testing.T) {
	t.Parallel()
	_, h, _ := newTestServer(&fakeRecommender{})

	w := get(t, h, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Get Recommendations") {
		t.Error("submit button should be enabled")
	}
	if strings.Contains(body, `id="results"`) {
		t.Error("results should be hidden before any submission")
	}
	if !strings.Contains(body, `value="Hollywood" checked`) {
		t.Error("Hollywood should be selected by default")
	}
	if !strings.Contains(body, `value="Classic / Old" checked`) {
		t.Error("Classic / Old should be selected by default")
	}
	if strings.Contains(body, `http-equiv="refresh"`) {
		t.Error("idle page should not refresh")
	}
}

func TestHandleSubmit_EmptyDescription(t *testing.T) {
	t.Parallel()
	rec := &fakeRecommender{}
	s, h, st := newTestServer(rec)

	w := post(t, h, url.Values{"description": {"   "}, "movie_type": {"Any"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d", w.Code)
	}
	s.Wait()
	if rec.calls() != 0 {
		t.Fatalf("network called %d times", rec.calls())
	}
	if st.Loading() {
		t.Fatal("rejected submit must not enter loading")
	}

	body := get(t, h, "/").Body.String()
	if !strings.Contains(body, validation.EmptyDescriptionMessage) {
		t.Error("error message should be rendered")
	}
	if !strings.Contains(body, `value="Any" checked`) {
		t.Error("posted movie type should be kept in the draft")
	}
}

func TestHandleSubmit_Lifecycle(t *testing.T) {
	t.Parallel()
	rating := 8.8
	rec := &fakeRecommender{
		release: make(chan struct{}),
		movies: []models.Movie{
			{Title: "Inception", Rating: &rating, WatchOn: []string{"Netflix", "Hulu", "Prime", "Disney+"}},
			{Title: "Primer"},
		},
	}
	s, h, _ := newTestServer(rec)

	post(t, h, url.Values{
		"description":  {"  mind bending  "},
		"movie_type":   {"Hollywood"},
		"release_pref": {"Any"},
	})

	body := get(t, h, "/").Body.String()
	if !strings.Contains(body, "Generating...") {
		t.Error("button should show Generating... while loading")
	}
	if n := strings.Count(body, `class="skeleton"`); n != 5 {
		t.Errorf("want 5 skeletons, got %d", n)
	}
	if !strings.Contains(body, `http-equiv="refresh"`) {
		t.Error("loading page should refresh")
	}

	// A second submit while loading does not start another request.
	post(t, h, url.Values{"description": {"other"}})

	close(rec.release)
	s.Wait()

	if rec.calls() != 1 {
		t.Fatalf("want exactly 1 call, got %d", rec.calls())
	}
	if got := rec.queries[0].Description; got != "mind bending" {
		t.Errorf("description sent: got %q", got)
	}

	body = get(t, h, "/").Body.String()
	for _, want := range []string{`data-key="0-Inception"`, `data-key="1-Primer"`, "Rating: 8.8", "Netflix", "N/A", "No description available."} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, "Disney") {
		t.Error("only the first three platforms should be shown")
	}
	if strings.Index(body, "Inception") > strings.Index(body, "Primer") {
		t.Error("results should keep service order")
	}
}

func TestHandleSubmit_Failure(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &client.ValidationError{Message: "Invalid data: field required"}, "Invalid data: field required"},
		{"transport", &client.TransportError{Message: "connection refused", Err: errors.New("dial")}, "connection refused"},
		{"service", &client.ServiceError{Status: 500, Message: client.GenericMessage}, client.GenericMessage},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &fakeRecommender{err: tt.err}
			s, h, st := newTestServer(rec)

			post(t, h, url.Values{"description": {"anything"}})
			s.Wait()

			if st.Loading() {
				t.Fatal("loading should be cleared after failure")
			}
			body := get(t, h, "/").Body.String()
			if !strings.Contains(body, tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
			if strings.Contains(body, `id="results"`) {
				t.Error("results should be hidden after failure")
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	_, h, _ := newTestServer(&fakeRecommender{})

	w := get(t, h, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body: %s", w.Body.String())
	}
}

func TestHandleSubmit_RateLimited(t *testing.T) {
	t.Parallel()
	rec := &fakeRecommender{}
	s, h, _ := newLimitedServer(rec, 2)

	for i := 0; i < 2; i++ {
		if w := post(t, h, url.Values{"description": {"anything"}}); w.Code != http.StatusSeeOther {
			t.Fatalf("post %d: status %d", i, w.Code)
		}
		s.Wait()
	}

	w := post(t, h, url.Values{"description": {"anything"}})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status: got %d want %d", w.Code, http.StatusTooManyRequests)
	}
	s.Wait()
	if rec.calls() != 2 {
		t.Errorf("want 2 calls, got %d", rec.calls())
	}

	// The page itself is not limited.
	if w := get(t, h, "/"); w.Code != http.StatusOK {
		t.Errorf("GET /: status %d", w.Code)
	}
}

func TestMetrics(t *testing.T) {
	t.Parallel()
	_, h, _ := newTestServer(&fakeRecommender{})

	get(t, h, "/healthz")
	w := get(t, h, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "moviefinder_upstream_up") {
		t.Error("metrics should expose moviefinder_upstream_up")
	}
}

func TestRoutes(t *testing.T) {
	t.Parallel()
	_, h, _ := newTestServer(&fakeRecommender{})

	got := strings.Join(Routes(h), ",")
	for _, want := range []string{"GET /", "POST /", "GET /healthz", "/metrics"} {
		if !strings.Contains(got, want) {
			t.Errorf("routes %q missing %q", got, want)
		}
	}
}
