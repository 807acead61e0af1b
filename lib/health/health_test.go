package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error { return f.err }
func (f fakePinger) BaseURL() string                { return "http://127.0.0.1:8000" }

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		pinger         fakePinger
		wantStatus     string
		wantUpstream   string
		wantHTTPStatus int
	}{
		{name: "upstream ok", pinger: fakePinger{}, wantStatus: "ok", wantUpstream: "ok", wantHTTPStatus: http.StatusOK},
		{name: "upstream down", pinger: fakePinger{err: errors.New("dial tcp: refused")}, wantStatus: "degraded", wantUpstream: "error", wantHTTPStatus: http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rr := httptest.NewRecorder()
			Check(tt.pinger)(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rr.Code != tt.wantHTTPStatus {
				t.Fatalf("status code: got %d", rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("content type: got %q", ct)
			}
			var h Health
			if err := json.Unmarshal(rr.Body.Bytes(), &h); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if h.Status != tt.wantStatus || h.Upstream.Status != tt.wantUpstream {
				t.Fatalf("got %+v", h)
			}
			if h.Upstream.URL != "http://127.0.0.1:8000" {
				t.Fatalf("upstream url: got %q", h.Upstream.URL)
			}
		})
	}
}
