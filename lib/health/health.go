package health

import (
	"context"
	"net/http"
	"time"

	"log/slog"

	"github.com/goccy/go-json"
	"github.com/icco/moviefinder/lib/metrics"
)

// Pinger is anything that can check it can reach its upstream.
type Pinger interface {
	Ping(ctx context.Context) error
	BaseURL() string
}

// Health represents the health check response structure.
// It includes the overall status, timestamp, and recommendation service
// reachability.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Upstream  struct {
		URL     string `json:"url"`
		Status  string `json:"status"`
		Message string `json:"message,omitempty"`
	} `json:"upstream"`
}

// Check returns an HTTP handler that reports whether the recommendation
// service answers. An unreachable upstream degrades the status but the
// front-end itself is still up, so the handler answers 200 either way.
func Check(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := Health{
			Status:    "ok",
			Timestamp: time.Now(),
		}
		health.Upstream.URL = p.BaseURL()

		err := p.Ping(ctx)
		metrics.SetUpstreamUp(err == nil)
		if err != nil {
			health.Status = "degraded"
			health.Upstream.Status = "error"
			health.Upstream.Message = "Recommendation service unreachable"
			slog.Warn("Upstream health check failed", slog.String("url", p.BaseURL()), slog.Any("error", err))
			writeHealth(w, health, http.StatusOK)
			return
		}

		health.Upstream.Status = "ok"
		writeHealth(w, health, http.StatusOK)
	}
}

// writeHealth writes the health check response to the HTTP response writer.
func writeHealth(w http.ResponseWriter, health Health, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		slog.Error("Failed to encode health response", slog.Any("error", err))
	}
}
