package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/icco/moviefinder/lib/metrics"
	"github.com/icco/moviefinder/models"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// RequestIDHeader carries a per-call id for log correlation.
const RequestIDHeader = "X-Request-ID"

// Client talks to the recommendation service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient returns a client for the service at baseURL. A zero timeout
// leaves the http.Client without one.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// BaseURL returns the resolved service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorBody covers both FastAPI error shapes: detail is either a string or
// a list of {msg, loc, type} objects.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationDetail struct {
	Msg string `json:"msg"`
}

// Recommend posts query to /recommend and returns the movies as received.
// It makes exactly one request and never retries.
func (c *Client) Recommend(ctx context.Context, query models.PreferenceQuery) ([]models.Movie, error) {
	start := time.Now()
	movies, err := c.recommend(ctx, query)
	metrics.RecordRecommendation(Outcome(err), time.Since(start), len(movies))
	return movies, err
}

func (c *Client) recommend(ctx context.Context, query models.PreferenceQuery) ([]models.Movie, error) {
	endpoint := c.baseURL + "/recommend"
	requestID := uuid.NewString()

	c.logger.Info("Sending recommendation request",
		slog.String("endpoint", endpoint),
		slog.String("request_id", requestID),
		slog.Any("query", query))

	payload, err := json.Marshal(query)
	if err != nil {
		return nil, &TransportError{Message: GenericMessage, Err: fmt.Errorf("failed to encode query: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Message: GenericMessage, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Recommendation request failed",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return nil, &TransportError{Message: GenericMessage, Err: fmt.Errorf("failed to make request: %w", err)}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Message: GenericMessage, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("Got recommendation response",
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Backend error",
			slog.String("request_id", requestID),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)))
		return nil, errorFromResponse(resp.StatusCode, body)
	}

	var result models.RecommendResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Warn("Failed to decode recommendation response",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return nil, &ServiceError{Status: resp.StatusCode, Message: GenericMessage}
	}

	c.logger.Info("Received recommendations",
		slog.String("request_id", requestID),
		slog.Int("count", len(result.Movies)))

	return result.Movies, nil
}

// errorFromResponse turns a non-2xx response into a typed error.
func errorFromResponse(status int, body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		eb = errorBody{}
	}

	if status == http.StatusUnprocessableEntity {
		var details []validationDetail
		if err := json.Unmarshal(eb.Detail, &details); err == nil && len(details) > 0 && details[0].Msg != "" {
			return &ValidationError{Message: "Invalid data: " + details[0].Msg}
		}
		if msg := detailString(eb.Detail); msg != "" {
			return &ValidationError{Message: msg}
		}
		return &ValidationError{Message: GenericMessage}
	}

	if msg := detailString(eb.Detail); msg != "" {
		return &ServiceError{Status: status, Message: msg}
	}
	return &ServiceError{Status: status, Message: GenericMessage}
}

// detailString returns detail when it is a non-empty JSON string.
func detailString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// Ping checks that the service root answers.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("service returned status %d", resp.StatusCode)
	}
	return nil
}
