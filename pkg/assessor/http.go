package assessor

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	assessorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "grader",
		Subsystem: "assessor",
		Name:      "request_duration_seconds",
		Help:      "Duration of assessor backend requests",
	}, []string{"provider"})

	assessorTransportErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grader",
		Subsystem: "assessor",
		Name:      "transport_errors_total",
		Help:      "Number of assessor requests that produced no response",
	}, []string{"provider"})
)

// HTTPConfig defines configuration options for the HTTP assessor client.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// HTTPClient calls the dedicated assessor backend over its JSON wire contract.
type HTTPClient struct {
	client *resty.Client
	logger zerolog.Logger
}

// NewHTTPClient builds the wire client for the assessor backend.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("assessor base url is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &HTTPClient{
		client: client,
		logger: cfg.Logger.With().Str("component", "assessor_http").Logger(),
	}, nil
}

// Assess posts one grading request and returns the raw backend reply.
// Non-2xx statuses are not errors here; only a missing response is.
func (h *HTTPClient) Assess(ctx context.Context, req Request) (*RawResponse, error) {
	start := time.Now()
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/v1/assessor")
	assessorDuration.WithLabelValues("http").Observe(time.Since(start).Seconds())
	if err != nil {
		assessorTransportErrors.WithLabelValues("http").Inc()
		return nil, fmt.Errorf("assessor request: %w", err)
	}

	return &RawResponse{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}
