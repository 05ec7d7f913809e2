package aggregate

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

// DefaultPath is the aggregate endpoint served by the upstream API.
const DefaultPath = "/api/visao-geral"

// ClientConfig holds configuration for the upstream client.
type ClientConfig struct {
	BaseURL string
	Path    string
	APIKey  string
	Timeout time.Duration
	Retry   RetryConfig
	CB      CBConfig
}

// RetryConfig holds retry configuration. Zero attempts disables retries.
type RetryConfig struct {
	MaxAttempts int
	WaitTime    time.Duration
	MaxWaitTime time.Duration
}

// CBConfig holds circuit breaker configuration.
type CBConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

func (cfg ClientConfig) withDefaults() ClientConfig {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CB.FailureRatio <= 0 {
		cfg.CB.FailureRatio = 0.6
	}
	if cfg.CB.MinRequests == 0 {
		cfg.CB.MinRequests = 3
	}
	if cfg.CB.Timeout <= 0 {
		cfg.CB.Timeout = 30 * time.Second
	}
	return cfg
}

// NewRestyClient creates a resty client with the configured retry policy.
// Only network errors and 5xx responses are retried.
func NewRestyClient(cfg ClientConfig) *resty.Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retry.MaxAttempts).
		SetRetryWaitTime(cfg.Retry.WaitTime).
		SetRetryMaxWaitTime(cfg.Retry.MaxWaitTime).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500
		})
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return client
}

// NewCircuitBreaker creates the breaker guarding upstream calls. Client
// errors (4xx) do not count as failures.
func NewCircuitBreaker[T any](name string, cfg CBConfig, onChange func(from, to gobreaker.State)) *gobreaker.CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(_ string, from, to gobreaker.State) {
			if onChange != nil {
				onChange(from, to)
			}
		},
	}
	return gobreaker.NewCircuitBreaker[T](settings)
}
