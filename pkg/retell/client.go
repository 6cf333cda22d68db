package retell

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired = errors.New("config is required")
)

// Default tuning values.
const (
	DefaultBaseURL                 = "https://api.retellai.com"
	DefaultRetryMaxAttempts        = 2
	DefaultRetryInterval           = 50 * time.Millisecond
	DefaultRetryIntervalRandomness = 0.5
	DefaultRetryBackoffFactor      = 2.0
	DefaultTimeout                 = 10 * time.Second
	DefaultOpenTimeout             = 5 * time.Second
)

// FailureClass names a class of transport failure that the retry policy may
// allow. Application responses (any HTTP status) are never retried.
type FailureClass string

// Retryable failure classes.
const (
	FailureConnection FailureClass = "connection_failed"
	FailureTimeout    FailureClass = "timeout"
)

// DefaultRetryableFailures returns the failure classes retried by default.
func DefaultRetryableFailures() []FailureClass {
	return []FailureClass{FailureConnection, FailureTimeout}
}

// PhoneCallsClient creates phone calls.
type PhoneCallsClient interface {
	// Create places an outbound call. It never returns a raw error: every
	// outcome is a Success tagged TagAPIResponse or a Failure tagged with the
	// problem kind.
	Create(ctx context.Context, req *CreatePhoneCallRequest) Result[Document]
}

// Client is the Retell API client.
type Client interface {
	PhoneCalls() PhoneCallsClient
	// Configure replaces the API key. The next call rebuilds the transport.
	Configure(apiKey string) error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Client.
//
// Values are read when the transport is first built. Changing a Config after
// that has no effect on the running client; use Client.Configure to rotate the
// API key.
type Config struct {
	// APIKey is sent as a Bearer token. Required.
	APIKey string
	// BaseURL overrides the API endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// Timeout bounds each individual attempt, not the retried sequence.
	Timeout time.Duration
	// OpenTimeout bounds connection establishment.
	OpenTimeout time.Duration

	// RetryMaxAttempts is the total number of attempts, including the first.
	RetryMaxAttempts int
	// RetryInterval is the base wait before the first retry.
	RetryInterval time.Duration
	// RetryIntervalRandomness adds up to this fraction of RetryInterval as jitter (0..1).
	RetryIntervalRandomness float64
	// RetryBackoffFactor multiplies the wait after every retry.
	RetryBackoffFactor float64
	// RetryableFailures lists the transport failure classes that are retried.
	RetryableFailures []FailureClass

	// Debug enables request/response logging in the HTTP layer.
	Debug bool
	// Logger receives client logs. Optional.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// Headers are set on every request. Authorization cannot be overridden.
	Headers map[string]string
	// Metrics records request counts and latency. Optional.
	Metrics *Metrics
	// Transport replaces the pooled base round tripper. Optional.
	Transport http.RoundTripper
}

// DefaultConfig returns a Config filled with the default tuning values.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:                 DefaultBaseURL,
		Timeout:                 DefaultTimeout,
		OpenTimeout:             DefaultOpenTimeout,
		RetryMaxAttempts:        DefaultRetryMaxAttempts,
		RetryInterval:           DefaultRetryInterval,
		RetryIntervalRandomness: DefaultRetryIntervalRandomness,
		RetryBackoffFactor:      DefaultRetryBackoffFactor,
		RetryableFailures:       DefaultRetryableFailures(),
	}
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c *Config) WithDefaults() *Config {
	merged := *c
	merged.Headers = maps.Clone(c.Headers)
	defaults := DefaultConfig()

	if merged.BaseURL == "" {
		merged.BaseURL = defaults.BaseURL
	}

	if merged.Timeout <= 0 {
		merged.Timeout = defaults.Timeout
	}

	if merged.OpenTimeout <= 0 {
		merged.OpenTimeout = defaults.OpenTimeout
	}

	if merged.RetryMaxAttempts <= 0 {
		merged.RetryMaxAttempts = defaults.RetryMaxAttempts
	}

	if merged.RetryInterval <= 0 {
		merged.RetryInterval = defaults.RetryInterval
	}

	if merged.RetryIntervalRandomness < 0 || merged.RetryIntervalRandomness > 1 {
		merged.RetryIntervalRandomness = defaults.RetryIntervalRandomness
	}

	if merged.RetryBackoffFactor < 1 {
		merged.RetryBackoffFactor = defaults.RetryBackoffFactor
	}

	if merged.RetryableFailures == nil {
		merged.RetryableFailures = defaults.RetryableFailures
	}

	merged.RetryableFailures = append([]FailureClass(nil), merged.RetryableFailures...)

	return &merged
}
