package client

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fivetwenty-io/retell-client/internal/http"
	"github.com/fivetwenty-io/retell-client/pkg/retell"
)

const missingKeyMessage = "Attempting to make API call without valid API key"

// Connection owns the transport shared by every operation. The transport is
// built on first use and is read-only afterwards; Configure discards it so the
// next call builds a fresh one with the new key.
type Connection struct {
	mu        sync.Mutex
	cfg       *retell.Config // guarded by mu; replaced, never mutated
	transport atomic.Pointer[http.Client]
	builds    int
}

// NewConnection validates the API key and returns a connection that builds
// its transport lazily.
func NewConnection(cfg *retell.Config) (*Connection, error) {
	if cfg == nil {
		return nil, retell.ErrConfigRequired
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, retell.NewCredentialsError(missingKeyMessage)
	}

	return &Connection{cfg: cfg.WithDefaults()}, nil
}

// Configure replaces the API key. A blank key is rejected and the current
// key stays in place. Calls already running keep the transport they borrowed.
func (c *Connection) Configure(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return retell.NewCredentialsError(missingKeyMessage)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	updated := *c.cfg
	updated.APIKey = apiKey

	c.cfg = &updated
	c.transport.Store(nil)

	return nil
}

// Config returns the effective configuration, including the key set by the
// latest Configure. The returned value must not be modified.
func (c *Connection) Config() *retell.Config {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cfg
}

// HTTPClient returns the shared transport, building it on first use.
func (c *Connection) HTTPClient() (*http.Client, error) {
	if transport := c.transport.Load(); transport != nil {
		return transport, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if transport := c.transport.Load(); transport != nil {
		return transport, nil
	}

	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, retell.NewCredentialsError(missingKeyMessage)
	}

	transport := c.build(c.cfg)
	c.transport.Store(transport)
	c.builds++

	return transport, nil
}

// build wires the transport: JSON encoding, extra headers, bearer auth, retry
// policy, response stages, then timeouts.
func (c *Connection) build(cfg *retell.Config) *http.Client {
	apiKey := cfg.APIKey

	chain := retell.NewInterceptorChain()
	chain.AddRequestInterceptor(retell.JSONEncodingInterceptor())

	if len(cfg.Headers) > 0 {
		chain.AddRequestInterceptor(retell.HeaderInterceptor(cfg.Headers))
	}

	chain.AddRequestInterceptor(retell.BearerAuthInterceptor(func(context.Context) (string, error) {
		return apiKey, nil
	}))

	if cfg.Metrics != nil {
		chain.AddRequestInterceptor(retell.MetricsRequestInterceptor(cfg.Metrics))
		chain.AddResponseInterceptor("metrics", retell.MetricsResponseInterceptor(cfg.Metrics))
	}

	if cfg.Logger != nil {
		chain.AddRequestInterceptor(retell.LoggingInterceptor(cfg.Logger))
		chain.AddResponseInterceptor("logging", retell.LoggingResponseInterceptor(cfg.Logger))
	}

	chain.AddErrorBoundary("problem_details", retell.ProblemDetailsBoundary())
	chain.AddResponseInterceptor("snake_case", retell.SnakeCaseInterceptor())

	opts := []http.Option{
		http.WithInterceptors(chain),
		http.WithRetryPolicy(http.RetryPolicyFromConfig(cfg)),
		http.WithTimeouts(cfg.Timeout, cfg.OpenTimeout),
	}

	if cfg.Logger != nil {
		opts = append(opts, http.WithLogger(cfg.Logger))
	}

	if cfg.Debug {
		opts = append(opts, http.WithDebug(true))
	}

	if cfg.UserAgent != "" {
		opts = append(opts, http.WithUserAgent(cfg.UserAgent))
	}

	if cfg.Transport != nil {
		opts = append(opts, http.WithTransport(cfg.Transport))
	}

	return http.NewClient(cfg.BaseURL, opts...)
}
