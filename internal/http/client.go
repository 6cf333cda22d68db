package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/retell-client/internal/constants"
	"github.com/fivetwenty-io/retell-client/pkg/retell"
)

// Logger is the logging interface used by the HTTP layer.
type Logger = retell.Logger

// Response is the response handed back by Do, after the response interceptors ran.
type Response = retell.Response

// Request describes a call relative to the client's base URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Client sends requests through an interceptor chain and a retrying transport.
// It is safe for concurrent use; its configuration is fixed once built.
type Client struct {
	baseURL     string
	chain       *retell.InterceptorChain
	retryClient *retryablehttp.Client
	logger      Logger
	debug       bool
	userAgent   string
	policy      RetryPolicy
	timeout     time.Duration
	openTimeout time.Duration
	transport   http.RoundTripper
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug logs every request and response.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithInterceptors sets the interceptor chain run around every request.
func WithInterceptors(chain *retell.InterceptorChain) Option {
	return func(c *Client) {
		if chain != nil {
			c.chain = chain
		}
	}
}

// WithRetryPolicy sets the retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithTimeouts sets the per-attempt timeout and the connection (open) timeout.
func WithTimeouts(timeout, openTimeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}

		if openTimeout > 0 {
			c.openTimeout = openTimeout
		}
	}
}

// WithTransport replaces the base round tripper. The open timeout is not
// applied to a custom transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// NewClient creates a new HTTP client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		chain:       retell.NewInterceptorChain(),
		userAgent:   constants.DefaultUserAgent,
		policy:      DefaultRetryPolicy(),
		timeout:     retell.DefaultTimeout,
		openTimeout: retell.DefaultOpenTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.retryClient = client.buildRetryClient()

	return client
}

func (c *Client) buildRetryClient() *retryablehttp.Client {
	transport := c.transport
	if transport == nil {
		pooled := cleanhttp.DefaultPooledTransport()
		pooled.DialContext = (&net.Dialer{
			Timeout:   c.openTimeout,
			KeepAlive: constants.DialKeepAlive,
		}).DialContext
		transport = pooled
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{
		Timeout:   c.timeout,
		Transport: transport,
	}
	retryClient.RetryMax = c.policy.retries()
	retryClient.RetryWaitMin = c.policy.Interval
	retryClient.RetryWaitMax = c.policy.MaxInterval
	retryClient.CheckRetry = c.policy.CheckRetry
	retryClient.Backoff = c.policy.Backoff
	retryClient.Logger = nil

	if c.logger != nil {
		retryClient.Logger = &leveledLogger{logger: c.logger}
	}

	return retryClient
}

// Policy returns the retry policy in effect.
func (c *Client) Policy() RetryPolicy {
	return c.policy
}

// Do sends the request. A non-2xx status is not an error: the response is
// returned for the caller to classify. Transport failures come back as
// *retell.NetworkError; failures of the interceptor chain are returned as is.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	interceptReq := &retell.Request{
		Method:   req.Method,
		Path:     req.Path,
		Headers:  make(http.Header),
		Payload:  req.Body,
		Metadata: make(map[string]interface{}),
	}

	if c.userAgent != "" {
		interceptReq.Headers.Set("User-Agent", c.userAgent)
	}

	for key, value := range req.Headers {
		interceptReq.Headers.Set(key, value)
	}

	err := c.chain.ExecuteRequestInterceptors(ctx, interceptReq)
	if err != nil {
		return nil, err
	}

	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	body, err := requestBody(interceptReq)
	if err != nil {
		return nil, err
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header = interceptReq.Headers.Clone()

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	httpResp, err := c.retryClient.Do(httpReq)
	if err != nil {
		return nil, retell.NewNetworkError("Error with Retell API: "+err.Error(), err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, retell.NewNetworkError("Error reading Retell API response: "+err.Error(), err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status": httpResp.StatusCode,
			"bytes":  len(respBody),
		})
	}

	err = c.chain.ExecuteResponseInterceptors(ctx, interceptReq, resp)
	if err != nil {
		return resp, err
	}

	return resp, nil
}

// requestBody returns the encoded body. Requests whose chain did not encode the
// payload are sent as JSON.
func requestBody(req *retell.Request) (interface{}, error) {
	if req.Body != nil {
		return req.Body, nil
	}

	if req.Payload == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	if req.Headers.Get("Content-Type") == "" {
		req.Headers.Set("Content-Type", "application/json")
	}

	return encoded, nil
}

// leveledLogger adapts Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fieldsFromPairs(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fieldsFromPairs(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fieldsFromPairs(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fieldsFromPairs(keysAndValues))
}

func fieldsFromPairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}
