package retell

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrInterceptorPanic = errors.New("response interceptor panicked")
)

// Request represents an HTTP request that can be intercepted.
type Request struct {
	Method   string
	Path     string
	Headers  http.Header
	Payload  interface{}
	Body     []byte
	Metadata map[string]interface{}
}

// Response represents an HTTP response that can be intercepted.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	// Data is the decoded, normalized body: a Document for JSON objects.
	Data interface{}
	// Error is set when an error boundary replaced the response.
	Error Problem
}

// Document returns Data as a Document, or nil when the body was not a JSON object.
func (r *Response) Document() Document {
	doc, _ := r.Data.(Document)

	return doc
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called after a response is received.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// ErrorBoundary receives any error or panic raised by the response stages
// registered after it. Returning nil marks the error as handled.
type ErrorBoundary func(ctx context.Context, req *Request, resp *Response, err error) error

// responseStage is either an interceptor or a boundary.
type responseStage struct {
	name        string
	interceptor ResponseInterceptor
	boundary    ErrorBoundary
}

// InterceptorChain manages an ordered chain of interceptors.
type InterceptorChain struct {
	requestInterceptors []RequestInterceptor
	responseStages      []responseStage
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors: make([]RequestInterceptor, 0),
		responseStages:      make([]responseStage, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor appends a response stage.
func (c *InterceptorChain) AddResponseInterceptor(name string, interceptor ResponseInterceptor) {
	c.responseStages = append(c.responseStages, responseStage{name: name, interceptor: interceptor})
}

// AddErrorBoundary appends a boundary that wraps every response stage added
// after it.
func (c *InterceptorChain) AddErrorBoundary(name string, boundary ErrorBoundary) {
	c.responseStages = append(c.responseStages, responseStage{name: name, boundary: boundary})
}

// ResponseStages returns the names of the response stages in execution order.
func (c *InterceptorChain) ResponseStages() []string {
	names := make([]string, 0, len(c.responseStages))
	for _, stage := range c.responseStages {
		names = append(names, stage.name)
	}

	return names
}

// ExecuteRequestInterceptors runs all request interceptors.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs the response stages in order.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	return c.runResponseStages(ctx, req, resp, 0)
}

func (c *InterceptorChain) runResponseStages(ctx context.Context, req *Request, resp *Response, from int) error {
	for i := from; i < len(c.responseStages); i++ {
		stage := c.responseStages[i]

		if stage.boundary != nil {
			err := c.guardResponseStages(ctx, req, resp, i+1)
			if err != nil {
				return stage.boundary(ctx, req, resp, err)
			}

			return nil
		}

		err := stage.interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor %q failed: %w", stage.name, err)
		}
	}

	return nil
}

func (c *InterceptorChain) guardResponseStages(ctx context.Context, req *Request, resp *Response, from int) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: %v", ErrInterceptorPanic, recovered)
		}
	}()

	return c.runResponseStages(ctx, req, resp, from)
}

// Common Interceptors

// JSONEncodingInterceptor encodes Request.Payload as the JSON body.
func JSONEncodingInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		req.Headers.Set("Accept", "application/json")

		if req.Payload == nil {
			return nil
		}

		body, err := json.Marshal(req.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}

		req.Body = body
		req.Headers.Set("Content-Type", "application/json")

		return nil
	}
}

// BearerAuthInterceptor adds an Authorization: Bearer header. A blank token
// fails with a CredentialsError before anything is sent.
func BearerAuthInterceptor(tokenProvider func(context.Context) (string, error)) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		token, err := tokenProvider(ctx)
		if err != nil {
			return fmt.Errorf("failed to get authentication token: %w", err)
		}

		if strings.TrimSpace(token) == "" {
			return NewCredentialsError("Attempting to make API call without valid API key")
		}

		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		req.Headers.Set("Authorization", "Bearer "+token)

		return nil
	}
}

// HeaderInterceptor adds custom headers to requests.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("API Request", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
		}

		switch {
		case resp.Error != nil:
			fields["problem"] = string(resp.Error.Kind())
			logger.Error("API Response Error", fields)
		case !resp.IsSuccess():
			logger.Warn("API Response", fields)
		default:
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// IsJSONContentType reports whether a Content-Type header denotes JSON.
func IsJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}

	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// SnakeCaseInterceptor rewrites the keys of a JSON body to snake_case and
// decodes it into Response.Data. Empty and non-JSON bodies pass through.
func SnakeCaseInterceptor() ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		if len(bytes.TrimSpace(resp.Body)) == 0 || !IsJSONContentType(resp.Headers.Get("Content-Type")) {
			return nil
		}

		normalized, err := normalizeKeys(resp.Body)
		if err != nil {
			return err
		}

		data, err := decodeData(normalized)
		if err != nil {
			return err
		}

		resp.Body = normalized
		resp.Data = data

		return nil
	}
}

// ProblemDetailsBoundary replaces the response with an application/problem+json
// document when a later stage fails. Errors outside the taxonomy are reported
// as UnexpectedError.
func ProblemDetailsBoundary() ErrorBoundary {
	return func(ctx context.Context, req *Request, resp *Response, err error) error {
		reported := AsProblem(err, "Error occurred while processing the API response")
		details := reported.ProblemDetails()

		body, marshalErr := json.Marshal(details)
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal problem details: %w", marshalErr)
		}

		data, decodeErr := decodeData(body)
		if decodeErr != nil {
			return decodeErr
		}

		resp.StatusCode = details.Status
		resp.Headers = make(http.Header)
		resp.Headers.Set("Content-Type", ProblemContentType)
		resp.Headers.Set("Content-Language", "en")
		resp.Body = body
		resp.Data = data
		resp.Error = reported

		return nil
	}
}
