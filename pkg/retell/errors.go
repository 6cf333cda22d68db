package retell

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ErrorTypeBaseURI namespaces the type URI of every problem kind.
const ErrorTypeBaseURI = "https://api.retell.ai/errors/"

// ProblemContentType is the media type of serialized problem details.
const ProblemContentType = "application/problem+json"

// Kind identifies a member of the error taxonomy.
type Kind string

// The closed set of problem kinds.
const (
	KindCredentialsInvalid Kind = "invalid-credentials"
	KindPhoneNumberInvalid Kind = "invalid-phone-number"
	KindAPIError           Kind = "api-error"
	KindNetworkError       Kind = "network-error"
	KindUnexpectedError    Kind = "unexpected-error"
)

// TypeURI returns the documentation URI for the kind.
func (k Kind) TypeURI() string {
	return ErrorTypeBaseURI + string(k)
}

// Static errors for err113 compliance.
var (
	ErrMissingCredentials = errors.New("missing or invalid API key")
	ErrNotProblemDetails  = errors.New("payload is not a problem details document")
	ErrNotAnObject        = errors.New("response body is not a JSON object")
)

// ProblemDetails is the RFC 9457 representation of a Problem.
type ProblemDetails struct {
	Type       string `json:"type"                 yaml:"type"`
	Title      string `json:"title"                yaml:"title"`
	Status     int    `json:"status"               yaml:"status"`
	Detail     string `json:"detail,omitempty"     yaml:"detail,omitempty"`
	Instance   string `json:"instance,omitempty"   yaml:"instance,omitempty"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// ToMap returns the problem details as a map without absent keys.
func (p ProblemDetails) ToMap() map[string]any {
	out := map[string]any{
		"type":   p.Type,
		"title":  p.Title,
		"status": p.Status,
	}

	if p.Detail != "" {
		out["detail"] = p.Detail
	}

	if p.Instance != "" {
		out["instance"] = p.Instance
	}

	if p.Suggestion != "" {
		out["suggestion"] = p.Suggestion
	}

	return out
}

// ParseProblemDetails parses a problem details document.
func ParseProblemDetails(data []byte) (*ProblemDetails, error) {
	var details ProblemDetails

	err := json.Unmarshal(data, &details)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal problem details: %w", err)
	}

	if details.Type == "" || details.Status == 0 {
		return nil, ErrNotProblemDetails
	}

	return &details, nil
}

// Problem is implemented by every member of the error taxonomy. The set is
// closed: only the types in this file implement it.
type Problem interface {
	error
	Kind() Kind
	Status() int
	ProblemDetails() ProblemDetails
	sealed()
}

// problem carries the fields shared by all kinds.
type problem struct {
	kind       Kind
	title      string
	status     int
	detail     string
	instance   string
	suggestion string
}

func (p *problem) Kind() Kind {
	return p.kind
}

func (p *problem) Status() int {
	return p.status
}

func (p *problem) ProblemDetails() ProblemDetails {
	return ProblemDetails{
		Type:       p.kind.TypeURI(),
		Title:      p.title,
		Status:     p.status,
		Detail:     p.detail,
		Instance:   p.instance,
		Suggestion: p.suggestion,
	}
}

func (p *problem) sealed() {}

func (p *problem) Error() string {
	if p.detail == "" {
		return p.title
	}

	return fmt.Sprintf("%s: %s", p.title, p.detail)
}

// CredentialsError reports a missing or blank API key.
type CredentialsError struct {
	problem
}

// NewCredentialsError builds a CredentialsError. An empty message uses the
// default title.
func NewCredentialsError(message string) *CredentialsError {
	if message == "" {
		message = "Missing or invalid API key"
	}

	return &CredentialsError{problem{
		kind:       KindCredentialsInvalid,
		title:      message,
		status:     http.StatusUnauthorized,
		detail:     "The API key provided was missing or invalid",
		suggestion: "Check if you've set the correct API key or generate a new one from your Retell dashboard",
	}}
}

// Is lets errors.Is match ErrMissingCredentials.
func (e *CredentialsError) Is(target error) bool {
	return target == ErrMissingCredentials
}

// PhoneNumberError reports a phone parameter that is not in E.164 shape.
type PhoneNumberError struct {
	problem

	Param  string
	Number string
}

// NewPhoneNumberError builds a PhoneNumberError for the named parameter.
func NewPhoneNumberError(param, number string) *PhoneNumberError {
	return &PhoneNumberError{
		problem: problem{
			kind:       KindPhoneNumberInvalid,
			title:      fmt.Sprintf("Invalid %s format", param),
			status:     http.StatusBadRequest,
			detail:     fmt.Sprintf("The %s provided (%s) is not a valid phone number", param, number),
			suggestion: "Phone numbers must be in E.164 format (e.g., +14157774444)",
		},
		Param:  param,
		Number: number,
	}
}

// APIError reports a non-2xx response from the remote service.
type APIError struct {
	problem

	StatusCode int
	Body       []byte
}

// NewAPIError builds an APIError mirroring the remote status.
func NewAPIError(status int, body []byte) *APIError {
	if status < 100 || status > 599 {
		status = http.StatusBadGateway
	}

	return &APIError{
		problem: problem{
			kind:       KindAPIError,
			title:      fmt.Sprintf("API Error (Status %d)", status),
			status:     status,
			detail:     strings.TrimSpace(string(body)),
			suggestion: "Check the error details and adjust your request accordingly",
		},
		StatusCode: status,
		Body:       body,
	}
}

// NetworkError reports a transport-level failure.
type NetworkError struct {
	problem

	cause error
}

// NewNetworkError builds a NetworkError.
func NewNetworkError(detail string, cause error) *NetworkError {
	return &NetworkError{
		problem: problem{
			kind:       KindNetworkError,
			title:      "Network Error",
			status:     http.StatusServiceUnavailable,
			detail:     detail,
			suggestion: "Check your network connection or try again later",
		},
		cause: cause,
	}
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.cause
}

// UnexpectedError wraps any failure outside the other kinds. Each instance
// carries a fresh correlation ID.
type UnexpectedError struct {
	problem

	ID    string
	cause error
}

// NewUnexpectedError builds an UnexpectedError. cause may be nil.
func NewUnexpectedError(message string, cause error) *UnexpectedError {
	errorID := uuid.NewString()

	detail := message
	if cause != nil {
		detail = fmt.Sprintf("%s: %s", message, cause.Error())
	}

	return &UnexpectedError{
		problem: problem{
			kind:       KindUnexpectedError,
			title:      "Unexpected error",
			status:     http.StatusInternalServerError,
			detail:     detail,
			instance:   "/errors/" + errorID,
			suggestion: "Please contact support and reference error ID: " + errorID,
		},
		ID:    errorID,
		cause: cause,
	}
}

// Unwrap returns the wrapped cause.
func (e *UnexpectedError) Unwrap() error {
	return e.cause
}

// AsProblem returns the taxonomy member found in err's chain. Anything else is
// wrapped into an UnexpectedError described by message.
func AsProblem(err error, message string) Problem {
	if err == nil {
		return nil
	}

	var p Problem
	if errors.As(err, &p) {
		return p
	}

	return NewUnexpectedError(message, err)
}

// TagFor returns the Result tag conventionally used for a problem kind.
func TagFor(p Problem) Tag {
	switch p.Kind() {
	case KindCredentialsInvalid:
		return TagInvalidCredentials
	case KindPhoneNumberInvalid:
		return TagInvalidPhoneNumber
	case KindAPIError:
		return TagAPIError
	case KindNetworkError:
		return TagNetworkError
	default:
		return TagUnexpectedError
	}
}
