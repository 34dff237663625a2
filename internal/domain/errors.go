package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"

	// Completion service errors
	CodeConfigurationMissing ErrorCode = "CONFIGURATION_MISSING"
	CodeUpstreamUnavailable  ErrorCode = "UPSTREAM_UNAVAILABLE"
	CodeMalformedResponse    ErrorCode = "MALFORMED_RESPONSE"

	// Progression errors
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	CodeNoTopicSelected   ErrorCode = "NO_TOPIC_SELECTED"
	CodeRequestInFlight   ErrorCode = "REQUEST_IN_FLIGHT"
	CodeStaleResponse     ErrorCode = "STALE_RESPONSE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError carrying the same code, so callers can write
// errors.Is(err, domain.ErrInvalidTransition).
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithContext attaches a key/value pair surfaced in error responses.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Context: e.Context,
	})
}

// Sentinels for errors.Is matching.
var (
	ErrInternal             = &DomainError{Code: CodeInternal, Message: "internal error"}
	ErrInvalidInput         = &DomainError{Code: CodeInvalidInput, Message: "invalid input"}
	ErrNotFound             = &DomainError{Code: CodeNotFound, Message: "not found"}
	ErrUnauthorized         = &DomainError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrConfigurationMissing = &DomainError{Code: CodeConfigurationMissing, Message: "configuration missing"}
	ErrUpstreamUnavailable  = &DomainError{Code: CodeUpstreamUnavailable, Message: "upstream unavailable"}
	ErrMalformedResponse    = &DomainError{Code: CodeMalformedResponse, Message: "malformed response"}
	ErrInvalidTransition    = &DomainError{Code: CodeInvalidTransition, Message: "invalid transition"}
	ErrNoTopicSelected      = &DomainError{Code: CodeNoTopicSelected, Message: "no topic selected"}
	ErrRequestInFlight      = &DomainError{Code: CodeRequestInFlight, Message: "request in flight"}
	ErrStaleResponse        = &DomainError{Code: CodeStaleResponse, Message: "stale response"}
)

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewTopicNotFoundError(topic string) *DomainError {
	return NewError(CodeNotFound, fmt.Sprintf("Topic not found: %s", topic), nil).
		WithContext("topic", topic)
}

func NewSessionNotFoundError(id string) *DomainError {
	return NewError(CodeNotFound, fmt.Sprintf("Session not found: %s", id), nil).
		WithContext("session_id", id)
}

func NewConfigurationMissingError(what string) *DomainError {
	return NewError(CodeConfigurationMissing, fmt.Sprintf("Missing configuration: %s", what), nil)
}

func NewUpstreamUnavailableError(cause error) *DomainError {
	return NewError(CodeUpstreamUnavailable, "Completion service unavailable", cause)
}

func NewMalformedResponseError(message string, cause error) *DomainError {
	return NewError(CodeMalformedResponse, message, cause)
}

func NewInvalidTransitionError(from Stage, event string) *DomainError {
	return NewError(CodeInvalidTransition,
		fmt.Sprintf("Cannot %s from stage %s", event, from), nil).
		WithContext("stage", from.String()).
		WithContext("event", event)
}

func NewNoTopicSelectedError() *DomainError {
	return NewError(CodeNoTopicSelected, "Select a topic first", nil)
}

func NewRequestInFlightError(stage Stage) *DomainError {
	return NewError(CodeRequestInFlight,
		fmt.Sprintf("A request for stage %s is already in flight", stage), nil).
		WithContext("stage", stage.String())
}

func NewStaleResponseError(stage Stage) *DomainError {
	return NewError(CodeStaleResponse,
		fmt.Sprintf("Response for stage %s arrived after the session moved on", stage), nil).
		WithContext("stage", stage.String())
}
