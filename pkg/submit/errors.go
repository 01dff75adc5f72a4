package submit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-orderform/pkg/model"
)

// User-visible status messages.
const (
	MessageContactMethod  = "Please provide at least one contact method: email or phone."
	MessageInFlight       = "A submission is already in progress. Please wait."
	MessageMisconfigured  = "This form is not set up to send requests yet. Please reach out directly."
	MessageNetwork        = "Network error. Please check your connection and try again."
	MessageOrderFailure   = "Sorry, there was a problem sending your request. Please try again."
	MessageContactFailure = "Sorry, there was a problem sending your message. Please try again."
	MessageHoneypot       = "Thanks for your message."
)

// ErrInFlight is returned when a submission with the same form token is
// already outstanding.
var ErrInFlight = errors.New("submit: submission already in progress")

// ValidationError carries local field failures. Nothing was sent.
type ValidationError struct {
	Fields []model.FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		names = append(names, fe.Field)
	}
	return fmt.Sprintf("submit: validation failed: %s", strings.Join(names, ", "))
}

// ConfigurationError reports an endpoint that was never configured.
type ConfigurationError struct {
	Endpoint string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("submit: endpoint %q misconfigured: %s", e.Endpoint, e.Reason)
}

// ServerRejection is a non-2xx answer from the form backend.
type ServerRejection struct {
	StatusCode int
	Messages   []string
	Fields     []model.FieldError
}

func (e *ServerRejection) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("submit: rejected with status %d: %s", e.StatusCode, e.Messages[0])
	}
	return fmt.Sprintf("submit: rejected with status %d", e.StatusCode)
}

// Message returns the first non-empty backend message.
func (e *ServerRejection) Message() string {
	for _, msg := range e.Messages {
		if msg = strings.TrimSpace(msg); msg != "" {
			return msg
		}
	}
	return ""
}

// TransportFailure wraps a request that never produced a response.
type TransportFailure struct {
	Err error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("submit: transport: %v", e.Err)
}

func (e *TransportFailure) Unwrap() error { return e.Err }
