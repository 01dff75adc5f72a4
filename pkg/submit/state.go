package submit

import "github.com/goliatone/go-orderform/pkg/model"

// State is a step of the submission lifecycle:
//
//	Idle -> Validating -> (Invalid | Sending) -> (Success | Error) -> Idle
type State int

const (
	StateIdle State = iota
	StateValidating
	StateInvalid
	StateSending
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateInvalid:
		return "invalid"
	case StateSending:
		return "sending"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is what a binding shows after a submission attempt. Status is the
// inline status line; Overlay is the success panel text and stays empty
// unless the backend accepted an order.
type Result struct {
	State       State
	Status      string
	Overlay     string
	FieldErrors []model.FieldError
	Metadata    Metadata
}

// Succeeded reports whether the attempt ended in Success.
func (r Result) Succeeded() bool { return r.State == StateSuccess }

// Observer is notified on every state transition.
type Observer func(token string, state State)
