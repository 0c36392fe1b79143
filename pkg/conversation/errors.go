package conversation

import (
	"fmt"

	"github.com/go-go-golems/fulfillment/pkg/responses"
	"github.com/pkg/errors"
)

var (
	// ErrDigested is returned when a response is added to or finalized from a
	// conversation that was already finalized.
	ErrDigested = errors.New("response has already been digested")
	// ErrNoResponse is returned by Finalize when the handler never added a response.
	ErrNoResponse = errors.New("no response has been set")
	// ErrNotDialogflow is returned by Dialogflow only operations on Actions SDK turns.
	ErrNotDialogflow = errors.New("operation requires a dialogflow conversation")
	ErrValidation    = errors.New("invalid response")
	// ErrUnsupportedFragment is returned by Finalize for a fragment whose kind
	// does not match its type.
	ErrUnsupportedFragment = errors.New("unsupported response fragment")
)

// SimpleRequiredMessage is the validation failure of a display-only response.
const SimpleRequiredMessage = "a simple response is required in addition to this type of response"

// ValidationError reports a merged response the platform would reject.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ErrValidation.Error()
	}
	return e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// FragmentError reports a fragment Finalize cannot merge.
type FragmentError struct {
	Kind responses.FragmentKind
	Type string
}

func newFragmentError(f responses.Fragment) *FragmentError {
	return &FragmentError{Kind: f.Kind(), Type: fmt.Sprintf("%T", f)}
}

func (e *FragmentError) Error() string {
	if e == nil {
		return ErrUnsupportedFragment.Error()
	}
	return fmt.Sprintf("%s: %s reports kind %s", ErrUnsupportedFragment, e.Type, e.Kind)
}

func (e *FragmentError) Is(target error) bool { return target == ErrUnsupportedFragment }
