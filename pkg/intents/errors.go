package intents

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrHandlerNotFound  = errors.New("handler not found")
	ErrCircularRedirect = errors.New("circular intent redirect")
)

// NotFoundError reports an action without handler and no fallback.
type NotFoundError struct {
	Action string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ErrHandlerNotFound.Error()
	}
	return fmt.Sprintf("no handler registered for intent %q and no fallback handler set", e.Action)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrHandlerNotFound }

// CircularRedirectError reports a redirect target visited twice during one resolution.
type CircularRedirectError struct {
	Key string
}

func (e *CircularRedirectError) Error() string {
	if e == nil {
		return ErrCircularRedirect.Error()
	}
	return fmt.Sprintf("circular intent redirect %q", e.Key)
}

func (e *CircularRedirectError) Is(target error) bool { return target == ErrCircularRedirect }
