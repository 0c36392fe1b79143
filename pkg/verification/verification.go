// Package verification checks that an inbound turn comes from the expected
// platform before any handler runs.
package verification

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// HeaderSignature carries the identity token of Actions on Google requests.
const HeaderSignature = "Google-Assistant-Signature"

// DefaultStatus is answered when verification fails.
const DefaultStatus = http.StatusForbidden

var ErrVerification = errors.New("verification failed")

// Error is a verification failure, rendered as {"error": Message}.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ErrVerification.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool { return target == ErrVerification }

// Body is the JSON body of a failed verification.
func (e *Error) Body() map[string]string {
	return map[string]string{"error": e.Message}
}

// Verifier checks the headers of a turn.
type Verifier interface {
	Verify(ctx context.Context, headers http.Header) error
}

// Headers requires every listed header to carry the given value.
type Headers map[string]string

func (h Headers) Verify(_ context.Context, headers http.Header) error {
	for key, want := range h {
		got := headers.Get(key)
		if got == "" {
			return errors.Errorf("header %q missing", strings.ToLower(key))
		}
		if got != want {
			return errors.Errorf("header %q does not match the expected value", strings.ToLower(key))
		}
	}
	return nil
}

// IdentityVerifier validates a signed identity token for an audience and
// returns its claims. Implementations talk to the key issuing service.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, token string, audience string) (map[string]any, error)
}

// IdentityToken requires a valid signature token issued for ProjectID.
type IdentityToken struct {
	ProjectID string
	Verifier  IdentityVerifier
}

func (t IdentityToken) Verify(ctx context.Context, headers http.Header) error {
	token := headers.Get(HeaderSignature)
	if token == "" {
		return errors.Errorf("no identity token found in header %q", strings.ToLower(HeaderSignature))
	}
	if t.Verifier == nil {
		return errors.New("no identity verifier configured")
	}
	claims, err := t.Verifier.VerifyIDToken(ctx, token, t.ProjectID)
	if err != nil {
		return errors.Wrap(err, "identity token verification failed")
	}
	if aud, ok := claims["aud"].(string); ok && aud != t.ProjectID {
		return errors.Errorf("identity token audience %q does not match project %q", aud, t.ProjectID)
	}
	return nil
}

// Settings configures inbound verification of an application.
type Settings struct {
	Verifier Verifier
	// Status defaults to 403.
	Status int
	// ErrorTransform rewrites the message sent to the caller.
	ErrorTransform func(message string) string
}

// Check runs the verifier. It returns nil when the turn may proceed.
func (s *Settings) Check(ctx context.Context, headers http.Header) *Error {
	if s == nil || s.Verifier == nil {
		return nil
	}
	err := s.Verifier.Verify(ctx, headers)
	if err == nil {
		return nil
	}
	status := s.Status
	if status == 0 {
		status = DefaultStatus
	}
	msg := err.Error()
	if s.ErrorTransform != nil {
		msg = s.ErrorTransform(msg)
	}
	return &Error{Status: status, Message: msg}
}

// String describes the configured verifier for logs.
func (s *Settings) String() string {
	if s == nil || s.Verifier == nil {
		return "none"
	}
	switch v := s.Verifier.(type) {
	case Headers:
		return fmt.Sprintf("headers(%d)", len(v))
	case IdentityToken:
		return "identity-token(" + v.ProjectID + ")"
	}
	return fmt.Sprintf("%T", s.Verifier)
}
