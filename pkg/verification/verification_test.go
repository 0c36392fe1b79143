package verification

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	claims map[string]any
	err    error
	seen   []string
}

func (f *fakeIdentity) VerifyIDToken(_ context.Context, token, audience string) (map[string]any, error) {
	f.seen = append(f.seen, token+"@"+audience)
	return f.claims, f.err
}

func headers(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func TestHeadersVerifier(t *testing.T) {
	s := &Settings{Verifier: Headers{"X-Secret": "s3cr3t"}}

	assert.Nil(t, s.Check(context.Background(), headers("x-secret", "s3cr3t")))

	verr := s.Check(context.Background(), headers("x-secret", "wrong"))
	require.NotNil(t, verr)
	assert.Equal(t, http.StatusForbidden, verr.Status)
	assert.Contains(t, verr.Message, "does not match")

	verr = s.Check(context.Background(), http.Header{})
	require.NotNil(t, verr)
	assert.Contains(t, verr.Message, "missing")
	assert.True(t, errors.Is(verr, ErrVerification))
}

func TestCustomStatusAndTransform(t *testing.T) {
	s := &Settings{
		Verifier:       Headers{"X-Secret": "s3cr3t"},
		Status:         http.StatusUnauthorized,
		ErrorTransform: func(string) string { return "nope" },
	}
	verr := s.Check(context.Background(), http.Header{})
	require.NotNil(t, verr)
	assert.Equal(t, http.StatusUnauthorized, verr.Status)
	assert.Equal(t, map[string]string{"error": "nope"}, verr.Body())
}

func TestIdentityToken(t *testing.T) {
	id := &fakeIdentity{claims: map[string]any{"aud": "project-1"}}
	s := &Settings{Verifier: IdentityToken{ProjectID: "project-1", Verifier: id}}

	assert.Nil(t, s.Check(context.Background(), headers(HeaderSignature, "tok")))
	assert.Equal(t, []string{"tok@project-1"}, id.seen)

	require.NotNil(t, s.Check(context.Background(), http.Header{}))

	id.claims = map[string]any{"aud": "other"}
	require.NotNil(t, s.Check(context.Background(), headers(HeaderSignature, "tok")))

	id.err = errors.New("expired")
	verr := s.Check(context.Background(), headers(HeaderSignature, "tok"))
	require.NotNil(t, verr)
	assert.Contains(t, verr.Message, "expired")
}

func TestNoVerifierPasses(t *testing.T) {
	var s *Settings
	assert.Nil(t, s.Check(context.Background(), http.Header{}))
	assert.Equal(t, "none", s.String())
	assert.Equal(t, "identity-token(p)", (&Settings{Verifier: IdentityToken{ProjectID: "p"}}).String())
}
