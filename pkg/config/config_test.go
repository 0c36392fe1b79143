package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-go-golems/fulfillment/pkg/verification"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
address: ":9000"
script: app.yaml
write-timeout: 3s
verification:
  headers:
    x-secret: s3cret
  status: 401
`), 0o644))

	v, err := NewViper("fulfillment", path)
	require.NoError(t, err)
	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, ":9000", s.Address)
	assert.Equal(t, "/", s.Path)
	assert.Equal(t, 3*time.Second, s.WriteTimeout)
	assert.Equal(t, 10*time.Second, s.ReadTimeout)
	assert.Equal(t, 401, s.Verification.Status)
	assert.Equal(t, map[string]string{"x-secret": "s3cret"}, s.Verification.Headers)
	assert.Equal(t, int64(64), s.Events.BufferSize)
}

func TestMissingExplicitFileFails(t *testing.T) {
	_, err := NewViper("fulfillment", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FULFILLMENT_SCRIPT", "env.yaml")
	t.Setenv("FULFILLMENT_EVENTS_VERBOSE", "true")
	v, err := NewViper("fulfillment-test", "")
	require.NoError(t, err)
	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "env.yaml", s.Script)
	assert.True(t, s.Events.Verbose)
}

func TestFlagsBindToNestedKeys(t *testing.T) {
	cmd := &cobra.Command{Use: "serve"}
	AddServeFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--script", "app.yaml",
		"--verification-project-id", "my-project",
	}))

	v, err := NewViper("fulfillment-test", "")
	require.NoError(t, err)
	require.NoError(t, BindFlags(v, cmd))

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "my-project", s.Verification.ProjectID)
}

func TestValidate(t *testing.T) {
	ok := Settings{Address: ":1", Path: "/", Script: "a.yaml"}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.Path = "hook"
	assert.Error(t, bad.Validate())

	bad = ok
	bad.Script = ""
	assert.Error(t, bad.Validate())

	bad = ok
	bad.Verification.Status = 200
	assert.Error(t, bad.Validate())
}

type stubIdentity struct{}

func (stubIdentity) VerifyIDToken(context.Context, string, string) (map[string]any, error) {
	return map[string]any{}, nil
}

func TestVerificationSettings(t *testing.T) {
	s := Settings{}
	vs, err := s.VerificationSettings(nil)
	require.NoError(t, err)
	assert.Nil(t, vs)

	s.Verification.Headers = map[string]string{"a": "b"}
	vs, err = s.VerificationSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, verification.Headers{"a": "b"}, vs.Verifier)

	s.Verification = VerificationSettings{ProjectID: "p"}
	_, err = s.VerificationSettings(nil)
	assert.Error(t, err)

	vs, err = s.VerificationSettings(stubIdentity{})
	require.NoError(t, err)
	assert.Equal(t, "identity-token(p)", vs.String())

	s.Verification.Headers = map[string]string{"a": "b"}
	_, err = s.VerificationSettings(stubIdentity{})
	assert.Error(t, err)
}
