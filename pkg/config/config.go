// Package config loads the settings of the fulfillment server from flags,
// environment and config file through viper.
package config

import (
	"strings"
	"time"

	"github.com/go-go-golems/fulfillment/pkg/verification"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables, e.g. FULFILLMENT_ADDRESS.
const EnvPrefix = "FULFILLMENT"

type VerificationSettings struct {
	// Headers must all be present with the given values.
	Headers map[string]string `mapstructure:"headers"`
	// ProjectID enables identity token verification against this audience.
	ProjectID string `mapstructure:"project-id"`
	Status    int    `mapstructure:"status"`
}

type EventsSettings struct {
	Verbose    bool  `mapstructure:"verbose"`
	BufferSize int64 `mapstructure:"buffer-size"`
}

// Settings is the server configuration.
type Settings struct {
	Address         string        `mapstructure:"address"`
	Path            string        `mapstructure:"path"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
	// Script is the scripted app definition served by the server.
	Script string `mapstructure:"script"`
	// Transcript is a sqlite file recording turn events; empty disables it.
	Transcript   string               `mapstructure:"transcript"`
	Verification VerificationSettings `mapstructure:"verification"`
	Events       EventsSettings       `mapstructure:"events"`
}

// SetDefaults registers the defaults of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("address", ":8080")
	v.SetDefault("path", "/")
	v.SetDefault("script", "")
	v.SetDefault("transcript", "")
	v.SetDefault("read-timeout", 10*time.Second)
	v.SetDefault("write-timeout", 10*time.Second)
	v.SetDefault("shutdown-timeout", 5*time.Second)
	v.SetDefault("verification.project-id", "")
	v.SetDefault("verification.status", verification.DefaultStatus)
	v.SetDefault("events.verbose", false)
	v.SetDefault("events.buffer-size", 64)
}

// AddServeFlags registers the serve flags; they are bound with BindFlags.
func AddServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("address", ":8080", "Listen address")
	cmd.Flags().String("path", "/", "Webhook path")
	cmd.Flags().String("script", "", "Scripted app definition (YAML)")
	cmd.Flags().String("transcript", "", "SQLite file recording turn events")
	cmd.Flags().String("verification-project-id", "", "Verify identity tokens for this project")
	cmd.Flags().StringToString("verification-header", nil, "Required header (name=value), repeatable")
	cmd.Flags().Bool("events-verbose", false, "Log event router internals")
}

// BindFlags binds serve flags to their nested keys.
func BindFlags(v *viper.Viper, cmd *cobra.Command) error {
	binds := map[string]string{
		"address":                 "address",
		"path":                    "path",
		"script":                  "script",
		"transcript":              "transcript",
		"verification.project-id": "verification-project-id",
		"verification.headers":    "verification-header",
		"events.verbose":          "events-verbose",
	}
	for key, flag := range binds {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "bind flag %s", flag)
		}
	}
	return nil
}

// NewViper returns a viper reading the given config file, or a config.yaml
// in the usual locations, plus FULFILLMENT_ environment variables.
func NewViper(appName string, configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/." + appName)
		v.AddConfigPath("/etc/" + appName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}
	return v, nil
}

// Load unmarshals and validates the settings.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal settings")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) Validate() error {
	if s.Address == "" {
		return errors.New("address must not be empty")
	}
	if !strings.HasPrefix(s.Path, "/") {
		return errors.Errorf("path %q must start with /", s.Path)
	}
	if s.Script == "" {
		return errors.New("script is required")
	}
	if st := s.Verification.Status; st != 0 && (st < 400 || st > 599) {
		return errors.Errorf("verification status %d is not an error status", st)
	}
	if s.Events.BufferSize < 0 {
		return errors.New("events buffer size must not be negative")
	}
	return nil
}

// VerificationSettings builds the request verification of the server. An
// identity verifier is required when a project id is configured.
func (s *Settings) VerificationSettings(idv verification.IdentityVerifier) (*verification.Settings, error) {
	vs := s.Verification
	switch {
	case vs.ProjectID != "" && len(vs.Headers) > 0:
		return nil, errors.New("verification accepts either headers or a project id, not both")
	case vs.ProjectID != "":
		if idv == nil {
			return nil, errors.Errorf("identity token verification for %s needs an identity verifier", vs.ProjectID)
		}
		return &verification.Settings{
			Verifier: verification.IdentityToken{ProjectID: vs.ProjectID, Verifier: idv},
			Status:   vs.Status,
		}, nil
	case len(vs.Headers) > 0:
		return &verification.Settings{
			Verifier: verification.Headers(vs.Headers),
			Status:   vs.Status,
		}, nil
	}
	return nil, nil
}
