// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects level, format and sinks of the global logger.
type Config struct {
	WithCaller bool
	Level      string
	// LogFormat is text, json or auto (text on a terminal).
	LogFormat string
	LogFile   string
}

// AddFlags registers the logging flags on a command.
func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error, fatal)")
	cmd.PersistentFlags().String("log-format", "auto", "Log format (text, json, auto)")
	cmd.PersistentFlags().String("log-file", "", "Also write logs to this file (rotated)")
	cmd.PersistentFlags().Bool("with-caller", false, "Log caller information")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Shortcut for --log-level debug")
}

// FromViper reads the logging flags.
func FromViper(v *viper.Viper) *Config {
	level := v.GetString("log-level")
	if v.GetBool("verbose") && level != "trace" {
		level = "debug"
	}
	return &Config{
		Level:      level,
		LogFile:    v.GetString("log-file"),
		LogFormat:  v.GetString("log-format"),
		WithCaller: v.GetBool("with-caller"),
	}
}

func InitLogger(config *Config) error {
	if config.WithCaller {
		log.Logger = log.With().Caller().Logger()
	}

	format := config.LogFormat
	if format == "" || format == "auto" {
		format = "json"
		if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			format = "text"
		}
	}

	var logWriter io.Writer
	switch format {
	case "text":
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr}
	case "json":
		logWriter = os.Stderr
	default:
		return errors.Errorf("unknown log format %q", config.LogFormat)
	}

	if config.LogFile != "" {
		logWriter = io.MultiWriter(
			logWriter,
			zerolog.ConsoleWriter{
				NoColor: true,
				Out: &lumberjack.Logger{
					Filename:   config.LogFile,
					MaxSize:    10, // megabytes
					MaxBackups: 3,
					MaxAge:     28, // days
				},
			})
	}

	log.Logger = log.Output(logWriter)

	level, err := ParseLevel(config.Level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

// ParseLevel maps a level name to zerolog; empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	switch s {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "fatal":
		return zerolog.FatalLevel, nil
	}
	return zerolog.NoLevel, errors.Errorf("unknown log level %q", s)
}
