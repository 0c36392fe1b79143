package main

import (
	"os"

	"github.com/go-go-golems/fulfillment/pkg/app"
	"github.com/go-go-golems/fulfillment/pkg/config"
	"github.com/go-go-golems/fulfillment/pkg/events"
	"github.com/go-go-golems/fulfillment/pkg/intents"
	"github.com/go-go-golems/fulfillment/pkg/logging"
	"github.com/go-go-golems/fulfillment/pkg/scripted"
	"github.com/go-go-golems/fulfillment/pkg/verification"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "fulfillment"

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          appName,
		Short:        "fulfillment serves conversational webhook apps",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// reinitialize the logger because we can now parse --log-level and co
			// from the command line flag
			v, err := loadViper(cmd)
			if err != nil {
				return err
			}
			if err := logging.InitLogger(logging.FromViper(v)); err != nil {
				return err
			}
			log.Debug().Str("config", v.ConfigFileUsed()).Msg("Loaded configuration")
			return nil
		},
	}
	rootCmd.PersistentFlags().String("config", "", "Config file")
	logging.AddFlags(rootCmd)

	schemaCmd, err := newSchemaCommand()
	cobra.CheckErr(err)
	transcriptCmd, err := newTranscriptCommand()
	cobra.CheckErr(err)

	rootCmd.AddCommand(
		newServeCommand(),
		newReplayCommand(),
		newSimulateCommand(),
		schemaCmd,
		transcriptCmd,
	)
	return rootCmd
}

// loadViper reads the config file and environment and binds the global flags.
func loadViper(cmd *cobra.Command) (*viper.Viper, error) {
	configFile, _ := cmd.Flags().GetString("config")
	v, err := config.NewViper(appName, configFile)
	if err != nil {
		return nil, err
	}
	if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return nil, errors.Wrap(err, "bind flags")
	}
	return v, nil
}

// buildApp loads a scripted app and wires it into an App.
func buildApp(script string, vs *verification.Settings, pm *events.PublisherManager) (*scripted.App, *app.App, error) {
	if script == "" {
		return nil, nil, errors.New("--script is required")
	}
	s, err := scripted.LoadFile(script)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(app.Options{
		Intents:           s.Table(),
		Init:              s.Initializer(),
		Verification:      vs,
		Events:            pm,
		HandlerMiddleware: []intents.Middleware{intents.NewTurnLoggingMiddleware(log.Logger)},
	})
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Str("script", script).Str("name", s.Name).Msg("Loaded scripted app")
	return s, a, nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
