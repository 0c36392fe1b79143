package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/fulfillment/pkg/config"
	"github.com/go-go-golems/fulfillment/pkg/events"
	"github.com/go-go-golems/fulfillment/pkg/transcript"
	"github.com/go-go-golems/fulfillment/pkg/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a scripted app as an HTTP webhook",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	config.AddServeFlags(cmd)
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	v, err := loadViper(cmd)
	if err != nil {
		return err
	}
	if err := config.BindFlags(v, cmd); err != nil {
		return err
	}
	s, err := config.Load(v)
	if err != nil {
		return err
	}
	// identity tokens need a verifier wired in code
	vs, err := s.VerificationSettings(nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, err := events.NewRouter(
		events.WithVerbose(s.Events.Verbose),
		events.WithBufferSize(s.Events.BufferSize),
	)
	if err != nil {
		return errors.Wrap(err, "create event router")
	}
	pm := events.NewPublisherManager()
	pm.SubscribePublisher(events.TopicTurns, router.Publisher)

	router.AddHandler("turn-log", events.TopicTurns, logTurnEvent)
	if s.Transcript != "" {
		dsn, err := transcript.DSNForFile(s.Transcript)
		if err != nil {
			return err
		}
		store, err := transcript.NewSQLiteStore(dsn)
		if err != nil {
			return errors.Wrap(err, "open transcript")
		}
		defer func() {
			_ = store.Close()
		}()
		router.AddHandler("transcript", events.TopicTurns, transcript.Handler(store))
	}

	_, a, err := buildApp(s.Script, vs, pm)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(s.Path, transport.NewDispatcher(a))
	srv := &http.Server{
		Addr:         s.Address,
		Handler:      mux,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return router.Run(ctx)
	})
	eg.Go(func() error {
		<-router.Running()
		log.Info().
			Str("address", s.Address).
			Str("path", s.Path).
			Str("verification", vs.String()).
			Msg("Serving webhook")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("Shutting down")
		err := srv.Shutdown(shutdownCtx)
		if cerr := router.Close(); cerr != nil && err == nil {
			err = cerr
		}
		return err
	})

	return eg.Wait()
}

func logTurnEvent(msg *message.Message) error {
	e, err := events.NewTurnEventFromJSON(msg.Payload)
	if err != nil {
		return nil
	}
	log.Debug().
		Str("type", string(e.Type)).
		Str("turn_id", e.TurnID).
		Str("action", e.Action).
		Int("status", e.Status).
		Dur("duration", e.Duration).
		Msg("turn event")
	return nil
}
