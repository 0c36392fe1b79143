package main

import (
	"context"

	"github.com/go-go-golems/fulfillment/pkg/transcript"
	"github.com/go-go-golems/glazed/pkg/cli"
	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newTranscriptCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Inspect turn events recorded by serve --transcript",
	}

	conversationCommand, err := NewTranscriptConversationCommand()
	if err != nil {
		return nil, err
	}
	conversationCobraCommand, err := cli.BuildCobraCommandFromGlazeCommand(conversationCommand)
	if err != nil {
		return nil, err
	}

	turnCommand, err := NewTranscriptTurnCommand()
	if err != nil {
		return nil, err
	}
	turnCobraCommand, err := cli.BuildCobraCommandFromGlazeCommand(turnCommand)
	if err != nil {
		return nil, err
	}

	cmd.AddCommand(conversationCobraCommand, turnCobraCommand)
	return cmd, nil
}

func transcriptFlags() []*parameters.ParameterDefinition {
	return []*parameters.ParameterDefinition{
		parameters.NewParameterDefinition(
			"transcript",
			parameters.ParameterTypeString,
			parameters.WithHelp("SQLite file written by serve --transcript"),
			parameters.WithRequired(true),
		),
		parameters.NewParameterDefinition(
			"bodies",
			parameters.ParameterTypeBool,
			parameters.WithHelp("Include request and response JSON"),
			parameters.WithDefault(false),
		),
	}
}

type TranscriptConversationCommand struct {
	*cmds.CommandDescription
}

var _ cmds.GlazeCommand = &TranscriptConversationCommand{}

type TranscriptConversationSettings struct {
	Transcript     string `glazed.parameter:"transcript"`
	Bodies         bool   `glazed.parameter:"bodies"`
	Limit          int    `glazed.parameter:"limit"`
	ConversationID string `glazed.parameter:"conversation-id"`
}

func NewTranscriptConversationCommand() (*TranscriptConversationCommand, error) {
	glazedParameterLayer, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}

	flags := append(transcriptFlags(),
		parameters.NewParameterDefinition(
			"limit",
			parameters.ParameterTypeInteger,
			parameters.WithHelp("Maximum number of events, 0 for all"),
			parameters.WithDefault(0),
		),
	)

	return &TranscriptConversationCommand{
		CommandDescription: cmds.NewCommandDescription(
			"conversation",
			cmds.WithShort("List the turn events of a conversation"),
			cmds.WithFlags(flags...),
			cmds.WithArguments(
				parameters.NewParameterDefinition(
					"conversation-id",
					parameters.ParameterTypeString,
					parameters.WithHelp("Conversation id"),
					parameters.WithRequired(true),
				),
			),
			cmds.WithLayersList(
				glazedParameterLayer,
			),
		),
	}, nil
}

func (c *TranscriptConversationCommand) RunIntoGlazeProcessor(
	ctx context.Context,
	parsedLayers *layers.ParsedLayers,
	gp middlewares.Processor,
) error {
	s := &TranscriptConversationSettings{}
	if err := parsedLayers.InitializeStruct(layers.DefaultSlug, s); err != nil {
		return err
	}
	return withTranscript(s.Transcript, func(store *transcript.SQLiteStore) error {
		entries, err := store.Conversation(ctx, s.ConversationID, s.Limit)
		if err != nil {
			return err
		}
		return addEntryRows(ctx, gp, entries, s.Bodies)
	})
}

type TranscriptTurnCommand struct {
	*cmds.CommandDescription
}

var _ cmds.GlazeCommand = &TranscriptTurnCommand{}

type TranscriptTurnSettings struct {
	Transcript string `glazed.parameter:"transcript"`
	Bodies     bool   `glazed.parameter:"bodies"`
	TurnID     string `glazed.parameter:"turn-id"`
}

func NewTranscriptTurnCommand() (*TranscriptTurnCommand, error) {
	glazedParameterLayer, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}

	return &TranscriptTurnCommand{
		CommandDescription: cmds.NewCommandDescription(
			"turn",
			cmds.WithShort("List the events of one turn"),
			cmds.WithFlags(transcriptFlags()...),
			cmds.WithArguments(
				parameters.NewParameterDefinition(
					"turn-id",
					parameters.ParameterTypeString,
					parameters.WithHelp("Turn id"),
					parameters.WithRequired(true),
				),
			),
			cmds.WithLayersList(
				glazedParameterLayer,
			),
		),
	}, nil
}

func (c *TranscriptTurnCommand) RunIntoGlazeProcessor(
	ctx context.Context,
	parsedLayers *layers.ParsedLayers,
	gp middlewares.Processor,
) error {
	s := &TranscriptTurnSettings{}
	if err := parsedLayers.InitializeStruct(layers.DefaultSlug, s); err != nil {
		return err
	}
	return withTranscript(s.Transcript, func(store *transcript.SQLiteStore) error {
		entries, err := store.Turn(ctx, s.TurnID)
		if err != nil {
			return err
		}
		return addEntryRows(ctx, gp, entries, s.Bodies)
	})
}

func withTranscript(path string, f func(store *transcript.SQLiteStore) error) error {
	dsn, err := transcript.DSNForFile(path)
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
	return f(store)
}

// addEntryRows emits one row per stored event. Bodies are large, so they are opt-in.
func addEntryRows(ctx context.Context, gp middlewares.Processor, entries []transcript.Entry, bodies bool) error {
	for _, e := range entries {
		row := types.NewRow(
			types.MRP("id", e.ID),
			types.MRP("created_at", e.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z")),
			types.MRP("conversation_id", e.ConversationID),
			types.MRP("turn_id", e.TurnID),
			types.MRP("type", string(e.Type)),
			types.MRP("family", e.Family),
			types.MRP("version", e.Version),
			types.MRP("action", e.Action),
			types.MRP("status", e.Status),
			types.MRP("duration_ms", e.Duration.Milliseconds()),
			types.MRP("error", e.Error),
		)
		if bodies {
			row.Set("request", e.Request)
			row.Set("response", e.Response)
		}
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}
