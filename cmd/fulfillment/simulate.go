package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-go-golems/fulfillment/pkg/app"
	"github.com/go-go-golems/fulfillment/pkg/protocol/actionssdk"
	"github.com/go-go-golems/fulfillment/pkg/responses"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tcnksm/go-input"
)

const textIntent = "actions.intent.TEXT"

func newSimulateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Talk to a scripted app on the console",
		Long: `Each line starting with a known action triggers it, with the rest of the
line as the query. Other lines are sent as actions.intent.TEXT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			script, _ := cmd.Flags().GetString("script")
			start, _ := cmd.Flags().GetString("start")
			screen, _ := cmd.Flags().GetBool("screen")

			s, a, err := buildApp(script, nil, nil)
			if err != nil {
				return err
			}
			sim := newSimulator(a, s.Table().Actions(), screen)
			ui := &input.UI{Writer: cmd.OutOrStdout(), Reader: cmd.InOrStdin()}
			return sim.run(cmd.Context(), ui, cmd.OutOrStdout(), start)
		},
	}
	cmd.Flags().String("script", "", "Scripted app definition (YAML)")
	cmd.Flags().String("start", "actions.intent.MAIN", "Intent of the first turn")
	cmd.Flags().Bool("screen", true, "Simulate a device with a screen")
	return cmd
}

// simulator keeps the conversation token and user storage across turns.
type simulator struct {
	app            *app.App
	actions        map[string]bool
	screen         bool
	userID         string
	conversationID string
	token          string
	storage        string
	turns          int
}

func newSimulator(a *app.App, actions []string, screen bool) *simulator {
	known := make(map[string]bool, len(actions))
	for _, k := range actions {
		known[k] = true
	}
	return &simulator{
		app:            a,
		actions:        known,
		screen:         screen,
		userID:         uuid.NewString(),
		conversationID: uuid.NewString(),
	}
}

// route splits a console line into intent and query.
func (s *simulator) route(line string) (string, string) {
	line = strings.TrimSpace(line)
	word, rest, _ := strings.Cut(line, " ")
	if s.actions[word] {
		return word, strings.TrimSpace(rest)
	}
	return textIntent, line
}

func (s *simulator) request(intent, query string) *actionssdk.AppRequest {
	conv := &actionssdk.Conversation{ConversationID: s.conversationID, Type: "ACTIVE", ConversationToken: s.token}
	if s.turns == 0 {
		conv.Type = "NEW"
	}
	in := actionssdk.Input{
		Intent:    intent,
		RawInputs: []actionssdk.RawInput{{InputType: actionssdk.InputTypeKeyboard, Query: query}},
	}
	if intent == textIntent {
		in.Arguments = []actionssdk.Argument{{Name: "text", RawText: &query, TextValue: &query}}
	}
	surface := &actionssdk.Surface{Capabilities: []actionssdk.Capability{{Name: actionssdk.CapabilityAudioOutput}}}
	if s.screen {
		surface.Capabilities = append(surface.Capabilities, actionssdk.Capability{Name: actionssdk.CapabilityScreenOutput})
	}
	return &actionssdk.AppRequest{
		User:         &actionssdk.User{UserID: s.userID, UserStorage: s.storage, Locale: "en-US"},
		Conversation: conv,
		Surface:      surface,
		Inputs:       []actionssdk.Input{in},
	}
}

// turn sends one request and keeps the state the app sent back.
func (s *simulator) turn(ctx context.Context, intent, query string) (*actionssdk.AppResponse, error) {
	body, err := json.Marshal(s.request(intent, query))
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	res, err := s.app.Handle(ctx, &app.Request{Headers: h, Body: body})
	if err != nil {
		return nil, err
	}
	if res.Status != http.StatusOK {
		return nil, errors.Errorf("turn answered %d: %s", res.Status, string(res.Body))
	}
	out := &actionssdk.AppResponse{}
	if err := json.Unmarshal(res.Body, out); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}

	s.turns++
	if out.ConversationToken != "" {
		s.token = out.ConversationToken
	}
	if out.UserStorage != "" {
		s.storage = out.UserStorage
	}
	return out, nil
}

func (s *simulator) run(ctx context.Context, ui *input.UI, w io.Writer, start string) error {
	intent, query := start, ""
	for {
		res, err := s.turn(ctx, intent, query)
		if err != nil {
			return err
		}
		if err := printResponse(w, res); err != nil {
			return err
		}
		if !res.ExpectUserResponse {
			return nil
		}
		line, err := ui.Ask("you>", &input.Options{Required: true, Loop: true, HideOrder: true})
		if err != nil {
			if errors.Is(err, input.ErrInterrupted) {
				return nil
			}
			return err
		}
		intent, query = s.route(line)
	}
}

func printResponse(w io.Writer, res *actionssdk.AppResponse) error {
	var rich *responses.RichResponse
	if len(res.ExpectedInputs) > 0 && res.ExpectedInputs[0].InputPrompt != nil {
		rich = res.ExpectedInputs[0].InputPrompt.RichInitialPrompt
	} else if res.FinalResponse != nil {
		rich = res.FinalResponse.RichResponse
	}

	var lines []string
	if rich != nil {
		for _, item := range rich.Items {
			switch {
			case item.SimpleResponse != nil:
				text := item.SimpleResponse.DisplayText
				if text == "" {
					text = item.SimpleResponse.TextToSpeech
				}
				lines = append(lines, "app> "+text)
			case item.BasicCard != nil:
				lines = append(lines, fmt.Sprintf("[card] %s %s", item.BasicCard.Title, item.BasicCard.FormattedText))
			default:
				lines = append(lines, "[rich item]")
			}
		}
		if len(rich.Suggestions) > 0 {
			var chips []string
			for _, sg := range rich.Suggestions {
				chips = append(chips, "["+sg.Title+"]")
			}
			lines = append(lines, strings.Join(chips, " "))
		}
	}
	if len(res.ExpectedInputs) > 0 {
		for _, pi := range res.ExpectedInputs[0].PossibleIntents {
			if pi.Intent != textIntent {
				lines = append(lines, "(expects "+pi.Intent+")")
			}
		}
	}
	if !res.ExpectUserResponse {
		lines = append(lines, "(conversation closed)")
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
