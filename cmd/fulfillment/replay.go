package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/go-go-golems/fulfillment/pkg/app"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newReplayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <request.json|->",
		Short: "Run one webhook request against a scripted app and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, _ := cmd.Flags().GetString("script")
			headers, _ := cmd.Flags().GetStringToString("header")

			body, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			_, a, err := buildApp(script, nil, nil)
			if err != nil {
				return err
			}
			res, err := replay(cmd, a, headers, body)
			if err != nil {
				return err
			}
			if res.Status != http.StatusOK {
				return errors.Errorf("turn answered %d", res.Status)
			}
			return nil
		},
	}
	cmd.Flags().String("script", "", "Scripted app definition (YAML)")
	cmd.Flags().StringToString("header", nil, "Request header (name=value), repeatable")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return b, nil
}

// replay runs one turn and writes the indented response body to the command output.
func replay(cmd *cobra.Command, a *app.App, headers map[string]string, body []byte) (*app.Response, error) {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	res, err := a.Handle(cmd.Context(), &app.Request{Headers: h, Body: body})
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	var buf bytes.Buffer
	if err := json.Indent(&buf, res.Body, "", "  "); err != nil {
		buf.Reset()
		buf.Write(res.Body)
	}
	if _, err := fmt.Fprintf(out, "%d\n%s\n", res.Status, buf.String()); err != nil {
		return nil, err
	}
	return res, nil
}
