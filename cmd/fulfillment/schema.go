package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-go-golems/fulfillment/pkg/schema"
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

func newSchemaCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print or check the JSON schemas of the webhook wire shapes",
	}

	listCommand, err := NewSchemaListCommand()
	if err != nil {
		return nil, err
	}
	listCobraCommand, err := cli.BuildCobraCommandFromGlazeCommand(listCommand)
	if err != nil {
		return nil, err
	}

	validateCommand, err := NewSchemaValidateCommand()
	if err != nil {
		return nil, err
	}
	validateCobraCommand, err := cli.BuildCobraCommandFromGlazeCommand(validateCommand)
	if err != nil {
		return nil, err
	}

	cmd.AddCommand(listCobraCommand, validateCobraCommand, &cobra.Command{
		Use:   "print <shape>",
		Short: "Print the schema of a shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := schema.JSON(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	})
	return cmd, nil
}

type SchemaListCommand struct {
	*cmds.CommandDescription
}

var _ cmds.GlazeCommand = &SchemaListCommand{}

func NewSchemaListCommand() (*SchemaListCommand, error) {
	glazedParameterLayer, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}

	return &SchemaListCommand{
		CommandDescription: cmds.NewCommandDescription(
			"list",
			cmds.WithShort("List the known shapes"),
			cmds.WithLayersList(
				glazedParameterLayer,
			),
		),
	}, nil
}

func (c *SchemaListCommand) RunIntoGlazeProcessor(
	ctx context.Context,
	_ *layers.ParsedLayers,
	gp middlewares.Processor,
) error {
	return addShapeRows(ctx, gp)
}

// addShapeRows emits one row per shape with its direction and top level field count.
func addShapeRows(ctx context.Context, gp middlewares.Processor) error {
	for _, name := range schema.Shapes() {
		s, err := schema.For(name)
		if err != nil {
			return err
		}
		fields := 0
		if s.Properties != nil {
			fields = s.Properties.Len()
		}
		direction := name[strings.LastIndex(name, "-")+1:]
		row := types.NewRow(
			types.MRP("shape", name),
			types.MRP("direction", direction),
			types.MRP("fields", fields),
		)
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

type SchemaValidateCommand struct {
	*cmds.CommandDescription
}

var _ cmds.GlazeCommand = &SchemaValidateCommand{}

type SchemaValidateSettings struct {
	Shape    string `glazed.parameter:"shape"`
	Document string `glazed.parameter:"document"`
}

func NewSchemaValidateCommand() (*SchemaValidateCommand, error) {
	glazedParameterLayer, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}

	return &SchemaValidateCommand{
		CommandDescription: cmds.NewCommandDescription(
			"validate",
			cmds.WithShort("Validate a document against the schema of a shape"),
			cmds.WithArguments(
				parameters.NewParameterDefinition(
					"shape",
					parameters.ParameterTypeChoice,
					parameters.WithHelp("Shape to validate against"),
					parameters.WithChoices(schema.Shapes()...),
					parameters.WithRequired(true),
				),
				parameters.NewParameterDefinition(
					"document",
					parameters.ParameterTypeString,
					parameters.WithHelp("JSON file to validate, - for stdin"),
					parameters.WithRequired(true),
				),
			),
			cmds.WithLayersList(
				glazedParameterLayer,
			),
		),
	}, nil
}

func (c *SchemaValidateCommand) RunIntoGlazeProcessor(
	ctx context.Context,
	parsedLayers *layers.ParsedLayers,
	gp middlewares.Processor,
) error {
	s := &SchemaValidateSettings{}
	if err := parsedLayers.InitializeStruct(layers.DefaultSlug, s); err != nil {
		return err
	}
	doc, err := readInput(os.Stdin, s.Document)
	if err != nil {
		return err
	}
	res, err := schema.Validate(s.Shape, doc)
	if err != nil {
		return err
	}
	if err := addValidationRows(ctx, gp, s.Shape, s.Document, res); err != nil {
		return err
	}
	if !res.Valid {
		return errors.Errorf("%s does not match %s", s.Document, s.Shape)
	}
	return nil
}

// addValidationRows emits one row for a valid document and one row per error otherwise.
func addValidationRows(ctx context.Context, gp middlewares.Processor, shape, document string, res *schema.Result) error {
	if res.Valid {
		return gp.AddRow(ctx, types.NewRow(
			types.MRP("shape", shape),
			types.MRP("document", document),
			types.MRP("valid", true),
			types.MRP("error", ""),
		))
	}
	for _, e := range res.Errors {
		err := gp.AddRow(ctx, types.NewRow(
			types.MRP("shape", shape),
			types.MRP("document", document),
			types.MRP("valid", false),
			types.MRP("error", e),
		))
		if err != nil {
			return err
		}
	}
	return nil
}
