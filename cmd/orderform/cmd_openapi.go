package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-orderform/pkg/openapi"
)

type openapiOptions struct {
	describe bool
	output   string
	server   string
}

func newOpenAPICmd(a *app) *cobra.Command {
	opts := &openapiOptions{}
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Export the submission payloads as an OpenAPI document",
		Long: `Builds an OpenAPI 3 document with one operation per catalog service plus the
contact form, each describing the multipart payload relayed to the form
backend. The document is validated before it is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runOpenAPI(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.describe, "describe", false, "list operations instead of printing the document")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	flags.StringVar(&opts.server, "server", "", "server URL recorded in the document")
	return cmd
}

func (a *app) runOpenAPI(cmd *cobra.Command, opts *openapiOptions) error {
	cat, err := a.catalog()
	if err != nil {
		return err
	}

	var buildOpts []openapi.Option
	if opts.server != "" {
		buildOpts = append(buildOpts, openapi.WithServer(opts.server))
	}
	doc, err := openapi.Build(cat, buildOpts...)
	if err != nil {
		return err
	}
	if err := openapi.Validate(cmd.Context(), doc); err != nil {
		return err
	}

	var out []byte
	if opts.describe {
		out = []byte(openapi.Describe(doc))
	} else if out, err = openapi.Marshal(doc); err != nil {
		return err
	}

	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	return nil
}
