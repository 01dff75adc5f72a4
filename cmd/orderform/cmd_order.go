package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-orderform/pkg/engine"
	"github.com/goliatone/go-orderform/pkg/renderers/tui"
	"github.com/goliatone/go-orderform/pkg/submit"
)

type orderOptions struct {
	contact bool
	dryRun  bool
	format  string
}

func newOrderCmd(a *app) *cobra.Command {
	opts := &orderOptions{}
	cmd := &cobra.Command{
		Use:   "order [service]",
		Short: "Fill in an order or contact form from the terminal",
		Long: `Prompts for every field of the order form of a service and sends it to the
form backend. Fields appear as earlier answers call for them. Without a
service the default service is used; unknown keys fall back to it too.

With --dry-run the answers are printed instead of sent.`,
		Example: `  orderform order window-cleaning --submit-endpoint https://formspree.io/f/abc
  orderform order pet-sitting --dry-run --format pretty
  orderform order --contact --contact-endpoint https://formspree.io/f/xyz`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOrder(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.contact, "contact", false, "fill in the contact form instead of an order")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "print the answers instead of sending them")
	flags.StringVar(&opts.format, "format", string(tui.OutputFormatPrettyText), "dry-run output: json, form or pretty")
	flags.String("submit-endpoint", "", "form backend URL for orders")
	flags.String("contact-endpoint", "", "form backend URL for contact messages")
	flags.Duration("submit-timeout", 0, "timeout for the relayed submission (0: none)")
	flags.String("timezone", "", "IANA zone of the local submission timestamp")
	return cmd
}

func (a *app) runOrder(cmd *cobra.Command, args []string, opts *orderOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}

	var form tui.Editable
	endpoint := a.cfg.Submit.Endpoint
	submitOpts := []submit.Option{
		submit.WithLogger(a.logger),
		submit.WithTimeout(a.cfg.Submit.Timeout),
		submit.WithLocation(a.cfg.Location()),
	}
	if opts.contact {
		form = engine.NewContact()
		endpoint = a.cfg.Contact.Endpoint
		submitOpts = append(submitOpts,
			submit.WithOverlay(false),
			submit.WithFailureMessage(submit.MessageContactFailure),
		)
	} else {
		cat, err := a.catalog()
		if err != nil {
			return err
		}
		key := ""
		if len(args) > 0 {
			key = args[0]
		}
		form = engine.NewOrder(cat.Resolve(key))
		submitOpts = append(submitOpts, submit.WithOverlay(true))
	}

	renderer := tui.New(
		tui.WithPromptDriver(a.driver()),
		tui.WithOutputFormat(format),
	)
	ctx := cmd.Context()

	if opts.dryRun {
		if err := renderer.Fill(ctx, form, nil); err != nil {
			return err
		}
		out, err := renderer.Encode(form.Model(), form.Payload())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}

	session := tui.NewSession(renderer, submit.New(endpoint, submitOpts...))
	_, err = session.Run(ctx, form)
	if errors.Is(err, tui.ErrAborted) {
		return nil
	}
	return err
}

func parseFormat(raw string) (tui.OutputFormat, error) {
	switch format := tui.OutputFormat(raw); format {
	case tui.OutputFormatJSON, tui.OutputFormatFormURLEncoded, tui.OutputFormatPrettyText:
		return format, nil
	default:
		return "", fmt.Errorf("unknown format %q: want json, form or pretty", raw)
	}
}
