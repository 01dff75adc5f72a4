package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-orderform/pkg/banner"
	"github.com/goliatone/go-orderform/pkg/engine"
	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/renderers/vanilla"
)

type renderOptions struct {
	contact     bool
	bannerMode  string
	output      string
	templateDir string
	action      string
}

func newRenderCmd(a *app) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [service]",
		Short: "Render an order or contact page as HTML",
		Long: `Writes the HTML page of a fresh order form (or the contact form with
--contact) to stdout or --output. Templates in --templates override the
embedded ones file by file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.contact, "contact", false, "render the contact form")
	flags.StringVar(&opts.bannerMode, "banner", string(banner.ModeDynamic), "banner mode: dynamic or static-half")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	flags.StringVar(&opts.templateDir, "templates", "", "directory of template overrides")
	flags.StringVar(&opts.action, "action", "", "form action URL (default: /order?service=<key> or /contact)")
	flags.String("theme", "orderform", "page theme")
	flags.String("variant", "", "theme variant")
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, args []string, opts *renderOptions) error {
	renderer, err := vanilla.New(
		vanilla.WithTemplatesDir(opts.templateDir),
		vanilla.WithNavPath("/order"),
	)
	if err != nil {
		return err
	}
	themes, err := vanilla.NewThemes()
	if err != nil {
		return err
	}

	var form engine.Form
	action := "/contact"
	var links []render.ServiceLink
	if opts.contact {
		form = engine.NewContact()
	} else {
		cat, err := a.catalog()
		if err != nil {
			return err
		}
		key := ""
		if len(args) > 0 {
			key = args[0]
		}
		desc := cat.Resolve(key)
		form = engine.NewOrder(desc)
		action = "/order?service=" + desc.Key
		for _, d := range cat.Descriptors() {
			links = append(links, render.ServiceLink{Key: d.Key, Name: d.Name, Selected: d.Key == desc.Key})
		}
	}
	if opts.action != "" {
		action = opts.action
	}

	mode := banner.ParseMode(opts.bannerMode)
	state := banner.ForMode(a.cfg.Banner, mode, 0)
	sel, err := themes.Select(a.cfg.Theme.Name, a.cfg.Theme.Variant)
	if err != nil {
		return err
	}

	page, err := renderer.Render(cmd.Context(), form.Model(), render.RenderOptions{
		Action:     action,
		Banner:     &state,
		BannerMode: mode,
		Theme:      vanilla.ThemeConfig(sel, &state),
		Services:   links,
	})
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(page)
		return err
	}
	if err := os.WriteFile(opts.output, page, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Page written to %s\n", opts.output)
	return nil
}
