package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-orderform/pkg/banner"
)

type bannerOptions struct {
	mode   string
	scroll []float64
	json   bool
}

type bannerRow struct {
	ScrollY float64 `json:"scrollY"`
	banner.State
	Classes []string `json:"classes"`
	Style   string   `json:"style"`
}

func newBannerCmd(a *app) *cobra.Command {
	opts := &bannerOptions{}
	cmd := &cobra.Command{
		Use:   "banner",
		Short: "Print banner states for scroll offsets",
		Long: `Computes the banner height and state classes for each --scroll offset using
the banner.* settings. Handy for tuning shrink distance and thresholds.`,
		Example: `  orderform banner --scroll 0,70,140,280
  orderform banner --mode static-half --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBanner(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.mode, "mode", string(banner.ModeDynamic), "banner mode: dynamic or static-half")
	flags.Float64SliceVar(&opts.scroll, "scroll", []float64{0}, "scroll offsets in pixels")
	flags.BoolVar(&opts.json, "json", false, "print JSON instead of a table")
	return cmd
}

func (a *app) runBanner(cmd *cobra.Command, opts *bannerOptions) error {
	mode := banner.ParseMode(opts.mode)
	rows := make([]bannerRow, 0, len(opts.scroll))
	for _, y := range opts.scroll {
		state := banner.ForMode(a.cfg.Banner, mode, y)
		classes := state.Classes()
		if classes == nil {
			classes = []string{}
		}
		rows = append(rows, bannerRow{ScrollY: y, State: state, Classes: classes, Style: state.Style()})
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCROLL\tPROGRESS\tHEIGHT\tCLASSES")
	for _, row := range rows {
		fmt.Fprintf(tw, "%g\t%.2f\t%dpx\t%s\n", row.ScrollY, row.Progress, row.CurrentHeight, strings.Join(row.Classes, " "))
	}
	return tw.Flush()
}
