package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/internal/config"
	"github.com/goliatone/go-orderform/internal/logging"
	"github.com/goliatone/go-orderform/pkg/catalog"
	"github.com/goliatone/go-orderform/pkg/renderers/tui"
)

// flagKeys maps command flags onto configuration keys. A flag only
// overrides the key when the user set it.
var flagKeys = map[string]string{
	"env":              "env",
	"log-level":        "log.level",
	"addr":             "addr",
	"submit-endpoint":  "submit.endpoint",
	"contact-endpoint": "contact.endpoint",
	"submit-timeout":   "submit.timeout",
	"timezone":         "submit.timezone",
	"catalog":          "catalog.path",
	"theme":            "theme.name",
	"variant":          "theme.variant",
}

// app is the state shared by every command once the root has loaded the
// configuration.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger

	out    io.Writer
	driver func() tui.PromptDriver
}

func newApp() *app {
	return &app{
		v:   config.New(),
		out: os.Stdout,
		driver: func() tui.PromptDriver {
			return tui.NewSurveyDriver(os.Stdin, os.Stdout)
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "orderform",
		Short: "Service order and contact forms",
		Long: `orderform hosts the service order form and the contact form.

Run "orderform serve" to start the web server or "orderform order" to fill in
a request from the terminal. Settings come from orderform.yaml, ORDERFORM_*
environment variables and flags, in increasing priority.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(a.out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./orderform.yaml or ./config/orderform.yaml)")
	flags.String("env", config.EnvDevelopment, "environment: development or production")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("catalog", "", "service catalog file (default: embedded catalog)")

	root.AddCommand(
		newServeCmd(a),
		newOrderCmd(a),
		newRenderCmd(a),
		newOpenAPICmd(a),
		newBannerCmd(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		key, ok := flagKeys[flag.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = a.v.BindPFlag(key, flag)
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.logger == nil {
		logger, err := logging.New(cfg.Env, cfg.Log.Level)
		if err != nil {
			return err
		}
		a.logger = logger
	}
	return nil
}

func (a *app) catalog() (*catalog.Catalog, error) {
	if a.cfg.Catalog.Path == "" {
		return catalog.Builtin(), nil
	}
	return catalog.LoadFile(a.cfg.Catalog.Path)
}
