package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-orderform/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the order and contact forms over HTTP",
		Long: `Starts the web server. Routes:

  GET/POST /order?service=<key>   order form
  GET/POST /contact               contact form
  GET /api/banner?scrollY=&mode=  banner state
  GET /api/services               service catalog
  GET /api/openapi.json           submission schema
  GET /healthz                    liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := server.New(a.cfg, server.WithLogger(a.logger))
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("addr", ":8383", "listen address")
	flags.String("submit-endpoint", "", "form backend URL for orders")
	flags.String("contact-endpoint", "", "form backend URL for contact messages")
	flags.Duration("submit-timeout", 0, "timeout for each relayed submission (0: none)")
	flags.String("timezone", "", "IANA zone of the local submission timestamp")
	flags.String("theme", "orderform", "page theme")
	flags.String("variant", "", "theme variant")
	return cmd
}
