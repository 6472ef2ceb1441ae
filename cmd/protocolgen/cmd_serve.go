package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aerissecure/protocols/archive"
	"github.com/aerissecure/protocols/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve POST /generate_protocols/ over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		b, err := newBuilder()
		if err != nil {
			return err
		}
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		var opts []server.Option
		store, err := archive.NewStore(ctx, cfg.Archive)
		if err != nil {
			return err
		}
		if store != nil {
			opts = append(opts, server.WithStore(store, cfg.Archive.Prefix))
		}
		return server.New(b, cfg.Server, logger, reg, opts...).ListenAndServe(ctx)
	},
}
