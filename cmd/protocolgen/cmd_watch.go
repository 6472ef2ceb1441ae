package main

import (
	"github.com/spf13/cobra"

	"github.com/aerissecure/protocols/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process applications dropped into the inbox directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		b, err := newBuilder()
		if err != nil {
			return err
		}
		w := watch.New(cfg.Watch.Inbox, cfg.Watch.Outbox, b, logger, watch.WithDebounce(cfg.Watch.Debounce))
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		w.Stop()
		return nil
	},
}
