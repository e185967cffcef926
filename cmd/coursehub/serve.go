package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/coursehub/internal/app"
	"github.com/yungbote/coursehub/internal/catalog"
	"github.com/yungbote/coursehub/internal/platform/shutdown"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				opts.cfg.HTTP.Addr = addr
			}
			courses, err := catalog.Load()
			if err != nil {
				return err
			}

			ctx, stop := shutdown.NotifyContext(cmd.Context(), opts.log)
			defer stop()

			a, err := app.New(ctx, opts.cfg, opts.log, app.Options{Courses: courses, Version: version})
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer a.Close()

			if err := a.Run(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("server exited: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides COURSEHUB_HTTP_ADDR)")
	return cmd
}

