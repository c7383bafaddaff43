package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-mirror/pkg/app"
)

func NewServeCmd(deps *Dependencies) *cobra.Command {
	var (
		demo bool
		port int
		opts app.Options
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config
			if cmd.Flags().Changed("demo") {
				cfg.Demo = demo
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			application, err := app.New(cfg, opts)
			if err != nil {
				return err
			}
			defer application.Shutdown()
			if err := application.Init(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return application.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "synthetic faces only, never open a camera")
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides config)")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "verbose debug logging")
	cmd.Flags().BoolVar(&opts.DebugTracking, "debug-tracking", false, "log every tracking tick")

	return cmd
}
