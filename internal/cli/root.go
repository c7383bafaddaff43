// Package cli holds the mirror's cobra commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-mirror/internal/config"
	"github.com/teslashibe/go-mirror/internal/log"
	"github.com/teslashibe/go-mirror/pkg/app"
)

// Dependencies are shared by every command. Config is filled in before any
// command runs.
type Dependencies struct {
	ConfigPath string
	Config     config.Config
}

// NewRootCmd builds the mirror command tree.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mirror",
		Short:         "Smart mirror camera and face tracking",
		Long:          "Runs the smart mirror: camera session, face tracking overlays, dashboard widgets and the control API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(deps.ConfigPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			deps.Config = cfg
			log.Init(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}

	rootCmd.Version = app.Version
	rootCmd.PersistentFlags().StringVar(&deps.ConfigPath, "config", config.DefaultPath(), "path to config.yaml")

	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewProbeCmd(deps))
	rootCmd.AddCommand(NewWatchCmd(deps))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
