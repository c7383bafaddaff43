package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-mirror/pkg/app"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mirror %s (%s/%s, %s)\n", app.Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
		},
	}
}
