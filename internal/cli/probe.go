package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-mirror/internal/log"
	"github.com/teslashibe/go-mirror/pkg/camera"
	"github.com/teslashibe/go-mirror/pkg/display"
)

type probeReport struct {
	Display   display.Profile `json:"display"`
	Supported bool            `json:"camera_supported"`
	Devices   []camera.Device `json:"devices"`
	Error     string          `json:"error,omitempty"`
}

func NewProbeCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Print the display profile and capture devices as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config
			capturer := camera.NewCapturer(cfg.Camera, log.Component("camera"))

			report := probeReport{
				Display:   display.Probe(display.NewHost(cfg.Display)),
				Supported: capturer.Supported(),
				Devices:   []camera.Device{},
			}
			if report.Supported {
				devices, err := capturer.Devices(cmd.Context())
				if err != nil {
					report.Error = err.Error()
				} else {
					report.Devices = devices
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}
