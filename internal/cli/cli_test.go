package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/teslashibe/go-mirror/pkg/camera"
	"github.com/teslashibe/go-mirror/pkg/mirror"
	"github.com/teslashibe/go-mirror/pkg/overlay"
	"github.com/teslashibe/go-mirror/pkg/tracking/detection"
	"github.com/teslashibe/go-mirror/pkg/web"
)

func execute(t *testing.T, args ...string) (string, *Dependencies) {
	t.Helper()
	deps := &Dependencies{}
	root := NewRootCmd(deps)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	if err := root.Execute(); err != nil {
		t.Fatalf("mirror %v: %v", args, err)
	}
	return out.String(), deps
}

func TestVersionCommand(t *testing.T) {
	out, _ := execute(t, "version")
	if !strings.HasPrefix(out, "mirror ") {
		t.Errorf("output = %q", out)
	}
}

func TestMissingConfigUsesDefaults(t *testing.T) {
	_, deps := execute(t, "version")
	if deps.Config.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", deps.Config.Server.Port)
	}
}

func TestProbeCommand(t *testing.T) {
	t.Setenv("MIRROR_CAMERA_BACKEND", "none")

	out, _ := execute(t, "probe")
	var report probeReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if report.Supported {
		t.Error("backend none should report no camera")
	}
	if report.Devices == nil || len(report.Devices) != 0 {
		t.Errorf("devices = %v", report.Devices)
	}
}

func TestFormatSnapshot(t *testing.T) {
	snap := mirror.Snapshot{
		Seq:    7,
		Status: camera.StatusDenied,
		Mode:   mirror.ModeMakeup,
		Filter: mirror.FilterSnapchatDog,
		Faces:  []detection.Face{detection.Idle()},
		Error:  camera.MsgDenied,
	}
	msg := web.SnapshotMessage{Snapshot: snap, Overlay: overlay.RenderSnapshot(snap)}

	line := formatSnapshot(msg)
	for _, want := range []string{"#7", "Permission Denied", "mode=makeup", "faces=1", "filter=snapchat-dog", "error="} {
		if !strings.Contains(line, want) {
			t.Errorf("%q missing %q", line, want)
		}
	}
}
