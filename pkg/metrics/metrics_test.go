package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/teslashibe/go-mirror/pkg/camera"
)

func TestObserveTick(t *testing.T) {
	m := New()

	m.ObserveTick(1, nil)
	m.ObserveTick(0, nil)
	m.ObserveTick(0, errors.New("boom"))

	if got := m.TrackingTicks.Load(); got != 3 {
		t.Errorf("Expected 3 ticks, got %d", got)
	}
	if got := m.TrackingMisses.Load(); got != 1 {
		t.Errorf("Expected 1 miss, got %d", got)
	}
	if got := m.TrackingErrors.Load(); got != 1 {
		t.Errorf("Expected 1 error, got %d", got)
	}
}

func TestObserverFlags(t *testing.T) {
	m := New()

	m.TrackingChanged(true)
	m.StreamingChanged(true)
	if m.TrackingEnabled.Load() != 1 || m.Streaming.Load() != 1 {
		t.Error("Expected both gauges set")
	}

	m.StreamingChanged(false)
	if m.Streaming.Load() != 0 {
		t.Error("Expected streaming gauge cleared")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveTick(1, nil)
	m.ObserveAttempt(camera.Tier1080pFront, camera.ErrConstraintsUnsupported)
	m.ObserveAttempt(camera.Tier720pFront, nil)
	m.StatusChanged(camera.StatusAvailable)
	m.SnapshotPublished()
	m.ClientsChanged(3)
	m.ClientsChanged(-1)
	m.ObserveRefresh("weather", errors.New("offline"))
	m.ObserveRefresh("clock", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		"mirror_tracking_ticks_total 1",
		`mirror_camera_attempts_total{result="unavailable",tier="1080p-front"} 1`,
		`mirror_camera_attempts_total{result="ok",tier="720p-front"} 1`,
		`mirror_camera_transitions_total{status="available"} 1`,
		"mirror_snapshots_published_total 1",
		"mirror_ws_clients 2",
		`mirror_widget_refreshes_total{result="error",widget="weather"} 1`,
		`mirror_widget_refreshes_total{result="ok",widget="clock"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output", want)
		}
	}
}
