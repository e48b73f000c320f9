package sim

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmctools/timelapse-launcher/internal/engine"
	"github.com/mmctools/timelapse-launcher/internal/model"
)

const testConfig = `# simulated scope
Device,XYStage,DemoCamera,DXYStage
Device,ZStage,DemoCamera,DStage
Device,Camera,DemoCamera,DCam
Property,Core,Focus,ZStage
ConfigGroup,Channel,DAPI,Camera,Mode,0
ConfigGroup,Channel,FITC,Camera,Mode,1
ConfigGroup,Channel,DAPI,Camera,Gain,2
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scope.cfg")
	if err := os.WriteFile(path, []byte(testConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew_BareCore(t *testing.T) {
	e := New()

	devices := e.LoadedDevices()
	if len(devices) != 1 || devices[0] != engine.CoreDeviceLabel {
		t.Errorf("expected only the core device, got %v", devices)
	}
	if e.FocusDevice() != "" {
		t.Errorf("expected no focus device, got %q", e.FocusDevice())
	}
}

func TestLoadSystemConfiguration(t *testing.T) {
	e := New()
	if err := e.LoadSystemConfiguration(writeConfig(t)); err != nil {
		t.Fatalf("LoadSystemConfiguration failed: %v", err)
	}

	devices := e.LoadedDevices()
	if len(devices) != 4 {
		t.Errorf("expected 4 devices (core + 3), got %v", devices)
	}
	if e.FocusDevice() != "ZStage" {
		t.Errorf("focus device = %q, expected ZStage", e.FocusDevice())
	}

	channels := e.AvailableChannelConfigs()
	if len(channels) != 2 || channels[0] != "DAPI" || channels[1] != "FITC" {
		t.Errorf("channel presets = %v, expected [DAPI FITC]", channels)
	}
}

func TestRun_NoFocusDevice(t *testing.T) {
	e := New()
	seq := &model.Sequence{TimePlan: &model.TimePlan{Loops: 2}}

	err := e.Run(seq, "")
	if err == nil {
		t.Fatal("Run should fail without a focus device")
	}
	classified := engine.Classify(err)
	if classified.Kind != engine.KindConfigurationMissing {
		t.Errorf("classified kind = %s, expected ConfigurationMissing", classified.Kind)
	}
}

func TestRun_Lifecycle(t *testing.T) {
	e := New(WithFrameInterval(time.Millisecond))
	if err := e.LoadSystemConfiguration(writeConfig(t)); err != nil {
		t.Fatal(err)
	}

	seq := &model.Sequence{
		TimePlan: &model.TimePlan{Loops: 5},
		Channels: []model.Channel{{Config: "DAPI", ExposureMS: 10}},
	}

	started := make(chan struct{})
	finished := make(chan struct{})
	frames := 0
	e.Events().OnSequenceStarted(func(*model.Sequence) { close(started) })
	e.Events().OnFrameReady(func(f engine.Frame) {
		frames++
		if len(f.Pixels) == 0 {
			t.Error("frame has no pixel data")
		}
		if f.Metadata["run_id"] == "" {
			t.Error("frame has no run id")
		}
	})
	e.Events().OnSequenceFinished(func(*model.Sequence) { close(finished) })

	if err := e.Run(seq, ""); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for started notification")
	}

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for finished notification")
	}

	if frames != 5 {
		t.Errorf("received %d frames, expected 5", frames)
	}
	if e.IsRunning() {
		t.Error("engine still reports running after finished notification")
	}
}

func TestRun_WhileRunning(t *testing.T) {
	e := New(WithFrameInterval(50 * time.Millisecond))
	if err := e.LoadSystemConfiguration(writeConfig(t)); err != nil {
		t.Fatal(err)
	}

	seq := &model.Sequence{TimePlan: &model.TimePlan{Loops: 100}}
	if err := e.Run(seq, ""); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	defer e.Cancel()

	err := e.Run(seq, "")
	if !engine.IsKind(err, engine.KindAlreadyRunning) {
		t.Errorf("second Run error = %v, expected AlreadyRunning", err)
	}
}

func TestCancel(t *testing.T) {
	e := New(WithFrameInterval(20 * time.Millisecond))
	if err := e.LoadSystemConfiguration(writeConfig(t)); err != nil {
		t.Fatal(err)
	}

	canceled := make(chan struct{})
	e.Events().OnSequenceCanceled(func(*model.Sequence) { close(canceled) })

	seq := &model.Sequence{TimePlan: &model.TimePlan{Loops: 1000}}
	if err := e.Run(seq, ""); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if err := e.Cancel(); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	select {
	case <-canceled:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for canceled notification")
	}
}

func TestStage(t *testing.T) {
	e := New()
	if err := e.LoadSystemConfiguration(writeConfig(t)); err != nil {
		t.Fatal(err)
	}

	if err := e.SetXYPosition(100.5, -20.25); err != nil {
		t.Fatal(err)
	}
	x, y, err := e.XYPosition()
	if err != nil {
		t.Fatal(err)
	}
	if x != 100.5 || y != -20.25 {
		t.Errorf("XYPosition = (%v, %v), expected (100.5, -20.25)", x, y)
	}

	if err := e.SetPosition(42); err != nil {
		t.Fatal(err)
	}
	z, err := e.Position()
	if err != nil {
		t.Fatal(err)
	}
	if z != 42 {
		t.Errorf("Position = %v, expected 42", z)
	}
}

func TestPosition_NoFocusDevice(t *testing.T) {
	e := New()
	if _, err := e.Position(); err == nil {
		t.Error("Position should fail without a focus device")
	}
	if err := e.SetPosition(1); err == nil {
		t.Error("SetPosition should fail without a focus device")
	}
}
