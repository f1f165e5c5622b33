package capture

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/itohio/gotsl/pkg/config"
	"github.com/itohio/gotsl/pkg/display"
	"github.com/itohio/gotsl/pkg/rig"
	"github.com/itohio/gotsl/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDevice is a hand-fed Device for deterministic pipeline tests.
type stubDevice struct {
	samples   chan rig.RawSample
	tareErr   error
	connected bool
}

func newStubDevice() *stubDevice {
	return &stubDevice{samples: make(chan rig.RawSample, 100)}
}

func (d *stubDevice) Connect() error { d.connected = true; return nil }

func (d *stubDevice) Close() error { d.connected = false; return nil }

func (d *stubDevice) Samples() <-chan rig.RawSample { return d.samples }

func (d *stubDevice) IsConnected() bool { return d.connected }

func (d *stubDevice) Tare(ctx context.Context) error { return d.tareErr }

var _ rig.Device = (*stubDevice)(nil)

type fixture struct {
	cfg    *config.Config
	st     *store.Store
	dev    *stubDevice
	grid   *display.Grid
	lamp   *lampRecorder
	diag   *bytes.Buffer
	runner *Runner
}

type lampRecorder struct {
	states []bool
}

func (l *lampRecorder) Set(healthy bool) { l.states = append(l.states, healthy) }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.DataDir = filepath.Join(dir, "data")
	cfg.Storage.StateFile = filepath.Join(dir, "state.yaml")
	cfg.Tare.Timeout = 100 * time.Millisecond
	require.NoError(t, os.MkdirAll(cfg.Storage.DataDir, 0755))

	st, err := store.Open(cfg.Storage.StateFile)
	require.NoError(t, err)

	f := &fixture{
		cfg:  cfg,
		st:   st,
		dev:  newStubDevice(),
		grid: display.NewGrid(4, 20),
		lamp: &lampRecorder{},
		diag: &bytes.Buffer{},
	}
	f.runner = New(cfg, st, f.dev, f.grid, f.lamp, f.diag)
	return f
}

func TestBoot_AdvancesCounterAndDerivesFilename(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.runner.Boot(context.Background()))

	assert.Equal(t, 1, f.runner.Index())
	assert.Equal(t, "TEST_01.txt", f.runner.Filename())
	assert.Equal(t, 1, f.st.SessionIndex(), "new index persisted before any file is opened")
	assert.True(t, f.runner.Healthy())
	assert.Equal(t, []bool{true}, f.lamp.states)
	assert.Equal(t, "Writing: TEST_01.txt", f.grid.Row(0))

	data, err := os.ReadFile(filepath.Join(f.cfg.Storage.DataDir, "TEST_01.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Start of test 1\n", string(data))
}

// Scenario B: boot with SessionIndex persisted as 99.
func TestBoot_CounterWraparound(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.st.SetSessionIndex(99))

	require.NoError(t, f.runner.Boot(context.Background()))

	assert.Equal(t, 0, f.runner.Index())
	assert.Equal(t, "TEST_00.txt", f.runner.Filename())
	assert.Equal(t, 0, f.st.SessionIndex())
}

// Scenario A: boot with the durable sink absent.
func TestBootRun_DurableSinkAbsent(t *testing.T) {
	f := newFixture(t)
	f.cfg.Storage.DataDir = filepath.Join(t.TempDir(), "missing")

	require.NoError(t, f.runner.Boot(context.Background()))

	assert.False(t, f.runner.Healthy())
	assert.Equal(t, []bool{false}, f.lamp.states, "lamp shows unhealthy")
	assert.Equal(t, "Failed: TEST_01.txt ", f.grid.Row(0))

	// The run continues: diagnostic sink still receives sample lines
	f.runner.clock = sequenceClock(10*time.Millisecond, 20*time.Millisecond)
	f.dev.samples <- rig.RawSample{Reading: 100}
	f.dev.samples <- rig.RawSample{Reading: 200}
	close(f.dev.samples)

	require.NoError(t, f.runner.Run(context.Background()))

	diag := f.diag.String()
	assert.Contains(t, diag, "10,100.0000")
	assert.Contains(t, diag, "20,200.0000")

	// No session file was produced
	_, err := os.Stat(filepath.Join(f.cfg.Storage.DataDir, "TEST_01.txt"))
	assert.True(t, os.IsNotExist(err))
}

// Scenario C: tare times out during boot.
func TestBoot_TareTimeoutIsTerminal(t *testing.T) {
	f := newFixture(t)
	f.dev.tareErr = context.DeadlineExceeded

	err := f.runner.Boot(context.Background())
	require.Error(t, err)

	healthy, set := latchState(f.runner)
	assert.True(t, set)
	assert.False(t, healthy, "unhealthy state forced despite healthy card")
	assert.Equal(t, []bool{true, false}, f.lamp.states)
	assert.Equal(t, "Scale startup failed", f.grid.Row(0))
	assert.Contains(t, f.diag.String(), "Scale startup failed!")
}

func latchState(r *Runner) (bool, bool) {
	return r.ind.State()
}

func TestRun_LogsAndPresentsInOrder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.runner.Boot(context.Background()))

	f.runner.clock = sequenceClock(
		100*time.Millisecond,
		200*time.Millisecond,
		300*time.Millisecond,
	)
	f.dev.samples <- rig.RawSample{Reading: 10}
	f.dev.samples <- rig.RawSample{Reading: -20}
	f.dev.samples <- rig.RawSample{Reading: 30}
	close(f.dev.samples)

	require.NoError(t, f.runner.Run(context.Background()))

	file, err := os.Open(filepath.Join(f.cfg.Storage.DataDir, f.runner.Filename()))
	require.NoError(t, err)
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())

	assert.Equal(t, []string{
		"Start of test 1",
		"100,10.0000",
		"200,-20.0000",
		"300,30.0000",
	}, lines)

	// Display shows the latest sample
	assert.Equal(t, "Time:  0.3s", strings.TrimRight(f.grid.Row(2), " "))
	assert.Equal(t, "Force: 30.00", strings.TrimRight(f.grid.Row(3), " "))
}

func TestRun_AppliesCalibrationFactor(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.st.SetCalibrationFactor(0.5))
	require.NoError(t, f.runner.Boot(context.Background()))

	f.runner.clock = sequenceClock(50 * time.Millisecond)
	f.dev.samples <- rig.RawSample{Reading: 100}
	close(f.dev.samples)

	require.NoError(t, f.runner.Run(context.Background()))
	assert.Contains(t, f.diag.String(), "50,50.0000")
}

func TestRun_ThrottleLimitsRate(t *testing.T) {
	f := newFixture(t)
	f.cfg.Sampling.Interval = 100 * time.Millisecond
	require.NoError(t, f.runner.Boot(context.Background()))

	f.runner.clock = sequenceClock(
		0,
		30*time.Millisecond,
		60*time.Millisecond,
		120*time.Millisecond,
	)
	for i := 0; i < 4; i++ {
		f.dev.samples <- rig.RawSample{Reading: float64(i)}
	}
	close(f.dev.samples)

	require.NoError(t, f.runner.Run(context.Background()))

	diagLines := strings.Split(strings.TrimSpace(f.diag.String()), "\n")
	// Boot status line + two accepted samples (0ms and 120ms)
	assert.Len(t, diagLines, 3)
	assert.Contains(t, f.diag.String(), "0,0.0000")
	assert.Contains(t, f.diag.String(), "120,3.0000")
	assert.NotContains(t, f.diag.String(), "30,1.0000")
}

func TestRun_ContextCancel(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.runner.Boot(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.runner.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}

// TestSessionSequence runs two boots against the same store and verifies
// distinct session files.
func TestSessionSequence(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.runner.Boot(context.Background()))
	assert.Equal(t, "TEST_01.txt", f.runner.Filename())

	second := New(f.cfg, f.st, newStubDevice(), f.grid, f.lamp, f.diag)
	require.NoError(t, second.Boot(context.Background()))
	assert.Equal(t, "TEST_02.txt", second.Filename())

	_, err := os.Stat(filepath.Join(f.cfg.Storage.DataDir, "TEST_01.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(f.cfg.Storage.DataDir, "TEST_02.txt"))
	assert.NoError(t, err)
}

// sequenceClock yields the given elapsed values in order, repeating the
// last one when exhausted.
func sequenceClock(values ...time.Duration) func() time.Duration {
	i := 0
	return func() time.Duration {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}
