// Package capture wires the acquisition pipeline together and owns the
// session lifecycle: one boot, one session file, one control loop until the
// device stops or the context is cancelled.
package capture

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/itohio/gotsl/pkg/config"
	"github.com/itohio/gotsl/pkg/display"
	"github.com/itohio/gotsl/pkg/indicator"
	"github.com/itohio/gotsl/pkg/rig"
	"github.com/itohio/gotsl/pkg/sample"
	"github.com/itohio/gotsl/pkg/session"
	"github.com/itohio/gotsl/pkg/sink"
	"github.com/itohio/gotsl/pkg/store"
)

const pipelineBufSize = 500

// Runner drives one measurement session from boot to shutdown.
type Runner struct {
	cfg       *config.Config
	st        *store.Store
	dev       rig.Device
	presenter *display.Presenter
	ind       *indicator.Latch
	diag      io.Writer

	logger   *sink.Logger
	index    int
	filename string
	factor   float64
	start    time.Time
	clock    sample.Clock // test hook; nil means wall clock from Boot
}

// New creates a Runner. disp receives the live rendering, ind the one-shot
// sink health, diag the mirrored sample lines (nil drops them).
func New(cfg *config.Config, st *store.Store, dev rig.Device, disp display.Display, ind indicator.Indicator, diag io.Writer) *Runner {
	if diag == nil {
		diag = io.Discard
	}
	return &Runner{
		cfg:       cfg,
		st:        st,
		dev:       dev,
		presenter: display.NewPresenter(disp),
		ind:       indicator.NewLatch(ind),
		diag:      diag,
	}
}

// Boot runs the startup sequence: advance the session counter, derive the
// filename, initialize the durable sink, reflect its health, show the
// banner, read the calibration factor, and tare the amplifier within the
// configured bound.
//
// A tare timeout is the system's one terminal failure: the indicator is
// forced unhealthy, a failure message is rendered, and the returned error
// tells the caller the control loop must never start.
func (r *Runner) Boot(ctx context.Context) error {
	// The counter must advance, and the new value must be durable, before
	// any session file is opened.
	index, err := session.NewCounter(r.st).Advance()
	if err != nil {
		return fmt.Errorf("failed to advance session counter: %w", err)
	}
	r.index = index
	r.filename = session.Filename(index)

	r.logger = sink.New(r.diag, r.cfg.Storage.DataDir, r.filename)
	ok := r.logger.Init(index)
	r.ind.Set(ok)
	r.presenter.ShowSession(r.filename, ok)

	r.factor = r.st.CalibrationFactor()

	tctx, cancel := context.WithTimeout(ctx, r.cfg.Tare.Timeout)
	defer cancel()
	if err := r.dev.Tare(tctx); err != nil {
		r.ind.Force(false)
		r.presenter.ShowFailure("Scale startup failed")
		fmt.Fprintln(r.diag, "Scale startup failed!")
		return fmt.Errorf("tare failed: %w", err)
	}
	fmt.Fprintln(r.diag, "Scale startup is complete")

	r.start = time.Now()
	return nil
}

// Run consumes the device's sample stream until it closes or ctx is
// cancelled. Each accepted sample is logged to both sinks and rendered, in
// acceptance order, strictly one at a time.
func (r *Runner) Run(ctx context.Context) error {
	clock := r.clock
	if clock == nil {
		clock = sample.SinceClock(r.start)
	}

	raw := r.dev.Samples()
	if r.cfg.Sampling.Smoothing > 1 {
		raw = sample.NewSmoothing(r.cfg.Sampling.Smoothing, pipelineBufSize)(raw)
	}
	stream := sample.NewConverter(r.factor, clock, pipelineBufSize)(raw)
	stream = sample.NewThrottle(r.cfg.Sampling.Interval, pipelineBufSize)(stream)

	for {
		select {
		case s, ok := <-stream:
			if !ok {
				return nil
			}
			r.logger.Log(s)
			r.presenter.ShowSample(s.Elapsed, s.Force)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Index returns the session index chosen at Boot.
func (r *Runner) Index() int { return r.index }

// Filename returns the session file name derived at Boot.
func (r *Runner) Filename() string { return r.filename }

// Healthy returns the one-shot durable sink health captured at Boot.
func (r *Runner) Healthy() bool { return r.logger != nil && r.logger.Healthy() }
