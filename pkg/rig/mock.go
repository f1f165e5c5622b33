package rig

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/gotsl/pkg/config"
)

// Mock simulates a thrust rig amplifier for testing and development. It
// produces a periodic motor burn: fast ramp to peak, brief hold, then an
// exponential decay back to the noise floor. Curve arithmetic runs in
// float32 to mirror the MCU.
type Mock struct {
	cfg *config.MockConfig

	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	// Simulation state
	startTime time.Time
	offset    float64 // Tare offset subtracted from every reading
}

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:       cfg,
		samples:   make(chan RawSample, DefaultBufferSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.startTime = time.Now()
	m.offset = 0

	// Start generating samples
	go m.generateSamples()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false
	close(m.samples)

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

// Tare simulates the zero-offset calibration. TareDelay models the
// stabilization time of the real amplifier; a delay longer than the
// caller's deadline reproduces the fatal boot timeout.
func (m *Mock) Tare(ctx context.Context) error {
	m.mu.RLock()
	if !m.connected {
		m.mu.RUnlock()
		return fmt.Errorf("not connected")
	}
	delay := m.cfg.TareDelay
	m.mu.RUnlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("tare did not complete: %w", ctx.Err())
		case <-m.ctx.Done():
			return fmt.Errorf("device closed during tare")
		}
	}

	m.mu.Lock()
	m.offset = m.rawValue(time.Since(m.startTime))
	m.mu.Unlock()

	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// generateSamples generates simulated samples.
func (m *Mock) generateSamples() {
	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			sample := m.generateSample()
			select {
			case m.samples <- sample:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// generateSample generates a single simulated sample.
func (m *Mock) generateSample() RawSample {
	m.mu.RLock()
	now := time.Now()
	elapsed := now.Sub(m.startTime)
	offset := m.offset
	m.mu.RUnlock()

	return RawSample{
		Timestamp: now,
		Reading:   m.rawValue(elapsed) - offset,
	}
}

// rawValue computes the untared simulated reading at the given elapsed time.
func (m *Mock) rawValue(elapsed time.Duration) float64 {
	t := float32(elapsed.Seconds())
	period := float32(m.cfg.BurnPeriod.Seconds())
	burn := float32(m.cfg.BurnDuration.Seconds())

	// Position within the current burn cycle
	phase := math32.Mod(t, period)

	var thrust float32
	peak := float32(m.cfg.PeakForce)
	switch {
	case phase < 0.1*burn:
		// Ignition ramp
		thrust = peak * phase / (0.1 * burn)
	case phase < burn:
		// Sustained burn with slight droop
		thrust = peak * (1 - 0.15*(phase-0.1*burn)/burn)
	case phase < 2*burn:
		// Tail-off decay
		thrust = peak * 0.85 * math32.Exp(-(phase-burn)/(0.2*burn))
	default:
		thrust = 0
	}

	// Structural noise: two incommensurate tones
	noise := (math32.Sin(t*73.1) + math32.Cos(t*91.7)) *
		float32(m.cfg.NoiseLevel) * 0.5

	return float64(thrust + noise)
}
