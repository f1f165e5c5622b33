package sample

import (
	"time"

	"github.com/itohio/gotsl/pkg/rig"
)

// Sample represents one accepted measurement: elapsed time since
// acquisition start and the calibrated force reading.
type Sample struct {
	Elapsed time.Duration
	Force   float64 // Grams-equivalent, signed (tension vs. compression)
}

// Clock reports elapsed time since acquisition start. Injectable so the
// pipeline is testable without real time (see SinceClock for production).
type Clock func() time.Duration

// SinceClock returns a Clock measuring monotonic elapsed time from start.
func SinceClock(start time.Time) Clock {
	return func() time.Duration {
		return time.Since(start)
	}
}

// Converter is a function type that converts a RawSample channel to a Sample channel.
type Converter func(in <-chan rig.RawSample) <-chan Sample

// NewConverter creates a converter that stamps each raw reading with the
// clock and applies the calibration factor multiplicatively.
func NewConverter(factor float64, clock Clock, bufSize int) Converter {
	if factor == 0 {
		factor = 1
	}
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan rig.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for raw := range in {
				elapsed := clock()
				if elapsed < 0 {
					elapsed = 0
				}

				out <- Sample{
					Elapsed: elapsed,
					Force:   raw.Reading * factor,
				}
			}
		}()

		return out
	}
}
