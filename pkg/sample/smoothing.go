package sample

import "github.com/itohio/gotsl/pkg/rig"

// NewSmoothing creates a pipeline stage that applies a moving average over
// the last window raw readings, a host-side analog of the amplifier's own
// filter for noisy rigs. Each input produces one output carrying the
// averaged reading and the latest timestamp. window <= 1 passes readings
// through unchanged.
func NewSmoothing(window int, bufSize int) func(in <-chan rig.RawSample) <-chan rig.RawSample {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan rig.RawSample) <-chan rig.RawSample {
		out := make(chan rig.RawSample, bufSize)

		go func() {
			defer close(out)

			if window <= 1 {
				for raw := range in {
					out <- raw
				}
				return
			}

			buffer := make([]rig.RawSample, 0, window)
			for raw := range in {
				buffer = append(buffer, raw)
				if len(buffer) > window {
					buffer = buffer[1:] // Remove oldest
				}

				var sum float64
				for _, s := range buffer {
					sum += s.Reading
				}

				out <- rig.RawSample{
					Timestamp: raw.Timestamp,
					Reading:   sum / float64(len(buffer)),
				}
			}
		}()

		return out
	}
}
