package sample

import "time"

// NewThrottle creates a pipeline stage that rate-limits samples to at most
// one per interval, decoupling logging cadence from the amplifier's own
// rate. The first sample is always accepted; a sample is accepted when at
// least interval has elapsed since the last accepted one. interval <= 0
// passes every sample through (the default configuration).
//
// Samples are forwarded in arrival order; rejected samples are simply
// dropped, never buffered.
func NewThrottle(interval time.Duration, bufSize int) func(in <-chan Sample) <-chan Sample {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan Sample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			if interval <= 0 {
				for s := range in {
					out <- s
				}
				return
			}

			accepted := false
			var last time.Duration
			for s := range in {
				if accepted && s.Elapsed-last < interval {
					continue
				}
				accepted = true
				last = s.Elapsed
				out <- s
			}
		}()

		return out
	}
}
