package rig

import "context"

// Device defines the interface for thrust rig amplifier devices (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Samples() <-chan RawSample
	// Tare runs the zero-offset calibration on the amplifier. It blocks
	// until the device confirms or ctx expires; a timeout here is the one
	// fatal condition of the system.
	Tare(ctx context.Context) error
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
