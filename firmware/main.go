//go:generate tinygo flash -target=xiao

//go:build tinygo

package main

import (
	"machine"
	"time"
)

var (
	uart = machine.UART0

	// Zero offset established by tare, in raw HX711 counts
	tareOffset int32

	// Moving average - running sum and count
	readingSum   int64
	readingCount int
)

func main() {
	// Configure HX711 pins
	PIN_HX711_SCK.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_HX711_DOUT.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_HX711_SCK.Low()

	// Configure UART for host communication
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Discard the first conversions while the amplifier settles after
	// power-up
	for i := 0; i < SETTLE_SAMPLES; i++ {
		for !hx711Ready() {
			time.Sleep(100 * time.Microsecond)
		}
		hx711Read()
	}

	// Main loop
	for {
		// Check for serial input (non-blocking)
		processSerial()

		// The HX711 signals a ready conversion by pulling DOUT low
		if hx711Ready() {
			value := hx711Read()
			readingSum += int64(value)
			readingCount++
		}

		// Output once we've accumulated enough readings
		if readingCount >= NUM_SAMPLES {
			outputReading()
			readingSum = 0
			readingCount = 0
		}

		// Small delay to prevent tight loop (but still allow precise timing)
		time.Sleep(100 * time.Microsecond)
	}
}

func hx711Ready() bool {
	return !PIN_HX711_DOUT.Get()
}

// hx711Read clocks out one 24-bit two's complement conversion and one
// extra pulse to select channel A gain 128 for the next conversion.
func hx711Read() int32 {
	var raw uint32

	for i := 0; i < 24; i++ {
		PIN_HX711_SCK.High()
		raw = raw << 1
		PIN_HX711_SCK.Low()
		if PIN_HX711_DOUT.Get() {
			raw |= 1
		}
	}

	// 25th pulse: channel A, gain 128
	PIN_HX711_SCK.High()
	PIN_HX711_SCK.Low()

	// Sign-extend the 24-bit value
	if raw&0x800000 != 0 {
		raw |= 0xFF000000
	}

	return int32(raw)
}

func outputReading() {
	avg := int32(readingSum / int64(readingCount))
	net := avg - tareOffset

	// Get timestamp in unix microseconds
	now := time.Now()
	timestampMicros := now.UnixNano() / 1000 // Convert nanoseconds to microseconds

	// Output format: "micros,reading\n"
	// Example: "1234567890123,52318\n"
	print(timestampMicros)
	print(",")
	print(net)
	print("\n")
}

func processSerial() {
	// Read available bytes from serial
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		// Single-character commands, whitespace ignored
		switch data {
		case 'T', 't':
			tare()
		case '\n', '\r', ' ', '\t':
			// Ignore
		}
	}
}

// tare blocks until TARE_SAMPLES fresh conversions have been averaged
// into a new zero offset, then confirms to the host. Status lines start
// with '#' so the host can tell them from data lines.
func tare() {
	var sum int64

	for i := 0; i < TARE_SAMPLES; i++ {
		for !hx711Ready() {
			time.Sleep(100 * time.Microsecond)
		}
		sum += int64(hx711Read())
	}

	tareOffset = int32(sum / TARE_SAMPLES)

	// Discard the partial average accumulated before the tare
	readingSum = 0
	readingCount = 0

	print("#TARED\n")
}
