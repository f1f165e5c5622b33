//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	NUM_SAMPLES = 4 // Number of readings to average before output

	// Tare configuration
	TARE_SAMPLES = 16 // Readings averaged to establish the zero offset

	// Power-up settling
	SETTLE_SAMPLES = 8 // Conversions discarded after power-up

	// HX711 pins
	PIN_HX711_SCK  = machine.D2 // Serial clock (output)
	PIN_HX711_DOUT = machine.D3 // Data out from the amplifier (input)

	// Serial configuration
	// Baud rate calculation: Format "micros,reading\n"
	// Example: "1234567890123456,-8388608\n" = ~26 bytes max per line
	// HX711 at 10 SPS, averaged by 4 = ~3 outputs/sec worst case, 80 SPS
	// mode = 20 outputs/sec = 520 bytes/sec
	// UART 8N1: 10 bits/byte = 5,200 baud minimum
	// 115200 provides ~22x headroom
	UART_BAUD_RATE = 115200
)
