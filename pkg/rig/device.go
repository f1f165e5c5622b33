package rig

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate for the amplifier MCU.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
)

// RawSample represents one filtered load-cell reading from the amplifier MCU.
type RawSample struct {
	Timestamp time.Time
	Reading   float64 // Filtered HX711 counts, signed (tension vs. compression)
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the thrust rig MCU.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	samples   chan RawSample
	tared     chan struct{}
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial device with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:      port,
		baudRate:  baudRate,
		bufSize:   bufSize,
		samples:   make(chan RawSample, bufSize),
		tared:     make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect connects to the serial port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	// Start reading samples in a goroutine
	go d.readSamples()

	return nil
}

// Close closes the connection and stops reading samples.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	// Cancel context to stop reading goroutine
	d.cancel()

	// Close serial port
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false

	// Close samples channel
	close(d.samples)

	return nil
}

// Samples returns the channel for reading samples.
func (d *Serial) Samples() <-chan RawSample {
	return d.samples
}

// Tare sends the tare command to the MCU and waits for confirmation.
func (d *Serial) Tare(ctx context.Context) error {
	d.mu.RLock()
	if !d.connected {
		d.mu.RUnlock()
		return fmt.Errorf("not connected")
	}
	conn := d.conn
	d.mu.RUnlock()

	// Drain a stale confirmation left over from an earlier tare
	select {
	case <-d.tared:
	default:
	}

	if _, err := conn.Write([]byte("T\n")); err != nil {
		return fmt.Errorf("failed to send tare command: %w", err)
	}

	select {
	case <-d.tared:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("tare did not complete: %w", ctx.Err())
	case <-d.ctx.Done():
		return fmt.Errorf("device closed during tare")
	}
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readSamples reads lines from the serial port and parses them into RawSample.
func (d *Serial) readSamples() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readSamples: %v", r)
		}
	}()

	scanner := bufio.NewScanner(d.conn)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				// Scanner stopped (EOF or error)
				if err := scanner.Err(); err != nil {
					if err != io.EOF {
						log.Printf("Error reading from serial port: %v", err)
					}
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			// Status chatter from the MCU is prefixed with '#'
			if strings.HasPrefix(line, "#") {
				d.handleStatus(line)
				continue
			}

			sample, err := parseLine(line)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", line, err)
				continue
			}

			// Send sample to channel (non-blocking)
			select {
			case d.samples <- sample:
			case <-d.ctx.Done():
				return
			default:
				// Channel full, log and skip
				log.Printf("Samples channel full, dropping sample")
			}
		}
	}
}

// handleStatus processes a status line from the MCU.
func (d *Serial) handleStatus(line string) {
	switch line {
	case "#TARED":
		select {
		case d.tared <- struct{}{}:
		default:
		}
	default:
		log.Printf("MCU: %s", strings.TrimPrefix(line, "#"))
	}
}

// parseLine parses a sample line from the MCU into a RawSample.
// Format: unix_micros,reading
// Example: 1234567890123,-48231
func parseLine(line string) (RawSample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return RawSample{}, fmt.Errorf("invalid line format: expected 2 comma-separated values, got %d", len(parts))
	}

	// Parse timestamp (unix microseconds)
	timestampMicros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	timestamp := time.Unix(0, timestampMicros*1000) // Convert microseconds to nanoseconds

	// Parse reading (filtered counts, signed)
	reading, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid reading: %w", err)
	}

	return RawSample{
		Timestamp: timestamp,
		Reading:   reading,
	}, nil
}
