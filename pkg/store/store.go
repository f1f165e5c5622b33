// Package store persists the small cross-reset state of the rig: the
// session index and the load-cell calibration factor. The state lives in a
// single YAML file so it survives resets and can be inspected or written
// out-of-band (the calibration procedure writes the factor here).
package store

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// MaxSessionIndex is the largest session index before wraparound.
const MaxSessionIndex = 99

// state is the on-disk representation.
type state struct {
	SessionIndex      int     `yaml:"session_index"`
	CalibrationFactor float64 `yaml:"calibration_factor"`
}

// Store is a typed, file-backed persistent store. A missing or empty state
// file reads as the documented first-boot sentinel: session index 0 and
// calibration factor 1.0. Every put is written through to disk before it
// returns.
type Store struct {
	path  string
	mu    sync.Mutex
	state state
}

// Open opens (or initializes) the store at path. The file itself is not
// created until the first put.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		state: state{
			SessionIndex:      0,
			CalibrationFactor: 1.0,
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// First boot: sentinel defaults
			return s, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if err := yaml.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if s.state.SessionIndex < 0 || s.state.SessionIndex > MaxSessionIndex {
		s.state.SessionIndex = 0
	}
	// A zero factor would silence every reading; treat it as uncalibrated.
	if s.state.CalibrationFactor == 0 {
		s.state.CalibrationFactor = 1.0
	}

	return s, nil
}

// SessionIndex returns the persisted session index.
func (s *Store) SessionIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SessionIndex
}

// SetSessionIndex persists a new session index.
func (s *Store) SetSessionIndex(v int) error {
	if v < 0 || v > MaxSessionIndex {
		return fmt.Errorf("session index %d out of range [0,%d]", v, MaxSessionIndex)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state.SessionIndex
	s.state.SessionIndex = v
	if err := s.save(); err != nil {
		s.state.SessionIndex = prev
		return err
	}
	return nil
}

// CalibrationFactor returns the persisted calibration factor.
func (s *Store) CalibrationFactor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CalibrationFactor
}

// SetCalibrationFactor persists a new calibration factor. The acquisition
// pipeline never calls this; it exists for the calibration procedure.
func (s *Store) SetCalibrationFactor(f float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state.CalibrationFactor
	s.state.CalibrationFactor = f
	if err := s.save(); err != nil {
		s.state.CalibrationFactor = prev
		return err
	}
	return nil
}

// save writes the current state to disk. Caller must hold s.mu.
func (s *Store) save() error {
	data, err := yaml.Marshal(&s.state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}
