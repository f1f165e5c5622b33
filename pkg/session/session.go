// Package session owns session identity: the wraparound boot counter and
// the filename every session's data is recorded under.
package session

import (
	"fmt"

	"github.com/itohio/gotsl/pkg/store"
)

// Counter advances the persistent session index. Advance must run exactly
// once per boot, before any session file is opened, so the index used for
// the filename and the index written back agree.
type Counter struct {
	store *store.Store
}

// NewCounter creates a Counter backed by the given store.
func NewCounter(st *store.Store) *Counter {
	return &Counter{store: st}
}

// Advance increments the stored index, wrapping 99 back to 0, and persists
// the new value before returning it.
func (c *Counter) Advance() (int, error) {
	v := c.store.SessionIndex() + 1
	if v > store.MaxSessionIndex {
		v = 0
	}
	if err := c.store.SetSessionIndex(v); err != nil {
		return 0, fmt.Errorf("failed to persist session index: %w", err)
	}
	return v, nil
}

// Filename derives the session file name for an index in [0,99]. The
// mapping is injective over the range and the base name stays within the
// 8-character short-name limit of FAT-formatted cards. After 100 sessions
// names recycle and earlier data for the index is overwritten.
func Filename(index int) string {
	return fmt.Sprintf("TEST_%02d.txt", index)
}

// StartMarker is the first line written to every session file.
func StartMarker(index int) string {
	return fmt.Sprintf("Start of test %d", index)
}
