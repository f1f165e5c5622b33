package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	calls  int
	states []bool
}

func (r *recorder) Set(healthy bool) {
	r.calls++
	r.states = append(r.states, healthy)
}

func TestLatch_FirstSetWins(t *testing.T) {
	rec := &recorder{}
	l := NewLatch(rec)

	l.Set(true)
	l.Set(false)
	l.Set(false)

	assert.Equal(t, 1, rec.calls, "only the first Set reaches the target")
	assert.Equal(t, []bool{true}, rec.states)

	healthy, set := l.State()
	assert.True(t, set)
	assert.True(t, healthy)
}

func TestLatch_UnhealthyLatches(t *testing.T) {
	rec := &recorder{}
	l := NewLatch(rec)

	l.Set(false)
	l.Set(true)

	healthy, set := l.State()
	assert.True(t, set)
	assert.False(t, healthy, "later recovery must not change the lamp")
}

func TestLatch_ForceOverrides(t *testing.T) {
	rec := &recorder{}
	l := NewLatch(rec)

	l.Set(true)
	l.Force(false)

	healthy, _ := l.State()
	assert.False(t, healthy)
	assert.Equal(t, []bool{true, false}, rec.states)

	// The latch stays closed afterwards
	l.Set(true)
	assert.Equal(t, 2, rec.calls)
}

func TestLatch_Unset(t *testing.T) {
	l := NewLatch(nil)
	_, set := l.State()
	assert.False(t, set)
}

func TestLatch_NilTarget(t *testing.T) {
	l := NewLatch(nil)
	l.Set(true) // must not panic
	healthy, set := l.State()
	assert.True(t, healthy)
	assert.True(t, set)
}

func TestFunc(t *testing.T) {
	var got []bool
	ind := Func(func(h bool) { got = append(got, h) })
	ind.Set(true)
	ind.Set(false)
	assert.Equal(t, []bool{true, false}, got)
}
