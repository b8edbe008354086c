package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sebastiankruger/exercise-simulator/internal/physiology"
)

// TestDeferredQueueOrder verifies actions run in due order, ties in
// scheduling order, and only once due.
func TestDeferredQueueOrder(t *testing.T) {
	q := NewDeferredQueue()
	var order []string
	record := func(name string) Action {
		return func(*physiology.State) { order = append(order, name) }
	}

	q.Schedule(2, "c", record("c"))
	q.Schedule(1, "a", record("a"))
	q.Schedule(1, "b", record("b"))
	q.Schedule(5, "d", record("d"))
	assert.Equal(t, []string{"a", "b", "c", "d"}, q.Pending())

	s := physiology.NewState()
	assert.Equal(t, 0, q.Drain(0.5, s))
	assert.Equal(t, 3, q.Drain(2, s))
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 1, q.Len())
}

func TestDeferredQueueCancel(t *testing.T) {
	q := NewDeferredQueue()
	ran := 0
	inc := func(*physiology.State) { ran++ }

	h1 := q.Schedule(1, "one", inc)
	q.Schedule(2, "two", inc)
	h3 := q.Schedule(3, "three", inc)

	assert.True(t, q.Cancel(h1))
	assert.False(t, q.Cancel(h1))
	assert.True(t, q.Cancel(h3))
	assert.Equal(t, []string{"two"}, q.Pending())

	assert.Equal(t, 1, q.Drain(10, physiology.NewState()))
	assert.Equal(t, 1, ran)
	assert.False(t, q.Cancel(Handle(999)))
}

func TestDeferredQueueClear(t *testing.T) {
	q := NewDeferredQueue()
	h := q.Schedule(1, "x", nil)
	q.Schedule(2, "y", nil)
	q.Clear()

	assert.Equal(t, 0, q.Len())
	assert.False(t, q.Cancel(h))
	assert.Equal(t, 0, q.Drain(100, physiology.NewState()))

	q.Schedule(1, "z", nil)
	assert.Equal(t, 1, q.Drain(1, physiology.NewState()))
}

func TestRepEmitter(t *testing.T) {
	e := NewRepEmitter(0.9, 0.1)

	assert.True(t, e.CheckBoundary(0.95, 0.02))
	assert.False(t, e.CheckBoundary(0.85, 0.02))
	assert.False(t, e.CheckBoundary(0.95, 0.15))

	assert.False(t, e.Observe(0.95), "first observation never fires")
	assert.True(t, e.Observe(0.01))
	assert.False(t, e.Observe(0.01))

	e.Observe(0.97)
	e.Reset()
	assert.False(t, e.Observe(0.03))
}
