package engine

import (
	"cmp"
	"container/heap"
	"slices"

	"github.com/sebastiankruger/exercise-simulator/internal/physiology"
)

// Action is a deferred mutation of the session state
type Action func(s *physiology.State)

// Handle identifies a scheduled action so it can be cancelled
type Handle uint64

type deferredAction struct {
	due    float64
	seq    uint64
	label  string
	action Action
	index  int
}

type actionHeap []*deferredAction

func (h actionHeap) Len() int { return len(h) }

func (h actionHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h actionHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *actionHeap) Push(x any) {
	a := x.(*deferredAction)
	a.index = len(*h)
	*h = append(*h, a)
}

func (h *actionHeap) Pop() any {
	old := *h
	n := len(old)
	a := old[n-1]
	old[n-1] = nil
	a.index = -1
	*h = old[:n-1]
	return a
}

// DeferredQueue holds future state mutations ordered by due time in
// session seconds. It is drained from the tick, never from a timer, so
// nothing fires while the session is paused.
type DeferredQueue struct {
	heap    actionHeap
	byID    map[Handle]*deferredAction
	nextSeq uint64
}

// NewDeferredQueue creates an empty queue
func NewDeferredQueue() *DeferredQueue {
	return &DeferredQueue{byID: make(map[Handle]*deferredAction)}
}

// Schedule adds an action due at session time due. Actions with equal due
// times run in scheduling order.
func (q *DeferredQueue) Schedule(due float64, label string, action Action) Handle {
	q.nextSeq++
	a := &deferredAction{due: due, seq: q.nextSeq, label: label, action: action}
	heap.Push(&q.heap, a)
	h := Handle(a.seq)
	q.byID[h] = a
	return h
}

// Cancel removes a pending action. It reports whether the action was
// still pending.
func (q *DeferredQueue) Cancel(h Handle) bool {
	a, ok := q.byID[h]
	if !ok {
		return false
	}
	delete(q.byID, h)
	heap.Remove(&q.heap, a.index)
	return true
}

// Drain runs every action due at or before now, in due order, and returns
// how many ran
func (q *DeferredQueue) Drain(now float64, s *physiology.State) int {
	ran := 0
	for len(q.heap) > 0 && q.heap[0].due <= now {
		a := heap.Pop(&q.heap).(*deferredAction)
		delete(q.byID, Handle(a.seq))
		if a.action != nil {
			a.action(s)
		}
		ran++
	}
	return ran
}

// Clear drops every pending action
func (q *DeferredQueue) Clear() {
	for i := range q.heap {
		q.heap[i] = nil
	}
	q.heap = q.heap[:0]
	clear(q.byID)
}

// Len returns the number of pending actions
func (q *DeferredQueue) Len() int {
	return len(q.heap)
}

// Pending returns the labels of pending actions in due order
func (q *DeferredQueue) Pending() []string {
	sorted := slices.Clone(q.heap)
	slices.SortFunc(sorted, func(a, b *deferredAction) int {
		if c := cmp.Compare(a.due, b.due); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	labels := make([]string, len(sorted))
	for i, a := range sorted {
		labels[i] = a.label
	}
	return labels
}
