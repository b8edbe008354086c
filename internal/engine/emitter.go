package engine

// RepEmitter detects cycle wraparounds between consecutive ticks. It fires
// at most once per tick: a tick that skips whole cycles counts one rep.
type RepEmitter struct {
	high float64
	low  float64

	prev    float64
	hasPrev bool
}

// NewRepEmitter creates an emitter. A boundary is a previous cycle phase
// above high followed by a current one below low.
func NewRepEmitter(high, low float64) *RepEmitter {
	return &RepEmitter{high: high, low: low}
}

// CheckBoundary reports whether the step from prev to cur wrapped the cycle
func (e *RepEmitter) CheckBoundary(prev, cur float64) bool {
	return prev > e.high && cur < e.low
}

// Observe records the cycle phase of a tick and reports whether it
// completed a rep. The first observation after a reset never does.
func (e *RepEmitter) Observe(cyclePhase float64) bool {
	if !e.hasPrev {
		e.prev, e.hasPrev = cyclePhase, true
		return false
	}
	hit := e.CheckBoundary(e.prev, cyclePhase)
	e.prev = cyclePhase
	return hit
}

// Reset forgets the previous tick, e.g. after a restart or exercise change
func (e *RepEmitter) Reset() {
	e.prev, e.hasPrev = 0, false
}
