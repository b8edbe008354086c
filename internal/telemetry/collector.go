package telemetry

import (
	"sync"

	"github.com/google/uuid"

	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
	"github.com/sebastiankruger/exercise-simulator/internal/engine"
)

// maxIntervals bounds the moving window of rep intervals
const maxIntervals = 100

// Summary contains aggregated session values
type Summary struct {
	SessionID          uuid.UUID                    `json:"sessionId"`
	TotalReps          int                          `json:"totalReps"`
	TotalEnergy        float64                      `json:"totalEnergy"` // kcal
	AverageFormQuality float64                      `json:"averageFormQuality"`
	MaxPeakForce       float64                      `json:"maxPeakForce"` // bodyweights
	RepsPerMinute      float64                      `json:"repsPerMinute"`
	AverageRepInterval float64                      `json:"averageRepInterval"` // seconds
	RepsByExercise     map[catalog.ExerciseType]int `json:"repsByExercise"`
	LastRep            *engine.RepEvent             `json:"lastRep,omitempty"`
}

// Collector aggregates the rep event stream of one session. A rep from a
// different session starts the aggregation over.
type Collector struct {
	sessionID   uuid.UUID
	reps        int
	energy      float64
	formSum     float64
	maxPeak     float64
	byExercise  map[catalog.ExerciseType]int
	intervals   []float64
	lastRepTime float64
	lastRep     *engine.RepEvent

	mu sync.RWMutex
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{
		byExercise: make(map[catalog.ExerciseType]int),
		intervals:  make([]float64, 0, maxIntervals),
	}
}

// Record adds a rep event
func (c *Collector) Record(ev engine.RepEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.SessionID != c.sessionID {
		c.reset()
		c.sessionID = ev.SessionID
	}

	if c.lastRep != nil {
		c.addInterval(ev.SessionTime - c.lastRepTime)
	}
	c.reps++
	c.energy += ev.EnergyExpended
	c.formSum += ev.FormQuality
	if ev.PeakForce > c.maxPeak {
		c.maxPeak = ev.PeakForce
	}
	c.byExercise[ev.Exercise]++
	c.lastRepTime = ev.SessionTime
	c.lastRep = &ev
}

func (c *Collector) addInterval(interval float64) {
	if interval <= 0 {
		return
	}
	c.intervals = append(c.intervals, interval)

	// Keep only the most recent intervals for the moving average
	if len(c.intervals) > maxIntervals {
		c.intervals = c.intervals[1:]
	}
}

// Summary returns the aggregate at the given session time
func (c *Collector) Summary(sessionTime float64) Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Summary{
		SessionID:      c.sessionID,
		TotalReps:      c.reps,
		TotalEnergy:    c.energy,
		MaxPeakForce:   c.maxPeak,
		RepsByExercise: make(map[catalog.ExerciseType]int, len(c.byExercise)),
	}
	for k, v := range c.byExercise {
		s.RepsByExercise[k] = v
	}

	if c.reps > 0 {
		s.AverageFormQuality = c.formSum / float64(c.reps)
	}
	if sessionTime > 0 {
		s.RepsPerMinute = float64(c.reps) / sessionTime * 60
	}
	if len(c.intervals) > 0 {
		total := 0.0
		for _, iv := range c.intervals {
			total += iv
		}
		s.AverageRepInterval = total / float64(len(c.intervals))
	}
	if c.lastRep != nil {
		rep := *c.lastRep
		s.LastRep = &rep
	}
	return s
}

// Reset clears all aggregates
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Collector) reset() {
	c.sessionID = uuid.Nil
	c.reps = 0
	c.energy = 0
	c.formSum = 0
	c.maxPeak = 0
	c.byExercise = make(map[catalog.ExerciseType]int)
	c.intervals = make([]float64, 0, maxIntervals)
	c.lastRepTime = 0
	c.lastRep = nil
}
