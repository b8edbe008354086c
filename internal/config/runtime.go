package config

import (
	"fmt"
	"sync"

	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
)

// RuntimeConfig holds session controls that can be changed at runtime.
// All methods are thread-safe.
type RuntimeConfig struct {
	mu            sync.RWMutex
	playbackSpeed float64              // Multiplier: 0.1 - 10.0 (default from env)
	exercise      catalog.ExerciseType // Selected exercise
	paused        bool
}

// NewRuntimeConfig creates a new RuntimeConfig from the static Config.
func NewRuntimeConfig(cfg *Config) *RuntimeConfig {
	exercise, _ := catalog.ParseExerciseType(cfg.Exercise)
	speed := cfg.PlaybackSpeed
	if validatePlaybackSpeed(speed) != nil {
		speed = 1.0
	}
	return &RuntimeConfig{
		playbackSpeed: speed,
		exercise:      exercise,
	}
}

// GetPlaybackSpeed returns the current session time multiplier.
func (rc *RuntimeConfig) GetPlaybackSpeed() float64 {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.playbackSpeed
}

// GetExercise returns the selected exercise.
func (rc *RuntimeConfig) GetExercise() catalog.ExerciseType {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.exercise
}

// IsPaused reports whether the session is paused.
func (rc *RuntimeConfig) IsPaused() bool {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.paused
}

// SetPlaybackSpeed sets the session time multiplier.
// Valid range: 0.1 - 10.0
func (rc *RuntimeConfig) SetPlaybackSpeed(speed float64) error {
	if err := validatePlaybackSpeed(speed); err != nil {
		return err
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.playbackSpeed = speed
	return nil
}

// SetExercise selects an exercise by name. Unknown names are rejected here;
// the engine itself would fall back to squat.
func (rc *RuntimeConfig) SetExercise(name string) (catalog.ExerciseType, error) {
	exercise, ok := catalog.ParseExerciseType(name)
	if !ok {
		return "", fmt.Errorf("unknown exercise %q, expected one of %v", name, catalog.AllExerciseTypes())
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.exercise = exercise
	return exercise, nil
}

// SetPaused pauses or resumes the session.
func (rc *RuntimeConfig) SetPaused(paused bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.paused = paused
}

// RuntimeConfigSnapshot is a copy of all current values for safe reading.
type RuntimeConfigSnapshot struct {
	PlaybackSpeed float64
	Exercise      catalog.ExerciseType
	Paused        bool
}

// Snapshot returns a point-in-time copy of all runtime config values.
func (rc *RuntimeConfig) Snapshot() RuntimeConfigSnapshot {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return RuntimeConfigSnapshot{
		PlaybackSpeed: rc.playbackSpeed,
		Exercise:      rc.exercise,
		Paused:        rc.paused,
	}
}

func validatePlaybackSpeed(speed float64) error {
	if !(speed >= 0.1 && speed <= 10.0) {
		return fmt.Errorf("playback speed must be between 0.1 and 10.0, got %f", speed)
	}
	return nil
}
