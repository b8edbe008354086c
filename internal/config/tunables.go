package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sebastiankruger/exercise-simulator/internal/engine"
	"github.com/sebastiankruger/exercise-simulator/internal/kinematics"
	"github.com/sebastiankruger/exercise-simulator/internal/physiology"
)

// maxTunablesSize bounds tunables files read from disk
const maxTunablesSize = 1 << 20

// Tunables groups every constant of the animation model that was tuned by
// inspection rather than derived. The zero file means the reference values.
type Tunables struct {
	Engine     engine.Params     `yaml:"engine"`
	Physiology physiology.Params `yaml:"physiology"`
	Kinematics kinematics.Params `yaml:"kinematics"`
}

// DefaultTunables returns the reference tuning
func DefaultTunables() Tunables {
	return Tunables{
		Engine:     engine.DefaultParams(),
		Physiology: physiology.DefaultParams(),
		Kinematics: kinematics.DefaultParams(),
	}
}

// Validate checks every section
func (t Tunables) Validate() error {
	var errs []error
	if err := t.Engine.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("engine: %w", err))
	}
	if err := t.Physiology.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("physiology: %w", err))
	}
	if err := t.Kinematics.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("kinematics: %w", err))
	}
	return errors.Join(errs...)
}

// EngineOptions returns the engine options that apply these tunables
func (t Tunables) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithParams(t.Engine),
		engine.WithPhysiology(t.Physiology),
		engine.WithKinematics(t.Kinematics),
	}
}

// LoadTunables overlays a YAML file on the defaults. Keys absent from the
// file keep their reference values. An empty path returns the defaults.
func LoadTunables(path string) (Tunables, error) {
	t := DefaultTunables()
	if path == "" {
		return t, nil
	}

	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return t, fmt.Errorf("reading tunables file: %w", err)
	}
	if info.Size() > maxTunablesSize {
		return t, fmt.Errorf("tunables file too large: %d bytes (max %d)", info.Size(), maxTunablesSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return t, fmt.Errorf("reading tunables file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return t, fmt.Errorf("parsing tunables file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("invalid tunables: %w", err)
	}
	return t, nil
}
