package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed exercises.yaml
var defaultCatalogYAML []byte

// maxCatalogSize bounds catalog files read from disk
const maxCatalogSize = 1 << 20

// Catalog is the read-only table of exercise definitions shared by all
// sessions. It is never mutated after loading.
type Catalog struct {
	Version string
	defs    map[ExerciseType]*Definition
	order   []ExerciseType
}

type catalogFile struct {
	Version   string       `yaml:"version"`
	Exercises []Definition `yaml:"exercises"`
}

// Default returns the built-in catalog
func Default() (*Catalog, error) {
	cat, err := Parse(defaultCatalogYAML)
	if err != nil {
		return nil, fmt.Errorf("built-in catalog: %w", err)
	}
	return cat, nil
}

// Load reads and validates a catalog YAML file
func Load(path string) (*Catalog, error) {
	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	if info.Size() > maxCatalogSize {
		return nil, fmt.Errorf("catalog file too large: %d bytes (max %d)", info.Size(), maxCatalogSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document. Every definition is
// checked here; a catalog that parses is safe to animate.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	cat := &Catalog{
		Version: file.Version,
		defs:    make(map[ExerciseType]*Definition, len(file.Exercises)),
	}
	for i := range file.Exercises {
		def := file.Exercises[i]
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("catalog validation: %w", err)
		}
		if _, dup := cat.defs[def.Type]; dup {
			return nil, fmt.Errorf("catalog validation: %w: %s", ErrDuplicateExercise, def.Type)
		}
		cat.defs[def.Type] = &def
		cat.order = append(cat.order, def.Type)
	}

	if _, ok := cat.defs[FallbackExercise]; !ok {
		return nil, fmt.Errorf("catalog validation: %w (%s)", ErrMissingFallback, FallbackExercise)
	}
	return cat, nil
}

// Lookup returns the definition for an exercise type, if present
func (c *Catalog) Lookup(t ExerciseType) (*Definition, bool) {
	def, ok := c.defs[t]
	return def, ok
}

// Get returns the definition for an exercise type, falling back to the
// squat definition for anything the catalog does not contain.
func (c *Catalog) Get(t ExerciseType) *Definition {
	if def, ok := c.defs[t]; ok {
		return def
	}
	return c.defs[FallbackExercise]
}

// Types returns the exercise types in catalog order
func (c *Catalog) Types() []ExerciseType {
	out := make([]ExerciseType, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of definitions
func (c *Catalog) Len() int {
	return len(c.defs)
}
