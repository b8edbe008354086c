package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const minimalCatalog = `
version: "test"
exercises:
  - type: squat
    duration: 3.0
    phases: [down, up]
    phase_distribution: [0.5, 0.5]
    breathing: {inhale: down, exhale: up}
`

// TestDefaultCatalog verifies the embedded catalog loads and defines every
// exercise type in the enumeration.
func TestDefaultCatalog(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	for _, typ := range AllExerciseTypes() {
		def, ok := cat.Lookup(typ)
		require.True(t, ok, "missing %s", typ)
		assert.NoError(t, def.Validate())
	}
	assert.Equal(t, 5, cat.Len())

	burpee := cat.Get(Burpee)
	assert.Equal(t, []string{"stand", "squat", "kickback", "pushup", "recovery", "jump"}, burpee.Phases)

	squat := cat.Get(Squat)
	assert.Equal(t, 3.0, squat.Duration)
	assert.Equal(t, []float64{0.1, 0.4, 0.1, 0.3, 0.1}, squat.PhaseDistribution)
}

// TestGetFallsBackToSquat verifies unknown exercise types resolve to the
// squat definition instead of nil.
func TestGetFallsBackToSquat(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	def := cat.Get(ExerciseType("cartwheel"))
	require.NotNil(t, def)
	assert.Equal(t, Squat, def.Type)

	_, ok := cat.Lookup(ExerciseType("cartwheel"))
	assert.False(t, ok)
}

func TestParseExerciseType(t *testing.T) {
	cases := []struct {
		input  string
		want   ExerciseType
		wantOK bool
	}{
		{"squat", Squat, true},
		{"PushUp", Pushup, true},
		{" plank ", Plank, true},
		{"lunge", Lunge, true},
		{"burpee", Burpee, true},
		{"cartwheel", Squat, false},
		{"", Squat, false},
	}
	for _, tc := range cases {
		got, ok := ParseExerciseType(tc.input)
		assert.Equal(t, tc.want, got, tc.input)
		assert.Equal(t, tc.wantOK, ok, tc.input)
	}
}

// TestLoadFile verifies a catalog file on disk is read and validated.
func TestLoadFile(t *testing.T) {
	cat, err := Load(writeTemp(t, minimalCatalog))
	require.NoError(t, err)
	assert.Equal(t, "test", cat.Version)
	assert.Equal(t, []ExerciseType{Squat}, cat.Types())
	assert.Equal(t, "up", cat.Get(Pushup).PhaseName(1))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// TestParseRejectsMalformedDefinitions verifies configuration errors are
// reported at load time with a sentinel that callers can match.
func TestParseRejectsMalformedDefinitions(t *testing.T) {
	cases := []struct {
		name    string
		replace [2]string
		want    error
	}{
		{"distribution sum", [2]string{"[0.5, 0.5]", "[0.5, 0.3]"}, ErrInvalidDistribution},
		{"negative fraction", [2]string{"[0.5, 0.5]", "[1.5, -0.5]"}, ErrInvalidDistribution},
		{"length mismatch", [2]string{"[0.5, 0.5]", "[1.0]"}, ErrPhaseMismatch},
		{"breathing phase", [2]string{"exhale: up", "exhale: sideways"}, ErrUnknownBreathingPhase},
		{"zero duration", [2]string{"duration: 3.0", "duration: 0"}, ErrInvalidDuration},
		{"missing squat", [2]string{"type: squat", "type: plank"}, ErrMissingFallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := strings.Replace(minimalCatalog, tc.replace[0], tc.replace[1], 1)
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseRejectsBadJointsAndTempo(t *testing.T) {
	joints := minimalCatalog + `
    joints:
      knee: {min: 170, max: 80, axis: x}
`
	_, err := Parse([]byte(joints))
	assert.ErrorIs(t, err, ErrInvalidJointRange)

	tempo := minimalCatalog + `
    performance:
      tempo: [0.5, 0.5]
`
	_, err = Parse([]byte(tempo))
	assert.ErrorIs(t, err, ErrInvalidTempo)

	dup := minimalCatalog + `
  - type: squat
    duration: 2.0
    phases: [all]
    phase_distribution: [1.0]
`
	_, err = Parse([]byte(dup))
	assert.ErrorIs(t, err, ErrDuplicateExercise)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("exercises: [this is: not valid"))
	assert.Error(t, err)
}

func TestDefinitionAccessors(t *testing.T) {
	def := &Definition{Phases: []string{"a"}, Performance: PerformanceVariables{Flags: map[string]bool{"jump": true}}}
	assert.Equal(t, "", def.PhaseName(3))
	assert.Equal(t, 1.0, def.TargetROM())
	assert.True(t, def.Flag("jump"))
	assert.False(t, def.Flag("other"))
}
