package runner

import (
	"slices"

	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
	"github.com/sebastiankruger/exercise-simulator/internal/core"
	"github.com/sebastiankruger/exercise-simulator/internal/engine"
	"github.com/sebastiankruger/exercise-simulator/internal/kinematics"
	"github.com/sebastiankruger/exercise-simulator/internal/physiology"
	"github.com/sebastiankruger/exercise-simulator/internal/telemetry"
)

var axes = [...]string{"X", "Y", "Z"}

func vecComponents(v kinematics.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// PoseNodes returns the pose namespace: root transform and one rotation
// triple per joint, in radians and metres.
func PoseNodes() []core.NodeDefinition {
	nodes := make([]core.NodeDefinition, 0, 6+3*len(kinematics.AllJoints()))
	for _, a := range axes {
		nodes = append(nodes,
			core.NodeDefinition{Name: "Root.Position" + a, DisplayName: "Root Position " + a, Description: "Figure root translation", DataType: core.DataTypeDouble, Unit: "m", InitialValue: 0.0},
			core.NodeDefinition{Name: "Root.Rotation" + a, DisplayName: "Root Rotation " + a, Description: "Figure root rotation", DataType: core.DataTypeDouble, Unit: "rad", InitialValue: 0.0},
		)
	}
	for _, j := range kinematics.AllJoints() {
		for _, a := range axes {
			nodes = append(nodes, core.NodeDefinition{
				Name:         string(j) + ".Rotation" + a,
				DisplayName:  string(j) + " Rotation " + a,
				Description:  "Joint rotation",
				DataType:     core.DataTypeDouble,
				Unit:         "rad",
				InitialValue: 0.0,
			})
		}
	}
	return nodes
}

// PoseValues flattens a pose into pose namespace values
func PoseValues(p kinematics.Pose) map[string]interface{} {
	values := make(map[string]interface{}, 6+3*len(p.Joints))
	pos, rot := vecComponents(p.Root.Position), vecComponents(p.Root.Rotation)
	for i, a := range axes {
		values["Root.Position"+a] = pos[i]
		values["Root.Rotation"+a] = rot[i]
	}
	for j, jt := range p.Joints {
		r := vecComponents(jt.Rotation)
		for i, a := range axes {
			values[string(j)+".Rotation"+a] = r[i]
		}
	}
	return values
}

// Muscles returns every muscle any catalog exercise activates, sorted
func Muscles(cat *catalog.Catalog) []string {
	var out []string
	for _, typ := range cat.Types() {
		def := cat.Get(typ)
		out = append(out, def.PrimaryMuscles...)
		out = append(out, def.SecondaryMuscles...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// PhysiologyNodes returns the physiology namespace
func PhysiologyNodes(muscles []string) []core.NodeDefinition {
	nodes := []core.NodeDefinition{
		{Name: "BreathingPhase", DisplayName: "Breathing Phase", Description: "Lung fill 0-1", DataType: core.DataTypeDouble, InitialValue: 0.0},
		{Name: "IsInhalation", DisplayName: "Inhaling", Description: "Breathing direction", DataType: core.DataTypeBool, InitialValue: true},
		{Name: "FatigueFactor", DisplayName: "Fatigue", Description: "Accumulated fatigue", DataType: core.DataTypeDouble, InitialValue: 0.0},
		{Name: "StabilityFactor", DisplayName: "Stability", Description: "Signed balance wobble", DataType: core.DataTypeDouble, InitialValue: 0.0},
		{Name: "GroundContactForce", DisplayName: "Ground Contact Force", Description: "Ground reaction force", DataType: core.DataTypeDouble, Unit: "xBW", InitialValue: 1.0},
		{Name: "RepetitionCount", DisplayName: "Repetitions", Description: "Completed repetitions", DataType: core.DataTypeInt32, InitialValue: int32(0)},
		{Name: "HighlightIntensity", DisplayName: "Highlight", Description: "Rep completion pulse", DataType: core.DataTypeDouble, InitialValue: 0.0},
	}
	for _, m := range muscles {
		nodes = append(nodes, core.NodeDefinition{
			Name:         "Muscle." + m,
			DisplayName:  m + " activation",
			Description:  "Muscle activation 0-1",
			DataType:     core.DataTypeDouble,
			InitialValue: 0.0,
		})
	}
	return nodes
}

// PhysiologyValues flattens a physiology state. Muscles without an entry in
// the state report zero.
func PhysiologyValues(s physiology.State, muscles []string) map[string]interface{} {
	values := map[string]interface{}{
		"BreathingPhase":     s.BreathingPhase,
		"IsInhalation":       s.IsInhalation,
		"FatigueFactor":      s.FatigueFactor,
		"StabilityFactor":    s.StabilityFactor,
		"GroundContactForce": s.GroundContactForce,
		"RepetitionCount":    int32(s.RepetitionCount),
		"HighlightIntensity": s.HighlightIntensity,
	}
	for _, m := range muscles {
		values["Muscle."+m] = s.MuscleActivation[m]
	}
	return values
}

// SessionNodes returns the session namespace
func SessionNodes() []core.NodeDefinition {
	return []core.NodeDefinition{
		{Name: "SessionID", DisplayName: "Session ID", DataType: core.DataTypeString, InitialValue: ""},
		{Name: "Exercise", DisplayName: "Exercise", DataType: core.DataTypeString, InitialValue: string(catalog.FallbackExercise)},
		{Name: "SessionTime", DisplayName: "Session Time", Description: "Seconds excluding paused time", DataType: core.DataTypeDouble, Unit: "s", InitialValue: 0.0},
		{Name: "Paused", DisplayName: "Paused", DataType: core.DataTypeBool, InitialValue: false},
		{Name: "PhaseName", DisplayName: "Phase", DataType: core.DataTypeString, InitialValue: ""},
		{Name: "CyclePhase", DisplayName: "Cycle Phase", Description: "Position in the cycle 0-1", DataType: core.DataTypeDouble, InitialValue: 0.0},
		{Name: "PhaseProgress", DisplayName: "Phase Progress", DataType: core.DataTypeDouble, InitialValue: 0.0},
		{Name: "TotalEnergy", DisplayName: "Total Energy", DataType: core.DataTypeDouble, Unit: "kcal", InitialValue: 0.0},
		{Name: "AverageFormQuality", DisplayName: "Average Form Quality", DataType: core.DataTypeDouble, InitialValue: 0.0},
		{Name: "MaxPeakForce", DisplayName: "Max Peak Force", DataType: core.DataTypeDouble, Unit: "xBW", InitialValue: 0.0},
		{Name: "RepsPerMinute", DisplayName: "Reps per Minute", DataType: core.DataTypeDouble, InitialValue: 0.0},
		{Name: "LastRepFormQuality", DisplayName: "Last Rep Form Quality", DataType: core.DataTypeDouble, InitialValue: 0.0},
		{Name: "LastRepPeakForce", DisplayName: "Last Rep Peak Force", DataType: core.DataTypeDouble, Unit: "xBW", InitialValue: 0.0},
	}
}

// SessionValues flattens the frame header and session summary
func SessionValues(f engine.Frame, sum telemetry.Summary) map[string]interface{} {
	values := map[string]interface{}{
		"SessionID":          f.SessionID.String(),
		"Exercise":           string(f.Exercise),
		"SessionTime":        f.Time,
		"Paused":             f.Paused,
		"PhaseName":          f.Phase.PhaseName,
		"CyclePhase":         f.Phase.CyclePhase,
		"PhaseProgress":      f.Phase.PhaseProgress,
		"TotalEnergy":        sum.TotalEnergy,
		"AverageFormQuality": sum.AverageFormQuality,
		"MaxPeakForce":       sum.MaxPeakForce,
		"RepsPerMinute":      sum.RepsPerMinute,
	}
	if sum.LastRep != nil {
		values["LastRepFormQuality"] = sum.LastRep.FormQuality
		values["LastRepPeakForce"] = sum.LastRep.PeakForce
	}
	return values
}
