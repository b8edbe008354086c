package opcua

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/awcullen/opcua/ua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebastiankruger/exercise-simulator/internal/core"
)

func testNodes() []core.NodeDefinition {
	return []core.NodeDefinition{
		{Name: "FatigueFactor", DisplayName: "Fatigue", DataType: core.DataTypeDouble, InitialValue: 0.0},
		{Name: "RepetitionCount", DisplayName: "Reps", DataType: core.DataTypeInt32, InitialValue: int32(0)},
	}
}

// TestValueStorageWithoutServer verifies values are kept when the address
// space is not served.
func TestValueStorageWithoutServer(t *testing.T) {
	s, err := NewServer(4840, "test")
	require.NoError(t, err)
	require.NoError(t, s.RegisterNamespace(core.NamespacePhysiology, "Physiology", "", testNodes()))
	assert.False(t, s.Running())

	v, ok := s.GetNamespaceValue(core.NamespacePhysiology, "RepetitionCount")
	require.True(t, ok)
	assert.Equal(t, int32(0), v)

	s.UpdateNamespaceValues(core.NamespacePhysiology, map[string]interface{}{
		"RepetitionCount": int32(4),
		"Unknown":         1.0,
	})
	v, _ = s.GetNamespaceValue(core.NamespacePhysiology, "RepetitionCount")
	assert.Equal(t, int32(4), v)
	_, ok = s.GetNamespaceValue(core.NamespacePhysiology, "Unknown")
	assert.False(t, ok)

	_, ok = s.GetNamespaceValue(core.NamespaceSession, "RepetitionCount")
	assert.False(t, ok)
	assert.Len(t, s.GetNamespaceValues(core.NamespacePhysiology), 2)
	assert.Nil(t, s.GetNamespaceValues(core.NamespaceSession))

	// updates to unregistered namespaces are dropped
	s.UpdateNamespaceValues(core.NamespaceSession, map[string]interface{}{"x": 1})
}

func TestRegisterNamespaceRejects(t *testing.T) {
	s, err := NewServer(4840, "test")
	require.NoError(t, err)

	assert.Error(t, s.RegisterNamespace(1, "Pose", "", nil))
	assert.Error(t, s.RegisterNamespace(core.NamespacePose, "", "", nil))

	dup := append(testNodes(), testNodes()[0])
	assert.ErrorContains(t, s.RegisterNamespace(core.NamespacePose, "Pose", "", dup), "duplicate")

	require.NoError(t, s.RegisterNamespace(core.NamespacePose, "Pose", "", testNodes()))
	assert.ErrorContains(t, s.RegisterNamespace(core.NamespacePose, "Pose", "", testNodes()), "already")
}

func TestNewServerRejectsPort(t *testing.T) {
	_, err := NewServer(0, "test")
	assert.Error(t, err)
	_, err = NewServer(70000, "test")
	assert.Error(t, err)
}

func TestDataTypeID(t *testing.T) {
	assert.Equal(t, ua.DataTypeIDDouble, DataTypeID(core.DataTypeDouble))
	assert.Equal(t, ua.DataTypeIDInt32, DataTypeID(core.DataTypeInt32))
	assert.Equal(t, ua.DataTypeIDString, DataTypeID(core.DataTypeString))
	assert.Equal(t, ua.DataTypeIDBoolean, DataTypeID(core.DataTypeBool))
	assert.Equal(t, ua.DataTypeIDDouble, DataTypeID(core.DataType(99)))
}

// TestEnsurePKI verifies certificates are generated once and then reused.
func TestEnsurePKI(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pki")
	cert, key, err := ensurePKI(dir, "test")
	require.NoError(t, err)
	assert.FileExists(t, cert)
	assert.FileExists(t, key)

	before, err := os.ReadFile(cert)
	require.NoError(t, err)
	_, _, err = ensurePKI(dir, "test")
	require.NoError(t, err)
	after, err := os.ReadFile(cert)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
