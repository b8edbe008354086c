package core

// NodeDefinition describes a telemetry variable exposed over OPC UA
type NodeDefinition struct {
	Name         string      // Node name (e.g., "LeftKnee")
	DisplayName  string      // Human-readable name
	Description  string      // Description of the node
	DataType     DataType    // Data type (Double, Int32, String, etc.)
	Unit         string      // Engineering unit (rad, m, xBW, etc.)
	InitialValue interface{} // Initial/default value
}

// DataType represents OPC UA data types
type DataType int

const (
	DataTypeDouble DataType = iota
	DataTypeFloat
	DataTypeInt32
	DataTypeInt64
	DataTypeString
	DataTypeBool
	DataTypeDateTime
)

func (dt DataType) String() string {
	switch dt {
	case DataTypeDouble:
		return "Double"
	case DataTypeFloat:
		return "Float"
	case DataTypeInt32:
		return "Int32"
	case DataTypeInt64:
		return "Int64"
	case DataTypeString:
		return "String"
	case DataTypeBool:
		return "Boolean"
	case DataTypeDateTime:
		return "DateTime"
	default:
		return "Unknown"
	}
}

// OPC UA namespace indices, one per telemetry concern
const (
	NamespacePose       uint16 = 2
	NamespacePhysiology uint16 = 3
	NamespaceSession    uint16 = 4
)
