package api

import (
	"fmt"

	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
	"github.com/sebastiankruger/exercise-simulator/internal/core"
	"github.com/sebastiankruger/exercise-simulator/internal/phase"
)

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	SimulatorName string               `json:"simulatorName"`
	SessionID     string               `json:"sessionId"`
	Exercise      catalog.ExerciseType `json:"exercise"`
	SessionTime   float64              `json:"sessionTime"`
	Paused        bool                 `json:"paused"`
	Stopped       bool                 `json:"stopped"`
	PlaybackSpeed float64              `json:"playbackSpeed"`
	Phase         phase.Resolution     `json:"phase"`
	Repetitions   int                  `json:"repetitions"`
	Namespaces    []NamespaceInfo      `json:"namespaces"`
}

// NamespaceInfo describes one OPC UA namespace and its nodes
type NamespaceInfo struct {
	Name      string     `json:"name"`
	Namespace uint16     `json:"namespace"`
	Nodes     []NodeInfo `json:"nodes,omitempty"`
}

// NodeInfo describes an OPC UA node
type NodeInfo struct {
	Name        string `json:"name"`
	NodeID      string `json:"nodeId"`
	DataType    string `json:"dataType"`
	Unit        string `json:"unit,omitempty"`
	Description string `json:"description,omitempty"`
}

func nodeInfos(ns uint16, folder string, defs []core.NodeDefinition) []NodeInfo {
	nodes := make([]NodeInfo, 0, len(defs))
	for _, nd := range defs {
		nodes = append(nodes, NodeInfo{
			Name:        nd.Name,
			NodeID:      fmt.Sprintf("ns=%d;s=%s.%s", ns, folder, nd.Name),
			DataType:    nd.DataType.String(),
			Unit:        nd.Unit,
			Description: nd.Description,
		})
	}
	return nodes
}

// ExerciseSummary is one entry of GET /api/exercises
type ExerciseSummary struct {
	Type     catalog.ExerciseType `json:"type"`
	Name     string               `json:"name"`
	Duration float64              `json:"duration"`
	Phases   []string             `json:"phases"`
}

// ExerciseListResponse is returned by GET /api/exercises
type ExerciseListResponse struct {
	Exercises []ExerciseSummary `json:"exercises"`
}

// ConfigResponse is returned by GET and POST /api/config
type ConfigResponse struct {
	PlaybackSpeed float64              `json:"playbackSpeed"`
	Exercise      catalog.ExerciseType `json:"exercise"`
	Paused        bool                 `json:"paused"`
}

// ConfigUpdateRequest is the body of POST /api/config. Absent fields are
// left unchanged.
type ConfigUpdateRequest struct {
	PlaybackSpeed *float64 `json:"playbackSpeed,omitempty"`
	Exercise      *string  `json:"exercise,omitempty"`
	Paused        *bool    `json:"paused,omitempty"`
}

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Error string `json:"error"`
}
