package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// defaultStartupGrace is how long readiness reports startup in progress
const defaultStartupGrace = 5 * time.Second

// Status represents the health status response
type Status struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check reports a component problem as a non-nil error
type Check func() error

// Handler handles health check endpoints
type Handler struct {
	opcuaRequired bool
	opcuaReady    atomic.Bool
	startTime     time.Time
	startupGrace  time.Duration

	mu     sync.RWMutex
	checks map[string]Check
}

// NewHandler creates a new health handler. When opcuaRequired is false the
// OPC UA server does not gate readiness.
func NewHandler(opcuaRequired bool) *Handler {
	return &Handler{
		opcuaRequired: opcuaRequired,
		startTime:     time.Now(),
		startupGrace:  defaultStartupGrace,
		checks:        make(map[string]Check),
	}
}

// SetOPCUAReady sets the OPC UA server readiness status
func (h *Handler) SetOPCUAReady(ready bool) {
	h.opcuaReady.Store(ready)
}

// AddCheck registers a named readiness check
func (h *Handler) AddCheck(name string, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// HandleLive handles the liveness probe
// Returns 200 if the application is running
func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, Status{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HandleReady handles the readiness probe
// Returns 200 if the application is ready to serve traffic
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	allHealthy := true

	if h.opcuaRequired {
		if h.opcuaReady.Load() {
			checks["opcua_server"] = "healthy"
		} else {
			checks["opcua_server"] = "not_ready"
			allHealthy = false
		}
	}

	if time.Since(h.startTime) >= h.startupGrace {
		checks["startup"] = "complete"
	} else {
		checks["startup"] = "in_progress"
		allHealthy = false
	}

	h.mu.RLock()
	for name, check := range h.checks {
		if err := check(); err != nil {
			checks[name] = err.Error()
			allHealthy = false
		} else {
			checks[name] = "healthy"
		}
	}
	h.mu.RUnlock()

	status := Status{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
	code := http.StatusOK
	if !allHealthy {
		status.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	writeStatus(w, code, status)
}

// HandleHealth handles the combined health endpoint (for Docker HEALTHCHECK)
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.HandleReady(w, r)
}

func writeStatus(w http.ResponseWriter, code int, status Status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}
