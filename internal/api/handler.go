package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/sebastiankruger/exercise-simulator/internal/catalog"
	"github.com/sebastiankruger/exercise-simulator/internal/config"
	"github.com/sebastiankruger/exercise-simulator/internal/core"
	"github.com/sebastiankruger/exercise-simulator/internal/engine"
	"github.com/sebastiankruger/exercise-simulator/internal/health"
	"github.com/sebastiankruger/exercise-simulator/internal/runner"
	"github.com/sebastiankruger/exercise-simulator/internal/telemetry"
)

// maxBodyBytes bounds control request bodies
const maxBodyBytes = 1 << 16

// Session is the running session the API observes and controls
type Session interface {
	Frame() engine.Frame
	Summary() telemetry.Summary
	SessionTime() float64
	Stopped() bool
	SetExercise(name string) (catalog.ExerciseType, error)
	SetPaused(paused bool)
	SetPlaybackSpeed(speed float64) error
	Restart()
	Stop()
	RuntimeConfig() *config.RuntimeConfig
	Catalog() *catalog.Catalog
}

// Handler serves the REST API and the health probes
type Handler struct {
	simulatorName string
	session       Session
	health        *health.Handler
	logger        zerolog.Logger
	router        chi.Router
}

// NewHandler creates the API handler with all routes configured. A nil
// health handler leaves the /health routes unmounted.
func NewHandler(name string, session Session, hh *health.Handler, logger zerolog.Logger) *Handler {
	h := &Handler{
		simulatorName: name,
		session:       session,
		health:        hh,
		logger:        logger,
		router:        chi.NewRouter(),
	}
	h.routes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.Use(middleware.Recoverer)
	h.router.Use(RequestLogging(h.logger))
	h.router.Use(CORS)

	if h.health != nil {
		h.router.Get("/health", h.health.HandleHealth)
		h.router.Get("/health/live", h.health.HandleLive)
		h.router.Get("/health/ready", h.health.HandleReady)
	}

	h.router.Route("/api", func(r chi.Router) {
		r.Get("/status", h.HandleStatus)
		r.Get("/frame", h.HandleFrame)
		r.Get("/pose", h.HandlePose)
		r.Get("/physiology", h.HandlePhysiology)
		r.Get("/summary", h.HandleSummary)
		r.Get("/exercises", h.HandleExercises)
		r.Get("/exercises/{type}", h.HandleExerciseDetail)

		r.Get("/config", h.HandleConfigGet)
		r.Post("/config", h.HandleConfigUpdate)

		r.Route("/session", func(r chi.Router) {
			r.Post("/pause", h.HandlePause)
			r.Post("/resume", h.HandleResume)
			r.Post("/restart", h.HandleRestart)
			r.Post("/stop", h.HandleStop)
		})
	})
}

// HandleStatus handles GET /api/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	frame := h.session.Frame()
	muscles := runner.Muscles(h.session.Catalog())

	resp := StatusResponse{
		SimulatorName: h.simulatorName,
		SessionID:     frame.SessionID.String(),
		Exercise:      frame.Exercise,
		SessionTime:   h.session.SessionTime(),
		Paused:        frame.Paused,
		Stopped:       h.session.Stopped(),
		PlaybackSpeed: h.session.RuntimeConfig().GetPlaybackSpeed(),
		Phase:         frame.Phase,
		Repetitions:   frame.Physiology.RepetitionCount,
		Namespaces: []NamespaceInfo{
			{Name: "Pose", Namespace: core.NamespacePose, Nodes: nodeInfos(core.NamespacePose, "Pose", runner.PoseNodes())},
			{Name: "Physiology", Namespace: core.NamespacePhysiology, Nodes: nodeInfos(core.NamespacePhysiology, "Physiology", runner.PhysiologyNodes(muscles))},
			{Name: "Session", Namespace: core.NamespaceSession, Nodes: nodeInfos(core.NamespaceSession, "Session", runner.SessionNodes())},
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleFrame handles GET /api/frame
func (h *Handler) HandleFrame(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Frame())
}

// HandlePose handles GET /api/pose
func (h *Handler) HandlePose(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Frame().Pose)
}

// HandlePhysiology handles GET /api/physiology
func (h *Handler) HandlePhysiology(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Frame().Physiology)
}

// HandleSummary handles GET /api/summary
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Summary())
}

// HandleExercises handles GET /api/exercises
func (h *Handler) HandleExercises(w http.ResponseWriter, r *http.Request) {
	cat := h.session.Catalog()
	resp := ExerciseListResponse{Exercises: []ExerciseSummary{}}
	for _, typ := range cat.Types() {
		def := cat.Get(typ)
		resp.Exercises = append(resp.Exercises, ExerciseSummary{
			Type:     def.Type,
			Name:     def.Name,
			Duration: def.Duration,
			Phases:   def.Phases,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleExerciseDetail handles GET /api/exercises/{type}
func (h *Handler) HandleExerciseDetail(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "type")
	typ, ok := catalog.ParseExerciseType(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown exercise "+name)
		return
	}
	def, ok := h.session.Catalog().Lookup(typ)
	if !ok {
		writeError(w, http.StatusNotFound, "exercise not in catalog: "+string(typ))
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// HandleConfigGet handles GET /api/config
func (h *Handler) HandleConfigGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.configResponse())
}

// HandleConfigUpdate handles POST /api/config. Either every field in the
// request is applied or none is.
func (h *Handler) HandleConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var req ConfigUpdateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Exercise != nil {
		if _, ok := catalog.ParseExerciseType(*req.Exercise); !ok {
			writeError(w, http.StatusBadRequest, "unknown exercise "+*req.Exercise)
			return
		}
	}
	if req.PlaybackSpeed != nil {
		if err := h.session.SetPlaybackSpeed(*req.PlaybackSpeed); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Exercise != nil {
		if _, err := h.session.SetExercise(*req.Exercise); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Paused != nil {
		h.session.SetPaused(*req.Paused)
	}

	resp := h.configResponse()
	h.logger.Info().
		Float64("playback_speed", resp.PlaybackSpeed).
		Str("exercise", string(resp.Exercise)).
		Bool("paused", resp.Paused).
		Msg("Runtime config updated")
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) configResponse() ConfigResponse {
	snapshot := h.session.RuntimeConfig().Snapshot()
	return ConfigResponse{
		PlaybackSpeed: snapshot.PlaybackSpeed,
		Exercise:      snapshot.Exercise,
		Paused:        snapshot.Paused,
	}
}

// HandlePause handles POST /api/session/pause
func (h *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	h.session.SetPaused(true)
	writeJSON(w, http.StatusOK, h.configResponse())
}

// HandleResume handles POST /api/session/resume
func (h *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	h.session.SetPaused(false)
	writeJSON(w, http.StatusOK, h.configResponse())
}

// HandleRestart handles POST /api/session/restart
func (h *Handler) HandleRestart(w http.ResponseWriter, r *http.Request) {
	h.session.Restart()
	writeJSON(w, http.StatusOK, h.session.Frame())
}

// HandleStop handles POST /api/session/stop
func (h *Handler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if h.session.Stopped() {
		writeError(w, http.StatusConflict, "session already stopped")
		return
	}
	h.session.Stop()
	writeJSON(w, http.StatusOK, h.session.Summary())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
