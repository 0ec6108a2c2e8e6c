package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/staysocial/staysocial-backend/internal/analytics"
	"github.com/staysocial/staysocial-backend/internal/approvals"
	"github.com/staysocial/staysocial-backend/internal/db/interfaces"
	"github.com/staysocial/staysocial-backend/internal/generator"
	"github.com/staysocial/staysocial-backend/internal/jobs"
	"github.com/staysocial/staysocial-backend/internal/media"
	"github.com/staysocial/staysocial-backend/internal/platforms"
	"github.com/staysocial/staysocial-backend/internal/posts"
	"github.com/staysocial/staysocial-backend/internal/store"
	"github.com/staysocial/staysocial-backend/internal/ws"
	"go.uber.org/zap"
)

// SessionHeader identifies the browser session that owns generator and
// upload tasks. There is no authentication; it only scopes single-flight.
const SessionHeader = "X-Session-ID"

const maxBodyBytes = 1 << 20

type Handler struct {
	postsSvc     *posts.Service
	approvalsSvc *approvals.Service
	generatorSvc *generator.Service
	library      *media.Library
	analyticsSvc *analytics.Service
	platformsSvc *platforms.Service
	wsHub        *ws.Hub
	sseHandler   *ws.SSEHandler
	database     interfaces.Database
	cache        *store.Cache
	location     *time.Location
	logger       *zap.SugaredLogger
	now          func() time.Time
}

// Deps bundles the services the handler serves
type Deps struct {
	Posts     *posts.Service
	Approvals *approvals.Service
	Generator *generator.Service
	Library   *media.Library
	Analytics *analytics.Service
	Platforms *platforms.Service
	Hub       *ws.Hub
	SSE       *ws.SSEHandler
	Database  interfaces.Database
	Cache     *store.Cache
	Location  *time.Location
}

func NewHandler(deps Deps, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		postsSvc:     deps.Posts,
		approvalsSvc: deps.Approvals,
		generatorSvc: deps.Generator,
		library:      deps.Library,
		analyticsSvc: deps.Analytics,
		platformsSvc: deps.Platforms,
		wsHub:        deps.Hub,
		sseHandler:   deps.SSE,
		database:     deps.Database,
		cache:        deps.Cache,
		location:     loc,
		logger:       logger,
		now:          time.Now,
	}
}

// Health and ops endpoints
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Readyz reports 503 until both the database and the cache answer
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok", "cache": "ok"}
	ready := true

	if h.database == nil || !h.database.IsHealthy(r.Context()) {
		checks["database"] = "unavailable"
		ready = false
	}
	if h.cache == nil {
		checks["cache"] = "unavailable"
		ready = false
	} else if err := h.cache.Ping(r.Context()); err != nil {
		checks["cache"] = err.Error()
		ready = false
	} else if h.cache.IsInMemoryMode() {
		checks["cache"] = "ok (in-memory)"
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, HealthDTO{Status: status, Checks: checks})
}

// WebSocket endpoint
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.wsHub.HandleWebSocket(w, r)
}

// SSE endpoint
func (h *Handler) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseHandler.HandleSSE(w, r)
}

// Utility methods
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warnw("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeErrorDetails(w, status, code, message, nil)
}

func (h *Handler) writeErrorDetails(w http.ResponseWriter, status int, code, message string, details interface{}) {
	if status >= http.StatusInternalServerError {
		h.logger.Errorw("API error", "code", code, "message", message, "status", status)
	} else {
		h.logger.Debugw("API error", "code", code, "message", message, "status", status)
	}

	h.writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// writeServiceError maps domain sentinel errors onto HTTP statuses
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Errorw("Unhandled service error", "error", err)
		message = "internal error"
	}
	h.writeError(w, status, code, message)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, posts.ErrNotFound),
		errors.Is(err, approvals.ErrNotFound),
		errors.Is(err, media.ErrNotFound),
		errors.Is(err, jobs.ErrTaskNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, posts.ErrInvalidPost):
		return http.StatusBadRequest, "INVALID_POST"
	case errors.Is(err, approvals.ErrReasonRequired):
		return http.StatusBadRequest, "REASON_REQUIRED"
	case errors.Is(err, approvals.ErrInvalidItem):
		return http.StatusBadRequest, "INVALID_APPROVAL"
	case errors.Is(err, generator.ErrInvalidRequest):
		return http.StatusBadRequest, "INVALID_GENERATION_REQUEST"
	case errors.Is(err, media.ErrInvalidAsset):
		return http.StatusBadRequest, "INVALID_ASSET"
	case errors.Is(err, approvals.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, jobs.ErrInFlight):
		return http.StatusConflict, "TASK_IN_FLIGHT"
	case errors.Is(err, jobs.ErrRunnerClosed):
		return http.StatusServiceUnavailable, "SHUTTING_DOWN"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// decodeJSON reads a bounded JSON body, rejecting unknown fields
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return false
	}
	return true
}

func session(r *http.Request) string {
	if s := strings.TrimSpace(r.Header.Get(SessionHeader)); s != "" {
		return s
	}
	return strings.TrimSpace(r.URL.Query().Get("session"))
}

// queryInt parses an optional integer parameter
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return v, nil
}
