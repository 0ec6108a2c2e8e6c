package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/staysocial/staysocial-backend/internal/generator"
	"github.com/staysocial/staysocial-backend/internal/jobs"
	"github.com/staysocial/staysocial-backend/internal/media"
)

// Generator endpoints
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"templates": generator.Templates()})
}

// StartGeneration queues a generation for the caller's session and answers
// 202 with the task handle to poll
func (h *Handler) StartGeneration(w http.ResponseWriter, r *http.Request) {
	var req generator.Request
	if !h.decodeJSON(w, r, &req) {
		return
	}

	task, err := h.generatorSvc.Start(session(r), req)
	h.writeTaskStart(w, task, err, "/v1/generator/jobs/")
}

// PreviewGeneration generates synchronously without the simulated latency
func (h *Handler) PreviewGeneration(w http.ResponseWriter, r *http.Request) {
	var req generator.Request
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.generatorSvc.Generate(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetGeneration(w http.ResponseWriter, r *http.Request) {
	task, err := h.generatorSvc.Task(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task.View())
}

func (h *Handler) CancelGeneration(w http.ResponseWriter, r *http.Request) {
	task, err := h.generatorSvc.Cancel(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task.View())
}

func (h *Handler) GenerationHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_LIMIT", err.Error())
		return
	}

	items, err := h.generatorSvc.History(r.Context(), session(r), limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}

// Asset endpoints
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.library.List(r.Context(), q.Get("kind"), q.Get("search"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}

// UploadAsset accepts either a multipart form with a "file" part or a JSON
// metadata body
func (h *Handler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	var file media.File

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, ok := h.readMultipart(w, r)
		if !ok {
			return
		}
		file = f
	} else {
		var req AssetUploadRequest
		if !h.decodeJSON(w, r, &req) {
			return
		}
		file = media.File{Name: req.Name, ContentType: req.ContentType, Size: req.Size, Tags: req.Tags}
	}

	task, err := h.library.Upload(session(r), file)
	h.writeTaskStart(w, task, err, "/v1/assets/jobs/")
}

func (h *Handler) readMultipart(w http.ResponseWriter, r *http.Request) (media.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxUploadSize+maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", err.Error())
		return media.File{}, false
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "file part is required")
		return media.File{}, false
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", err.Error())
		return media.File{}, false
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "application/octet-stream" {
		// let the extension decide
		contentType = ""
	}
	var tags []string
	if raw := r.FormValue("tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}

	return media.File{
		Name:        name,
		ContentType: contentType,
		Tags:        tags,
		Data:        data,
	}, true
}

func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.library.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, asset)
}

func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := h.library.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetUpload(w http.ResponseWriter, r *http.Request) {
	task, err := h.library.Task(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task.View())
}

// writeTaskStart answers 202 for a queued task. While the session already
// has one pending, that task is returned in the 409 details.
func (h *Handler) writeTaskStart(w http.ResponseWriter, task *jobs.Task, err error, statusPrefix string) {
	if errors.Is(err, jobs.ErrInFlight) && task != nil {
		h.writeErrorDetails(w, http.StatusConflict, "TASK_IN_FLIGHT", err.Error(), task.View())
		return
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Location", statusPrefix+task.ID())
	h.writeJSON(w, http.StatusAccepted, TaskAcceptedDTO{
		Task:      task.View(),
		StatusURL: statusPrefix + task.ID(),
	})
}

// Analytics endpoints
func (h *Handler) PlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analyticsSvc.PlatformStats(r.Context(), r.URL.Query().Get("platform"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"platforms": stats})
}

func (h *Handler) TopContent(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_LIMIT", err.Error())
		return
	}
	items, err := h.analyticsSvc.TopContent(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) AudienceGrowth(w http.ResponseWriter, r *http.Request) {
	series, err := h.analyticsSvc.AudienceGrowth(r.Context(), r.URL.Query().Get("platform"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"series": series})
}

func (h *Handler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	upcoming, err := queryInt(r, "upcoming", 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_LIMIT", err.Error())
		return
	}
	summary, err := h.analyticsSvc.Summary(r.Context(), upcoming)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	list := h.platformsSvc.List()
	if r.URL.Query().Get("schedulable") == "true" {
		list = h.platformsSvc.Schedulable()
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"platforms": list})
}
