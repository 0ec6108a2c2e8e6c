package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/staysocial/staysocial-backend/internal/approvals"
)

// ListApprovals serves ?status=pending|approved|rejected&search=
func (h *Handler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.approvalsSvc.List(r.Context(), q.Get("status"), q.Get("search"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	pending, err := h.approvalsSvc.CountPending(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ApprovalsDTO{Items: items, Count: len(items), Pending: pending})
}

func (h *Handler) SubmitApproval(w http.ResponseWriter, r *http.Request) {
	var sub approvals.Submission
	if !h.decodeJSON(w, r, &sub) {
		return
	}

	item, err := h.approvalsSvc.Submit(r.Context(), sub)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) GetApproval(w http.ResponseWriter, r *http.Request) {
	item, err := h.approvalsSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteApproval(w http.ResponseWriter, r *http.Request) {
	if err := h.approvalsSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ApproveItem(w http.ResponseWriter, r *http.Request) {
	var req ApproveRequest
	if r.ContentLength != 0 && !h.decodeJSON(w, r, &req) {
		return
	}

	item, err := h.approvalsSvc.Approve(r.Context(), chi.URLParam(r, "id"), req.Reviewer)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.logger.Infow("Approval item approved", "id", item.ID, "reviewer", item.Reviewer, "post_id", item.PostID)
	h.writeJSON(w, http.StatusOK, item)
}

func (h *Handler) RejectItem(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	item, err := h.approvalsSvc.Reject(r.Context(), chi.URLParam(r, "id"), req.Reviewer, req.Reason)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.logger.Infow("Approval item rejected", "id", item.ID, "reviewer", item.Reviewer)
	h.writeJSON(w, http.StatusOK, item)
}

func (h *Handler) ResubmitItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.approvalsSvc.Resubmit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}
