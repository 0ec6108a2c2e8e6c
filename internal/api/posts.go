package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/staysocial/staysocial-backend/internal/posts"
)

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.postsSvc.List(r.Context(), posts.Filter{
		Platform: q.Get("platform"),
		Type:     q.Get("type"),
		Status:   q.Get("status"),
		From:     q.Get("from"),
		To:       q.Get("to"),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, PostsDTO{Items: items, Count: len(items)})
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var draft posts.Draft
	if !h.decodeJSON(w, r, &draft) {
		return
	}

	post, err := h.postsSvc.Create(r.Context(), draft)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.logger.Infow("Post created", "id", post.ID, "platform", post.Platform, "date", post.ScheduledDate)
	h.writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.postsSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var draft posts.Draft
	if !h.decodeJSON(w, r, &draft) {
		return
	}

	post, err := h.postsSvc.Update(r.Context(), chi.URLParam(r, "id"), draft)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

func (h *Handler) SetPostStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	post, err := h.postsSvc.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.postsSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
