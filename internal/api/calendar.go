package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/staysocial/staysocial-backend/internal/calendar"
)

func (h *Handler) filters(r *http.Request) calendar.Filters {
	q := r.URL.Query()
	return calendar.Filters{
		Platform: strings.ToLower(strings.TrimSpace(q.Get("platform"))),
		Type:     strings.ToLower(strings.TrimSpace(q.Get("type"))),
	}
}

// anchor reads a YYYY-MM-DD parameter, defaulting to today
func (h *Handler) anchor(w http.ResponseWriter, raw string) (time.Time, bool) {
	if raw == "" {
		return h.today(), true
	}
	t, err := calendar.ParseDateKey(raw, h.location)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}

func (h *Handler) today() time.Time {
	now := h.now().In(h.location)
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, h.location)
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) (calendar.Snapshot, bool) {
	snap, err := h.postsSvc.Snapshot(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return nil, false
	}
	return calendar.Snapshot(snap), true
}

// GetWeek renders the seven-day grid around anchor
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	anchor, ok := h.anchor(w, r.URL.Query().Get("anchor"))
	if !ok {
		return
	}
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, calendar.BuildWeek(snap, anchor, h.filters(r), h.now().In(h.location)))
}

func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	anchor, ok := h.anchor(w, q.Get("anchor"))
	if !ok {
		return
	}

	dir := calendar.Direction(strings.ToLower(q.Get("direction")))
	switch dir {
	case calendar.Previous, calendar.Next, calendar.Today:
	default:
		h.writeError(w, http.StatusBadRequest, "INVALID_DIRECTION", "direction must be previous, next or today")
		return
	}

	g := calendar.Granularity(strings.ToLower(q.Get("granularity")))
	switch g {
	case "":
		g = calendar.Week
	case calendar.Week, calendar.Month:
	default:
		h.writeError(w, http.StatusBadRequest, "INVALID_GRANULARITY", "granularity must be week or month")
		return
	}

	next := calendar.NavigateAt(anchor, dir, g, h.now().In(h.location))
	window := calendar.ComputeWeekWindow(next)

	h.writeJSON(w, http.StatusOK, NavigateDTO{
		From:        calendar.DateKey(anchor),
		Direction:   string(dir),
		Granularity: string(g),
		Anchor:      calendar.DateKey(next),
		Start:       calendar.DateKey(window.Start),
		End:         calendar.DateKey(window.Days[6]),
	})
}

// GetList is the list display mode: every matching post ordered by date and time
func (h *Handler) GetList(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	f := h.filters(r)
	entries := calendar.Flatten(snap, f)

	h.writeJSON(w, http.StatusOK, ListDTO{Filters: f, Entries: entries, Count: len(entries)})
}

func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	day, ok := h.anchor(w, chi.URLParam(r, "date"))
	if !ok {
		return
	}
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	f := h.filters(r)

	h.writeJSON(w, http.StatusOK, DayDTO{
		Date:    calendar.DateKey(day),
		IsToday: calendar.IsTodayAt(day, h.now().In(h.location)),
		Filters: f,
		Posts:   calendar.PostsForDay(snap, day, f),
	})
}
