// Package calendar derives the content calendar's display model: the visible
// week window, per-day filtered post buckets and the flattened list view.
// Every function is pure; callers own the anchor date and filter state.
package calendar

import (
	"sort"
	"strings"
	"time"

	"github.com/staysocial/staysocial-backend/internal/posts"
)

// Snapshot maps a day key (YYYY-MM-DD) to that day's posts in insertion order.
type Snapshot map[string][]posts.Post

// Direction moves the anchor date.
type Direction string

const (
	Previous Direction = "previous"
	Next     Direction = "next"
	Today    Direction = "today"
)

// Granularity is the step size of Previous and Next.
type Granularity string

const (
	Week  Granularity = "week"
	Month Granularity = "month"
)

// AllValues is the filter value meaning "no constraint".
const AllValues = "all"

// Filters restricts posts by platform and type. Empty or "all" fields do not
// constrain; the two fields combine as a conjunction and compare ignoring case.
type Filters struct {
	Platform string `json:"platform,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Matches reports whether p passes both filters.
func (f Filters) Matches(p posts.Post) bool {
	if !unconstrained(f.Platform) && !strings.EqualFold(string(p.Platform), f.Platform) {
		return false
	}
	if !unconstrained(f.Type) && !strings.EqualFold(p.Type, f.Type) {
		return false
	}
	return true
}

func unconstrained(v string) bool {
	return v == "" || strings.EqualFold(v, AllValues)
}

// WeekWindow is the 7-day range shown by the grid, Sunday first.
type WeekWindow struct {
	Start time.Time    `json:"start"`
	Days  [7]time.Time `json:"days"`
}

// ComputeWeekWindow returns the Sunday-to-Saturday window containing anchor.
// Days are midnights in the anchor's location.
func ComputeWeekWindow(anchor time.Time) WeekWindow {
	day := startOfDay(anchor)
	start := day.AddDate(0, 0, -int(day.Weekday()))

	w := WeekWindow{Start: start}
	for i := range w.Days {
		w.Days[i] = start.AddDate(0, 0, i)
	}
	return w
}

// Navigate moves anchor one step in dir. Today ignores the anchor and returns
// the current date.
func Navigate(anchor time.Time, dir Direction, g Granularity) time.Time {
	return navigate(anchor, dir, g, time.Now())
}

// NavigateAt is Navigate with an explicit clock for Today.
func NavigateAt(anchor time.Time, dir Direction, g Granularity, now time.Time) time.Time {
	return navigate(anchor, dir, g, now)
}

func navigate(anchor time.Time, dir Direction, g Granularity, now time.Time) time.Time {
	step := 7
	if g == Month {
		step = 28
	}

	switch dir {
	case Previous:
		return anchor.AddDate(0, 0, -step)
	case Next:
		return anchor.AddDate(0, 0, step)
	case Today:
		return startOfDay(now.In(anchor.Location()))
	}
	return anchor
}

// PostsForDay returns the posts bucketed under day that pass f, in source
// order. A missing bucket yields an empty slice. all is never modified.
func PostsForDay(all Snapshot, day time.Time, f Filters) []posts.Post {
	bucket := all[DateKey(day)]
	out := make([]posts.Post, 0, len(bucket))
	for _, p := range bucket {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// IsToday reports whether day falls on the current calendar date in day's
// location.
func IsToday(day time.Time) bool {
	return IsTodayAt(day, time.Now())
}

// IsTodayAt reports whether day and now share year, month and day-of-month,
// comparing in day's location.
func IsTodayAt(day, now time.Time) bool {
	now = now.In(day.Location())
	y1, m1, d1 := day.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DateKey formats t as the canonical day key in t's own location.
func DateKey(t time.Time) string {
	return t.Format(posts.DateLayout)
}

// ParseDateKey parses a YYYY-MM-DD key as midnight in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(posts.DateLayout, key, loc)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayCell is one column of the week grid.
type DayCell struct {
	Date    time.Time    `json:"date"`
	Key     string       `json:"key"`
	IsToday bool         `json:"isToday"`
	Posts   []posts.Post `json:"posts"`
}

// WeekView is the full grid render model for one week.
type WeekView struct {
	Start   time.Time  `json:"start"`
	End     time.Time  `json:"end"`
	Filters Filters    `json:"filters"`
	Days    [7]DayCell `json:"days"`
}

// BuildWeek assembles the grid for the week containing anchor.
func BuildWeek(all Snapshot, anchor time.Time, f Filters, now time.Time) WeekView {
	w := ComputeWeekWindow(anchor)
	view := WeekView{
		Start:   w.Start,
		End:     w.Days[6],
		Filters: f,
	}
	for i, day := range w.Days {
		view.Days[i] = DayCell{
			Date:    day,
			Key:     DateKey(day),
			IsToday: IsTodayAt(day, now),
			Posts:   PostsForDay(all, day, f),
		}
	}
	return view
}

// ListEntry is one row of the chronological list view.
type ListEntry struct {
	Date string     `json:"date"`
	Post posts.Post `json:"post"`
}

// Flatten returns every post passing f, ordered by day key then by parsed
// scheduled time. Unparseable times sort after parseable ones on the same
// day; ties keep bucket order.
func Flatten(all Snapshot, f Filters) []ListEntry {
	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]ListEntry, 0)
	for _, key := range keys {
		for _, p := range all[key] {
			if f.Matches(p) {
				entries = append(entries, ListEntry{Date: key, Post: p})
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return clockRank(entries[i].Post.ScheduledTime) < clockRank(entries[j].Post.ScheduledTime)
	})
	return entries
}

// clockRank orders unparseable times after the last minute of the day.
func clockRank(s string) int {
	if m, ok := posts.ClockMinutes(s); ok {
		return m
	}
	return 24 * 60
}
