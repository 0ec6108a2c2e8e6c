package posts

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the canonical day key format used to bucket posts.
const DateLayout = "2006-01-02"

// Platform is the social network a post is published to.
type Platform string

const (
	Instagram Platform = "instagram"
	Facebook  Platform = "facebook"
	Twitter   Platform = "twitter"
	LinkedIn  Platform = "linkedin"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{Instagram, Facebook, Twitter, LinkedIn}

func (p Platform) Valid() bool {
	switch p {
	case Instagram, Facebook, Twitter, LinkedIn:
		return true
	}
	return false
}

// Status is the publishing state of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished:
		return true
	}
	return false
}

// KnownTypes are the built-in content categories. The set is open: posts may
// carry any other type string.
var KnownTypes = []string{"promotion", "event", "announcement", "menu", "holiday"}

var (
	ErrNotFound    = errors.New("post not found")
	ErrInvalidPost = errors.New("invalid post")
)

// Post is a single scheduled or drafted social-media content record.
type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Platform      Platform  `json:"platform"`
	Status        Status    `json:"status"`
	ScheduledDate string    `json:"scheduledDate"`
	ScheduledTime string    `json:"scheduledTime"`
	Type          string    `json:"type,omitempty"`
	Image         string    `json:"image,omitempty"`
	Hashtags      []string  `json:"hashtags,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Draft is the client-supplied part of a post, used for create and update.
type Draft struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Platform      Platform `json:"platform"`
	Status        Status   `json:"status,omitempty"`
	ScheduledDate string   `json:"scheduledDate"`
	ScheduledTime string   `json:"scheduledTime"`
	Type          string   `json:"type,omitempty"`
	Image         string   `json:"image,omitempty"`
	Hashtags      []string `json:"hashtags,omitempty"`
}

// Normalize trims user input, lowercases platform and type, and fills the
// default status.
func (d *Draft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Content = strings.TrimSpace(d.Content)
	d.Platform = Platform(strings.ToLower(strings.TrimSpace(string(d.Platform))))
	d.ScheduledDate = strings.TrimSpace(d.ScheduledDate)
	d.ScheduledTime = strings.TrimSpace(d.ScheduledTime)
	d.Type = strings.ToLower(strings.TrimSpace(d.Type))
	if d.Status == "" {
		d.Status = StatusDraft
	}
}

// Validate reports the first problem with the draft, wrapped in ErrInvalidPost.
func (d Draft) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPost)
	}
	if d.Content == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidPost)
	}
	if !d.Platform.Valid() {
		return fmt.Errorf("%w: unknown platform %q", ErrInvalidPost, d.Platform)
	}
	if !d.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidPost, d.Status)
	}
	if _, err := time.Parse(DateLayout, d.ScheduledDate); err != nil {
		return fmt.Errorf("%w: scheduledDate must be YYYY-MM-DD", ErrInvalidPost)
	}
	if _, ok := ClockMinutes(d.ScheduledTime); !ok {
		return fmt.Errorf("%w: scheduledTime must look like 15:04 or 3:04 PM", ErrInvalidPost)
	}
	return nil
}

var clockLayouts = []string{"15:04", "3:04 PM", "03:04 PM", "3:04PM", "15:04:05"}

// ClockMinutes parses a time-of-day string into minutes after midnight.
func ClockMinutes(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

var hashtagPattern = regexp.MustCompile(`#\w+`)

// ExtractHashtags returns the #word tokens of text in order of appearance,
// without duplicates.
func ExtractHashtags(text string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, tag := range hashtagPattern.FindAllString(text, -1) {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
