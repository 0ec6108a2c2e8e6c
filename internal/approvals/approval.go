package approvals

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Status is the review state of an item
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

var (
	ErrNotFound          = errors.New("approval item not found")
	ErrInvalidItem       = errors.New("invalid approval item")
	ErrInvalidTransition = errors.New("invalid approval transition")
	ErrReasonRequired    = errors.New("rejection reason is required")
)

// Submitter is the team member who asked for review
type Submitter struct {
	Name     string `json:"name"`
	Initials string `json:"initials"`
	Avatar   string `json:"avatar,omitempty"`
}

// Item is a piece of content waiting for, or past, review
type Item struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Platform     string     `json:"platform"`
	Content      string     `json:"content"`
	Image        string     `json:"image,omitempty"`
	Submitter    Submitter  `json:"submittedBy"`
	SubmittedAt  time.Time  `json:"submittedAt"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
	Status       Status     `json:"status"`
	Reviewer     string     `json:"reviewer,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	ReviewedAt   *time.Time `json:"reviewedAt,omitempty"`
	PostID       string     `json:"postId,omitempty"`
}

// Submission is the input for Submit
type Submission struct {
	Title        string     `json:"title"`
	Platform     string     `json:"platform"`
	Content      string     `json:"content"`
	Image        string     `json:"image,omitempty"`
	Submitter    Submitter  `json:"submittedBy"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
	PostID       string     `json:"postId,omitempty"`
}

func (s *Submission) normalize() {
	s.Title = strings.TrimSpace(s.Title)
	s.Platform = strings.TrimSpace(s.Platform)
	s.Content = strings.TrimSpace(s.Content)
	s.Submitter.Name = strings.TrimSpace(s.Submitter.Name)
	if s.Submitter.Initials == "" {
		s.Submitter.Initials = Initials(s.Submitter.Name)
	}
}

func (s Submission) validate() error {
	switch {
	case s.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidItem)
	case s.Content == "":
		return fmt.Errorf("%w: content is required", ErrInvalidItem)
	case s.Platform == "":
		return fmt.Errorf("%w: platform is required", ErrInvalidItem)
	case s.Submitter.Name == "":
		return fmt.Errorf("%w: submitter name is required", ErrInvalidItem)
	}
	return nil
}

// Initials builds the avatar fallback from the first letter of up to two words
func Initials(name string) string {
	var initials []rune
	for _, word := range strings.FieldsFunc(name, func(r rune) bool { return unicode.IsSpace(r) || r == '-' }) {
		initials = append(initials, unicode.ToUpper([]rune(word)[0]))
		if len(initials) == 2 {
			break
		}
	}
	return string(initials)
}
