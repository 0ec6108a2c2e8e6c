package api

import (
	"github.com/staysocial/staysocial-backend/internal/approvals"
	"github.com/staysocial/staysocial-backend/internal/calendar"
	"github.com/staysocial/staysocial-backend/internal/jobs"
	"github.com/staysocial/staysocial-backend/internal/posts"
)

type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type HealthDTO struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type NavigateDTO struct {
	From        string `json:"from"`
	Direction   string `json:"direction"`
	Granularity string `json:"granularity"`
	Anchor      string `json:"anchor"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

type DayDTO struct {
	Date    string           `json:"date"`
	IsToday bool             `json:"isToday"`
	Filters calendar.Filters `json:"filters"`
	Posts   []posts.Post     `json:"posts"`
}

type ListDTO struct {
	Filters calendar.Filters     `json:"filters"`
	Entries []calendar.ListEntry `json:"entries"`
	Count   int                  `json:"count"`
}

type PostsDTO struct {
	Items []posts.Post `json:"items"`
	Count int          `json:"count"`
}

type StatusRequest struct {
	Status posts.Status `json:"status"`
}

type ApprovalsDTO struct {
	Items   []approvals.Item `json:"items"`
	Count   int              `json:"count"`
	Pending int              `json:"pending"`
}

type ApproveRequest struct {
	Reviewer string `json:"reviewer"`
}

type RejectRequest struct {
	Reviewer string `json:"reviewer"`
	Reason   string `json:"reason"`
}

// AssetUploadRequest is the JSON form of an upload; multipart uploads carry
// the same fields as form values next to the file part.
type AssetUploadRequest struct {
	Name        string   `json:"name"`
	ContentType string   `json:"contentType"`
	Size        int64    `json:"size"`
	Tags        []string `json:"tags"`
}

type TaskAcceptedDTO struct {
	Task      jobs.View `json:"task"`
	StatusURL string    `json:"statusUrl"`
}
