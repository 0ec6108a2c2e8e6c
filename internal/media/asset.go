// Package media keeps the hotel's reusable images, videos and documents.
package media

import (
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
)

// Kind groups assets the way the library tabs do
type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
)

// MaxUploadSize bounds a single upload
const MaxUploadSize = 25 << 20

var (
	ErrNotFound     = errors.New("asset not found")
	ErrInvalidAsset = errors.New("invalid asset")
)

type Asset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Kind        Kind      `json:"kind"`
	URL         string    `json:"url"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Tags        []string  `json:"tags"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// File is an upload request. Data may be empty when the client only sends
// metadata; the placeholder uploader does not need the bytes.
type File struct {
	Name        string   `json:"name"`
	ContentType string   `json:"contentType"`
	Size        int64    `json:"size"`
	Tags        []string `json:"tags"`
	Data        []byte   `json:"-"`
}

func (f *File) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.ContentType = strings.TrimSpace(f.ContentType)
	if f.ContentType == "" {
		f.ContentType = mime.TypeByExtension(strings.ToLower(path.Ext(f.Name)))
	}
	if f.ContentType == "" {
		f.ContentType = "application/octet-stream"
	}
	if len(f.Data) > 0 {
		f.Size = int64(len(f.Data))
	}

	tags := make([]string, 0, len(f.Tags))
	seen := make(map[string]bool)
	for _, t := range f.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	f.Tags = tags
}

func (f File) validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAsset)
	}
	if f.Size < 0 || f.Size > MaxUploadSize {
		return fmt.Errorf("%w: size must be between 0 and %d bytes", ErrInvalidAsset, MaxUploadSize)
	}
	return nil
}

// KindOf maps a content type onto a library tab
func KindOf(contentType string) Kind {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return KindImage
	case strings.HasPrefix(contentType, "video/"):
		return KindVideo
	default:
		return KindDocument
	}
}
