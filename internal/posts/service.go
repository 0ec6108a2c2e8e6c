package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/staysocial/staysocial-backend/internal/db/entities"
	"github.com/staysocial/staysocial-backend/internal/db/interfaces"
	"github.com/staysocial/staysocial-backend/internal/metrics"
	"github.com/staysocial/staysocial-backend/internal/store"
	"go.uber.org/zap"
)

// Publisher announces mutations to live subscribers
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// Event describes a post mutation
type Event struct {
	Type string    `json:"type"` // post.created, post.updated, post.deleted
	ID   string    `json:"id"`
	Post *Post     `json:"post,omitempty"`
	At   time.Time `json:"at"`
}

// Filter narrows List results. Empty or "all" fields do not constrain; From
// and To are inclusive day keys.
type Filter struct {
	Platform string
	Type     string
	Status   string
	From     string
	To       string
}

// Service stores posts in the in-memory database
type Service struct {
	db        interfaces.Database
	repo      interfaces.Repository
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *zap.SugaredLogger
}

func NewService(db interfaces.Database, publisher Publisher, m *metrics.Metrics, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		db:        db,
		repo:      db.Repository(entities.PostSchema),
		publisher: publisher,
		metrics:   m,
		logger:    logger.With("component", "posts"),
	}
}

// Create validates d and stores it as a new post. Hashtags are extracted from
// the content when the draft carries none.
func (s *Service) Create(ctx context.Context, d Draft) (Post, error) {
	d.Normalize()
	if err := d.Validate(); err != nil {
		return Post{}, err
	}
	if len(d.Hashtags) == 0 {
		d.Hashtags = ExtractHashtags(d.Content)
	}

	record, err := s.repo.Create(ctx, toRecord(d))
	if err != nil {
		return Post{}, s.mapError("create", err)
	}

	post := fromRecord(record)
	s.announce(ctx, "post.created", post.ID, &post)
	return post, nil
}

func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	record, err := s.repo.GetByID(ctx, interfaces.StringID(id))
	if err != nil {
		return Post{}, s.mapError("get", err)
	}
	return fromRecord(record), nil
}

// Update replaces every draft field of the post with id
func (s *Service) Update(ctx context.Context, id string, d Draft) (Post, error) {
	d.Normalize()
	if err := d.Validate(); err != nil {
		return Post{}, err
	}
	if len(d.Hashtags) == 0 {
		d.Hashtags = ExtractHashtags(d.Content)
	}

	record, err := s.repo.Update(ctx, interfaces.StringID(id), toRecord(d))
	if err != nil {
		return Post{}, s.mapError("update", err)
	}

	post := fromRecord(record)
	s.announce(ctx, "post.updated", post.ID, &post)
	return post, nil
}

// SetStatus moves a post between draft, scheduled and published
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Post, error) {
	if !status.Valid() {
		return Post{}, fmt.Errorf("%w: unknown status %q", ErrInvalidPost, status)
	}

	record, err := s.repo.Update(ctx, interfaces.StringID(id), map[string]interface{}{"status": string(status)})
	if err != nil {
		return Post{}, s.mapError("set status", err)
	}

	post := fromRecord(record)
	s.announce(ctx, "post.updated", post.ID, &post)
	return post, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, interfaces.StringID(id)); err != nil {
		return s.mapError("delete", err)
	}
	s.announce(ctx, "post.deleted", id, nil)
	return nil
}

// List returns the posts matching f in creation order
func (s *Service) List(ctx context.Context, f Filter) ([]Post, error) {
	var conditions []interfaces.Filter
	if !isAll(f.Platform) {
		conditions = append(conditions, interfaces.Filter{Field: "platform", Value: strings.ToLower(strings.TrimSpace(f.Platform))})
	}
	if !isAll(f.Type) {
		conditions = append(conditions, interfaces.Filter{Field: "type", Value: strings.ToLower(strings.TrimSpace(f.Type))})
	}
	if !isAll(f.Status) {
		conditions = append(conditions, interfaces.Filter{Field: "status", Value: strings.ToLower(strings.TrimSpace(f.Status))})
	}
	if f.From != "" {
		conditions = append(conditions, interfaces.Filter{Field: "scheduled_date", Operator: &interfaces.FilterOperator{Gte: f.From}})
	}
	if f.To != "" {
		conditions = append(conditions, interfaces.Filter{Field: "scheduled_date", Operator: &interfaces.FilterOperator{Lte: f.To}})
	}

	q := &interfaces.Query{OrderBy: []interfaces.OrderBy{{Field: "seq", Direction: "asc"}}}
	if len(conditions) > 0 {
		q.Where = &interfaces.Filters{Conditions: conditions}
	}

	page, err := s.repo.FindMany(ctx, q)
	if err != nil {
		return nil, s.mapError("list", err)
	}

	out := make([]Post, 0, len(page.Data))
	for _, record := range page.Data {
		out = append(out, fromRecord(record))
	}
	return out, nil
}

// Snapshot buckets every post by its scheduled day, keeping creation order
// inside each bucket. The map is freshly built on every call.
func (s *Service) Snapshot(ctx context.Context) (map[string][]Post, error) {
	all, err := s.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}

	snapshot := make(map[string][]Post)
	for _, p := range all {
		snapshot[p.ScheduledDate] = append(snapshot[p.ScheduledDate], p)
	}
	return snapshot, nil
}

// Count returns how many posts match f
func (s *Service) Count(ctx context.Context, f Filter) (int, error) {
	list, err := s.List(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// Seed stores drafts in bulk, skipping invalid ones, and reports how many landed
func (s *Service) Seed(ctx context.Context, drafts []Draft) (int, error) {
	records := make([]map[string]interface{}, 0, len(drafts))
	for _, d := range drafts {
		d.Normalize()
		if err := d.Validate(); err != nil {
			s.logger.Warnw("Skipping invalid seed post", "title", d.Title, "error", err)
			continue
		}
		if len(d.Hashtags) == 0 {
			d.Hashtags = ExtractHashtags(d.Content)
		}
		records = append(records, toRecord(d))
	}
	return s.db.Seed(ctx, entities.PostSchema, records)
}

func (s *Service) announce(ctx context.Context, eventType, id string, post *Post) {
	action := eventType[len("post."):]
	s.metrics.RecordMutation(ctx, "post", action)
	s.logger.Debugw("Post mutated", "event", eventType, "id", id)

	if s.publisher == nil {
		return
	}
	event := Event{Type: eventType, ID: id, Post: post, At: time.Now()}
	if err := s.publisher.Publish(ctx, store.ChannelPosts, event); err != nil {
		s.logger.Warnw("Failed to publish post event", "event", eventType, "id", id, "error", err)
	}
}

func (s *Service) mapError(op string, err error) error {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, interfaces.ErrValidation):
		return fmt.Errorf("%w: %v", ErrInvalidPost, err)
	default:
		return fmt.Errorf("post %s: %w", op, err)
	}
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}

func toRecord(d Draft) map[string]interface{} {
	return map[string]interface{}{
		"title":          d.Title,
		"content":        d.Content,
		"platform":       string(d.Platform),
		"status":         string(d.Status),
		"scheduled_date": d.ScheduledDate,
		"scheduled_time": d.ScheduledTime,
		"type":           nullable(d.Type),
		"image":          nullable(d.Image),
		"hashtags":       nullableList(d.Hashtags),
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableList(list []string) interface{} {
	if len(list) == 0 {
		return nil
	}
	return list
}

func fromRecord(record map[string]interface{}) Post {
	p := Post{
		ID:            str(record, "id"),
		Title:         str(record, "title"),
		Content:       str(record, "content"),
		Platform:      Platform(str(record, "platform")),
		Status:        Status(str(record, "status")),
		ScheduledDate: str(record, "scheduled_date"),
		ScheduledTime: str(record, "scheduled_time"),
		Type:          str(record, "type"),
		Image:         str(record, "image"),
	}
	if tags, ok := record["hashtags"].([]string); ok {
		p.Hashtags = tags
	}
	if t, ok := record["created_at"].(time.Time); ok {
		p.CreatedAt = t
	}
	if t, ok := record["updated_at"].(time.Time); ok {
		p.UpdatedAt = t
	}
	return p
}

func str(record map[string]interface{}, key string) string {
	s, _ := record[key].(string)
	return s
}
