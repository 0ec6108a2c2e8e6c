package approvals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/staysocial/staysocial-backend/internal/db/entities"
	"github.com/staysocial/staysocial-backend/internal/db/interfaces"
	"github.com/staysocial/staysocial-backend/internal/metrics"
	"github.com/staysocial/staysocial-backend/internal/posts"
	"github.com/staysocial/staysocial-backend/internal/store"
	"go.uber.org/zap"
)

// Publisher announces mutations to live subscribers
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// PostScheduler moves a linked post once its review is approved
type PostScheduler interface {
	SetStatus(ctx context.Context, id string, status posts.Status) (posts.Post, error)
}

// Event describes a change to the review queue
type Event struct {
	Type string    `json:"type"` // approval.submitted, approval.approved, ...
	ID   string    `json:"id"`
	Item *Item     `json:"item,omitempty"`
	At   time.Time `json:"at"`
}

type Service struct {
	db        interfaces.Database
	repo      interfaces.Repository
	posts     PostScheduler
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewService(db interfaces.Database, scheduler PostScheduler, publisher Publisher, m *metrics.Metrics, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		db:        db,
		repo:      db.Repository(entities.ApprovalSchema),
		posts:     scheduler,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With("component", "approvals"),
		now:       time.Now,
	}
}

// Submit queues content for review
func (s *Service) Submit(ctx context.Context, sub Submission) (Item, error) {
	sub.normalize()
	if err := sub.validate(); err != nil {
		return Item{}, err
	}

	record := map[string]interface{}{
		"title":              sub.Title,
		"platform":           sub.Platform,
		"content":            sub.Content,
		"image":              nullable(sub.Image),
		"submitter_name":     sub.Submitter.Name,
		"submitter_initials": sub.Submitter.Initials,
		"submitter_avatar":   nullable(sub.Submitter.Avatar),
		"submitted_at":       s.now(),
		"scheduled_for":      nullableTime(sub.ScheduledFor),
		"status":             string(StatusPending),
		"post_id":            nullable(sub.PostID),
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return Item{}, s.mapError("submit", err)
	}

	item := fromRecord(created)
	s.announce(ctx, "approval.submitted", item.ID, &item)
	return item, nil
}

func (s *Service) Get(ctx context.Context, id string) (Item, error) {
	record, err := s.repo.GetByID(ctx, interfaces.StringID(id))
	if err != nil {
		return Item{}, s.mapError("get", err)
	}
	return fromRecord(record), nil
}

// List returns items newest first. An empty or "all" status lists every
// state; search matches title, content or platform case-insensitively.
func (s *Service) List(ctx context.Context, status, search string) ([]Item, error) {
	where := &interfaces.Filters{}

	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && status != "all" {
		where.Conditions = append(where.Conditions, interfaces.Filter{Field: "status", Value: status})
	}

	if search = strings.TrimSpace(search); search != "" {
		insensitive := false
		for _, field := range []string{"title", "content", "platform"} {
			where.OR = append(where.OR, &interfaces.Filters{Conditions: []interfaces.Filter{{
				Field:    field,
				Operator: &interfaces.FilterOperator{Like: search, CaseSensitive: &insensitive},
			}}})
		}
	}

	page, err := s.repo.FindMany(ctx, &interfaces.Query{
		Where: where,
		OrderBy: []interfaces.OrderBy{
			{Field: "submitted_at", Direction: "desc"},
			{Field: "seq", Direction: "asc"},
		},
	})
	if err != nil {
		return nil, s.mapError("list", err)
	}

	items := make([]Item, 0, len(page.Data))
	for _, record := range page.Data {
		items = append(items, fromRecord(record))
	}
	return items, nil
}

// CountPending is what the dashboard badge shows
func (s *Service) CountPending(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx, &interfaces.Query{Where: &interfaces.Filters{
		Conditions: []interfaces.Filter{{Field: "status", Value: string(StatusPending)}},
	}})
	if err != nil {
		return 0, s.mapError("count", err)
	}
	return int(n), nil
}

// Approve accepts a pending item. A linked post is moved to scheduled in the
// same transaction.
func (s *Service) Approve(ctx context.Context, id, reviewer string) (Item, error) {
	var item Item
	err := s.db.Transaction(ctx, func(ctx context.Context, _ interfaces.Transaction) error {
		updated, err := s.review(ctx, id, StatusApproved, reviewer, "")
		if err != nil {
			return err
		}
		item = updated

		if item.PostID == "" || s.posts == nil {
			return nil
		}
		if _, err := s.posts.SetStatus(ctx, item.PostID, posts.StatusScheduled); err != nil {
			if errors.Is(err, posts.ErrNotFound) {
				s.logger.Warnw("Approved item links a missing post", "id", id, "post_id", item.PostID)
				return nil
			}
			return fmt.Errorf("schedule linked post: %w", err)
		}
		return nil
	})
	if err != nil {
		return Item{}, err
	}

	s.announce(ctx, "approval.approved", item.ID, &item)
	return item, nil
}

// Reject declines a pending item; reason must not be blank
func (s *Service) Reject(ctx context.Context, id, reviewer, reason string) (Item, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Item{}, ErrReasonRequired
	}

	item, err := s.review(ctx, id, StatusRejected, reviewer, reason)
	if err != nil {
		return Item{}, err
	}

	s.announce(ctx, "approval.rejected", item.ID, &item)
	return item, nil
}

// Resubmit puts a rejected item back in the queue and clears its review
func (s *Service) Resubmit(ctx context.Context, id string) (Item, error) {
	record, err := s.transition(ctx, id, StatusRejected, "resubmit", map[string]interface{}{
		"status":       string(StatusPending),
		"reviewer":     nil,
		"reason":       nil,
		"reviewed_at":  nil,
		"submitted_at": s.now(),
	})
	if err != nil {
		return Item{}, err
	}

	item := fromRecord(record)
	s.announce(ctx, "approval.resubmitted", item.ID, &item)
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, interfaces.StringID(id)); err != nil {
		return s.mapError("delete", err)
	}
	s.announce(ctx, "approval.deleted", id, nil)
	return nil
}

// Seed loads fixture items, keeping their recorded review state
func (s *Service) Seed(ctx context.Context, items []Item) (int, error) {
	records := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		records = append(records, toRecord(item))
	}
	return s.db.Seed(ctx, entities.ApprovalSchema, records)
}

// review moves a pending item to its decision. The status check is part of
// the write, so concurrent reviews of one item cannot both succeed.
func (s *Service) review(ctx context.Context, id string, to Status, reviewer, reason string) (Item, error) {
	record, err := s.transition(ctx, id, StatusPending, "review", map[string]interface{}{
		"status":      string(to),
		"reviewer":    nullable(strings.TrimSpace(reviewer)),
		"reason":      nullable(reason),
		"reviewed_at": s.now(),
	})
	if err != nil {
		return Item{}, err
	}
	return fromRecord(record), nil
}

// transition applies data only while the item is still in state from
func (s *Service) transition(ctx context.Context, id string, from Status, op string, data map[string]interface{}) (map[string]interface{}, error) {
	record, err := s.repo.UpdateWhere(ctx, interfaces.StringID(id), &interfaces.Filters{
		Conditions: []interfaces.Filter{{Field: "status", Value: string(from)}},
	}, data)
	if errors.Is(err, interfaces.ErrConditionFailed) {
		current, getErr := s.Get(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("%w: item is %s, not %s", ErrInvalidTransition, current.Status, from)
	}
	if err != nil {
		return nil, s.mapError(op, err)
	}
	return record, nil
}

func (s *Service) announce(ctx context.Context, eventType, id string, item *Item) {
	s.metrics.RecordMutation(ctx, "approval", strings.TrimPrefix(eventType, "approval."))
	s.logger.Debugw("Approval queue changed", "event", eventType, "id", id)

	if s.publisher == nil {
		return
	}
	event := Event{Type: eventType, ID: id, Item: item, At: s.now()}
	if err := s.publisher.Publish(ctx, store.ChannelApprovals, event); err != nil {
		s.logger.Warnw("Failed to publish approval event", "event", eventType, "id", id, "error", err)
	}
}

func (s *Service) mapError(op string, err error) error {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, interfaces.ErrForeignKeyConstraint):
		return fmt.Errorf("%w: linked post does not exist", ErrInvalidItem)
	case errors.Is(err, interfaces.ErrValidation):
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	default:
		return fmt.Errorf("approval %s: %w", op, err)
	}
}

func toRecord(item Item) map[string]interface{} {
	status := item.Status
	if status == "" {
		status = StatusPending
	}
	record := map[string]interface{}{
		"title":              item.Title,
		"platform":           item.Platform,
		"content":            item.Content,
		"image":              nullable(item.Image),
		"submitter_name":     item.Submitter.Name,
		"submitter_initials": item.Submitter.Initials,
		"submitter_avatar":   nullable(item.Submitter.Avatar),
		"submitted_at":       item.SubmittedAt,
		"scheduled_for":      nullableTime(item.ScheduledFor),
		"status":             string(status),
		"reviewer":           nullable(item.Reviewer),
		"reason":             nullable(item.Reason),
		"reviewed_at":        nullableTime(item.ReviewedAt),
		"post_id":            nullable(item.PostID),
	}
	if item.ID != "" {
		record["id"] = item.ID
	}
	return record
}

func fromRecord(record map[string]interface{}) Item {
	item := Item{
		ID:       str(record, "id"),
		Title:    str(record, "title"),
		Platform: str(record, "platform"),
		Content:  str(record, "content"),
		Image:    str(record, "image"),
		Submitter: Submitter{
			Name:     str(record, "submitter_name"),
			Initials: str(record, "submitter_initials"),
			Avatar:   str(record, "submitter_avatar"),
		},
		Status:   Status(str(record, "status")),
		Reviewer: str(record, "reviewer"),
		Reason:   str(record, "reason"),
		PostID:   str(record, "post_id"),
	}
	if t, ok := record["submitted_at"].(time.Time); ok {
		item.SubmittedAt = t
	}
	if t, ok := record["scheduled_for"].(time.Time); ok {
		item.ScheduledFor = &t
	}
	if t, ok := record["reviewed_at"].(time.Time); ok {
		item.ReviewedAt = &t
	}
	return item
}

func nullable(s string) interface{} {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}

func str(record map[string]interface{}, key string) string {
	s, _ := record[key].(string)
	return s
}
