package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/staysocial/staysocial-backend/internal/db/entities"
	"github.com/staysocial/staysocial-backend/internal/db/interfaces"
	"github.com/staysocial/staysocial-backend/internal/jobs"
	"github.com/staysocial/staysocial-backend/internal/metrics"
	"github.com/staysocial/staysocial-backend/internal/store"
	"go.uber.org/zap"
)

// Publisher announces library changes to live subscribers
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

type Event struct {
	Type  string    `json:"type"` // asset.uploaded, asset.deleted
	ID    string    `json:"id"`
	Asset *Asset    `json:"asset,omitempty"`
	At    time.Time `json:"at"`
}

// Library stores asset metadata in the database and the bytes through an
// Uploader. Uploads run on the task runner, one at a time per session.
type Library struct {
	db        interfaces.Database
	repo      interfaces.Repository
	uploader  Uploader
	runner    *jobs.Runner
	publisher Publisher
	delay     time.Duration
	metrics   *metrics.Metrics
	logger    *zap.SugaredLogger
}

func NewLibrary(db interfaces.Database, uploader Uploader, runner *jobs.Runner, publisher Publisher, delay time.Duration, m *metrics.Metrics, logger *zap.SugaredLogger) *Library {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if uploader == nil {
		uploader = PlaceholderUploader{}
	}
	return &Library{
		db:        db,
		repo:      db.Repository(entities.AssetSchema),
		uploader:  uploader,
		runner:    runner,
		publisher: publisher,
		delay:     delay,
		metrics:   m,
		logger:    logger.With("component", "media"),
	}
}

// Upload validates f and stores it in the background. The task's result is
// the new Asset.
func (l *Library) Upload(session string, f File) (*jobs.Task, error) {
	f.normalize()
	if err := f.validate(); err != nil {
		return nil, err
	}
	if session = strings.TrimSpace(session); session == "" {
		session = "anonymous"
	}

	return l.runner.Start("upload:"+session, func(ctx context.Context) (interface{}, error) {
		if err := wait(ctx, l.delay); err != nil {
			return nil, err
		}
		return l.store(ctx, f)
	})
}

func (l *Library) store(ctx context.Context, f File) (Asset, error) {
	key := "assets/" + uuid.NewString() + strings.ToLower(path.Ext(f.Name))
	url, err := l.uploader.Put(ctx, key, f.ContentType, bytes.NewReader(f.Data), f.Size)
	if err != nil {
		return Asset{}, err
	}
	// Past this point a cancel no longer discards the asset
	if err := jobs.Commit(ctx); err != nil {
		l.removeObject(key)
		return Asset{}, err
	}

	record, err := l.repo.Create(ctx, map[string]interface{}{
		"name":         f.Name,
		"kind":         string(KindOf(f.ContentType)),
		"url":          url,
		"storage_key":  key,
		"content_type": f.ContentType,
		"size":         f.Size,
		"tags":         f.Tags,
		"uploaded_at":  time.Now(),
	})
	if err != nil {
		l.removeObject(key)
		return Asset{}, fmt.Errorf("save asset: %w", err)
	}

	asset := fromRecord(record)
	l.announce(ctx, "asset.uploaded", asset.ID, &asset)
	return asset, nil
}

func (l *Library) removeObject(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := l.uploader.Remove(ctx, key); err != nil {
		l.logger.Warnw("Failed to remove orphaned object", "key", key, "error", err)
	}
}

func (l *Library) Task(id string) (*jobs.Task, error) {
	return l.runner.Get(id)
}

func (l *Library) Get(ctx context.Context, id string) (Asset, error) {
	record, err := l.repo.GetByID(ctx, interfaces.StringID(id))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return Asset{}, ErrNotFound
		}
		return Asset{}, fmt.Errorf("get asset: %w", err)
	}
	return fromRecord(record), nil
}

// List returns assets newest first. kind "" or "all" keeps every kind;
// search matches the name or any tag, ignoring case.
func (l *Library) List(ctx context.Context, kind, search string) ([]Asset, error) {
	q := &interfaces.Query{OrderBy: []interfaces.OrderBy{{Field: "uploaded_at", Direction: "desc"}}}
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != "" && kind != "all" {
		q.Where = &interfaces.Filters{Conditions: []interfaces.Filter{{Field: "kind", Value: kind}}}
	}

	page, err := l.repo.FindMany(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]Asset, 0, len(page.Data))
	for _, record := range page.Data {
		asset := fromRecord(record)
		if search != "" && !asset.matches(search) {
			continue
		}
		out = append(out, asset)
	}
	return out, nil
}

func (a Asset) matches(search string) bool {
	if strings.Contains(strings.ToLower(a.Name), search) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

// Delete removes the record and, for uploaded assets, the stored object
func (l *Library) Delete(ctx context.Context, id string) error {
	record, err := l.repo.GetByID(ctx, interfaces.StringID(id))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete asset: %w", err)
	}

	if err := l.repo.Delete(ctx, interfaces.StringID(id)); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if key, _ := record["storage_key"].(string); key != "" {
		if err := l.uploader.Remove(ctx, key); err != nil {
			l.logger.Warnw("Failed to remove stored object", "id", id, "key", key, "error", err)
		}
	}

	l.announce(ctx, "asset.deleted", id, nil)
	return nil
}

// Seed loads fixture assets that live at external URLs
func (l *Library) Seed(ctx context.Context, assets []Asset) (int, error) {
	records := make([]map[string]interface{}, 0, len(assets))
	for _, a := range assets {
		records = append(records, map[string]interface{}{
			"name":         a.Name,
			"kind":         string(a.Kind),
			"url":          a.URL,
			"thumbnail":    nullable(a.Thumbnail),
			"content_type": a.ContentType,
			"size":         a.Size,
			"tags":         a.Tags,
			"uploaded_at":  a.UploadedAt,
		})
	}
	return l.db.Seed(ctx, entities.AssetSchema, records)
}

func (l *Library) announce(ctx context.Context, eventType, id string, asset *Asset) {
	l.metrics.RecordMutation(ctx, "asset", strings.TrimPrefix(eventType, "asset."))
	if l.publisher == nil {
		return
	}
	event := Event{Type: eventType, ID: id, Asset: asset, At: time.Now()}
	if err := l.publisher.Publish(ctx, store.ChannelAssets, event); err != nil {
		l.logger.Warnw("Failed to publish asset event", "event", eventType, "id", id, "error", err)
	}
}

func fromRecord(record map[string]interface{}) Asset {
	a := Asset{Tags: []string{}}
	a.ID, _ = record["id"].(string)
	a.Name, _ = record["name"].(string)
	a.URL, _ = record["url"].(string)
	a.Thumbnail, _ = record["thumbnail"].(string)
	a.ContentType, _ = record["content_type"].(string)
	a.Size, _ = record["size"].(int64)
	if kind, ok := record["kind"].(string); ok {
		a.Kind = Kind(kind)
	}
	if tags, ok := record["tags"].([]string); ok {
		a.Tags = tags
	}
	if t, ok := record["uploaded_at"].(time.Time); ok {
		a.UploadedAt = t
	}
	return a
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
