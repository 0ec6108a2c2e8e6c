package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staysocial/staysocial-backend/internal/calendar"
	"github.com/staysocial/staysocial-backend/internal/posts"
	"github.com/staysocial/staysocial-backend/internal/store"
	"github.com/staysocial/staysocial-backend/internal/util"
	"go.uber.org/zap"
)

// PostSource supplies the calendar contents
type PostSource interface {
	Snapshot(ctx context.Context) (map[string][]posts.Post, error)
}

// ApprovalCounter reports the size of the review queue
type ApprovalCounter interface {
	CountPending(ctx context.Context) (int, error)
}

// Summary backs the dashboard header cards and the upcoming posts panel
type Summary struct {
	WeekStart         string               `json:"weekStart"`
	WeekEnd           string               `json:"weekEnd"`
	ScheduledThisWeek int                  `json:"scheduledThisWeek"`
	PostsThisWeek     int                  `json:"postsThisWeek"`
	DraftPosts        int                  `json:"draftPosts"`
	PublishedPosts    int                  `json:"publishedPosts"`
	PendingApprovals  int                  `json:"pendingApprovals"`
	TotalEngagement   int64                `json:"totalEngagement"`
	EngagementRate    decimal.Decimal      `json:"engagementRate"`
	NewFollowers      int64                `json:"newFollowers"`
	Upcoming          []calendar.ListEntry `json:"upcoming"`
	GeneratedAt       time.Time            `json:"generatedAt"`
}

const defaultUpcoming = 5

type Service struct {
	posts     PostSource
	approvals ApprovalCounter
	cache     *store.Cache
	group     util.Group
	data      *Dataset
	ttl       time.Duration
	loc       *time.Location
	now       func() time.Time
	logger    *zap.SugaredLogger

	// advances on every Invalidate
	generation atomic.Uint64
}

func NewService(postSource PostSource, approvals ApprovalCounter, cache *store.Cache, ttl time.Duration, loc *time.Location, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		posts:     postSource,
		approvals: approvals,
		cache:     cache,
		data:      DefaultDataset(),
		ttl:       ttl,
		loc:       loc,
		now:       time.Now,
		logger:    logger.With("component", "analytics"),
	}
}

// PlatformStats returns per-platform performance; platform "" or "all" keeps
// every row.
func (s *Service) PlatformStats(ctx context.Context, platform string) ([]PlatformStats, error) {
	var stats []PlatformStats
	err := s.cached(ctx, store.KeyPlatformStats, &stats, func(context.Context) (interface{}, error) {
		return s.data.platformStats(), nil
	})
	if err != nil {
		return nil, err
	}

	platform = strings.ToLower(strings.TrimSpace(platform))
	if platform == "" || platform == "all" {
		return stats, nil
	}
	out := make([]PlatformStats, 0, 1)
	for _, row := range stats {
		if row.Platform == platform {
			out = append(out, row)
		}
	}
	return out, nil
}

// TopContent returns the best performing posts, highest score first
func (s *Service) TopContent(ctx context.Context, limit int) ([]ContentItem, error) {
	var items []ContentItem
	err := s.cached(ctx, store.KeyTopContent, &items, func(context.Context) (interface{}, error) {
		items := s.data.topContent(s.now())
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].PerformanceScore > items[j].PerformanceScore
		})
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

// AudienceGrowth returns monthly follower series
func (s *Service) AudienceGrowth(ctx context.Context, platform string) ([]GrowthSeries, error) {
	var series []GrowthSeries
	err := s.cached(ctx, store.KeyAudienceGrowth, &series, func(context.Context) (interface{}, error) {
		return s.data.growth(s.now().In(s.loc)), nil
	})
	if err != nil {
		return nil, err
	}

	platform = strings.ToLower(strings.TrimSpace(platform))
	if platform == "" || platform == "all" {
		return series, nil
	}
	out := make([]GrowthSeries, 0, 1)
	for _, row := range series {
		if row.Platform == platform {
			out = append(out, row)
		}
	}
	return out, nil
}

// Summary derives the dashboard figures from live posts and approvals. The
// result is cached until a post or approval changes.
func (s *Service) Summary(ctx context.Context, upcoming int) (Summary, error) {
	if upcoming <= 0 {
		upcoming = defaultUpcoming
	}

	var summary Summary
	err := s.cached(ctx, store.KeyDashboardSummary, &summary, s.buildSummary)
	if err != nil {
		return Summary{}, err
	}
	if len(summary.Upcoming) > upcoming {
		summary.Upcoming = summary.Upcoming[:upcoming]
	}
	return summary, nil
}

const summaryUpcomingCap = 50

func (s *Service) buildSummary(ctx context.Context) (interface{}, error) {
	snapshot, err := s.posts.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	pending := 0
	if s.approvals != nil {
		if pending, err = s.approvals.CountPending(ctx); err != nil {
			return nil, fmt.Errorf("count approvals: %w", err)
		}
	}

	now := s.now().In(s.loc)
	window := calendar.ComputeWeekWindow(now)
	inWindow := make(map[string]bool, len(window.Days))
	for _, day := range window.Days {
		inWindow[calendar.DateKey(day)] = true
	}

	summary := Summary{
		WeekStart:        calendar.DateKey(window.Start),
		WeekEnd:          calendar.DateKey(window.Days[6]),
		PendingApprovals: pending,
		GeneratedAt:      now,
		Upcoming:         make([]calendar.ListEntry, 0),
	}

	for key, bucket := range snapshot {
		for _, p := range bucket {
			switch p.Status {
			case posts.StatusDraft:
				summary.DraftPosts++
			case posts.StatusPublished:
				summary.PublishedPosts++
			}
			if inWindow[key] {
				summary.PostsThisWeek++
				if p.Status == posts.StatusScheduled {
					summary.ScheduledThisWeek++
				}
			}
		}
	}

	today := calendar.DateKey(now)
	minute := now.Hour()*60 + now.Minute()
	for _, entry := range calendar.Flatten(calendar.Snapshot(snapshot), calendar.Filters{}) {
		if entry.Post.Status == posts.StatusPublished || entry.Date < today {
			continue
		}
		if entry.Date == today {
			if m, ok := posts.ClockMinutes(entry.Post.ScheduledTime); ok && m < minute {
				continue
			}
		}
		summary.Upcoming = append(summary.Upcoming, entry)
		if len(summary.Upcoming) == summaryUpcomingCap {
			break
		}
	}

	var reach int64
	for _, row := range s.data.platformStats() {
		summary.TotalEngagement += row.Engagement
		summary.NewFollowers += row.NewFollowers
		reach += row.Reach
	}
	summary.EngagementRate = EngagementRate(summary.TotalEngagement, reach)

	return summary, nil
}

// Invalidate drops the cached dashboard summary
func (s *Service) Invalidate(ctx context.Context) {
	s.generation.Add(1)
	s.group.Forget(store.KeyDashboardSummary)
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, store.KeyDashboardSummary); err != nil {
		s.logger.Warnw("Failed to invalidate dashboard summary", "error", err)
	}
}

// Watch invalidates the summary whenever a post or approval event arrives.
// It returns when ctx is done.
func (s *Service) Watch(ctx context.Context) {
	if s.cache == nil {
		return
	}
	sub := s.cache.Subscribe(ctx, store.ChannelPosts, store.ChannelApprovals)
	defer sub.Close()

	s.logger.Debugw("Watching for changes that affect the summary")
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Messages():
			if !ok {
				return
			}
			s.logger.Debugw("Summary invalidated", "channel", msg.Channel)
			s.Invalidate(ctx)
		}
	}
}

// cached reads key into dest, or loads it through the singleflight group and
// stores it for the TTL. A broken cache only costs a reload. A load that
// overlaps an Invalidate is returned but not left in the cache.
func (s *Service) cached(ctx context.Context, key string, dest interface{}, load func(context.Context) (interface{}, error)) error {
	if s.cache != nil {
		err := s.cache.Get(ctx, key, dest)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrCacheMiss) {
			s.logger.Warnw("Cache read failed; loading directly", "key", key, "error", err)
		}
	}

	v, err, _ := s.group.DoWithContext(ctx, key, func(ctx context.Context) (interface{}, error) {
		gen := s.generation.Load()
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache == nil || s.ttl <= 0 || s.generation.Load() != gen {
			return value, nil
		}
		if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
			s.logger.Warnw("Cache write failed", "key", key, "error", err)
			return value, nil
		}
		// Invalidate landed between the check and the write
		if s.generation.Load() != gen {
			if err := s.cache.Delete(ctx, key); err != nil {
				s.logger.Warnw("Failed to drop stale cache entry", "key", key, "error", err)
			}
		}
		return value, nil
	})
	if err != nil {
		return err
	}

	return assign(dest, v)
}

func assign(dest, v interface{}) error {
	switch d := dest.(type) {
	case *[]PlatformStats:
		*d = append([]PlatformStats(nil), v.([]PlatformStats)...)
	case *[]ContentItem:
		*d = append([]ContentItem(nil), v.([]ContentItem)...)
	case *[]GrowthSeries:
		*d = append([]GrowthSeries(nil), v.([]GrowthSeries)...)
	case *Summary:
		*d = v.(Summary)
		d.Upcoming = append(make([]calendar.ListEntry, 0, len(d.Upcoming)), d.Upcoming...)
	default:
		return fmt.Errorf("analytics: unsupported cache target %T", dest)
	}
	return nil
}
