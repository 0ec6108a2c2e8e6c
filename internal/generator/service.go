package generator

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/staysocial/staysocial-backend/internal/jobs"
	"github.com/staysocial/staysocial-backend/internal/store"
	"go.uber.org/zap"
)

const (
	historyLimit = 20
	historyTTL   = 24 * time.Hour
)

// Service runs generations in the background, one at a time per session,
// and keeps each session's recent results.
type Service struct {
	provider Provider
	runner   *jobs.Runner
	cache    *store.Cache
	delay    time.Duration
	logger   *zap.SugaredLogger
}

func NewService(provider Provider, runner *jobs.Runner, cache *store.Cache, delay time.Duration, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		provider: provider,
		runner:   runner,
		cache:    cache,
		delay:    delay,
		logger:   logger.With("component", "generator"),
	}
}

// Start validates req and queues it for session. A second Start while the
// session's previous generation is pending returns that task with
// jobs.ErrInFlight.
func (s *Service) Start(session string, req Request) (*jobs.Task, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	session = sessionKey(session)

	return s.runner.Start("generate:"+session, func(ctx context.Context) (interface{}, error) {
		if err := sleep(ctx, s.delay); err != nil {
			return nil, err
		}

		res, err := s.provider.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := jobs.Commit(ctx); err != nil {
			return nil, err
		}

		if s.cache != nil {
			if err := s.cache.PushRecent(ctx, store.HistoryKey(session), res, historyLimit, historyTTL); err != nil {
				s.logger.Warnw("Failed to record generation history", "session", session, "error", err)
			}
		}
		return res, nil
	})
}

// Generate runs req synchronously, without the simulated latency
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	return s.provider.Generate(ctx, req)
}

func (s *Service) Task(id string) (*jobs.Task, error) {
	return s.runner.Get(id)
}

func (s *Service) Cancel(id string) (*jobs.Task, error) {
	return s.runner.Cancel(id)
}

// History returns the session's most recent results, newest first
func (s *Service) History(ctx context.Context, session string, limit int) ([]Result, error) {
	if s.cache == nil {
		return []Result{}, nil
	}
	if limit <= 0 || limit > historyLimit {
		limit = historyLimit
	}

	raw, err := s.cache.Recent(ctx, store.HistoryKey(sessionKey(session)), limit)
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(raw))
	for _, entry := range raw {
		var res Result
		if err := json.Unmarshal(entry, &res); err != nil {
			s.logger.Warnw("Skipping corrupt history entry", "session", session, "error", err)
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

func sessionKey(session string) string {
	if session = strings.TrimSpace(session); session == "" {
		return "anonymous"
	}
	return session
}

func sleep(ctx context.Context, d time.Duration) error {
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
