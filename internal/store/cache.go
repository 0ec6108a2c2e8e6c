package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/staysocial/staysocial-backend/internal/metrics"
	"github.com/staysocial/staysocial-backend/pkg/kv"
	memkv "github.com/staysocial/staysocial-backend/pkg/kv/memory"
	rediskv "github.com/staysocial/staysocial-backend/pkg/kv/redis"
	"go.uber.org/zap"
)

// Cache is the JSON cache and event bus. Data goes through a kv.Store backed
// by Redis when it is reachable and by memory otherwise; pub/sub follows the
// same choice.
type Cache struct {
	kvStore kv.Store
	// Set only in Redis mode
	client *redis.Client
	// Set only in in-memory mode
	pubsubHub *PubSubHub

	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewCache connects to Redis at addr, falling back to the in-memory store when
// addr is empty or Redis does not answer.
func NewCache(addr string, logger *zap.SugaredLogger, metrics *metrics.Metrics) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if addr == "" {
		logger.Infow("No Redis address configured; using in-memory cache")
		return NewMemoryCache(logger, metrics), nil
	}

	store, err := rediskv.New(context.Background(), addr)
	if err != nil {
		logger.Warnw("Redis unavailable; using in-memory cache with local pubsub", "addr", addr, "error", err)
		return NewMemoryCache(logger, metrics), nil
	}

	logger.Infow("Connected to Redis", "addr", addr)
	return &Cache{
		kvStore: store,
		client:  store.Client(),
		logger:  logger,
		metrics: metrics,
	}, nil
}

// NewMemoryCache builds a cache that never leaves the process
func NewMemoryCache(logger *zap.SugaredLogger, metrics *metrics.Metrics) *Cache {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Cache{
		kvStore:   memkv.NewStore(),
		pubsubHub: NewPubSubHub(),
		logger:    logger,
		metrics:   metrics,
	}
}

// Cache keys and pub/sub channels
const (
	KeyDashboardSummary  = "ssp:dashboard:summary"
	KeyPlatformStats     = "ssp:analytics:platforms"
	KeyTopContent        = "ssp:analytics:top"
	KeyAudienceGrowth    = "ssp:analytics:audience"
	KeyGeneratorHistory  = "ssp:generator:history"
	ChannelPosts         = "ssp:events:posts"
	ChannelApprovals     = "ssp:events:approvals"
	ChannelTasks         = "ssp:events:tasks"
	ChannelAssets        = "ssp:events:assets"
	defaultHistoryLength = 20
)

// LiveChannels are relayed to SSE and websocket clients
var LiveChannels = []string{ChannelPosts, ChannelApprovals, ChannelTasks, ChannelAssets}

// Error types
var (
	ErrCacheMiss = errors.New("cache miss")
)

// Get decodes the JSON value at key into dest, returning ErrCacheMiss when absent
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.kvStore.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			c.metrics.RecordCacheMiss(ctx, key)
			return ErrCacheMiss
		}
		c.logger.Errorw("Cache get error", "key", key, "error", err)
		return fmt.Errorf("cache get error: %w", err)
	}
	c.metrics.RecordCacheHit(ctx, key)

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := c.kvStore.Set(ctx, key, data, ttl); err != nil {
		c.logger.Errorw("Cache set error", "key", key, "error", err)
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := c.kvStore.Del(ctx, keys...); err != nil {
		c.logger.Errorw("Cache delete error", "keys", keys, "error", err)
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	count, err := c.kvStore.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("cache exists error: %w", err)
	}
	return count > 0, nil
}

// PushRecent prepends value to the list at key and keeps the newest limit
// entries. A positive ttl refreshes the list's expiry.
func (c *Cache) PushRecent(ctx context.Context, key string, value interface{}, limit int, ttl time.Duration) error {
	if limit <= 0 {
		limit = defaultHistoryLength
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if _, err := c.kvStore.LPush(ctx, key, data); err != nil {
		return fmt.Errorf("cache push error: %w", err)
	}
	if err := c.kvStore.LTrim(ctx, key, 0, int64(limit-1)); err != nil {
		return fmt.Errorf("cache trim error: %w", err)
	}
	if ttl > 0 {
		if _, err := c.kvStore.Expire(ctx, key, ttl); err != nil {
			return fmt.Errorf("cache expire error: %w", err)
		}
	}
	return nil
}

// Recent returns up to limit entries of the list at key, newest first. A
// missing list yields an empty result.
func (c *Cache) Recent(ctx context.Context, key string, limit int) ([]json.RawMessage, error) {
	if limit <= 0 {
		limit = defaultHistoryLength
	}
	values, err := c.kvStore.LRange(ctx, key, 0, int64(limit-1))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("cache range error: %w", err)
	}

	out := make([]json.RawMessage, len(values))
	for i, v := range values {
		out[i] = json.RawMessage(v)
	}
	return out, nil
}

// HistoryKey scopes the generator history list to a session
func HistoryKey(session string) string {
	return fmt.Sprintf("%s:%s", KeyGeneratorHistory, session)
}

// Publish JSON-encodes message onto channel
func (c *Cache) Publish(ctx context.Context, channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("pubsub marshal error: %w", err)
	}

	if c.client != nil {
		if err := c.client.Publish(ctx, channel, data).Err(); err != nil {
			c.logger.Errorw("Publish error", "channel", channel, "error", err)
			return fmt.Errorf("pubsub publish error: %w", err)
		}
		return nil
	}

	c.pubsubHub.Publish(channel, string(data))
	c.logger.Debugw("Published to in-memory pubsub", "channel", channel)
	return nil
}

// Subscribe opens a subscription on channels in whichever mode the cache runs
func (c *Cache) Subscribe(ctx context.Context, channels ...string) Subscription {
	if c.client != nil {
		return newRedisSubscription(ctx, c.client.Subscribe(ctx, channels...))
	}
	return c.pubsubHub.Subscribe(ctx, channels...)
}

// IsInMemoryMode returns true if the cache is running in in-memory mode
func (c *Cache) IsInMemoryMode() bool {
	return c.client == nil
}

// Ping reports backend health; the in-memory store is always healthy
func (c *Cache) Ping(ctx context.Context) error {
	return c.kvStore.Ping(ctx)
}

// Close releases the backing store
func (c *Cache) Close() error {
	return c.kvStore.Close()
}

// redisSubscription adapts redis.PubSub to Subscription
type redisSubscription struct {
	pubsub *redis.PubSub
	out    chan *Message
}

func newRedisSubscription(ctx context.Context, pubsub *redis.PubSub) *redisSubscription {
	s := &redisSubscription{
		pubsub: pubsub,
		out:    make(chan *Message, 100),
	}

	go func() {
		defer close(s.out)
		in := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = pubsub.Close()
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case s.out <- &Message{Channel: msg.Channel, Payload: msg.Payload}:
				default:
				}
			}
		}
	}()

	return s
}

func (s *redisSubscription) Messages() <-chan *Message {
	return s.out
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
