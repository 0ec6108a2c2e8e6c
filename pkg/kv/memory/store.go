package memory

import (
	"context"
	"sync"
	"time"

	"github.com/staysocial/staysocial-backend/pkg/kv"
)

// Store is an in-memory implementation of the kv.Store interface
type Store struct {
	mu          sync.Mutex
	strings     map[string][]byte
	lists       map[string][][]byte
	expirations map[string]time.Time

	janitorInterval time.Duration
	janitorStop     chan struct{}
	janitorDone     chan struct{}
	closeOnce       sync.Once
}

// New creates a new in-memory store. A positive janitorInterval starts a
// background sweep of expired keys; expired keys are also dropped lazily.
func New(janitorInterval time.Duration) *Store {
	s := &Store{
		strings:         make(map[string][]byte),
		lists:           make(map[string][][]byte),
		expirations:     make(map[string]time.Time),
		janitorInterval: janitorInterval,
		janitorStop:     make(chan struct{}),
		janitorDone:     make(chan struct{}),
	}

	if janitorInterval > 0 {
		go s.janitor()
	} else {
		close(s.janitorDone)
	}

	return s
}

// NewStore creates a new in-memory store with the default janitor interval
func NewStore() kv.Store {
	return New(30 * time.Second)
}

func (s *Store) janitor() {
	defer close(s.janitorDone)
	ticker := time.NewTicker(s.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.janitorStop:
			return
		}
	}
}

func (s *Store) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, expiry := range s.expirations {
		if now.After(expiry) {
			s.deleteLocked(key)
		}
	}
}

// live drops key if it has expired and reports whether it still exists.
// Callers hold s.mu.
func (s *Store) live(key string) bool {
	if expiry, ok := s.expirations[key]; ok && time.Now().After(expiry) {
		s.deleteLocked(key)
		return false
	}
	_, isString := s.strings[key]
	_, isList := s.lists[key]
	return isString || isList
}

func (s *Store) deleteLocked(key string) {
	delete(s.strings, key)
	delete(s.lists, key)
	delete(s.expirations, key)
}

// String operations

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl ...time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteLocked(key)
	s.strings[key] = append([]byte(nil), value...)

	if len(ttl) > 0 && ttl[0] > 0 {
		s.expirations[key] = time.Now().Add(ttl[0])
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live(key) {
		return nil, kv.ErrNotFound
	}
	value, ok := s.strings[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Key operations

func (s *Store) Del(ctx context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for _, key := range keys {
		if s.live(key) {
			deleted++
		}
		s.deleteLocked(key)
	}
	return deleted, nil
}

func (s *Store) Exists(ctx context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, key := range keys {
		if s.live(key) {
			count++
		}
	}
	return count, nil
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live(key) {
		return false, nil
	}
	if ttl <= 0 {
		s.deleteLocked(key)
		return true, nil
	}
	s.expirations[key] = time.Now().Add(ttl)
	return true, nil
}

// TTL returns -1 for a key without expiry and kv.ErrNotFound for a missing key
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live(key) {
		return 0, kv.ErrNotFound
	}
	expiry, ok := s.expirations[key]
	if !ok {
		return -1, nil
	}
	return time.Until(expiry), nil
}

// List operations

// LPush prepends values one at a time, so the last value ends up first
func (s *Store) LPush(ctx context.Context, key string, values ...[]byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.live(key)
	if _, isString := s.strings[key]; isString {
		return 0, kv.ErrWrongType
	}

	list := s.lists[key]
	for _, v := range values {
		list = append([][]byte{append([]byte(nil), v...)}, list...)
	}
	s.lists[key] = list
	return int64(len(list)), nil
}

func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live(key) {
		return nil, kv.ErrNotFound
	}
	list, ok := s.lists[key]
	if !ok {
		return nil, kv.ErrNotFound
	}

	from, to, ok := kv.NormalizeRange(int64(len(list)), start, stop)
	if !ok {
		return [][]byte{}, nil
	}

	result := make([][]byte, 0, to-from+1)
	for i := from; i <= to; i++ {
		result = append(result, append([]byte(nil), list[i]...))
	}
	return result, nil
}

// LTrim keeps only the elements in [start, stop]; an empty range removes the key
func (s *Store) LTrim(ctx context.Context, key string, start, stop int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live(key) {
		return nil
	}
	list, ok := s.lists[key]
	if !ok {
		return nil
	}

	from, to, ok := kv.NormalizeRange(int64(len(list)), start, stop)
	if !ok {
		s.deleteLocked(key)
		return nil
	}
	s.lists[key] = append([][]byte(nil), list[from:to+1]...)
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close stops the janitor. It is safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.janitorInterval > 0 {
			close(s.janitorStop)
		}
		<-s.janitorDone
	})
	return nil
}

var _ kv.Store = (*Store)(nil)
