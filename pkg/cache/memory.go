package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/barnslig/mediacccde-graphql/errors"
)

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// memoryStore is a thread-safe in-process Store with per-entry expiry and a
// least-recently-used bound on the number of entries. Expired entries are
// dropped lazily on read and periodically by a background cleanup goroutine.
type memoryStore struct {
	mu              sync.Mutex
	cleanupInterval time.Duration
	maxEntries      int
	items           map[string]*list.Element
	order           *list.List // front is most recently used
	stats           *Statistics
	metrics         *cacheMetrics
	evictFn         func(key string)

	shutdown  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemory creates an in-process Store. The cleanup goroutine stops when ctx
// is cancelled or Close is called. Without WithMaxEntries the store holds at
// most DefaultMaxEntries entries.
func NewMemory(ctx context.Context, cleanupInterval time.Duration, options ...Option) (Store, error) {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	opts := applyOptions(options...)
	if opts.maxEntries <= 0 {
		opts.maxEntries = DefaultMaxEntries
	}

	var metrics *cacheMetrics
	if opts.metricsReg != nil {
		var err error
		metrics, err = newCacheMetrics(opts.metricsReg, opts.metricsPrefix, BackendMemory)
		if err != nil {
			return nil, errors.WrapTransient(err, "cache", "NewMemory", "metrics registration")
		}
	}

	s := &memoryStore{
		cleanupInterval: cleanupInterval,
		maxEntries:      opts.maxEntries,
		items:           make(map[string]*list.Element),
		order:           list.New(),
		stats:           NewStatistics(),
		metrics:         metrics,
		evictFn:         opts.evictCallback,
		shutdown:        make(chan struct{}),
		done:            make(chan struct{}),
	}

	go s.cleanup(ctx)

	return s, nil
}

// Get returns a copy of the cached payload and marks it as recently used.
func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}

	now := time.Now()
	var out []byte
	expired := false

	s.mu.Lock()
	element, exists := s.items[key]
	if exists {
		entry := element.Value.(*memoryEntry)
		if entry.isExpired(now) {
			s.removeElement(element)
			expired, exists = true, false
		} else {
			s.order.MoveToFront(element)
			out = make([]byte, len(entry.value))
			copy(out, entry.value)
		}
	}
	size := len(s.items)
	s.mu.Unlock()

	if expired {
		s.recordEviction(key, size)
	}

	if !exists {
		s.stats.Miss()
		if s.metrics != nil {
			s.metrics.recordMiss()
		}
		return nil, false, nil
	}

	s.stats.Hit()
	if s.metrics != nil {
		s.metrics.recordHit()
	}
	return out, true, nil
}

// Set stores a copy of value for ttl. When the store is full the least
// recently used entries are evicted.
func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	expiresAt := time.Now().Add(ttl)

	var evicted []string
	s.mu.Lock()
	if element, exists := s.items[key]; exists {
		entry := element.Value.(*memoryEntry)
		entry.value = stored
		entry.expiresAt = expiresAt
		s.order.MoveToFront(element)
	} else {
		s.items[key] = s.order.PushFront(&memoryEntry{key: key, value: stored, expiresAt: expiresAt})
	}
	for len(s.items) > s.maxEntries {
		oldest := s.order.Back()
		evicted = append(evicted, oldest.Value.(*memoryEntry).key)
		s.removeElement(oldest)
	}
	size := len(s.items)
	s.mu.Unlock()

	s.stats.Set()
	s.stats.UpdateSize(int64(size))
	if s.metrics != nil {
		s.metrics.recordSet()
		s.metrics.updateSize(size)
	}
	for _, k := range evicted {
		s.recordEviction(k, size)
	}
	return nil
}

// Delete removes an entry by key.
func (s *memoryStore) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	element, exists := s.items[key]
	if exists {
		s.removeElement(element)
	}
	size := len(s.items)
	s.mu.Unlock()

	if exists {
		s.stats.Delete()
		s.stats.UpdateSize(int64(size))
		if s.metrics != nil {
			s.metrics.recordDelete()
			s.metrics.updateSize(size)
		}
	}
	return nil
}

// Stats returns the store statistics.
func (s *memoryStore) Stats() *Statistics {
	return s.stats
}

// Close stops the background cleanup goroutine.
func (s *memoryStore) Close() error {
	s.closeOnce.Do(func() { close(s.shutdown) })

	select {
	case <-s.done:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for cleanup goroutine to finish")
	}
}

// removeElement must be called with s.mu held.
func (s *memoryStore) removeElement(element *list.Element) {
	s.order.Remove(element)
	delete(s.items, element.Value.(*memoryEntry).key)
}

func (s *memoryStore) recordEviction(key string, size int) {
	s.stats.Eviction()
	s.stats.UpdateSize(int64(size))
	if s.metrics != nil {
		s.metrics.recordEviction()
		s.metrics.updateSize(size)
	}
	if s.evictFn != nil {
		s.evictFn(key)
	}
}

func (s *memoryStore) cleanup(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdown:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *memoryStore) removeExpired() {
	now := time.Now()
	var expired []string

	s.mu.Lock()
	for element := s.order.Back(); element != nil; {
		prev := element.Prev()
		if entry := element.Value.(*memoryEntry); entry.isExpired(now) {
			expired = append(expired, entry.key)
			s.removeElement(element)
		}
		element = prev
	}
	size := len(s.items)
	s.mu.Unlock()

	for _, key := range expired {
		s.recordEviction(key, size)
	}
}
