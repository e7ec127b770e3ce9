package route

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oriys/quasar/internal/metrics"
)

// ErrTopicNotFound reports that the name service confirmed the topic does
// not exist. Not-found answers are cached negatively for a shorter TTL.
var ErrTopicNotFound = errors.New("route: topic not found")

// Fetcher performs the upstream name-service round-trip for one topic.
// Implementations return ErrTopicNotFound (possibly wrapped) when the
// backend confirms the topic is unknown.
type Fetcher interface {
	FetchTopicRoute(ctx context.Context, topic string) (*TopicRouteData, error)
}

// CacheConfig bounds entry lifetimes.
type CacheConfig struct {
	TTL         time.Duration
	NegativeTTL time.Duration
}

// entry is either resolved (done closed) or in flight. Concurrent lookups
// for the same topic attach to the same entry, so N cold-cache callers
// produce exactly one upstream call.
type entry struct {
	done chan struct{}

	wrapper   *TopicRouteWrapper
	err       error
	expiresAt time.Time
}

func (e *entry) resolved() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Cache is the time-bounded, singleflight topic→route cache.
type Cache struct {
	fetcher Fetcher
	cfg     CacheConfig

	mu      sync.Mutex
	entries map[string]*entry
}

// NewCache builds a cache over the given fetcher.
func NewCache(fetcher Fetcher, cfg CacheConfig) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = 20 * time.Second
	}
	if cfg.NegativeTTL <= 0 {
		cfg.NegativeTTL = 2 * time.Second
	}
	return &Cache{
		fetcher: fetcher,
		cfg:     cfg,
		entries: make(map[string]*entry),
	}
}

// GetMessageQueue resolves the topic to its route wrapper, fetching on miss
// or expiry. The first caller for a cold topic performs the fetch; others
// await the same in-flight result.
func (c *Cache) GetMessageQueue(ctx context.Context, topic string) (*TopicRouteWrapper, error) {
	for {
		e, owner := c.acquire(topic)
		if owner {
			metrics.RecordRouteLookup("miss")
			c.fetch(ctx, topic, e)
		} else {
			metrics.RecordRouteLookup("hit")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-e.done:
		}

		// A failed fetch (other than a confirmed not-found) is not cached:
		// fetch already evicted the entry, so the error goes back to this
		// caller and the next lookup refetches.
		if e.err != nil && !errors.Is(e.err, ErrTopicNotFound) {
			return nil, e.err
		}
		if time.Now().Before(e.expiresAt) {
			return e.wrapper, e.err
		}
		c.evictIfCurrent(topic, e)
	}
}

// Invalidate drops the topic's entry so the next lookup refetches.
func (c *Cache) Invalidate(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[topic]; ok && e.resolved() {
		delete(c.entries, topic)
	}
}

// acquire returns the live entry for the topic, installing a fresh pending
// entry (and claiming ownership of the fetch) when none is usable.
func (c *Cache) acquire(topic string) (*entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[topic]; ok {
		if !e.resolved() || time.Now().Before(e.expiresAt) {
			return e, false
		}
	}
	e := &entry{done: make(chan struct{})}
	c.entries[topic] = e
	return e, true
}

func (c *Cache) fetch(ctx context.Context, topic string, e *entry) {
	data, err := c.fetcher.FetchTopicRoute(ctx, topic)

	switch {
	case err == nil:
		e.wrapper = NewTopicRouteWrapper(topic, data)
		e.expiresAt = time.Now().Add(c.cfg.TTL)
	case errors.Is(err, ErrTopicNotFound):
		metrics.RecordRouteLookup("negative")
		e.err = err
		e.expiresAt = time.Now().Add(c.cfg.NegativeTTL)
	default:
		// Transient failure: report to the waiters, then remove the entry
		// so a later caller retries.
		e.err = err
		c.evictIfCurrent(topic, e)
	}
	close(e.done)
}

func (c *Cache) evictIfCurrent(topic string, e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries[topic]; ok && cur == e {
		delete(c.entries, topic)
	}
}
