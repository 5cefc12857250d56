// Package cache is the process-local response cache of the data-access
// function: TTL entries with lazy expiry, an optional LRU bound and
// single-flight computation per key.
package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dayanaadylkhanova/travel-portal/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// Clock returns the current time. Tests substitute a fake one.
type Clock func() time.Time

// Cacher is the cache contract used by the rest of the service.
type Cacher interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	SetWithTTL(key string, value any, ttl time.Duration)
	Delete(key string)
	Clear()
	Len() int
}

type entry struct {
	key       string
	value     any
	createdAt time.Time
	ttl       time.Duration
}

// Cache is safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	now        Clock
	items      map[string]*list.Element
	order      *list.List // front = most recently used

	group singleflight.Group
}

type Option func(*Cache)

func WithClock(c Clock) Option { return func(x *Cache) { x.now = c } }

// WithMaxEntries bounds the cache; 0 means unbounded.
func WithMaxEntries(n int) Option { return func(x *Cache) { x.maxEntries = n } }

func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &Cache{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]*list.Element),
		order: list.New(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Key joins an action and its parameters into a cache key. Parts are trimmed
// so "2024-01-01 " and "2024-01-01" collapse to one key.
func Key(action string, parts ...string) string {
	var b strings.Builder
	b.WriteString(action)
	for _, p := range parts {
		b.WriteByte('|')
		b.WriteString(strings.TrimSpace(p))
	}
	return b.String()
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}
	e := el.Value.(*entry)
	if c.now().Sub(e.createdAt) >= e.ttl {
		c.removeLocked(el)
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}
	c.order.MoveToFront(el)
	metrics.CacheRequests.WithLabelValues("hit").Inc()
	return e.value, true
}

func (c *Cache) Set(key string, value any) { c.SetWithTTL(key, value, c.ttl) }

func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.value, e.createdAt, e.ttl = value, c.now(), ttl
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&entry{key: key, value: value, createdAt: c.now(), ttl: ttl})
	for c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		c.removeLocked(c.order.Back())
	}
	metrics.CacheEntries.Set(float64(c.order.Len()))
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
}

// Clear drops every entry; called on shutdown.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
	metrics.CacheEntries.Set(0)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// GetOrCompute returns the live entry for key, or runs compute once for all
// concurrent callers of the same key. The value is stored only when compute
// reports keep; errors are never stored. cached is true only for a served
// entry. A caller whose ctx ends stops waiting; the computation itself is
// not cancelled and still completes for the other callers.
func (c *Cache) GetOrCompute(
	ctx context.Context,
	key string,
	ttl time.Duration,
	compute func() (value any, keep bool, err error),
) (any, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	ch := c.group.DoChan(key, func() (any, error) {
		v, keep, err := compute()
		if err != nil {
			return nil, err
		}
		if keep {
			c.SetWithTTL(key, v, ttl)
		}
		return v, nil
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, false, r.Err
		}
		return r.Val, false, nil
	}
}

func (c *Cache) removeLocked(el *list.Element) {
	e := c.order.Remove(el).(*entry)
	delete(c.items, e.key)
	metrics.CacheEntries.Set(float64(c.order.Len()))
}

var _ Cacher = (*Cache)(nil)
