// Package cache implements a process-wide object cache. Values are
// memoized by Key; concurrent requests for the same missing key share a
// single computation, and retained values are evicted least recently used
// first once an entry count or byte budget is exceeded.
package cache

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "tiled"

// Sizer is implemented by values that know their size in bytes. Values that
// don't implement it count zero bytes against AvailableBytes.
type Sizer interface {
	Nbytes() int64
}

// Options configures a Cache. With both bounds zero the cache retains
// nothing, though concurrent computations of one key are still shared.
type Options struct {
	// MaxEntries bounds the number of retained values. Zero means no bound.
	MaxEntries int
	// AvailableBytes bounds the aggregate size of retained values. Zero
	// means no bound. A single value larger than this is never retained.
	AvailableBytes int64

	Logger log.Logger
	// Registerer, when set, receives the cache's metrics.
	Registerer prometheus.Registerer
	Namespace  string
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits         uint64
	Misses       uint64
	Computations uint64
	Evictions    uint64
	Entries      int
	Bytes        int64
}

type entry struct {
	value  interface{}
	nbytes int64
}

// Cache is safe for concurrent use. The zero value is not usable; construct
// one with New.
type Cache struct {
	lk       sync.Mutex
	lru      *simplelru.LRU[Key, entry]
	nbytes   int64
	stats    Stats
	explicit bool // set while entries are removed on request rather than evicted

	maxEntries     int
	availableBytes int64
	disabled       bool

	group   singleflight.Group
	logger  log.Logger
	metrics *metrics
}

// New constructs a Cache.
func New(opts Options) (*Cache, error) {
	if opts.MaxEntries < 0 {
		return nil, fmt.Errorf("cache: max entries must not be negative, got %d", opts.MaxEntries)
	}
	if opts.AvailableBytes < 0 {
		return nil, fmt.Errorf("cache: available bytes must not be negative, got %d", opts.AvailableBytes)
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}

	c := &Cache{
		maxEntries:     opts.MaxEntries,
		availableBytes: opts.AvailableBytes,
		disabled:       opts.MaxEntries == 0 && opts.AvailableBytes == 0,
		logger:         log.With(opts.Logger, "component", "object_cache"),
		metrics:        newMetrics(opts.Namespace),
	}

	size := opts.MaxEntries
	if size == 0 {
		size = math.MaxInt32
	}
	lru, err := simplelru.NewLRU[Key, entry](size, c.onEvict)
	if err != nil {
		return nil, err
	}
	c.lru = lru

	if opts.Registerer != nil {
		if err := c.metrics.register(opts.Registerer); err != nil {
			return nil, fmt.Errorf("cache: registering metrics: %w", err)
		}
	}
	return c, nil
}

// GetOrCompute returns the value stored under key, calling compute to
// produce and store it when there is none. Concurrent callers asking for the
// same missing key wait for a single call to compute and all receive its
// result. A failed computation is not stored; every waiter receives the
// same *ComputeError and a later call may try again.
//
// If ctx ends while waiting, GetOrCompute returns ctx.Err(). The computation
// itself keeps running and still stores its result for other callers.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, compute func() (interface{}, error)) (interface{}, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := c.group.DoChan(string(key), func() (interface{}, error) {
		// a flight for key may have landed between the lookup and this call
		if v, ok := c.peek(key); ok {
			return v, nil
		}
		c.lk.Lock()
		c.stats.Computations++
		c.lk.Unlock()

		v, err := compute()
		if err != nil {
			level.Debug(c.logger).Log("msg", "computation failed", "key", string(key), "err", err)
			return nil, &ComputeError{Key: key, Err: err}
		}
		c.Put(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetOrComputeAs is GetOrCompute for values of a known type. A nil cache
// calls compute directly.
func GetOrComputeAs[T any](ctx context.Context, c *Cache, key Key, compute func() (T, error)) (T, error) {
	if c == nil {
		return compute()
	}
	var zero T
	v, err := c.GetOrCompute(ctx, key, func() (interface{}, error) {
		return compute()
	})
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: value under key %q is %T, want %T", string(key), v, zero)
	}
	return t, nil
}

// Get returns the value stored under key, marking it most recently used.
// Every call counts as a hit or a miss.
func (c *Cache) Get(key Key) (interface{}, bool) {
	c.lk.Lock()
	defer c.lk.Unlock()
	e, ok := c.lru.Get(key)
	if !ok {
		c.stats.Misses++
		c.metrics.misses.Inc()
		return nil, false
	}
	c.stats.Hits++
	c.metrics.hits.Inc()
	return e.value, true
}

func (c *Cache) peek(key Key) (interface{}, bool) {
	c.lk.Lock()
	defer c.lk.Unlock()
	e, ok := c.lru.Peek(key)
	return e.value, ok
}

// Contains reports whether key is retained, without touching recency or
// statistics.
func (c *Cache) Contains(key Key) bool {
	c.lk.Lock()
	defer c.lk.Unlock()
	return c.lru.Contains(key)
}

// Put stores v under key, evicting least recently used entries as needed.
// It reports whether v was retained; a disabled cache, or a value larger
// than the byte budget, retains nothing.
func (c *Cache) Put(key Key, v interface{}) bool {
	if c.disabled {
		return false
	}
	n := sizeOf(v)
	if c.availableBytes > 0 && n > c.availableBytes {
		level.Debug(c.logger).Log("msg", "value too large to retain", "key", string(key), "bytes", n, "available_bytes", c.availableBytes)
		return false
	}

	c.lk.Lock()
	defer c.lk.Unlock()
	if old, ok := c.lru.Peek(key); ok {
		c.nbytes -= old.nbytes
	}
	c.lru.Add(key, entry{value: v, nbytes: n})
	c.nbytes += n
	for c.availableBytes > 0 && c.nbytes > c.availableBytes {
		if _, _, ok := c.lru.RemoveOldest(); !ok {
			break
		}
	}
	c.updateGauges()
	return true
}

// Discard removes key if present.
func (c *Cache) Discard(key Key) {
	c.lk.Lock()
	defer c.lk.Unlock()
	c.explicit = true
	c.lru.Remove(key)
	c.explicit = false
	c.updateGauges()
}

// Clear removes every retained value. Computations in flight are unaffected.
func (c *Cache) Clear() {
	c.lk.Lock()
	defer c.lk.Unlock()
	c.explicit = true
	c.lru.Purge()
	c.explicit = false
	c.nbytes = 0
	c.updateGauges()
}

// Len is the number of retained values.
func (c *Cache) Len() int {
	c.lk.Lock()
	defer c.lk.Unlock()
	return c.lru.Len()
}

// Bytes is the aggregate size of retained values.
func (c *Cache) Bytes() int64 {
	c.lk.Lock()
	defer c.lk.Unlock()
	return c.nbytes
}

// Disabled reports whether the cache was configured to retain nothing.
func (c *Cache) Disabled() bool { return c.disabled }

// Stats returns a snapshot of cache activity.
func (c *Cache) Stats() Stats {
	c.lk.Lock()
	defer c.lk.Unlock()
	s := c.stats
	s.Entries = c.lru.Len()
	s.Bytes = c.nbytes
	return s
}

// onEvict runs with c.lk held, for evictions and explicit removals alike.
func (c *Cache) onEvict(key Key, e entry) {
	c.nbytes -= e.nbytes
	if c.explicit {
		return
	}
	c.stats.Evictions++
	c.metrics.evictions.Inc()
	level.Debug(c.logger).Log("msg", "evicted", "key", string(key), "bytes", e.nbytes)
}

func (c *Cache) updateGauges() {
	c.metrics.entries.Set(float64(c.lru.Len()))
	c.metrics.bytes.Set(float64(c.nbytes))
}

func sizeOf(v interface{}) int64 {
	if s, ok := v.(Sizer); ok {
		return s.Nbytes()
	}
	return 0
}
