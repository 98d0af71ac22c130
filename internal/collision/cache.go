package collision

import (
	"sync"

	"github.com/Faultbox/midgard-nav/internal/pathfind"
)

// DefaultCacheSize is the number of answers Cached keeps before it resets.
const DefaultCacheSize = 1 << 16

type query struct {
	mapID                  string
	fromX, fromY, toX, toY float64
}

// CacheStats holds cache statistics.
type CacheStats struct {
	Entries int
	Hits    int
	Misses  int
}

// Cached memoizes the answers of another oracle. The table is cleared
// when it reaches its size limit.
type Cached struct {
	oracle pathfind.Oracle
	limit  int

	mu      sync.Mutex
	answers map[query]bool
	hits    int
	misses  int
}

// NewCached wraps oracle. A non-positive limit selects DefaultCacheSize.
func NewCached(oracle pathfind.Oracle, limit int) *Cached {
	if limit <= 0 {
		limit = DefaultCacheSize
	}
	return &Cached{
		oracle:  oracle,
		limit:   limit,
		answers: make(map[query]bool),
	}
}

// CanMove implements pathfind.Oracle.
func (c *Cached) CanMove(mapID string, fromX, fromY, toX, toY float64) bool {
	q := query{mapID, fromX, fromY, toX, toY}

	c.mu.Lock()
	if ok, found := c.answers[q]; found {
		c.hits++
		c.mu.Unlock()
		return ok
	}
	c.misses++
	c.mu.Unlock()

	ok := c.oracle.CanMove(mapID, fromX, fromY, toX, toY)

	c.mu.Lock()
	if len(c.answers) >= c.limit {
		clear(c.answers)
	}
	c.answers[q] = ok
	c.mu.Unlock()
	return ok
}

// Reset drops all cached answers. Call it when the wrapped oracle changes.
func (c *Cached) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.answers)
}

// Stats returns cache statistics.
func (c *Cached) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: len(c.answers), Hits: c.hits, Misses: c.misses}
}
