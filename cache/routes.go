// Package cache carries the route revalidation signal. Mutating a cart bumps
// the generation for the /cart path; handlers fold the generation into their
// ETags so stale cached responses are recomputed on the next request.
package cache

import (
	"strconv"
	"sync"
)

// RouteCache tracks a generation counter per route path.
type RouteCache struct {
	mu          sync.Mutex
	generations map[string]uint64
}

// NewRouteCache creates an empty RouteCache.
func NewRouteCache() *RouteCache {
	return &RouteCache{generations: make(map[string]uint64)}
}

// Invalidate marks the path's cached response stale.
func (rc *RouteCache) Invalidate(path string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.generations[path]++
}

// Generation returns the current generation for the path.
func (rc *RouteCache) Generation(path string) uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.generations[path]
}

// ETag returns a weak validator for the path's current generation.
func (rc *RouteCache) ETag(path string) string {
	return `W/"` + strconv.FormatUint(rc.Generation(path), 10) + `"`
}
