package cache

import (
	"sync/atomic"

	"iprofit/internal/metrics"
	keys "iprofit/internal/utils/cache"
)

// Stats counts cache hits and misses per entity prefix.
type Stats struct {
	hits       int64
	misses     int64
	userHits   int64
	userMisses int64
	dashHits   int64
	dashMisses int64
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) Hit(key string) {
	atomic.AddInt64(&s.hits, 1)
	entity := prefix(key)
	switch entity {
	case "user":
		atomic.AddInt64(&s.userHits, 1)
	case "dashboard":
		atomic.AddInt64(&s.dashHits, 1)
	}
	metrics.CacheRequests.WithLabelValues("redis", entity, "hit").Inc()
}

func (s *Stats) Miss(key string) {
	atomic.AddInt64(&s.misses, 1)
	entity := prefix(key)
	switch entity {
	case "user":
		atomic.AddInt64(&s.userMisses, 1)
	case "dashboard":
		atomic.AddInt64(&s.dashMisses, 1)
	}
	metrics.CacheRequests.WithLabelValues("redis", entity, "miss").Inc()
}

// Snapshot returns counters and hit ratios (percent) by group.
func (s *Stats) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"total":     group(atomic.LoadInt64(&s.hits), atomic.LoadInt64(&s.misses)),
		"user":      group(atomic.LoadInt64(&s.userHits), atomic.LoadInt64(&s.userMisses)),
		"dashboard": group(atomic.LoadInt64(&s.dashHits), atomic.LoadInt64(&s.dashMisses)),
	}
}

func group(hits, misses int64) map[string]interface{} {
	ratio := 0.0
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total) * 100
	}
	return map[string]interface{}{
		"hits":   hits,
		"misses": misses,
		"ratio":  ratio,
	}
}

func prefix(key string) string {
	if parts := keys.ParseKey(key); parts != nil && parts["entity"] != "" {
		return parts["entity"]
	}
	return "other"
}
