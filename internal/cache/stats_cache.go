package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/equipskill/equipskill-dashboard/internal/models"
	"github.com/equipskill/equipskill-dashboard/pkg/logger"
	"github.com/equipskill/equipskill-dashboard/pkg/metrics"
)

const (
	statsCacheName   = "stats"
	DefaultStatsTTL  = 10 * time.Minute
	anonymousUserKey = "_"
)

// StatsCache holds computed dashboard stats per user. Writers that change a
// counter input must Invalidate the user's entry.
type StatsCache struct {
	cache *gocache.Cache
}

// NewStatsCache creates a stats cache with the given TTL (DefaultStatsTTL when <= 0)
func NewStatsCache(ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsCache{cache: gocache.New(ttl, 2*ttl)}
}

func key(userID string) string {
	if userID == "" {
		return anonymousUserKey
	}
	return userID
}

// Get returns the cached stats for userID.
func (sc *StatsCache) Get(userID string) (models.DashboardStats, bool) {
	data, found := sc.cache.Get(key(userID))
	if !found {
		metrics.CacheMisses.WithLabelValues(statsCacheName).Inc()
		return models.DashboardStats{}, false
	}
	stats, ok := data.(models.DashboardStats)
	if !ok {
		logger.Error("Invalid stats cache data type", zap.String("user_id", userID))
		sc.cache.Delete(key(userID))
		metrics.CacheMisses.WithLabelValues(statsCacheName).Inc()
		return models.DashboardStats{}, false
	}
	metrics.CacheHits.WithLabelValues(statsCacheName).Inc()
	return stats, true
}

// Set stores stats for userID with the default TTL.
func (sc *StatsCache) Set(userID string, stats models.DashboardStats) {
	sc.cache.SetDefault(key(userID), stats)
}

// Invalidate drops the entry for userID.
func (sc *StatsCache) Invalidate(userID string) {
	sc.cache.Delete(key(userID))
}
