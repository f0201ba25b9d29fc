package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/equipskill/equipskill-dashboard/internal/cache"
	"github.com/equipskill/equipskill-dashboard/internal/middleware"
	"github.com/equipskill/equipskill-dashboard/internal/repository"
)

type StatsHandler struct {
	repo       repository.StatsRepository
	statsCache *cache.StatsCache
}

func NewStatsHandler(repo repository.StatsRepository, statsCache *cache.StatsCache) *StatsHandler {
	return &StatsHandler{repo: repo, statsCache: statsCache}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	userID := middleware.UserID(c)
	if stats, ok := h.statsCache.Get(userID); ok {
		respondOK(c, "stats", stats)
		return
	}

	stats, err := h.repo.Stats(c.Request.Context(), userID)
	if err != nil {
		respondStoreError(c, "Failed to load stats", err)
		return
	}
	h.statsCache.Set(userID, stats)
	respondOK(c, "stats", stats)
}
