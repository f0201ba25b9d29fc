package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/equipskill/equipskill-dashboard/internal/cache"
	"github.com/equipskill/equipskill-dashboard/internal/middleware"
	"github.com/equipskill/equipskill-dashboard/internal/models"
	"github.com/equipskill/equipskill-dashboard/internal/repository"
	"github.com/equipskill/equipskill-dashboard/pkg/logger"
)

// EquipmentHandler serves the signed-in user's equipment listings. Every
// successful write drops the user's cached stats since ActiveHires is derived
// from the listings.
type EquipmentHandler struct {
	repo       repository.EquipmentRepository
	statsCache *cache.StatsCache
}

func NewEquipmentHandler(repo repository.EquipmentRepository, statsCache *cache.StatsCache) *EquipmentHandler {
	return &EquipmentHandler{repo: repo, statsCache: statsCache}
}

// List handles GET /api/v1/equipment
func (h *EquipmentHandler) List(c *gin.Context) {
	items, err := h.repo.ListEquipment(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondStoreError(c, "Failed to load equipment", err)
		return
	}
	respondOK(c, "equipment", items)
}

// Create handles POST /api/v1/equipment
func (h *EquipmentHandler) Create(c *gin.Context) {
	item, ok := bindItem(c)
	if !ok {
		return
	}

	userID := middleware.UserID(c)
	created, err := h.repo.CreateEquipment(c.Request.Context(), userID, item)
	if err != nil {
		respondStoreError(c, "Failed to create equipment", err)
		return
	}
	h.statsCache.Invalidate(userID)

	logger.Info("Equipment created",
		zap.String("user_id", userID),
		zap.String("equipment_id", created.ID),
		zap.String("equipment_type", created.EquipmentType))

	c.JSON(http.StatusCreated, gin.H{"success": true, "item": created})
}

// Update handles PUT /api/v1/equipment/:id. The body replaces the whole listing.
func (h *EquipmentHandler) Update(c *gin.Context) {
	item, ok := bindItem(c)
	if !ok {
		return
	}
	item.ID = c.Param("id")

	userID := middleware.UserID(c)
	updated, err := h.repo.ReplaceEquipment(c.Request.Context(), userID, item)
	if err != nil {
		respondStoreError(c, "Failed to update equipment", err)
		return
	}
	h.statsCache.Invalidate(userID)

	logger.Info("Equipment updated",
		zap.String("user_id", userID),
		zap.String("equipment_id", updated.ID),
		zap.String("availability", string(updated.Availability)))

	respondOK(c, "item", updated)
}

// Delete handles DELETE /api/v1/equipment/:id
func (h *EquipmentHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	if err := h.repo.DeleteEquipment(c.Request.Context(), userID, id); err != nil {
		respondStoreError(c, "Failed to delete equipment", err)
		return
	}
	h.statsCache.Invalidate(userID)

	logger.Info("Equipment deleted",
		zap.String("user_id", userID),
		zap.String("equipment_id", id))

	c.Status(http.StatusNoContent)
}

func bindItem(c *gin.Context) (models.EquipmentItem, bool) {
	var item models.EquipmentItem
	if err := c.ShouldBindJSON(&item); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", gin.H{"message": err.Error()}, err)
		return item, false
	}
	if item.Availability == "" {
		item.Availability = models.EquipmentAvailable
	}
	if err := models.ValidateEquipmentDraft(models.DraftFromItem(item)); err != nil {
		respondStoreError(c, "Invalid equipment", err)
		return item, false
	}
	return item, true
}
