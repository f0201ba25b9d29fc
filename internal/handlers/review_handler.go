package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/equipskill/equipskill-dashboard/internal/middleware"
	"github.com/equipskill/equipskill-dashboard/internal/models"
	"github.com/equipskill/equipskill-dashboard/internal/repository"
)

// ReviewHandler serves reviews written by the signed-in user.
type ReviewHandler struct {
	repo repository.ReviewRepository
}

func NewReviewHandler(repo repository.ReviewRepository) *ReviewHandler {
	return &ReviewHandler{repo: repo}
}

func (h *ReviewHandler) List(c *gin.Context) {
	reviews, err := h.repo.ListReviews(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondStoreError(c, "Failed to load reviews", err)
		return
	}
	respondOK(c, "reviews", reviews)
}

func (h *ReviewHandler) Create(c *gin.Context) {
	d, ok := bindReview(c)
	if !ok {
		return
	}
	review, err := h.repo.CreateReview(c.Request.Context(), middleware.UserID(c), d)
	if err != nil {
		respondStoreError(c, "Failed to create review", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "review": review})
}

func (h *ReviewHandler) Update(c *gin.Context) {
	d, ok := bindReview(c)
	if !ok {
		return
	}
	review, err := h.repo.ReplaceReview(c.Request.Context(), middleware.UserID(c), c.Param("id"), d)
	if err != nil {
		respondStoreError(c, "Failed to update review", err)
		return
	}
	respondOK(c, "review", review)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	if err := h.repo.DeleteReview(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondStoreError(c, "Failed to delete review", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindReview(c *gin.Context) (models.ReviewDraft, bool) {
	var d models.ReviewDraft
	if err := c.ShouldBindJSON(&d); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", gin.H{"message": err.Error()}, err)
		return d, false
	}
	if err := models.ValidateReviewDraft(d); err != nil {
		respondStoreError(c, "Invalid review", err)
		return d, false
	}
	return d, true
}
