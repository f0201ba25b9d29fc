package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/equipskill/equipskill-dashboard/internal/middleware"
	"github.com/equipskill/equipskill-dashboard/internal/models"
	"github.com/equipskill/equipskill-dashboard/internal/repository"
	"github.com/equipskill/equipskill-dashboard/pkg/logger"
)

// ProfileHandler serves the signed-in user's profile.
type ProfileHandler struct {
	repo repository.ProfileRepository
	now  func() time.Time
}

func NewProfileHandler(repo repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{repo: repo, now: time.Now}
}

// GetProfile handles GET /api/v1/profile. A first visit creates an empty
// profile from the token claims.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	seed := models.Profile{UserID: middleware.UserID(c)}
	if claims, ok := middleware.Claims(c); ok {
		seed.ContactEmail = claims.Email
		seed.FirstName, seed.LastName = splitName(claims.Name)
	}

	profile, err := h.repo.GetOrCreateProfile(c.Request.Context(), seed)
	if err != nil {
		respondStoreError(c, "Failed to load profile", err)
		return
	}
	respondOK(c, "profile", profile)
}

// UpdateProfile handles PUT /api/v1/profile. The body is the whole record.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.UserID(c)

	var req models.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", gin.H{"message": err.Error()}, err)
		return
	}

	if err := models.ValidateProfileDraft(models.NewProfileDraft(req), h.now()); err != nil {
		respondStoreError(c, "Invalid profile", err)
		return
	}

	profile, err := h.repo.ReplaceProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondStoreError(c, "Failed to update profile", err)
		return
	}

	logger.Info("Profile updated",
		zap.String("user_id", userID),
		zap.Bool("complete", models.IsProfileComplete(profile)))

	respondOK(c, "profile", profile)
}

func splitName(name string) (first, last string) {
	for i, r := range name {
		if r == ' ' {
			return name[:i], name[i+1:]
		}
	}
	return name, ""
}
