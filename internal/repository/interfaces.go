package repository

import (
	"context"

	"github.com/equipskill/equipskill-dashboard/internal/models"
)

// ProfileRepository stores one profile per user.
type ProfileRepository interface {
	// GetOrCreateProfile returns the user's profile, creating it from seed
	// on first access.
	GetOrCreateProfile(ctx context.Context, seed models.Profile) (models.Profile, error)

	// ReplaceProfile stores p whole. The user id and contact email are kept
	// from the stored record.
	ReplaceProfile(ctx context.Context, userID string, p models.Profile) (models.Profile, error)
}

// EquipmentRepository stores each user's equipment listings.
type EquipmentRepository interface {
	ListEquipment(ctx context.Context, userID string) ([]models.EquipmentItem, error)
	CreateEquipment(ctx context.Context, userID string, item models.EquipmentItem) (models.EquipmentItem, error)
	ReplaceEquipment(ctx context.Context, userID string, item models.EquipmentItem) (models.EquipmentItem, error)
	DeleteEquipment(ctx context.Context, userID, id string) error
}

// ReviewRepository stores reviews by author.
type ReviewRepository interface {
	ListReviews(ctx context.Context, authorID string) ([]models.Review, error)
	CreateReview(ctx context.Context, authorID string, d models.ReviewDraft) (models.Review, error)
	ReplaceReview(ctx context.Context, authorID, id string, d models.ReviewDraft) (models.Review, error)
	DeleteReview(ctx context.Context, authorID, id string) error
}

// StatsRepository derives the dashboard counters.
type StatsRepository interface {
	Stats(ctx context.Context, userID string) (models.DashboardStats, error)
}
