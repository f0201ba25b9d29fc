package reviews

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/equipskill/equipskill-dashboard/internal/credentials"
	"github.com/equipskill/equipskill-dashboard/internal/models"
	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
	"github.com/equipskill/equipskill-dashboard/pkg/logger"
	"github.com/equipskill/equipskill-dashboard/pkg/metrics"
)

// Backend is the review part of the marketplace API.
type Backend interface {
	ListReviews(ctx context.Context, token string) ([]models.Review, error)
	CreateReview(ctx context.Context, token string, d models.ReviewDraft) (models.Review, error)
	UpdateReview(ctx context.Context, token, id string, d models.ReviewDraft) (models.Review, error)
	DeleteReview(ctx context.Context, token, id string) error
}

// Service manages the reviews written by the signed-in user.
type Service struct {
	backend Backend
	creds   credentials.Provider
}

// NewService creates a review service.
func NewService(backend Backend, creds credentials.Provider) *Service {
	return &Service{backend: backend, creds: creds}
}

// List returns the user's reviews.
func (s *Service) List(ctx context.Context) ([]models.Review, error) {
	var out []models.Review
	err := s.run(ctx, "list", "", func(token string) error {
		var err error
		out, err = s.backend.ListReviews(ctx, token)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Review{}
	}
	return out, nil
}

// Create validates d and submits a new review.
func (s *Service) Create(ctx context.Context, d models.ReviewDraft) (models.Review, error) {
	d = normalize(d)
	if err := models.ValidateReviewDraft(d); err != nil {
		metrics.ReviewOperations.WithLabelValues("create", "invalid").Inc()
		return models.Review{}, err
	}

	var out models.Review
	err := s.run(ctx, "create", "", func(token string) error {
		var err error
		out, err = s.backend.CreateReview(ctx, token, d)
		return err
	})
	return out, err
}

// Update validates d and replaces the review with the given id.
func (s *Service) Update(ctx context.Context, id string, d models.ReviewDraft) (models.Review, error) {
	if strings.TrimSpace(id) == "" {
		return models.Review{}, apperrors.InvalidInputError("id", "is required")
	}
	d = normalize(d)
	if err := models.ValidateReviewDraft(d); err != nil {
		metrics.ReviewOperations.WithLabelValues("update", "invalid").Inc()
		return models.Review{}, err
	}

	var out models.Review
	err := s.run(ctx, "update", id, func(token string) error {
		var err error
		out, err = s.backend.UpdateReview(ctx, token, id, d)
		return err
	})
	return out, err
}

// Delete removes the review with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.InvalidInputError("id", "is required")
	}
	return s.run(ctx, "delete", id, func(token string) error {
		return s.backend.DeleteReview(ctx, token, id)
	})
}

func (s *Service) run(ctx context.Context, op, id string, fn func(token string) error) error {
	token, err := s.creds.Token(ctx)
	if err == nil {
		err = fn(token)
	}

	metrics.ReviewOperations.WithLabelValues(op, metrics.Status(err)).Inc()
	if err != nil {
		logger.Error("Review operation failed",
			zap.String("operation", op),
			zap.String("review_id", id),
			zap.Error(err))
		return fmt.Errorf("failed to %s review: %w", op, err)
	}
	logger.Info("Review operation completed",
		zap.String("operation", op),
		zap.String("review_id", id))
	return nil
}

func normalize(d models.ReviewDraft) models.ReviewDraft {
	d.TargetUserID = strings.TrimSpace(d.TargetUserID)
	d.Comment = strings.TrimSpace(d.Comment)
	return d
}
