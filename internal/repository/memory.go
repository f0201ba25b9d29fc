package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/equipskill/equipskill-dashboard/internal/models"
	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
)

var (
	_ ProfileRepository   = (*MemoryStore)(nil)
	_ EquipmentRepository = (*MemoryStore)(nil)
	_ ReviewRepository    = (*MemoryStore)(nil)
	_ StatsRepository     = (*MemoryStore)(nil)
)

// counters are the sandbox's view and message tallies for one user.
type counters struct {
	profileViews   int
	equipmentViews int
	messages       int
}

// MemoryStore keeps all sandbox data in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	profiles  map[string]models.Profile
	equipment map[string][]models.EquipmentItem
	reviews   map[string]models.Review
	counters  map[string]counters
	now       func() time.Time
	newID     func() string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:  make(map[string]models.Profile),
		equipment: make(map[string][]models.EquipmentItem),
		reviews:   make(map[string]models.Review),
		counters:  make(map[string]counters),
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

func (s *MemoryStore) GetOrCreateProfile(_ context.Context, seed models.Profile) (models.Profile, error) {
	if seed.UserID == "" {
		return models.Profile{}, apperrors.InvalidInputError("userId", "is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.profiles[seed.UserID]; ok {
		return cloneProfile(p), nil
	}
	if seed.Availability == "" {
		seed.Availability = models.ProfileAvailable
	}
	if seed.CertificateReferences == nil {
		seed.CertificateReferences = []string{}
	}
	s.profiles[seed.UserID] = cloneProfile(seed)
	return cloneProfile(seed), nil
}

func (s *MemoryStore) ReplaceProfile(_ context.Context, userID string, p models.Profile) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.profiles[userID]
	if !ok {
		return models.Profile{}, apperrors.NotFoundError("profile")
	}
	p.UserID = current.UserID
	p.ContactEmail = current.ContactEmail
	if p.CertificateReferences == nil {
		p.CertificateReferences = []string{}
	}
	s.profiles[userID] = cloneProfile(p)
	return cloneProfile(p), nil
}

func (s *MemoryStore) ListEquipment(_ context.Context, userID string) ([]models.EquipmentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.equipment[userID]
	out := make([]models.EquipmentItem, len(items))
	for i, item := range items {
		out[i] = cloneItem(item)
	}
	return out, nil
}

func (s *MemoryStore) CreateEquipment(_ context.Context, userID string, item models.EquipmentItem) (models.EquipmentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = s.newID()
	if item.Images == nil {
		item.Images = []string{}
	}
	s.equipment[userID] = append(s.equipment[userID], cloneItem(item))
	return cloneItem(item), nil
}

func (s *MemoryStore) ReplaceEquipment(_ context.Context, userID string, item models.EquipmentItem) (models.EquipmentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.equipment[userID]
	for i := range items {
		if items[i].ID == item.ID {
			if item.Images == nil {
				item.Images = []string{}
			}
			items[i] = cloneItem(item)
			return cloneItem(item), nil
		}
	}
	return models.EquipmentItem{}, apperrors.NotFoundError("equipment")
}

func (s *MemoryStore) DeleteEquipment(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.equipment[userID]
	for i := range items {
		if items[i].ID == id {
			s.equipment[userID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFoundError("equipment")
}

func (s *MemoryStore) ListReviews(_ context.Context, authorID string) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Review{}
	for _, r := range s.reviews {
		if r.AuthorID == authorID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CreateReview(_ context.Context, authorID string, d models.ReviewDraft) (models.Review, error) {
	if d.TargetUserID == authorID {
		return models.Review{}, apperrors.InvalidInputError("targetUserId", "cannot review yourself")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reviews {
		if r.AuthorID == authorID && r.TargetUserID == d.TargetUserID {
			return models.Review{}, apperrors.ErrConflict
		}
	}

	now := s.now().UTC()
	r := models.Review{
		ID:           s.newID(),
		AuthorID:     authorID,
		TargetUserID: d.TargetUserID,
		Rating:       d.Rating,
		Comment:      d.Comment,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.reviews[r.ID] = r
	return r, nil
}

func (s *MemoryStore) ReplaceReview(_ context.Context, authorID, id string, d models.ReviewDraft) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok || r.AuthorID != authorID {
		return models.Review{}, apperrors.NotFoundError("review")
	}
	if d.TargetUserID != r.TargetUserID {
		return models.Review{}, apperrors.InvalidInputError("targetUserId", "cannot be changed")
	}
	r.Rating = d.Rating
	r.Comment = d.Comment
	r.UpdatedAt = s.now().UTC()
	s.reviews[id] = r
	return r, nil
}

func (s *MemoryStore) DeleteReview(_ context.Context, authorID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok || r.AuthorID != authorID {
		return apperrors.NotFoundError("review")
	}
	delete(s.reviews, id)
	return nil
}

// Stats reports the stored counters plus the number of listings on hire.
func (s *MemoryStore) Stats(_ context.Context, userID string) (models.DashboardStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.counters[userID]
	stats := models.DashboardStats{
		ProfileViews:   c.profileViews,
		EquipmentViews: c.equipmentViews,
		Messages:       c.messages,
	}
	for _, item := range s.equipment[userID] {
		if item.Availability == models.EquipmentOnHire {
			stats.ActiveHires++
		}
	}
	return stats, nil
}

func cloneProfile(p models.Profile) models.Profile {
	p.CertificateReferences = append([]string{}, p.CertificateReferences...)
	return p
}

func cloneItem(item models.EquipmentItem) models.EquipmentItem {
	item.Images = append([]string{}, item.Images...)
	return item
}
