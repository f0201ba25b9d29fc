package models

import "time"

// Review is a user-authored review of another marketplace user.
type Review struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"authorId"`
	TargetUserID string    `json:"targetUserId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ReviewDraft is the create/edit form for a review.
type ReviewDraft struct {
	TargetUserID string `json:"targetUserId" validate:"nonblank"`
	Rating       int    `json:"rating" validate:"min=1,max=5"`
	Comment      string `json:"comment" validate:"max=1000"`
}

// DashboardStats are the counters shown on the dashboard header.
type DashboardStats struct {
	ProfileViews   int `json:"profileViews"`
	EquipmentViews int `json:"equipmentViews"`
	Messages       int `json:"messages"`
	ActiveHires    int `json:"activeHires"`
}
