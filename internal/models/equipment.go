package models

import "strings"

// EquipmentAvailability is the hire state of a single listing.
type EquipmentAvailability string

const (
	EquipmentAvailable EquipmentAvailability = "available"
	EquipmentOnHire    EquipmentAvailability = "on-hire"
)

// Toggled returns the other availability state.
func (a EquipmentAvailability) Toggled() EquipmentAvailability {
	if a == EquipmentOnHire {
		return EquipmentAvailable
	}
	return EquipmentOnHire
}

// MaxEquipmentImages is the most images one listing may carry.
const MaxEquipmentImages = 5

// EquipmentItem is one equipment listing as stored by the backend.
type EquipmentItem struct {
	ID            string                `json:"id"`
	EquipmentName string                `json:"equipmentName"`
	EquipmentType string                `json:"equipmentType"`
	Location      string                `json:"location"`
	ContactPerson string                `json:"contactPerson"`
	ContactNumber string                `json:"contactNumber"`
	ContactEmail  string                `json:"contactEmail"`
	Availability  EquipmentAvailability `json:"availability"`
	Description   string                `json:"description"`
	Images        []string              `json:"images"`
}

// IsEquipmentComplete reports whether the user has listed any equipment.
func IsEquipmentComplete(items []EquipmentItem) bool {
	return len(items) > 0
}

// FindEquipment returns the item with id and whether it was found.
func FindEquipment(items []EquipmentItem, id string) (EquipmentItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item.clone(), true
		}
	}
	return EquipmentItem{}, false
}

func (e EquipmentItem) clone() EquipmentItem {
	e.Images = append([]string(nil), e.Images...)
	return e
}

// WithToggledAvailability returns a copy of e that differs only in availability.
func (e EquipmentItem) WithToggledAvailability() EquipmentItem {
	out := e.clone()
	out.Availability = e.Availability.Toggled()
	return out
}

// EquipmentDraft is the add/edit form for one listing.
type EquipmentDraft struct {
	EquipmentName string                `json:"equipmentName" validate:"nonblank,max=200"`
	EquipmentType string                `json:"equipmentType" validate:"nonblank,max=100"`
	Location      string                `json:"location" validate:"max=200"`
	ContactPerson string                `json:"contactPerson" validate:"nonblank,max=200"`
	ContactNumber string                `json:"contactNumber" validate:"nonblank,max=30"`
	ContactEmail  string                `json:"contactEmail" validate:"nonblank,max=254"`
	Availability  EquipmentAvailability `json:"availability" validate:"omitempty,oneof=available on-hire"`
	Description   string                `json:"description" validate:"max=2000"`
	Images        []string              `json:"images" validate:"max=5"`
}

// NewEquipmentDraft starts a listing pre-filled with the profile's contact
// details and location. It depends on p only.
func NewEquipmentDraft(p Profile) EquipmentDraft {
	return EquipmentDraft{
		ContactPerson: p.FullName(),
		ContactNumber: p.ContactPhone,
		ContactEmail:  p.ContactEmail,
		Location:      p.Location,
		Availability:  EquipmentAvailable,
		Images:        []string{},
	}
}

// DraftFromItem copies an existing listing into an edit draft.
func DraftFromItem(e EquipmentItem) EquipmentDraft {
	return EquipmentDraft{
		EquipmentName: e.EquipmentName,
		EquipmentType: e.EquipmentType,
		Location:      e.Location,
		ContactPerson: e.ContactPerson,
		ContactNumber: e.ContactNumber,
		ContactEmail:  e.ContactEmail,
		Availability:  e.Availability,
		Description:   e.Description,
		Images:        append([]string{}, e.Images...),
	}
}

// ToItem builds the full record sent to the backend.
func (d EquipmentDraft) ToItem(id string) EquipmentItem {
	item := EquipmentItem{
		ID:            id,
		EquipmentName: strings.TrimSpace(d.EquipmentName),
		EquipmentType: strings.TrimSpace(d.EquipmentType),
		Location:      strings.TrimSpace(d.Location),
		ContactPerson: strings.TrimSpace(d.ContactPerson),
		ContactNumber: strings.TrimSpace(d.ContactNumber),
		ContactEmail:  strings.TrimSpace(d.ContactEmail),
		Availability:  d.Availability,
		Description:   d.Description,
		Images:        append([]string{}, d.Images...),
	}
	if item.Availability == "" {
		item.Availability = EquipmentAvailable
	}
	return item
}
