package dashboard

import (
	"errors"

	"github.com/equipskill/equipskill-dashboard/internal/models"
)

// State is the dashboard session state.
type State string

const (
	StateLoading          State = "loading"
	StateReady            State = "ready"
	StateEditingProfile   State = "editingProfile"
	StateAddingEquipment  State = "addingEquipment"
	StateEditingEquipment State = "editingEquipment"
	StatePendingDelete    State = "pendingDelete"
)

var (
	// ErrUnauthenticated means the initial load was rejected by the backend;
	// the caller should send the user to log in.
	ErrUnauthenticated = errors.New("session is not authenticated")

	// ErrStaleResponse is returned to a load whose response arrived after a
	// newer load had been issued. The response was discarded.
	ErrStaleResponse = errors.New("stale response discarded")

	ErrNotLoaded         = errors.New("dashboard has not been loaded")
	ErrNoDraft           = errors.New("no draft is open")
	ErrInvalidTransition = errors.New("operation not allowed in current state")
)

// Mode selects create or update for SubmitEquipment.
type Mode struct {
	id string
}

// Create submits a new listing.
func Create() Mode { return Mode{} }

// Update replaces the listing with the given id.
func Update(id string) Mode { return Mode{id: id} }

func (m Mode) IsCreate() bool { return m.id == "" }
func (m Mode) ID() string     { return m.id }

func (m Mode) String() string {
	if m.IsCreate() {
		return "create"
	}
	return "update(" + m.id + ")"
}

// View is a snapshot of the controller. It shares no memory with the
// controller and may be kept by the caller.
type View struct {
	State State
	// TargetID is the listing being edited or pending deletion.
	TargetID string

	Loaded        bool
	Authenticated bool

	Profile           models.Profile
	Equipment         []models.EquipmentItem
	ProfileComplete   bool
	EquipmentComplete bool

	EquipmentDraft *models.EquipmentDraft
	ProfileDraft   *models.ProfileDraft

	Stats     *models.DashboardStats
	LastError string
}

func cloneProfile(p models.Profile) models.Profile {
	p.CertificateReferences = append([]string(nil), p.CertificateReferences...)
	return p
}

func cloneItems(items []models.EquipmentItem) []models.EquipmentItem {
	out := make([]models.EquipmentItem, len(items))
	for i, item := range items {
		item.Images = append([]string(nil), item.Images...)
		out[i] = item
	}
	return out
}

func cloneEquipmentDraft(d *models.EquipmentDraft) *models.EquipmentDraft {
	if d == nil {
		return nil
	}
	out := *d
	out.Images = append([]string{}, d.Images...)
	return &out
}

func cloneProfileDraft(d *models.ProfileDraft) *models.ProfileDraft {
	if d == nil {
		return nil
	}
	out := *d
	out.CertificateReferences = append([]string{}, d.CertificateReferences...)
	return &out
}
