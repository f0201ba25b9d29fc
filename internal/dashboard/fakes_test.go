package dashboard_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/equipskill/equipskill-dashboard/internal/imagehost"
	"github.com/equipskill/equipskill-dashboard/internal/models"
	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
)

// fakeBackend is an in-memory marketplace API.
type fakeBackend struct {
	mu sync.Mutex

	profile models.Profile
	items   []models.EquipmentItem
	stats   models.DashboardStats
	nextID  int

	getProfileErr error
	listErr       error
	writeErr      error
	statsErr      error

	// beforeGetProfile runs before each GetProfile with the 1-based call number.
	beforeGetProfile func(call int)

	getProfileCalls int
	writes          int
	tokens          []string
	lastUpdate      models.EquipmentItem
}

func newFakeBackend(p models.Profile, items ...models.EquipmentItem) *fakeBackend {
	return &fakeBackend{profile: p, items: items}
}

func (f *fakeBackend) GetProfile(_ context.Context, token string) (models.Profile, error) {
	f.mu.Lock()
	f.getProfileCalls++
	call := f.getProfileCalls
	hook := f.beforeGetProfile
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	if f.getProfileErr != nil {
		return models.Profile{}, f.getProfileErr
	}
	p := f.profile
	p.CertificateReferences = append([]string(nil), p.CertificateReferences...)
	return p, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, token string, p models.Profile) (models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	f.writes++
	if f.writeErr != nil {
		return models.Profile{}, f.writeErr
	}
	f.profile = p
	return p, nil
}

func (f *fakeBackend) ListEquipment(_ context.Context, token string) ([]models.EquipmentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.EquipmentItem, len(f.items))
	for i, item := range f.items {
		item.Images = append([]string(nil), item.Images...)
		out[i] = item
	}
	return out, nil
}

func (f *fakeBackend) CreateEquipment(_ context.Context, token string, item models.EquipmentItem) (models.EquipmentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	f.writes++
	if f.writeErr != nil {
		return models.EquipmentItem{}, f.writeErr
	}
	f.nextID++
	item.ID = fmt.Sprintf("e-%d", f.nextID)
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeBackend) UpdateEquipment(_ context.Context, token string, item models.EquipmentItem) (models.EquipmentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	f.writes++
	f.lastUpdate = item
	if f.writeErr != nil {
		return models.EquipmentItem{}, f.writeErr
	}
	for i := range f.items {
		if f.items[i].ID == item.ID {
			f.items[i] = item
			return item, nil
		}
	}
	return models.EquipmentItem{}, &apperrors.RemoteError{Status: http.StatusNotFound, Message: "equipment not found"}
}

func (f *fakeBackend) DeleteEquipment(_ context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return &apperrors.RemoteError{Status: http.StatusNotFound, Message: "equipment not found"}
}

func (f *fakeBackend) GetStats(_ context.Context, token string) (models.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	if f.statsErr != nil {
		return models.DashboardStats{}, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeBackend) set(fn func(f *fakeBackend)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeBackend) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// fakeHost returns deterministic URLs and fails for one file name.
type fakeHost struct {
	mu    sync.Mutex
	calls int
	fail  string
}

func (h *fakeHost) Upload(_ context.Context, f imagehost.File) (string, error) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
	if f.Name == h.fail {
		return "", errors.New("image host unavailable")
	}
	return "https://img.example.com/" + f.Name, nil
}

func (h *fakeHost) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

// countingProvider hands out numbered tokens.
type countingProvider struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *countingProvider) Token(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return fmt.Sprintf("token-%d", p.calls), nil
}
