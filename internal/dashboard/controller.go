package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/equipskill/equipskill-dashboard/internal/credentials"
	"github.com/equipskill/equipskill-dashboard/internal/imagehost"
	"github.com/equipskill/equipskill-dashboard/internal/models"
	"github.com/equipskill/equipskill-dashboard/internal/upload"
	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
	"github.com/equipskill/equipskill-dashboard/pkg/logger"
	"github.com/equipskill/equipskill-dashboard/pkg/metrics"
	"github.com/equipskill/equipskill-dashboard/pkg/tracing"
)

// Backend is the part of the marketplace API the dashboard uses.
type Backend interface {
	GetProfile(ctx context.Context, token string) (models.Profile, error)
	UpdateProfile(ctx context.Context, token string, p models.Profile) (models.Profile, error)
	ListEquipment(ctx context.Context, token string) ([]models.EquipmentItem, error)
	CreateEquipment(ctx context.Context, token string, item models.EquipmentItem) (models.EquipmentItem, error)
	UpdateEquipment(ctx context.Context, token string, item models.EquipmentItem) (models.EquipmentItem, error)
	DeleteEquipment(ctx context.Context, token, id string) error
	GetStats(ctx context.Context, token string) (models.DashboardStats, error)
}

// Uploader stores a batch of files and returns their URLs.
type Uploader interface {
	Upload(ctx context.Context, existing int, files []imagehost.File, c upload.Constraints) ([]string, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLimits overrides the upload presets.
func WithLimits(l upload.Limits) Option {
	return func(c *Controller) { c.limits = l }
}

// WithClock sets the clock used for date validation.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller reconciles one user's profile and equipment collection. Network
// calls are made without holding mu; every applied response is checked
// against the load sequence first.
type Controller struct {
	backend  Backend
	uploader Uploader
	creds    credentials.Provider
	limits   upload.Limits
	now      func() time.Time

	mu            sync.Mutex
	seq           uint64
	state         State
	targetID      string
	loaded        bool
	authenticated bool
	profile       models.Profile
	equipment     []models.EquipmentItem
	equipDraft    *models.EquipmentDraft
	profileDraft  *models.ProfileDraft
	draftGen      uint64
	stats         *models.DashboardStats
	lastErr       string
}

// New creates a controller in the loading state.
func New(backend Backend, uploader Uploader, creds credentials.Provider, opts ...Option) *Controller {
	c := &Controller{
		backend:       backend,
		uploader:      uploader,
		creds:         creds,
		limits:        upload.DefaultLimits(),
		now:           time.Now,
		state:         StateLoading,
		authenticated: true,
		equipment:     []models.EquipmentItem{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Limits returns the upload constraints in effect.
func (c *Controller) Limits() upload.Limits {
	return c.limits
}

// View returns a snapshot of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	v := View{
		State:             c.state,
		TargetID:          c.targetID,
		Loaded:            c.loaded,
		Authenticated:     c.authenticated,
		Profile:           cloneProfile(c.profile),
		Equipment:         cloneItems(c.equipment),
		ProfileComplete:   c.loaded && models.IsProfileComplete(c.profile),
		EquipmentComplete: models.IsEquipmentComplete(c.equipment),
		EquipmentDraft:    cloneEquipmentDraft(c.equipDraft),
		ProfileDraft:      cloneProfileDraft(c.profileDraft),
		LastError:         c.lastErr,
	}
	if c.stats != nil {
		s := *c.stats
		v.Stats = &s
	}
	return v
}

// LoadAll fetches the profile and the equipment collection concurrently and
// applies both, or neither. When the profile is incomplete the controller
// moves from ready into editingProfile.
func (c *Controller) LoadAll(ctx context.Context) (View, error) {
	const op = "loadAll"
	ctx, span, start := c.begin(ctx, op)

	token, err := c.creds.Token(ctx)
	if err == nil {
		err = c.load(ctx, token, nil)
	} else {
		c.mu.Lock()
		err = c.loadFailedLocked(err)
		c.mu.Unlock()
	}
	return c.end(span, op, start, err)
}

// Refresh is LoadAll.
func (c *Controller) Refresh(ctx context.Context) (View, error) {
	return c.LoadAll(ctx)
}

// load runs one fetch cycle. finish, when set, runs under the lock once the
// response is known to be valid or superseded.
func (c *Controller) load(ctx context.Context, token string, finish func()) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	var (
		profile          models.Profile
		items            []models.EquipmentItem
		profErr, listErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, profErr = c.backend.GetProfile(gctx, token)
		return profErr
	})
	g.Go(func() error {
		items, listErr = c.backend.ListEquipment(gctx, token)
		return listErr
	})
	waitErr := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		metrics.StaleResponsesDiscarded.Inc()
		if finish != nil {
			finish()
		}
		return ErrStaleResponse
	}

	if waitErr != nil {
		// an auth failure on either side wins over the cancellation it caused
		switch {
		case apperrors.IsAuth(profErr):
			waitErr = profErr
		case apperrors.IsAuth(listErr):
			waitErr = listErr
		}
		return c.loadFailedLocked(waitErr)
	}

	if items == nil {
		items = []models.EquipmentItem{}
	}
	c.profile = profile
	c.equipment = items
	c.loaded = true
	c.authenticated = true
	if c.state == StateLoading {
		c.state = StateReady
	}
	if finish != nil {
		finish()
	}
	c.autoOpenLocked()
	return nil
}

func (c *Controller) loadFailedLocked(err error) error {
	if apperrors.IsAuth(err) {
		c.authenticated = false
		if !c.loaded {
			return fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
	}
	return err
}

func (c *Controller) autoOpenLocked() {
	if c.state == StateReady && !models.IsProfileComplete(c.profile) {
		d := models.NewProfileDraft(c.profile)
		c.profileDraft = &d
		c.draftGen++
		c.state = StateEditingProfile
	}
}

// PrepareNewEquipmentDraft returns a fresh draft defaulted from the loaded profile.
func (c *Controller) PrepareNewEquipmentDraft() (models.EquipmentDraft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return models.EquipmentDraft{}, ErrNotLoaded
	}
	return models.NewEquipmentDraft(c.profile), nil
}

// ValidateEquipmentDraft checks the required fields without any network call.
func (c *Controller) ValidateEquipmentDraft(d models.EquipmentDraft) error {
	return models.ValidateEquipmentDraft(d)
}

// OpenAddEquipment enters addingEquipment with a draft defaulted from the profile.
func (c *Controller) OpenAddEquipment() (View, error) {
	return c.transition("openAddEquipment", func() error {
		if err := c.requireLocked(StateReady); err != nil {
			return err
		}
		d := models.NewEquipmentDraft(c.profile)
		c.equipDraft = &d
		c.draftGen++
		c.state = StateAddingEquipment
		return nil
	})
}

// OpenEditEquipment enters editingEquipment with a draft copied from the listing.
func (c *Controller) OpenEditEquipment(id string) (View, error) {
	return c.transition("openEditEquipment", func() error {
		if err := c.requireLocked(StateReady); err != nil {
			return err
		}
		item, ok := models.FindEquipment(c.equipment, id)
		if !ok {
			return apperrors.NotFoundError("equipment " + id)
		}
		d := models.DraftFromItem(item)
		c.equipDraft = &d
		c.draftGen++
		c.targetID = id
		c.state = StateEditingEquipment
		return nil
	})
}

// OpenEditProfile enters editingProfile with a draft copied from the profile.
func (c *Controller) OpenEditProfile() (View, error) {
	return c.transition("openEditProfile", func() error {
		if c.state == StateEditingProfile {
			return nil
		}
		if err := c.requireLocked(StateReady); err != nil {
			return err
		}
		d := models.NewProfileDraft(c.profile)
		c.profileDraft = &d
		c.draftGen++
		c.state = StateEditingProfile
		return nil
	})
}

// Cancel leaves any sub-state and discards its draft.
func (c *Controller) Cancel() (View, error) {
	return c.transition("cancel", func() error {
		switch c.state {
		case StateEditingProfile, StateAddingEquipment, StateEditingEquipment, StatePendingDelete:
			c.resetLocked()
			return nil
		case StateReady:
			return nil
		default:
			return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, c.state)
		}
	})
}

// SetEquipmentDraft replaces the open equipment draft.
func (c *Controller) SetEquipmentDraft(d models.EquipmentDraft) (View, error) {
	return c.transition("setEquipmentDraft", func() error {
		if c.equipDraft == nil {
			return ErrNoDraft
		}
		d.Images = append([]string{}, d.Images...)
		c.equipDraft = &d
		return nil
	})
}

// SetProfileDraft replaces the open profile draft.
func (c *Controller) SetProfileDraft(d models.ProfileDraft) (View, error) {
	return c.transition("setProfileDraft", func() error {
		if c.profileDraft == nil {
			return ErrNoDraft
		}
		d.CertificateReferences = append([]string{}, d.CertificateReferences...)
		c.profileDraft = &d
		return nil
	})
}

// UploadImages uploads files under constraints and appends the URLs to the
// open equipment draft, keeping earlier images first. Nothing is appended
// when any file fails.
func (c *Controller) UploadImages(ctx context.Context, files []imagehost.File, constraints upload.Constraints) (View, error) {
	const op = "uploadImages"
	ctx, span, start := c.begin(ctx, op, attribute.Int("upload.files", len(files)))

	err := func() error {
		c.mu.Lock()
		if c.equipDraft == nil {
			c.mu.Unlock()
			return ErrNoDraft
		}
		gen := c.draftGen
		existing := len(c.equipDraft.Images)
		c.mu.Unlock()

		urls, err := c.uploader.Upload(ctx, existing, files, constraints)
		if err != nil {
			return err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.equipDraft == nil || c.draftGen != gen {
			// the draft was closed while uploading
			return ErrNoDraft
		}
		c.equipDraft.Images = append(c.equipDraft.Images, urls...)
		return nil
	}()
	return c.end(span, op, start, err)
}

// UploadCV uploads one file and makes it the profile draft's CV.
func (c *Controller) UploadCV(ctx context.Context, file imagehost.File) (View, error) {
	const op = "uploadCV"
	ctx, span, start := c.begin(ctx, op)
	err := c.uploadToProfile(ctx, []imagehost.File{file}, c.limits.CV, func(d *models.ProfileDraft, urls []string) {
		d.CVReference = urls[0]
	}, false)
	return c.end(span, op, start, err)
}

// UploadCertificates uploads files and appends them to the profile draft's certificates.
func (c *Controller) UploadCertificates(ctx context.Context, files []imagehost.File) (View, error) {
	const op = "uploadCertificates"
	ctx, span, start := c.begin(ctx, op, attribute.Int("upload.files", len(files)))
	err := c.uploadToProfile(ctx, files, c.limits.Certificates, func(d *models.ProfileDraft, urls []string) {
		d.CertificateReferences = append(d.CertificateReferences, urls...)
	}, true)
	return c.end(span, op, start, err)
}

func (c *Controller) uploadToProfile(ctx context.Context, files []imagehost.File, constraints upload.Constraints,
	apply func(*models.ProfileDraft, []string), countExisting bool) error {
	c.mu.Lock()
	if c.profileDraft == nil {
		c.mu.Unlock()
		return ErrNoDraft
	}
	gen := c.draftGen
	existing := 0
	if countExisting {
		existing = len(c.profileDraft.CertificateReferences)
	}
	c.mu.Unlock()

	urls, err := c.uploader.Upload(ctx, existing, files, constraints)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profileDraft == nil || c.draftGen != gen {
		return ErrNoDraft
	}
	apply(c.profileDraft, urls)
	return nil
}

// SubmitEquipment validates draft, sends it whole, then reloads both
// aggregates. On failure the draft and state are kept so the user can retry.
func (c *Controller) SubmitEquipment(ctx context.Context, draft models.EquipmentDraft, mode Mode) (View, error) {
	const op = "submitEquipment"
	ctx, span, start := c.begin(ctx, op, attribute.String("dashboard.mode", mode.String()))

	err := func() error {
		c.mu.Lock()
		if !c.loaded {
			c.mu.Unlock()
			return ErrNotLoaded
		}
		from := c.state
		switch from {
		case StateReady, StateAddingEquipment, StateEditingEquipment:
		default:
			c.mu.Unlock()
			return fmt.Errorf("%w: submit equipment from %s", ErrInvalidTransition, from)
		}
		if from != StateReady {
			kept := draft
			kept.Images = append([]string{}, draft.Images...)
			c.equipDraft = &kept
		}
		c.mu.Unlock()

		if err := models.ValidateEquipmentDraft(draft); err != nil {
			return err
		}

		token, err := c.creds.Token(ctx)
		if err != nil {
			return err
		}

		if mode.IsCreate() {
			_, err = c.backend.CreateEquipment(ctx, token, draft.ToItem(""))
		} else {
			_, err = c.backend.UpdateEquipment(ctx, token, draft.ToItem(mode.ID()))
		}
		if err != nil {
			return err
		}

		return c.reloadAfterWrite(ctx, token, c.finishFrom(from))
	}()
	return c.end(span, op, start, err)
}

// SaveProfile validates draft, replaces the profile, then reloads. The
// contact email always comes from the loaded profile.
func (c *Controller) SaveProfile(ctx context.Context, draft models.ProfileDraft) (View, error) {
	const op = "saveProfile"
	ctx, span, start := c.begin(ctx, op)

	err := func() error {
		c.mu.Lock()
		if !c.loaded {
			c.mu.Unlock()
			return ErrNotLoaded
		}
		from := c.state
		if from != StateReady && from != StateEditingProfile {
			c.mu.Unlock()
			return fmt.Errorf("%w: save profile from %s", ErrInvalidTransition, from)
		}
		if from == StateEditingProfile {
			kept := draft
			kept.CertificateReferences = append([]string{}, draft.CertificateReferences...)
			c.profileDraft = &kept
		}
		base := cloneProfile(c.profile)
		c.mu.Unlock()

		if err := models.ValidateProfileDraft(draft, c.now()); err != nil {
			return err
		}

		token, err := c.creds.Token(ctx)
		if err != nil {
			return err
		}
		if _, err := c.backend.UpdateProfile(ctx, token, draft.Apply(base)); err != nil {
			return err
		}

		return c.reloadAfterWrite(ctx, token, c.finishFrom(from))
	}()
	return c.end(span, op, start, err)
}

// ToggleAvailability flips one listing between available and on-hire by
// resending the whole record. The displayed collection only changes through
// the reload that follows a successful update.
func (c *Controller) ToggleAvailability(ctx context.Context, id string) (View, error) {
	const op = "toggleAvailability"
	ctx, span, start := c.begin(ctx, op, attribute.String("equipment.id", id))

	err := func() error {
		c.mu.Lock()
		if !c.loaded {
			c.mu.Unlock()
			return ErrNotLoaded
		}
		item, ok := models.FindEquipment(c.equipment, id)
		c.mu.Unlock()
		if !ok {
			return apperrors.NotFoundError("equipment " + id)
		}

		token, err := c.creds.Token(ctx)
		if err != nil {
			return err
		}
		if _, err := c.backend.UpdateEquipment(ctx, token, item.WithToggledAvailability()); err != nil {
			return err
		}
		return c.reloadAfterWrite(ctx, token, nil)
	}()
	return c.end(span, op, start, err)
}

// RequestDelete is the first phase of a delete: ready -> pendingDelete(id).
func (c *Controller) RequestDelete(id string) (View, error) {
	return c.transition("requestDelete", func() error {
		if err := c.requireLocked(StateReady); err != nil {
			return err
		}
		if _, ok := models.FindEquipment(c.equipment, id); !ok {
			return apperrors.NotFoundError("equipment " + id)
		}
		c.targetID = id
		c.state = StatePendingDelete
		return nil
	})
}

// CancelDelete returns from pendingDelete to ready.
func (c *Controller) CancelDelete() (View, error) {
	return c.transition("cancelDelete", func() error {
		if c.state != StatePendingDelete {
			return fmt.Errorf("%w: no delete pending", ErrInvalidTransition)
		}
		c.resetLocked()
		return nil
	})
}

// ConfirmDelete deletes the pending listing and reloads. On failure the
// controller stays in pendingDelete.
func (c *Controller) ConfirmDelete(ctx context.Context) (View, error) {
	const op = "confirmDelete"
	ctx, span, start := c.begin(ctx, op)

	err := func() error {
		c.mu.Lock()
		if c.state != StatePendingDelete {
			c.mu.Unlock()
			return fmt.Errorf("%w: no delete pending", ErrInvalidTransition)
		}
		id := c.targetID
		c.mu.Unlock()
		span.SetAttributes(attribute.String("equipment.id", id))

		token, err := c.creds.Token(ctx)
		if err != nil {
			return err
		}
		if err := c.backend.DeleteEquipment(ctx, token, id); err != nil {
			return err
		}
		return c.reloadAfterWrite(ctx, token, c.finishFrom(StatePendingDelete))
	}()
	return c.end(span, op, start, err)
}

// RefreshStats fetches the dashboard counters. Failures are logged and the
// last known stats are kept.
func (c *Controller) RefreshStats(ctx context.Context) View {
	const op = "refreshStats"
	ctx, span, start := c.begin(ctx, op)

	userID := ""
	token, err := c.creds.Token(ctx)
	if err == nil {
		userID = credentials.Subject(token)
		var stats models.DashboardStats
		stats, err = c.backend.GetStats(ctx, token)
		if err == nil {
			c.mu.Lock()
			c.stats = &stats
			c.mu.Unlock()
		}
	}

	if err != nil {
		logger.Warn("Failed to refresh dashboard stats, keeping last known values",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	metrics.ControllerOperations.WithLabelValues(op, metrics.Status(err)).Inc()
	tracing.EndSpan(span, err)
	logger.Debug("Dashboard operation finished",
		zap.String("operation", op),
		zap.Float64("duration", metrics.MeasureDuration(start)))
	return c.View()
}

// reloadAfterWrite refetches both aggregates after a successful mutation.
// A superseded reload still counts as success: a newer load will apply.
func (c *Controller) reloadAfterWrite(ctx context.Context, token string, finish func()) error {
	err := c.load(ctx, token, finish)
	if errors.Is(err, ErrStaleResponse) {
		return nil
	}
	return err
}

// finishFrom returns to ready if the controller is still in from.
func (c *Controller) finishFrom(from State) func() {
	return func() {
		if c.state == from && from != StateReady {
			c.resetLocked()
		}
	}
}

func (c *Controller) resetLocked() {
	c.state = StateReady
	c.targetID = ""
	c.equipDraft = nil
	c.profileDraft = nil
	c.draftGen++
}

func (c *Controller) requireLocked(want State) error {
	if !c.loaded {
		return ErrNotLoaded
	}
	if c.state != want {
		return fmt.Errorf("%w: in %s, need %s", ErrInvalidTransition, c.state, want)
	}
	return nil
}

// transition runs a synchronous state change under the lock.
func (c *Controller) transition(op string, fn func() error) (View, error) {
	c.mu.Lock()
	err := fn()
	if err != nil {
		c.lastErr = apperrors.Message(err)
	} else {
		c.lastErr = ""
	}
	v := c.viewLocked()
	c.mu.Unlock()

	metrics.ControllerOperations.WithLabelValues(op, metrics.Status(err)).Inc()
	if err != nil {
		logger.Warn("Dashboard transition rejected", zap.String("operation", op), zap.Error(err))
	} else {
		logger.Debug("Dashboard transition", zap.String("operation", op), zap.String("state", string(v.State)))
	}
	return v, err
}

func (c *Controller) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	ctx, span := tracing.StartSpan(ctx, "dashboard."+op, attrs...)
	return ctx, span, time.Now()
}

// end records the outcome of a network operation and returns the new view.
func (c *Controller) end(span trace.Span, op string, start time.Time, err error) (View, error) {
	duration := metrics.MeasureDuration(start)
	stale := errors.Is(err, ErrStaleResponse)

	status := metrics.Status(err)
	if stale {
		status = "stale"
	}
	metrics.ControllerOperations.WithLabelValues(op, status).Inc()

	c.mu.Lock()
	switch {
	case err == nil:
		c.lastErr = ""
	case !stale:
		c.lastErr = apperrors.Message(err)
	}
	v := c.viewLocked()
	c.mu.Unlock()

	switch {
	case err == nil:
		tracing.EndSpan(span, nil)
		logger.Info("Dashboard operation completed",
			zap.String("operation", op),
			zap.String("state", string(v.State)),
			zap.Float64("duration", duration))
	case stale:
		tracing.EndSpan(span, nil)
		logger.Info("Discarded stale dashboard load",
			zap.String("operation", op),
			zap.Float64("duration", duration))
	default:
		tracing.EndSpan(span, err)
		logger.Warn("Dashboard operation failed",
			zap.String("operation", op),
			zap.String("state", string(v.State)),
			zap.Float64("duration", duration),
			zap.Error(err))
	}
	return v, err
}
