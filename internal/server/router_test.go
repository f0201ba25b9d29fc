package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipskill/equipskill-dashboard/internal/backend"
	"github.com/equipskill/equipskill-dashboard/internal/credentials"
	"github.com/equipskill/equipskill-dashboard/internal/dashboard"
	"github.com/equipskill/equipskill-dashboard/internal/imagehost"
	"github.com/equipskill/equipskill-dashboard/internal/models"
	"github.com/equipskill/equipskill-dashboard/internal/repository"
	"github.com/equipskill/equipskill-dashboard/internal/reviews"
	"github.com/equipskill/equipskill-dashboard/internal/server"
	"github.com/equipskill/equipskill-dashboard/internal/upload"
	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
	"github.com/equipskill/equipskill-dashboard/pkg/httpclient"
	"github.com/equipskill/equipskill-dashboard/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubHost struct{}

func (stubHost) Upload(_ context.Context, f imagehost.File) (string, error) {
	return "https://img.example.com/" + f.Name, nil
}

type sandbox struct {
	store  *repository.MemoryStore
	srv    *httptest.Server
	tm     *jwt.TokenManager
	token  string
	client *backend.Client
}

func newSandbox(t *testing.T) *sandbox {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := repository.NewMemoryStore()
	tm := jwt.NewTokenManager("test-secret", "equipskill-sandbox", 1)
	router := server.NewRouter(ctx, store, tm, server.Options{})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	token, err := tm.GenerateToken("u-1", "ada@example.com", "Ada Lovelace", "both")
	require.NoError(t, err)

	return &sandbox{
		store:  store,
		srv:    srv,
		tm:     tm,
		token:  token,
		client: backend.NewClient(srv.URL+server.APIPrefix, httpclient.NewClient(5*time.Second)),
	}
}

// completeProfile gives u-1 a job title and experience level so the
// dashboard lands in ready.
func (s *sandbox) completeProfile(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	p, err := s.store.GetOrCreateProfile(ctx, models.Profile{UserID: "u-1", ContactEmail: "ada@example.com"})
	require.NoError(t, err)
	p.FirstName, p.LastName = "Ada", "Lovelace"
	p.ContactPhone = "+44 20 7946 0000"
	p.Location = "London"
	p.JobTitle = "Crane Operator"
	p.ExperienceLevel = "Expert (10+ years)"
	_, err = s.store.ReplaceProfile(ctx, "u-1", p)
	require.NoError(t, err)
}

func (s *sandbox) controller(token string) *dashboard.Controller {
	return dashboard.New(s.client, upload.NewUploader(stubHost{}), credentials.Static(token))
}

func TestOperationalEndpoints(t *testing.T) {
	s := newSandbox(t)

	resp, err := http.Get(s.srv.URL + "/api/healthcheck")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(s.srv.URL + "/api/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIRequiresBearerToken(t *testing.T) {
	s := newSandbox(t)

	resp, err := http.Get(s.srv.URL + server.APIPrefix + "/profile")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDashboard_FreshUserIsForcedIntoProfileEdit(t *testing.T) {
	s := newSandbox(t)
	ctrl := s.controller(s.token)

	v, err := ctrl.LoadAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, dashboard.StateEditingProfile, v.State)
	assert.Equal(t, "ada@example.com", v.Profile.ContactEmail)
	require.NotNil(t, v.ProfileDraft)
	assert.Equal(t, "Ada", v.ProfileDraft.FirstName)
	assert.Equal(t, "Lovelace", v.ProfileDraft.LastName)

	draft := *v.ProfileDraft
	draft.JobTitle = "Rigger"
	draft.ExperienceLevel = "Junior (2-4 years)"
	v, err = ctrl.SaveProfile(context.Background(), draft)
	require.NoError(t, err)

	assert.Equal(t, dashboard.StateReady, v.State)
	assert.True(t, v.ProfileComplete)
	assert.Equal(t, "ada@example.com", v.Profile.ContactEmail)
}

func TestDashboard_CreateToggleDelete(t *testing.T) {
	s := newSandbox(t)
	s.completeProfile(t)
	ctx := context.Background()
	ctrl := s.controller(s.token)

	v, err := ctrl.LoadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, dashboard.StateReady, v.State)
	assert.False(t, v.EquipmentComplete)

	v, err = ctrl.OpenAddEquipment()
	require.NoError(t, err)
	v, err = ctrl.UploadImages(ctx, []imagehost.File{imagehost.FromBytes("crane.jpg", []byte("jpeg"))}, upload.EquipmentImages)
	require.NoError(t, err)

	draft := *v.EquipmentDraft
	draft.EquipmentName = "Liebherr LTM 1050"
	draft.EquipmentType = "Mobile crane"
	v, err = ctrl.SubmitEquipment(ctx, draft, dashboard.Create())
	require.NoError(t, err)

	require.Len(t, v.Equipment, 1)
	created := v.Equipment[0]
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Ada Lovelace", created.ContactPerson)
	assert.Equal(t, []string{"https://img.example.com/crane.jpg"}, created.Images)
	assert.True(t, v.EquipmentComplete)

	v, err = ctrl.ToggleAvailability(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EquipmentOnHire, v.Equipment[0].Availability)

	stats := ctrl.RefreshStats(ctx).Stats
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.ActiveHires)

	v, err = ctrl.ToggleAvailability(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, v.Equipment[0])

	_, err = ctrl.SubmitEquipment(ctx, models.DraftFromItem(created), dashboard.Update("missing"))
	var remote *apperrors.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusNotFound, remote.Status)
	assert.Equal(t, "equipment not found", ctrl.View().LastError)

	_, err = ctrl.RequestDelete(created.ID)
	require.NoError(t, err)
	v, err = ctrl.ConfirmDelete(ctx)
	require.NoError(t, err)
	assert.Empty(t, v.Equipment)
	assert.Equal(t, dashboard.StateReady, v.State)
}

func TestDashboard_InvalidTokenIsUnauthenticated(t *testing.T) {
	s := newSandbox(t)
	forged, err := jwt.NewTokenManager("wrong", "x", 1).GenerateToken("u-1", "", "", "")
	require.NoError(t, err)

	v, err := s.controller(forged).LoadAll(context.Background())

	assert.ErrorIs(t, err, dashboard.ErrUnauthenticated)
	assert.False(t, v.Authenticated)
	assert.Equal(t, "Invalid authentication token", v.LastError)
}

func TestReviews_RoundTrip(t *testing.T) {
	s := newSandbox(t)
	ctx := context.Background()
	svc := reviews.NewService(s.client, credentials.Static(s.token))

	r, err := svc.Create(ctx, models.ReviewDraft{TargetUserID: "u-2", Rating: 4, Comment: "Reliable"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", r.AuthorID)

	_, err = svc.Create(ctx, models.ReviewDraft{TargetUserID: "u-2", Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	r, err = svc.Update(ctx, r.ID, models.ReviewDraft{TargetUserID: "u-2", Rating: 5, Comment: "Excellent"})
	require.NoError(t, err)
	assert.Equal(t, 5, r.Rating)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, r.ID))
	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
