package models_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipskill/equipskill-dashboard/internal/models"
	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
)

func sampleProfile() models.Profile {
	return models.Profile{
		UserID:          "u-1",
		FirstName:       "  Ada ",
		LastName:        "Lovelace  ",
		ContactPhone:    "+44 20 7946 0000",
		ContactEmail:    "ada@example.com",
		Location:        "London",
		JobTitle:        "Crane Operator",
		ExperienceLevel: "Senior (7-10 years)",
		Availability:    models.ProfileAvailable,
	}
}

func validEquipmentDraft() models.EquipmentDraft {
	d := models.NewEquipmentDraft(sampleProfile())
	d.EquipmentName = "CAT 320"
	d.EquipmentType = "Excavator"
	return d
}

func TestIsProfileComplete(t *testing.T) {
	tests := []struct {
		name     string
		jobTitle string
		level    string
		want     bool
	}{
		{"both set", "Welder", "Junior (2-4 years)", true},
		{"missing job title", "", "Junior (2-4 years)", false},
		{"missing experience", "Welder", "", false},
		{"both missing", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.Profile{JobTitle: tt.jobTitle, ExperienceLevel: tt.level}
			assert.Equal(t, tt.want, models.IsProfileComplete(p))
		})
	}
}

func TestIsEquipmentComplete(t *testing.T) {
	assert.False(t, models.IsEquipmentComplete(nil))
	assert.False(t, models.IsEquipmentComplete([]models.EquipmentItem{}))
	assert.True(t, models.IsEquipmentComplete([]models.EquipmentItem{{ID: "e-1"}}))
}

func TestNewEquipmentDraft_DefaultsFromProfile(t *testing.T) {
	p := sampleProfile()

	d := models.NewEquipmentDraft(p)

	assert.Equal(t, "Ada Lovelace", d.ContactPerson)
	assert.Equal(t, p.ContactPhone, d.ContactNumber)
	assert.Equal(t, p.ContactEmail, d.ContactEmail)
	assert.Equal(t, "London", d.Location)
	assert.Equal(t, models.EquipmentAvailable, d.Availability)
	assert.Empty(t, d.Images)
	assert.NotNil(t, d.Images)
}

func TestNewEquipmentDraft_MissingLastName(t *testing.T) {
	p := sampleProfile()
	p.LastName = ""

	assert.Equal(t, "Ada", models.NewEquipmentDraft(p).ContactPerson)
}

func TestEquipmentDraft_ToItemTrimsAndDefaults(t *testing.T) {
	d := validEquipmentDraft()
	d.EquipmentName = "  CAT 320  "
	d.Availability = ""
	d.Images = []string{"https://img/1.jpg"}

	item := d.ToItem("e-9")

	assert.Equal(t, "e-9", item.ID)
	assert.Equal(t, "CAT 320", item.EquipmentName)
	assert.Equal(t, models.EquipmentAvailable, item.Availability)
	assert.Equal(t, []string{"https://img/1.jpg"}, item.Images)

	d.Images[0] = "changed"
	assert.Equal(t, "https://img/1.jpg", item.Images[0])
}

func TestWithToggledAvailability_OnlyAvailabilityChanges(t *testing.T) {
	item := models.EquipmentItem{
		ID:            "e-1",
		EquipmentName: "Loader",
		EquipmentType: "Wheel loader",
		ContactPerson: "Ada Lovelace",
		Availability:  models.EquipmentAvailable,
		Images:        []string{"a", "b"},
	}

	toggled := item.WithToggledAvailability()
	assert.Equal(t, models.EquipmentOnHire, toggled.Availability)

	back := toggled.WithToggledAvailability()
	assert.Equal(t, item, back)

	toggled.Availability = item.Availability
	assert.Equal(t, item, toggled)
}

func TestFindEquipment(t *testing.T) {
	items := []models.EquipmentItem{{ID: "a"}, {ID: "b", Images: []string{"x"}}}

	got, ok := models.FindEquipment(items, "b")
	require.True(t, ok)
	got.Images[0] = "y"
	assert.Equal(t, "x", items[1].Images[0])

	_, ok = models.FindEquipment(items, "missing")
	assert.False(t, ok)
}

func TestValidateEquipmentDraft_ReportsEveryRequiredField(t *testing.T) {
	err := models.ValidateEquipmentDraft(models.EquipmentDraft{ContactPerson: "   "})
	require.Error(t, err)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	for _, field := range []string{"equipmentName", "equipmentType", "contactPerson", "contactNumber", "contactEmail"} {
		assert.True(t, verr.HasField(field), field)
	}
	assert.False(t, verr.HasField("location"))
}

func TestValidateEquipmentDraft_Valid(t *testing.T) {
	assert.NoError(t, models.ValidateEquipmentDraft(validEquipmentDraft()))
}

func TestValidateEquipmentDraft_TooManyImages(t *testing.T) {
	d := validEquipmentDraft()
	d.Images = []string{"1", "2", "3", "4", "5", "6"}

	var verr *apperrors.ValidationError
	require.ErrorAs(t, models.ValidateEquipmentDraft(d), &verr)
	assert.True(t, verr.HasField("images"))
}

func TestValidateProfileDraft(t *testing.T) {
	today := time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)
	base := models.NewProfileDraft(sampleProfile())

	tests := []struct {
		name      string
		mutate    func(d *models.ProfileDraft)
		wantField string
	}{
		{"valid", func(d *models.ProfileDraft) {}, ""},
		{"busy without date is accepted", func(d *models.ProfileDraft) { d.Availability = models.ProfileBusy }, ""},
		{"busy from today", func(d *models.ProfileDraft) {
			d.Availability = models.ProfileBusy
			d.AvailableFromDate = "2026-03-10"
		}, ""},
		{"date in the past", func(d *models.ProfileDraft) {
			d.Availability = models.ProfileBusy
			d.AvailableFromDate = "2026-03-09"
		}, "availableFromDate"},
		{"malformed date", func(d *models.ProfileDraft) { d.AvailableFromDate = "10/03/2026" }, "availableFromDate"},
		{"bio over limit", func(d *models.ProfileDraft) { d.Bio = strings.Repeat("a", 1001) }, "bio"},
		{"bio at limit", func(d *models.ProfileDraft) { d.Bio = strings.Repeat("a", 1000) }, ""},
		{"unknown experience level", func(d *models.ProfileDraft) { d.ExperienceLevel = "Wizard" }, "experienceLevel"},
		{"missing job title", func(d *models.ProfileDraft) { d.JobTitle = "" }, "jobTitle"},
		{"single name user", func(d *models.ProfileDraft) { d.LastName = "" }, ""},
		{"no name at all", func(d *models.ProfileDraft) { d.FirstName, d.LastName = "", "" }, ""},
		{"last name over limit", func(d *models.ProfileDraft) { d.LastName = strings.Repeat("a", 101) }, "lastName"},
		{"negative rate", func(d *models.ProfileDraft) { d.ExpectedRate.Amount = -1 }, "expectedRate.amount"},
		{"bad currency", func(d *models.ProfileDraft) { d.ExpectedRate.CurrencyCode = "XXQ" }, "expectedRate.currencyCode"},
		{"unknown availability", func(d *models.ProfileDraft) { d.Availability = "asleep" }, "availability"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base
			tt.mutate(&d)

			err := models.ValidateProfileDraft(d, today)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, verr.HasField(tt.wantField), verr.Error())
		})
	}
}

func TestProfileDraft_ApplyKeepsContactEmail(t *testing.T) {
	p := sampleProfile()
	d := models.NewProfileDraft(p)
	d.JobTitle = " Site Foreman "
	d.AvailableFromDate = "2030-01-01"

	saved := d.Apply(p)

	assert.Equal(t, p.ContactEmail, saved.ContactEmail)
	assert.Equal(t, p.UserID, saved.UserID)
	assert.Equal(t, "Site Foreman", saved.JobTitle)
	assert.Empty(t, saved.AvailableFromDate, "available profiles carry no start date")
}

func TestValidateReviewDraft(t *testing.T) {
	assert.NoError(t, models.ValidateReviewDraft(models.ReviewDraft{TargetUserID: "u-2", Rating: 5}))

	var verr *apperrors.ValidationError
	require.ErrorAs(t, models.ValidateReviewDraft(models.ReviewDraft{Rating: 0}), &verr)
	assert.True(t, verr.HasField("targetUserId"))
	assert.True(t, verr.HasField("rating"))
}

func TestValidator_CustomRules(t *testing.T) {
	require.NotPanics(t, func() { models.Validator() })
	v := models.Validator()
	assert.Same(t, v, models.Validator())

	type sample struct {
		Name  string `validate:"nonblank"`
		Level string `validate:"experience_level"`
	}
	assert.NoError(t, v.Struct(sample{Name: "Ada", Level: "Senior (7-10 years)"}))
	assert.Error(t, v.Struct(sample{Name: "   ", Level: "Senior (7-10 years)"}))
	assert.Error(t, v.Struct(sample{Name: "Ada", Level: "Wizard"}))
}
