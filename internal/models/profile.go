package models

import "strings"

// ProfileAvailability is the manpower side availability.
type ProfileAvailability string

const (
	ProfileAvailable ProfileAvailability = "available"
	ProfileBusy      ProfileAvailability = "busy"
)

// ExperienceLevels is the fixed ordered list offered by the profile form.
var ExperienceLevels = []string{
	"Entry Level (0-2 years)",
	"Junior (2-4 years)",
	"Mid-Level (4-7 years)",
	"Senior (7-10 years)",
	"Expert (10+ years)",
}

// IsExperienceLevel reports whether level is one of ExperienceLevels.
func IsExperienceLevel(level string) bool {
	for _, l := range ExperienceLevels {
		if l == level {
			return true
		}
	}
	return false
}

// DateLayout is the wire format of availableFromDate.
const DateLayout = "2006-01-02"

// Rate is an expected pay rate.
type Rate struct {
	Amount       float64 `json:"amount" validate:"gte=0"`
	CurrencyCode string  `json:"currencyCode" validate:"omitempty,iso4217"`
}

// Profile is the professional (manpower) aggregate of one user.
type Profile struct {
	UserID                string              `json:"userId"`
	FirstName             string              `json:"firstName"`
	LastName              string              `json:"lastName"`
	ContactPhone          string              `json:"contactPhone"`
	ContactEmail          string              `json:"contactEmail"`
	Location              string              `json:"location"`
	JobTitle              string              `json:"jobTitle"`
	ExperienceLevel       string              `json:"experienceLevel"`
	ExpectedRate          Rate                `json:"expectedRate"`
	Bio                   string              `json:"bio"`
	Availability          ProfileAvailability `json:"availability"`
	AvailableFromDate     string              `json:"availableFromDate,omitempty"`
	CVReference           string              `json:"cvReference,omitempty"`
	CertificateReferences []string            `json:"certificateReferences"`
}

// FullName joins first and last name, trimmed.
func (p Profile) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// IsProfileComplete reports whether the profile has enough data to skip the
// forced edit mode: a job title and an experience level.
func IsProfileComplete(p Profile) bool {
	return p.JobTitle != "" && p.ExperienceLevel != ""
}

// ProfileDraft is the editable copy of a Profile. ContactEmail is not part of
// the draft; it is immutable from this client.
type ProfileDraft struct {
	FirstName             string              `json:"firstName" validate:"max=100"`
	LastName              string              `json:"lastName" validate:"max=100"`
	ContactPhone          string              `json:"contactPhone" validate:"max=30"`
	Location              string              `json:"location" validate:"max=200"`
	JobTitle              string              `json:"jobTitle" validate:"nonblank,max=200"`
	ExperienceLevel       string              `json:"experienceLevel" validate:"nonblank,experience_level"`
	ExpectedRate          Rate                `json:"expectedRate"`
	Bio                   string              `json:"bio" validate:"max=1000"`
	Availability          ProfileAvailability `json:"availability" validate:"omitempty,oneof=available busy"`
	AvailableFromDate     string              `json:"availableFromDate" validate:"omitempty,datetime=2006-01-02"`
	CVReference           string              `json:"cvReference"`
	CertificateReferences []string            `json:"certificateReferences"`
}

// NewProfileDraft copies the editable fields of p.
func NewProfileDraft(p Profile) ProfileDraft {
	d := ProfileDraft{
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		ContactPhone:      p.ContactPhone,
		Location:          p.Location,
		JobTitle:          p.JobTitle,
		ExperienceLevel:   p.ExperienceLevel,
		ExpectedRate:      p.ExpectedRate,
		Bio:               p.Bio,
		Availability:      p.Availability,
		AvailableFromDate: p.AvailableFromDate,
		CVReference:       p.CVReference,
	}
	if d.Availability == "" {
		d.Availability = ProfileAvailable
	}
	d.CertificateReferences = append([]string(nil), p.CertificateReferences...)
	return d
}

// Apply returns the full record sent on save: the draft's fields over base's
// identity and immutable contact email.
func (d ProfileDraft) Apply(base Profile) Profile {
	certs := append([]string{}, d.CertificateReferences...)
	p := Profile{
		UserID:                base.UserID,
		FirstName:             strings.TrimSpace(d.FirstName),
		LastName:              strings.TrimSpace(d.LastName),
		ContactPhone:          strings.TrimSpace(d.ContactPhone),
		ContactEmail:          base.ContactEmail,
		Location:              strings.TrimSpace(d.Location),
		JobTitle:              strings.TrimSpace(d.JobTitle),
		ExperienceLevel:       d.ExperienceLevel,
		ExpectedRate:          d.ExpectedRate,
		Bio:                   d.Bio,
		Availability:          d.Availability,
		AvailableFromDate:     d.AvailableFromDate,
		CVReference:           d.CVReference,
		CertificateReferences: certs,
	}
	if p.Availability == "" {
		p.Availability = ProfileAvailable
	}
	if p.Availability == ProfileAvailable {
		p.AvailableFromDate = ""
	}
	return p
}
