package repository

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/equipskill/equipskill-dashboard/internal/models"
)

var equipmentTypes = []string{
	"Excavator", "Mobile crane", "Tower crane", "Wheel loader", "Telehandler", "Dump truck", "Forklift",
}

var jobTitles = []string{
	"Crane Operator", "Site Foreman", "Rigger", "Plant Mechanic", "Excavator Operator", "Banksman",
}

// SeedDemo fills the store with a realistic profile, listings and counters
// for userID. The same seed always produces the same data.
func (s *MemoryStore) SeedDemo(userID, email string, seed int64, listings int) models.Profile {
	f := gofakeit.New(seed)

	profile := models.Profile{
		UserID:          userID,
		FirstName:       f.FirstName(),
		LastName:        f.LastName(),
		ContactPhone:    f.Phone(),
		ContactEmail:    email,
		Location:        f.City(),
		JobTitle:        f.RandomString(jobTitles),
		ExperienceLevel: f.RandomString(models.ExperienceLevels),
		ExpectedRate: models.Rate{
			Amount:       float64(f.Number(25, 90)),
			CurrencyCode: "GBP",
		},
		Bio:                   f.Sentence(18),
		Availability:          models.ProfileAvailable,
		CertificateReferences: []string{},
	}
	if profile.ContactEmail == "" {
		profile.ContactEmail = strings.ToLower(f.Email())
	}

	items := make([]models.EquipmentItem, 0, listings)
	for i := 0; i < listings; i++ {
		kind := f.RandomString(equipmentTypes)
		availability := models.EquipmentAvailable
		if f.Bool() {
			availability = models.EquipmentOnHire
		}
		items = append(items, models.EquipmentItem{
			ID:            fmt.Sprintf("demo-%s-%d", userID, i+1),
			EquipmentName: fmt.Sprintf("%s %s", f.Company(), kind),
			EquipmentType: kind,
			Location:      f.City(),
			ContactPerson: profile.FullName(),
			ContactNumber: profile.ContactPhone,
			ContactEmail:  profile.ContactEmail,
			Availability:  availability,
			Description:   f.Sentence(12),
			Images:        []string{f.ImageURL(640, 480)},
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = profile
	s.equipment[userID] = items
	s.counters[userID] = counters{
		profileViews:   f.Number(10, 500),
		equipmentViews: f.Number(10, 900),
		messages:       f.Number(0, 25),
	}
	return cloneProfile(profile)
}
