package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/equipskill/equipskill-dashboard/internal/models"
	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Width(20)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func row(b *strings.Builder, label, value string) {
	if value == "" {
		value = mutedStyle.Render("-")
	} else {
		value = valueStyle.Render(value)
	}
	fmt.Fprintf(b, "%s %s\n", labelStyle.Render(label+":"), value)
}

func renderProfile(p models.Profile, complete bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Profile") + "\n")
	if !complete {
		b.WriteString(warnStyle.Render("Complete your job title and experience level to finish setup.") + "\n")
	}
	row(&b, "Name", p.FullName())
	row(&b, "Email", p.ContactEmail)
	row(&b, "Phone", p.ContactPhone)
	row(&b, "Location", p.Location)
	row(&b, "Job title", p.JobTitle)
	row(&b, "Experience", p.ExperienceLevel)
	row(&b, "Expected rate", formatRate(p.ExpectedRate))
	availability := string(p.Availability)
	if p.AvailableFromDate != "" {
		availability += " from " + p.AvailableFromDate
	}
	row(&b, "Availability", availability)
	row(&b, "Bio", p.Bio)
	row(&b, "CV", p.CVReference)
	row(&b, "Certificates", strconv.Itoa(len(p.CertificateReferences)))
	return b.String()
}

func formatRate(r models.Rate) string {
	if r.Amount == 0 {
		return ""
	}
	amount := strconv.FormatFloat(r.Amount, 'f', -1, 64)
	if r.CurrencyCode == "" {
		return amount
	}
	return amount + " " + r.CurrencyCode
}

func renderEquipment(items []models.EquipmentItem) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Equipment (%d)", len(items))) + "\n")
	if len(items) == 0 {
		b.WriteString(warnStyle.Render("No equipment listed yet. Add one with `equipment add`.") + "\n")
		return b.String()
	}
	for _, item := range items {
		status := successStyle.Render(string(item.Availability))
		if item.Availability == models.EquipmentOnHire {
			status = warnStyle.Render(string(item.Availability))
		}
		fmt.Fprintf(&b, "%s  %s  %s  %s\n",
			mutedStyle.Render(item.ID),
			valueStyle.Render(item.EquipmentName),
			mutedStyle.Render(item.EquipmentType),
			status)
		if item.Location != "" {
			fmt.Fprintf(&b, "    %s\n", mutedStyle.Render(item.Location))
		}
		if n := len(item.Images); n > 0 {
			fmt.Fprintf(&b, "    %s\n", mutedStyle.Render(fmt.Sprintf("%d/%d images", n, models.MaxEquipmentImages)))
		}
	}
	return b.String()
}

func renderStats(stats *models.DashboardStats) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Stats") + "\n")
	if stats == nil {
		b.WriteString(mutedStyle.Render("Stats are not available right now.") + "\n")
		return b.String()
	}
	row(&b, "Profile views", strconv.Itoa(stats.ProfileViews))
	row(&b, "Equipment views", strconv.Itoa(stats.EquipmentViews))
	row(&b, "Messages", strconv.Itoa(stats.Messages))
	row(&b, "Active hires", strconv.Itoa(stats.ActiveHires))
	return b.String()
}

func renderReviews(list []models.Review) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Reviews (%d)", len(list))) + "\n")
	if len(list) == 0 {
		b.WriteString(mutedStyle.Render("You have not written any reviews.") + "\n")
		return b.String()
	}
	for _, r := range list {
		fmt.Fprintf(&b, "%s  %s  %s\n",
			mutedStyle.Render(r.ID),
			valueStyle.Render(r.TargetUserID),
			successStyle.Render(stars(r.Rating)))
		if r.Comment != "" {
			fmt.Fprintf(&b, "    %s\n", r.Comment)
		}
	}
	return b.String()
}

func stars(rating int) string {
	rating = min(max(rating, 0), 5)
	return strings.Repeat("*", rating) + strings.Repeat(".", 5-rating)
}

func renderValidation(err *apperrors.ValidationError) string {
	if len(err.Fields) == 0 {
		return "validation failed"
	}
	lines := make([]string, 0, len(err.Fields)+1)
	lines = append(lines, "Please fix the following:")
	for _, f := range err.Fields {
		lines = append(lines, fmt.Sprintf("  %s: %s", f.Field, f.Reason))
	}
	return strings.Join(lines, "\n")
}
