package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/equipskill/equipskill-dashboard/internal/dashboard"
	"github.com/equipskill/equipskill-dashboard/internal/imagehost"
	"github.com/equipskill/equipskill-dashboard/internal/models"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and edit your manpower profile",
}

var showProfileCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, v, err := loadDashboard(cmd)
		if err != nil {
			return err
		}
		cmd.Print(renderProfile(v.Profile, v.ProfileComplete))
		return nil
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit your profile",
	Example: `  equipskill profile edit --job-title "Crane Operator" --experience "Expert (10+ years)"
  equipskill profile edit --availability busy --available-from 2026-11-01
  equipskill profile edit --cv ./cv.pdf --certificate ./cpcs.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, v, err := loadDashboard(cmd)
		if err != nil {
			return err
		}
		ctrl := application.Controller

		if v.State != dashboard.StateEditingProfile {
			if v, err = ctrl.OpenEditProfile(); err != nil {
				return err
			}
		}

		draft := *v.ProfileDraft
		applyProfileFlags(cmd, &draft)
		if _, err := ctrl.SetProfileDraft(draft); err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("cv"); path != "" {
			f, err := imagehost.FromPath(path)
			if err != nil {
				return fmt.Errorf("read cv: %w", err)
			}
			if _, err := ctrl.UploadCV(cmd.Context(), f); err != nil {
				return err
			}
		}
		if paths, _ := cmd.Flags().GetStringSlice("certificate"); len(paths) > 0 {
			files, err := readFiles(paths)
			if err != nil {
				return err
			}
			if _, err := ctrl.UploadCertificates(cmd.Context(), files); err != nil {
				return err
			}
		}

		v, err = ctrl.SaveProfile(cmd.Context(), *ctrl.View().ProfileDraft)
		if err != nil {
			return err
		}
		cmd.Println(successStyle.Render("Profile saved."))
		cmd.Print(renderProfile(v.Profile, v.ProfileComplete))
		return nil
	},
}

// applyProfileFlags copies every flag the user set onto d.
func applyProfileFlags(cmd *cobra.Command, d *models.ProfileDraft) {
	flags := cmd.Flags()
	strs := map[string]*string{
		"first-name":     &d.FirstName,
		"last-name":      &d.LastName,
		"phone":          &d.ContactPhone,
		"location":       &d.Location,
		"job-title":      &d.JobTitle,
		"experience":     &d.ExperienceLevel,
		"bio":            &d.Bio,
		"currency":       &d.ExpectedRate.CurrencyCode,
		"available-from": &d.AvailableFromDate,
	}
	for name, dst := range strs {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed("rate") {
		d.ExpectedRate.Amount, _ = flags.GetFloat64("rate")
	}
	if flags.Changed("availability") {
		a, _ := flags.GetString("availability")
		d.Availability = models.ProfileAvailability(a)
		if d.Availability == models.ProfileAvailable && !flags.Changed("available-from") {
			d.AvailableFromDate = ""
		}
	}
}

func readFiles(paths []string) ([]imagehost.File, error) {
	files := make([]imagehost.File, 0, len(paths))
	for _, p := range paths {
		f, err := imagehost.FromPath(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, f)
	}
	return files, nil
}

func init() {
	editProfileCmd.Flags().String("first-name", "", "First name")
	editProfileCmd.Flags().String("last-name", "", "Last name")
	editProfileCmd.Flags().String("phone", "", "Contact phone")
	editProfileCmd.Flags().String("location", "", "Location")
	editProfileCmd.Flags().String("job-title", "", "Job title")
	editProfileCmd.Flags().String("experience", "", "Experience level, e.g. \"Mid-Level (4-7 years)\"")
	editProfileCmd.Flags().Float64("rate", 0, "Expected rate amount")
	editProfileCmd.Flags().String("currency", "", "Expected rate currency code, e.g. GBP")
	editProfileCmd.Flags().String("bio", "", "Short bio")
	editProfileCmd.Flags().String("availability", "", "available or busy")
	editProfileCmd.Flags().String("available-from", "", "Date you are available from (YYYY-MM-DD)")
	editProfileCmd.Flags().String("cv", "", "Path to a CV to upload, replacing the current one")
	editProfileCmd.Flags().StringSlice("certificate", nil, "Path to a certificate to upload (repeatable)")

	profileCmd.AddCommand(showProfileCmd, editProfileCmd)
}
