package main

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/equipskill/equipskill-dashboard/internal/dashboard"
	"github.com/equipskill/equipskill-dashboard/internal/models"
)

var errProfileIncomplete = errors.New("complete your profile first with `equipskill profile edit`")

var equipmentCmd = &cobra.Command{
	Use:     "equipment",
	Aliases: []string{"eq"},
	Short:   "Manage your equipment listings",
}

var listEquipmentCmd = &cobra.Command{
	Use:   "list",
	Short: "List your equipment",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, v, err := loadDashboard(cmd)
		if err != nil {
			return err
		}
		cmd.Print(renderEquipment(v.Equipment))
		return nil
	},
}

var addEquipmentCmd = &cobra.Command{
	Use:     "add",
	Short:   "List a new piece of equipment",
	Example: `  equipskill equipment add --name "Liebherr LTM 1050" --type "Mobile crane" --image ./front.jpg --image ./side.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, v, err := loadReadyDashboard(cmd)
		if err != nil {
			return err
		}
		ctrl := application.Controller

		if v, err = ctrl.OpenAddEquipment(); err != nil {
			return err
		}
		return submitEquipment(cmd, ctrl, *v.EquipmentDraft, dashboard.Create())
	},
}

var editEquipmentCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an equipment listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _, err := loadReadyDashboard(cmd)
		if err != nil {
			return err
		}
		ctrl := application.Controller

		v, err := ctrl.OpenEditEquipment(args[0])
		if err != nil {
			return err
		}
		return submitEquipment(cmd, ctrl, *v.EquipmentDraft, dashboard.Update(args[0]))
	},
}

var uploadEquipmentCmd = &cobra.Command{
	Use:   "upload <id> <image>...",
	Short: "Attach images to an equipment listing",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _, err := loadReadyDashboard(cmd)
		if err != nil {
			return err
		}
		ctrl := application.Controller

		id := args[0]
		if _, err := ctrl.OpenEditEquipment(id); err != nil {
			return err
		}
		if err := uploadImages(cmd, ctrl, args[1:]); err != nil {
			return err
		}
		v, err := ctrl.SubmitEquipment(cmd.Context(), *ctrl.View().EquipmentDraft, dashboard.Update(id))
		if err != nil {
			return err
		}
		cmd.Println(successStyle.Render("Images attached."))
		cmd.Print(renderEquipment(v.Equipment))
		return nil
	},
}

var toggleEquipmentCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Switch a listing between available and on-hire",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _, err := loadDashboard(cmd)
		if err != nil {
			return err
		}
		v, err := application.Controller.ToggleAvailability(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if item, ok := models.FindEquipment(v.Equipment, args[0]); ok {
			cmd.Printf("%s is now %s\n", item.EquipmentName, successStyle.Render(string(item.Availability)))
		}
		return nil
	},
}

var deleteEquipmentCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an equipment listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _, err := loadReadyDashboard(cmd)
		if err != nil {
			return err
		}
		ctrl := application.Controller

		v, err := ctrl.RequestDelete(args[0])
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			item, _ := models.FindEquipment(v.Equipment, v.TargetID)
			cmd.Printf("Delete %s (%s)? [y/N] ", item.EquipmentName, item.ID)
			if !confirmed(cmd) {
				_, err := ctrl.CancelDelete()
				cmd.Println("Cancelled.")
				return err
			}
		}

		v, err = ctrl.ConfirmDelete(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Println(successStyle.Render("Deleted."))
		cmd.Print(renderEquipment(v.Equipment))
		return nil
	},
}

// loadReadyDashboard loads the dashboard and refuses to continue while the
// profile still needs its required fields.
func loadReadyDashboard(cmd *cobra.Command) (*App, dashboard.View, error) {
	application, v, err := loadDashboard(cmd)
	if err != nil {
		return nil, v, err
	}
	if v.State == dashboard.StateEditingProfile {
		return nil, v, errProfileIncomplete
	}
	return application, v, nil
}

func submitEquipment(cmd *cobra.Command, ctrl *dashboard.Controller, draft models.EquipmentDraft, mode dashboard.Mode) error {
	applyEquipmentFlags(cmd, &draft)
	if _, err := ctrl.SetEquipmentDraft(draft); err != nil {
		return err
	}
	if paths, _ := cmd.Flags().GetStringSlice("image"); len(paths) > 0 {
		if err := uploadImages(cmd, ctrl, paths); err != nil {
			return err
		}
	}

	v, err := ctrl.SubmitEquipment(cmd.Context(), *ctrl.View().EquipmentDraft, mode)
	if err != nil {
		return err
	}
	if mode.IsCreate() {
		cmd.Println(successStyle.Render("Equipment added."))
	} else {
		cmd.Println(successStyle.Render("Equipment updated."))
	}
	cmd.Print(renderEquipment(v.Equipment))
	return nil
}

func uploadImages(cmd *cobra.Command, ctrl *dashboard.Controller, paths []string) error {
	files, err := readFiles(paths)
	if err != nil {
		return err
	}
	_, err = ctrl.UploadImages(cmd.Context(), files, ctrl.Limits().EquipmentImages)
	return err
}

func applyEquipmentFlags(cmd *cobra.Command, d *models.EquipmentDraft) {
	flags := cmd.Flags()
	strs := map[string]*string{
		"name":           &d.EquipmentName,
		"type":           &d.EquipmentType,
		"location":       &d.Location,
		"contact-person": &d.ContactPerson,
		"contact-number": &d.ContactNumber,
		"contact-email":  &d.ContactEmail,
		"description":    &d.Description,
	}
	for name, dst := range strs {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed("availability") {
		a, _ := flags.GetString("availability")
		d.Availability = models.EquipmentAvailability(a)
	}
}

func confirmed(cmd *cobra.Command) bool {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func addEquipmentFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Equipment name")
	cmd.Flags().String("type", "", "Equipment type, e.g. Excavator")
	cmd.Flags().String("location", "", "Where the equipment is based")
	cmd.Flags().String("contact-person", "", "Contact person (defaults to your name)")
	cmd.Flags().String("contact-number", "", "Contact number (defaults to your phone)")
	cmd.Flags().String("contact-email", "", "Contact email (defaults to your email)")
	cmd.Flags().String("availability", "", "available or on-hire")
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().StringSlice("image", nil, "Path to an image to upload (repeatable)")
}

func init() {
	addEquipmentFlags(addEquipmentCmd)
	addEquipmentFlags(editEquipmentCmd)
	deleteEquipmentCmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")

	equipmentCmd.AddCommand(listEquipmentCmd, addEquipmentCmd, editEquipmentCmd, uploadEquipmentCmd,
		toggleEquipmentCmd, deleteEquipmentCmd)
}
