package main

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile, equipment and stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, v, err := loadDashboard(cmd)
		if err != nil {
			return err
		}
		v = application.Controller.RefreshStats(cmd.Context())

		cmd.Println(renderProfile(v.Profile, v.ProfileComplete))
		cmd.Println(renderEquipment(v.Equipment))
		cmd.Print(renderStats(v.Stats))
		return nil
	},
}
