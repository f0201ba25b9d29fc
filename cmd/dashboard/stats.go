package main

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show profile views, equipment views, messages and active hires",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromContext(cmd.Context())
		if err != nil {
			return err
		}
		v := application.Controller.RefreshStats(cmd.Context())
		cmd.Print(renderStats(v.Stats))
		return nil
	},
}
