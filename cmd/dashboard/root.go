package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/equipskill/equipskill-dashboard/internal/dashboard"
	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
)

const sessionExpiredMessage = "session expired, please log in"

var rootCmd = &cobra.Command{
	Use:   "equipskill",
	Short: "Manage your EquipSkill professional profile and equipment listings",
	Long: `equipskill is the dashboard for the EquipSkill marketplace.
It keeps your manpower profile and equipment listings in sync with the marketplace API.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		application, err := newApp(verbose)
		if err != nil {
			return err
		}
		cmd.SetContext(withApp(cmd.Context(), application))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application, err := appFromContext(cmd.Context()); err == nil {
			application.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log requests to stdout")

	rootCmd.AddCommand(showCmd, profileCmd, equipmentCmd, statsCmd, reviewsCmd)
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(errorText(err)))
		os.Exit(exitCode(err))
	}
}

func errorText(err error) string {
	if errors.Is(err, dashboard.ErrUnauthenticated) {
		return sessionExpiredMessage
	}
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		return renderValidation(verr)
	}
	return apperrors.Message(err)
}

func exitCode(err error) int {
	if errors.Is(err, dashboard.ErrUnauthenticated) {
		return 2
	}
	return 1
}

// loadDashboard fetches both aggregates. An auth failure on this first load
// is reported as an expired session.
func loadDashboard(cmd *cobra.Command) (*App, dashboard.View, error) {
	application, err := appFromContext(cmd.Context())
	if err != nil {
		return nil, dashboard.View{}, err
	}
	v, err := application.Controller.LoadAll(cmd.Context())
	if err != nil {
		return nil, v, err
	}
	return application, v, nil
}
