package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/equipskill/equipskill-dashboard/internal/models"
	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
)

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Manage reviews you have written",
}

var listReviewsCmd = &cobra.Command{
	Use:   "list",
	Short: "List your reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromContext(cmd.Context())
		if err != nil {
			return err
		}
		list, err := application.Reviews.List(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Print(renderReviews(list))
		return nil
	},
}

var addReviewCmd = &cobra.Command{
	Use:     "add",
	Short:   "Review another marketplace user",
	Example: `  equipskill reviews add --user u-42 --rating 5 --comment "Great operator"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromContext(cmd.Context())
		if err != nil {
			return err
		}
		d := models.ReviewDraft{}
		d.TargetUserID, _ = cmd.Flags().GetString("user")
		d.Rating, _ = cmd.Flags().GetInt("rating")
		d.Comment, _ = cmd.Flags().GetString("comment")

		r, err := application.Reviews.Create(cmd.Context(), d)
		if err != nil {
			return err
		}
		cmd.Println(successStyle.Render(fmt.Sprintf("Review %s added.", r.ID)))
		return nil
	},
}

var editReviewCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the rating or comment of a review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromContext(cmd.Context())
		if err != nil {
			return err
		}
		list, err := application.Reviews.List(cmd.Context())
		if err != nil {
			return err
		}
		current, ok := findReview(list, args[0])
		if !ok {
			return apperrors.NotFoundError("review " + args[0])
		}

		d := models.ReviewDraft{TargetUserID: current.TargetUserID, Rating: current.Rating, Comment: current.Comment}
		if cmd.Flags().Changed("rating") {
			d.Rating, _ = cmd.Flags().GetInt("rating")
		}
		if cmd.Flags().Changed("comment") {
			d.Comment, _ = cmd.Flags().GetString("comment")
		}

		if _, err := application.Reviews.Update(cmd.Context(), current.ID, d); err != nil {
			return err
		}
		cmd.Println(successStyle.Render("Review updated."))
		return nil
	},
}

var deleteReviewCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			cmd.Printf("Delete review %s? [y/N] ", args[0])
			if !confirmed(cmd) {
				cmd.Println("Cancelled.")
				return nil
			}
		}
		if err := application.Reviews.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Println(successStyle.Render("Review deleted."))
		return nil
	},
}

func findReview(list []models.Review, id string) (models.Review, bool) {
	for _, r := range list {
		if r.ID == id {
			return r, true
		}
	}
	return models.Review{}, false
}

func init() {
	addReviewCmd.Flags().String("user", "", "ID of the user you are reviewing")
	addReviewCmd.Flags().Int("rating", 0, "Rating from 1 to 5")
	addReviewCmd.Flags().String("comment", "", "Comment")
	_ = addReviewCmd.MarkFlagRequired("user") //nolint:errcheck

	editReviewCmd.Flags().Int("rating", 0, "Rating from 1 to 5")
	editReviewCmd.Flags().String("comment", "", "Comment")

	deleteReviewCmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")

	reviewsCmd.AddCommand(listReviewsCmd, addReviewCmd, editReviewCmd, deleteReviewCmd)
}
