package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/tracker"
)

// NewProfileCommand creates the profile command group.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "profile",
		Short:         "Show or update the active user's profile",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(rootOpts, cmd)
		},
	}
	cmd.AddCommand(newProfileUpdateCommand(rootOpts))
	return cmd
}

func newProfileUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		name, password, diagnosed, gender, stage, targetBP string
		age                                                int
		weight                                             float64
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields",
		Long: `Change the profile fields given as flags; others are left as they are.
The email cannot be changed.

Example:
  renalcare profile update --stage 3a --diagnosed 2021-06-01 --target-bp 130/80`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch tracker.ProfilePatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("password") {
				patch.Password = &password
			}
			if flags.Changed("diagnosed") {
				patch.DiagnosedDate = &diagnosed
			}
			if flags.Changed("age") {
				patch.Age = &age
			}
			if flags.Changed("gender") {
				g := domain.Gender(gender)
				patch.Gender = &g
			}
			if flags.Changed("stage") {
				s := domain.CKDStage(stage)
				patch.CKDStage = &s
			}
			if flags.Changed("target-bp") {
				patch.TargetBloodPressure = &targetBP
			}
			if flags.Changed("weight") {
				patch.BaselineWeight = &weight
			}

			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				user, err := app.Tracker.UpdateProfile(ctx, patch)
				if err != nil {
					return fail(f, err)
				}
				if f.Structured() {
					return f.Success(user)
				}
				return f.Success(fmt.Sprintf("Updated profile for %s", user.Email))
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (stored, not verified)")
	cmd.Flags().StringVar(&diagnosed, "diagnosed", "", "diagnosis date, YYYY-MM-DD")
	cmd.Flags().IntVar(&age, "age", 0, "age in years")
	cmd.Flags().StringVar(&gender, "gender", "", "male|female|other")
	cmd.Flags().StringVar(&stage, "stage", "", "CKD stage (1|2|3a|3b|4|5|unknown)")
	cmd.Flags().StringVar(&targetBP, "target-bp", "", "target blood pressure, e.g. 130/80")
	cmd.Flags().Float64Var(&weight, "weight", 0, "baseline weight, kg")

	return cmd
}
