package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/renalcare/internal/domain"
)

// MealsAddOptions holds flags for meals add.
type MealsAddOptions struct {
	*RootOptions
	Timestamp   string
	Description string
	ProteinG    float64
	SodiumMg    float64
	PotassiumMg float64
	Calories    float64
}

// NewMealsCommand creates the meals command group.
func NewMealsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meals",
		Short: "Log meals and their nutrients",
	}
	cmd.AddCommand(newMealsAddCommand(rootOpts))
	cmd.AddCommand(newMealsListCommand(rootOpts))
	return cmd
}

func newMealsAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MealsAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a meal",
		Long: `Log a meal with its nutrient content.

Example:
  renalcare meals add --description "Steamed fish, rice" --protein 22 --sodium 380 --potassium 410 --calories 520`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				meal, err := app.Tracker.AddMeal(ctx, domain.Meal{
					Timestamp:   opts.Timestamp,
					Description: opts.Description,
					ProteinG:    opts.ProteinG,
					SodiumMg:    opts.SodiumMg,
					PotassiumMg: opts.PotassiumMg,
					Calories:    opts.Calories,
				})
				if err != nil {
					return fail(f, err)
				}
				if f.Structured() {
					return f.Success(meal)
				}
				return f.Success(fmt.Sprintf("Logged meal %s at %s", meal.ID, meal.Timestamp))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Timestamp, "at", "", "RFC 3339 timestamp (default now)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "what was eaten (required)")
	cmd.Flags().Float64Var(&opts.ProteinG, "protein", 0, "protein, g")
	cmd.Flags().Float64Var(&opts.SodiumMg, "sodium", 0, "sodium, mg")
	cmd.Flags().Float64Var(&opts.PotassiumMg, "potassium", 0, "potassium, mg")
	cmd.Flags().Float64Var(&opts.Calories, "calories", 0, "energy, kcal")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newMealsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List logged meals, oldest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				state, err := app.Tracker.State(ctx)
				if err != nil {
					return fail(f, err)
				}
				if f.Structured() {
					return f.Success(state.Meals)
				}
				if len(state.Meals) == 0 {
					return f.Success("No meals logged")
				}
				tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TIMESTAMP\tDESCRIPTION\tPROTEIN g\tSODIUM mg\tPOTASSIUM mg\tKCAL")
				for _, m := range state.Meals {
					fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\t%g\n",
						m.Timestamp, m.Description, m.ProteinG, m.SodiumMg, m.PotassiumMg, m.Calories)
				}
				return tw.Flush()
			})
		},
	}
}
