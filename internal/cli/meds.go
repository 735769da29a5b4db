package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/renalcare/internal/domain"
)

// MedsAddOptions holds flags for meds add.
type MedsAddOptions struct {
	*RootOptions
	Name      string
	Dosage    string
	Frequency string
	Reminders []string
}

// NewMedsCommand creates the meds command group.
func NewMedsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "meds",
		Aliases: []string{"medications"},
		Short:   "Manage medications and their reminder times",
	}
	cmd.AddCommand(newMedsAddCommand(rootOpts))
	cmd.AddCommand(newMedsListCommand(rootOpts))
	cmd.AddCommand(newMedsDeleteCommand(rootOpts))
	cmd.AddCommand(newMedsTakenCommand(rootOpts))
	return cmd
}

func newMedsAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MedsAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a medication",
		Long: `Add a medication for the active user. Reminder times are 24-hour
"HH:MM" values; without any, the medication is reminded at 08:00.

Example:
  renalcare meds add --name Losartan --dosage 50mg --frequency daily --reminder 08:00 --reminder 20:00`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				med, err := app.Tracker.AddMedication(ctx, domain.Medication{
					Name:      opts.Name,
					Dosage:    opts.Dosage,
					Frequency: opts.Frequency,
					Reminders: opts.Reminders,
				})
				if err != nil {
					return fail(f, err)
				}
				if f.Structured() {
					return f.Success(med)
				}
				return f.Success(fmt.Sprintf("Added %s (%s) %s, reminders %s",
					med.Name, med.Dosage, med.ID, strings.Join(med.Reminders, ", ")))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "medication name (required)")
	cmd.Flags().StringVar(&opts.Dosage, "dosage", "", "dosage, e.g. 50mg")
	cmd.Flags().StringVar(&opts.Frequency, "frequency", "", "how often, e.g. twice daily")
	cmd.Flags().StringSliceVar(&opts.Reminders, "reminder", nil, "reminder time HH:MM (repeatable)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newMedsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List active medications",
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
					return f.Success(state.Medications)
				}
				if len(state.Medications) == 0 {
					return f.Success("No medications")
				}
				return writeMedications(f, state.Medications)
			})
		},
	}
}

func writeMedications(f *OutputFormatter, meds []domain.Medication) error {
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDOSAGE\tFREQUENCY\tREMINDERS\tLAST TAKEN")
	for _, m := range meds {
		lastTaken := m.LastTaken
		if lastTaken == "" {
			lastTaken = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.Name, m.Dosage, m.Frequency, strings.Join(m.Reminders, ","), lastTaken)
	}
	return tw.Flush()
}

func newMedsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a medication",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				if err := app.Tracker.DeleteMedication(ctx, args[0]); err != nil {
					return fail(f, err)
				}
				if f.Structured() {
					return f.Success(map[string]string{"deleted": args[0]})
				}
				return f.Success("Deleted medication " + args[0])
			})
		},
	}
}

func newMedsTakenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "taken <id>",
		Short:         "Mark a medication as taken now",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				med, err := app.Tracker.MarkTaken(ctx, args[0])
				if err != nil {
					return fail(f, err)
				}
				if f.Structured() {
					return f.Success(med)
				}
				return f.Success(fmt.Sprintf("Marked %s taken at %s", med.Name, med.LastTaken))
			})
		},
	}
}
