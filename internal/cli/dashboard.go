package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/renalcare/internal/tracker"
)

// NewDashboardCommand creates the dashboard command.
func NewDashboardCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summarize the latest readings and today's intake",
		Long: `Show the newest value of each reading, today's meal totals and the
medication schedule for the active user.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				d, err := app.Tracker.Dashboard(ctx)
				if err != nil {
					return fail(f, err)
				}
				if f.Structured() {
					return f.Success(d)
				}
				writeDashboard(f.Writer, d)
				return nil
			})
		},
	}
}

func writeDashboard(w io.Writer, d tracker.Dashboard) {
	fmt.Fprintf(w, "%s <%s>\n", d.User.Name, d.User.Email)
	if d.User.CKDStage != "" {
		fmt.Fprintf(w, "CKD stage:      %s\n", d.User.CKDStage)
	}
	if d.DiagnosedFor != "" {
		fmt.Fprintf(w, "Diagnosed for:  %s\n", d.DiagnosedFor)
	}

	fmt.Fprintln(w)
	bp := "-"
	if d.BP != nil {
		bp = d.BP.String() + " mmHg"
		if d.User.TargetBloodPressure != "" {
			bp += " (target " + d.User.TargetBloodPressure + ")"
		}
	}
	fmt.Fprintf(w, "Blood pressure: %s\n", bp)
	fmt.Fprintf(w, "eGFR:           %s\n", optional(d.EGFR))
	fmt.Fprintf(w, "Creatinine:     %s\n", optional(d.Creatinine))
	fmt.Fprintf(w, "Uric acid:      %s\n", optional(d.UricAcid))
	fmt.Fprintf(w, "Weight:         %s\n", optional(d.Weight))
	protein := string(d.UrineProtein)
	if protein == "" {
		protein = "-"
	}
	fmt.Fprintf(w, "Urine protein:  %s\n", protein)
	fmt.Fprintf(w, "Vital records:  %d\n", d.Vitals)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Today: %d meal(s), protein %gg, sodium %gmg, potassium %gmg, %g kcal\n",
		d.Today.Meals, d.Today.ProteinG, d.Today.SodiumMg, d.Today.PotassiumMg, d.Today.Calories)

	if len(d.Medications) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Medications:")
		for _, m := range d.Medications {
			fmt.Fprintf(w, "  %s %s at %s\n", m.Name, m.Dosage, strings.Join(m.Reminders, ", "))
		}
	}
}
