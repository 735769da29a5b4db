package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewInsightsCommand creates the insights command.
func NewInsightsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Ask the model for a report on recent records",
		Long: `Send the five most recent vital records, the meals and the medication
list to the model and print its report. Needs gemini.api_key (or
GEMINI_API_KEY) and at least one vital record.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				report, err := app.Tracker.Insights(ctx)
				if err != nil {
					return fail(f, err)
				}
				if f.Structured() {
					return f.Success(map[string]string{"report": report})
				}
				return f.Success(strings.TrimSpace(report))
			})
		},
	}
}

// NewRecommendCommand creates the recommend command.
func NewRecommendCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Suggest kidney-friendly dishes",
		Long: `Ask the model for three kidney-friendly dishes. When the model is not
configured or fails, a built-in list is shown instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				recs, fallback := app.Tracker.Recommendations(ctx)
				if f.Structured() {
					return f.Success(map[string]any{"fallback": fallback, "recommendations": recs})
				}
				for i, r := range recs {
					if i > 0 {
						fmt.Fprintln(f.Writer)
					}
					fmt.Fprintf(f.Writer, "%s [%s]\n  %s\n  %s\n", r.Name, strings.Join(r.Tags, ", "), r.Reason, r.Recipe)
				}
				if fallback {
					fmt.Fprintln(f.Writer, "\n(built-in suggestions)")
				}
				return nil
			})
		},
	}
}

// NewLabCommand creates the lab command group.
func NewLabCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lab",
		Short: "Read lab reports with the model",
	}
	cmd.AddCommand(newLabScanCommand(rootOpts))
	return cmd
}

func newLabScanCommand(rootOpts *RootOptions) *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "scan <file>",
		Short: "Extract readings from a lab report",
		Long: `Ask the model to read a lab report image or PDF. Without --apply the
readings are only shown; with --apply they are recorded as a vital record
dated at the report date.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			doc, err := readDocument(args[0])
			if err != nil {
				return failInput(f, "read %s: %v", args[0], err)
			}

			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				report, err := app.Tracker.ScanLabReport(ctx, doc)
				if err != nil {
					return fail(f, err)
				}
				if !apply {
					if f.Structured() {
						return f.Success(report)
					}
					fmt.Fprintf(f.Writer, "Report date:    %s\n", report.ReportDate)
					fmt.Fprintf(f.Writer, "Blood pressure: %g/%g\n", report.BloodPressureSys, report.BloodPressureDia)
					fmt.Fprintf(f.Writer, "Weight:         %g\n", report.Weight)
					fmt.Fprintf(f.Writer, "Urine protein:  %s\n", report.UrineProtein)
					fmt.Fprintf(f.Writer, "Creatinine:     %s\n", optional(report.Creatinine))
					fmt.Fprintf(f.Writer, "Uric acid:      %s\n", optional(report.UricAcid))
					fmt.Fprintf(f.Writer, "eGFR:           %s\n", optional(report.EGFR))
					return f.Success("Run again with --apply to save.")
				}
				v, err := app.Tracker.ApplyLabReport(ctx, *report)
				if err != nil {
					return fail(f, err)
				}
				if f.Structured() {
					return f.Success(v)
				}
				return f.Success(fmt.Sprintf("Recorded vitals %s at %s", v.ID, v.Timestamp))
			})
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "record the readings as a vital record")
	return cmd
}
