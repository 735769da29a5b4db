package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/renalcare/internal/domain"
)

// VitalsAddOptions holds flags for vitals add.
type VitalsAddOptions struct {
	*RootOptions
	Timestamp    string
	Sys          float64
	Dia          float64
	Weight       float64
	UrineProtein string
	Edema        int
	Creatinine   float64
	UricAcid     float64
	EGFR         float64
	Symptoms     []string
}

// NewVitalsCommand creates the vitals command group.
func NewVitalsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vitals",
		Short: "Record and list vital signs",
	}
	cmd.AddCommand(newVitalsAddCommand(rootOpts))
	cmd.AddCommand(newVitalsListCommand(rootOpts))
	return cmd
}

func newVitalsAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VitalsAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a vital-signs entry",
		Long: `Record a vital-signs entry for the active user. Readings left out are
stored as zero, except the lab values, which are stored only when given.

Example:
  renalcare vitals add --sys 128 --dia 82 --weight 64.5 --protein trace --edema 1
  renalcare vitals add --egfr 48 --creatinine 1.6`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := domain.VitalRecord{
				Timestamp:        opts.Timestamp,
				BloodPressureSys: opts.Sys,
				BloodPressureDia: opts.Dia,
				Weight:           opts.Weight,
				UrineProtein:     domain.UrineProtein(opts.UrineProtein),
				EdemaLevel:       opts.Edema,
				Symptoms:         opts.Symptoms,
			}
			if cmd.Flags().Changed("creatinine") {
				v.Creatinine = &opts.Creatinine
			}
			if cmd.Flags().Changed("uric-acid") {
				v.UricAcid = &opts.UricAcid
			}
			if cmd.Flags().Changed("egfr") {
				v.EGFR = &opts.EGFR
			}

			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				saved, err := app.Tracker.AddVital(ctx, v)
				if err != nil {
					return fail(f, err)
				}
				if f.Structured() {
					return f.Success(saved)
				}
				return f.Success(fmt.Sprintf("Recorded vitals %s at %s", saved.ID, saved.Timestamp))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Timestamp, "at", "", "RFC 3339 timestamp (default now)")
	cmd.Flags().Float64Var(&opts.Sys, "sys", 0, "systolic blood pressure, mmHg")
	cmd.Flags().Float64Var(&opts.Dia, "dia", 0, "diastolic blood pressure, mmHg")
	cmd.Flags().Float64Var(&opts.Weight, "weight", 0, "body weight, kg")
	cmd.Flags().StringVar(&opts.UrineProtein, "protein", "", "urine protein (negative|trace|1+|2+|3+|4+)")
	cmd.Flags().IntVar(&opts.Edema, "edema", 0, "edema level 0-3")
	cmd.Flags().Float64Var(&opts.Creatinine, "creatinine", 0, "serum creatinine")
	cmd.Flags().Float64Var(&opts.UricAcid, "uric-acid", 0, "uric acid")
	cmd.Flags().Float64Var(&opts.EGFR, "egfr", 0, "estimated GFR")
	cmd.Flags().StringSliceVar(&opts.Symptoms, "symptom", nil, "symptom (repeatable)")

	return cmd
}

func newVitalsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List recorded vitals, oldest first",
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
					return f.Success(state.Vitals)
				}
				if len(state.Vitals) == 0 {
					return f.Success("No vitals recorded")
				}
				tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TIMESTAMP\tBP\tWEIGHT\tPROTEIN\tEDEMA\tEGFR\tCREATININE")
				for _, v := range state.Vitals {
					fmt.Fprintf(tw, "%s\t%g/%g\t%g\t%s\t%d\t%s\t%s\n",
						v.Timestamp, v.BloodPressureSys, v.BloodPressureDia, v.Weight,
						v.UrineProtein, v.EdemaLevel, optional(v.EGFR), optional(v.Creatinine))
				}
				return tw.Flush()
			})
		},
	}
}

// optional renders a reading that may not have been recorded.
func optional(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'g', -1, 64)
}
