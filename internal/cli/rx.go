package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/renalcare/internal/domain"
)

// RxImportOptions holds flags for rx import.
type RxImportOptions struct {
	*RootOptions
	File string
	Type string
	Date string
	Note string
	Meds string
}

// NewRxCommand creates the prescription command group.
func NewRxCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rx",
		Aliases: []string{"prescriptions"},
		Short:   "Archive prescriptions and import their medications",
	}
	cmd.AddCommand(newRxImportCommand(rootOpts))
	cmd.AddCommand(newRxScanCommand(rootOpts))
	cmd.AddCommand(newRxListCommand(rootOpts))
	cmd.AddCommand(newRxDeleteCommand(rootOpts))
	return cmd
}

func newRxImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RxImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Archive a prescription and add its medications",
		Long: `Archive a prescription document and add the medications listed in a
YAML file to the active medication list. Each medication is linked back to
the prescription; the archive keeps its own copy of the list.

The medication file is a YAML sequence:

  - name: Losartan
    dosage: 50mg
    frequency: daily
    reminders: ["08:00"]

Example:
  renalcare rx import --file rx.jpg --type western --meds meds.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			rx := domain.Prescription{
				Date: opts.Date,
				Type: domain.PrescriptionType(opts.Type),
				Note: opts.Note,
			}
			if opts.File != "" {
				doc, err := readDocument(opts.File)
				if err != nil {
					return failInput(f, "read %s: %v", opts.File, err)
				}
				rx.FileName, rx.MimeType, rx.FileData = doc.FileName, doc.MimeType, encodeData(doc.Data)
			}
			meds, err := readMedList(opts.Meds)
			if err != nil {
				return failInput(f, "read medications: %v", err)
			}

			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				saved, err := app.Tracker.ImportPrescription(ctx, rx, meds)
				if err != nil {
					return fail(f, err)
				}
				return renderPrescription(f, saved)
			})
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "prescription image or PDF to archive")
	cmd.Flags().StringVar(&opts.Type, "type", "", "prescription type (chinese|western|integrated, default western)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "prescription date (default now)")
	cmd.Flags().StringVar(&opts.Note, "note", "", "free-text note")
	cmd.Flags().StringVar(&opts.Meds, "meds", "", "YAML file listing the medications (required)")
	_ = cmd.MarkFlagRequired("meds")

	return cmd
}

func newRxScanCommand(rootOpts *RootOptions) *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "scan <file>",
		Short: "Read medications from a prescription with the model",
		Long: `Ask the model to read a prescription image or PDF. Without --apply the
extraction is only shown; with --apply the document is archived and the
medications are added, as rx import does.`,
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
				scan, err := app.Tracker.ScanPrescription(ctx, doc)
				if err != nil {
					return fail(f, err)
				}
				if !apply {
					if f.Structured() {
						return f.Success(scan)
					}
					fmt.Fprintf(f.Writer, "Prescription dated %s (%s)\n", scan.PrescriptionDate, scan.Type)
					for _, m := range scan.Medications {
						fmt.Fprintf(f.Writer, "  %s %s, %s\n", m.Name, m.Dosage, m.Frequency)
					}
					return f.Success("Run again with --apply to save.")
				}
				saved, err := app.Tracker.ApplyPrescriptionScan(ctx, *scan, doc)
				if err != nil {
					return fail(f, err)
				}
				return renderPrescription(f, saved)
			})
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "save the prescription and its medications")
	return cmd
}

func renderPrescription(f *OutputFormatter, rx domain.Prescription) error {
	if f.Structured() {
		rx.FileData = ""
		return f.Success(rx)
	}
	return f.Success(fmt.Sprintf("Archived prescription %s (%s) with %d medication(s)", rx.ID, rx.Type, len(rx.ExtractedMeds)))
}

func newRxListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List archived prescriptions",
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
					out := make([]domain.Prescription, len(state.Prescriptions))
					for i, rx := range state.Prescriptions {
						rx.FileData = ""
						out[i] = rx
					}
					return f.Success(out)
				}
				if len(state.Prescriptions) == 0 {
					return f.Success("No prescriptions")
				}
				tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDATE\tTYPE\tFILE\tMEDICATIONS")
				for _, rx := range state.Prescriptions {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", rx.ID, rx.Date, rx.Type, rx.FileName, len(rx.ExtractedMeds))
				}
				return tw.Flush()
			})
		},
	}
}

func newRxDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete an archived prescription; its medications stay active",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				if err := app.Tracker.DeletePrescription(ctx, args[0]); err != nil {
					return fail(f, err)
				}
				if f.Structured() {
					return f.Success(map[string]string{"deleted": args[0]})
				}
				return f.Success("Deleted prescription " + args[0])
			})
		},
	}
}
