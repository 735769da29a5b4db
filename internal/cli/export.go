package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/renalcare/internal/registry"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole registry as JSON",
		Long: `Write every user's records as a registry document, the same JSON that
is kept in storage. The result can be checked with "renalcare validate".

Example:
  renalcare export --out backup.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				snapshot := app.Registry.Snapshot()
				data, err := registry.Encode(snapshot)
				if err != nil {
					return fail(f, err)
				}

				if out != "" {
					if err := os.WriteFile(out, append(data, '\n'), 0o600); err != nil {
						return failInput(f, "write %s: %v", out, err)
					}
					if f.Structured() {
						return f.Success(map[string]any{"file": out, "users": len(snapshot)})
					}
					return f.Success(fmt.Sprintf("Exported %d user(s) to %s", len(snapshot), out))
				}

				if f.Structured() {
					return f.Success(snapshot)
				}
				_, err = fmt.Fprintf(f.Writer, "%s\n", data)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write to a file instead of stdout")
	return cmd
}
