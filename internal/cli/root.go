package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/renalcare/internal/config"
	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/insight"
	"github.com/roach88/renalcare/internal/notify"
	"github.com/roach88/renalcare/internal/scheduler"
	"github.com/roach88/renalcare/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json" | "yaml"
	ConfigPath string

	// The fields below override what would otherwise be built from
	// configuration. Tests set them; nil means use the configured value.
	Config   *config.Config
	Backend  store.Backend
	Clock    scheduler.Clock
	IDs      domain.IDGenerator
	Insight  insight.Service
	Notifier notify.Notifier
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the renalcare CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "renalcare",
		Short: "RenalCare - kidney health tracker",
		Long: `A personal tracker for people living with chronic kidney disease.

Records vitals, medications, meals and prescriptions per user, raises
medication reminders at their scheduled minute, and can ask a language
model for insights on the recorded history.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				msg := fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", msg)
				return NewExitError(ExitCommandError, msg)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default $RENALCARE_CONFIG or the user config dir)")

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewUsersCommand(opts))
	cmd.AddCommand(NewProfileCommand(opts))
	cmd.AddCommand(NewVitalsCommand(opts))
	cmd.AddCommand(NewMedsCommand(opts))
	cmd.AddCommand(NewMealsCommand(opts))
	cmd.AddCommand(NewRxCommand(opts))
	cmd.AddCommand(NewDashboardCommand(opts))
	cmd.AddCommand(NewInsightsCommand(opts))
	cmd.AddCommand(NewRecommendCommand(opts))
	cmd.AddCommand(NewLabCommand(opts))
	cmd.AddCommand(NewRemindCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
