package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/renalcare/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                `json:"valid"`
	File   string              `json:"file"`
	Errors []schema.FieldError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <registry.json>",
		Short: "Check a registry document against the record schema",
		Long: `Validate a registry document, such as the output of "renalcare export",
against the record schema without touching storage.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return failInput(f, "read %s: %v", path, err)
	}
	f.VerboseLog("Read %d byte(s) from %s", len(data), path)

	validator, err := schema.New()
	if err != nil {
		return fail(f, err)
	}

	result := ValidationResult{Valid: true, File: path}
	if err := validator.ValidateRegistry(data); err != nil {
		var verr *schema.ValidationError
		if !errors.As(err, &verr) {
			return fail(f, err)
		}
		result.Valid = false
		result.Errors = verr.Fields
	}

	if f.Structured() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintf(f.Writer, "%s: valid\n", path)
	} else {
		fmt.Fprintf(f.Writer, "%s: %d error(s)\n", path, len(result.Errors))
		for _, fe := range result.Errors {
			fmt.Fprintf(f.Writer, "  %s\n", fe)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s is not a valid registry", ErrCodeValidation, path))
	}
	return nil
}
