package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/insight"
	"github.com/roach88/renalcare/internal/schema"
	"github.com/roach88/renalcare/internal/tracker"
)

// Error codes for structured output.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeNoActiveUser  = "E002" // Nobody is logged in
	ErrCodeNotFound      = "E003" // Record ID not found
	ErrCodeValidation    = "E004" // Record failed schema validation
	ErrCodeEmailRequired = "E005" // Login without an email
	ErrCodeInput         = "E006" // Bad flag value or unreadable input file
	ErrCodeInsight       = "E101" // Insight service unavailable or failed
	ErrCodeNoVitals      = "E102" // Insights requested before any vitals
	ErrCodeNothingRead   = "E103" // Scanned document yielded nothing
	ErrCodeModelResponse = "E104" // Model returned an unusable response
)

// classify maps a service error to its code and exit code.
func classify(err error) (code string, exit int) {
	switch {
	case errors.Is(err, domain.ErrNoActiveUser):
		return ErrCodeNoActiveUser, ExitFailure
	case errors.Is(err, domain.ErrNotFound):
		return ErrCodeNotFound, ExitFailure
	case errors.Is(err, schema.ErrInvalid):
		return ErrCodeValidation, ExitFailure
	case errors.Is(err, domain.ErrEmailRequired):
		return ErrCodeEmailRequired, ExitCommandError
	case errors.Is(err, tracker.ErrNoVitals):
		return ErrCodeNoVitals, ExitFailure
	case errors.Is(err, tracker.ErrNothingExtracted):
		return ErrCodeNothingRead, ExitFailure
	case errors.Is(err, insight.ErrMalformedResponse), errors.Is(err, insight.ErrEmptyResponse):
		return ErrCodeModelResponse, ExitFailure
	case errors.Is(err, tracker.ErrInsightUnavailable):
		return ErrCodeInsight, ExitCommandError
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeInsight, ExitFailure
	}
	return ErrCodeGeneric, ExitFailure
}

// fail reports err through the formatter and returns the matching ExitError.
func fail(f *OutputFormatter, err error) error {
	code, exit := classify(err)
	_ = f.Error(code, err.Error(), details(err))
	return WrapExitError(exit, code, err)
}

// failInput reports a bad flag or file as a command error.
func failInput(f *OutputFormatter, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	_ = f.Error(ErrCodeInput, msg, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeInput, msg))
}

func details(err error) any {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
