package services

import (
	"errors"
	"fmt"

	"github.com/WilliamSoderberg/volley-bracket/brackets"
	"github.com/WilliamSoderberg/volley-bracket/repositories"
)

// Error kinds shared with the engine, so one errors.Is check classifies
// engine and service errors alike.
var (
	ErrValidationFailed = brackets.ErrValidation
	ErrNotFound         = brackets.ErrNotFound
	ErrConflict         = brackets.ErrConflict
)

var (
	// ErrAuthenticationFailed covers a missing credential or a bad admin login.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrForbiddenOperation is a credential that does not grant the action.
	ErrForbiddenOperation = errors.New("operation not allowed for the given credential")

	ErrTournamentNotFound = fmt.Errorf("tournament %w", ErrNotFound)
	ErrVersionConflict    = fmt.Errorf("%w: tournament changed while the request was processed, reload and retry", ErrConflict)
	ErrDuplicateID        = fmt.Errorf("%w: tournament id already taken", ErrConflict)
	ErrTournamentStarted  = fmt.Errorf("%w: tournament already started, teams and bracket type can no longer change", ErrConflict)

	ErrTournamentNameRequired = fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	ErrInvalidDate            = fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidationFailed)
	ErrInvalidStartTime       = fmt.Errorf("%w: start time must be HH:MM", ErrValidationFailed)
	ErrInvalidDuration        = fmt.Errorf("%w: match duration must be a positive number of minutes", ErrValidationFailed)
	ErrInvalidCourts          = fmt.Errorf("%w: at least one court with a unique non-empty name is required", ErrValidationFailed)
	ErrInvalidBestOf          = fmt.Errorf("%w: best_of must be 0 or a positive odd number", ErrValidationFailed)
	ErrInvalidTeamList        = fmt.Errorf("%w: team ids must be given for every team or for none", ErrValidationFailed)
)

// translateRepoError maps storage errors onto the service taxonomy.
func translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrVersionConflict):
		return ErrVersionConflict
	case errors.Is(err, repositories.ErrTournamentIDConflict):
		return ErrDuplicateID
	}
	return err
}

// errorOutcome names the kind of err for metrics and logs.
func errorOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAuthenticationFailed), errors.Is(err, ErrForbiddenOperation):
		return "auth"
	case errors.Is(err, ErrValidationFailed):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	}
	return "error"
}
