package brackets

import (
	"errors"
	"fmt"
)

// Error kinds. Every engine error wraps exactly one of them.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

var (
	ErrInvalidTeams     = fmt.Errorf("%w: at least 2 teams with unique non-empty ids are required", ErrValidation)
	ErrUnsupportedType  = fmt.Errorf("%w: unsupported bracket type", ErrValidation)
	ErrSlotsNotConcrete = fmt.Errorf("%w: both slots must hold a team before reporting", ErrValidation)
	ErrNoSets           = fmt.Errorf("%w: at least one set is required", ErrValidation)
	ErrInvalidSets      = fmt.Errorf("%w: set scores must be non-negative", ErrValidation)
	ErrUndecidedSet     = fmt.Errorf("%w: every set must have a winner", ErrValidation)
	ErrNoMajority       = fmt.Errorf("%w: sets do not give either side a majority", ErrValidation)
	ErrSetsAfterWin     = fmt.Errorf("%w: sets played after the match was decided", ErrValidation)
	ErrTooManySets      = fmt.Errorf("%w: more sets than the best-of limit", ErrValidation)
	ErrGhostMatch       = fmt.Errorf("%w: bye matches cannot be reported or cleared", ErrValidation)
	ErrMatchNotFinished = fmt.Errorf("%w: match has no result to clear", ErrValidation)
	ErrInvalidSchedule  = fmt.Errorf("%w: scheduling needs at least one court and a positive duration", ErrValidation)
	ErrInvalidGraph     = fmt.Errorf("%w: malformed match graph", ErrValidation)

	ErrMatchNotFound = fmt.Errorf("match %w", ErrNotFound)

	ErrAlreadyFinished = fmt.Errorf("%w: match already has a different result, clear it first", ErrConflict)
	ErrClearConflict   = fmt.Errorf("%w: a downstream match has its own reported result", ErrConflict)
	ErrInconsistent    = fmt.Errorf("%w: match state changed underneath propagation", ErrConflict)
)
