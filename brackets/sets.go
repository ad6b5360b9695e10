package brackets

import (
	"fmt"

	"github.com/WilliamSoderberg/volley-bracket/models"
)

// SetRule decides a match from its set sequence. With BestOf zero the side
// that won strictly more of the entered sets wins. With BestOf positive the
// sequence must end on the set where one side reaches BestOf/2+1 wins.
type SetRule struct {
	BestOf int
}

// Decide returns 1 or 2 for the winning side.
func (r SetRule) Decide(sets []models.Set) (int, error) {
	if len(sets) == 0 {
		return 0, ErrNoSets
	}
	for i, s := range sets {
		if s.P1 < 0 || s.P2 < 0 {
			return 0, fmt.Errorf("%w (set %d: %d-%d)", ErrInvalidSets, i+1, s.P1, s.P2)
		}
		if !s.Decided() {
			return 0, fmt.Errorf("%w (set %d: %d-%d)", ErrUndecidedSet, i+1, s.P1, s.P2)
		}
	}

	if r.BestOf > 0 {
		return r.decideBestOf(sets)
	}

	p1, p2 := 0, 0
	for _, s := range sets {
		if s.P1 > s.P2 {
			p1++
		} else {
			p2++
		}
	}
	switch {
	case p1 > p2:
		return 1, nil
	case p2 > p1:
		return 2, nil
	}
	return 0, fmt.Errorf("%w (%d-%d)", ErrNoMajority, p1, p2)
}

func (r SetRule) decideBestOf(sets []models.Set) (int, error) {
	if len(sets) > r.BestOf {
		return 0, fmt.Errorf("%w (%d sets, best of %d)", ErrTooManySets, len(sets), r.BestOf)
	}
	need := r.BestOf/2 + 1
	p1, p2 := 0, 0
	for i, s := range sets {
		if s.P1 > s.P2 {
			p1++
		} else {
			p2++
		}
		if p1 == need || p2 == need {
			if i != len(sets)-1 {
				return 0, fmt.Errorf("%w (decided after set %d)", ErrSetsAfterWin, i+1)
			}
			if p1 == need {
				return 1, nil
			}
			return 2, nil
		}
	}
	return 0, fmt.Errorf("%w (%d-%d, %d needed)", ErrNoMajority, p1, p2, need)
}
