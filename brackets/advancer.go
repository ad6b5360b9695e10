package brackets

import (
	"fmt"

	"github.com/WilliamSoderberg/volley-bracket/models"
)

// Result lists every match a report or clear changed, the requested match
// first.
type Result struct {
	Touched []string `json:"touched"`
}

// ClearOptions tunes Clear.
type ClearOptions struct {
	// Cascade also clears downstream matches that carry their own reported
	// result instead of failing with ErrClearConflict.
	Cascade bool
}

var outcomes = [...]models.Outcome{models.OutcomeWinner, models.OutcomeLoser}

// Report records sets for a numbered match and propagates the winner and
// loser forward, auto-finishing any bye match they land in. The graph is
// unchanged when an error is returned.
func Report(g *Graph, matchID string, sets []models.Set, rule SetRule) (Result, error) {
	m, ok := g.Match(matchID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if m.IsGhost() {
		return Result{}, ErrGhostMatch
	}
	if !m.P1.IsConcrete() || !m.P2.IsConcrete() {
		return Result{}, fmt.Errorf("%w (match %d)", ErrSlotsNotConcrete, *m.Number)
	}
	side, err := rule.Decide(sets)
	if err != nil {
		return Result{}, err
	}
	winner, loser := m.P1.Team, m.P2.Team
	if side == 2 {
		winner, loser = loser, winner
	}
	recorded := append([]models.Set{}, sets...)

	if m.IsFinished() {
		if m.Winner != winner {
			return Result{}, fmt.Errorf("%w (match %d)", ErrAlreadyFinished, *m.Number)
		}
		m.Sets = recorded
		return Result{Touched: []string{m.ID}}, nil
	}

	snap := g.snapshot(g.downstream(m.ID))
	m.Sets = recorded
	var touched []string
	if err := g.finish(m, winner, loser, &touched); err != nil {
		g.restore(snap)
		return Result{}, err
	}
	return Result{Touched: touched}, nil
}

// Clear removes the result of a numbered match. Downstream effects are
// undone first, deepest match first, so no finished match is ever left
// with a non-concrete input.
func Clear(g *Graph, matchID string, opts ClearOptions) (Result, error) {
	m, ok := g.Match(matchID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if m.IsGhost() {
		return Result{}, ErrGhostMatch
	}
	if !m.IsFinished() {
		return Result{}, fmt.Errorf("%w (match %d)", ErrMatchNotFinished, *m.Number)
	}
	order, err := g.clearOrder(m, opts.Cascade)
	if err != nil {
		return Result{}, err
	}

	snap := g.snapshot(g.downstream(m.ID))
	touched := []string{m.ID}
	for _, x := range order {
		if err := g.unfinish(x, &touched); err != nil {
			g.restore(snap)
			return Result{}, err
		}
	}
	return Result{Touched: touched}, nil
}

// finish stores a result and propagates it. Each target is checked before
// it is written.
func (g *Graph) finish(m *models.Match, winner, loser string, touched *[]string) error {
	if m.IsFinished() {
		return fmt.Errorf("%w: match %s is already finished", ErrInconsistent, m.ID)
	}
	m.Winner, m.Loser = winner, loser
	m.RefreshStatus()
	addTouched(touched, m.ID)

	for _, outcome := range outcomes {
		target, ok := g.Next(m, outcome)
		if !ok {
			continue
		}
		slot := slotFedBy(target, m.ID, outcome)
		if slot == nil || !slot.IsPlaceholder() || target.IsFinished() {
			return fmt.Errorf("%w: match %s cannot receive the %s of %s", ErrInconsistent, target.ID, outcome, m.ID)
		}
		team := winner
		if outcome == models.OutcomeLoser {
			team = loser
		}
		slot.Team = team
		addTouched(touched, target.ID)
		if autoResolvable(target) {
			if err := g.autoFinish(target, touched); err != nil {
				return err
			}
		}
	}
	return nil
}

// autoResolvable reports whether m has a bye and nothing left to wait for.
func autoResolvable(m *models.Match) bool {
	if m.IsFinished() || m.P1.IsPlaceholder() || m.P2.IsPlaceholder() {
		return false
	}
	if m.P1.Team == "" || m.P2.Team == "" {
		return false
	}
	return m.P1.IsBye() || m.P2.IsBye()
}

// autoFinish advances the non-bye side of a bye match. Two byes produce a
// bye winner.
func (g *Graph) autoFinish(m *models.Match, touched *[]string) error {
	winner, loser := m.P1.Team, m.P2.Team
	if m.P1.IsBye() {
		winner, loser = m.P2.Team, m.P1.Team
	}
	return g.finish(m, winner, loser, touched)
}

// clearOrder lists root and every match whose result depends on it in
// reverse dependency order. Bye matches finished by propagation are always
// included; reported matches only with cascade.
func (g *Graph) clearOrder(root *models.Match, cascade bool) ([]*models.Match, error) {
	var order []*models.Match
	seen := map[string]bool{}
	var visit func(x *models.Match) error
	visit = func(x *models.Match) error {
		if seen[x.ID] {
			return nil
		}
		seen[x.ID] = true
		for _, outcome := range outcomes {
			target, ok := g.Next(x, outcome)
			if !ok {
				continue
			}
			slot := slotFedBy(target, x.ID, outcome)
			if slot == nil {
				return fmt.Errorf("%w: match %s is not fed by %s", ErrInconsistent, target.ID, x.ID)
			}
			if slot.IsPlaceholder() || !target.IsFinished() {
				continue
			}
			if !target.IsGhost() && !cascade {
				return fmt.Errorf("%w (match %d)", ErrClearConflict, *target.Number)
			}
			if err := visit(target); err != nil {
				return err
			}
		}
		order = append(order, x)
		return nil
	}
	if err := visit(root); err != nil {
		return nil, err
	}
	return order, nil
}

// unfinish reverts the slots x propagated into and resets x itself.
func (g *Graph) unfinish(x *models.Match, touched *[]string) error {
	for _, outcome := range outcomes {
		target, ok := g.Next(x, outcome)
		if !ok {
			continue
		}
		slot := slotFedBy(target, x.ID, outcome)
		if slot == nil || slot.IsPlaceholder() {
			continue
		}
		if target.IsFinished() {
			return fmt.Errorf("%w: match %s still finished while clearing %s", ErrInconsistent, target.ID, x.ID)
		}
		slot.Team = ""
		addTouched(touched, target.ID)
	}
	x.Sets = []models.Set{}
	x.Winner, x.Loser = "", ""
	x.RefreshStatus()
	addTouched(touched, x.ID)
	return nil
}

func addTouched(touched *[]string, id string) {
	if touched == nil {
		return
	}
	for _, t := range *touched {
		if t == id {
			return
		}
	}
	*touched = append(*touched, id)
}
