package brackets

import (
	"fmt"
	"sort"

	"github.com/WilliamSoderberg/volley-bracket/models"
)

// Graph is an arena of matches keyed by id. Forward edges live on the
// matches (NextWin/NextLose); fedBy is the reverse index derived from slot
// sources.
type Graph struct {
	matches []*models.Match
	byID    map[string]*models.Match
	fedBy   map[string][]string
}

// NewGraph indexes matches and checks that the edges reference known
// matches and form a DAG. The slice is shared, not copied.
func NewGraph(matches []*models.Match) (*Graph, error) {
	g := &Graph{
		matches: matches,
		byID:    make(map[string]*models.Match, len(matches)),
		fedBy:   make(map[string][]string, len(matches)),
	}
	for _, m := range matches {
		if m == nil || m.ID == "" {
			return nil, fmt.Errorf("%w: match without id", ErrInvalidGraph)
		}
		if _, dup := g.byID[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate match id %s", ErrInvalidGraph, m.ID)
		}
		g.byID[m.ID] = m
	}
	for _, m := range matches {
		for _, next := range []string{m.NextWin, m.NextLose} {
			if next == "" {
				continue
			}
			if _, ok := g.byID[next]; !ok {
				return nil, fmt.Errorf("%w: match %s points to unknown match %s", ErrInvalidGraph, m.ID, next)
			}
		}
		for _, s := range []models.Slot{m.P1, m.P2} {
			if s.Source == "" {
				continue
			}
			if _, ok := g.byID[s.Source]; !ok {
				return nil, fmt.Errorf("%w: match %s is fed by unknown match %s", ErrInvalidGraph, m.ID, s.Source)
			}
			g.fedBy[m.ID] = append(g.fedBy[m.ID], s.Source)
		}
	}
	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) checkAcyclic() error {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(g.matches))
	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case active:
			return fmt.Errorf("%w: cycle through match %s", ErrInvalidGraph, id)
		case done:
			return nil
		}
		state[id] = active
		m := g.byID[id]
		for _, next := range []string{m.NextWin, m.NextLose} {
			if next == "" {
				continue
			}
			if err := visit(next); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}
	for _, m := range g.matches {
		if err := visit(m.ID); err != nil {
			return err
		}
	}
	return nil
}

// Match looks a match up by id.
func (g *Graph) Match(id string) (*models.Match, bool) {
	m, ok := g.byID[id]
	return m, ok
}

// Matches returns every match in build order.
func (g *Graph) Matches() []*models.Match { return g.matches }

func (g *Graph) Len() int { return len(g.matches) }

// Round lists the matches of one bracket round in position order.
func (g *Graph) Round(b models.Bracket, round int) []*models.Match {
	var out []*models.Match
	for _, m := range g.matches {
		if m.Bracket == b && m.Round == round {
			out = append(out, m)
		}
	}
	return out
}

// Bracket lists all matches of one bracket.
func (g *Graph) Bracket(b models.Bracket) []*models.Match {
	var out []*models.Match
	for _, m := range g.matches {
		if m.Bracket == b {
			out = append(out, m)
		}
	}
	return out
}

// Rounds returns the highest round number in a bracket, 0 if it is empty.
func (g *Graph) Rounds(b models.Bracket) int {
	last := 0
	for _, m := range g.matches {
		if m.Bracket == b && m.Round > last {
			last = m.Round
		}
	}
	return last
}

// Ready lists unfinished matches with two concrete teams.
func (g *Graph) Ready() []*models.Match {
	var out []*models.Match
	for _, m := range g.matches {
		if m.IsReady() {
			out = append(out, m)
		}
	}
	return out
}

// Numbered returns playable matches ordered by number.
func (g *Graph) Numbered() []*models.Match {
	var out []*models.Match
	for _, m := range g.matches {
		if !m.IsGhost() {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].Number < *out[j].Number })
	return out
}

// Terminal lists matches that feed nothing.
func (g *Graph) Terminal() []*models.Match {
	var out []*models.Match
	for _, m := range g.matches {
		if m.Terminal() {
			out = append(out, m)
		}
	}
	return out
}

// FedBy returns the ids of the matches feeding id's slots.
func (g *Graph) FedBy(id string) []string { return g.fedBy[id] }

// Next follows the winner or loser edge of m.
func (g *Graph) Next(m *models.Match, outcome models.Outcome) (*models.Match, bool) {
	id := m.NextWin
	if outcome == models.OutcomeLoser {
		id = m.NextLose
	}
	if id == "" {
		return nil, false
	}
	return g.Match(id)
}

// slotFedBy returns the slot of target receiving outcome of source.
func slotFedBy(target *models.Match, source string, outcome models.Outcome) *models.Slot {
	switch {
	case target.P1.Feeds(source, outcome):
		return &target.P1
	case target.P2.Feeds(source, outcome):
		return &target.P2
	}
	return nil
}

// snapshot copies the given matches so a failed transformation can be
// rolled back.
func (g *Graph) snapshot(ids []string) map[string]models.Match {
	snap := make(map[string]models.Match, len(ids))
	for _, id := range ids {
		snap[id] = *g.byID[id].Clone()
	}
	return snap
}

func (g *Graph) restore(snap map[string]models.Match) {
	for id, m := range snap {
		*g.byID[id] = m
	}
}

// downstream returns id plus every match reachable along forward edges.
func (g *Graph) downstream(id string) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(string)
	walk = func(cur string) {
		if cur == "" || seen[cur] {
			return
		}
		seen[cur] = true
		out = append(out, cur)
		m := g.byID[cur]
		walk(m.NextWin)
		walk(m.NextLose)
	}
	walk(id)
	return out
}
