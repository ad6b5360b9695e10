package brackets

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/WilliamSoderberg/volley-bracket/models"
)

// BracketGenerator lays out the unresolved match skeleton for a seeded team
// list. Byes, numbering and labels are applied afterwards by Build.
type BracketGenerator interface {
	GenerateBracket(teams []models.Team) ([]*models.Match, error)
	GetName() string
}

// NewGenerator returns the generator for a bracket type.
func NewGenerator(typ models.BracketType) (BracketGenerator, error) {
	switch typ {
	case models.BracketSingle:
		return NewSingleEliminationGenerator(), nil
	case models.BracketDouble:
		return NewDoubleEliminationGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, typ)
	}
}

// Build constructs a complete match graph: wired, byes resolved
// transitively, numbered and labelled. It never returns a partial graph.
func Build(teams []models.Team, typ models.BracketType) (*Graph, error) {
	if err := validateTeams(teams); err != nil {
		return nil, err
	}
	gen, err := NewGenerator(typ)
	if err != nil {
		return nil, err
	}
	matches, err := gen.GenerateBracket(teams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", gen.GetName(), err)
	}
	g, err := NewGraph(matches)
	if err != nil {
		return nil, fmt.Errorf("%s produced an invalid graph: %w", gen.GetName(), err)
	}
	g.settleByes()
	g.number()
	g.label()
	return g, nil
}

func validateTeams(teams []models.Team) error {
	if len(teams) < 2 {
		return fmt.Errorf("%w (got %d)", ErrInvalidTeams, len(teams))
	}
	seen := make(map[string]bool, len(teams))
	for _, t := range teams {
		if t.ID == "" || t.ID == models.Bye {
			return fmt.Errorf("%w: team %q has an invalid id", ErrInvalidTeams, t.Name)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate team id %q", ErrInvalidTeams, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// layout creates matches with sequential ids "1", "2", ... in build order.
type layout struct {
	matches []*models.Match
}

func (l *layout) add(b models.Bracket, round int) *models.Match {
	m := &models.Match{
		ID:      strconv.Itoa(len(l.matches) + 1),
		Bracket: b,
		Round:   round,
		Sets:    []models.Set{},
		Status:  models.StatusPending,
	}
	l.matches = append(l.matches, m)
	return m
}

// link routes outcome of from into one side of to.
func link(from, to *models.Match, outcome models.Outcome, side int) {
	if outcome == models.OutcomeWinner {
		from.NextWin = to.ID
	} else {
		from.NextLose = to.ID
	}
	slot := models.Slot{Source: from.ID, Outcome: outcome}
	if side == 1 {
		to.P1 = slot
	} else {
		to.P2 = slot
	}
}

// winnersBracket builds the seeded winners bracket and returns it by round.
func (l *layout) winnersBracket(teams []models.Team) [][]*models.Match {
	size, rounds := bracketSize(len(teams))
	seeded := seededPositions(size, teams)

	wb := make([][]*models.Match, rounds)
	for r := 1; r <= rounds; r++ {
		for i := 0; i < size>>r; i++ {
			wb[r-1] = append(wb[r-1], l.add(models.BracketWinners, r))
		}
	}
	for r := 1; r < rounds; r++ {
		for i, m := range wb[r-1] {
			link(m, wb[r][i/2], models.OutcomeWinner, i%2+1)
		}
	}
	for i, m := range wb[0] {
		m.P1 = models.Slot{Team: seeded[2*i]}
		m.P2 = models.Slot{Team: seeded[2*i+1]}
	}
	return wb
}

// settleByes auto-finishes every match that has a bye and no pending feed,
// cascading the result downstream. Build order is topological, so one pass
// reaches a fixed point.
func (g *Graph) settleByes() {
	for _, m := range g.matches {
		if autoResolvable(m) {
			// Static inputs never fail the precondition checks.
			_ = g.autoFinish(m, nil)
		}
	}
}

// number assigns display numbers to playable matches by bracket priority,
// round and build order. Any match touching a bye is a ghost.
func (g *Graph) number() {
	order := make([]*models.Match, len(g.matches))
	copy(order, g.matches)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.Bracket.Priority() != b.Bracket.Priority() {
			return a.Bracket.Priority() < b.Bracket.Priority()
		}
		return a.Round < b.Round
	})
	n := 0
	for _, m := range order {
		if m.P1.IsBye() || m.P2.IsBye() {
			m.Number = nil
			continue
		}
		n++
		num := n
		m.Number = &num
	}
}

func (g *Graph) label() {
	for _, m := range g.matches {
		m.P1.Label = g.slotLabel(m.P1, 0)
		m.P2.Label = g.slotLabel(m.P2, 0)
	}
}

// slotLabel names what a slot waits for. Ghost sources are looked through
// to the real match behind them.
func (g *Graph) slotLabel(s models.Slot, depth int) string {
	if s.IsBye() {
		return models.Bye
	}
	src, ok := g.Match(s.Source)
	if s.Source == "" || !ok || depth > len(g.matches) {
		return "TBD"
	}
	if src.Number != nil {
		if s.Outcome == models.OutcomeLoser {
			return fmt.Sprintf("Loser of Match %d", *src.Number)
		}
		return fmt.Sprintf("Winner of Match %d", *src.Number)
	}
	if s.Outcome == models.OutcomeLoser {
		return models.Bye
	}
	if src.P1.IsBye() {
		return g.slotLabel(src.P2, depth+1)
	}
	return g.slotLabel(src.P1, depth+1)
}
