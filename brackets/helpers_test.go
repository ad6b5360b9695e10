package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WilliamSoderberg/volley-bracket/models"
)

func teamsN(n int) []models.Team {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Team %d", i+1)
	}
	return models.TeamsFromNames(names)
}

func mustBuild(t *testing.T, teams []models.Team, typ models.BracketType) *Graph {
	t.Helper()
	g, err := Build(teams, typ)
	require.NoError(t, err)
	return g
}

func numbered(t *testing.T, g *Graph, n int) *models.Match {
	t.Helper()
	for _, m := range g.Matches() {
		if m.Number != nil && *m.Number == n {
			return m
		}
	}
	t.Fatalf("no match numbered %d", n)
	return nil
}

func copyMatches(g *Graph) []models.Match {
	out := make([]models.Match, g.Len())
	for i, m := range g.Matches() {
		out[i] = *m.Clone()
	}
	return out
}

// win reports a straight-sets win for the given side.
func win(side int) []models.Set {
	if side == 1 {
		return []models.Set{{P1: 25, P2: 20}, {P1: 25, P2: 18}}
	}
	return []models.Set{{P1: 20, P2: 25}, {P1: 18, P2: 25}}
}
