package brackets

import (
	"github.com/WilliamSoderberg/volley-bracket/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket lays out a winners bracket only; its final is terminal.
func (g *SingleEliminationGenerator) GenerateBracket(teams []models.Team) ([]*models.Match, error) {
	if len(teams) < 2 {
		return nil, ErrInvalidTeams
	}
	l := &layout{}
	l.winnersBracket(teams)
	return l.matches, nil
}
