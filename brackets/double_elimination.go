package brackets

import (
	"github.com/WilliamSoderberg/volley-bracket/models"
)

type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() BracketGenerator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

// GenerateBracket lays out winners, losers and finals brackets.
//
// The losers bracket has 2(R-1) rounds for R winners rounds. Odd rounds play
// down losers-bracket survivors (round 1 pairs the winners round-1 losers);
// even rounds absorb the losers of winners round r+1 into side 2. Drops from
// even winners rounds enter in reversed order so a dropped team does not meet
// the team it just beat. With two teams there is no losers bracket and the
// winners final is terminal.
func (g *DoubleEliminationGenerator) GenerateBracket(teams []models.Team) ([]*models.Match, error) {
	if len(teams) < 2 {
		return nil, ErrInvalidTeams
	}
	l := &layout{}
	wb := l.winnersBracket(teams)
	size, wbRounds := bracketSize(len(teams))
	if size < 4 {
		return l.matches, nil
	}

	lbRounds := 2 * (wbRounds - 1)
	lb := make([][]*models.Match, lbRounds)
	count := size / 4
	for r := 1; r <= lbRounds; r++ {
		for i := 0; i < count; i++ {
			lb[r-1] = append(lb[r-1], l.add(models.BracketLosers, r))
		}
		if r%2 == 0 {
			count /= 2
		}
	}

	for r := 1; r < lbRounds; r++ {
		for i, m := range lb[r-1] {
			if r%2 == 1 {
				link(m, lb[r][i], models.OutcomeWinner, 1)
			} else {
				link(m, lb[r][i/2], models.OutcomeWinner, i%2+1)
			}
		}
	}

	for r := 1; r <= wbRounds; r++ {
		if r == 1 {
			for i, m := range wb[0] {
				link(m, lb[0][i/2], models.OutcomeLoser, i%2+1)
			}
			continue
		}
		target := lb[2*(r-1)-1]
		for i, m := range wb[r-1] {
			j := i
			if r%2 == 0 {
				j = len(target) - 1 - i
			}
			link(m, target[j], models.OutcomeLoser, 2)
		}
	}

	final := l.add(models.BracketFinals, 1)
	link(wb[wbRounds-1][0], final, models.OutcomeWinner, 1)
	link(lb[lbRounds-1][0], final, models.OutcomeWinner, 2)
	return l.matches, nil
}
