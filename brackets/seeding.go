package brackets

import (
	"math"

	"github.com/WilliamSoderberg/volley-bracket/models"
)

// bracketSize pads n to the next power of two.
func bracketSize(n int) (size, rounds int) {
	rounds = int(math.Ceil(math.Log2(float64(n))))
	if rounds < 1 {
		rounds = 1
	}
	return 1 << uint(rounds), rounds
}

// seedOrder returns the standard bracket order of seeds 1..size: each round
// splits every seed s into s and (2k+1-s), so seed 1 meets the lowest seed
// and the top seeds stay apart longest.
func seedOrder(size int) []int {
	seeds := []int{1, 2}
	for len(seeds) < size {
		next := make([]int, 0, len(seeds)*2)
		for _, s := range seeds {
			next = append(next, s, 2*len(seeds)+1-s)
		}
		seeds = next
	}
	return seeds[:size]
}

// seededPositions maps round-1 positions to team ids, filling seeds past
// the team count with byes.
func seededPositions(size int, teams []models.Team) []string {
	order := seedOrder(size)
	out := make([]string, size)
	for i, s := range order {
		if s <= len(teams) {
			out[i] = teams[s-1].ID
		} else {
			out[i] = models.Bye
		}
	}
	return out
}
