package models

import (
	"fmt"
	"strings"
)

// Team is an entrant. The order of a team list is the seeding order.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TeamsFromNames builds a seeded team list, assigning ids T1..Tn by seed.
// Blank lines are skipped.
func TeamsFromNames(names []string) []Team {
	teams := make([]Team, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		teams = append(teams, Team{ID: fmt.Sprintf("T%d", len(teams)+1), Name: n})
	}
	return teams
}

// TeamNames returns the display names in seeding order.
func TeamNames(teams []Team) []string {
	names := make([]string, len(teams))
	for i, t := range teams {
		names[i] = t.Name
	}
	return names
}
