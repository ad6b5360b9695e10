package services

import (
	"crypto/subtle"
	"fmt"
	"sort"
	"time"

	"github.com/WilliamSoderberg/volley-bracket/brackets"
	"github.com/WilliamSoderberg/volley-bracket/models"
)

// Credential is what a caller presents to mutate scores: an admin session
// or a tournament access code.
type Credential struct {
	Admin bool
	Code  string
}

func AdminCredential() Credential { return Credential{Admin: true} }

func CodeCredential(code string) Credential { return Credential{Code: code} }

// authorize grants admins everything and code holders their own tournament.
// The code must match verbatim.
func authorize(t *models.Tournament, cred Credential) error {
	if cred.Admin {
		return nil
	}
	if cred.Code == "" {
		return fmt.Errorf("%w: an access code or admin session is required", ErrAuthenticationFailed)
	}
	if t.Code == "" || subtle.ConstantTimeCompare([]byte(cred.Code), []byte(t.Code)) != 1 {
		return fmt.Errorf("%w: wrong access code", ErrForbiddenOperation)
	}
	return nil
}

// graphOf indexes the document's matches in place; engine calls on the
// graph mutate t.
func graphOf(t *models.Tournament) (*brackets.Graph, error) {
	g, err := brackets.NewGraph(t.Matches)
	if err != nil {
		return nil, fmt.Errorf("stored bracket of tournament %s is corrupt: %w", t.ID, err)
	}
	return g, nil
}

// reschedule lays the day plan of t out again from its settings.
func reschedule(t *models.Tournament, g *brackets.Graph, loc *time.Location) error {
	start, err := t.StartAt(loc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStartTime, err)
	}
	return brackets.Schedule(g, brackets.SchedulePlan{
		Courts:         t.Courts,
		Duration:       t.Duration(),
		Start:          start,
		WaitForFeeders: t.WaitForFeeders,
	})
}

// ScheduleEntry is one row of the day plan.
type ScheduleEntry struct {
	MatchID string             `json:"match_id"`
	Number  int                `json:"number"`
	Bracket models.Bracket     `json:"bracket"`
	Round   int                `json:"round"`
	Court   string             `json:"court"`
	Time    time.Time          `json:"time"`
	Team1   string             `json:"team1"`
	Team2   string             `json:"team2"`
	Status  models.MatchStatus `json:"status"`
	Sets    []models.Set       `json:"sets"`
	Winner  string             `json:"winner,omitempty"`
}

// BuildSchedule lists numbered, scheduled matches by time, then by court
// order. Teams are shown by name, or by slot label while unknown.
func BuildSchedule(t *models.Tournament) []ScheduleEntry {
	courtIndex := make(map[string]int, len(t.Courts))
	for i, c := range t.Courts {
		courtIndex[c] = i
	}
	entries := make([]ScheduleEntry, 0, len(t.Matches))
	for _, m := range t.Matches {
		if m.IsGhost() || m.Time == nil || m.Court == nil {
			continue
		}
		e := ScheduleEntry{
			MatchID: m.ID,
			Number:  *m.Number,
			Bracket: m.Bracket,
			Round:   m.Round,
			Court:   *m.Court,
			Time:    *m.Time,
			Team1:   slotName(t, m.P1),
			Team2:   slotName(t, m.P2),
			Status:  m.Status,
			Sets:    m.Sets,
		}
		if m.Winner != "" {
			e.Winner = t.TeamName(m.Winner)
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Time.Equal(entries[j].Time) {
			return entries[i].Time.Before(entries[j].Time)
		}
		return courtIndex[entries[i].Court] < courtIndex[entries[j].Court]
	})
	return entries
}

func slotName(t *models.Tournament, s models.Slot) string {
	if s.IsConcrete() {
		return t.TeamName(s.Team)
	}
	return s.Label
}
