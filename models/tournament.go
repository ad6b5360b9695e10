package models

import (
	"fmt"
	"time"
)

// BracketType selects the elimination format.
type BracketType string

const (
	BracketSingle BracketType = "single"
	BracketDouble BracketType = "double"
)

func (t BracketType) Valid() bool {
	return t == BracketSingle || t == BracketDouble
}

const (
	DateLayout      = "2006-01-02"
	StartTimeLayout = "15:04"
)

// Tournament is the persisted document: settings plus the whole match graph.
type Tournament struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Code          string      `json:"code,omitempty"`
	Type          BracketType `json:"type"`
	Date          string      `json:"date"`
	StartTime     string      `json:"start_time"`
	MatchDuration int         `json:"match_duration"`
	Courts        []string    `json:"courts"`
	Teams         []Team      `json:"teams"`
	// BestOf limits the set sequence when positive; zero accepts any decided majority.
	BestOf         int      `json:"best_of,omitempty"`
	WaitForFeeders bool     `json:"wait_for_feeders,omitempty"`
	Matches        []*Match `json:"matches"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StartAt resolves Date and StartTime in loc.
func (t *Tournament) StartAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	start, err := time.ParseInLocation(DateLayout+" "+StartTimeLayout, t.Date+" "+t.StartTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/start time %q %q: %w", t.Date, t.StartTime, err)
	}
	return start, nil
}

// Duration returns the per-match slot length.
func (t *Tournament) Duration() time.Duration {
	return time.Duration(t.MatchDuration) * time.Minute
}

// PlayableMatches counts numbered matches.
func (t *Tournament) PlayableMatches() int {
	n := 0
	for _, m := range t.Matches {
		if !m.IsGhost() {
			n++
		}
	}
	return n
}

// TeamName returns the display name for a team id, falling back to the id.
func (t *Tournament) TeamName(id string) string {
	for _, team := range t.Teams {
		if team.ID == id {
			return team.Name
		}
	}
	return id
}

// Clone returns a deep copy safe to mutate.
func (t *Tournament) Clone() *Tournament {
	c := *t
	c.Courts = append([]string(nil), t.Courts...)
	c.Teams = append([]Team(nil), t.Teams...)
	c.Matches = make([]*Match, len(t.Matches))
	for i, m := range t.Matches {
		c.Matches[i] = m.Clone()
	}
	return &c
}

// Public returns a copy without the access code.
func (t *Tournament) Public() *Tournament {
	c := t.Clone()
	c.Code = ""
	return c
}
