package models

import "time"

// Bracket is the sub-graph a match belongs to.
type Bracket string

const (
	BracketWinners Bracket = "winners"
	BracketLosers  Bracket = "losers"
	BracketFinals  Bracket = "finals"
)

// Priority orders brackets for numbering: winners, losers, finals.
func (b Bracket) Priority() int {
	switch b {
	case BracketWinners:
		return 0
	case BracketLosers:
		return 1
	case BracketFinals:
		return 2
	default:
		return 3
	}
}

type MatchStatus string

const (
	StatusPending   MatchStatus = "Pending"
	StatusScheduled MatchStatus = "Scheduled"
	StatusFinished  MatchStatus = "Finished"
)

// Outcome says which side of a feeding match a slot receives.
type Outcome string

const (
	OutcomeWinner Outcome = "winner"
	OutcomeLoser  Outcome = "loser"
)

// Bye is the reserved team reference for an empty bracket position.
const Bye = "BYE"

// Slot is one side of a match: a concrete team, a bye, or a placeholder
// waiting for the Outcome of match Source.
type Slot struct {
	Team    string  `json:"team,omitempty"`
	Source  string  `json:"source,omitempty"`
	Outcome Outcome `json:"outcome,omitempty"`
	Label   string  `json:"label"`
}

func (s Slot) IsBye() bool { return s.Team == Bye }

// IsConcrete reports whether the slot holds a real team.
func (s Slot) IsConcrete() bool { return s.Team != "" && s.Team != Bye }

// IsPlaceholder reports whether the slot still waits for its feeding match.
func (s Slot) IsPlaceholder() bool { return s.Team == "" && s.Source != "" }

// Feeds reports whether this slot is fed by the given outcome of matchID.
func (s Slot) Feeds(matchID string, outcome Outcome) bool {
	return s.Source == matchID && s.Outcome == outcome
}

// Set is one played set. It is decided when the scores differ.
type Set struct {
	P1 int `json:"p1"`
	P2 int `json:"p2"`
}

func (s Set) Decided() bool { return s.P1 != s.P2 }

type Match struct {
	ID      string  `json:"id"`
	Bracket Bracket `json:"bracket"`
	Round   int     `json:"round"`
	// Number is nil for ghost matches that only route byes.
	Number *int `json:"number"`

	P1 Slot `json:"p1"`
	P2 Slot `json:"p2"`

	NextWin  string `json:"next_win,omitempty"`
	NextLose string `json:"next_lose,omitempty"`

	Sets   []Set       `json:"sets"`
	Winner string      `json:"winner,omitempty"`
	Loser  string      `json:"loser,omitempty"`
	Status MatchStatus `json:"status"`

	Court *string    `json:"court"`
	Time  *time.Time `json:"time"`
}

// IsGhost reports whether the match carries no display number.
func (m *Match) IsGhost() bool { return m.Number == nil }

func (m *Match) IsFinished() bool { return m.Status == StatusFinished }

// IsReady reports whether the match is unfinished with two concrete teams.
func (m *Match) IsReady() bool {
	return !m.IsFinished() && m.P1.IsConcrete() && m.P2.IsConcrete()
}

// Terminal reports whether the match feeds nothing.
func (m *Match) Terminal() bool { return m.NextWin == "" && m.NextLose == "" }

// SetsWon counts decided sets per side.
func (m *Match) SetsWon() (p1, p2 int) {
	for _, s := range m.Sets {
		switch {
		case s.P1 > s.P2:
			p1++
		case s.P2 > s.P1:
			p2++
		}
	}
	return p1, p2
}

// RefreshStatus derives Status from the winner and the schedule annotation.
func (m *Match) RefreshStatus() {
	switch {
	case m.Winner != "":
		m.Status = StatusFinished
	case m.Time != nil:
		m.Status = StatusScheduled
	default:
		m.Status = StatusPending
	}
}

// Clone returns a deep copy of the match.
func (m *Match) Clone() *Match {
	c := *m
	if m.Number != nil {
		n := *m.Number
		c.Number = &n
	}
	if m.Court != nil {
		court := *m.Court
		c.Court = &court
	}
	if m.Time != nil {
		t := *m.Time
		c.Time = &t
	}
	if m.Sets != nil {
		c.Sets = make([]Set, len(m.Sets))
		copy(c.Sets, m.Sets)
	}
	return &c
}
