package models

// Phase places a tournament relative to now.
type Phase string

const (
	PhaseLive   Phase = "live"
	PhaseFuture Phase = "future"
	PhasePast   Phase = "past"
)

// TournamentSummary is the listing row shown on the dashboard.
type TournamentSummary struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Date       string      `json:"date"`
	StartTime  string      `json:"start_time"`
	Type       BracketType `json:"type"`
	TeamCount  int         `json:"team_count"`
	CourtCount int         `json:"court_count"`
	Phase      Phase       `json:"phase"`
}

// Classification buckets summaries by phase.
type Classification struct {
	Live   []TournamentSummary `json:"live"`
	Future []TournamentSummary `json:"future"`
	Past   []TournamentSummary `json:"past"`
}
