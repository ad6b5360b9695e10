package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/WilliamSoderberg/volley-bracket/models"
	"github.com/WilliamSoderberg/volley-bracket/repositories"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) take() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

func eventTypes(evs []Event) []string {
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	repo        repositories.TournamentRepository
	events      *recorder
	tournaments TournamentService
	scores      ScoreService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := repositories.NewMemoryTournamentRepository()
	locks := NewLocker()
	rec := &recorder{}
	return &fixture{
		repo:        repo,
		events:      rec,
		tournaments: NewTournamentService(repo, locks, rec, nil, time.UTC, discardLogger),
		scores:      NewScoreService(repo, locks, rec, nil, discardLogger),
	}
}

func sampleInput(teams ...string) TournamentInput {
	if len(teams) == 0 {
		teams = []string{"A", "B", "C", "D"}
	}
	in := TournamentInput{
		Name:          "Spring Cup",
		Code:          "1234",
		Type:          models.BracketSingle,
		Date:          "2026-06-01",
		StartTime:     "09:00",
		MatchDuration: 30,
		Courts:        []string{"Court 1", "Court 2"},
	}
	for _, n := range teams {
		in.Teams = append(in.Teams, TeamInput{Name: n})
	}
	return in
}

func (f *fixture) create(t *testing.T, in TournamentInput) *models.Tournament {
	t.Helper()
	tr, err := f.tournaments.Create(context.Background(), in)
	require.NoError(t, err)
	f.events.take()
	return tr
}

func (f *fixture) stored(t *testing.T, id string) *models.Tournament {
	t.Helper()
	tr, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return tr
}

func matchByID(t *testing.T, tr *models.Tournament, id string) *models.Match {
	t.Helper()
	for _, m := range tr.Matches {
		if m.ID == id {
			return m
		}
	}
	t.Fatalf("match %s not found", id)
	return nil
}

func straightSets() []models.Set {
	return []models.Set{{P1: 25, P2: 20}, {P1: 25, P2: 18}}
}
