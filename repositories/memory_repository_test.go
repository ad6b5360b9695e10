package repositories

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WilliamSoderberg/volley-bracket/models"
)

func sampleTournament(id, date string) *models.Tournament {
	one := 1
	return &models.Tournament{
		ID:            id,
		Name:          "Cup " + id,
		Code:          "secret",
		Type:          models.BracketSingle,
		Date:          date,
		StartTime:     "09:00",
		MatchDuration: 30,
		Courts:        []string{"1"},
		Teams:         models.TeamsFromNames([]string{"A", "B"}),
		Matches: []*models.Match{{
			ID: "1", Bracket: models.BracketWinners, Round: 1, Number: &one,
			P1:   models.Slot{Team: "T1"},
			P2:   models.Slot{Team: "T2"},
			Sets: []models.Set{}, Status: models.StatusPending,
		}},
	}
}

func TestMemoryRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTournamentRepository()

	in := sampleTournament("abc", "2026-06-01")
	require.NoError(t, repo.Create(ctx, in))
	assert.Equal(t, 1, in.Version)
	assert.False(t, in.CreatedAt.IsZero())
	require.ErrorIs(t, repo.Create(ctx, sampleTournament("abc", "2026-06-01")), ErrTournamentIDConflict)

	got, err := repo.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(in, got))

	got.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, got))
	assert.Equal(t, 2, got.Version)

	again, err := repo.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", again.Name)

	require.NoError(t, repo.Delete(ctx, "abc"))
	_, err = repo.GetByID(ctx, "abc")
	require.ErrorIs(t, err, ErrTournamentNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "abc"), ErrTournamentNotFound)
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTournamentRepository()
	in := sampleTournament("abc", "2026-06-01")
	require.NoError(t, repo.Create(ctx, in))

	in.Matches[0].Winner = "T1"
	got, err := repo.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, got.Matches[0].Winner)

	got.Matches[0].P1.Team = "changed"
	got.Courts[0] = "changed"
	fresh, err := repo.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "T1", fresh.Matches[0].P1.Team)
	assert.Equal(t, "1", fresh.Courts[0])
}

func TestMemoryRepositoryVersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTournamentRepository()
	require.NoError(t, repo.Create(ctx, sampleTournament("abc", "2026-06-01")))

	first, err := repo.GetByID(ctx, "abc")
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, "abc")
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, first))
	err = repo.Update(ctx, second)
	require.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, 1, second.Version)

	require.ErrorIs(t, repo.Update(ctx, sampleTournament("missing", "2026-06-01")), ErrTournamentNotFound)
}

func TestMemoryRepositoryListOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTournamentRepository()
	for _, tt := range []struct{ id, date string }{
		{"a", "2026-05-01"},
		{"b", "2026-07-01"},
		{"c", "2026-06-01"},
	} {
		require.NoError(t, repo.Create(ctx, sampleTournament(tt.id, tt.date)))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	ids := make([]string, len(list))
	for i, tr := range list {
		ids[i] = tr.ID
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)
}

func TestMemoryRepositoryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewMemoryTournamentRepository()
	_, err := repo.List(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
