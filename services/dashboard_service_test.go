package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WilliamSoderberg/volley-bracket/brackets"
	"github.com/WilliamSoderberg/volley-bracket/models"
	"github.com/WilliamSoderberg/volley-bracket/repositories"
)

// dated builds a tournament with n numbered 30 minute matches.
func dated(id, date, start string, n int) *models.Tournament {
	t := &models.Tournament{ID: id, Name: id, Date: date, StartTime: start, MatchDuration: 30}
	for i := 1; i <= n; i++ {
		num := i
		t.Matches = append(t.Matches, &models.Match{ID: id, Number: &num})
	}
	t.Matches = append(t.Matches, &models.Match{ID: "ghost"})
	return t
}

func ids(sums []models.TournamentSummary) []string {
	out := make([]string, len(sums))
	for i, s := range sums {
		out[i] = s.ID
	}
	return out
}

func TestClassifyWindowBoundaries(t *testing.T) {
	// 3 numbered matches of 30 minutes: live from 09:00 to 10:30 inclusive.
	tr := dated("cup", "2026-06-01", "09:00", 3)
	day := func(h, m, s int) time.Time { return time.Date(2026, 6, 1, h, m, s, 0, time.UTC) }

	tests := []struct {
		name string
		now  time.Time
		want models.Phase
	}{
		{name: "just before start", now: day(8, 59, 59), want: models.PhaseFuture},
		{name: "at start", now: day(9, 0, 0), want: models.PhaseLive},
		{name: "midway", now: day(9, 45, 0), want: models.PhaseLive},
		{name: "at end", now: day(10, 30, 0), want: models.PhaseLive},
		{name: "just after end", now: day(10, 30, 1), want: models.PhasePast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify([]*models.Tournament{tr}, tt.now, time.UTC)
			var got []models.TournamentSummary
			got = append(got, c.Live...)
			got = append(got, c.Future...)
			got = append(got, c.Past...)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Phase)
		})
	}
}

func TestClassifySortsAndSkipsUnparsable(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	ts := []*models.Tournament{
		dated("past-old", "2026-05-01", "09:00", 2),
		dated("future-late", "2026-07-01", "09:00", 2),
		dated("live-late", "2026-06-10", "11:30", 4),
		dated("past-recent", "2026-06-09", "09:00", 2),
		dated("broken", "June 1st", "09:00", 2),
		dated("future-soon", "2026-06-11", "09:00", 2),
		dated("live-early", "2026-06-10", "10:00", 8),
	}

	c := Classify(ts, now, time.UTC)
	assert.Equal(t, []string{"live-early", "live-late"}, ids(c.Live))
	assert.Equal(t, []string{"future-soon", "future-late"}, ids(c.Future))
	assert.Equal(t, []string{"past-recent", "past-old"}, ids(c.Past))
}

func TestClassifyUsesLocation(t *testing.T) {
	stockholm, err := time.LoadLocation("Europe/Stockholm")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	tr := dated("cup", "2026-06-01", "09:00", 2)
	// 09:00 in Stockholm is 07:00 UTC in summer.
	now := time.Date(2026, 6, 1, 7, 15, 0, 0, time.UTC)

	assert.Len(t, Classify([]*models.Tournament{tr}, now, stockholm).Live, 1)
	assert.Len(t, Classify([]*models.Tournament{tr}, now, time.UTC).Future, 1)
}

func TestDashboardReadsRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, sampleInput())

	dash := NewDashboardService(f.repo, f.events, time.UTC, discardLogger)
	c, err := dash.Dashboard(ctx, time.Date(2026, 6, 1, 9, 10, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, c.Live, 1)
	assert.Equal(t, models.TournamentSummary{
		ID:         tr.ID,
		Name:       "Spring Cup",
		Date:       "2026-06-01",
		StartTime:  "09:00",
		Type:       models.BracketSingle,
		TeamCount:  4,
		CourtCount: 2,
		Phase:      models.PhaseLive,
	}, c.Live[0])
	assert.Empty(t, c.Future)
	assert.Empty(t, c.Past)
}

func TestPhasesMoved(t *testing.T) {
	prev := map[string]models.Phase{"a": models.PhaseFuture, "b": models.PhaseLive}

	assert.False(t, phasesMoved(prev, map[string]models.Phase{"a": models.PhaseFuture, "b": models.PhaseLive}))
	assert.False(t, phasesMoved(prev, map[string]models.Phase{"a": models.PhaseFuture}), "deletions are not boundary moves")
	assert.False(t, phasesMoved(prev, map[string]models.Phase{"a": models.PhaseFuture, "b": models.PhaseLive, "c": models.PhasePast}))
	assert.True(t, phasesMoved(prev, map[string]models.Phase{"a": models.PhaseLive, "b": models.PhaseLive}))
}

func TestWatchBoundariesNotifiesOnPhaseChange(t *testing.T) {
	repo := repositories.NewMemoryTournamentRepository()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, repo.Create(ctx, dated("cup", "2026-06-01", "09:00", 2)))

	rec := &recorder{}
	svc := NewDashboardService(repo, rec, time.UTC, discardLogger).(*dashboardService)
	var ticks atomic.Int64
	start := time.Date(2026, 6, 1, 8, 59, 0, 0, time.UTC)
	svc.now = func() time.Time {
		// Each check advances the clock a minute: future, then live.
		return start.Add(time.Duration(ticks.Add(1)-1) * time.Minute)
	}

	done := make(chan error, 1)
	go func() { done <- svc.WatchBoundaries(ctx, time.Millisecond) }()

	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.events) > 0
	}, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	evs := rec.take()
	assert.Equal(t, brackets.EventDashboardUpdate, evs[0].Type)
}
