package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WilliamSoderberg/volley-bracket/brackets"
	"github.com/WilliamSoderberg/volley-bracket/models"
)

func TestCreateBuildsAndSchedules(t *testing.T) {
	f := newFixture(t)
	tr, err := f.tournaments.Create(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.Len(t, tr.ID, 8)
	assert.Equal(t, 1, tr.Version)
	assert.Equal(t, "1234", tr.Code)
	assert.Equal(t, []models.Team{{ID: "T1", Name: "A"}, {ID: "T2", Name: "B"}, {ID: "T3", Name: "C"}, {ID: "T4", Name: "D"}}, tr.Teams)
	require.Len(t, tr.Matches, 3)
	for _, m := range tr.Matches {
		require.NotNil(t, m.Time)
		assert.Equal(t, models.StatusScheduled, m.Status)
	}

	evs := f.events.take()
	assert.Equal(t, []string{brackets.EventDashboardUpdate, brackets.EventTournamentUpdate}, eventTypes(evs))
	require.NotNil(t, evs[1].Tournament)
	assert.Empty(t, evs[1].Tournament.Code, "pushed views never carry the code")

	stored := f.stored(t, tr.ID)
	assert.Equal(t, "1234", stored.Code)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TournamentInput)
		wantErr error
	}{
		{name: "blank name", mutate: func(in *TournamentInput) { in.Name = "  " }, wantErr: ErrTournamentNameRequired},
		{name: "bad date", mutate: func(in *TournamentInput) { in.Date = "01/06/2026" }, wantErr: ErrInvalidDate},
		{name: "bad start", mutate: func(in *TournamentInput) { in.StartTime = "9am" }, wantErr: ErrInvalidStartTime},
		{name: "zero duration", mutate: func(in *TournamentInput) { in.MatchDuration = 0 }, wantErr: ErrInvalidDuration},
		{name: "no courts", mutate: func(in *TournamentInput) { in.Courts = []string{" "} }, wantErr: ErrInvalidCourts},
		{name: "duplicate courts", mutate: func(in *TournamentInput) { in.Courts = []string{"1", "1"} }, wantErr: ErrInvalidCourts},
		{name: "even best of", mutate: func(in *TournamentInput) { in.BestOf = 4 }, wantErr: ErrInvalidBestOf},
		{name: "unknown type", mutate: func(in *TournamentInput) { in.Type = "swiss" }, wantErr: brackets.ErrUnsupportedType},
		{name: "one team", mutate: func(in *TournamentInput) { in.Teams = in.Teams[:1] }, wantErr: brackets.ErrInvalidTeams},
		{name: "mixed team ids", mutate: func(in *TournamentInput) { in.Teams[0].ID = "x" }, wantErr: ErrInvalidTeamList},
		{name: "duplicate team ids", mutate: func(in *TournamentInput) {
			in.Teams = []TeamInput{{ID: "x", Name: "A"}, {ID: "x", Name: "B"}}
		}, wantErr: brackets.ErrInvalidTeams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := sampleInput()
			tt.mutate(&in)

			_, err := f.tournaments.Create(context.Background(), in)
			require.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidationFailed)
			assert.Empty(t, f.events.take())

			list, err := f.tournaments.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestCreateRetriesTakenID(t *testing.T) {
	f := newFixture(t)
	svc := f.tournaments.(*tournamentService)
	ids := []string{"aaaa1111", "aaaa1111", "bbbb2222"}
	svc.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first := f.create(t, sampleInput())
	second := f.create(t, sampleInput())
	assert.Equal(t, "aaaa1111", first.ID)
	assert.Equal(t, "bbbb2222", second.ID)
}

func TestCreateWithExplicitTeamIDs(t *testing.T) {
	f := newFixture(t)
	in := sampleInput()
	in.Teams = []TeamInput{{ID: "sharks", Name: "Sharks"}, {ID: "owls", Name: "Owls"}}
	tr := f.create(t, in)

	require.Len(t, tr.Matches, 1)
	assert.Equal(t, "sharks", tr.Matches[0].P1.Team)
	assert.Equal(t, "owls", tr.Matches[0].P2.Team)
}

func TestUpdateSettingsKeepsResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, sampleInput())
	_, err := f.scores.Report(ctx, tr.ID, "1", straightSets(), AdminCredential())
	require.NoError(t, err)

	in := sampleInput()
	in.Name = "Summer Cup"
	in.Courts = []string{"Center"}
	in.StartTime = "10:00"
	updated, err := f.tournaments.Update(ctx, tr.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "Summer Cup", updated.Name)
	assert.Equal(t, 3, updated.Version)
	m1 := matchByID(t, updated, "1")
	assert.Equal(t, "T1", m1.Winner)
	assert.Equal(t, "T1", matchByID(t, updated, "3").P1.Team)
	for _, m := range updated.Matches {
		assert.Equal(t, "Center", *m.Court)
	}
	assert.Equal(t, 10, m1.Time.Hour())
	assert.Equal(t, 11, matchByID(t, updated, "3").Time.Hour())
}

func TestUpdateTeamsRebuildsBeforeResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, sampleInput())

	updated, err := f.tournaments.Update(ctx, tr.ID, sampleInput("A", "B", "C", "D", "E"))
	require.NoError(t, err)
	assert.Len(t, updated.Teams, 5)
	assert.Equal(t, 4, updated.PlayableMatches())

	typeChange := sampleInput("A", "B", "C", "D", "E")
	typeChange.Type = models.BracketDouble
	updated, err = f.tournaments.Update(ctx, tr.ID, typeChange)
	require.NoError(t, err)
	assert.Equal(t, models.BracketDouble, updated.Type)
	assert.Greater(t, updated.PlayableMatches(), 4)
}

func TestUpdateRefusesRebuildOnceStarted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, sampleInput())
	_, err := f.scores.Report(ctx, tr.ID, "1", straightSets(), AdminCredential())
	require.NoError(t, err)
	f.events.take()
	before := f.stored(t, tr.ID)

	typeChange := sampleInput()
	typeChange.Type = models.BracketDouble
	tests := []struct {
		name string
		in   TournamentInput
	}{
		{name: "renamed team", in: sampleInput("A", "B", "C", "Dee")},
		{name: "added team", in: sampleInput("A", "B", "C", "D", "E")},
		{name: "bracket type", in: typeChange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tournaments.Update(ctx, tr.ID, tt.in)
			require.ErrorIs(t, err, ErrTournamentStarted)
			assert.ErrorIs(t, err, ErrConflict)

			if diff := cmp.Diff(before, f.stored(t, tr.ID)); diff != "" {
				t.Errorf("stored tournament changed (-want +got):\n%s", diff)
			}
			assert.Empty(t, f.events.take())
		})
	}

	forced := sampleInput("A", "B", "C", "Dee")
	forced.Force = true
	updated, err := f.tournaments.Update(ctx, tr.ID, forced)
	require.NoError(t, err)
	assert.Equal(t, "Dee", updated.TeamName("T4"))
	for _, m := range updated.Matches {
		if !m.IsGhost() {
			assert.False(t, m.IsFinished(), "match %s", m.ID)
		}
	}
}

func TestUpdateConflictsAndMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, sampleInput())

	stale := sampleInput()
	stale.Version = tr.Version + 5
	_, err := f.tournaments.Update(ctx, tr.ID, stale)
	require.ErrorIs(t, err, ErrVersionConflict)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.tournaments.Update(ctx, "missing", sampleInput())
	require.ErrorIs(t, err, ErrTournamentNotFound)

	bad := sampleInput()
	bad.MatchDuration = -1
	_, err = f.tournaments.Update(ctx, tr.ID, bad)
	require.ErrorIs(t, err, ErrInvalidDuration)
	assert.Equal(t, tr.Version, f.stored(t, tr.ID).Version)
}

func TestDeleteTournament(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, sampleInput())

	require.NoError(t, f.tournaments.Delete(ctx, tr.ID))
	evs := f.events.take()
	require.Len(t, evs, 2)
	assert.True(t, evs[1].Deleted)
	assert.Nil(t, evs[1].Tournament)

	_, err := f.tournaments.Get(ctx, tr.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, f.tournaments.Delete(ctx, tr.ID), ErrTournamentNotFound)
}

func TestGetReturnsPublicSchedule(t *testing.T) {
	f := newFixture(t)
	in := sampleInput()
	in.Courts = []string{"Zeta", "Alpha"}
	tr := f.create(t, in)

	view, err := f.tournaments.Get(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Code)
	require.Len(t, view.Schedule, 3)

	first, second, final := view.Schedule[0], view.Schedule[1], view.Schedule[2]
	assert.Equal(t, "Zeta", first.Court, "court list order, not name order")
	assert.Equal(t, "Alpha", second.Court)
	assert.Equal(t, []string{"A", "D"}, []string{first.Team1, first.Team2})
	assert.Equal(t, "Winner of Match 1", final.Team1)
	assert.True(t, final.Time.Equal(time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)))

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"code"`)
	assert.Contains(t, string(raw), `"schedule"`)
}

func TestTeamInputAcceptsNamesAndObjects(t *testing.T) {
	var in TournamentInput
	require.NoError(t, json.Unmarshal([]byte(`{"teams":["A",{"id":"b","name":"B"}]}`), &in))
	assert.Equal(t, []TeamInput{{Name: "A"}, {ID: "b", Name: "B"}}, in.Teams)
}

func TestTeamInputRejectsUnknownKeys(t *testing.T) {
	var in TournamentInput
	err := json.Unmarshal([]byte(`{"teams":[{"name":"A","bogus":1}]}`), &in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "bogus"`)
}
