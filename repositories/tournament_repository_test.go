package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	id      string
	doc     []byte
	version int
	at      time.Time
	err     error
}

func (f fakeRow) Scan(dest ...interface{}) error {
	if f.err != nil {
		return f.err
	}
	*dest[0].(*string) = f.id
	*dest[1].(*[]byte) = f.doc
	*dest[2].(*int) = f.version
	*dest[3].(*sql.NullTime) = sql.NullTime{Time: f.at, Valid: true}
	*dest[4].(*sql.NullTime) = sql.NullTime{Time: f.at.Add(time.Minute), Valid: true}
	return nil
}

func TestScanTournamentPrefersColumns(t *testing.T) {
	stored := sampleTournament("stale", "2026-06-01")
	stored.Version = 1
	doc, err := json.Marshal(stored)
	require.NoError(t, err)

	at := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	got, err := scanTournament(fakeRow{id: "abc", doc: doc, version: 4, at: at})
	require.NoError(t, err)

	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, 4, got.Version)
	assert.Equal(t, at, got.CreatedAt)
	assert.Equal(t, at.Add(time.Minute), got.UpdatedAt)
	if diff := cmp.Diff(stored.Matches, got.Matches); diff != "" {
		t.Errorf("matches mismatch (-want +got):\n%s", diff)
	}
}

func TestScanTournamentErrors(t *testing.T) {
	_, err := scanTournament(fakeRow{err: sql.ErrNoRows})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = scanTournament(fakeRow{id: "abc", doc: []byte("{")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode tournament abc")
}

func TestHandleTournamentError(t *testing.T) {
	r := &postgresTournamentRepository{}
	other := errors.New("connection reset")

	tests := []struct {
		name   string
		in     error
		wantIs error
		want   string
	}{
		{name: "nil", in: nil},
		{name: "duplicate id", in: &pq.Error{Code: "23505"}, wantIs: ErrTournamentIDConflict},
		{name: "bad value", in: &pq.Error{Code: "22P02", Message: "invalid input syntax"}, want: "invalid tournament column value: invalid input syntax"},
		{name: "passthrough", in: other, wantIs: other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.handleTournamentError(tt.in)
			switch {
			case tt.in == nil:
				assert.NoError(t, err)
			case tt.wantIs != nil:
				assert.ErrorIs(t, err, tt.wantIs)
			default:
				assert.EqualError(t, err, tt.want)
			}
		})
	}
}

type affected int64

func (a affected) LastInsertId() (int64, error) { return 0, nil }
func (a affected) RowsAffected() (int64, error) { return int64(a), nil }

func TestCheckAffectedRows(t *testing.T) {
	assert.NoError(t, checkAffectedRows(affected(1), ErrTournamentNotFound))
	assert.ErrorIs(t, checkAffectedRows(affected(0), ErrTournamentNotFound), ErrTournamentNotFound)
}
