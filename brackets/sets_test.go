package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WilliamSoderberg/volley-bracket/models"
)

func TestSetRuleDecide(t *testing.T) {
	tests := []struct {
		name    string
		rule    SetRule
		sets    []models.Set
		want    int
		wantErr error
	}{
		{name: "single set", sets: []models.Set{{P1: 21, P2: 15}}, want: 1},
		{name: "straight sets for side 2", sets: []models.Set{{P1: 20, P2: 25}, {P1: 23, P2: 25}}, want: 2},
		{name: "three sets", sets: []models.Set{{P1: 25, P2: 20}, {P1: 20, P2: 25}, {P1: 15, P2: 13}}, want: 1},
		{name: "free count allows extra sets", sets: []models.Set{{P1: 25, P2: 20}, {P1: 25, P2: 20}, {P1: 20, P2: 25}}, want: 1},
		{name: "empty", sets: []models.Set{}, wantErr: ErrNoSets},
		{name: "tied set", sets: []models.Set{{P1: 25, P2: 20}, {P1: 24, P2: 24}}, wantErr: ErrUndecidedSet},
		{name: "level on sets", sets: []models.Set{{P1: 25, P2: 20}, {P1: 20, P2: 25}}, wantErr: ErrNoMajority},
		{name: "negative", sets: []models.Set{{P1: 25, P2: -3}}, wantErr: ErrInvalidSets},
		{name: "best of 3 decided in 2", rule: SetRule{BestOf: 3}, sets: []models.Set{{P1: 25, P2: 20}, {P1: 25, P2: 22}}, want: 1},
		{name: "best of 3 decided in 3", rule: SetRule{BestOf: 3}, sets: []models.Set{{P1: 25, P2: 20}, {P1: 22, P2: 25}, {P1: 12, P2: 15}}, want: 2},
		{name: "best of 3 unfinished", rule: SetRule{BestOf: 3}, sets: []models.Set{{P1: 25, P2: 20}}, wantErr: ErrNoMajority},
		{name: "best of 3 played on", rule: SetRule{BestOf: 3}, sets: []models.Set{{P1: 25, P2: 20}, {P1: 25, P2: 20}, {P1: 20, P2: 25}}, wantErr: ErrSetsAfterWin},
		{name: "best of 3 too many", rule: SetRule{BestOf: 3}, sets: []models.Set{{P1: 25, P2: 20}, {P1: 20, P2: 25}, {P1: 25, P2: 20}, {P1: 25, P2: 20}}, wantErr: ErrTooManySets},
		{name: "best of 5", rule: SetRule{BestOf: 5}, sets: []models.Set{{P1: 25, P2: 20}, {P1: 20, P2: 25}, {P1: 25, P2: 20}, {P1: 25, P2: 20}}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rule.Decide(tt.sets)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
