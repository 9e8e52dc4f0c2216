package selector_test

import (
	"testing"

	"github.com/kritsw/courtledger/internal/ledger"
	"github.com/kritsw/courtledger/internal/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePool(levels ...ledger.Level) []ledger.Player {
	pool := make([]ledger.Player, 0, len(levels))
	for i, lvl := range levels {
		gender := ledger.GenderMale
		if i%2 == 1 {
			gender = ledger.GenderFemale
		}
		pool = append(pool, ledger.Player{
			ID:     string(rune('a' + i)),
			Name:   "P" + string(rune('a'+i)),
			Gender: gender,
			Level:  lvl,
			Active: true,
			Status: ledger.StatusFree,
		})
	}
	return pool
}

func teamSum(team [2]ledger.Player) int {
	return int(team[0].Level) + int(team[1].Level)
}

func TestBalanced_RejectsSmallPool(t *testing.T) {
	_, err := selector.Balanced(makePool(1, 2, 3))
	assert.ErrorIs(t, err, selector.ErrInsufficientPlayers)
}

func TestBalanced_SplitsExtremesEvenly(t *testing.T) {
	// [1,1,5,5] must pair each 1 with a 5, never 1+1 vs 5+5.
	pairing, err := selector.Balanced(makePool(1, 1, 5, 5))
	require.NoError(t, err)
	assert.Equal(t, 0, pairing.Diff)
	assert.Equal(t, 6, teamSum(pairing.TeamA))
	assert.Equal(t, 6, teamSum(pairing.TeamB))
}

func TestBalanced_FindsMinimumDifference(t *testing.T) {
	// [2,4,3,4]: the three splits score 1, 3 and 1; only diff-1 splits may win.
	for i := 0; i < 50; i++ {
		pairing, err := selector.Balanced(makePool(2, 4, 3, 4))
		require.NoError(t, err)
		assert.Equal(t, 1, pairing.Diff)
		assert.Equal(t, 1, abs(teamSum(pairing.TeamA)-teamSum(pairing.TeamB)))
	}
}

func TestBalanced_GloballyOptimalAcrossSubsets(t *testing.T) {
	// Levels 1..6 admit perfectly balanced groupings (e.g. 1+4 vs 2+3),
	// so the winner must have diff 0.
	pairing, err := selector.Balanced(makePool(1, 2, 3, 4, 5, 6))
	require.NoError(t, err)
	assert.Equal(t, 0, pairing.Diff)
}

func TestBalanced_ReturnsFourDistinctPlayers(t *testing.T) {
	pairing, err := selector.Balanced(makePool(1, 2, 3, 4, 5))
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, p := range pairing.Players() {
		assert.False(t, seen[p.ID], "player %s appears twice", p.ID)
		seen[p.ID] = true
	}
	assert.Len(t, seen, 4)
}

func TestSuggest_RejectsSmallPool(t *testing.T) {
	_, err := selector.Suggest(makePool(1, 2, 3), selector.GenderAny, 0)
	assert.ErrorIs(t, err, selector.ErrInsufficientPlayers)
}

func TestSuggest_LevelFilter(t *testing.T) {
	pool := makePool(3, 3, 3, 3, 5, 5)
	team, err := selector.Suggest(pool, selector.GenderAny, ledger.LevelIntermediate)
	require.NoError(t, err)
	require.Len(t, team, 4)
	for _, p := range team {
		assert.Equal(t, ledger.LevelIntermediate, p.Level)
	}

	// Not enough level-5 players.
	_, err = selector.Suggest(pool, selector.GenderAny, ledger.LevelExpert)
	assert.ErrorIs(t, err, selector.ErrInsufficientPlayers)
}

func TestSuggest_MixedComposition(t *testing.T) {
	pool := makePool(1, 2, 3, 4, 5, 6) // alternating M/F
	team, err := selector.Suggest(pool, selector.GenderMixed, 0)
	require.NoError(t, err)
	require.Len(t, team, 4)

	var males, females int
	for _, p := range team {
		switch p.Gender {
		case ledger.GenderMale:
			males++
		case ledger.GenderFemale:
			females++
		}
	}
	assert.Equal(t, 2, males)
	assert.Equal(t, 2, females)
}

func TestSuggest_SingleGenderFallsBack(t *testing.T) {
	// Only 3 males available: falls back to any 4 rather than failing.
	pool := []ledger.Player{
		{ID: "1", Gender: ledger.GenderMale, Level: 1},
		{ID: "2", Gender: ledger.GenderMale, Level: 2},
		{ID: "3", Gender: ledger.GenderMale, Level: 3},
		{ID: "4", Gender: ledger.GenderFemale, Level: 4},
		{ID: "5", Gender: ledger.GenderFemale, Level: 5},
	}
	team, err := selector.Suggest(pool, selector.GenderMale, 0)
	require.NoError(t, err)
	assert.Len(t, team, 4)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
