package bracket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swissResult(round, number int, s1, s2 uuid.UUID, score1, score2 int) Match {
	m := result(s1, s2, score1, score2, nil)
	m.RoundNumber, m.MatchNumber = round, number
	if score1 > score2 {
		m.WinnerID = &s1
	} else {
		m.WinnerID = &s2
	}
	return m
}

func swissBye(round, number int, id uuid.UUID) Match {
	return Match{
		ID:          uuid.New(),
		Phase:       PrimaryPhase,
		RoundNumber: round,
		MatchNumber: number,
		Slot1ID:     &id,
		WinnerID:    &id,
		IsCompleted: true,
		IsBye:       true,
	}
}

func swissDraw(round, number int, s1, s2 uuid.UUID) Match {
	m := result(s1, s2, 1, 1, nil)
	m.RoundNumber, m.MatchNumber = round, number
	return m
}

func pairing(t *testing.T, m Match) [2]uuid.UUID {
	t.Helper()
	require.NotNil(t, m.Slot1ID)
	require.NotNil(t, m.Slot2ID)
	return [2]uuid.UUID{*m.Slot1ID, *m.Slot2ID}
}

func TestGenerateSwissRound_AvoidsRematches(t *testing.T) {
	ids := newIDs(4)
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]
	tournamentID := uuid.New()

	previous := []Match{
		swissResult(1, 1, a, b, 1, 0),
		swissResult(1, 2, c, d, 1, 0),
		swissResult(2, 1, a, c, 1, 0),
		swissResult(2, 2, b, d, 1, 0),
	}

	matches, err := GenerateSwissRound(tournamentID, 3, ids, previous)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// a leads and has met b and c already
	assert.Equal(t, [2]uuid.UUID{a, d}, pairing(t, matches[0]))
	assert.Equal(t, [2]uuid.UUID{b, c}, pairing(t, matches[1]))

	for i, m := range matches {
		assert.Equal(t, tournamentID, m.TournamentID)
		assert.Equal(t, 3, m.RoundNumber)
		assert.Equal(t, i+1, m.MatchNumber)
		assert.Equal(t, "Swiss Round 3", m.GroupName)
		assert.False(t, m.IsCompleted)
	}
}

func TestGenerateSwissRound_LooksAhead(t *testing.T) {
	ids := newIDs(6)
	a, b, c, d, e, f := ids[0], ids[1], ids[2], ids[3], ids[4], ids[5]

	// All drawn, so the ranking stays in field order
	previous := []Match{
		swissDraw(1, 1, e, f),
		swissDraw(1, 2, a, c),
		swissDraw(1, 3, b, d),
		swissDraw(2, 1, a, d),
		swissDraw(2, 2, b, e),
		swissDraw(2, 3, c, f),
	}

	matches, err := GenerateSwissRound(uuid.New(), 3, ids, previous)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// Taking c-d after a-b would leave e and f to meet again
	assert.Equal(t, [2]uuid.UUID{a, b}, pairing(t, matches[0]))
	assert.Equal(t, [2]uuid.UUID{c, e}, pairing(t, matches[1]))
	assert.Equal(t, [2]uuid.UUID{d, f}, pairing(t, matches[2]))
}

func TestGenerateSwissRound_RematchWhenEveryoneHasMet(t *testing.T) {
	ids := newIDs(4)
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]

	previous := []Match{
		swissDraw(1, 1, a, b),
		swissDraw(1, 2, c, d),
		swissDraw(2, 1, a, c),
		swissDraw(2, 2, b, d),
		swissDraw(3, 1, a, d),
		swissDraw(3, 2, b, c),
	}

	matches, err := GenerateSwissRound(uuid.New(), 4, ids, previous)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, [2]uuid.UUID{a, b}, pairing(t, matches[0]))
	assert.Equal(t, [2]uuid.UUID{c, d}, pairing(t, matches[1]))
}

func TestGenerateSwissRound_Bye(t *testing.T) {
	ids := newIDs(5)
	a, b, c, d, e := ids[0], ids[1], ids[2], ids[3], ids[4]

	previous := []Match{
		swissResult(1, 1, a, b, 1, 0),
		swissResult(1, 2, c, e, 1, 0),
		swissBye(1, 3, d),
		swissResult(2, 1, a, c, 1, 0),
		swissResult(2, 2, d, b, 0, 3),
		swissBye(2, 3, e),
	}

	matches, err := GenerateSwissRound(uuid.New(), 3, ids, previous)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// d and e are ranked lowest but already had their bye
	bye := matches[2]
	assert.True(t, bye.IsBye)
	assert.True(t, bye.IsCompleted)
	assert.Equal(t, c, *bye.Slot1ID)
	assert.Nil(t, bye.Slot2ID)
	assert.Equal(t, c, *bye.WinnerID)
	assert.Equal(t, "Swiss Round 3 (Bye)", bye.GroupName)

	// a's first choice e would leave b with d again
	assert.Equal(t, [2]uuid.UUID{a, d}, pairing(t, matches[0]))
	assert.Equal(t, [2]uuid.UUID{b, e}, pairing(t, matches[1]))
}

func TestGenerateSwissRound_Rejections(t *testing.T) {
	ids := newIDs(4)
	first := generate(t, Swiss, ids)

	_, err := GenerateSwissRound(uuid.New(), 2, ids, first)
	assert.ErrorIs(t, err, ErrRoundInProgress)

	for i := range first {
		first[i].IsCompleted = true
		first[i].WinnerID = first[i].Slot1ID
	}
	_, err = GenerateSwissRound(uuid.New(), 1, ids, first)
	assert.ErrorIs(t, err, ErrRoundExists)

	_, err = GenerateSwissRound(uuid.New(), 2, ids[:3], first)
	assert.ErrorIs(t, err, ErrInsufficientCompetitors)

	matches, err := GenerateSwissRound(uuid.New(), 2, ids, first)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}
