package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/tournament-scoreboard/internal/bracket"
	"github.com/AdamBeresnev/tournament-scoreboard/internal/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tID, competitors := f.start(t, bracket.SingleElimination, 4)

	match1 := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)
	match2 := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 2)
	final := f.findMatch(t, tID, bracket.PrimaryPhase, 2, 1)

	entry1 := competitors[0]
	entry4 := competitors[3]

	completed, err := f.matches.CompleteMatch(ctx, match1.ID, entry1.ID)
	require.NoError(t, err)
	assert.True(t, completed.IsCompleted)
	assert.Equal(t, entry1.ID, *completed.WinnerID)

	updatedFinal := f.findMatch(t, tID, bracket.PrimaryPhase, 2, 1)
	require.NotNil(t, updatedFinal.Slot1ID)
	assert.Equal(t, entry1.ID, *updatedFinal.Slot1ID)
	assert.Nil(t, updatedFinal.Slot2ID)
	assert.Equal(t, match2.ID, *f.tournament(t, tID).CurrentMatchID)

	_, err = f.matches.CompleteMatch(ctx, match2.ID, entry4.ID)
	require.NoError(t, err)

	updatedFinal = f.findMatch(t, tID, bracket.PrimaryPhase, 2, 1)
	require.NotNil(t, updatedFinal.Slot2ID)
	assert.Equal(t, entry4.ID, *updatedFinal.Slot2ID)
	assert.Equal(t, final.ID, *f.tournament(t, tID).CurrentMatchID)

	_, err = f.matches.CompleteMatch(ctx, final.ID, entry4.ID)
	require.NoError(t, err)

	tournament := f.tournament(t, tID)
	assert.Equal(t, bracket.TournamentCompleted, tournament.Status)
	assert.Nil(t, tournament.CurrentMatchID)

	types := f.published.types()
	assert.Equal(t, events.TournamentCompleted, types[len(types)-1])
}

func TestCompleteMatch_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tID, competitors := f.start(t, bracket.SingleElimination, 4)

	match1 := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)
	final := f.findMatch(t, tID, bracket.PrimaryPhase, 2, 1)

	_, err := f.matches.CompleteMatch(ctx, uuid.New(), competitors[0].ID)
	assert.ErrorIs(t, err, bracket.ErrMatchNotFound)

	_, err = f.matches.CompleteMatch(ctx, match1.ID, competitors[2].ID)
	assert.ErrorIs(t, err, bracket.ErrInvalidWinner)

	_, err = f.matches.CompleteMatch(ctx, final.ID, competitors[0].ID)
	assert.ErrorIs(t, err, bracket.ErrMatchNotReady)

	_, err = f.matches.CompleteMatch(ctx, match1.ID, competitors[0].ID)
	require.NoError(t, err)

	_, err = f.matches.CompleteMatch(ctx, match1.ID, competitors[1].ID)
	assert.ErrorIs(t, err, bracket.ErrMatchCompleted)

	// Rejected calls leave nothing behind
	updated := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)
	assert.Equal(t, competitors[0].ID, *updated.WinnerID)
	updatedFinal := f.findMatch(t, tID, bracket.PrimaryPhase, 2, 1)
	assert.Equal(t, competitors[0].ID, *updatedFinal.Slot1ID)
	assert.Nil(t, updatedFinal.Slot2ID)
}

func TestDoubleEliminationAdvancement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tID, competitors := f.start(t, bracket.DoubleElimination, 4)
	c := func(i int) uuid.UUID { return competitors[i-1].ID }

	// WB Round 1 Match 1: Team 1 vs Team 2
	wbR1M1 := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)
	require.True(t, wbR1M1.HasCompetitor(c(1)) && wbR1M1.HasCompetitor(c(2)))

	_, err := f.matches.CompleteMatch(ctx, wbR1M1.ID, c(1))
	require.NoError(t, err)

	wbR2M1 := f.findMatch(t, tID, bracket.PrimaryPhase, 2, 1)
	require.NotNil(t, wbR2M1.Slot1ID)
	assert.Equal(t, c(1), *wbR2M1.Slot1ID)

	// The loser drops into the losers bracket instead of going out
	lbR1M1 := f.findMatch(t, tID, bracket.SecondaryPhase, 1, 1)
	require.NotNil(t, lbR1M1.Slot1ID)
	assert.Equal(t, c(2), *lbR1M1.Slot1ID)

	wbR1M2 := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 2)
	_, err = f.matches.CompleteMatch(ctx, wbR1M2.ID, c(3))
	require.NoError(t, err)

	lbR1M1 = f.findMatch(t, tID, bracket.SecondaryPhase, 1, 1)
	assert.Equal(t, c(4), *lbR1M1.Slot2ID)

	// Winners bracket keeps priority over the losers bracket
	assert.Equal(t, wbR2M1.ID, *f.tournament(t, tID).CurrentMatchID)

	_, err = f.matches.CompleteMatch(ctx, wbR2M1.ID, c(1))
	require.NoError(t, err)

	lbR2M1 := f.findMatch(t, tID, bracket.SecondaryPhase, 2, 1)
	assert.Equal(t, c(3), *lbR2M1.Slot1ID)
	assert.Equal(t, lbR1M1.ID, *f.tournament(t, tID).CurrentMatchID)

	_, err = f.matches.CompleteMatch(ctx, lbR1M1.ID, c(2))
	require.NoError(t, err)
	_, err = f.matches.CompleteMatch(ctx, lbR2M1.ID, c(2))
	require.NoError(t, err)

	grandFinal := f.findMatch(t, tID, bracket.FinalPhase, 1, 1)
	assert.Equal(t, c(1), *grandFinal.Slot1ID)
	assert.Equal(t, c(2), *grandFinal.Slot2ID)

	_, err = f.matches.CompleteMatch(ctx, grandFinal.ID, c(2))
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCompleted, f.tournament(t, tID).Status)
}

func TestDoubleElimination_ByeHandling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 3 competitors -> 4 slots. Team 3 skips round 1.
	tID, competitors := f.start(t, bracket.DoubleElimination, 3)
	c := func(i int) uuid.UUID { return competitors[i-1].ID }

	wbR1M2 := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 2)
	assert.True(t, wbR1M2.IsCompleted)
	assert.Nil(t, wbR1M2.WinnerID, "empty round 1 match is closed without a winner")

	wbR2M1 := f.findMatch(t, tID, bracket.PrimaryPhase, 2, 1)
	assert.Equal(t, c(3), *wbR2M1.Slot1ID)

	wbR1M1 := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)
	_, err := f.matches.CompleteMatch(ctx, wbR1M1.ID, c(1))
	require.NoError(t, err)

	// Team 2 is alone in losers round 1 and moves on by bye
	lbR1M1 := f.findMatch(t, tID, bracket.SecondaryPhase, 1, 1)
	assert.True(t, lbR1M1.IsBye)
	assert.Equal(t, c(2), *lbR1M1.WinnerID)

	lbR2M1 := f.findMatch(t, tID, bracket.SecondaryPhase, 2, 1)
	assert.Equal(t, c(2), *lbR2M1.Slot1ID)
	assert.Nil(t, lbR2M1.Slot2ID)

	assert.Equal(t, wbR2M1.ID, *f.tournament(t, tID).CurrentMatchID)
}

func TestUpdateScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tID, _ := f.start(t, bracket.RoundRobin, 3)
	m := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)

	updated, err := f.matches.UpdateScore(ctx, m.ID, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Score1)
	assert.Equal(t, 3, updated.Score2)
	assert.False(t, updated.IsCompleted)

	stored := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)
	assert.Equal(t, 7, stored.Score1)
	assert.Equal(t, 3, stored.Score2)

	_, err = f.matches.UpdateScore(ctx, m.ID, -1, 3)
	assert.ErrorIs(t, err, bracket.ErrInvalidScore)

	_, err = f.matches.UpdateScore(ctx, uuid.New(), 1, 1)
	assert.ErrorIs(t, err, bracket.ErrMatchNotFound)

	assert.Contains(t, f.published.types(), events.ScoreUpdated)
}

func TestAddPoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tID, _ := f.start(t, bracket.SingleElimination, 4)
	m := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)

	for _, slot := range []int{2, 2, 1} {
		_, err := f.matches.AddPoint(ctx, m.ID, slot)
		require.NoError(t, err)
	}
	stored := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)
	assert.Equal(t, 1, stored.Score1)
	assert.Equal(t, 2, stored.Score2)

	_, err := f.matches.AddPoint(ctx, m.ID, 0)
	assert.ErrorIs(t, err, bracket.ErrInvalidSlot)

	final := f.findMatch(t, tID, bracket.PrimaryPhase, 2, 1)
	_, err = f.matches.AddPoint(ctx, final.ID, 1)
	assert.ErrorIs(t, err, bracket.ErrMatchNotReady)

	_, err = f.matches.CompleteMatch(ctx, m.ID, *m.Slot2ID)
	require.NoError(t, err)
	_, err = f.matches.AddPoint(ctx, m.ID, 1)
	assert.ErrorIs(t, err, bracket.ErrMatchCompleted)

	assert.Contains(t, f.published.types(), events.ScoreUpdated)
}

func TestCompleteFromScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tID, _ := f.start(t, bracket.SingleElimination, 4)
	m := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)

	_, err := f.matches.UpdateScore(ctx, m.ID, 4, 4)
	require.NoError(t, err)

	_, err = f.matches.CompleteFromScore(ctx, m.ID, 0)
	assert.ErrorIs(t, err, bracket.ErrScoreTied)
	stored := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)
	assert.False(t, stored.IsCompleted)

	completed, err := f.matches.CompleteFromScore(ctx, m.ID, 2)
	require.NoError(t, err)
	assert.True(t, completed.IsCompleted)
	assert.Equal(t, *m.Slot2ID, *completed.WinnerID)

	final := f.findMatch(t, tID, bracket.PrimaryPhase, 2, 1)
	assert.Equal(t, *m.Slot2ID, *final.Slot1ID)

	_, err = f.matches.CompleteFromScore(ctx, m.ID, 1)
	assert.ErrorIs(t, err, bracket.ErrMatchCompleted)

	assert.Contains(t, f.published.types(), events.MatchCompleted)
}

func TestCompleteFromScore_DecidesByScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tID, _ := f.start(t, bracket.SingleElimination, 2)
	m := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)

	_, err := f.matches.UpdateScore(ctx, m.ID, 11, 9)
	require.NoError(t, err)

	completed, err := f.matches.CompleteFromScore(ctx, m.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, *m.Slot1ID, *completed.WinnerID)

	assert.Equal(t, bracket.TournamentCompleted, f.tournament(t, tID).Status)
	types := f.published.types()
	assert.Equal(t, events.TournamentCompleted, types[len(types)-1])
}

func TestSwapSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tID, _ := f.start(t, bracket.RoundRobin, 3)
	m := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)

	_, err := f.matches.UpdateScore(ctx, m.ID, 5, 2)
	require.NoError(t, err)

	swapped, err := f.matches.SwapSlots(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, *m.Slot1ID, *swapped.Slot2ID)
	assert.Equal(t, *m.Slot2ID, *swapped.Slot1ID)
	assert.Equal(t, 2, swapped.Score1)
	assert.Equal(t, 5, swapped.Score2)

	_, err = f.matches.CompleteMatch(ctx, m.ID, *m.Slot1ID)
	require.NoError(t, err)
	_, err = f.matches.SwapSlots(ctx, m.ID)
	assert.ErrorIs(t, err, bracket.ErrMatchCompleted)
}

func TestSetCurrentMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tID, _ := f.start(t, bracket.SingleElimination, 4)

	match2 := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 2)
	_, err := f.matches.SetCurrentMatch(ctx, match2.ID)
	require.NoError(t, err)
	assert.Equal(t, match2.ID, *f.tournament(t, tID).CurrentMatchID)

	data, err := f.matches.GetMatch(ctx, match2.ID)
	require.NoError(t, err)
	assert.True(t, data.IsCurrent)

	final := f.findMatch(t, tID, bracket.PrimaryPhase, 2, 1)
	_, err = f.matches.SetCurrentMatch(ctx, final.ID)
	assert.ErrorIs(t, err, bracket.ErrMatchNotReady)
	assert.Equal(t, match2.ID, *f.tournament(t, tID).CurrentMatchID)
}

func TestGetMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tID, competitors := f.start(t, bracket.SingleElimination, 3)

	first := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)
	data, err := f.matches.GetMatch(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, data.Match.ID)
	require.NotNil(t, data.Competitor1)
	require.NotNil(t, data.Competitor2)
	assert.Equal(t, competitors[0].Name, data.Competitor1.Name)
	assert.Equal(t, competitors[1].Name, data.Competitor2.Name)
	assert.True(t, data.IsCurrent)

	final := f.findMatch(t, tID, bracket.PrimaryPhase, 2, 1)
	data, err = f.matches.GetMatch(ctx, final.ID)
	require.NoError(t, err)
	require.NotNil(t, data.Competitor1)
	assert.Nil(t, data.Competitor2)
	assert.False(t, data.IsCurrent)

	_, err = f.matches.GetMatch(ctx, uuid.New())
	assert.ErrorIs(t, err, bracket.ErrMatchNotFound)
}

func TestPickNextMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tID, competitors := f.start(t, bracket.RoundRobin, 5)
	c := func(i int) uuid.UUID { return competitors[i-1].ID }

	// R1: 1v2, 1v3. R2: 1v4, 1v5. ... R5: 3v5, 4v5. 1v2 is current.
	next, err := f.matches.PickNextMatch(ctx, tID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, f.findMatch(t, tID, bracket.PrimaryPhase, 1, 2).ID, next.Match.ID)
	assert.False(t, next.Continuity, "nothing has been played yet")

	// 4v5 is played out of order; Team 4 stays on court for 1v4 ahead of 1v3
	r5m2 := f.findMatch(t, tID, bracket.PrimaryPhase, 5, 2)
	require.True(t, r5m2.HasCompetitor(c(4)) && r5m2.HasCompetitor(c(5)))
	_, err = f.matches.CompleteMatch(ctx, r5m2.ID, c(4))
	require.NoError(t, err)

	r1m1 := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)
	assert.Equal(t, r1m1.ID, *f.tournament(t, tID).CurrentMatchID)

	next, err = f.matches.PickNextMatch(ctx, tID)
	require.NoError(t, err)
	require.NotNil(t, next)
	r2m1 := f.findMatch(t, tID, bracket.PrimaryPhase, 2, 1)
	require.True(t, r2m1.HasCompetitor(c(1)) && r2m1.HasCompetitor(c(4)))
	assert.Equal(t, r2m1.ID, next.Match.ID)
	assert.True(t, next.Continuity)
}

func TestPickNextMatch_NothingLeft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tID, competitors := f.start(t, bracket.SingleElimination, 2)

	// The only match is current, so there is nothing to suggest after it
	next, err := f.matches.PickNextMatch(ctx, tID)
	require.NoError(t, err)
	assert.Nil(t, next)

	only := f.findMatch(t, tID, bracket.PrimaryPhase, 1, 1)
	_, err = f.matches.CompleteMatch(ctx, only.ID, competitors[1].ID)
	require.NoError(t, err)

	next, err = f.matches.PickNextMatch(ctx, tID)
	require.NoError(t, err)
	assert.Nil(t, next)

	_, err = f.matches.PickNextMatch(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
