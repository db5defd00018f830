package bracket

import (
	"time"

	"github.com/google/uuid"
)

// Phase separates logically distinct match sets inside one tournament.
type Phase string

const (
	PrimaryPhase   Phase = "primary"
	SecondaryPhase Phase = "secondary"
	PlayoffPhase   Phase = "playoff"
	FinalPhase     Phase = "final"
)

// Rank orders phases: primary bracket/group first, finals last.
func (p Phase) Rank() int {
	switch p {
	case PrimaryPhase:
		return 0
	case SecondaryPhase:
		return 1
	case PlayoffPhase:
		return 2
	case FinalPhase:
		return 3
	}
	return 4
}

type MatchType string

const (
	BracketMatch MatchType = "bracket"
	LosersMatch  MatchType = "losers_bracket"
	GroupMatch   MatchType = "group"
	FinalsMatch  MatchType = "finals"
)

type Match struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`

	// Position in the tournament, ordered by (phase, round, match number)
	Phase       Phase     `db:"phase" json:"phase"`
	RoundNumber int       `db:"round_number" json:"round_number"`
	MatchNumber int       `db:"match_number" json:"match_number"`
	MatchType   MatchType `db:"match_type" json:"match_type"`
	GroupName   string    `db:"group_name" json:"group_name"`

	Slot1ID *uuid.UUID `db:"slot_1_id" json:"slot1_id"`
	Slot2ID *uuid.UUID `db:"slot_2_id" json:"slot2_id"`

	Score1 int `db:"score_1" json:"score1"`
	Score2 int `db:"score_2" json:"score2"`

	WinnerID    *uuid.UUID `db:"winner_id" json:"winner_id"`
	IsCompleted bool       `db:"is_completed" json:"is_completed"`
	IsBye       bool       `db:"is_bye" json:"is_bye"`

	NextMatchID      *uuid.UUID `db:"next_match_id" json:"next_match_id"`
	LoserNextMatchID *uuid.UUID `db:"loser_next_match_id" json:"loser_next_match_id"`

	// Zero for matches resolved during generation
	CompletedSeq int `db:"completed_seq" json:"completed_seq"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsPlayable reports whether both competitors are known and the match is still open.
func (m *Match) IsPlayable() bool {
	return !m.IsCompleted && m.Slot1ID != nil && m.Slot2ID != nil
}

func (m *Match) HasCompetitor(id uuid.UUID) bool {
	return (m.Slot1ID != nil && *m.Slot1ID == id) || (m.Slot2ID != nil && *m.Slot2ID == id)
}

// Loser returns the losing competitor of a completed, played match.
func (m *Match) Loser() *uuid.UUID {
	if !m.IsCompleted || m.WinnerID == nil || m.Slot1ID == nil || m.Slot2ID == nil {
		return nil
	}
	if *m.Slot1ID == *m.WinnerID {
		return m.Slot2ID
	}
	return m.Slot1ID
}

func (m *Match) occupants() int {
	n := 0
	if m.Slot1ID != nil {
		n++
	}
	if m.Slot2ID != nil {
		n++
	}
	return n
}

// place puts a competitor into the first open slot. It returns false when both are taken.
func (m *Match) place(id uuid.UUID) bool {
	if m.Slot1ID == nil {
		m.Slot1ID = &id
		return true
	}
	if m.Slot2ID == nil {
		m.Slot2ID = &id
		return true
	}
	return false
}

// Before reports whether m comes strictly before o in bracket order.
func (m *Match) Before(o *Match) bool {
	if m.Phase.Rank() != o.Phase.Rank() {
		return m.Phase.Rank() < o.Phase.Rank()
	}
	if m.RoundNumber != o.RoundNumber {
		return m.RoundNumber < o.RoundNumber
	}
	return m.MatchNumber < o.MatchNumber
}

// stage is the (phase, round) part of the ordering key; links must move to a later stage.
func (m *Match) stageBefore(o *Match) bool {
	if m.Phase.Rank() != o.Phase.Rank() {
		return m.Phase.Rank() < o.Phase.Rank()
	}
	return m.RoundNumber < o.RoundNumber
}
