package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/tournament-scoreboard/internal/bracket"
	"github.com/AdamBeresnev/tournament-scoreboard/internal/events"
	"github.com/AdamBeresnev/tournament-scoreboard/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db        *sqlx.DB
	store     *store.TournamentStore
	publisher events.Publisher
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore, publisher events.Publisher) *MatchService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &MatchService{db: db, store: store, publisher: publisher}
}

type MatchData struct {
	Match       *bracket.Match      `json:"match"`
	Competitor1 *bracket.Competitor `json:"competitor1"`
	Competitor2 *bracket.Competitor `json:"competitor2"`
	IsCurrent   bool                `json:"is_current"`
}

// NextMatch is a scheduling suggestion. Continuity is set when the match
// reuses a competitor from the most recently played match.
type NextMatch struct {
	Match      *bracket.Match `json:"match"`
	Continuity bool           `json:"continuity"`
}

func (s *MatchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*MatchData, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, notFound(err, bracket.ErrMatchNotFound)
	}

	tournament, err := s.store.GetTournament(ctx, match.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	var competitor1, competitor2 *bracket.Competitor
	if match.Slot1ID != nil {
		c, err := s.store.GetCompetitor(ctx, *match.Slot1ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get competitor 1: %w", err)
		}
		competitor1 = c
	}
	if match.Slot2ID != nil {
		c, err := s.store.GetCompetitor(ctx, *match.Slot2ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get competitor 2: %w", err)
		}
		competitor2 = c
	}

	return &MatchData{
		Match:       match,
		Competitor1: competitor1,
		Competitor2: competitor2,
		IsCurrent:   tournament.IsCurrent(match),
	}, nil
}

// CompleteMatch records the winner, advances the bracket and moves the
// current match on, all in one transaction.
func (s *MatchService) CompleteMatch(ctx context.Context, matchID, winnerID uuid.UUID) (*bracket.Match, error) {
	var completed *bracket.Match
	b, err := s.mutate(ctx, matchID, func(b *bracket.Bracket) error {
		m, err := b.Complete(matchID, winnerID)
		completed = m
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishCompleted(ctx, b, completed)
	return completed, nil
}

// CompleteFromScore completes the match in favour of whoever leads on score.
// force 1 or 2 picks the winning slot regardless; a tie without force is rejected.
func (s *MatchService) CompleteFromScore(ctx context.Context, matchID uuid.UUID, force int) (*bracket.Match, error) {
	var completed *bracket.Match
	b, err := s.mutate(ctx, matchID, func(b *bracket.Bracket) error {
		m, err := b.CompleteFromScore(matchID, force)
		completed = m
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishCompleted(ctx, b, completed)
	return completed, nil
}

func (s *MatchService) publishCompleted(ctx context.Context, b *bracket.Bracket, completed *bracket.Match) {
	s.publisher.Publish(ctx, events.Event{
		Type:         events.MatchCompleted,
		TournamentID: b.Tournament.ID,
		MatchID:      &completed.ID,
		Payload:      map[string]any{"winner_id": completed.WinnerID, "current_match_id": b.Tournament.CurrentMatchID},
	})
	if b.Tournament.Status == bracket.TournamentCompleted {
		s.publisher.Publish(ctx, events.Event{Type: events.TournamentCompleted, TournamentID: b.Tournament.ID})
	}
}

func (s *MatchService) UpdateScore(ctx context.Context, matchID uuid.UUID, score1, score2 int) (*bracket.Match, error) {
	var updated *bracket.Match
	b, err := s.mutate(ctx, matchID, func(b *bracket.Bracket) error {
		m, err := b.SetScore(matchID, score1, score2)
		updated = m
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.Event{
		Type:         events.ScoreUpdated,
		TournamentID: b.Tournament.ID,
		MatchID:      &updated.ID,
		Payload:      map[string]int{"score1": score1, "score2": score2},
	})
	return updated, nil
}

// AddPoint adds one point to slot 1 or 2 of an open match.
func (s *MatchService) AddPoint(ctx context.Context, matchID uuid.UUID, slot int) (*bracket.Match, error) {
	var updated *bracket.Match
	b, err := s.mutate(ctx, matchID, func(b *bracket.Bracket) error {
		m, err := b.AddPoint(matchID, slot)
		updated = m
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.Event{
		Type:         events.ScoreUpdated,
		TournamentID: b.Tournament.ID,
		MatchID:      &updated.ID,
		Payload:      map[string]int{"score1": updated.Score1, "score2": updated.Score2},
	})
	return updated, nil
}

func (s *MatchService) SwapSlots(ctx context.Context, matchID uuid.UUID) (*bracket.Match, error) {
	var swapped *bracket.Match
	b, err := s.mutate(ctx, matchID, func(b *bracket.Bracket) error {
		m, err := b.SwapSlots(matchID)
		swapped = m
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.Event{Type: events.SlotsSwapped, TournamentID: b.Tournament.ID, MatchID: &swapped.ID})
	return swapped, nil
}

// SetCurrentMatch is the operator override for what is being played right now.
func (s *MatchService) SetCurrentMatch(ctx context.Context, matchID uuid.UUID) (*bracket.Match, error) {
	var current *bracket.Match
	b, err := s.mutate(ctx, matchID, func(b *bracket.Bracket) error {
		m, err := b.SetCurrent(matchID)
		current = m
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.Event{Type: events.CurrentMatchChanged, TournamentID: b.Tournament.ID, MatchID: &current.ID})
	return current, nil
}

// PickNextMatch suggests the match to call after the current one. It returns
// nil when nothing else is playable.
func (s *MatchService) PickNextMatch(ctx context.Context, tournamentID uuid.UUID) (*NextMatch, error) {
	tournament, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, notFound(err, ErrTournamentNotFound)
	}
	matches, err := s.store.GetMatches(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	m, continuity := bracket.New(tournament, matches).PickNext()
	if m == nil {
		return nil, nil
	}
	return &NextMatch{Match: m, Continuity: continuity}, nil
}

// mutate loads the bracket owning matchID, applies fn and persists whatever
// fn changed. The tournament must be running.
func (s *MatchService) mutate(ctx context.Context, matchID uuid.UUID, fn func(b *bracket.Bracket) error) (*bracket.Bracket, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, notFound(err, bracket.ErrMatchNotFound)
	}

	b, err := loadBracketTx(ctx, tx, s.store, match.TournamentID)
	if err != nil {
		return nil, err
	}
	if b.Tournament.Status == bracket.TournamentDraft {
		return nil, ErrNotStarted
	}

	if err := fn(b); err != nil {
		return nil, err
	}
	if err := saveBracketTx(ctx, tx, s.store, b); err != nil {
		return nil, err
	}
	return b, tx.Commit()
}
