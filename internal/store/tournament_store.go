package store

import (
	"context"
	"database/sql"

	"github.com/AdamBeresnev/tournament-scoreboard/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

const (
	insertTournamentQuery = `INSERT INTO tournaments (id, name, format, status, current_phase, current_match_id)
		VALUES (:id, :name, :format, :status, :current_phase, :current_match_id)`
	updateTournamentQuery = `UPDATE tournaments SET
		status = :status,
		current_phase = :current_phase,
		current_match_id = :current_match_id
		WHERE id = :id`
	insertCompetitorQuery = `INSERT INTO competitors (id, tournament_id, name, seed)
		VALUES (:id, :tournament_id, :name, :seed)`
	insertMatchQuery = `INSERT INTO matches (id, tournament_id, phase, round_number, match_number, match_type, group_name,
		slot_1_id, slot_2_id, score_1, score_2, winner_id, is_completed, is_bye, next_match_id, loser_next_match_id, completed_seq)
		VALUES (:id, :tournament_id, :phase, :round_number, :match_number, :match_type, :group_name,
		:slot_1_id, :slot_2_id, :score_1, :score_2, :winner_id, :is_completed, :is_bye, :next_match_id, :loser_next_match_id, :completed_seq)`
	updateMatchQuery = `UPDATE matches SET
		slot_1_id = :slot_1_id,
		slot_2_id = :slot_2_id,
		score_1 = :score_1,
		score_2 = :score_2,
		winner_id = :winner_id,
		is_completed = :is_completed,
		is_bye = :is_bye,
		completed_seq = :completed_seq
		WHERE id = :id`
	getMatchesQuery = "SELECT * FROM matches WHERE tournament_id = ? ORDER BY round_number ASC, match_number ASC"
)

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, insertTournamentQuery, tournament)
	return err
}

func (s *TournamentStore) UpdateTournamentTx(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, updateTournamentQuery, tournament)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return getTournament(ctx, s.db, id)
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Tournament, error) {
	return getTournament(ctx, tx, id)
}

func getTournament(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := sqlx.GetContext(ctx, q, &tournament, "SELECT * FROM tournaments WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments ORDER BY created_at DESC")
	return tournaments, err
}

// DeleteTournamentTx removes the tournament; competitors and matches go with it.
func (s *TournamentStore) DeleteTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM tournaments WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *TournamentStore) CreateCompetitors(ctx context.Context, tx *sqlx.Tx, competitors []bracket.Competitor) error {
	if len(competitors) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, insertCompetitorQuery, competitors)
	return err
}

func (s *TournamentStore) GetCompetitors(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Competitor, error) {
	return getCompetitors(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetCompetitorsTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Competitor, error) {
	return getCompetitors(ctx, tx, tournamentID)
}

func getCompetitors(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]bracket.Competitor, error) {
	var competitors []bracket.Competitor
	err := sqlx.SelectContext(ctx, q, &competitors, "SELECT * FROM competitors WHERE tournament_id = ? ORDER BY seed ASC", tournamentID)
	return competitors, err
}

func (s *TournamentStore) GetCompetitor(ctx context.Context, id uuid.UUID) (*bracket.Competitor, error) {
	var competitor bracket.Competitor
	if err := s.db.GetContext(ctx, &competitor, "SELECT * FROM competitors WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &competitor, nil
}

// CreateMatches inserts row by row; a large round robin would overflow SQLite's bound parameter limit as one batch.
func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	for i := range matches {
		if _, err := tx.NamedExecContext(ctx, insertMatchQuery, &matches[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *TournamentStore) CountMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM matches WHERE tournament_id = ?", tournamentID)
	return count, err
}

func (s *TournamentStore) UpdateMatchesTx(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	for i := range matches {
		if _, err := tx.NamedExecContext(ctx, updateMatchQuery, &matches[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *TournamentStore) GetMatch(ctx context.Context, id uuid.UUID) (*bracket.Match, error) {
	return getMatch(ctx, s.db, id)
}

func (s *TournamentStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Match, error) {
	return getMatch(ctx, tx, id)
}

func getMatch(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Match, error) {
	var match bracket.Match
	if err := sqlx.GetContext(ctx, q, &match, "SELECT * FROM matches WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &match, nil
}

// GetMatches returns the tournament's matches in bracket order.
func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	return getMatches(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Match, error) {
	return getMatches(ctx, tx, tournamentID)
}

func getMatches(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]bracket.Match, error) {
	var matches []bracket.Match
	if err := sqlx.SelectContext(ctx, q, &matches, getMatchesQuery, tournamentID); err != nil {
		return nil, err
	}
	bracket.SortMatches(matches)
	return matches, nil
}
