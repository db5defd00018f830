package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/tournament-scoreboard/internal/bracket"
	"github.com/AdamBeresnev/tournament-scoreboard/internal/events"
	"github.com/AdamBeresnev/tournament-scoreboard/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CompetitorService struct {
	db        *sqlx.DB
	store     *store.TournamentStore
	publisher events.Publisher
}

func NewCompetitorService(db *sqlx.DB, store *store.TournamentStore, publisher events.Publisher) *CompetitorService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &CompetitorService{db: db, store: store, publisher: publisher}
}

// RegisterCompetitors adds one competitor per non-blank line of names. Seeds
// continue after the competitors already registered.
func (s *CompetitorService) RegisterCompetitors(ctx context.Context, tournamentID uuid.UUID, names string) ([]bracket.Competitor, error) {
	lines := strings.Split(names, "\n")

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, notFound(err, ErrTournamentNotFound)
	}
	if tournament.Status != bracket.TournamentDraft {
		return nil, ErrNotDraft
	}

	existing, err := s.store.GetCompetitorsTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}

	var filled []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			filled = append(filled, line)
		}
	}
	if len(filled) == 0 {
		return nil, ErrNoCompetitors
	}

	competitors, err := newCompetitors(tournamentID, filled, existing)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateCompetitors(ctx, tx, competitors); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.Event{
		Type:         events.CompetitorsAdded,
		TournamentID: tournamentID,
		Payload:      map[string]int{"added": len(competitors)},
	})
	return competitors, nil
}

func (s *CompetitorService) ListCompetitors(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Competitor, error) {
	if _, err := s.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, notFound(err, ErrTournamentNotFound)
	}
	return s.store.GetCompetitors(ctx, tournamentID)
}

// newCompetitors validates names and numbers them after the existing field.
// Names are compared case-insensitively.
func newCompetitors(tournamentID uuid.UUID, names []string, existing []bracket.Competitor) ([]bracket.Competitor, error) {
	taken := make(map[string]bool, len(existing)+len(names))
	seed := 0
	for _, c := range existing {
		taken[strings.ToLower(c.Name)] = true
		seed = max(seed, c.Seed)
	}

	competitors := make([]bracket.Competitor, 0, len(names))
	for _, raw := range names {
		name, err := cleanName(raw)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(name)
		if taken[key] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCompetitor, name)
		}
		taken[key] = true
		seed++

		competitors = append(competitors, bracket.Competitor{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Name:         name,
			Seed:         seed,
		})
	}
	return competitors, nil
}
