package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/AdamBeresnev/tournament-scoreboard/internal/bracket"
	"github.com/AdamBeresnev/tournament-scoreboard/internal/events"
	"github.com/AdamBeresnev/tournament-scoreboard/internal/store"
	"github.com/AdamBeresnev/tournament-scoreboard/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

const maxNameLength = 50

type TournamentService struct {
	db        *sqlx.DB
	store     *store.TournamentStore
	publisher events.Publisher
	shuffler  bracket.Shuffler
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, publisher events.Publisher) *TournamentService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &TournamentService{db: db, store: store, publisher: publisher, shuffler: bracket.RandomShuffler{}}
}

// WithShuffler replaces the random draw used when laying out brackets.
func (s *TournamentService) WithShuffler(shuffler bracket.Shuffler) *TournamentService {
	s.shuffler = shuffler
	return s
}

type CompetitorInput struct {
	Name string `json:"name"`
}

type TournamentData struct {
	Tournament   *bracket.Tournament  `json:"tournament"`
	Competitors  []bracket.Competitor `json:"competitors"`
	Matches      []bracket.Match      `json:"matches"`
	CurrentMatch *bracket.Match       `json:"current_match"`
}

func cleanName(raw string) (string, error) {
	name := utils.StringOrNil(raw)
	if name == nil {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(*name) > maxNameLength {
		return "", fmt.Errorf("%w: %q exceeds %d characters", ErrNameTooLong, *name, maxNameLength)
	}
	return *name, nil
}

// CreateTournament stores a draft tournament with its initial field. More
// competitors can be registered until the bracket is generated.
func (s *TournamentService) CreateTournament(ctx context.Context, name string, format bracket.Format, inputs []CompetitorInput) (uuid.UUID, error) {
	name, err := cleanName(name)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := bracket.ParseFormat(string(format)); err != nil {
		return uuid.Nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	tournament := bracket.Tournament{
		ID:     uuid.New(),
		Name:   name,
		Format: format,
		Status: bracket.TournamentDraft,
	}
	if err := s.store.CreateTournament(ctx, tx, &tournament); err != nil {
		return uuid.Nil, err
	}

	var names []string
	for _, input := range inputs {
		if strings.TrimSpace(input.Name) != "" {
			names = append(names, input.Name)
		}
	}
	competitors, err := newCompetitors(tournament.ID, names, nil)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.store.CreateCompetitors(ctx, tx, competitors); err != nil {
		return uuid.Nil, err
	}

	return tournament.ID, tx.Commit()
}

// GenerateBracket lays out every match for the tournament's format and starts
// it. A tournament gets exactly one bracket.
func (s *TournamentService) GenerateBracket(ctx context.Context, tournamentID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return notFound(err, ErrTournamentNotFound)
	}
	existing, err := s.store.CountMatchesTx(ctx, tx, tournamentID)
	if err != nil {
		return err
	}
	if existing > 0 || tournament.Status != bracket.TournamentDraft {
		return ErrBracketExists
	}

	competitors, err := s.store.GetCompetitorsTx(ctx, tx, tournamentID)
	if err != nil {
		return err
	}

	generator, err := bracket.NewGenerator(tournament.Format, s.shuffler)
	if err != nil {
		return err
	}
	matches, err := generator.Generate(tournamentID, bracket.CompetitorIDs(competitors))
	if err != nil {
		return err
	}

	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return fmt.Errorf("failed to create matches: %w", err)
	}

	b := bracket.New(tournament, matches)
	b.Start()
	if err := s.store.UpdateTournamentTx(ctx, tx, b.Tournament); err != nil {
		return fmt.Errorf("failed to start tournament: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.Event{
		Type:         events.BracketGenerated,
		TournamentID: tournamentID,
		MatchID:      b.Tournament.CurrentMatchID,
		Payload:      map[string]int{"matches": len(matches)},
	})
	return nil
}

func (s *TournamentService) GetStandings(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Standing, error) {
	b, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return b.Standings(), nil
}

// AdvanceToPlayoffs seeds the semifinals of a round robin + playoffs
// tournament from the group stage standings.
func (s *TournamentService) AdvanceToPlayoffs(ctx context.Context, tournamentID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	b, err := loadBracketTx(ctx, tx, s.store, tournamentID)
	if err != nil {
		return err
	}
	if b.Tournament.Status != bracket.TournamentStarted {
		return ErrNotStarted
	}
	if err := b.AdvanceToPlayoffs(); err != nil {
		return err
	}
	if err := saveBracketTx(ctx, tx, s.store, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.Event{
		Type:         events.PlayoffsSeeded,
		TournamentID: tournamentID,
		MatchID:      b.Tournament.CurrentMatchID,
	})
	return nil
}

// NextSwissRound pairs the next Swiss round from the standings so far and
// returns its number.
func (s *TournamentService) NextSwissRound(ctx context.Context, tournamentID uuid.UUID) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	b, err := loadBracketTx(ctx, tx, s.store, tournamentID)
	if err != nil {
		return 0, err
	}
	if b.Tournament.Format != bracket.Swiss {
		return 0, bracket.ErrWrongFormat
	}
	if b.Tournament.Status != bracket.TournamentStarted {
		return 0, ErrNotStarted
	}

	competitors, err := s.store.GetCompetitorsTx(ctx, tx, tournamentID)
	if err != nil {
		return 0, err
	}

	previous := b.Matches()
	round := 1
	for i := range previous {
		round = max(round, previous[i].RoundNumber+1)
	}

	matches, err := bracket.GenerateSwissRound(tournamentID, round, bracket.CompetitorIDs(competitors), previous)
	if err != nil {
		return 0, err
	}
	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return 0, fmt.Errorf("failed to create round %d: %w", round, err)
	}

	next := bracket.New(b.Tournament, append(previous, matches...))
	next.Start()
	if err := s.store.UpdateTournamentTx(ctx, tx, next.Tournament); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	s.publisher.Publish(ctx, events.Event{
		Type:         events.SwissRoundCreated,
		TournamentID: tournamentID,
		MatchID:      next.Tournament.CurrentMatchID,
		Payload:      map[string]int{"round": round},
	})
	return round, nil
}

// GetTournamentData loads the bracket and the field side by side.
func (s *TournamentService) GetTournamentData(ctx context.Context, tournamentID uuid.UUID) (*TournamentData, error) {
	var (
		b           *bracket.Bracket
		competitors []bracket.Competitor
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		b, err = s.load(gCtx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		competitors, err = s.store.GetCompetitors(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to get competitors: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &TournamentData{
		Tournament:   b.Tournament,
		Competitors:  competitors,
		Matches:      b.Matches(),
		CurrentMatch: b.Current(),
	}, nil
}

func (s *TournamentService) GetBracketView(ctx context.Context, tournamentID uuid.UUID) (*BracketView, error) {
	data, err := s.GetTournamentData(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return PrepareBracketView(data.Tournament, data.Competitors, data.Matches), nil
}

func (s *TournamentService) GetStats(ctx context.Context, tournamentID uuid.UUID) (bracket.Stats, error) {
	b, err := s.load(ctx, tournamentID)
	if err != nil {
		return bracket.Stats{}, err
	}
	return b.Stats(), nil
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	return s.store.ListTournaments(ctx)
}

// DeleteTournament removes the tournament together with its competitors and matches.
func (s *TournamentService) DeleteTournament(ctx context.Context, tournamentID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.store.DeleteTournamentTx(ctx, tx, tournamentID); err != nil {
		return notFound(err, ErrTournamentNotFound)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.Event{Type: events.TournamentDeleted, TournamentID: tournamentID})
	return nil
}

func (s *TournamentService) load(ctx context.Context, tournamentID uuid.UUID) (*bracket.Bracket, error) {
	tournament, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, notFound(err, ErrTournamentNotFound)
	}
	matches, err := s.store.GetMatches(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return bracket.New(tournament, matches), nil
}

func loadBracketTx(ctx context.Context, tx *sqlx.Tx, st *store.TournamentStore, tournamentID uuid.UUID) (*bracket.Bracket, error) {
	tournament, err := st.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, notFound(err, ErrTournamentNotFound)
	}
	matches, err := st.GetMatchesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	return bracket.New(tournament, matches), nil
}

// saveBracketTx writes back every match the bracket touched and the tournament's pointer and status.
func saveBracketTx(ctx context.Context, tx *sqlx.Tx, st *store.TournamentStore, b *bracket.Bracket) error {
	if err := st.UpdateMatchesTx(ctx, tx, b.Changed()); err != nil {
		return fmt.Errorf("failed to update matches: %w", err)
	}
	if err := st.UpdateTournamentTx(ctx, tx, b.Tournament); err != nil {
		return fmt.Errorf("failed to update tournament: %w", err)
	}
	return nil
}
