// Package events carries state changes out to whatever keeps the spectator
// displays in sync. Services publish after their transaction commits.
package events

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type Type string

const (
	BracketGenerated    Type = "bracket_generated"
	CompetitorsAdded    Type = "competitors_added"
	MatchCompleted      Type = "match_completed"
	ScoreUpdated        Type = "score_updated"
	SlotsSwapped        Type = "slots_swapped"
	CurrentMatchChanged Type = "current_match_changed"
	PlayoffsSeeded      Type = "playoffs_seeded"
	SwissRoundCreated   Type = "swiss_round_created"
	TournamentCompleted Type = "tournament_completed"
	TournamentDeleted   Type = "tournament_deleted"
)

type Event struct {
	Type         Type       `json:"type"`
	TournamentID uuid.UUID  `json:"tournament_id"`
	MatchID      *uuid.UUID `json:"match_id,omitempty"`
	Payload      any        `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// LogPublisher writes every event to a structured logger.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) {
	attrs := []any{"type", e.Type, "tournament_id", e.TournamentID}
	if e.MatchID != nil {
		attrs = append(attrs, "match_id", *e.MatchID)
	}
	p.logger.InfoContext(ctx, "tournament event", attrs...)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
