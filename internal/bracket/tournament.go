package bracket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentDraft     TournamentStatus = "draft"
	TournamentStarted   TournamentStatus = "started"
	TournamentCompleted TournamentStatus = "completed"
)

type Format string

const (
	SingleElimination  Format = "single_elimination"
	DoubleElimination  Format = "double_elimination"
	RoundRobin         Format = "round_robin"
	RoundRobinPlayoffs Format = "round_robin_playoffs"
	Swiss              Format = "swiss"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case SingleElimination, DoubleElimination, RoundRobin, RoundRobinPlayoffs, Swiss:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// MinCompetitors is the smallest field a format can be generated for.
func (f Format) MinCompetitors() int {
	switch f {
	case SingleElimination:
		return 2
	case DoubleElimination, RoundRobin:
		return 3
	case Swiss:
		return 4
	case RoundRobinPlayoffs:
		return 5
	}
	return 0
}

// IsElimination reports whether byes and dead slots resolve themselves as results arrive.
func (f Format) IsElimination() bool {
	return f == SingleElimination || f == DoubleElimination
}

const (
	GroupStage = "group"
	BracketRun = "bracket"
	Playoffs   = "playoffs"
	SwissPlay  = "swiss"
)

// InitialPhase is the phase marker a freshly generated tournament starts in.
func (f Format) InitialPhase() string {
	switch f {
	case RoundRobin, RoundRobinPlayoffs:
		return GroupStage
	case Swiss:
		return SwissPlay
	}
	return BracketRun
}

type Tournament struct {
	ID             uuid.UUID        `db:"id" json:"id"`
	Name           string           `db:"name" json:"name"`
	Format         Format           `db:"format" json:"format"`
	Status         TournamentStatus `db:"status" json:"status"`
	CurrentPhase   string           `db:"current_phase" json:"current_phase"`
	CurrentMatchID *uuid.UUID       `db:"current_match_id" json:"current_match_id"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

func (t *Tournament) IsCurrent(m *Match) bool {
	return t.CurrentMatchID != nil && *t.CurrentMatchID == m.ID
}
