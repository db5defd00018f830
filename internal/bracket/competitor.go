package bracket

import "github.com/google/uuid"

type Competitor struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`
	Name         string    `db:"name" json:"name"`
	Seed         int       `db:"seed" json:"seed"`
}

func CompetitorIDs(competitors []Competitor) []uuid.UUID {
	ids := make([]uuid.UUID, len(competitors))
	for i, c := range competitors {
		ids[i] = c.ID
	}
	return ids
}
