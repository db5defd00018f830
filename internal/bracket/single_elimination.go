package bracket

import "github.com/google/uuid"

type SingleEliminationGenerator struct {
	shuffler Shuffler
}

func (g *SingleEliminationGenerator) Format() Format {
	return SingleElimination
}

// Generate shuffles the field, pairs it two per round 1 match and lets the
// trailing byes auto-advance. Byes cascade: a match whose only possible
// opponent came out of an empty slot is settled as well.
func (g *SingleEliminationGenerator) Generate(tournamentID uuid.UUID, competitors []uuid.UUID) ([]Match, error) {
	if err := checkFieldSize(SingleElimination, competitors); err != nil {
		return nil, err
	}

	ids := shuffled(g.shuffler, competitors)
	bracketSize := calcBracketSize(len(ids))
	rounds := eliminationTree(tournamentID, bracketSize)

	padded := make([]*uuid.UUID, bracketSize)
	for i := range ids {
		padded[i] = &ids[i]
	}
	for i, m := range rounds[0] {
		m.Slot1ID = padded[i*2]
		m.Slot2ID = padded[i*2+1]
	}

	b := New(nil, flatten(rounds))
	if err := b.settle(); err != nil {
		return nil, err
	}
	return b.Matches(), nil
}
