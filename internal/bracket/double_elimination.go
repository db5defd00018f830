package bracket

import "github.com/google/uuid"

type DoubleEliminationGenerator struct {
	shuffler Shuffler
}

func (g *DoubleEliminationGenerator) Format() Format {
	return DoubleElimination
}

// Generate builds the winners bracket, a losers bracket of 2*(rounds-1)
// rounds and a single grand final. Winners round 1 losers drop into losers
// round 1 in pairs; a loser of winners round r>1 meets the survivor of losers
// round 2(r-1)-1 in losers round 2(r-1).
func (g *DoubleEliminationGenerator) Generate(tournamentID uuid.UUID, competitors []uuid.UUID) ([]Match, error) {
	if err := checkFieldSize(DoubleElimination, competitors); err != nil {
		return nil, err
	}

	ids := shuffled(g.shuffler, competitors)
	bracketSize := calcBracketSize(len(ids))
	byes := bracketSize - len(ids)
	winners := eliminationTree(tournamentID, bracketSize)
	winnerRounds := len(winners)

	losers := losersTree(tournamentID, bracketSize, winnerRounds)

	grandFinal := &Match{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Phase:        FinalPhase,
		RoundNumber:  1,
		MatchNumber:  1,
		MatchType:    FinalsMatch,
		GroupName:    "Grand Final",
	}
	winners[winnerRounds-1][0].NextMatchID = &grandFinal.ID
	losers[len(losers)-1][0].NextMatchID = &grandFinal.ID

	// Losers drop down
	for i, m := range winners[0] {
		m.LoserNextMatchID = &losers[0][i/2].ID
	}
	for r := 2; r <= winnerRounds; r++ {
		target := losers[2*(r-1)-1]
		for j, m := range winners[r-1] {
			m.LoserNextMatchID = &target[j].ID
		}
	}

	// Seeding: the playing field fills round 1 from the top, byes skip straight
	// to the round 2 slots fed by the empty round 1 matches.
	playing := ids[:len(ids)-byes]
	for i := range playing {
		winners[0][i/2].place(playing[i])
	}
	if winnerRounds > 1 {
		firstEmpty := len(playing) / 2
		for j, id := range ids[len(playing):] {
			winners[1][(firstEmpty+j)/2].place(id)
		}
	}

	b := New(nil, flatten(winners, losers, [][]*Match{{grandFinal}}))
	if err := b.settle(); err != nil {
		return nil, err
	}
	return b.Matches(), nil
}

func losersTree(tournamentID uuid.UUID, bracketSize, winnerRounds int) [][]*Match {
	total := 2 * (winnerRounds - 1)
	rounds := make([][]*Match, total)

	for k := 1; k <= total; k++ {
		count := bracketSize >> ((k+1)/2 + 1)
		if count < 1 {
			count = 1
		}
		round := make([]*Match, count)
		for i := range round {
			round[i] = &Match{
				ID:           uuid.New(),
				TournamentID: tournamentID,
				Phase:        SecondaryPhase,
				RoundNumber:  k,
				MatchNumber:  i + 1,
				MatchType:    LosersMatch,
			}
		}
		rounds[k-1] = round
	}

	for k := 1; k < total; k++ {
		next := rounds[k]
		for j, m := range rounds[k-1] {
			if k%2 == 1 {
				// Odd rounds feed the drop-in round one to one
				m.NextMatchID = &next[j].ID
			} else {
				m.NextMatchID = &next[j/2].ID
			}
		}
	}

	return rounds
}
