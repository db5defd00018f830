package bracket

import "github.com/google/uuid"

type RoundRobinGenerator struct {
	shuffler Shuffler
	playoffs bool
}

func (g *RoundRobinGenerator) Format() Format {
	if g.playoffs {
		return RoundRobinPlayoffs
	}
	return RoundRobin
}

// Generate creates every pairing once. Rounds are only buckets of n/2 matches
// for display; a competitor can show up twice in the same bucket.
// With playoffs, two empty semifinals feeding a final are appended and get
// seeded from the standings later.
func (g *RoundRobinGenerator) Generate(tournamentID uuid.UUID, competitors []uuid.UUID) ([]Match, error) {
	if err := checkFieldSize(g.Format(), competitors); err != nil {
		return nil, err
	}

	groupName := "Round Robin"
	if g.playoffs {
		groupName = "Group Stage"
	}

	ids := shuffled(g.shuffler, competitors)
	pairs := make([][2]uuid.UUID, 0, len(ids)*(len(ids)-1)/2)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			pairs = append(pairs, [2]uuid.UUID{ids[i], ids[j]})
		}
	}
	g.shuffler.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })

	perRound := max(1, len(ids)/2)
	matches := make([]Match, 0, len(pairs)+3)
	for i, pair := range pairs {
		m := Match{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Phase:        PrimaryPhase,
			RoundNumber:  i/perRound + 1,
			MatchNumber:  i%perRound + 1,
			MatchType:    GroupMatch,
			GroupName:    groupName,
		}
		m.place(pair[0])
		m.place(pair[1])
		matches = append(matches, m)
	}

	if g.playoffs {
		matches = append(matches, playoffSkeleton(tournamentID)...)
	}
	return matches, nil
}

func playoffSkeleton(tournamentID uuid.UUID) []Match {
	final := Match{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Phase:        FinalPhase,
		RoundNumber:  1,
		MatchNumber:  1,
		MatchType:    FinalsMatch,
		GroupName:    "Finals",
	}
	semi := func(n int, name string) Match {
		return Match{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Phase:        PlayoffPhase,
			RoundNumber:  1,
			MatchNumber:  n,
			MatchType:    BracketMatch,
			GroupName:    name,
			NextMatchID:  &final.ID,
		}
	}
	return []Match{semi(1, "Semifinal 1"), semi(2, "Semifinal 2"), final}
}
