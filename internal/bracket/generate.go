package bracket

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Generator lays out every match of one tournament format.
type Generator interface {
	Format() Format
	Generate(tournamentID uuid.UUID, competitors []uuid.UUID) ([]Match, error)
}

func NewGenerator(format Format, shuffler Shuffler) (Generator, error) {
	if shuffler == nil {
		shuffler = RandomShuffler{}
	}
	switch format {
	case SingleElimination:
		return &SingleEliminationGenerator{shuffler: shuffler}, nil
	case DoubleElimination:
		return &DoubleEliminationGenerator{shuffler: shuffler}, nil
	case RoundRobin:
		return &RoundRobinGenerator{shuffler: shuffler}, nil
	case RoundRobinPlayoffs:
		return &RoundRobinGenerator{shuffler: shuffler, playoffs: true}, nil
	case Swiss:
		return &SwissGenerator{shuffler: shuffler}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func checkFieldSize(format Format, competitors []uuid.UUID) error {
	if need := format.MinCompetitors(); len(competitors) < need {
		return fmt.Errorf("%w: %s needs %d, got %d", ErrInsufficientCompetitors, format, need, len(competitors))
	}
	return nil
}

func shuffled(s Shuffler, ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	s.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

func calcRounds(bracketSize int) int {
	if bracketSize <= 1 {
		return 0
	}
	return int(math.Log2(float64(bracketSize)))
}

// eliminationTree builds the empty winners tree, round by round, with every
// match linked to round r+1 match (i+1)/2. rounds[r-1] holds round r in match order.
func eliminationTree(tournamentID uuid.UUID, bracketSize int) [][]*Match {
	totalRounds := calcRounds(bracketSize)
	rounds := make([][]*Match, totalRounds)

	// Significantly easier to start from the last round and work backwards
	for r := totalRounds; r >= 1; r-- {
		matchesInCurrentRound := bracketSize >> r
		current := make([]*Match, matchesInCurrentRound)

		for i := 0; i < matchesInCurrentRound; i++ {
			m := &Match{
				ID:           uuid.New(),
				TournamentID: tournamentID,
				Phase:        PrimaryPhase,
				RoundNumber:  r,
				MatchNumber:  i + 1,
				MatchType:    BracketMatch,
			}
			if r < totalRounds {
				parent := rounds[r][i/2]
				m.NextMatchID = &parent.ID
			}
			current[i] = m
		}
		rounds[r-1] = current
	}

	return rounds
}

func flatten(rounds ...[][]*Match) []Match {
	var matches []Match
	for _, set := range rounds {
		for _, round := range set {
			for _, m := range round {
				matches = append(matches, *m)
			}
		}
	}
	return matches
}
