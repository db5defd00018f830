package bracket

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

type SwissGenerator struct {
	shuffler Shuffler
}

func (g *SwissGenerator) Format() Format {
	return Swiss
}

// Generate lays out the first Swiss round with a random pairing.
func (g *SwissGenerator) Generate(tournamentID uuid.UUID, competitors []uuid.UUID) ([]Match, error) {
	if err := checkFieldSize(Swiss, competitors); err != nil {
		return nil, err
	}
	return swissRound(tournamentID, 1, shuffled(g.shuffler, competitors)), nil
}

// GenerateSwissRound pairs round `round` from the results so far: competitors
// are ordered by (wins, point diff, points for) and paired top down, each with
// the highest ranked opponent that still leaves a pairing without rematches.
// An odd field gives the bye to the lowest ranked competitor that has not had one.
func GenerateSwissRound(tournamentID uuid.UUID, round int, competitors []uuid.UUID, previous []Match) ([]Match, error) {
	if err := checkFieldSize(Swiss, competitors); err != nil {
		return nil, err
	}
	for i := range previous {
		if previous[i].RoundNumber >= round {
			return nil, fmt.Errorf("%w: round %d", ErrRoundExists, round)
		}
		if !previous[i].IsCompleted {
			return nil, ErrRoundInProgress
		}
	}

	ranked := rankCompetitors(competitors, previous)

	met := make(map[[2]uuid.UUID]bool)
	hadBye := make(map[uuid.UUID]bool)
	for i := range previous {
		m := &previous[i]
		switch {
		case m.Slot1ID != nil && m.Slot2ID != nil:
			met[pairKey(*m.Slot1ID, *m.Slot2ID)] = true
		case m.IsBye && m.WinnerID != nil:
			hadBye[*m.WinnerID] = true
		}
	}

	var bye *uuid.UUID
	if len(ranked)%2 == 1 {
		pick := len(ranked) - 1
		for i := len(ranked) - 1; i >= 0; i-- {
			if !hadBye[ranked[i]] {
				pick = i
				break
			}
		}
		id := ranked[pick]
		bye = &id
		ranked = append(ranked[:pick:pick], ranked[pick+1:]...)
	}

	order := pairRound(ranked, met)
	if bye != nil {
		order = append(order, *bye)
	}

	return swissRound(tournamentID, round, order), nil
}

// Bounds the rematch-free search; past it the greedy pairing is used.
const maxPairingSteps = 100_000

// pairRound returns ranked reordered into consecutive pairs. A pairing
// without rematches wins when one exists, otherwise the greedy one is used.
func pairRound(ranked []uuid.UUID, met map[[2]uuid.UUID]bool) []uuid.UUID {
	budget := maxPairingSteps
	if order, ok := pairFresh(ranked, met, &budget); ok {
		return order
	}
	return pairGreedy(ranked, met)
}

// pairFresh pairs ranked[0] with the highest ranked opponent it has not met
// and recurses on the rest, trying the next opponent when the rest cannot be
// paired without a rematch.
func pairFresh(ranked []uuid.UUID, met map[[2]uuid.UUID]bool, budget *int) ([]uuid.UUID, bool) {
	if len(ranked) == 0 {
		return nil, true
	}
	for j := 1; j < len(ranked); j++ {
		if *budget <= 0 {
			return nil, false
		}
		*budget--

		if met[pairKey(ranked[0], ranked[j])] {
			continue
		}
		rest := make([]uuid.UUID, 0, len(ranked)-2)
		rest = append(rest, ranked[1:j]...)
		rest = append(rest, ranked[j+1:]...)
		if order, ok := pairFresh(rest, met, budget); ok {
			return append([]uuid.UUID{ranked[0], ranked[j]}, order...), true
		}
	}
	return nil, false
}

// pairGreedy gives each competitor its first unmet opponent, or the next free
// one when everybody left has been met.
func pairGreedy(ranked []uuid.UUID, met map[[2]uuid.UUID]bool) []uuid.UUID {
	order := make([]uuid.UUID, 0, len(ranked))
	paired := make([]bool, len(ranked))
	for i := range ranked {
		if paired[i] {
			continue
		}
		opponent := -1
		for j := i + 1; j < len(ranked); j++ {
			if paired[j] {
				continue
			}
			if opponent == -1 {
				opponent = j
			}
			if !met[pairKey(ranked[i], ranked[j])] {
				opponent = j
				break
			}
		}
		paired[i], paired[opponent] = true, true
		order = append(order, ranked[i], ranked[opponent])
	}
	return order
}

// swissRound pairs ids sequentially; an odd last id gets a completed bye match.
func swissRound(tournamentID uuid.UUID, round int, ids []uuid.UUID) []Match {
	name := fmt.Sprintf("Swiss Round %d", round)
	matches := make([]Match, 0, len(ids)/2+1)

	matchNum := 1
	for i := 0; i+1 < len(ids); i += 2 {
		m := Match{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Phase:        PrimaryPhase,
			RoundNumber:  round,
			MatchNumber:  matchNum,
			MatchType:    GroupMatch,
			GroupName:    name,
		}
		m.place(ids[i])
		m.place(ids[i+1])
		matches = append(matches, m)
		matchNum++
	}

	if len(ids)%2 == 1 {
		last := ids[len(ids)-1]
		m := Match{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Phase:        PrimaryPhase,
			RoundNumber:  round,
			MatchNumber:  matchNum,
			MatchType:    GroupMatch,
			GroupName:    name + " (Bye)",
			IsCompleted:  true,
			IsBye:        true,
		}
		m.place(last)
		m.WinnerID = &last
		matches = append(matches, m)
	}

	return matches
}

func rankCompetitors(competitors []uuid.UUID, previous []Match) []uuid.UUID {
	stats := make(map[uuid.UUID]Standing)
	for _, s := range CalculateStandings(previous) {
		stats[s.CompetitorID] = s
	}

	ranked := make([]uuid.UUID, len(competitors))
	copy(ranked, competitors)
	sort.SliceStable(ranked, func(i, j int) bool {
		return stats[ranked[i]].outranks(stats[ranked[j]])
	})
	return ranked
}

func pairKey(a, b uuid.UUID) [2]uuid.UUID {
	if a.String() > b.String() {
		a, b = b, a
	}
	return [2]uuid.UUID{a, b}
}
