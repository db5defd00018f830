package service

import (
	"sort"

	"github.com/AdamBeresnev/tournament-scoreboard/internal/bracket"
	"github.com/google/uuid"
)

// BracketView is the display layout: phases in play order, each split into
// rounds in match order.
type BracketView struct {
	Tournament    *bracket.Tournament              `json:"tournament"`
	Phases        []PhaseView                      `json:"phases"`
	CompetitorMap map[uuid.UUID]bracket.Competitor `json:"competitors"`
}

type PhaseView struct {
	Phase     bracket.Phase           `json:"phase"`
	Title     string                  `json:"title"`
	RoundNums []int                   `json:"round_numbers"`
	Rounds    map[int][]bracket.Match `json:"rounds"`
}

func PrepareBracketView(tournament *bracket.Tournament, competitors []bracket.Competitor, matches []bracket.Match) *BracketView {
	competitorMap := make(map[uuid.UUID]bracket.Competitor)
	for _, c := range competitors {
		competitorMap[c.ID] = c
	}

	byPhase := make(map[bracket.Phase]*PhaseView)
	var phases []bracket.Phase

	for _, m := range matches {
		pv, ok := byPhase[m.Phase]
		if !ok {
			pv = &PhaseView{
				Phase:  m.Phase,
				Title:  phaseTitle(tournament.Format, m.Phase),
				Rounds: make(map[int][]bracket.Match),
			}
			byPhase[m.Phase] = pv
			phases = append(phases, m.Phase)
		}
		if _, exists := pv.Rounds[m.RoundNumber]; !exists {
			pv.RoundNums = append(pv.RoundNums, m.RoundNumber)
		}
		pv.Rounds[m.RoundNumber] = append(pv.Rounds[m.RoundNumber], m)
	}

	sort.Slice(phases, func(i, j int) bool {
		return phases[i].Rank() < phases[j].Rank()
	})

	view := &BracketView{Tournament: tournament, CompetitorMap: competitorMap}
	for _, p := range phases {
		pv := byPhase[p]
		sort.Ints(pv.RoundNums)
		sortRounds(pv.Rounds, pv.RoundNums)
		view.Phases = append(view.Phases, *pv)
	}
	return view
}

func sortRounds(rounds map[int][]bracket.Match, roundNums []int) {
	for _, r := range roundNums {
		sort.Slice(rounds[r], func(i, j int) bool {
			return rounds[r][i].MatchNumber < rounds[r][j].MatchNumber
		})
	}
}

func phaseTitle(format bracket.Format, phase bracket.Phase) string {
	switch phase {
	case bracket.SecondaryPhase:
		return "Losers Bracket"
	case bracket.PlayoffPhase:
		return "Playoffs"
	case bracket.FinalPhase:
		return "Finals"
	}

	switch format {
	case bracket.DoubleElimination:
		return "Winners Bracket"
	case bracket.RoundRobin:
		return "Round Robin"
	case bracket.RoundRobinPlayoffs:
		return "Group Stage"
	case bracket.Swiss:
		return "Swiss"
	}
	return "Bracket"
}
