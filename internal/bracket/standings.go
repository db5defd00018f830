package bracket

import (
	"sort"

	"github.com/google/uuid"
)

type Standing struct {
	CompetitorID  uuid.UUID `json:"competitor_id"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	PointsFor     int       `json:"points_for"`
	PointsAgainst int       `json:"points_against"`
	PointDiff     int       `json:"point_diff"`
	MatchesPlayed int       `json:"matches_played"`
	Rank          int       `json:"rank"`
}

func (s Standing) outranks(o Standing) bool {
	if s.Wins != o.Wins {
		return s.Wins > o.Wins
	}
	if s.PointDiff != o.PointDiff {
		return s.PointDiff > o.PointDiff
	}
	return s.PointsFor > o.PointsFor
}

// CalculateStandings tallies completed matches in the order given and ranks
// by wins, point difference, then points for. Equal keys keep first-seen order
// and still get distinct ranks.
func CalculateStandings(matches []Match) []Standing {
	index := make(map[uuid.UUID]*Standing)
	var order []uuid.UUID

	tally := func(id uuid.UUID, scored, conceded int, winner *uuid.UUID) {
		entry, ok := index[id]
		if !ok {
			entry = &Standing{CompetitorID: id}
			index[id] = entry
			order = append(order, id)
		}
		entry.PointsFor += scored
		entry.PointsAgainst += conceded
		entry.MatchesPlayed++
		if winner == nil {
			return
		}
		if *winner == id {
			entry.Wins++
		} else {
			entry.Losses++
		}
	}

	for i := range matches {
		m := &matches[i]
		if !m.IsCompleted {
			continue
		}
		if m.Slot1ID != nil {
			conceded := 0
			if m.Slot2ID != nil {
				conceded = m.Score2
			}
			tally(*m.Slot1ID, m.Score1, conceded, m.WinnerID)
		}
		if m.Slot2ID != nil {
			tally(*m.Slot2ID, m.Score2, m.Score1, m.WinnerID)
		}
	}

	standings := make([]Standing, 0, len(order))
	for _, id := range order {
		entry := index[id]
		entry.PointDiff = entry.PointsFor - entry.PointsAgainst
		standings = append(standings, *entry)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].outranks(standings[j])
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}

	return standings
}
