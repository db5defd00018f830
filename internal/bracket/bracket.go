package bracket

import (
	"fmt"
	"sort"

	"github.com/AdamBeresnev/tournament-scoreboard/internal/utils"
	"github.com/google/uuid"
)

// Bracket is a tournament together with all of its matches. Every mutation
// goes through it so the single current-match reference stays consistent;
// callers persist Changed() and the tournament afterwards.
type Bracket struct {
	Tournament *Tournament

	matches []Match
	index   map[uuid.UUID]int
	changed map[uuid.UUID]bool
}

func New(t *Tournament, matches []Match) *Bracket {
	b := &Bracket{
		Tournament: t,
		matches:    make([]Match, len(matches)),
		index:      make(map[uuid.UUID]int, len(matches)),
		changed:    make(map[uuid.UUID]bool),
	}
	copy(b.matches, matches)
	SortMatches(b.matches)
	for i := range b.matches {
		b.index[b.matches[i].ID] = i
	}
	return b
}

// SortMatches orders matches by phase, round and match number.
func SortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Before(&matches[j])
	})
}

func (b *Bracket) Matches() []Match {
	out := make([]Match, len(b.matches))
	copy(out, b.matches)
	return out
}

func (b *Bracket) Match(id uuid.UUID) (*Match, bool) {
	i, ok := b.index[id]
	if !ok {
		return nil, false
	}
	return &b.matches[i], true
}

// Changed returns the matches modified since the bracket was loaded, in bracket order.
func (b *Bracket) Changed() []Match {
	var out []Match
	for i := range b.matches {
		if b.changed[b.matches[i].ID] {
			out = append(out, b.matches[i])
		}
	}
	return out
}

func (b *Bracket) touch(m *Match) {
	b.changed[m.ID] = true
}

// FirstPlayable is the earliest match with two competitors that has not been decided.
func (b *Bracket) FirstPlayable() *Match {
	for i := range b.matches {
		if b.matches[i].IsPlayable() {
			return &b.matches[i]
		}
	}
	return nil
}

// Current returns the match the tournament currently points at, if any.
func (b *Bracket) Current() *Match {
	if b.Tournament == nil || b.Tournament.CurrentMatchID == nil {
		return nil
	}
	m, ok := b.Match(*b.Tournament.CurrentMatchID)
	if !ok {
		return nil
	}
	return m
}

// Start marks a freshly generated tournament as running and points it at its first playable match.
func (b *Bracket) Start() {
	b.Tournament.Status = TournamentStarted
	b.Tournament.CurrentPhase = b.Tournament.Format.InitialPhase()
	b.refreshCurrent()
}

// Complete records winnerID as the winner of the match, moves the winner
// (and in double elimination the loser) forward, resolves byes that became
// decidable and points the tournament at the next playable match.
func (b *Bracket) Complete(matchID, winnerID uuid.UUID) (*Match, error) {
	m, ok := b.Match(matchID)
	if !ok {
		return nil, ErrMatchNotFound
	}
	if m.IsCompleted {
		return nil, ErrMatchCompleted
	}
	if m.Slot1ID == nil || m.Slot2ID == nil {
		return nil, ErrMatchNotReady
	}
	if !m.HasCompetitor(winnerID) {
		return nil, ErrInvalidWinner
	}

	m.WinnerID = &winnerID
	m.IsCompleted = true
	m.CompletedSeq = b.lastCompletedSeq() + 1
	b.touch(m)

	if err := b.advance(m, winnerID, m.NextMatchID); err != nil {
		return nil, err
	}
	if loser := m.Loser(); loser != nil {
		if err := b.advance(m, *loser, m.LoserNextMatchID); err != nil {
			return nil, err
		}
	}

	if b.Tournament != nil && b.Tournament.Format.IsElimination() {
		if err := b.settle(); err != nil {
			return nil, err
		}
	}

	b.refreshCurrent()
	return m, nil
}

func (b *Bracket) advance(from *Match, competitor uuid.UUID, to *uuid.UUID) error {
	if to == nil {
		return nil
	}
	next, ok := b.Match(*to)
	if !ok {
		return fmt.Errorf("match %s links to unknown match %s", from.ID, *to)
	}
	if !next.place(competitor) {
		return fmt.Errorf("match %s has no open slot for the result of match %s", next.ID, from.ID)
	}
	b.touch(next)
	return nil
}

// settle closes every open match that can no longer receive a competitor:
// one occupant makes it a bye that advances, none makes it a dead slot.
// It repeats until nothing changes since a closed match can free its successor.
func (b *Bracket) settle() error {
	for {
		pending := make(map[uuid.UUID]int)
		for i := range b.matches {
			m := &b.matches[i]
			if m.IsCompleted {
				continue
			}
			if m.NextMatchID != nil {
				pending[*m.NextMatchID]++
			}
			if m.LoserNextMatchID != nil {
				pending[*m.LoserNextMatchID]++
			}
		}

		progressed := false
		for i := range b.matches {
			m := &b.matches[i]
			if m.IsCompleted || pending[m.ID] > 0 || m.occupants() == 2 {
				continue
			}

			m.IsCompleted = true
			b.touch(m)
			progressed = true

			if m.occupants() == 0 {
				continue
			}
			winner := m.Slot1ID
			if winner == nil {
				winner = m.Slot2ID
			}
			id := *winner
			m.WinnerID = &id
			m.IsBye = true
			if err := b.advance(m, id, m.NextMatchID); err != nil {
				return err
			}
		}

		if !progressed {
			return nil
		}
	}
}

func (b *Bracket) lastCompletedSeq() int {
	last := 0
	for i := range b.matches {
		last = max(last, b.matches[i].CompletedSeq)
	}
	return last
}

// refreshCurrent points the tournament at the first playable match and
// closes the tournament once nothing is left to play.
func (b *Bracket) refreshCurrent() {
	t := b.Tournament
	if t == nil {
		return
	}

	t.CurrentMatchID = nil
	if next := b.FirstPlayable(); next != nil {
		id := next.ID
		t.CurrentMatchID = &id
		return
	}

	if b.finished() {
		t.Status = TournamentCompleted
	}
}

func (b *Bracket) finished() bool {
	if len(b.matches) == 0 {
		return false
	}
	for i := range b.matches {
		if !b.matches[i].IsCompleted {
			return false
		}
	}
	// Swiss runs until the organizer stops generating rounds
	return b.Tournament.Format != Swiss
}

// SetCurrent overrides the current match. Only a playable match can be current.
func (b *Bracket) SetCurrent(matchID uuid.UUID) (*Match, error) {
	m, ok := b.Match(matchID)
	if !ok {
		return nil, ErrMatchNotFound
	}
	if m.IsCompleted {
		return nil, ErrMatchCompleted
	}
	if !m.IsPlayable() {
		return nil, ErrMatchNotReady
	}
	b.Tournament.CurrentMatchID = utils.Ptr(m.ID)
	return m, nil
}

// SetScore records the live score. Completed matches can still be corrected;
// the winner is only ever set by Complete.
func (b *Bracket) SetScore(matchID uuid.UUID, score1, score2 int) (*Match, error) {
	if score1 < 0 || score2 < 0 {
		return nil, ErrInvalidScore
	}
	m, ok := b.Match(matchID)
	if !ok {
		return nil, ErrMatchNotFound
	}
	if m.IsBye || m.occupants() < 2 {
		return nil, ErrMatchNotReady
	}
	m.Score1, m.Score2 = score1, score2
	b.touch(m)
	return m, nil
}

// AddPoint adds one point to slot 1 or 2 of a match that is still being played.
func (b *Bracket) AddPoint(matchID uuid.UUID, slot int) (*Match, error) {
	m, err := b.openMatch(matchID)
	if err != nil {
		return nil, err
	}
	switch slot {
	case 1:
		m.Score1++
	case 2:
		m.Score2++
	default:
		return nil, ErrInvalidSlot
	}
	b.touch(m)
	return m, nil
}

// CompleteFromScore completes the match with whoever leads on score. A force
// of 1 or 2 names the winning slot instead; 0 means decide by score.
func (b *Bracket) CompleteFromScore(matchID uuid.UUID, force int) (*Match, error) {
	m, err := b.openMatch(matchID)
	if err != nil {
		return nil, err
	}

	var winner uuid.UUID
	switch {
	case force == 1:
		winner = *m.Slot1ID
	case force == 2:
		winner = *m.Slot2ID
	case force != 0:
		return nil, ErrInvalidSlot
	case m.Score1 > m.Score2:
		winner = *m.Slot1ID
	case m.Score2 > m.Score1:
		winner = *m.Slot2ID
	default:
		return nil, ErrScoreTied
	}
	return b.Complete(matchID, winner)
}

// openMatch returns a match with both competitors that has not been decided.
func (b *Bracket) openMatch(matchID uuid.UUID) (*Match, error) {
	m, ok := b.Match(matchID)
	if !ok {
		return nil, ErrMatchNotFound
	}
	if m.IsCompleted {
		return nil, ErrMatchCompleted
	}
	if m.occupants() < 2 {
		return nil, ErrMatchNotReady
	}
	return m, nil
}

// SwapSlots exchanges the two sides of an open match together with their scores.
func (b *Bracket) SwapSlots(matchID uuid.UUID) (*Match, error) {
	m, ok := b.Match(matchID)
	if !ok {
		return nil, ErrMatchNotFound
	}
	if m.IsCompleted {
		return nil, ErrMatchCompleted
	}
	m.Slot1ID, m.Slot2ID = m.Slot2ID, m.Slot1ID
	m.Score1, m.Score2 = m.Score2, m.Score1
	b.touch(m)
	return m, nil
}

// PickNext suggests what to play after the current match. Matches that reuse
// a competitor from the most recently played match come first so teams
// already on the court can stay there; otherwise bracket order decides.
func (b *Bracket) PickNext() (*Match, bool) {
	var playable []*Match
	for i := range b.matches {
		m := &b.matches[i]
		if m.IsPlayable() && (b.Tournament == nil || !b.Tournament.IsCurrent(m)) {
			playable = append(playable, m)
		}
	}
	if len(playable) == 0 {
		return nil, false
	}

	onCourt := b.lastPlayed()
	continuity := func(m *Match) bool {
		return onCourt != nil && (m.HasCompetitor(*onCourt.Slot1ID) || m.HasCompetitor(*onCourt.Slot2ID))
	}

	sort.SliceStable(playable, func(i, j int) bool {
		return continuity(playable[i]) && !continuity(playable[j])
	})
	return playable[0], continuity(playable[0])
}

func (b *Bracket) lastPlayed() *Match {
	var last *Match
	for i := range b.matches {
		m := &b.matches[i]
		if m.CompletedSeq == 0 || m.Slot1ID == nil || m.Slot2ID == nil {
			continue
		}
		if last == nil || m.CompletedSeq > last.CompletedSeq {
			last = m
		}
	}
	return last
}

func (b *Bracket) Standings() []Standing {
	return CalculateStandings(b.matches)
}

// AdvanceToPlayoffs seeds the semifinals 1st vs 4th and 2nd vs 3rd from the
// current standings and makes the first semifinal current.
func (b *Bracket) AdvanceToPlayoffs() error {
	if b.Tournament.Format != RoundRobinPlayoffs {
		return ErrWrongFormat
	}

	var semis []*Match
	for i := range b.matches {
		if b.matches[i].Phase == PlayoffPhase {
			semis = append(semis, &b.matches[i])
		}
	}
	if len(semis) < 2 {
		return ErrPlayoffsNotFound
	}
	for _, m := range semis[:2] {
		if m.Slot1ID != nil || m.Slot2ID != nil {
			return ErrPlayoffsSeeded
		}
	}

	var group []Match
	for i := range b.matches {
		if b.matches[i].Phase == PrimaryPhase {
			group = append(group, b.matches[i])
		}
	}
	standings := CalculateStandings(group)
	if len(standings) < 4 {
		return fmt.Errorf("%w: have %d", ErrNotEnoughRanked, len(standings))
	}

	seed := func(m *Match, a, c Standing) {
		m.place(a.CompetitorID)
		m.place(c.CompetitorID)
		b.touch(m)
	}
	seed(semis[0], standings[0], standings[3])
	seed(semis[1], standings[1], standings[2])

	id := semis[0].ID
	b.Tournament.CurrentMatchID = &id
	b.Tournament.CurrentPhase = Playoffs
	return nil
}

type Stats struct {
	Total        int  `json:"total"`
	Completed    int  `json:"completed"`
	Remaining    int  `json:"remaining"`
	HasCurrent   bool `json:"has_current_match"`
	CurrentRound *int `json:"current_round"`
}

func (b *Bracket) Stats() Stats {
	s := Stats{Total: len(b.matches)}
	for i := range b.matches {
		if b.matches[i].IsCompleted {
			s.Completed++
		}
	}
	s.Remaining = s.Total - s.Completed
	if cur := b.Current(); cur != nil {
		s.HasCurrent = true
		s.CurrentRound = utils.Ptr(cur.RoundNumber)
	}
	return s
}
