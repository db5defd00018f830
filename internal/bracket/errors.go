package bracket

import "errors"

var (
	ErrUnknownFormat           = errors.New("unknown tournament format")
	ErrInsufficientCompetitors = errors.New("not enough competitors for this format")

	ErrMatchNotFound  = errors.New("match not found in tournament")
	ErrMatchCompleted = errors.New("match is already completed")
	ErrMatchNotReady  = errors.New("match does not have two competitors yet")
	ErrInvalidWinner  = errors.New("winner is not part of this match")
	ErrInvalidScore   = errors.New("scores must be non-negative")
	ErrInvalidSlot    = errors.New("slot must be 1 or 2")
	ErrScoreTied      = errors.New("score is tied, pick the winner explicitly")

	ErrWrongFormat      = errors.New("operation not supported for this tournament format")
	ErrNotEnoughRanked  = errors.New("not enough ranked competitors to seed playoffs")
	ErrPlayoffsSeeded   = errors.New("playoffs are already seeded")
	ErrRoundInProgress  = errors.New("previous round still has unfinished matches")
	ErrRoundExists      = errors.New("round already exists")
	ErrPlayoffsNotFound = errors.New("playoff matches not found")
)
