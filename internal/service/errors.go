package service

import (
	"database/sql"
	"errors"
)

var (
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrBracketExists       = errors.New("bracket has already been generated")
	ErrNotDraft            = errors.New("tournament is no longer accepting competitors")
	ErrNotStarted          = errors.New("tournament is not running")
	ErrEmptyName           = errors.New("name must not be empty")
	ErrNameTooLong         = errors.New("name is too long")
	ErrDuplicateCompetitor = errors.New("competitor is already registered")
	ErrNoCompetitors       = errors.New("no competitor names given")
)

// notFound swaps sql.ErrNoRows for the domain error callers match on.
func notFound(err, target error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return target
	}
	return err
}
