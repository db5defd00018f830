package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/AdamBeresnev/tournament-scoreboard/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DSN adds the connection options the engine relies on. _txlock=immediate makes
// every transaction take the write lock at BEGIN, so two match completions
// cannot both read the same successor slot as empty.
func DSN(path string) string {
	params := "_foreign_keys=on&_txlock=immediate&_busy_timeout=5000"
	if !isMemory(path) {
		params += "&_journal_mode=WAL"
	}
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

func isMemory(path string) bool {
	return strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory")
}

func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", path, err)
	}

	// Every connection to an in-memory database sees its own empty database
	if isMemory(path) {
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

func InitDB(path string) *sqlx.DB {
	db, err := Open(path)
	if err != nil {
		log.Fatalln("Failed to connect to DB:", err)
	}

	log.Println("Database connected.")
	return db
}

func RunMigrations(db *sql.DB) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
