package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/calvinwijaya/blackjack/internal/game"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported driver names
const (
	SQLite   = "sqlite3"
	Postgres = "postgres"
)

var ErrNoTable = errors.New("table not found")

type Database struct {
	db     *sql.DB
	driver string
}

// Open opens a database connection and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string) (*Database, error) {
	switch driver {
	case SQLite, Postgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if driver == SQLite {
		// SQLite allows a single writer at a time
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := initTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Database{db: db, driver: driver}, nil
}

// initTables creates the necessary tables if they don't exist
func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tables (
			id TEXT PRIMARY KEY,
			phase TEXT NOT NULL,
			money INTEGER NOT NULL,
			state TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating tables table: %w", err)
	}
	return nil
}

func (d *Database) Driver() string { return d.driver }

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// SaveTable stores the latest state of a table, replacing any earlier one.
func (d *Database) SaveTable(ctx context.Context, s game.State) error {
	state, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("error encoding table %s: %w", s.ID, err)
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO tables (id, phase, money, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET phase = excluded.phase, money = excluded.money,
			state = excluded.state, updated_at = excluded.updated_at
	`,
		s.ID, string(s.Phase), s.Money, string(state), s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("error saving table %s: %w", s.ID, err)
	}
	return nil
}

// GetTable retrieves a table's state by ID
func (d *Database) GetTable(ctx context.Context, id string) (game.State, error) {
	var state string
	err := d.db.QueryRowContext(ctx, `SELECT state FROM tables WHERE id = $1`, id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return game.State{}, ErrNoTable
	}
	if err != nil {
		return game.State{}, fmt.Errorf("error loading table %s: %w", id, err)
	}
	return decodeState(state)
}

// DeleteTable removes a table
func (d *Database) DeleteTable(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM tables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting table %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoTable
	}
	return nil
}

// ListTables returns every table, most recently updated first.
func (d *Database) ListTables(ctx context.Context) ([]game.State, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT state FROM tables ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("error listing tables: %w", err)
	}
	defer rows.Close()

	states := []game.State{}
	for rows.Next() {
		var state string
		if err := rows.Scan(&state); err != nil {
			return nil, err
		}
		s, err := decodeState(state)
		if err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	return states, rows.Err()
}

func decodeState(raw string) (game.State, error) {
	var s game.State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return game.State{}, fmt.Errorf("error decoding table state: %w", err)
	}
	return s, nil
}
