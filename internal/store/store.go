package store

import (
	"context"
	"errors"

	"github.com/calvinwijaya/blackjack/internal/game"
)

// ErrNotFound is returned when no table exists for an ID
var ErrNotFound = errors.New("table not found")

// Store defines the interface for table storage. Only the latest state of
// each table is kept.
type Store interface {
	// SaveTable creates or replaces the state of a table
	SaveTable(ctx context.Context, s game.State) error

	// GetTable retrieves a table by ID
	GetTable(ctx context.Context, id string) (game.State, error)

	// DeleteTable removes a table from the store
	DeleteTable(ctx context.Context, id string) error

	// ListTables returns all tables in the store
	ListTables(ctx context.Context) ([]game.State, error)
}
