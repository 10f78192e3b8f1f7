package store

import (
	"context"
	"errors"

	"github.com/calvinwijaya/blackjack/internal/db"
	"github.com/calvinwijaya/blackjack/internal/game"
)

// DatabaseStore is a database implementation of table storage
type DatabaseStore struct {
	db *db.Database
}

// NewDatabaseStore creates a new database store
func NewDatabaseStore(database *db.Database) *DatabaseStore {
	return &DatabaseStore{
		db: database,
	}
}

// SaveTable saves a table to the database
func (s *DatabaseStore) SaveTable(ctx context.Context, st game.State) error {
	return s.db.SaveTable(ctx, st)
}

// GetTable retrieves a table by ID
func (s *DatabaseStore) GetTable(ctx context.Context, id string) (game.State, error) {
	st, err := s.db.GetTable(ctx, id)
	return st, notFound(err)
}

// DeleteTable removes a table from the database
func (s *DatabaseStore) DeleteTable(ctx context.Context, id string) error {
	return notFound(s.db.DeleteTable(ctx, id))
}

// ListTables returns all tables in the database
func (s *DatabaseStore) ListTables(ctx context.Context) ([]game.State, error) {
	return s.db.ListTables(ctx)
}

func notFound(err error) error {
	if errors.Is(err, db.ErrNoTable) {
		return ErrNotFound
	}
	return err
}
