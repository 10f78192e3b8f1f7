package table

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/calvinwijaya/blackjack/internal/game"
	"github.com/calvinwijaya/blackjack/internal/store"
)

// Action names a state machine operation on a table
type Action string

const (
	Bet     Action = "bet"
	Deal    Action = "deal"
	Hit     Action = "hit"
	Stand   Action = "stand"
	NewGame Action = "new-game"
)

var (
	ErrNotFound      = errors.New("table not found")
	ErrUnknownAction = errors.New("unknown action")
)

// Config holds the table defaults
type Config struct {
	StartingMoney int
}

// Service runs state machine operations against stored tables. Operations
// on one table never overlap: each loads, applies and saves under that
// table's lock.
type Service struct {
	store  store.Store
	logger *log.Logger
	src    game.Source
	clock  quartz.Clock
	cfg    Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Service)

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.StartingMoney > 0 {
			s.cfg.StartingMoney = cfg.StartingMoney
		}
	}
}

// WithSource sets the shuffle source shared by all tables. It must be safe
// for concurrent use.
func WithSource(src game.Source) Option {
	return func(s *Service) { s.src = src }
}

func WithClock(clock quartz.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

func NewService(st store.Store, logger *log.Logger, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: logger,
		clock:  quartz.NewReal(),
		cfg:    Config{StartingMoney: game.DefaultMoney},
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) gameOptions() []game.Option {
	return []game.Option{game.WithSource(s.src), game.WithClock(s.clock)}
}

// Create opens a new table in the betting phase
func (s *Service) Create(ctx context.Context) (game.Snapshot, error) {
	g := game.New(s.cfg.StartingMoney, s.gameOptions()...)
	if err := s.store.SaveTable(ctx, g.State()); err != nil {
		return game.Snapshot{}, fmt.Errorf("create table: %w", err)
	}

	s.logger.Info("Table created", "table", g.ID(), "money", g.Money())
	return g.Snapshot(), nil
}

// Get returns the current snapshot of a table
func (s *Service) Get(ctx context.Context, id string) (game.Snapshot, error) {
	g, err := s.load(ctx, id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return g.Snapshot(), nil
}

// List returns snapshots of every table
func (s *Service) List(ctx context.Context) ([]game.Snapshot, error) {
	states, err := s.store.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	snaps := make([]game.Snapshot, 0, len(states))
	for _, st := range states {
		g, err := game.Restore(st, s.gameOptions()...)
		if err != nil {
			s.logger.Warn("Skipping unreadable table", "table", st.ID, "error", err)
			continue
		}
		snaps = append(snaps, g.Snapshot())
	}
	return snaps, nil
}

// Delete removes a table
func (s *Service) Delete(ctx context.Context, id string) error {
	lock := s.lock(id)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.DeleteTable(ctx, id); err != nil {
		return wrapNotFound(id, err)
	}

	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()

	s.logger.Info("Table deleted", "table", id)
	return nil
}

// Apply runs one operation on a table and returns the resulting snapshot.
// Amount is only used by Bet.
func (s *Service) Apply(ctx context.Context, id string, action Action, amount int) (game.Snapshot, error) {
	lock := s.lock(id)
	lock.Lock()
	defer lock.Unlock()

	g, err := s.load(ctx, id)
	if err != nil {
		return game.Snapshot{}, err
	}

	var snap game.Snapshot
	switch action {
	case Bet:
		snap = g.PlaceBet(amount)
	case Deal:
		snap = g.Deal()
	case Hit:
		snap = g.Hit()
	case Stand:
		snap = g.Stand()
	case NewGame:
		snap = g.NewGame()
	default:
		return game.Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	if err := s.store.SaveTable(ctx, g.State()); err != nil {
		return game.Snapshot{}, fmt.Errorf("save table %s: %w", id, err)
	}

	s.logger.Debug("Applied action",
		"table", id,
		"action", action,
		"phase", snap.Phase,
		"money", snap.Money,
		"player", snap.PlayerValue,
		"dealer", snap.DealerValue)
	if snap.Phase == game.GameOver && snap.Outcome != game.Unresolved {
		s.logger.Info("Round settled", "table", id, "outcome", snap.Outcome, "bet", snap.Bet, "money", snap.Money)
	}

	return snap, nil
}

func (s *Service) load(ctx context.Context, id string) (*game.Game, error) {
	st, err := s.store.GetTable(ctx, id)
	if err != nil {
		return nil, wrapNotFound(id, err)
	}

	g, err := game.Restore(st, s.gameOptions()...)
	if err != nil {
		return nil, fmt.Errorf("restore table %s: %w", id, err)
	}
	return g, nil
}

func (s *Service) lock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func wrapNotFound(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return fmt.Errorf("table %s: %w", id, err)
}
