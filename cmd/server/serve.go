package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/calvinwijaya/blackjack/internal/api"
	"github.com/calvinwijaya/blackjack/internal/config"
	"github.com/calvinwijaya/blackjack/internal/db"
	"github.com/calvinwijaya/blackjack/internal/randutil"
	"github.com/calvinwijaya/blackjack/internal/store"
	"github.com/calvinwijaya/blackjack/internal/table"
)

// ServeCmd runs the HTTP and websocket server. Flags override the config file.
type ServeCmd struct {
	Config        string `short:"c" default:"blackjack.hcl" env:"BLACKJACK_CONFIG" help:"Path to HCL configuration file"`
	Addr          string `short:"a" env:"BLACKJACK_ADDR" help:"Server address to bind to (overrides config)"`
	LogLevel      string `short:"l" env:"BLACKJACK_LOG_LEVEL" help:"Log level (overrides config)"`
	Frontend      string `env:"BLACKJACK_FRONTEND" help:"Frontend URL allowed by CORS (overrides config)"`
	StoreDriver   string `env:"BLACKJACK_STORE_DRIVER" help:"Store driver (overrides config)"`
	StoreDSN      string `env:"BLACKJACK_STORE_DSN" help:"Store data source name (overrides config)"`
	StartingMoney int    `env:"BLACKJACK_STARTING_MONEY" help:"Money for new tables (overrides config)"`
	Seed          *int64 `env:"BLACKJACK_SEED" help:"Deterministic shuffle seed (optional)"`
}

func (c *ServeCmd) load() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}

	// Apply command line overrides
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Frontend != "" {
		cfg.Server.FrontendURL = c.Frontend
	}
	if c.StoreDriver != "" {
		cfg.Store.Driver = c.StoreDriver
	}
	if c.StoreDSN != "" {
		cfg.Store.DSN = c.StoreDSN
	}
	if c.StartingMoney != 0 {
		cfg.Table.StartingMoney = c.StartingMoney
	}
	if c.Seed != nil {
		cfg.Table.Seed = c.Seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *ServeCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := []table.Option{table.WithConfig(table.Config{StartingMoney: cfg.Table.StartingMoney})}
	if cfg.Table.Seed != nil {
		logger.Info("Using deterministic seed", "seed", *cfg.Table.Seed)
		opts = append(opts, table.WithSource(randutil.NewLocked(*cfg.Table.Seed)))
	}
	tables := table.NewService(st, logger, opts...)

	hub := api.NewHub(logger, quartz.NewReal())
	handlers := api.NewHandlers(tables, hub, logger)

	r := mux.NewRouter()
	r.Use(api.LogRequests(logger))
	handlers.RegisterRoutes(r)

	// Configure CORS
	crs := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Server.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      crs.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Starting blackjack server",
		"addr", cfg.Server.Address,
		"store", cfg.Store.Driver,
		"startingMoney", cfg.Table.StartingMoney)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg config.StoreSettings, logger *log.Logger) (store.Store, func(), error) {
	if cfg.Driver == config.DriverMemory {
		logger.Info("In-memory table store initialized")
		return store.NewMemoryStore(), func() {}, nil
	}

	database, err := db.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Info("Database initialized successfully", "driver", cfg.Driver)

	return store.NewDatabaseStore(database), func() {
		if err := database.Close(); err != nil {
			logger.Warn("Closing database", "error", err)
		}
	}, nil
}
