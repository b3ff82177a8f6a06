// Package container provides dependency injection for the payout-report application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"fjacquet/payout-report/internal/codes"
	"fjacquet/payout-report/internal/config"
	"fjacquet/payout-report/internal/logging"
	"fjacquet/payout-report/internal/metrics"
	"fjacquet/payout-report/internal/party"
	"fjacquet/payout-report/internal/report"
	"fjacquet/payout-report/internal/runner"
	"fjacquet/payout-report/internal/server"
	"fjacquet/payout-report/internal/store"
	"fjacquet/payout-report/internal/ytd"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	registry  *codes.Registry
	store     *store.Store
	parties   party.Resolver
	client    *party.Client
	metrics   *metrics.Metrics
	runner    *runner.Runner
	generator *report.Generator
}

// NewContainer creates and wires all application dependencies. A code table
// that fails to load aborts construction.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := config.NewLogger(cfg)

	registry, err := codes.Load(CodeTables(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("error loading code tables: %w", err)
	}

	db, err := store.Open(store.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Debug:           cfg.Database.Debug,
	})
	if err != nil {
		return nil, err
	}
	st := store.New(db, logger)

	parties, client, err := newResolver(cfg, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	m := metrics.New()
	r, err := runner.New(runner.Deps{
		Transactions: st,
		Products:     st,
		Ledger:       st,
		Parties:      parties,
		Registry:     registry,
		Metrics:      m,
		Logger:       logger,
		Workers:      cfg.Workers(),
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	logger.Info("Container initialized successfully",
		logging.F("database_driver", cfg.Database.Driver),
		logging.F("party_service", client != nil),
		logging.F(logging.FieldWorkers, cfg.Workers()))

	return &Container{
		logger:    logger,
		config:    cfg,
		registry:  registry,
		store:     st,
		parties:   parties,
		client:    client,
		metrics:   m,
		runner:    r,
		generator: report.NewGenerator(logger, cfg.DelimiterRune()),
	}, nil
}

// CodeTables returns the configured code table directory, or the embedded
// tables when none is set.
func CodeTables(cfg *config.Config) fs.FS {
	if cfg.Codes.Directory != "" {
		return os.DirFS(cfg.Codes.Directory)
	}
	return codes.EmbeddedTables()
}

// newResolver returns the cached party service client, or an empty static
// resolver when no service is configured.
func newResolver(cfg *config.Config, logger logging.Logger) (party.Resolver, *party.Client, error) {
	if cfg.Party.BaseURL == "" {
		logger.Warn("No party service configured, addresses will be empty")
		return party.StaticResolver{}, nil, nil
	}

	client, err := party.NewClient(party.ClientOptions{
		BaseURL:           cfg.Party.BaseURL,
		Timeout:           cfg.Party.Timeout,
		RequestsPerSecond: cfg.Party.RequestsPerSecond,
		BreakerFailures:   cfg.Party.BreakerFailures,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating party client: %w", err)
	}

	cache := party.NewCache(party.RedisOptions{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Password: cfg.Redis.Password,
	}, logger)
	return party.NewCachedResolver(client, cache, cfg.Party.CacheTTL), client, nil
}

// Window resolves the configured report window at now.
func (c *Container) Window(now time.Time) (ytd.Window, error) {
	return c.config.ReportWindow(now)
}

// NewServer builds the HTTP server. The configured window is resolved per
// request and the store backs the health check.
func (c *Container) NewServer() (*server.Server, error) {
	return server.New(server.Config{
		Addr:         c.config.Server.Addr,
		ReadTimeout:  c.config.Server.ReadTimeout,
		WriteTimeout: c.config.Server.WriteTimeout,
		IdleTimeout:  server.DefaultConfig().IdleTimeout,
	}, server.Deps{
		Runner:    c.runner,
		Generator: c.generator,
		Registry:  c.registry,
		Metrics:   c.metrics,
		Logger:    c.logger,
		Window:    c.Window,
		Health:    c.store,
	})
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRegistry returns the code registry.
func (c *Container) GetRegistry() *codes.Registry {
	return c.registry
}

// GetStore returns the database store.
func (c *Container) GetStore() *store.Store {
	return c.store
}

// GetResolver returns the address resolver used by report runs.
func (c *Container) GetResolver() party.Resolver {
	return c.parties
}

// GetPartyClient returns the party service client. Returns nil if no service
// is configured.
func (c *Container) GetPartyClient() *party.Client {
	return c.client
}

// GetMetrics returns the metrics registry.
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// GetRunner returns the report runner.
func (c *Container) GetRunner() *runner.Runner {
	return c.runner
}

// GetGenerator returns the report writer.
func (c *Container) GetGenerator() *report.Generator {
	return c.generator
}

// Close releases the database connection pool.
func (c *Container) Close() error {
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("error closing store: %w", err)
	}
	c.logger.Info("Container closed")
	return nil
}
