// Package container provides dependency injection for the financeanalyzer
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"fmt"

	"github.com/fabian-plaehn/financeanalyzer/internal/categorizer"
	"github.com/fabian-plaehn/financeanalyzer/internal/config"
	"github.com/fabian-plaehn/financeanalyzer/internal/export"
	"github.com/fabian-plaehn/financeanalyzer/internal/importer"
	"github.com/fabian-plaehn/financeanalyzer/internal/logging"
	"github.com/fabian-plaehn/financeanalyzer/internal/rulefile"
	"github.com/fabian-plaehn/financeanalyzer/internal/store"
)

// Container holds all application dependencies and provides methods to
// access them. It acts as the central registry for dependency injection,
// ensuring that all components receive their required dependencies through
// constructors.
//
// Container is immutable after creation - all fields are private and can
// only be accessed through getter methods.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       *store.Store
	categorizer *categorizer.Categorizer
	importer    *importer.Importer
	exporter    *export.Exporter
	ruleLoader  *rulefile.Loader
}

// NewContainer creates and wires all application dependencies.
// This is the main entry point for dependency injection in the application.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	// Open the database and run pending migrations
	st, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.Database.Path, err)
	}

	cat := categorizer.NewCategorizer(st, logger)
	imp := importer.New(st, cat, logger)

	exp := export.New(st, logger)
	if cfg.Export.Delimiter != "" {
		exp.Delimiter = rune(cfg.Export.Delimiter[0])
	}

	loader := rulefile.NewLoader(st, logger)

	logger.Info("Container initialized successfully",
		logging.Field{Key: "database", Value: cfg.Database.Path})

	return &Container{
		logger:      logger,
		config:      cfg,
		store:       st,
		categorizer: cat,
		importer:    imp,
		exporter:    exp,
		ruleLoader:  loader,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the container's store instance.
func (c *Container) GetStore() *store.Store {
	return c.store
}

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetImporter returns the container's importer instance.
func (c *Container) GetImporter() *importer.Importer {
	return c.importer
}

// GetExporter returns the container's exporter instance.
func (c *Container) GetExporter() *export.Exporter {
	return c.exporter
}

// GetRuleLoader returns the container's rule seed file loader.
func (c *Container) GetRuleLoader() *rulefile.Loader {
	return c.ruleLoader
}

// Close releases container resources, closing the database connection.
func (c *Container) Close() error {
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	c.logger.Info("Container closed")
	return nil
}
