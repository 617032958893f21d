package di

import (
	"log/slog"

	"github.com/goliatone/go-order-loader/loader"
)

// Container provides dependency injection for the loading pipeline. It holds
// the validated configuration and shared logger, and acts as a factory for
// engines bound to concrete record stores.
type Container struct {
	config loader.Config
	log    *slog.Logger
}

// NewContainer creates a new DI container with the provided configuration.
// The configuration is validated up front so every engine built from the
// container starts from known-good settings.
func NewContainer(config loader.Config) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Container{
		config: config,
		log:    slog.Default(),
	}, nil
}

// NewContainerWithDefaults creates a new DI container using default
// configuration. This is a convenience constructor for typical use cases
// where custom configuration is not required.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(loader.DefaultConfig())
}

// WithLogger replaces the logger engines are built with and returns the
// container.
func (c *Container) WithLogger(log *slog.Logger) *Container {
	c.log = log
	return c
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() loader.Config {
	return c.config
}

// Logger returns the logger engines are built with.
func (c *Container) Logger() *slog.Logger {
	return c.log
}

// NewEngine builds a loading engine over the given record store, wired with
// the container's configuration and logger. Each engine owns its own cache
// store; engines do not share working sets.
func (c *Container) NewEngine(store loader.RecordStore, opts ...loader.Option) (*loader.Engine, error) {
	combined := append([]loader.Option{loader.WithLogger(c.log)}, opts...)
	return loader.New(store, c.config, combined...)
}
