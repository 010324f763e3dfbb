package engine

import (
	"log/slog"

	"github.com/roach88/statetree/internal/value"
)

// Option configures a Container at construction.
type Option func(*Container)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Sequencer issues strictly increasing event seq numbers.
// Implemented by Clock and by the deterministic test clock.
type Sequencer interface {
	Next() int64
}

// WithClock sets the logical clock that stamps events.
// Tests pass a fresh clock to get predictable seq numbers.
func WithClock(clock Sequencer) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIDGenerator sets the generator for container and transaction ids.
func WithIDGenerator(gen IDGenerator) Option {
	return func(c *Container) {
		if gen != nil {
			c.ids = gen
		}
	}
}

// WithID fixes the container id instead of generating one.
func WithID(id string) Option {
	return func(c *Container) {
		c.id = id
	}
}

// CallOption configures a single operation.
type CallOption func(*callConfig)

type callConfig struct {
	meta value.Value
}

// WithMeta attaches caller metadata to the event the operation emits.
// The metadata is cloned, so it must satisfy the same rules as state values.
func WithMeta(meta value.Value) CallOption {
	return func(cfg *callConfig) {
		cfg.meta = meta
	}
}

func newCallConfig(opts []CallOption) (callConfig, error) {
	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.meta == nil {
		return cfg, nil
	}
	meta, err := value.Clone(cfg.meta)
	if err != nil {
		return cfg, err
	}
	cfg.meta = meta
	return cfg, nil
}
