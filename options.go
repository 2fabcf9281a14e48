package pico

import (
	"log/slog"
	"time"
)

// Options configures a Registry.
type Options struct {
	// Logger receives registry diagnostics.
	// Default: slog.Default().
	Logger *slog.Logger

	// Order is the policy used by Registry.Evaluate.
	// Default: PriorityOrder.
	Order OrderPolicy

	// CacheGrace is how long a compiled stat map is kept after its last use.
	// Default: 30 seconds.
	CacheGrace time.Duration

	// CacheCleanup is how often the stat cache drops expired entries.
	// Default: 10 seconds.
	CacheCleanup time.Duration

	// StackKey is the item stack value key instances are stored under.
	// Default: "pico".
	StackKey string
}

// defaultOptions returns sensible defaults.
func defaultOptions() Options {
	return Options{
		Logger:       slog.Default(),
		Order:        PriorityOrder{},
		CacheGrace:   30 * time.Second,
		CacheCleanup: 10 * time.Second,
		StackKey:     "pico",
	}
}

// Option configures a registry.
type Option func(*Options)

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithOrderPolicy sets the contribution order policy.
func WithOrderPolicy(p OrderPolicy) Option {
	return func(o *Options) {
		o.Order = p
	}
}

// WithCacheGrace sets how long compiled stats outlive their last use.
func WithCacheGrace(d time.Duration) Option {
	return func(o *Options) {
		o.CacheGrace = d
	}
}

// WithCacheCleanup sets the stat cache cleanup interval.
func WithCacheCleanup(d time.Duration) Option {
	return func(o *Options) {
		o.CacheCleanup = d
	}
}

// WithStackKey sets the item stack value key.
func WithStackKey(key string) Option {
	return func(o *Options) {
		o.StackKey = key
	}
}
