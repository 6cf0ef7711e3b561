package echo

import "log/slog"

// DefaultChannels is the channel count used when WithChannels is not given.
const DefaultChannels = 2

type config struct {
	channels int
	logger   *slog.Logger
	checks   []Check
}

// Option configures a Processor.
type Option func(*config)

// WithChannels sets the number of delay lines. Values below 1 are ignored.
func WithChannels(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.channels = n
		}
	}
}

// WithLogger sets the logger used for self-test diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithChecks replaces the self-test sequence run by New.
func WithChecks(checks ...Check) Option {
	return func(cfg *config) {
		cfg.checks = append([]Check(nil), checks...)
	}
}

func applyOptions(opts []Option) config {
	cfg := config{
		channels: DefaultChannels,
		logger:   slog.New(slog.DiscardHandler),
		checks:   DefaultChecks(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
