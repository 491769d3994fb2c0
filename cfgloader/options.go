package cfgloader

// Options adjust how MustLoad behaves.
type Options struct {
	// Silent suppresses logging of the loaded config.
	Silent bool
}

// Option mutates Options.
type Option func(*Options)

// WithSilent keeps the loaded config out of the logs. Useful for tests
// and for tooling that prints the config itself.
func WithSilent() Option {
	return func(o *Options) {
		o.Silent = true
	}
}
