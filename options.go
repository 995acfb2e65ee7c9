package inject

import (
	"go.uber.org/zap"
)

// Option configures a Builder or a Container.
type Option interface {
	apply(*options)
}

type options struct {
	logger   *zap.Logger
	id       string
	resolver ParameterResolver
}

type optionFunc func(*options)

func (f optionFunc) apply(opts *options) {
	f(opts)
}

// WithLogger sets the logger used for resolution diagnostics. A nil
// logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(opts *options) {
		if logger == nil {
			logger = zap.NewNop()
		}
		opts.logger = logger
	})
}

// WithID sets the container ID. By default a random UUID is used.
func WithID(id string) Option {
	return optionFunc(func(opts *options) {
		opts.id = id
	})
}

// WithParameterResolver replaces the default ParameterResolver used for
// constructors and factory methods.
func WithParameterResolver(resolver ParameterResolver) Option {
	return optionFunc(func(opts *options) {
		if resolver != nil {
			opts.resolver = resolver
		}
	})
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:   zap.NewNop(),
		resolver: NewParameterResolver(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt.apply(o)
		}
	}

	return o
}
