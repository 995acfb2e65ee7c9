// Package http provides inject integration for net/http.
//
// The middleware creates a request container from an inject.Scope and
// attaches it to the request context. Handle resolves a controller from
// that container and calls one of its methods.
//
// Example usage:
//
//	app, _ := inject.NewBuilder().InjectConstructor(NewUserRepository).Build()
//	scope, _ := inject.NewScope(app, []any{NewUserController})
//
//	mux := http.NewServeMux()
//	mux.Handle("GET /users/{id}", injecthttp.Handle((*UserController).GetByID))
//
//	http.ListenAndServe(":8080", injecthttp.ContainerMiddleware(scope)(mux))
package http

import (
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/junioryono/inject"
)

// Config holds the configuration for the container middleware.
type Config struct {
	// ErrorHandler is called when container creation or a middleware fails.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)

	// Middlewares run after the request container is created, in order.
	Middlewares []func(inject.Container, *http.Request) error

	// Values returns extra services for the request container.
	Values func(*http.Request) []any

	// Logger receives the failures handled by the default ErrorHandler.
	Logger *zap.Logger
}

// defaultLogger is shared by the default handlers of every config.
var defaultLogger = sync.OnceValue(func() *zap.Logger {
	return zap.Must(zap.NewProduction())
})

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Option configures the container middleware.
type Option func(*Config)

// WithErrorHandler sets the error handler for container creation failures.
func WithErrorHandler(h func(http.ResponseWriter, *http.Request, error)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithMiddleware adds a function that runs after container creation.
// Multiple middlewares are executed in the order they are added.
func WithMiddleware(mw func(inject.Container, *http.Request) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

// WithLogger sets the logger of the default error handler. A nil logger
// disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = nopIfNil(logger)
	}
}

// WithValues sets a function returning extra services for each request.
func WithValues(fn func(*http.Request) []any) Option {
	return func(c *Config) {
		c.Values = fn
	}
}

func defaultConfig() *Config {
	cfg := &Config{Logger: defaultLogger()}
	cfg.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		cfg.Logger.Error("failed to create request container",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	return cfg
}

// ContainerMiddleware returns a middleware that creates a request container
// for each request. The container holds the request context and the
// *http.Request, and can be retrieved with inject.FromContext.
//
// Example:
//
//	handler := injecthttp.ContainerMiddleware(scope)(mux)
func ContainerMiddleware(scope *inject.Scope, opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			values := []any{r}
			if cfg.Values != nil {
				values = append(values, cfg.Values(r)...)
			}

			c, err := scope.NewContainer(r.Context(), values...)
			if err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}

			r = r.WithContext(inject.NewContext(r.Context(), c))

			for _, mw := range cfg.Middlewares {
				if err := mw(c, r); err != nil {
					cfg.ErrorHandler(w, r, err)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(http.ResponseWriter, *http.Request, any)

	// ContainerErrorHandler is called when the request carries no container.
	ContainerErrorHandler func(http.ResponseWriter, *http.Request, error)

	// ResolutionErrorHandler is called when the controller cannot be resolved.
	ResolutionErrorHandler func(http.ResponseWriter, *http.Request, error)

	// Logger receives the failures handled by the default handlers.
	Logger *zap.Logger
}

// HandlerOption configures the Handle wrapper.
type HandlerOption func(*HandlerConfig)

// WithPanicRecovery enables or disables panic recovery in the handler.
func WithPanicRecovery(enabled bool) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicRecovery = enabled
	}
}

// WithPanicHandler sets the handler for panics.
func WithPanicHandler(h func(http.ResponseWriter, *http.Request, any)) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithContainerErrorHandler sets the error handler for requests without a
// container.
func WithContainerErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ContainerErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for resolution failures.
func WithResolutionErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ResolutionErrorHandler = h
	}
}

// WithHandlerLogger sets the logger of the default handlers. A nil logger
// disables logging.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(c *HandlerConfig) {
		c.Logger = nopIfNil(logger)
	}
}

func defaultHandlerConfig() *HandlerConfig {
	cfg := &HandlerConfig{PanicRecovery: false, Logger: defaultLogger()}
	cfg.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		cfg.Logger.Error("panic in handler", zap.String("path", r.URL.Path), zap.Any("panic", v))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	cfg.ContainerErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		cfg.Logger.Error("failed to get container from context", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	cfg.ResolutionErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		cfg.Logger.Error("failed to resolve controller", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	return cfg
}

// Handle wraps a controller method. The controller T is resolved from the
// container attached to the request context.
//
// Example:
//
//	mux.Handle("GET /users/{id}", injecthttp.Handle((*UserController).GetByID))
func Handle[T any](method func(T, http.ResponseWriter, *http.Request), opts ...HandlerOption) http.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.PanicRecovery {
			defer func() {
				if v := recover(); v != nil {
					cfg.PanicHandler(w, r, v)
				}
			}()
		}

		c, err := inject.FromContext(r.Context())
		if err != nil {
			cfg.ContainerErrorHandler(w, r, err)
			return
		}

		controller, err := inject.Resolve[T](c)
		if err != nil {
			cfg.ResolutionErrorHandler(w, r, err)
			return
		}

		method(controller, w, r)
	}
}
