// Package echo provides inject integration for the Echo web framework.
//
// The middleware creates a request container from an inject.Scope for each
// request. Handle resolves a controller from that container.
//
// Example usage:
//
//	scope, _ := inject.NewScope(app, []any{NewAuthController, NewUserController})
//
//	e := echo.New()
//	e.Use(injectecho.ContainerMiddleware(scope))
//
//	e.POST("/login", injectecho.Handle((*AuthController).Login))
//	e.GET("/users/:id", injectecho.Handle((*UserController).GetByID))
package echo

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/junioryono/inject"
)

var contextType = inject.TypeOf[echo.Context]()

// Config holds the configuration for the container middleware.
type Config struct {
	// ErrorHandler is called when container creation or a middleware fails.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(echo.Context, error) error

	// Middlewares run after the request container is created, in order.
	Middlewares []func(inject.Container, echo.Context) error

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
func WithErrorHandler(h func(echo.Context, error) error) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithLogger sets the logger of the default error handler. A nil logger
// disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = nopIfNil(logger)
	}
}

// WithMiddleware adds a function that runs after container creation.
// Multiple middlewares are executed in the order they are added.
func WithMiddleware(mw func(inject.Container, echo.Context) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

func internalServerError() error {
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
}

func defaultConfig() *Config {
	cfg := &Config{Logger: defaultLogger()}
	cfg.ErrorHandler = func(c echo.Context, err error) error {
		cfg.Logger.Error("failed to create request container",
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
		return internalServerError()
	}
	return cfg
}

// ContainerMiddleware creates an Echo middleware that creates a request
// container for each request. The container holds the request context, the
// echo.Context and the *http.Request. It is attached to the request context
// and can be retrieved with inject.FromContext or FromContext.
//
// Example:
//
//	e := echo.New()
//	e.Use(injectecho.ContainerMiddleware(scope))
func ContainerMiddleware(scope *inject.Scope, opts ...Option) echo.MiddlewareFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			echoContext, err := inject.NewConstantDefinition(contextType, c)
			if err != nil {
				return cfg.ErrorHandler(c, err)
			}

			r := c.Request()
			container, err := scope.NewContainer(r.Context(), echoContext, r)
			if err != nil {
				return cfg.ErrorHandler(c, err)
			}

			c.SetRequest(r.WithContext(inject.NewContext(r.Context(), container)))

			for _, mw := range cfg.Middlewares {
				if err := mw(container, c); err != nil {
					return cfg.ErrorHandler(c, err)
				}
			}

			return next(c)
		}
	}
}

// FromContext returns the request container attached by ContainerMiddleware.
func FromContext(c echo.Context) (inject.Container, error) {
	return inject.FromContext(c.Request().Context())
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(echo.Context, any) error

	// ContainerErrorHandler is called when the request carries no container.
	ContainerErrorHandler func(echo.Context, error) error

	// ResolutionErrorHandler is called when the controller cannot be resolved.
	ResolutionErrorHandler func(echo.Context, error) error

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
func WithPanicHandler(h func(echo.Context, any) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithContainerErrorHandler sets the error handler for requests without a
// container.
func WithContainerErrorHandler(h func(echo.Context, error) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.ContainerErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for resolution failures.
func WithResolutionErrorHandler(h func(echo.Context, error) error) HandlerOption {
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
	cfg.PanicHandler = func(c echo.Context, v any) error {
		cfg.Logger.Error("panic in handler", zap.String("path", c.Request().URL.Path), zap.Any("panic", v))
		return internalServerError()
	}
	cfg.ContainerErrorHandler = func(c echo.Context, err error) error {
		cfg.Logger.Error("failed to get container from context", zap.String("path", c.Request().URL.Path), zap.Error(err))
		return internalServerError()
	}
	cfg.ResolutionErrorHandler = func(c echo.Context, err error) error {
		cfg.Logger.Error("failed to resolve controller", zap.String("path", c.Request().URL.Path), zap.Error(err))
		return internalServerError()
	}
	return cfg
}

// Handle wraps a controller method. The controller T is resolved from the
// container attached to the request context.
//
// Example:
//
//	e.GET("/users/:id", injectecho.Handle((*UserController).GetByID))
func Handle[T any](method func(T, echo.Context) error, opts ...HandlerOption) echo.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c echo.Context) (err error) {
		if cfg.PanicRecovery {
			defer func() {
				if v := recover(); v != nil {
					err = cfg.PanicHandler(c, v)
				}
			}()
		}

		container, containerErr := FromContext(c)
		if containerErr != nil {
			return cfg.ContainerErrorHandler(c, containerErr)
		}

		controller, resolveErr := inject.Resolve[T](container)
		if resolveErr != nil {
			return cfg.ResolutionErrorHandler(c, resolveErr)
		}

		return method(controller, c)
	}
}
