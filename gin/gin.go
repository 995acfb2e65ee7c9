// Package gin provides inject integration for the Gin web framework.
//
// The middleware creates a request container from an inject.Scope for each
// request. Handle resolves a controller from that container.
//
// Example usage:
//
//	scope, _ := inject.NewScope(app, []any{NewAuthController, NewUserController})
//
//	g := gin.New()
//	g.Use(injectgin.ContainerMiddleware(scope))
//
//	g.POST("/login", injectgin.Handle((*AuthController).Login))
//	g.GET("/users/:id", injectgin.Handle((*UserController).GetByID))
package gin

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junioryono/inject"
)

// Config holds the configuration for the container middleware.
type Config struct {
	// ErrorHandler is called when container creation or a middleware fails.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(*gin.Context, error)

	// Middlewares run after the request container is created, in order.
	// They can be used to check claims, set request data, etc.
	Middlewares []func(inject.Container, *gin.Context) error

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
func WithErrorHandler(h func(*gin.Context, error)) Option {
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
func WithMiddleware(mw func(inject.Container, *gin.Context) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

func defaultConfig() *Config {
	cfg := &Config{Logger: defaultLogger()}
	cfg.ErrorHandler = func(c *gin.Context, err error) {
		cfg.Logger.Error("failed to create request container",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Internal Server Error",
		})
	}
	return cfg
}

// ContainerMiddleware creates a gin.HandlerFunc that creates a request
// container for each request. The container holds the request context, the
// *gin.Context and the *http.Request. It is attached to the request context
// and can be retrieved with inject.FromContext or FromContext.
//
// Example:
//
//	g := gin.New()
//	g.Use(injectgin.ContainerMiddleware(scope))
func ContainerMiddleware(scope *inject.Scope, opts ...Option) gin.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *gin.Context) {
		container, err := scope.NewContainer(c.Request.Context(), c, c.Request)
		if err != nil {
			cfg.ErrorHandler(c, err)
			return
		}

		c.Request = c.Request.WithContext(inject.NewContext(c.Request.Context(), container))

		for _, mw := range cfg.Middlewares {
			if err := mw(container, c); err != nil {
				cfg.ErrorHandler(c, err)
				return
			}
		}

		c.Next()
	}
}

// FromContext returns the request container attached by ContainerMiddleware.
func FromContext(c *gin.Context) (inject.Container, error) {
	return inject.FromContext(c.Request.Context())
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	// If true, panics are caught and handled by PanicHandler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(*gin.Context, any)

	// ContainerErrorHandler is called when the request carries no container.
	ContainerErrorHandler func(*gin.Context, error)

	// ResolutionErrorHandler is called when the controller cannot be resolved.
	ResolutionErrorHandler func(*gin.Context, error)

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
func WithPanicHandler(h func(*gin.Context, any)) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithContainerErrorHandler sets the error handler for requests without a
// container.
func WithContainerErrorHandler(h func(*gin.Context, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ContainerErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for resolution failures.
func WithResolutionErrorHandler(h func(*gin.Context, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ResolutionErrorHandler = h
	}
}

func abort(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": "Internal Server Error",
	})
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
	cfg.PanicHandler = func(c *gin.Context, r any) {
		cfg.Logger.Error("panic in handler", zap.String("path", c.Request.URL.Path), zap.Any("panic", r))
		abort(c)
	}
	cfg.ContainerErrorHandler = func(c *gin.Context, err error) {
		cfg.Logger.Error("failed to get container from context", zap.String("path", c.Request.URL.Path), zap.Error(err))
		abort(c)
	}
	cfg.ResolutionErrorHandler = func(c *gin.Context, err error) {
		cfg.Logger.Error("failed to resolve controller", zap.String("path", c.Request.URL.Path), zap.Error(err))
		abort(c)
	}
	return cfg
}

// Handle wraps a controller method. The controller T is resolved from the
// container attached to the request context.
//
// Example:
//
//	g.GET("/users/:id", injectgin.Handle((*UserController).GetByID))
func Handle[T any](method func(T, *gin.Context), opts ...HandlerOption) gin.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *gin.Context) {
		if cfg.PanicRecovery {
			defer func() {
				if r := recover(); r != nil {
					cfg.PanicHandler(c, r)
				}
			}()
		}

		container, err := FromContext(c)
		if err != nil {
			cfg.ContainerErrorHandler(c, err)
			return
		}

		controller, err := inject.Resolve[T](container)
		if err != nil {
			cfg.ResolutionErrorHandler(c, err)
			return
		}

		method(controller, c)
	}
}
