// Package fiber provides inject integration for the Fiber web framework.
//
// The middleware creates a request container from an inject.Scope for each
// request. Handle resolves a controller from that container.
//
// Example usage:
//
//	scope, _ := inject.NewScope(app, []any{NewAuthController, NewUserController})
//
//	server := fiber.New()
//	server.Use(injectfiber.ContainerMiddleware(scope))
//
//	server.Post("/login", injectfiber.Handle((*AuthController).Login))
//	server.Get("/users/:id", injectfiber.Handle((*UserController).GetByID))
package fiber

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/junioryono/inject"
)

// containerKey is the key used to store the container in fiber.Ctx.Locals
const containerKey = "inject_container"

// Config holds the configuration for the container middleware.
type Config struct {
	// ErrorHandler is called when container creation or a middleware fails.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(*fiber.Ctx, error) error

	// Middlewares run after the request container is created, in order.
	Middlewares []func(inject.Container, *fiber.Ctx) error

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
func WithErrorHandler(h func(*fiber.Ctx, error) error) Option {
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
func WithMiddleware(mw func(inject.Container, *fiber.Ctx) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

func internalServerError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal Server Error",
	})
}

func defaultConfig() *Config {
	cfg := &Config{Logger: defaultLogger()}
	cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
		cfg.Logger.Error("failed to create request container",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return internalServerError(c)
	}
	return cfg
}

// ContainerMiddleware creates a Fiber middleware that creates a request
// container for each request. The container holds the user context and the
// *fiber.Ctx. It is stored in fiber.Ctx.Locals and attached to the
// UserContext.
//
// Example:
//
//	server := fiber.New()
//	server.Use(injectfiber.ContainerMiddleware(scope))
func ContainerMiddleware(scope *inject.Scope, opts ...Option) fiber.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *fiber.Ctx) error {
		container, err := scope.NewContainer(c.UserContext(), c)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.SetUserContext(inject.NewContext(c.UserContext(), container))
		c.Locals(containerKey, container)

		for _, mw := range cfg.Middlewares {
			if err := mw(container, c); err != nil {
				return cfg.ErrorHandler(c, err)
			}
		}

		return c.Next()
	}
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(*fiber.Ctx, any) error

	// ContainerErrorHandler is called when the request carries no container.
	ContainerErrorHandler func(*fiber.Ctx, error) error

	// ResolutionErrorHandler is called when the controller cannot be resolved.
	ResolutionErrorHandler func(*fiber.Ctx, error) error

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
func WithPanicHandler(h func(*fiber.Ctx, any) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithContainerErrorHandler sets the error handler for requests without a
// container.
func WithContainerErrorHandler(h func(*fiber.Ctx, error) error) HandlerOption {
	return func(c *HandlerConfig) {
		c.ContainerErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for resolution failures.
func WithResolutionErrorHandler(h func(*fiber.Ctx, error) error) HandlerOption {
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
	cfg.PanicHandler = func(c *fiber.Ctx, v any) error {
		cfg.Logger.Error("panic in handler", zap.String("path", c.Path()), zap.Any("panic", v))
		return internalServerError(c)
	}
	cfg.ContainerErrorHandler = func(c *fiber.Ctx, err error) error {
		cfg.Logger.Error("failed to get container from context", zap.String("path", c.Path()), zap.Error(err))
		return internalServerError(c)
	}
	cfg.ResolutionErrorHandler = func(c *fiber.Ctx, err error) error {
		cfg.Logger.Error("failed to resolve controller", zap.String("path", c.Path()), zap.Error(err))
		return internalServerError(c)
	}
	return cfg
}

// Handle wraps a controller method. The controller T is resolved from the
// container stored in fiber.Ctx.Locals.
//
// Example:
//
//	server.Get("/users/:id", injectfiber.Handle((*UserController).GetByID))
func Handle[T any](method func(T, *fiber.Ctx) error, opts ...HandlerOption) fiber.Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *fiber.Ctx) (err error) {
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

// FromContext retrieves the container from fiber.Ctx.Locals.
//
// Example:
//
//	container, err := injectfiber.FromContext(c)
//	userService := inject.MustResolve[*UserService](container)
func FromContext(c *fiber.Ctx) (inject.Container, error) {
	container, ok := c.Locals(containerKey).(inject.Container)
	if !ok || container == nil {
		return nil, inject.ErrContainerNotInContext
	}

	return container, nil
}
