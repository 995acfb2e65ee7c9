package echo

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/junioryono/inject"
)

// Test types
type testService struct {
	ID    string
	Value int
}

type testController struct {
	Service *testService
	Context echo.Context
}

func newTestController(svc *testService, c echo.Context) *testController {
	return &testController{Service: svc, Context: c}
}

func (c *testController) GetValue(ctx echo.Context) error {
	return ctx.String(http.StatusOK, c.Service.ID+":"+c.Context.Param("id"))
}

func (c *testController) Panic(ctx echo.Context) error {
	panic("test panic")
}

func newScope(t *testing.T, constructors ...any) *inject.Scope {
	t.Helper()

	app, err := inject.NewBuilder().
		Singleton(&testService{ID: "app", Value: 42}).
		Build()
	require.NoError(t, err)

	scope, err := inject.NewScope(app, constructors)
	require.NoError(t, err)
	return scope
}

func serve(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestContainerMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("creates container and attaches to context", func(t *testing.T) {
		t.Parallel()

		var resolved *testService
		var echoCtx echo.Context
		var request *http.Request

		e := echo.New()
		e.Use(ContainerMiddleware(newScope(t)))
		e.GET("/test", func(c echo.Context) error {
			container, err := FromContext(c)
			require.NoError(t, err)

			resolved, err = inject.Resolve[*testService](container)
			assert.NoError(t, err)
			echoCtx, err = inject.Resolve[echo.Context](container)
			assert.NoError(t, err)
			request, err = inject.Resolve[*http.Request](container)
			assert.NoError(t, err)

			return c.NoContent(http.StatusOK)
		})

		rec := serve(e, "/test")

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, resolved)
		assert.Equal(t, "app", resolved.ID)
		assert.NotNil(t, echoCtx)
		require.NotNil(t, request)
		assert.Equal(t, "/test", request.URL.Path)
	})

	t.Run("runs middlewares in order", func(t *testing.T) {
		t.Parallel()

		var order []int

		e := echo.New()
		e.Use(ContainerMiddleware(newScope(t),
			WithMiddleware(func(inject.Container, echo.Context) error {
				order = append(order, 1)
				return nil
			}),
			WithMiddleware(func(inject.Container, echo.Context) error {
				order = append(order, 2)
				return nil
			}),
		))
		e.GET("/test", func(c echo.Context) error {
			order = append(order, 3)
			return c.NoContent(http.StatusOK)
		})

		serve(e, "/test")

		assert.Equal(t, []int{1, 2, 3}, order)
	})

	t.Run("calls error handler when middleware fails", func(t *testing.T) {
		t.Parallel()

		mwErr := errors.New("middleware error")
		var capturedError error
		handlerCalled := false

		e := echo.New()
		e.Use(ContainerMiddleware(newScope(t),
			WithMiddleware(func(inject.Container, echo.Context) error {
				return mwErr
			}),
			WithErrorHandler(func(c echo.Context, err error) error {
				capturedError = err
				return c.NoContent(http.StatusUnauthorized)
			}),
		))
		e.GET("/test", func(c echo.Context) error {
			handlerCalled = true
			return nil
		})

		rec := serve(e, "/test")

		assert.False(t, handlerCalled)
		assert.Equal(t, mwErr, capturedError)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandle(t *testing.T) {
	t.Parallel()

	t.Run("resolves controller and calls method", func(t *testing.T) {
		t.Parallel()

		e := echo.New()
		e.Use(ContainerMiddleware(newScope(t, newTestController)))
		e.GET("/users/:id", Handle((*testController).GetValue))

		rec := serve(e, "/users/7")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "app:7", rec.Body.String())
	})

	t.Run("calls container error handler when no container", func(t *testing.T) {
		t.Parallel()

		var capturedError error

		e := echo.New()
		e.GET("/test", Handle((*testController).GetValue,
			WithContainerErrorHandler(func(c echo.Context, err error) error {
				capturedError = err
				return c.NoContent(http.StatusBadGateway)
			}),
		))

		rec := serve(e, "/test")

		assert.ErrorIs(t, capturedError, inject.ErrContainerNotInContext)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("calls resolution error handler when service not found", func(t *testing.T) {
		t.Parallel()

		type missingController interface {
			Get(echo.Context) error
		}

		var capturedError error

		e := echo.New()
		e.Use(ContainerMiddleware(newScope(t)))
		e.GET("/test", Handle(missingController.Get,
			WithResolutionErrorHandler(func(c echo.Context, err error) error {
				capturedError = err
				return c.NoContent(http.StatusNotFound)
			}),
		))

		rec := serve(e, "/test")

		assert.True(t, inject.IsNoUniqueService(capturedError))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("default resolution error handler returns 500", func(t *testing.T) {
		t.Parallel()

		type missingController interface {
			Get(echo.Context) error
		}

		e := echo.New()
		e.Use(ContainerMiddleware(newScope(t)))
		e.GET("/test", Handle(missingController.Get))

		rec := serve(e, "/test")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("recovers from panic when enabled", func(t *testing.T) {
		t.Parallel()

		var recovered any

		e := echo.New()
		e.Use(ContainerMiddleware(newScope(t, newTestController)))
		e.GET("/test", Handle((*testController).Panic,
			WithPanicRecovery(true),
			WithPanicHandler(func(c echo.Context, v any) error {
				recovered = v
				return c.NoContent(http.StatusInternalServerError)
			}),
		))

		rec := serve(e, "/test")

		assert.Equal(t, "test panic", recovered)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("does not recover from panic when disabled", func(t *testing.T) {
		t.Parallel()

		e := echo.New()
		e.Use(ContainerMiddleware(newScope(t, newTestController)))
		e.GET("/test", Handle((*testController).Panic))

		assert.Panics(t, func() {
			serve(e, "/test")
		})
	})
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	t.Run("default error handler returns HTTPError and logs", func(t *testing.T) {
		t.Parallel()

		core, logs := observer.New(zap.ErrorLevel)
		cfg := defaultConfig()
		WithLogger(zap.New(core))(cfg)

		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/test", nil), httptest.NewRecorder())

		err := cfg.ErrorHandler(c, errors.New("test error"))

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusInternalServerError, httpErr.Code)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "failed to create request container", entry.Message)
		assert.Equal(t, "/test", entry.ContextMap()["path"])
		assert.Equal(t, "test error", entry.ContextMap()["error"])
	})

	t.Run("default logger reports errors", func(t *testing.T) {
		t.Parallel()
		assert.True(t, defaultConfig().Logger.Core().Enabled(zap.ErrorLevel))
	})

	t.Run("nil logger disables logging", func(t *testing.T) {
		t.Parallel()

		cfg := defaultConfig()
		WithLogger(nil)(cfg)
		assert.False(t, cfg.Logger.Core().Enabled(zap.ErrorLevel))
	})
}

func TestDefaultHandlerConfig(t *testing.T) {
	t.Parallel()

	t.Run("panic recovery disabled by default", func(t *testing.T) {
		t.Parallel()
		assert.False(t, defaultHandlerConfig().PanicRecovery)
	})

	t.Run("default handlers return HTTPError and log", func(t *testing.T) {
		t.Parallel()

		core, logs := observer.New(zap.ErrorLevel)
		cfg := defaultHandlerConfig()
		WithHandlerLogger(zap.New(core))(cfg)

		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/test", nil), httptest.NewRecorder())

		for _, err := range []error{
			cfg.PanicHandler(c, "panic value"),
			cfg.ContainerErrorHandler(c, errors.New("container error")),
			cfg.ResolutionErrorHandler(c, errors.New("resolution error")),
		} {
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
		}

		assert.Equal(t, 1, logs.FilterMessage("panic in handler").Len())
		assert.Equal(t, 1, logs.FilterMessage("failed to get container from context").Len())
		assert.Equal(t, 1, logs.FilterMessage("failed to resolve controller").Len())
	})

	t.Run("resolution failures reach the configured logger", func(t *testing.T) {
		t.Parallel()

		type missingController interface {
			Get(echo.Context) error
		}

		core, logs := observer.New(zap.ErrorLevel)

		e := echo.New()
		e.Use(ContainerMiddleware(newScope(t)))
		e.GET("/test", Handle(missingController.Get, WithHandlerLogger(zap.New(core))))

		rec := serve(e, "/test")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, 1, logs.FilterMessage("failed to resolve controller").Len())
	})
}

func TestIntegration(t *testing.T) {
	t.Parallel()

	t.Run("each request builds its own controller", func(t *testing.T) {
		t.Parallel()

		var controllers []*testController

		e := echo.New()
		e.Use(ContainerMiddleware(newScope(t, newTestController)))
		e.GET("/users/:id", Handle(func(ctrl *testController, c echo.Context) error {
			controllers = append(controllers, ctrl)
			return c.String(http.StatusOK, ctrl.Context.Param("id"))
		}))

		rec1 := serve(e, "/users/1")
		rec2 := serve(e, "/users/2")

		assert.Equal(t, "1", rec1.Body.String())
		assert.Equal(t, "2", rec2.Body.String())
		require.Len(t, controllers, 2)
		assert.NotSame(t, controllers[0], controllers[1])
		assert.Same(t, controllers[0].Service, controllers[1].Service)
	})
}
