package gin

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/junioryono/inject"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Test types
type testService struct {
	ID    string
	Value int
}

type testController struct {
	Service *testService
	Context *gin.Context
}

func newTestController(svc *testService, c *gin.Context) *testController {
	return &testController{Service: svc, Context: c}
}

func (c *testController) GetValue(ctx *gin.Context) {
	ctx.String(http.StatusOK, c.Service.ID+":"+c.Context.Param("id"))
}

func (c *testController) Panic(ctx *gin.Context) {
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

func serve(g *gin.Engine, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)
	return rec
}

func TestContainerMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("creates container and attaches to context", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t)

		var resolved *testService
		var ginCtx *gin.Context
		var request *http.Request

		g := gin.New()
		g.Use(ContainerMiddleware(scope))
		g.GET("/test", func(c *gin.Context) {
			container, err := FromContext(c)
			require.NoError(t, err)

			resolved, err = inject.Resolve[*testService](container)
			assert.NoError(t, err)
			ginCtx, err = inject.Resolve[*gin.Context](container)
			assert.NoError(t, err)
			request, err = inject.Resolve[*http.Request](container)
			assert.NoError(t, err)

			c.Status(http.StatusOK)
		})

		rec := serve(g, "/test")

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, resolved)
		assert.Equal(t, "app", resolved.ID)
		assert.NotNil(t, ginCtx)
		require.NotNil(t, request)
		assert.Equal(t, "/test", request.URL.Path)
	})

	t.Run("runs middlewares in order", func(t *testing.T) {
		t.Parallel()

		var order []int

		g := gin.New()
		g.Use(ContainerMiddleware(newScope(t),
			WithMiddleware(func(inject.Container, *gin.Context) error {
				order = append(order, 1)
				return nil
			}),
			WithMiddleware(func(inject.Container, *gin.Context) error {
				order = append(order, 2)
				return nil
			}),
		))
		g.GET("/test", func(c *gin.Context) {
			order = append(order, 3)
			c.Status(http.StatusOK)
		})

		serve(g, "/test")

		assert.Equal(t, []int{1, 2, 3}, order)
	})

	t.Run("calls error handler when middleware fails", func(t *testing.T) {
		t.Parallel()

		mwErr := errors.New("middleware error")
		var capturedError error
		handlerCalled := false

		g := gin.New()
		g.Use(ContainerMiddleware(newScope(t),
			WithMiddleware(func(inject.Container, *gin.Context) error {
				return mwErr
			}),
			WithErrorHandler(func(c *gin.Context, err error) {
				capturedError = err
				c.AbortWithStatus(http.StatusUnauthorized)
			}),
		))
		g.GET("/test", func(c *gin.Context) {
			handlerCalled = true
		})

		rec := serve(g, "/test")

		assert.False(t, handlerCalled)
		assert.Equal(t, mwErr, capturedError)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("default error handler aborts with 500", func(t *testing.T) {
		t.Parallel()

		handlerCalled := false

		g := gin.New()
		g.Use(ContainerMiddleware(newScope(t),
			WithMiddleware(func(inject.Container, *gin.Context) error {
				return errors.New("fail")
			}),
		))
		g.GET("/test", func(c *gin.Context) {
			handlerCalled = true
		})

		rec := serve(g, "/test")

		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
	})
}

func TestHandle(t *testing.T) {
	t.Parallel()

	t.Run("resolves controller and calls method", func(t *testing.T) {
		t.Parallel()

		g := gin.New()
		g.Use(ContainerMiddleware(newScope(t, newTestController)))
		g.GET("/users/:id", Handle((*testController).GetValue))

		rec := serve(g, "/users/7")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "app:7", rec.Body.String())
	})

	t.Run("calls container error handler when no container", func(t *testing.T) {
		t.Parallel()

		var capturedError error

		g := gin.New()
		g.GET("/test", Handle((*testController).GetValue,
			WithContainerErrorHandler(func(c *gin.Context, err error) {
				capturedError = err
				c.AbortWithStatus(http.StatusBadGateway)
			}),
		))

		rec := serve(g, "/test")

		assert.ErrorIs(t, capturedError, inject.ErrContainerNotInContext)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("calls resolution error handler when service not found", func(t *testing.T) {
		t.Parallel()

		type missingController interface {
			Get(*gin.Context)
		}

		var capturedError error

		g := gin.New()
		g.Use(ContainerMiddleware(newScope(t)))
		g.GET("/test", Handle(missingController.Get,
			WithResolutionErrorHandler(func(c *gin.Context, err error) {
				capturedError = err
				c.AbortWithStatus(http.StatusNotFound)
			}),
		))

		rec := serve(g, "/test")

		assert.True(t, inject.IsNoUniqueService(capturedError))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("recovers from panic when enabled", func(t *testing.T) {
		t.Parallel()

		var recovered any

		g := gin.New()
		g.Use(ContainerMiddleware(newScope(t, newTestController)))
		g.GET("/test", Handle((*testController).Panic,
			WithPanicRecovery(true),
			WithPanicHandler(func(c *gin.Context, v any) {
				recovered = v
				c.AbortWithStatus(http.StatusInternalServerError)
			}),
		))

		rec := serve(g, "/test")

		assert.Equal(t, "test panic", recovered)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("does not recover from panic when disabled", func(t *testing.T) {
		t.Parallel()

		g := gin.New()
		g.Use(ContainerMiddleware(newScope(t, newTestController)))
		g.GET("/test", Handle((*testController).Panic))

		assert.Panics(t, func() {
			serve(g, "/test")
		})
	})
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	t.Run("default error handler aborts and logs", func(t *testing.T) {
		t.Parallel()

		core, logs := observer.New(zap.ErrorLevel)

		g := gin.New()
		g.Use(ContainerMiddleware(newScope(t),
			WithLogger(zap.New(core)),
			WithMiddleware(func(inject.Container, *gin.Context) error {
				return errors.New("denied")
			}),
		))
		g.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		rec := serve(g, "/test")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "failed to create request container", entry.Message)
		assert.Equal(t, "/test", entry.ContextMap()["path"])
		assert.Equal(t, "denied", entry.ContextMap()["error"])
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

	tests := []struct {
		name   string
		handle func(*HandlerConfig, *gin.Context)
	}{
		{"panic handler", func(cfg *HandlerConfig, c *gin.Context) {
			cfg.PanicHandler(c, "panic value")
		}},
		{"container error handler", func(cfg *HandlerConfig, c *gin.Context) {
			cfg.ContainerErrorHandler(c, errors.New("container error"))
		}},
		{"resolution error handler", func(cfg *HandlerConfig, c *gin.Context) {
			cfg.ResolutionErrorHandler(c, errors.New("resolution error"))
		}},
	}

	for _, tt := range tests {
		t.Run("default "+tt.name+" returns 500 and logs", func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.ErrorLevel)
			cfg := defaultHandlerConfig()
			WithHandlerLogger(zap.New(core))(cfg)

			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

			tt.handle(cfg, c)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.True(t, c.IsAborted())
			require.Equal(t, 1, logs.Len())
			assert.Equal(t, "/test", logs.All()[0].ContextMap()["path"])
		})
	}

	t.Run("panic recovery disabled by default", func(t *testing.T) {
		t.Parallel()
		assert.False(t, defaultHandlerConfig().PanicRecovery)
	})

	t.Run("default logger reports errors", func(t *testing.T) {
		t.Parallel()
		assert.True(t, defaultHandlerConfig().Logger.Core().Enabled(zap.ErrorLevel))
	})
}

func TestIntegration(t *testing.T) {
	t.Parallel()

	t.Run("each request builds its own controller", func(t *testing.T) {
		t.Parallel()

		var controllers []*testController

		g := gin.New()
		g.Use(ContainerMiddleware(newScope(t, newTestController)))
		g.GET("/users/:id", Handle(func(ctrl *testController, c *gin.Context) {
			controllers = append(controllers, ctrl)
			c.String(http.StatusOK, ctrl.Context.Param("id"))
		}))

		rec1 := serve(g, "/users/1")
		rec2 := serve(g, "/users/2")

		assert.Equal(t, "1", rec1.Body.String())
		assert.Equal(t, "2", rec2.Body.String())
		require.Len(t, controllers, 2)
		assert.NotSame(t, controllers[0], controllers[1])
		assert.Same(t, controllers[0].Service, controllers[1].Service)
	})
}
