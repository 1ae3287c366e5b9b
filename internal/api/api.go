package api

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/rryowa/blogapi/internal/controller"
	"github.com/rryowa/blogapi/internal/service"
	"github.com/rryowa/blogapi/internal/util"
)

const (
	shutdownTimeout = 5 * time.Second
)

type API struct {
	server          *echo.Echo
	controller      *controller.Controller
	authService     *service.AuthService
	log             *zap.SugaredLogger
	gracefulTimeout time.Duration
	storageDir      string
	cleanupFuncs    []func()
}

func NewAPI(c *controller.Controller, authService *service.AuthService, sc *util.ServerConfig, storageDir string, l *zap.SugaredLogger, cleanupFuncs []func()) *API {
	e := echo.New()

	e.Server.Addr = sc.ServerAddr
	e.Server.WriteTimeout = sc.WriteTimeout
	e.Server.ReadTimeout = sc.ReadTimeout
	e.Server.IdleTimeout = sc.IdleTimeout
	e.HTTPErrorHandler = ErrorHandler(l)

	return &API{
		server:          e,
		controller:      c,
		authService:     authService,
		log:             l,
		gracefulTimeout: sc.GracefulTimeout,
		storageDir:      storageDir,
		cleanupFuncs:    cleanupFuncs,
	}
}

func (a *API) Run(ctxBackground context.Context) {
	ctx, stop := signal.NotifyContext(ctxBackground, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, cleanup := range a.cleanupFuncs {
		defer cleanup()
	}

	a.server.Use(echomiddleware.RequestLoggerWithConfig(GetLoggerMiddlewareConfig(a)))

	a.RegisterRoutes()

	a.ListenGracefulShutdown(ctx)
}

func (a *API) RegisterRoutes() {
	c := a.controller
	authRequired := AuthMiddleware(a.authService)

	a.server.POST("/register", c.Register)
	a.server.POST("/login", c.Login)
	a.server.POST("/logout", c.Logout, authRequired)
	a.server.GET("/refresh", c.Refresh)

	a.server.POST("/blog", c.CreateBlog, authRequired)
	a.server.GET("/blog/all", c.GetAllBlogs, authRequired)
	a.server.GET("/blog/:id", c.GetBlogByID, authRequired)
	a.server.PUT("/blog", c.UpdateBlog, authRequired)
	a.server.DELETE("/blog/:id", c.DeleteBlog, authRequired)

	a.server.POST("/comment", c.CreateComment, authRequired)
	a.server.GET("/comment/:id", c.GetComments, authRequired)

	// Uploaded blog photos are served as static files.
	a.server.Static("/storage", a.storageDir)
}

func (a *API) ListenGracefulShutdown(ctx context.Context) {
	go func() {
		err := a.server.Start(a.server.Server.Addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()
	a.log.Infof("Listening on: %s", a.server.Server.Addr)

	<-ctx.Done()
	a.log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	if err != nil {
		a.log.Errorf("shutdown: %v", err)
	}

	longShutdown := make(chan struct{}, 1)

	go func() {
		time.Sleep(a.gracefulTimeout)
		longShutdown <- struct{}{}
	}()

	select {
	case <-shutdownCtx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			a.log.Info("server shutdown completed")
		} else {
			a.log.Errorf("server shutdown: %v", ctx.Err())
		}
	case <-longShutdown:
		a.log.Infof("finished")
	}
}
