// Package httpserver serves the browser UI and the JSON API over the session controller.
package httpserver

import (
	"context"
	"embed"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/1broseidon/director/client"
	"github.com/1broseidon/director/config"
	"github.com/1broseidon/director/internal/metrics"
	"github.com/1broseidon/director/session"
)

//go:embed static/index.html
var staticFS embed.FS

// HttpServer wraps the gin engine and its dependencies.
type HttpServer struct {
	cfg     *config.Config
	engine  *gin.Engine
	log     zerolog.Logger
	client  *client.Client
	session *session.Controller
}

// New builds the engine with middleware and routes registered.
func New(cfg *config.Config, log zerolog.Logger, c *client.Client, ctrl *session.Controller) *HttpServer {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.MaxMultipartMemory = cfg.MaxUploadBytes
	engine.Use(
		gin.Recovery(),
		RequestID(),
		Tracing("github.com/1broseidon/director/httpserver"),
		Metrics(),
		RequestLogger(log),
	)

	s := &HttpServer{
		cfg:     cfg,
		engine:  engine,
		log:     log,
		client:  c,
		session: ctrl,
	}
	s.registerCoreRoutes()
	s.registerAPIRoutes()
	return s
}

// Handler exposes the engine for tests and embedding.
func (s *HttpServer) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HttpServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.log.Info().Msg("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *HttpServer) registerCoreRoutes() {
	s.engine.GET("/", func(c *gin.Context) {
		page, err := staticFS.ReadFile("static/index.html")
		if err != nil {
			HandleError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func (s *HttpServer) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.GET("/session", s.getSession)
	api.GET("/tier", s.getTier)
	api.GET("/models", s.getModels)
	api.POST("/credential", s.postCredential)
	api.POST("/plan", s.postPlan)
	api.POST("/plan/confirm", s.postConfirm)
	api.POST("/plan/cancel", s.postCancel)
	api.POST("/reset", s.postReset)
	api.DELETE("/error", s.deleteError)
	api.GET("/result/image", s.getResultImage)
}

// callContext bounds a remote call by the configured request timeout.
func (s *HttpServer) callContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
}
