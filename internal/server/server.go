package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/seedctl/internal/auth"
	"github.com/danmuck/seedctl/internal/dispatch"
	"github.com/danmuck/seedctl/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	version         = "0.1.0"
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	ID         string
	Addr       string
	Appeared   time.Time
	Dispatcher *dispatch.Dispatcher
	// Auth guards the tool routes when set; health and metrics stay open.
	Auth auth.Validator

	router *gin.Engine
}

func Appear(id, addr string, corsOrigins []string, d *dispatch.Dispatcher) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(id))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	if d == nil {
		d = dispatch.New(dispatch.Options{})
	}
	return &Server{
		ID:         id,
		Addr:       addr,
		Appeared:   time.Now(),
		Dispatcher: d,
		router:     r,
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": version,
		})
	})

	tools := s.router.Group("/", s.requireToken())
	tools.GET("/tools", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tools": s.Dispatcher.Tools()})
	})

	tools.GET("/adapters", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"adapters": s.Dispatcher.Registry().ListMetadata()})
	})

	tools.POST("/tools/:name", func(c *gin.Context) {
		name := c.Param("name")
		raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		out, err := s.Dispatcher.Dispatch(c.Request.Context(), name, raw)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, dispatch.ErrUnknownTool):
				status = http.StatusNotFound
			case errors.Is(err, dispatch.ErrInvalidArguments):
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, out)
	})
}

// Serve runs until ctx ends, then drains in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	s.RegisterRoutes()
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Str("id", s.ID).Msg("http: shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.Auth == nil {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrUnauthorized.Error()})
			return
		}
		if err := s.Auth.Validate(strings.TrimSpace(token)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
