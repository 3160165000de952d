// Package webhookhttp serves the TradingView webhook and the connection
// management routes over gin.
package webhookhttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tvbridge/internal/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	addr              string
	router            *gin.Engine
	readHeaderTimeout time.Duration
	shutdownTimeout   time.Duration
}

type ServerConfig struct {
	Addr              string
	Executor          Executor
	Secret            SecretFunc
	Broker            BrokerInfo
	RateLimit         float64
	Burst             int
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Executor == nil {
		return nil, errors.New("webhook http server requires an executor")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger())
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	})

	NewRouter(cfg.Executor, cfg.Secret, cfg.Broker, newLimiter(cfg.RateLimit, cfg.Burst)).Register(router)

	return &Server{
		addr:              cfg.Addr,
		router:            router,
		readHeaderTimeout: cfg.ReadHeaderTimeout,
		shutdownTimeout:   cfg.ShutdownTimeout,
	}, nil
}

func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is cancelled or the listener fails. In-flight
// requests get the shutdown timeout to finish.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: s.readHeaderTimeout}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			logger.Warnf("HTTP server shutdown: %v", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
