package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"compress-bot/pkg/config"
	"compress-bot/pkg/logger"
)

// Server 状态HTTP服务，实现task.BackgroundTask
type Server struct {
	cfg    *config.Config
	router *Router
	srv    *http.Server
}

// NewServer 创建状态HTTP服务
func NewServer(cfg *config.Config, router *Router) *Server {
	return &Server{cfg: cfg, router: router}
}

func (s *Server) Name() string {
	return "status-server"
}

// Start 启动HTTP服务
func (s *Server) Start(_ context.Context) error {
	if s.cfg.Server.Mode != "" {
		gin.SetMode(s.cfg.Server.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	s.router.SetupMiddleware(engine)
	s.router.SetupRoutes(engine)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  pickTimeout(s.cfg.Server.ReadTimeout, 10*time.Second),
		WriteTimeout: pickTimeout(s.cfg.Server.WriteTimeout, 30*time.Second),
	}

	go func() {
		logger.Infof("Status server listening on %s", addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("status server error: %v", err)
		}
	}()

	return nil
}

// Stop 优雅停止HTTP服务
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func pickTimeout(v, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}
