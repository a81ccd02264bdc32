// Package server 装配 HTTP 层：gin 路由、中间件链、后台清扫任务与优雅退出。
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/ceyewan/dworld/config"
	"github.com/ceyewan/dworld/pkg/health"
	"github.com/ceyewan/dworld/server/middleware"
	"github.com/ceyewan/dworld/world"
	"github.com/ceyewan/genesis/clog"
	"github.com/ceyewan/genesis/ratelimit"
	"github.com/gin-gonic/gin"
)

// Server dworld HTTP 服务包装器
type Server struct {
	config  *config.Config
	logger  clog.Logger
	world   *world.World
	handler *Handler
	probe   *health.Probe
	server  *http.Server

	sweepCancel context.CancelFunc
}

// New 创建服务：加载配置、初始化日志与世界核心
func New() (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := clog.New(&cfg.Log)
	if err != nil {
		return nil, err
	}

	w := world.New(
		world.WithLogger(logger),
		world.WithLivenessWindow(cfg.World.GetLivenessWindow()),
		world.WithMediaMaxBytes(cfg.World.GetMediaMaxBytes()),
	)

	return &Server{
		config:  cfg,
		logger:  logger,
		world:   w,
		handler: NewHandler(w, cfg.GetBaseURL(), logger),
		probe:   health.NewProbe(),
	}, nil
}

// Run 启动 HTTP 服务与媒体清扫任务
func (s *Server) Run() error {
	limiter, err := ratelimit.New(&ratelimit.Config{Driver: ratelimit.DriverStandalone}, ratelimit.WithLogger(s.logger))
	if err != nil {
		return err
	}

	router := gin.New()

	// CORS 必须在最前
	router.Use(middleware.CORS())
	router.Use(middleware.Recovery(s.logger))
	router.Use(middleware.Logger(s.logger))
	router.Use(middleware.NewRateLimitConfig(limiter, s.logger).GlobalIP(ratelimit.Limit{
		Rate:  s.config.RateLimit.GetRate(),
		Burst: s.config.RateLimit.GetBurst(),
	}))

	auth := middleware.NewAuthConfig(s.config.Auth.Token, s.logger)
	mediaLimiter := middleware.NewMediaLimiter(s.config.RateLimit.GetRate(), s.config.RateLimit.GetBurst())
	s.handler.RegisterRoutes(router, s.probe, auth.RequireAuth(), mediaLimiter.Middleware())

	// 媒体清扫：独立定时任务，从不内联在请求里
	sweepCtx, cancel := context.WithCancel(context.Background())
	s.sweepCancel = cancel
	sweeper := world.NewSweeper(s.world, s.config.World.GetSweepInterval(), s.logger)
	go sweeper.Start(sweepCtx)

	s.server = &http.Server{
		Addr:    s.config.GetHTTPAddr(),
		Handler: router,
	}

	s.probe.SetShutdown(false)
	s.probe.SetReady(true)
	s.logger.Info("http server started",
		clog.String("addr", s.config.GetHTTPAddr()),
		clog.String("base_url", s.config.GetBaseURL()))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server stopped unexpectedly", clog.Error(err))
		}
	}()
	return nil
}

// Close 优雅退出
func (s *Server) Close() error {
	s.probe.SetShutdown(true)
	s.probe.SetReady(false)
	if s.sweepCancel != nil {
		s.sweepCancel()
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.logger.Info("server closed")
	return nil
}
