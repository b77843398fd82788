package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "chatrelay/docs"
	"chatrelay/internal/ai"
	"chatrelay/internal/config"
	"chatrelay/internal/handler"
	"chatrelay/internal/pkg/cache"
	"chatrelay/internal/server/middleware"
	"chatrelay/internal/service"
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	usage  *cache.UsageStore
}

// New 创建服务器实例
func New(cfg *config.Config) (*Server, error) {
	upstream, err := ai.NewUpstream(context.Background(), &cfg.AI)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("provider", cfg.AI.Provider).
		Str("default_model", cfg.AI.DefaultModel).
		Msg("initialized upstream")

	// 初始化 Redis (可选)
	var usageStore *cache.UsageStore
	if cfg.Redis.Addr != "" {
		store, err := cache.NewUsageStore(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, usage ledger disabled")
		} else {
			usageStore = store
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	srv := NewWithUpstream(cfg, upstream, usageStore)
	return srv, nil
}

// NewWithUpstream 使用给定上游创建服务器，usageStore 可为 nil
func NewWithUpstream(cfg *config.Config, upstream ai.Upstream, usageStore *cache.UsageStore) *Server {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &Server{
		cfg:    cfg,
		engine: gin.New(),
		usage:  usageStore,
	}

	// 避免 typed nil 被当作已启用
	var usage service.UsageStore
	if usageStore != nil {
		usage = usageStore
	}
	srv.setupRoutes(service.NewChatService(upstream, &cfg.AI, usage))

	return srv
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(chatSvc *service.ChatService) {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查
	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	chatHandler := handler.NewChatHandler(chatSvc)
	api := s.engine.Group("/api")
	{
		api.POST("/chat", chatHandler.Chat)
		api.POST("/chat/stream", chatHandler.ChatStream)
		api.GET("/models", chatHandler.Models)
		api.GET("/usage", chatHandler.Usage)
	}
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		err := srv.Shutdown(context.Background())
		if s.usage != nil {
			if cerr := s.usage.Close(); cerr != nil {
				log.Error().Err(cerr).Msg("failed to close Redis connection")
			}
		}
		return err
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
