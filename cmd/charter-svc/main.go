// Package main Charter 服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"praxis-advisor-api/internal/application/charter"
	"praxis-advisor-api/internal/config"
	"praxis-advisor-api/internal/infrastructure/llm"
	"praxis-advisor-api/internal/interfaces/http/handler"
	"praxis-advisor-api/internal/interfaces/http/middleware"
	"praxis-advisor-api/internal/interfaces/http/router"
	"praxis-advisor-api/pkg/logger"
	"praxis-advisor-api/pkg/tracer"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting charter-svc",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	if p, ok := cfg.LLM.Providers[cfg.LLM.DefaultProvider]; !ok || p.APIKey == "" {
		log.Warn("api key not set for default llm provider; generation requests will fail",
			"provider", cfg.LLM.DefaultProvider,
		)
	}

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// 组装依赖：LLM 工厂 -> 章程生成服务 -> 处理器 -> 路由
	factory := llm.NewEinoFactory(cfg)
	generator := charter.NewGenerator(cfg, factory)
	charterHandler := handler.NewCharterHandler(generator)
	healthHandler := handler.NewHealthHandler(cfg)

	rateLimit := buildRateLimit(ctx, cfg)

	r := router.New(cfg, charterHandler, healthHandler, rateLimit)

	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("http server starting", "addr", addr, "endpoint", handler.CharterPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}

// buildRateLimit 按配置构建限流中间件；未启用或 Redis 不可用时为空
func buildRateLimit(ctx context.Context, cfg *config.Config) gin.HandlerFunc {
	if !cfg.Security.RateLimit.Enabled {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
		Password:     cfg.Cache.Redis.Password,
		DB:           cfg.Cache.Redis.DB,
		PoolSize:     cfg.Cache.Redis.PoolSize,
		DialTimeout:  cfg.Cache.Redis.DialTimeout,
		ReadTimeout:  cfg.Cache.Redis.ReadTimeout,
		WriteTimeout: cfg.Cache.Redis.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn(ctx, "redis unavailable, rate limiting disabled", "error", err.Error())
		return nil
	}

	return middleware.NewRateLimitMiddleware(middleware.RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: cfg.Security.RateLimit.RequestsPerSecond,
		KeyPrefix:         "praxis:ratelimit",
	}, rdb)
}
