// Package router 提供 HTTP 路由配置
package router

import (
	"praxis-advisor-api/internal/config"
	"praxis-advisor-api/internal/interfaces/http/dto"
	"praxis-advisor-api/internal/interfaces/http/handler"
	"praxis-advisor-api/internal/interfaces/http/middleware"
	"praxis-advisor-api/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	cfg    *config.Config

	charterHandler *handler.CharterHandler
	healthHandler  *handler.HealthHandler
	rateLimit      gin.HandlerFunc
}

// New 创建新的路由器
func New(
	cfg *config.Config,
	charterHandler *handler.CharterHandler,
	healthHandler *handler.HealthHandler,
	rateLimit gin.HandlerFunc,
) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:         gin.New(),
		cfg:            cfg,
		charterHandler: charterHandler,
		healthHandler:  healthHandler,
		rateLimit:      rateLimit,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	if r.rateLimit != nil {
		r.engine.Use(r.rateLimit)
	}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	// 未匹配方法走 NoMethod 而不是 NoRoute
	r.engine.HandleMethodNotAllowed = true

	r.engine.GET("/", r.healthHandler.Home)
	r.engine.GET("/live", r.healthHandler.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.engine.POST(handler.CharterPath, r.charterHandler.Generate)

	r.engine.NoRoute(func(c *gin.Context) {
		dto.FailWithError(c, errors.New(errors.CodeNotFound, "Endpoint not found. Use POST "+handler.CharterPath))
	})
	r.engine.NoMethod(func(c *gin.Context) {
		dto.FailWithError(c, errors.New(errors.CodeMethodNotAllowed, "Method not allowed. Use POST request."))
	})
}
