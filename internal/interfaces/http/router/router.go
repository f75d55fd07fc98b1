// Package router 提供 HTTP 路由配置
package router

import (
	"city-events-api/internal/config"
	"city-events-api/internal/domain/repository"
	"city-events-api/internal/interfaces/http/handler"
	"city-events-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由依赖的处理器集合
type Handlers struct {
	Health     *handler.HealthHandler
	Lookup     *handler.LookupHandler
	Ingestion  *handler.IngestionHandler
	Deployment *handler.DeploymentHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	grants   repository.GrantRepository
	limiter  middleware.RateLimiter
}

// New 创建新的路由器
func New(cfg *config.Config, handlers Handlers, grants repository.GrantRepository, limiter middleware.RateLimiter) *Router {
	// 设置 Gin 模式
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine:   engine,
		cfg:      cfg,
		handlers: handlers,
		grants:   grants,
		limiter:  limiter,
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
	// 基础中间件
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	// CORS 中间件
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	// 追踪中间件
	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	// 指标中间件
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	// 签名认证中间件
	r.engine.Use(middleware.SignatureAuth(middleware.SignatureAuthConfig{
		Enabled:   r.cfg.Security.Signing.Enabled,
		ClockSkew: r.cfg.Security.Signing.ClockSkew,
		SkipPaths: r.cfg.Security.Signing.SkipPaths,
	}, r.grants))

	// 限流中间件
	r.engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: r.cfg.Security.RateLimit.RequestsPerSecond,
		KeyPrefix:         r.cfg.Security.RateLimit.KeyPrefix,
	}, r.limiter))
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	// 系统端点
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// API v1 路由组
	v1 := r.engine.Group("/v1")
	{
		// 活动检索
		events := v1.Group("/events")
		{
			events.POST("/lookup", r.handlers.Lookup.Lookup)
		}

		// 摄取任务
		ingestion := v1.Group("/ingestion")
		{
			ingestion.POST("/jobs", r.handlers.Ingestion.CreateJob)
			ingestion.GET("/jobs/:jid", r.handlers.Ingestion.GetJob)
		}

		// 数据源状态
		datasources := v1.Group("/datasources")
		{
			datasources.GET("/:name/sync", r.handlers.Ingestion.GetSyncState)
			datasources.GET("/:name/jobs", r.handlers.Ingestion.ListJobs)
		}

		// 部署栈状态
		deployments := v1.Group("/deployments")
		{
			deployments.GET("/:stack", r.handlers.Deployment.GetStack)
		}
	}
}
