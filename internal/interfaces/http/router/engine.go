package router

import (
	"net/http"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by the engine
type Handlers struct {
	Products  *handler.ProductHandler
	Customers *handler.PartyHandler
	Suppliers *handler.PartyHandler
	Ledger    *handler.LedgerHandler
	Finance   *handler.FinanceHandler
	Reports   *handler.ReportHandler
	System    *handler.SystemHandler
}

// EngineConfig holds everything the middleware stack needs
type EngineConfig struct {
	Logger  *zap.Logger
	HTTP    config.HTTPConfig
	Swagger config.SwaggerConfig
	Tracing middleware.TracingConfig

	// Metrics records HTTP server metrics when set
	Metrics gin.HandlerFunc
	// RateLimiter is applied to every request when set
	RateLimiter *middleware.RateLimiter
	// Tokens validates bearer tokens. When nil, identities are read from
	// the X-User-ID and X-Tenant-ID headers.
	Tokens middleware.TokenValidator
	// Tenants resolves the default tenant of users whose token names none
	Tenants middleware.TenantResolver
}

// NewEngine builds the gin engine with the middleware stack in order:
// request ID, recovery, request log, tracing, metrics, secure headers, CORS,
// body limit, rate limit. API routes add authentication and tenant binding.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log, internalError))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Tracing), middleware.SpanEnricher())
	if cfg.Metrics != nil {
		engine.Use(cfg.Metrics)
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders: []string{
			middleware.RequestIDHeader,
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"Retry-After",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(cfg.Swagger.AllowedIPs),
			ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	identity := middleware.HeaderIdentity()
	if cfg.Tokens != nil {
		identity = middleware.JWTAuth(cfg.Tokens)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(identity, middleware.TenantBinding(cfg.Tenants))
	for _, group := range APIGroups(h) {
		r.Register(group)
	}
	r.Setup()

	if h.System != nil {
		engine.GET("/api/v1/system/info", h.System.GetSystemInfo)
	}

	return engine
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		logger.RequestID(c.Request.Context()),
	))
}
