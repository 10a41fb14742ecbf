package router

import (
	"time"

	_ "github.com/erp/manufacturing/docs"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/auth"
	"github.com/erp/manufacturing/internal/infrastructure/config"
	"github.com/erp/manufacturing/internal/infrastructure/logger"
	"github.com/erp/manufacturing/internal/interfaces/http/handler"
	"github.com/erp/manufacturing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers bundles every handler the API serves
type Handlers struct {
	Materials    *handler.MaterialHandler
	Products     *handler.ProductHandler
	Requests     *handler.ProductionRequestHandler
	Reservations *handler.ReservationHandler
	Adjustments  *handler.AdjustmentHandler
	Health       *handler.HealthHandler
}

// Options configures the middleware chain built by New
type Options struct {
	HTTP             config.HTTPConfig
	JWTService       *auth.JWTService
	IdempotencyStore shared.IdempotencyStore
	IdempotencyTTL   time.Duration
	Meter            metric.Meter // nil disables HTTP metrics
	Tracing          middleware.TracingConfig
	Profiling        middleware.ProfilingConfig
	Swagger          middleware.SwaggerConfig
	Logger           *zap.Logger
}

// API is the configured gin engine together with the resources it owns
type API struct {
	Engine  *gin.Engine
	limiter *middleware.RateLimiter
}

// Stop releases background resources held by the middleware
func (a *API) Stop() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
}

// New builds the engine. Engine-wide middleware runs in this order:
// Recovery, RequestID, request logging, tracing, metrics, CORS, security
// headers and the body limit. Routes under /api/v1 then authenticate the
// bearer token, enrich the span, apply profiling labels and rate limiting.
// The two POST endpoints that create records also honour Idempotency-Key.
// The generated API documentation is served under /swagger/ behind
// SwaggerProtection.
func New(opts Options, h Handlers) *API {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(opts.Tracing))
	engine.Use(middleware.HTTPMetrics(opts.Meter, log))
	engine.Use(middleware.CORSWithConfig(corsConfig(opts.HTTP)))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))

	engine.GET("/health", h.Health.Health)
	engine.GET("/ready", h.Health.Ready)

	authenticate := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: opts.JWTService,
		Logger:     log,
	})
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(opts.Swagger, authenticate),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	api := &API{Engine: engine}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(
		authenticate,
		middleware.SpanEnricher(),
		middleware.Profiling(opts.Profiling),
	)
	if opts.HTTP.RateLimitEnabled && opts.HTTP.RateLimitRequests > 0 {
		api.limiter = middleware.NewRateLimiter(opts.HTTP.RateLimitRequests, opts.HTTP.RateLimitWindow)
		r.Use(middleware.RateLimit(api.limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", opts.HTTP.RateLimitRequests),
			zap.Duration("window", opts.HTTP.RateLimitWindow),
		)
	}

	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Store: opts.IdempotencyStore,
		TTL:   opts.IdempotencyTTL,
	})

	for _, group := range domainGroups(h, idempotent) {
		r.Register(group)
	}
	r.Setup()

	return api
}

// domainGroups lays out the /api/v1 resources
func domainGroups(h Handlers, idempotent gin.HandlerFunc) []*DomainGroup {
	materials := NewDomainGroup("materials", "/materials").
		POST("", h.Materials.Create).
		GET("", h.Materials.List).
		GET("/:id", h.Materials.GetByID).
		PUT("/:id", h.Materials.Update).
		DELETE("/:id", h.Materials.Delete)

	products := NewDomainGroup("products", "/products").
		POST("", h.Products.Create).
		GET("", h.Products.List).
		GET("/:id", h.Products.GetByID).
		PUT("/:id", h.Products.Update).
		GET("/:id/bom", h.Products.ListBOM).
		PUT("/:id/bom/:material_id", h.Products.SetBOMLine).
		DELETE("/:id/bom/:material_id", h.Products.RemoveBOMLine).
		GET("/:id/atp", h.Reservations.ATP)

	requests := NewDomainGroup("production-requests", "/production-requests").
		POST("", idempotent, h.Requests.Create).
		GET("", h.Requests.List).
		POST("/preview", h.Requests.Preview).
		GET("/:id", h.Requests.Get).
		POST("/:id/start", h.Requests.Start).
		POST("/:id/complete", h.Requests.Complete).
		POST("/:id/cancel", h.Requests.Cancel)

	reservations := NewDomainGroup("reservations", "/reservations").
		POST("", idempotent, h.Reservations.Create).
		GET("", h.Reservations.List).
		DELETE("/:id", h.Reservations.Release).
		POST("/:id/fulfill", h.Reservations.Fulfill)

	orders := NewDomainGroup("orders", "/orders").
		DELETE("/:order_ref/reservations", h.Reservations.ReleaseByOrder)

	adjustments := NewDomainGroup("adjustments", "/adjustments").
		POST("", h.Adjustments.Create).
		GET("", h.Adjustments.List)

	return []*DomainGroup{materials, products, requests, reservations, orders, adjustments}
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.CORSAllowOrigins
	}
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}
