package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/nvictorme/nikola-sub002/internal/infrastructure/logger"
	"github.com/nvictorme/nikola-sub002/internal/interfaces/http/dto"
	"github.com/nvictorme/nikola-sub002/internal/interfaces/http/handler"
	"github.com/nvictorme/nikola-sub002/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	Factors  *handler.FactorConfigHandler
	Quotes   *handler.QuoteHandler
	Orders   *handler.OrderHandler
	Products *handler.ProductPricingHandler
	System   *handler.SystemHandler
}

// EngineConfig configures the middleware chain
type EngineConfig struct {
	ServiceName    string
	MaxBodySize    int64
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	TracingEnabled bool
	Meter          metric.Meter // nil disables HTTP metrics
	Profiling      bool
	TrustedProxies []string
}

// NewEngine builds the gin engine: middleware chain, /health probes and
// the /api/v1 routes
func NewEngine(cfg EngineConfig, h Handlers, log *zap.Logger) *gin.Engine {
	engine := gin.New()
	_ = engine.SetTrustedProxies(cfg.TrustedProxies)

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.TracingWithConfig(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.TracingEnabled}),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(cfg.Meter, log),
		middleware.Profiling(middleware.ProfilingConfig{
			Enabled:   cfg.Profiling,
			SkipPaths: middleware.DefaultProfilingConfig().SkipPaths,
		}),
		middleware.SecureWithConfig(cfg.Security),
		middleware.CORSWithConfig(cfg.CORS),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	if h.System != nil {
		engine.GET("/health", h.System.Health)
		engine.GET("/health/ready", h.System.Health)
		engine.GET("/health/live", h.System.Live)
	}

	r := NewRouter(engine)
	for _, g := range apiGroups(h) {
		r.Register(g)
	}
	r.Setup()
	return engine
}

func apiGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup

	if h.Factors != nil {
		groups = append(groups, NewDomainGroup("config", "/config").
			GET("/factores", h.Factors.Get).
			PUT("/factores", h.Factors.Update))
	}
	if h.Quotes != nil {
		groups = append(groups, NewDomainGroup("pricing", "/pricing").
			POST("/quote", h.Quotes.Quote))
	}
	if h.Orders != nil {
		groups = append(groups, NewDomainGroup("orders", "/orders").
			POST("", h.Orders.Place).
			GET("/:id", h.Orders.Get).
			POST("/:id/cancel", h.Orders.Cancel))
	}
	if h.Products != nil {
		groups = append(groups,
			NewDomainGroup("products", "/products").
				PUT("/:id/pricing", h.Products.UpdatePricing).
				GET("/:id/price-history", h.Products.History),
			NewDomainGroup("price-history", "/price-history").
				DELETE("/:id", h.Products.DeleteHistoryEntry),
		)
	}
	return groups
}
