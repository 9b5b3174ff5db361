package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted under /api.
type Handlers struct {
	Catalog  *handlers.CatalogHandler
	Prices   *handlers.PriceHandler
	Stock    *handlers.StockHandler
	Dispatch *handlers.DispatchHandler
	Summary  *handlers.SummaryHandler
	// Webhook is mounted only when inbound WhatsApp commands are enabled.
	Webhook  *handlers.WebhookHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/products", h.Catalog.Products)
		api.GET("/routes", h.Catalog.Routes)
		api.GET("/vehicles", h.Catalog.Vehicles)
		api.POST("/init-db", h.Catalog.InitDB)

		api.GET("/prices", h.Prices.Current)
		api.POST("/prices", h.Prices.Set)
		api.GET("/prices/history", h.Prices.History)

		api.GET("/stock-log", h.Stock.Day)
		api.POST("/stock-log", h.Stock.Upsert)
		api.POST("/vehicle-sales", h.Stock.VehicleSale)

		api.GET("/dispatch-log", h.Dispatch.Log)
		api.POST("/dispatch-log", h.Dispatch.Post)
		api.POST("/dispatch-log/reconcile", h.Dispatch.Reconcile)

		api.GET("/summary", h.Summary.Day)
		api.GET("/summary/export", h.Summary.Export)
	}

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
