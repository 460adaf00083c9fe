package router

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/server/handlers"
)

// Handlers groups the HTTP adapters. Webhook is optional.
type Handlers struct {
	Orders  *handlers.OrderHandler
	Forms   *handlers.FormHandler
	Media   *handlers.MediaHandler
	Webhook *handlers.WebhookHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, allowedOrigins []string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(corsMiddleware(allowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
	}

	api := r.Group("/api")

	api.GET("/dates", h.Forms.Dates)
	api.POST("/forms", h.Forms.Create)
	api.PUT("/forms/:name", h.Forms.Update)
	api.DELETE("/forms/:name", h.Forms.Delete)
	api.POST("/forms/:name/products", h.Forms.AddProduct)
	api.PUT("/forms_visibility", h.Forms.Visibility)
	api.GET("/products/:date", h.Forms.Products)
	api.PUT("/update_inventory", h.Forms.Inventory)

	api.POST("/orders", h.Orders.Create)
	api.GET("/orders", h.Orders.List)
	api.GET("/orders/:id", h.Orders.Get)
	api.PUT("/orders/:id", h.Orders.Update)
	api.DELETE("/orders/:id", h.Orders.Delete)
	api.POST("/orders/:id/move", h.Orders.Move)

	api.POST("/upload_image", h.Media.UploadImage)
	api.GET("/images/:filename", h.Media.Image)
	api.GET("/reports/export", h.Media.Exported)
	api.POST("/reports/export", h.Media.Export)
	api.GET("/reports/:date", h.Media.Report)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
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
