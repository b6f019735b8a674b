package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/ledazaf/ms-order-api/internal/http/handlers"
	httpMW "github.com/ledazaf/ms-order-api/internal/http/middleware"
	"github.com/ledazaf/ms-order-api/internal/observability"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	CategoryHandler *httpH.CategoryHandler
	ProductHandler  *httpH.ProductHandler
	OrderHandler    *httpH.OrderHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.RequestID())
	r.Use(httpMW.CORS())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLog(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.CategoryHandler != nil {
			api.POST("/categories", cfg.CategoryHandler.Create)
			api.GET("/categories", cfg.CategoryHandler.List)
			api.GET("/categories/:id", cfg.CategoryHandler.Get)
			api.PUT("/categories/:id", cfg.CategoryHandler.Update)
			api.DELETE("/categories/:id", cfg.CategoryHandler.Delete)
		}

		if cfg.ProductHandler != nil {
			api.POST("/products", cfg.ProductHandler.Create)
			api.GET("/products", cfg.ProductHandler.List)
			api.GET("/products/:id", cfg.ProductHandler.Get)
			api.PUT("/products/:id", cfg.ProductHandler.Update)
			api.DELETE("/products/:id", cfg.ProductHandler.Delete)
		}

		if cfg.OrderHandler != nil {
			api.POST("/orders", cfg.OrderHandler.Create)
			api.GET("/orders", cfg.OrderHandler.List)
			api.GET("/orders/:id", cfg.OrderHandler.Get)
			api.POST("/orders/:id/items", cfg.OrderHandler.AddItem)
			api.DELETE("/orders/:id/items/:itemId", cfg.OrderHandler.RemoveItem)
			api.POST("/orders/:id/status", cfg.OrderHandler.TransitionStatus)
		}
	}

	return r
}
