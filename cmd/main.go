package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ledazaf/ms-order-api/internal/clients/redis"
	"github.com/ledazaf/ms-order-api/internal/data/aggregates"
	"github.com/ledazaf/ms-order-api/internal/data/repos"
	"github.com/ledazaf/ms-order-api/internal/db"
	apihttp "github.com/ledazaf/ms-order-api/internal/http"
	httpH "github.com/ledazaf/ms-order-api/internal/http/handlers"
	"github.com/ledazaf/ms-order-api/internal/observability"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
	"github.com/ledazaf/ms-order-api/internal/platform/envutil"
	"github.com/ledazaf/ms-order-api/internal/services"
)

func main() {
	// Logger
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Metrics
	var metrics *observability.Metrics
	if observability.Enabled() {
		metrics = observability.New()
		metrics.StartServer(context.Background(), log, envutil.String("METRICS_ADDR", ":9091"))
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Redis product cache (optional)
	productCache, err := redis.NewProductCache(log, metrics)
	if err != nil {
		log.Fatal("Redis init failed", "error", err)
	}
	defer productCache.Close()

	// Repos
	log.Info("Setting up Repos from main...")
	categoryRepo := repos.NewCategoryRepo(thePG, log)
	productRepo := repos.NewProductRepo(thePG, log)
	orderRepo := repos.NewOrderRepo(thePG, log)
	orderItemRepo := repos.NewOrderItemRepo(thePG, log)

	// Aggregates
	log.Info("Setting up Aggregates from main...")
	baseDeps := aggregates.BaseDeps{
		DB:    thePG,
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(metrics),
	}
	catalogAggregate := aggregates.NewCatalogAggregate(aggregates.CatalogAggregateDeps{
		Base:       baseDeps,
		Categories: categoryRepo,
		Products:   productRepo,
		Items:      orderItemRepo,
	})
	orderAggregate := aggregates.NewOrderAggregate(aggregates.OrderAggregateDeps{
		Base:     baseDeps,
		Orders:   orderRepo,
		Items:    orderItemRepo,
		Products: productRepo,
	})

	// Services
	log.Info("Setting up Services from main...")
	categoryService := services.NewCategoryService(thePG, log, categoryRepo, catalogAggregate)
	productService := services.NewProductService(thePG, log, productRepo, catalogAggregate, productCache)
	orderService := services.NewOrderService(thePG, log, orderRepo, orderItemRepo, orderAggregate, productCache)

	// Handlers
	log.Info("Setting up Handlers from main...")
	server := apihttp.NewServer(apihttp.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		CategoryHandler: httpH.NewCategoryHandler(log, categoryService),
		ProductHandler:  httpH.NewProductHandler(log, productService),
		OrderHandler:    httpH.NewOrderHandler(log, orderService),
		HealthHandler:   httpH.NewHealthHandler(),
	})

	addr := ":" + envutil.String("PORT", "8080")
	log.Info("Starting HTTP server", "addr", addr)
	if err := server.Run(addr); err != nil {
		log.Fatal("HTTP server failed", "error", err)
	}
}
