package main

import (
	"context"
	"net/http"
	"os"

	webAdapter "stockmaster/internal/adapters/web"
	"stockmaster/internal/app"
	"stockmaster/internal/cache"
	"stockmaster/internal/core"
	"stockmaster/internal/db"
	"stockmaster/internal/logging"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()
	logging.Setup()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		logrus.Fatalf("database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logrus.Fatal("JWT_SECRET environment variable not set")
	}

	// The server runs without Redis; only dashboard caching is lost.
	rdb, err := cache.NewClient(ctx)
	if err != nil {
		logrus.Warnf("redis unavailable, dashboard caching disabled: %v", err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	userService := core.NewUserService(pool)
	productService := core.NewProductService(pool)
	warehouseService := core.NewWarehouseService(pool)
	stockService := core.NewStockService(pool)
	orderService := core.NewOrderService(pool, stockService)
	receiptService := core.NewReceiptService(pool, stockService)
	transferService := core.NewTransferService(pool, stockService)
	analyticsService := core.NewAnalyticsService(pool)

	svc := app.NewAppService(pool, userService, productService, warehouseService,
		stockService, orderService, receiptService, transferService,
		analyticsService, app.NewDashboardCache(rdb))

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	logrus.Infof("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logrus.Fatalf("server: %v", err)
	}
}
