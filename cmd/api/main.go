package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-techmart-analytics/internal/config"
	"go-techmart-analytics/internal/handler"
	"go-techmart-analytics/internal/model"
	"go-techmart-analytics/internal/repository"
	"go-techmart-analytics/internal/service"
	"go-techmart-analytics/internal/ws"
	"go-techmart-analytics/pkg/database"
	zaplog "go-techmart-analytics/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()

	zlog := zaplog.New(cfg.LogLevel)
	defer zlog.Sync()

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (use a dedicated migration tool in production)
	db.AutoMigrate(
		&model.Supplier{},
		&model.Product{},
		&model.Customer{},
		&model.Transaction{},
		&model.Alert{},
	)

	// 3. Setup WebSocket Hub (alert feed)
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	ledgerRepo := repository.NewLedgerRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	productRepo := repository.NewProductRepo(db)
	alertRepo := repository.NewAlertRepo(db)

	fraudService := service.NewFraudService(ledgerRepo, cfg.Fraud, zlog)
	analyticsService := service.NewAnalyticsService(ledgerRepo, customerRepo, productRepo, cfg.Analytics, zlog)
	txService := service.NewTransactionService(db, ledgerRepo, customerRepo, productRepo, alertRepo, fraudService, wsHub, zlog)
	alertService := service.NewAlertService(alertRepo, analyticsService, cfg.Analytics.LowStockThreshold, wsHub, zlog)
	dashService := service.NewDashboardService(analyticsService, cfg.Analytics.LowStockThreshold)
	customerService := service.NewCustomerService(customerRepo, ledgerRepo)

	txHandler := handler.NewTransactionHandler(txService, analyticsService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	dashHandler := handler.NewDashboardHandler(dashService)
	alertHandler := handler.NewAlertHandler(alertService)
	customerHandler := handler.NewCustomerHandler(customerService)
	invHandler := handler.NewInventoryHandler(productRepo, analyticsService, cfg.Analytics.LowStockThreshold)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "TechMart Analytics v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 6. Routes
	api := app.Group("/api/v1")

	// Transaction Routes
	api.Post("/transactions", txHandler.Create)
	api.Get("/transactions", txHandler.List)
	api.Get("/transactions/suspicious", txHandler.Suspicious)
	api.Get("/transactions/:id", txHandler.Get)
	api.Put("/transactions/:id/status", txHandler.UpdateStatus)

	// Analytics Routes
	api.Get("/analytics/hourly-sales", analyticsHandler.HourlySales)
	api.Get("/analytics/sales/trends", analyticsHandler.SalesTrends)
	api.Get("/analytics/customer/behavior", analyticsHandler.CustomerBehavior)
	api.Get("/analytics/product/performance", analyticsHandler.ProductPerformance)
	api.Get("/analytics/geographic", analyticsHandler.Geographic)

	// Dashboard Routes
	api.Get("/dashboard/overview", dashHandler.Overview)

	// Inventory Routes
	api.Get("/inventory/products", invHandler.Products)
	api.Get("/inventory/low-stock", invHandler.LowStock)

	// Customer Routes
	api.Get("/customers", customerHandler.List)
	api.Get("/customers/:id", customerHandler.Get)

	// Alert Routes
	api.Get("/alerts", alertHandler.List)
	api.Post("/alerts", alertHandler.Create)
	api.Get("/alerts/system-status", alertHandler.SystemStatus)

	// WebSocket Route (live alert feed)
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
