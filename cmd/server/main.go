package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"table_ordering/internal/config"
	"table_ordering/internal/database"
	"table_ordering/internal/handlers"
	"table_ordering/internal/middleware"
	"table_ordering/internal/migrations"
	"table_ordering/internal/redis"
	"table_ordering/internal/repository"
	"table_ordering/internal/services"
	"table_ordering/internal/statemachine"
	"table_ordering/pkg/qrcode"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logLevel := logger.Warn
	if cfg.GinMode == gin.DebugMode {
		logLevel = logger.Info
	}

	// Initialize database
	db, err := database.Initialize(cfg.DBDriver, cfg.DatabaseURL, logLevel)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := migrations.RunMigrations(db, cfg.SeedSampleData); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	policy, err := statemachine.LoadPolicy(cfg.StatusPolicyFile)
	if err != nil {
		log.Fatal("Failed to load status policy:", err)
	}
	log.Printf("Order status policy: %s", policy.Mode())

	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		log.Fatal("Invalid REPORT_TIMEZONE:", err)
	}

	var qrRenderer services.QRRenderer = qrcode.NewLocalRenderer(0)
	if cfg.QRServiceURL != "" {
		qrRenderer = qrcode.NewClient(cfg.QRServiceURL)
		log.Printf("Rendering QR images via %s", cfg.QRServiceURL)
	}

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	reportRepo := repository.NewReportRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	catalogService := services.NewCatalogService(catalogRepo)
	cartService := services.NewCartService(redisClient, catalogRepo, time.Duration(cfg.CartTTL)*time.Second)
	orderService := services.NewOrderService(db, orderRepo, orderItemRepo, catalogRepo, policy)
	checkoutService := services.NewCheckoutService(catalogService, cartService, orderService)
	reportService := services.NewReportService(db, orderRepo, reportRepo, catalogRepo, loc)
	qrService := services.NewQRService(cfg.BaseURL, qrRenderer, catalogService)
	userService := services.NewUserService(userRepo)
	tokens := middleware.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.TokenTTL)*time.Second)

	// Initialize handlers
	menuHandler := handlers.NewMenuHandler(catalogService, cartService, checkoutService, orderService, qrService, cfg.CartTTL)
	staffHandler := handlers.NewStaffHandler(orderService, catalogService)
	adminHandler := handlers.NewAdminHandler(catalogService, reportService, qrService, userService)
	authHandler := handlers.NewAuthHandler(userService, tokens)
	healthHandler := handlers.NewHealthHandler(db, redisClient)

	if err := handlers.RegisterValidators(); err != nil {
		log.Fatal("Failed to register validators:", err)
	}

	// Setup routes
	gin.SetMode(cfg.GinMode)
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.GET("/health", healthHandler.Health)
	handlers.SetupRoutes(router, menuHandler, staffHandler, adminHandler, authHandler, tokens, userService)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.ReportInterval > 0 {
		g.Go(func() error {
			return reportService.RunScheduler(ctx, time.Duration(cfg.ReportInterval)*time.Second)
		})
	} else {
		log.Println("REPORT_INTERVAL is 0, report scheduler disabled")
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("Server error:", err)
	}
	log.Println("Server stopped")
}
