package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/platoo/order-service/config"
	"github.com/platoo/order-service/database"
	"github.com/platoo/order-service/kds"
	"github.com/platoo/order-service/router"
	"github.com/platoo/order-service/services"
	"github.com/platoo/order-service/utils"
	"gorm.io/gorm"
)

func main() {
	mode := flag.String("mode", "", "service to run: orders or menu (overrides APP_MODE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load configuration: %v", err)
	}
	if *mode != "" {
		cfg.Mode = *mode
		if err := cfg.Validate(); err != nil {
			utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
		}
	}

	utils.ConfigureLogger(cfg.LogFormat)
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		utils.ErrorLogger.Error("JWT_SECRET is not set, authenticated routes will reject every request")
	}

	shutdownTracing, err := utils.InitTracing(cfg.TracingEnabled)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to initialise tracing: %v", err)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db, cfg.Mode); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	handler, err := buildHandler(db, cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to build %s service: %v", cfg.Mode, err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("%s service listening on port %s", cfg.Mode, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		utils.ErrorLogger.Errorf("Tracing shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func buildHandler(db *gorm.DB, cfg *config.Config) (http.Handler, error) {
	if cfg.Mode == config.ModeMenu {
		return router.SetupMenuRouter(db, *cfg), nil
	}

	policy, err := services.PolicyByName(cfg.ResolutionPolicy)
	if err != nil {
		return nil, err
	}

	hub := kds.NewHub()
	catalog := services.NewCatalogClient(cfg.CatalogBaseURL, nil, cfg.CatalogLookupTimeout)
	orders := services.NewOrderService(db, catalog, hub, services.OrderServiceConfig{
		LookupTimeout:  cfg.CatalogLookupTimeout,
		MaxConcurrency: cfg.CatalogMaxConcurrency,
		Policy:         policy,
	})

	return router.SetupRouter(router.OrderDeps{
		DB:     db,
		Orders: orders,
		Hub:    hub,
		Config: *cfg,
	}), nil
}
