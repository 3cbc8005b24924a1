package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/config"
	"github.com/yeremiapane/billiard-pos/database"
	"github.com/yeremiapane/billiard-pos/floor"
	"github.com/yeremiapane/billiard-pos/queue"
	"github.com/yeremiapane/billiard-pos/router"
	"github.com/yeremiapane/billiard-pos/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLogger(cfg.LogLevel)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	if err := database.Seed(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed database: %v", err)
	}

	rdb := config.NewRedisClient(cfg)
	if rdb == nil {
		utils.InfoLogger.Println("Catalog cache disabled")
	}

	var publisher queue.Publisher = queue.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := queue.DialPublisher(cfg.RabbitMQURL, queue.Queues...)
		if err != nil {
			utils.ErrorLogger.Errorf("Event publishing disabled: %v", err)
		} else {
			publisher = p
		}
	}

	r := router.SetupRouter(router.Deps{
		DB:        db,
		Config:    cfg,
		Hub:       floor.NewHub(),
		Redis:     rdb,
		Publisher: publisher,
	})
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		utils.ErrorLogger.Errorf("Set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}

	if err := publisher.Close(); err != nil {
		utils.ErrorLogger.Errorf("Close publisher: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	utils.InfoLogger.Println("Server exited")
}
