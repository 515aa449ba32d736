// Command uptimed runs the uptime monitoring service: probe scheduler,
// retention GC, and REST query API in a single process.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/last-emo-boy/uptime-core/internal/api"
	"github.com/last-emo-boy/uptime-core/internal/auth"
	"github.com/last-emo-boy/uptime-core/internal/config"
	"github.com/last-emo-boy/uptime-core/internal/retention"
	"github.com/last-emo-boy/uptime-core/internal/scheduler"
	"github.com/last-emo-boy/uptime-core/internal/store"
)

func main() {
	log.Println("🔍 Starting uptimed...")

	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}
	log.Printf("📋 Environment: %s", environment)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	defer db.Close()

	var authSvc *auth.Auth
	if cfg.AuthEnabled {
		authSvc, err = auth.New(cfg.AuthUsername, cfg.AuthPassword, cfg.SessionSecretKey, cfg.SessionMaxAge)
		if err != nil {
			log.Fatalf("❌ Failed to initialize auth service: %v", err)
		}
	}

	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := api.New(db, authSvc, cfg)

	httpServer := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.AppHost, cfg.AppPort),
		Handler:        srv.Engine(),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	sched := scheduler.New(db, cfg.Concurrency)
	gc := retention.New(db.Checks(), cfg.RetentionDays)

	wg.Add(2)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		gc.Run(ctx)
	}()

	go func() {
		log.Printf("🚀 uptimed API server starting on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down uptimed...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	cancel()
	wg.Wait()

	log.Println("✅ uptimed shutdown complete")
}
