package main // Entry point package

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/privacy2run/internal/config"
	"github.com/iliyamo/privacy2run/internal/database"
	"github.com/iliyamo/privacy2run/internal/handler"
	"github.com/iliyamo/privacy2run/internal/middleware"
	"github.com/iliyamo/privacy2run/internal/processor"
	"github.com/iliyamo/privacy2run/internal/queue"
	"github.com/iliyamo/privacy2run/internal/registry"
	"github.com/iliyamo/privacy2run/internal/repository"
	"github.com/iliyamo/privacy2run/internal/router"
	"github.com/iliyamo/privacy2run/internal/scheduler"
	queue_publisher "github.com/iliyamo/privacy2run/internal/service"
	"github.com/iliyamo/privacy2run/internal/strava"
)

const indexFile = "web/index.html"

func main() {
	_ = godotenv.Load() // best-effort; real deployments export variables directly

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	codes := repository.NewAuthCodeRepo(db)
	reg := registry.New()
	client := strava.NewClient(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURL)

	proc := processor.New(client)
	proc.Publish = queue_publisher.PublishActivityRemediated

	sched := scheduler.New(cfg.BaseInterval, reg, codes, proc.ProcessUser)
	defer sched.Stop()
	sched.Restart(context.Background()) // hydrates from the store when records exist

	// Audit consumer runs for the process lifetime and reconnects on its own.
	go func() {
		if err := queue.StartRemediationConsumer(); err != nil {
			log.Printf("remediation-consumer: %v", err)
		}
	}()

	// Local cache for static content, read once at startup.
	index, err := os.ReadFile(indexFile)
	if err != nil {
		log.Fatalf("read %s: %v", indexFile, err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.Use(limiter)
	app := handler.NewAppHandler(cfg, codes, reg, sched, client, index)
	router.RegisterRoutes(e, app, cache)

	addr := cfg.IP + ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err)
	}
}
