package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"bidtrack/config"
	"bidtrack/internal/api/handlers"
	"bidtrack/internal/api/middleware"
	"bidtrack/internal/api/routes"
	"bidtrack/internal/cache"
	"bidtrack/internal/logger"
	pgrepo "bidtrack/internal/repositories/postgres"
	"bidtrack/internal/services"
	"bidtrack/web"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	db, err := config.NewPostgres()
	if err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	if err := pgrepo.Migrate(db); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Info("database ready")

	var statsCache cache.Cache = cache.Noop{}
	redisClient, err := config.NewRedis()
	if err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		statsCache = cache.NewRedisCache(redisClient)
		log.Info("redis cache enabled")
	} else {
		log.Warn("REDIS_ADDR not set, stats caching disabled")
	}

	bidRepo := pgrepo.NewBidRepo(db)
	bidService := services.NewBidService(bidRepo, statsCache)
	exportService := services.NewExportService(bidRepo)
	bidHandler := handlers.NewBidHandler(bidService, exportService)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  []string{frontend},
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type"},
			ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
			MaxAge:        12 * time.Hour,
		}))
	}

	if rps := envInt("RATE_LIMIT_RPS", 0); rps > 0 {
		burst := envInt("RATE_LIMIT_BURST", rps*2)
		r.Use(middleware.RateLimit(rate.NewLimiter(rate.Limit(rps), burst)))
		log.Infof("rate limiting enabled: %d req/sec, burst %d", rps, burst)
	}

	routes.RegisterRoutes(r, routes.Deps{
		Bids:  bidHandler,
		WebFS: web.Static(),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Info("server exited")
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
