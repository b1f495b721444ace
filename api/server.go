package api

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/seeyarh/radar/docs"
	"github.com/seeyarh/radar/backend/logging"
	"github.com/seeyarh/radar/scanner"
)

// Config holds the knobs Run needs to start the API server.
type Config struct {
	ProbesFile        string
	ListenAddr        string
	RedisAddr         string
	APIKey            string
	MaxConcurrentScans int
	NumWorkers        int
	RateLimitPerMin   int64
}

// Run initializes dependencies and starts the API server. It loads a
// .env file if present, so REDIS_ADDR/LISTEN_ADDR/RADAR_API_KEY can be
// supplied without exporting them into the shell.
func Run(cfg Config) error {
	_ = godotenv.Load()
	logger := logging.Logger()

	if cfg.RedisAddr == "" {
		cfg.RedisAddr = getenv("REDIS_ADDR", "localhost:6379")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = getenv("LISTEN_ADDR", ":8080")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("RADAR_API_KEY")
	}
	if cfg.MaxConcurrentScans <= 0 {
		cfg.MaxConcurrentScans = scanner.DefaultMaxConcurrentScans
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 5
	}
	if cfg.RateLimitPerMin <= 0 {
		cfg.RateLimitPerMin = 600
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	store := NewRedisStore(redisClient)

	catalog, err := scanner.ReadServiceProbesFile(cfg.ProbesFile, logger)
	if err != nil {
		return fmt.Errorf("failed to load probe catalog: %w", err)
	}
	logger.Info("loaded probe catalog", "tcp_probes", len(catalog.TCPProbes), "udp_probes", len(catalog.UDPProbes))

	tlsConfig := scanner.NewTLSConnectorConfig()
	StartWorkers(store, catalog, tlsConfig, cfg.MaxConcurrentScans, cfg.NumWorkers, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware(logger))
	router.Use(SecurityHeadersMiddleware())
	router.Use(RateLimitMiddleware(redisClient, cfg.RateLimitPerMin, time.Minute, logger))
	if cfg.APIKey != "" {
		router.Use(AuthMiddleware(cfg.APIKey, logger))
	} else {
		logger.Warn("RADAR_API_KEY not set, API authentication is disabled")
	}

	server := NewServer(store)
	server.RegisterRoutes(router)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	logger.Info("starting radar API server", "addr", cfg.ListenAddr)
	return router.Run(cfg.ListenAddr)
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
