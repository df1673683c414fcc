package main

import (
	"context"   // context package is needed for Redis operations
	"errors"    // Server close detection
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Graceful shutdown
	"syscall"   // Termination signals
	"time"      // Shutdown deadline

	"budget_ledger/internal/api"     // Router and handlers
	"budget_ledger/internal/config"  // Custom package for configuration
	"budget_ledger/internal/db"      // Database connection
	"budget_ledger/internal/media"   // Profile thumbnails
	"budget_ledger/internal/notify"  // Reset notifications
	"budget_ledger/internal/service" // Auth and ledger services
	"budget_ledger/internal/session" // Live sessions
	"budget_ledger/internal/store"   // Persistence
	"budget_ledger/internal/utils"   // Hashing and tokens

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{}) // Machine readable in production
	}

	// Connect to the database and bring the schema up to date
	conn, err := db.Open(cfg.DBDriver, cfg.DSN(), !cfg.IsProd)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.AutoMigrate(conn); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	defer redisClient.Close()

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Reset links go to RabbitMQ when configured, otherwise only their dispatch is logged
	var notifier notify.Notifier = notify.NewLogNotifier(logrus.StandardLogger())
	if cfg.AMQPURL != "" {
		amqpNotifier, err := notify.DialAMQP(cfg.AMQPURL, cfg.ResetQueue)
		if err != nil {
			logrus.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
	}

	users := store.NewUserStore(conn)     // User Store
	entries := store.NewLedgerStore(conn) // Ledger Store
	auth, err := service.NewAuthService(service.AuthConfig{
		Users:        users,
		Sessions:     session.NewStore(redisClient),
		Hasher:       utils.NewHasher(cfg.BcryptCost),
		Tokens:       utils.NewTokenService(cfg.SecretKey, time.Now),
		Notifier:     notifier,
		Photos:       media.NewThumbnailer(cfg.UploadDir),
		Cache:        redisClient,
		Secret:       cfg.SecretKey,
		ResetURLBase: cfg.ResetURLBase,
	})
	if err != nil {
		logrus.Fatalf("failed to build auth service: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := api.NewRouter(&api.App{
		Auth:         auth,
		Ledger:       service.NewLedgerService(entries, redisClient),
		Users:        users,
		Entries:      entries,
		Redis:        redisClient,
		UploadDir:    cfg.UploadDir,
		SecureCookie: cfg.IsProd,
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{Addr: ":" + cfg.AppPort, Handler: r}
	go func() {
		logrus.Info("Server running on " + cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	logrus.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("shutdown: %v", err)
	}
}
