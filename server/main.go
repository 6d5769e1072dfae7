package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"instaclone/api/routes"
	"instaclone/internal/auth"
	"instaclone/internal/notifications"
	"instaclone/internal/shared/config"
	"instaclone/internal/shared/database"
	"instaclone/pkg/logger"
	"instaclone/pkg/ratelimit"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		appLogger.Info("No .env file found, using system environment variables")
	}

	// Config is loaded exactly once; everything downstream receives it by
	// reference.
	cfg := config.Load()

	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect to databases", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	codec, err := auth.NewCodec(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.TokenIssuer(), cfg.TokenAudience())
	if err != nil {
		appLogger.Error("failed to build token codec", slog.Any("error", err))
		os.Exit(1)
	}

	// Email delivery path: SMTP relay if configured, mock otherwise; with
	// Kafka enabled, mail is queued and drained by the consumer.
	var emailService notifications.EmailService
	if cfg.Email.Enabled {
		smtpService, err := notifications.NewSMTPEmailService(cfg.Email, appLogger)
		if err != nil {
			appLogger.Error("invalid SMTP configuration", slog.Any("error", err))
			os.Exit(1)
		}
		emailService = smtpService
	} else {
		appLogger.Info("SMTP not configured, email delivery is mocked")
		emailService = notifications.NewMockEmailService(appLogger)
	}

	var producer notifications.EmailProducer
	var consumer notifications.EmailConsumer
	if cfg.Kafka.Enabled {
		producer, err = notifications.NewKafkaEmailProducer(
			notifications.DefaultKafkaProducerConfig(cfg.Kafka.Brokers, cfg.Kafka.EmailTopic), appLogger)
		if err != nil {
			appLogger.Error("failed to create Kafka producer", slog.Any("error", err))
			os.Exit(1)
		}
		defer producer.Close()

		consumer, err = notifications.NewKafkaEmailConsumer(
			notifications.DefaultConsumerConfig(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.EmailTopic),
			emailService, appLogger)
		if err != nil {
			appLogger.Error("failed to create Kafka consumer", slog.Any("error", err))
			os.Exit(1)
		}
		if err := consumer.Start(context.Background()); err != nil {
			appLogger.Error("failed to start Kafka consumer", slog.Any("error", err))
			os.Exit(1)
		}
		defer consumer.Stop()

		appLogger.Info("email queue enabled",
			slog.Any("brokers", cfg.Kafka.Brokers),
			slog.String("topic", cfg.Kafka.EmailTopic),
		)
	}

	dispatcher := notifications.NewDispatcher(producer, emailService, cfg.JWT.ResetExpiresIn, appLogger)

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			AuthRequests:    cfg.RateLimit.AuthRequests,
			PostRequests:    cfg.RateLimit.PostRequests,
			UserRequests:    cfg.RateLimit.UserRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	router := setupRouter(cfg, db, codec, dispatcher, rateLimiter, appLogger)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", cfg.APIVersion),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
			slog.Bool("email_queue", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, db *database.DB, codec *auth.Codec, dispatcher *notifications.Dispatcher, rateLimiter *ratelimit.RateLimiter, appLogger *logger.Logger) *gin.Engine {
	engine := gin.New()

	engine.Use(requestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "deleted", "deleted_at"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter := routes.NewRouter(cfg, db, codec, dispatcher, appLogger)
	appRouter.SetupRoutes(engine)

	return engine
}

func requestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
	}
}
