package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"patienthelpdesk/internal/assistant"
	"patienthelpdesk/internal/auth"
	"patienthelpdesk/internal/config"
	"patienthelpdesk/internal/database"
	"patienthelpdesk/internal/document"
	"patienthelpdesk/internal/email"
	httpServer "patienthelpdesk/internal/http"
	"patienthelpdesk/internal/inquiry"
	"patienthelpdesk/internal/logging"
	"patienthelpdesk/internal/ratelimit"
	"patienthelpdesk/internal/session"
	"patienthelpdesk/internal/user"

	"github.com/uptrace/bun"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	refreshTokenRepo := auth.NewRedisRepository(redisClient)
	resetChallengeRepo := auth.NewRedisResetChallengeRepository(redisClient)
	inquiryRepo := inquiry.NewRepository(db)
	sessionStore := session.NewStore(redisClient)

	// Initialize rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// Initialize PASETO service
	pasetoService, err := auth.NewPasetoService(cfg.Auth.PasetoKey)
	if err != nil {
		return fmt.Errorf("failed to initialize PASETO service: %w", err)
	}

	// Initialize email service
	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromAddress,
	)

	// Initialize document store for denied-claim attachments
	documentStore, err := document.NewStore(cfg.Documents.Dir)
	if err != nil {
		return fmt.Errorf("failed to initialize document store: %w", err)
	}

	// Initialize auth service
	authService := auth.NewService(
		userRepo,
		refreshTokenRepo,
		resetChallengeRepo,
		pasetoService,
		emailService,
		logger,
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)

	// Initialize inquiry service
	inquiryService := inquiry.NewService(inquiryRepo, documentStore, logger)

	// Initialize assistant gateway
	assistantGateway := assistant.NewGateway(cfg.Assistant.APIKey, logger)
	if cfg.Assistant.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, assistant will answer with the static apology")
	}

	// Initialize HTTP handlers
	authHandler := auth.NewHandler(
		authService,
		rateLimiter,
		sessionStore,
		logger,
		!cfg.Server.IsDevelopment(), // isProduction
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)
	authMiddleware := auth.NewMiddleware(pasetoService)
	inquiryHandler := inquiry.NewHandler(inquiryService, logger)
	assistantHandler := assistant.NewHandler(assistantGateway, sessionStore, logger)
	sessionHandler := session.NewHandler(sessionStore, logger)

	// Initialize router
	router := httpServer.NewRouter(
		cfg,
		authHandler,
		authMiddleware,
		inquiryHandler,
		assistantHandler,
		sessionHandler,
		logger,
	)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	db := database.NewBunDB(sqlDB)

	// Provision tables so a fresh database works without a separate step
	if err := database.CreateSchema(context.Background(), db); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
