package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/lankamarket/lankamarket-api/docs" // Swagger docs (generated)
	"github.com/lankamarket/lankamarket-api/internal/auth"
	"github.com/lankamarket/lankamarket-api/internal/catalog"
	"github.com/lankamarket/lankamarket-api/internal/config"
	"github.com/lankamarket/lankamarket-api/internal/database"
	"github.com/lankamarket/lankamarket-api/internal/email"
	"github.com/lankamarket/lankamarket-api/internal/events"
	httpServer "github.com/lankamarket/lankamarket-api/internal/http"
	"github.com/lankamarket/lankamarket-api/internal/listing"
	"github.com/lankamarket/lankamarket-api/internal/logging"
	"github.com/lankamarket/lankamarket-api/internal/metrics"
	"github.com/lankamarket/lankamarket-api/internal/ratelimit"
	"github.com/lankamarket/lankamarket-api/internal/user"
)

// @title           LankaMarket API
// @version         1.0
// @description     Marketplace backend connecting Sri Lankan small-business sellers with customers.

// @contact.name   LankaMarket API Support
// @contact.email  dev@lankamarket.lk

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name auth_token

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
		"db_driver", cfg.Database.Driver,
		"token_strategy", cfg.Auth.TokenStrategy,
	)

	// Initialize database connection
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.CreateSchema(context.Background(), db); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	rateLimiter, closeLimiter, err := initRateLimiter(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	defer closeLimiter()

	tokenService, err := initTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	publisher, err := initPublisher(cfg.Queue, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer publisher.Close()

	var mailer auth.WelcomeMailer
	if cfg.Email.Enabled() {
		mailer = email.NewService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FrontendURL,
		)
	} else {
		logger.Info("SMTP not configured, welcome emails disabled")
	}

	m := metrics.New()

	// Initialize repositories and services
	userRepo := user.NewRepository(db)
	catalogService := catalog.NewQueryService(catalog.NewRepository(db))
	authService := auth.NewService(
		userRepo,
		auth.NewPasswordHasher(auth.DefaultArgon2Params),
		tokenService,
		publisher,
		mailer,
		logger,
		cfg.Auth.TokenDuration,
	)

	// Initialize HTTP handlers
	handlers := httpServer.Handlers{
		Auth: auth.NewHandler(authService, rateLimiter, m, auth.CookieSettings{
			Name:     cfg.Auth.CookieName,
			Secure:   !cfg.Server.IsDevelopment(),
			Duration: cfg.Auth.TokenDuration,
		}),
		AuthMiddleware: auth.NewMiddleware(tokenService, cfg.Auth.CookieName),
		Catalog:        catalog.NewHandler(catalogService),
		Listings:       listing.NewHandler(listing.NewPipeline(listing.NewStoreSource(catalogService), m.ListingHalves)),
		Users:          user.NewHandler(userRepo),
		Metrics:        m,
	}

	router := httpServer.NewRouter(cfg, handlers, logger)

	server := httpServer.NewServer(httpServer.ServerConfig{
		Addr:            ":" + cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		return err
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := authService.Wait(drainCtx); err != nil {
		logger.Warn("welcome emails still pending at shutdown", "error", err)
	}
	return nil
}

func initTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	switch cfg.TokenStrategy {
	case config.TokenStrategyPaseto:
		return auth.NewPasetoService(cfg.TokenSecret)
	case config.TokenStrategyJWT:
		return auth.NewJWTService(cfg.TokenSecret)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownTokenType, cfg.TokenStrategy)
	}
}

// initRateLimiter returns a Redis backed limiter, or a no-op one when rate
// limiting is disabled
func initRateLimiter(cfg *config.Config) (auth.RateLimiter, func(), error) {
	if !cfg.RateLimit.Enabled {
		return ratelimit.Noop{}, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Verify connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	limiter := ratelimit.NewLimiter(client, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	return limiter, func() { client.Close() }, nil
}

func initPublisher(cfg config.QueueConfig, logger *logging.Logger) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP_URL not set, domain events disabled")
		return events.NewNoop(), nil
	}
	return events.NewRabbit(cfg.AMQPURL, cfg.Exchange)
}
