package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ethereum-wallet/config"
	httpHandler "ethereum-wallet/internal/adapter/http/handler"
	"ethereum-wallet/internal/adapter/storage/memory"
	pgStorage "ethereum-wallet/internal/adapter/storage/postgres"
	redisStorage "ethereum-wallet/internal/adapter/storage/redis"
	"ethereum-wallet/internal/converter"
	"ethereum-wallet/internal/core/ports"
	"ethereum-wallet/internal/monitoring"
	"ethereum-wallet/internal/service"
	"ethereum-wallet/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load(os.Getenv("EWL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Backend).
		Str("converter", cfg.Converter.Mode).
		Msg("Starting Ethereum Wallet service")

	ctx := context.Background()
	var checkers []ports.HealthChecker

	// Storage
	var repo ports.WalletRepository
	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		if err := pgStorage.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply schema")
		}
		repo = pgStorage.NewWalletRepo(pool)
		checkers = append(checkers, pgStorage.NewHealthCheck(pool))
		log.Info().Msg("PostgreSQL connected")
	default:
		mem := memory.NewWalletRepository()
		repo = mem
		checkers = append(checkers, mem)
	}

	// Redis is only dialled when something uses it.
	var rdb *goredis.Client
	if cfg.NeedsRedis() {
		rdb, err = redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		checkers = append(checkers, redisStorage.NewHealthCheck(rdb))
		log.Info().Msg("Redis connected")
	}

	conv, err := buildConverter(ctx, cfg.Converter, cfg.Redis, rdb, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise currency converter")
	}

	// Metrics
	metrics := monitoring.NewMetrics()
	if keys, err := repo.Keys(ctx); err != nil {
		log.Warn().Err(err).Msg("Could not count stored wallets")
	} else {
		metrics.SetActiveWallets(len(keys))
	}

	// Services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
	authSvc := service.NewAuthService(cfg.Auth.APIKeyHash, hashSvc, tokenSvc, logger.Component(log, "auth"))
	walletSvc := service.NewWalletService(repo, conv, metrics, logger.Component(log, "wallet"))
	if cfg.Auth.APIKeyHash == "" {
		log.Warn().Msg("auth.api_key_hash is empty, token requests will be refused")
	}

	var rateLimitStore ports.RateLimitStore
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.Store == config.RateLimitMemory {
			rateLimitStore = memory.NewRateLimitStore()
		} else {
			rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		}
		log.Info().Str("store", cfg.RateLimit.Store).Msg("Rate limiting enabled")
	}

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile(cfg.Server.OpenAPIPath); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc:      walletSvc,
		AuthSvc:        authSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: checkers,
		Metrics:        metrics,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Logger:         logger.Component(log, "http"),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// buildConverter returns the converter selected by cfg. In table mode the
// configured rate is overlaid with rates stored in Redis when seeding is on.
func buildConverter(
	ctx context.Context,
	cfg config.ConverterConfig,
	redisCfg config.RedisConfig,
	rdb *goredis.Client,
	log zerolog.Logger,
) (ports.CurrencyConverter, error) {
	if cfg.Mode == config.ConverterFixed {
		return converter.NewFixedRate(cfg.BTCETHRate)
	}

	table, err := converter.NewTableWithRate(cfg.BTCETHRate)
	if err != nil {
		return nil, err
	}
	if cfg.SeedFromRedis && rdb != nil {
		if err := table.Load(ctx, redisStorage.NewRateStore(rdb, redisCfg.RatesKey)); err != nil {
			return nil, fmt.Errorf("loading rates from redis: %w", err)
		}
		rate, _ := table.Rate(converter.PairBTCETH)
		log.Info().Float64("btc_eth", rate).Msg("Exchange rates loaded from Redis")
	}
	return table, nil
}
