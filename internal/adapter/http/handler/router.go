package handler

import (
	"ethereum-wallet/internal/adapter/http/middleware"
	"ethereum-wallet/internal/core/ports"
	"ethereum-wallet/internal/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const defaultMaxBodyBytes = 1 << 20 // 1 MB

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	AuthSvc        ports.AuthService
	TokenSvc       ports.TokenService
	RateLimitStore ports.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Metrics        *monitoring.Metrics // nil = /metrics not served
	MaxBodyBytes   int64               // 0 = 1 MB
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger, deps.Metrics))
	r.Use(middleware.MaxBodySize(maxBody))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimitStore == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Public routes ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	v1.POST("/auth/token", rl(middleware.GroupAuthToken), authHandler.Token)

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	walletHandler := NewWalletHandler(deps.WalletSvc)
	read, write := rl(middleware.GroupWalletRead), rl(middleware.GroupWalletWrite)

	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.POST("", write, walletHandler.Open)
		wallets.GET("", read, walletHandler.List)
		wallets.GET("/:id", read, walletHandler.Get)
		wallets.DELETE("/:id", write, walletHandler.Close)
		wallets.POST("/:id/deposit", write, walletHandler.Deposit)
		wallets.POST("/:id/withdraw", write, walletHandler.Withdraw)
		wallets.POST("/:id/transfer", write, walletHandler.Transfer)
		wallets.POST("/:id/deposit-bitcoin", write, walletHandler.DepositBitcoin)
		wallets.POST("/:id/withdraw-bitcoin", write, walletHandler.WithdrawBitcoin)
		wallets.POST("/:id/transfer-bitcoin", write, walletHandler.TransferBitcoin)
	}

	v1.GET("/rates/quote", jwtAuth, read, walletHandler.Quote)

	return r
}
