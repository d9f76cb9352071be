package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"gw-invest-ledger/internal/api/handlers"
	"gw-invest-ledger/internal/api/middleware"
	"gw-invest-ledger/internal/plans"
	"gw-invest-ledger/internal/service"
)

// SetupRouter настраивает и возвращает роутер со всеми эндпоинтами
func SetupRouter(
	ledgerService *service.LedgerService,
	catalog plans.Catalog,
	jwtMiddleware *middleware.JWTMiddleware,
	jwtExpiration time.Duration,
	logger *logrus.Logger,
	ginMode string,
) *gin.Engine {
	// Установка режима Gin
	gin.SetMode(ginMode)

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Инициализация handlers
	authHandler := handlers.NewAuthHandler(ledgerService, jwtMiddleware, jwtExpiration, logger)
	walletHandler := handlers.NewWalletHandler(ledgerService, logger)
	plansHandler := handlers.NewPlansHandler(catalog, logger)
	investmentsHandler := handlers.NewInvestmentsHandler(ledgerService, logger)
	withdrawalsHandler := handlers.NewWithdrawalsHandler(ledgerService, logger)
	depositsHandler := handlers.NewDepositsHandler(ledgerService, logger)
	earningsHandler := handlers.NewEarningsHandler(ledgerService, logger)
	adminHandler := handlers.NewAdminHandler(ledgerService, logger)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (без авторизации)
		v1.POST("/register", authHandler.Register)
		v1.POST("/login", authHandler.Login)
		v1.GET("/plans", plansHandler.List)
		v1.GET("/plans/:id", plansHandler.Get)

		// Protected routes (требуют авторизации)
		authorized := v1.Group("")
		authorized.Use(jwtMiddleware.Auth())
		{
			// Wallet operations
			authorized.GET("/balance", walletHandler.GetBalance)
			authorized.GET("/transactions", walletHandler.GetTransactions)
			authorized.GET("/earnings", earningsHandler.MyEarnings)

			// Investments
			authorized.POST("/investments", investmentsHandler.Invest)
			authorized.GET("/investments", investmentsHandler.MyInvestments)

			// Withdrawals and deposits
			authorized.POST("/withdrawals", withdrawalsHandler.Request)
			authorized.GET("/withdrawals", withdrawalsHandler.MyWithdrawals)
			authorized.POST("/deposits", depositsHandler.Request)
			authorized.GET("/deposits", depositsHandler.MyDeposits)
		}

		// Admin routes (требуют роль admin)
		admin := v1.Group("/admin")
		admin.Use(jwtMiddleware.Auth(), jwtMiddleware.RequireAdmin())
		{
			admin.GET("/investments", investmentsHandler.AllInvestments)
			admin.POST("/investments/:id/approve", investmentsHandler.Approve)
			admin.POST("/investments/:id/process", investmentsHandler.Process)
			admin.POST("/investments/:id/decline", investmentsHandler.Decline)
			admin.POST("/investments/:id/end", investmentsHandler.End)

			admin.GET("/withdrawals", withdrawalsHandler.AllWithdrawals)
			admin.POST("/withdrawals/:id/approve", withdrawalsHandler.Approve)
			admin.POST("/withdrawals/:id/process", withdrawalsHandler.Process)
			admin.POST("/withdrawals/:id/decline", withdrawalsHandler.Decline)

			admin.GET("/deposits", depositsHandler.AllDeposits)
			admin.POST("/deposits/:id/approve", depositsHandler.Approve)
			admin.POST("/deposits/:id/process", depositsHandler.Process)
			admin.POST("/deposits/:id/decline", depositsHandler.Decline)

			admin.GET("/earnings", earningsHandler.AllEarnings)
			admin.POST("/earnings/grant", earningsHandler.Grant)
			admin.POST("/earnings/deduct", earningsHandler.Deduct)

			admin.POST("/wallets/adjust", adminHandler.Adjust)
			admin.GET("/audit", adminHandler.AuditTrail)
		}
	}

	return router
}
