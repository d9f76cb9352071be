package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gw-invest-ledger/internal/api"
	"gw-invest-ledger/internal/api/middleware"
	"gw-invest-ledger/internal/cache"
	"gw-invest-ledger/internal/config"
	"gw-invest-ledger/internal/kafka"
	"gw-invest-ledger/internal/logger"
	"gw-invest-ledger/internal/plans"
	"gw-invest-ledger/internal/scheduler"
	"gw-invest-ledger/internal/service"
	"gw-invest-ledger/internal/storages/postgres"
)

// @title Investment Ledger API
// @version 1.0
// @description API for investment accounts, positions, daily accrual and fund-sourced withdrawals
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Парсинг флагов командной строки
	configPath := flag.String("c", "", "Path to config file")
	flag.Parse()

	// Загрузка конфигурации
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Валидация конфигурации
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера
	log := logger.New(cfg.Logger.Level)
	log.Info("Starting gw-invest-ledger service...")

	// Подключение к базе данных
	dbConfig := &postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	storage, err := postgres.New(dbConfig, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer storage.Close()

	// Проверка подключения к БД
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := storage.Ping(ctx); err != nil {
		cancel()
		log.Fatalf("Database ping failed: %v", err)
	}
	cancel()
	log.Info("Database connection established")

	// Инициализация кеша и справочника планов
	plansCache := cache.NewPlansCache(cfg.Cache.PlansTTL)
	catalog := plans.NewStoreCatalog(storage, plansCache, log)
	log.Info("Plan catalog initialized")

	// Инициализация Kafka producer
	kafkaProducer := kafka.NewProducer(
		cfg.Kafka.Brokers,
		cfg.Kafka.Topic,
		log,
	)
	defer kafkaProducer.Close()

	// Создание сервисного слоя
	ledgerService := service.NewLedgerService(
		storage,
		catalog,
		kafkaProducer,
		cfg.Ledger.DebitOnApprove,
		log,
	)
	log.Info("Ledger service initialized")

	// Запуск планировщика начислений
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()

	accrual := scheduler.New(storage, catalog, kafkaProducer, cfg.Scheduler.AccrualInterval, log)
	accrual.Start(schedCtx)

	// Создание JWT middleware
	jwtMiddleware := middleware.NewJWTMiddleware(cfg.JWT.Secret, log)

	// Настройка роутера
	router := api.SetupRouter(ledgerService, catalog, jwtMiddleware, cfg.JWT.Expiration, log, cfg.Server.GinMode)

	// Создание HTTP сервера
	srv := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	// Запуск HTTP сервера в горутине
	go func() {
		log.Infof("HTTP server is listening on port %s", cfg.Server.HTTPPort)
		log.Infof("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Ожидание сигнала завершения
	<-done
	log.Info("Shutting down server...")

	// Останавливаем планировщик до закрытия хранилища
	schedCancel()
	accrual.Stop()

	// Graceful shutdown с таймаутом
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
