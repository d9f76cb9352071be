package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Config содержит конфигурацию для подключения к PostgreSQL
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresStorage реализует интерфейс Storage для PostgreSQL
type PostgresStorage struct {
	db     *sql.DB
	logger *logrus.Logger
}

// New создает новое подключение к PostgreSQL
func New(cfg *Config, logger *logrus.Logger) (*PostgresStorage, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to PostgreSQL")

	storage := &PostgresStorage{
		db:     db,
		logger: logger,
	}

	// Инициализация схемы БД
	if err := storage.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema создает необходимые таблицы, если они не существуют
func (s *PostgresStorage) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id SERIAL PRIMARY KEY,
		uid VARCHAR(64) UNIQUE NOT NULL,
		name VARCHAR(100) NOT NULL DEFAULT '',
		email VARCHAR(100) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(10) NOT NULL DEFAULT 'user',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS wallets (
		id SERIAL PRIMARY KEY,
		uid VARCHAR(64) NOT NULL REFERENCES accounts(uid) ON DELETE CASCADE,
		wallet VARCHAR(10) NOT NULL,
		amount NUMERIC(20, 8) NOT NULL DEFAULT 0,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(uid, wallet),
		CHECK (amount >= 0)
	);

	CREATE TABLE IF NOT EXISTS plans (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		return_rate NUMERIC(10, 4) NOT NULL,
		duration_days INTEGER NOT NULL,
		min_amount NUMERIC(20, 8) NOT NULL DEFAULT 0,
		max_amount NUMERIC(20, 8) NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS positions (
		id SERIAL PRIMARY KEY,
		uid VARCHAR(64) NOT NULL REFERENCES accounts(uid) ON DELETE CASCADE,
		plan_id INTEGER NOT NULL,
		plan_name VARCHAR(100) NOT NULL DEFAULT '',
		principal NUMERIC(20, 8) NOT NULL,
		return_rate NUMERIC(10, 4) NOT NULL,
		duration_days INTEGER NOT NULL,
		method VARCHAR(10) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS earnings (
		id SERIAL PRIMARY KEY,
		uid VARCHAR(64) NOT NULL REFERENCES accounts(uid) ON DELETE CASCADE,
		amount NUMERIC(20, 8) NOT NULL,
		plan_id INTEGER NOT NULL DEFAULT 0,
		position_id INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CHECK (amount >= 0)
	);

	CREATE TABLE IF NOT EXISTS withdrawals (
		id SERIAL PRIMARY KEY,
		uid VARCHAR(64) NOT NULL REFERENCES accounts(uid) ON DELETE CASCADE,
		amount NUMERIC(20, 8) NOT NULL,
		destination VARCHAR(255) NOT NULL DEFAULT '',
		method VARCHAR(10) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		transaction_id INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS deposits (
		id SERIAL PRIMARY KEY,
		uid VARCHAR(64) NOT NULL REFERENCES accounts(uid) ON DELETE CASCADE,
		amount NUMERIC(20, 8) NOT NULL,
		from_party VARCHAR(255) NOT NULL DEFAULT '',
		method VARCHAR(10) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		transaction_id INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id SERIAL PRIMARY KEY,
		uid VARCHAR(64) NOT NULL,
		amount NUMERIC(20, 8) NOT NULL,
		from_party VARCHAR(64) NOT NULL DEFAULT '',
		to_party VARCHAR(64) NOT NULL DEFAULT '',
		kind VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		plan_id INTEGER NOT NULL DEFAULT 0,
		position_id INTEGER NOT NULL DEFAULT 0,
		method VARCHAR(10) NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS accrual_runs (
		id SERIAL PRIMARY KEY,
		position_id INTEGER NOT NULL,
		run_date DATE NOT NULL,
		amount NUMERIC(20, 8) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(position_id, run_date)
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email);
	CREATE INDEX IF NOT EXISTS idx_wallets_uid_wallet ON wallets(uid, wallet);
	CREATE INDEX IF NOT EXISTS idx_positions_uid ON positions(uid);
	CREATE INDEX IF NOT EXISTS idx_positions_status ON positions(status);
	CREATE INDEX IF NOT EXISTS idx_earnings_uid_order ON earnings(uid, created_at, id);
	CREATE INDEX IF NOT EXISTS idx_withdrawals_uid ON withdrawals(uid);
	CREATE INDEX IF NOT EXISTS idx_deposits_uid ON deposits(uid);
	CREATE INDEX IF NOT EXISTS idx_transactions_uid ON transactions(uid);
	CREATE INDEX IF NOT EXISTS idx_transactions_updated ON transactions(updated_at DESC);
	`

	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.logger.Info("Database schema initialized")
	return nil
}

// Close закрывает соединение с базой данных
func (s *PostgresStorage) Close() error {
	if s.db != nil {
		s.logger.Info("Closing database connection")
		return s.db.Close()
	}
	return nil
}

// Ping проверяет соединение с базой данных
func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
