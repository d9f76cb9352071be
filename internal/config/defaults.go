package config

import "time"

// Server defaults
const (
	DefaultHTTPPort = "8080"
	DefaultGinMode  = "release"
	DefaultLogLevel = "info"
)

// Database defaults
const (
	DefaultDBHost            = "localhost"
	DefaultDBPort            = 5432
	DefaultDBUser            = "ledger_user"
	DefaultDBPassword        = "ledger_password"
	DefaultDBName            = "ledger_db"
	DefaultDBSSLMode         = "disable"
	DefaultDBMaxOpenConns    = 25
	DefaultDBMaxIdleConns    = 5
	DefaultDBConnMaxLifetime = 5 * time.Minute
)

// JWT defaults
const (
	DefaultJWTSecret     = "change-me-in-production"
	DefaultJWTExpiration = 24 * time.Hour
)

// Cache defaults
const (
	DefaultCachePlansTTL = 5 * time.Minute
)

// Kafka defaults
const (
	DefaultKafkaBrokers = "localhost:9092"
	DefaultKafkaTopic   = "ledger-receipts"
)

// Scheduler defaults
const (
	DefaultAccrualInterval = 24 * time.Hour
)

// Ledger defaults
const (
	DefaultDebitOnApprove = false
)
