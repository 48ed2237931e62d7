package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"github.com/trogers1052/portfolio-valuation/internal/utils"
)

// Store backends
const (
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Sources   SourcesConfig
	Valuation ValuationConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port     string
	Host     string
	Schedule string
}

// StoreConfig selects where positions are read from and snapshots written to
type StoreConfig struct {
	Backend       string
	WalletCSVPath string
	PricesCSVPath string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds the optional snapshot mirror configuration
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	SnapshotKey string
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	TriggerTopic string
	GroupID      string
}

// SourcesConfig holds upstream price source configuration
type SourcesConfig struct {
	EquitySuffix          string
	CryptoBaseURL         string
	CryptoQuoteCurrency   string
	OptionsBaseURL        string
	BenchmarkURL          string
	FXTicker              string
	RequestTimeout        time.Duration
	RequestDelay          time.Duration
	Workers               int
	ReferenceRateFallback float64
}

// ValuationConfig holds currency settings for the valuation arithmetic
type ValuationConfig struct {
	BaseCurrency    string
	ForeignCurrency string
	FXRate          float64 // fixed rate; 0 means fetch it
	FXFallbackRate  float64
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from environment variables, after loading a .env
// file if one exists
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnv("SERVER_PORT", "8080"),
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			Schedule: getEnv("REVALUATION_SCHEDULE", "0 */30 * * * *"),
		},
		Store: StoreConfig{
			Backend:       strings.ToLower(getEnv("STORE_BACKEND", BackendCSV)),
			WalletCSVPath: getEnv("WALLET_CSV_PATH", "wallet.csv"),
			PricesCSVPath: getEnv("PRICES_CSV_PATH", "prices.csv"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "portfolio"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", ""),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			SnapshotKey: getEnv("REDIS_SNAPSHOT_KEY", "portfolio:prices"),
		},
		Kafka: KafkaConfig{
			Brokers:      utils.ParseCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:        getEnv("KAFKA_TOPIC", ""),
			TriggerTopic: getEnv("KAFKA_TRIGGER_TOPIC", ""),
			GroupID:      getEnv("KAFKA_GROUP_ID", "portfolio-valuator"),
		},
		Sources: SourcesConfig{
			EquitySuffix:          getEnv("EQUITY_SUFFIX", ".SA"),
			CryptoBaseURL:         getEnv("CRYPTO_BASE_URL", "https://api.binance.com"),
			CryptoQuoteCurrency:   strings.ToUpper(getEnv("CRYPTO_QUOTE_CURRENCY", "USDT")),
			OptionsBaseURL:        getEnv("OPTIONS_BASE_URL", "https://opcoes.net.br"),
			BenchmarkURL:          getEnv("BENCHMARK_URL", "https://api.bcb.gov.br/dados/serie/bcdata.sgs.4389/dados/ultimos/1?formato=json"),
			FXTicker:              getEnv("FX_TICKER", "BRL=X"),
			RequestTimeout:        getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
			RequestDelay:          getEnvAsDuration("REQUEST_DELAY", 500*time.Millisecond),
			Workers:               getEnvAsInt("WORKERS", 4),
			ReferenceRateFallback: getEnvAsFloat("REFERENCE_RATE_FALLBACK", 0.10),
		},
		Valuation: ValuationConfig{
			BaseCurrency:    strings.ToUpper(getEnv("BASE_CURRENCY", "BRL")),
			ForeignCurrency: strings.ToUpper(getEnv("FOREIGN_CURRENCY", "USD")),
			FXRate:          getEnvAsFloat("FX_RATE", 0),
			FXFallbackRate:  getEnvAsFloat("FX_FALLBACK_RATE", 5.0),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvAsBool("LOG_PRETTY", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required fields are set and values are valid
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendCSV:
		if c.Store.WalletCSVPath == "" {
			return errors.New("WALLET_CSV_PATH is required for the csv backend")
		}
		if c.Store.PricesCSVPath == "" {
			return errors.New("PRICES_CSV_PATH is required for the csv backend")
		}
	case BackendPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return errors.New("DB_HOST and DB_NAME are required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Sources.Workers < 1 {
		return fmt.Errorf("WORKERS must be >= 1, got %d", c.Sources.Workers)
	}
	if c.Sources.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.Sources.RequestDelay < 0 {
		return errors.New("REQUEST_DELAY must not be negative")
	}
	if c.Sources.ReferenceRateFallback <= 0 {
		return errors.New("REFERENCE_RATE_FALLBACK must be positive")
	}
	if c.Valuation.FXFallbackRate <= 0 {
		return errors.New("FX_FALLBACK_RATE must be positive")
	}
	if c.Valuation.FXRate < 0 {
		return errors.New("FX_RATE must not be negative")
	}

	if c.Valuation.BaseCurrency == "" {
		return errors.New("BASE_CURRENCY is required")
	}
	for _, code := range []string{c.Valuation.BaseCurrency, c.Valuation.ForeignCurrency} {
		if money.GetCurrency(code) == nil {
			return fmt.Errorf("unknown currency code %q", code)
		}
	}

	if c.Kafka.Topic != "" || c.Kafka.TriggerTopic != "" {
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when a kafka topic is set")
		}
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

// Address returns the HTTP listen address
func (s *ServerConfig) Address() string {
	return s.Host + ":" + s.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
