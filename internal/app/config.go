package app

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix — префикс переменных окружения сервиса (SHOP_HTTP_ADDR и т.д.).
const envPrefix = "SHOP"

// Config — настройки приложения. Источники: .env файл (если есть) и
// переменные окружения с префиксом SHOP_.
type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	// Пустой DATABASE_URL переключает сервис на in-memory хранилище.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Пустой список брокеров отключает публикацию в Kafka:
	// события outbox пишутся в лог.
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`

	MinOrderAmount   string `envconfig:"MIN_ORDER_AMOUNT" default:"0"`
	MinOrderCurrency string `envconfig:"MIN_ORDER_CURRENCY" default:"USD"`

	ShippingBaseFee       string `envconfig:"SHIPPING_BASE_FEE" default:"5.00"`
	ShippingPerItemFee    string `envconfig:"SHIPPING_PER_ITEM_FEE" default:"1.50"`
	ShippingFreeThreshold string `envconfig:"SHIPPING_FREE_THRESHOLD" default:"100.00"`

	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"1s"`
	OutboxBatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`

	IdempotencyTTL             time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	IdempotencyCleanupInterval time.Duration `envconfig:"IDEMPOTENCY_CLEANUP_INTERVAL" default:"15m"`

	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LoadConfig читает .env (если файл существует) и переменные окружения.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}
