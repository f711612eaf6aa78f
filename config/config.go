package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Observ   ObservabilityConfig
	Pricing  PricingConfig
	Session  SessionConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
	// MaxReadRetries bounds the extra attempts made on failed reads.
	// Mutations are never retried automatically.
	MaxReadRetries int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers     []string
	TopicOrders string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type PricingConfig struct {
	// FreeShippingThreshold is the subtotal at which shipping becomes free.
	FreeShippingThreshold int64
	ShippingFee           int64
	// TaxRateBasisPoints applies tax only when non-zero (1300 = 13%).
	// The order-creation service stays authoritative for the final total.
	TaxRateBasisPoints int64
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	upstreamTimeout, _ := strconv.Atoi(getEnv("UPSTREAM_TIMEOUT_SECONDS", "10"))
	readRetries, _ := strconv.Atoi(getEnv("UPSTREAM_MAX_READ_RETRIES", "2"))
	freeShipping, _ := strconv.ParseInt(getEnv("FREE_SHIPPING_THRESHOLD", "5000"), 10, 64)
	shippingFee, _ := strconv.ParseInt(getEnv("SHIPPING_FEE", "150"), 10, 64)
	taxRate, _ := strconv.ParseInt(getEnv("TAX_RATE_BASIS_POINTS", "0"), 10, 64)
	sessionTTL, _ := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "60"))
	sweepInterval, _ := strconv.Atoi(getEnv("SESSION_SWEEP_SECONDS", "60"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Upstream: UpstreamConfig{
			BaseURL:        getEnv("MARKETPLACE_BASE_URL", "http://localhost:9000/api/v1"),
			Timeout:        time.Duration(upstreamTimeout) * time.Second,
			MaxReadRetries: readRetries,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicOrders: getEnv("KAFKA_TOPIC_ORDER_EVENTS", "storefront-order-events"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Pricing: PricingConfig{
			FreeShippingThreshold: freeShipping,
			ShippingFee:           shippingFee,
			TaxRateBasisPoints:    taxRate,
		},
		Session: SessionConfig{
			TTL:           time.Duration(sessionTTL) * time.Minute,
			SweepInterval: time.Duration(sweepInterval) * time.Second,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, upstream=%s", cfg.Server.Env, cfg.Server.Port, cfg.Upstream.BaseURL)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
