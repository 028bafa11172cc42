package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration so main stays lean.
type Config struct {
	Addr string

	// PostgresURL enables the postgres-backed stores when set; the in-memory
	// stores are used otherwise.
	PostgresURL string

	// Redis backs the analytics report cache when configured.
	Redis RedisConfig

	// KafkaBrokers enables the Kafka audit publisher when non-empty.
	KafkaBrokers []string
	// KafkaAuditTopic is the topic audit events are produced to.
	KafkaAuditTopic string

	// StoreTimeout bounds every store operation so no transition hangs.
	StoreTimeout time.Duration
	// PricingTimeout bounds calls to the pricing service.
	PricingTimeout time.Duration

	// AllowReopenFromHold permits the ON_HOLD -> PENDING transition.
	AllowReopenFromHold bool

	// ReportCacheTTL bounds staleness of cached analytics snapshots.
	ReportCacheTTL time.Duration
}

// RedisConfig captures Redis connection settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:                envOr("RISKGUARD_ADDR", ":8080"),
		PostgresURL:         os.Getenv("RISKGUARD_POSTGRES_URL"),
		KafkaAuditTopic:     envOr("RISKGUARD_KAFKA_AUDIT_TOPIC", "riskguard.audit"),
		StoreTimeout:        envDuration("RISKGUARD_STORE_TIMEOUT", 5*time.Second),
		PricingTimeout:      envDuration("RISKGUARD_PRICING_TIMEOUT", 3*time.Second),
		AllowReopenFromHold: os.Getenv("RISKGUARD_ALLOW_REOPEN_FROM_HOLD") == "true",
		ReportCacheTTL:      envDuration("RISKGUARD_REPORT_CACHE_TTL", time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("RISKGUARD_REDIS_URL"),
			PoolSize:     envInt("RISKGUARD_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("RISKGUARD_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("RISKGUARD_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("RISKGUARD_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("RISKGUARD_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
	if brokers := os.Getenv("RISKGUARD_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
