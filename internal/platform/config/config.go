package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config captures everything the server needs from the environment.
type Config struct {
	Addr          string `envconfig:"CONCORD_ADDR" default:":8080"`
	JWTSigningKey string `envconfig:"CONCORD_JWT_SIGNING_KEY" default:"dev-secret-key-change-in-production"`
	JWTIssuer     string `envconfig:"CONCORD_JWT_ISSUER" default:"concord"`
	JWTAudience   string `envconfig:"CONCORD_JWT_AUDIENCE" default:"concord-registry"`

	// BootstrapAdmin is the identity seeded as the first superadmin. When
	// empty a random identity is generated and logged at startup; that is a
	// development convenience only.
	BootstrapAdmin string `envconfig:"CONCORD_BOOTSTRAP_ADMIN"`

	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
}

// RedisConfig configures the token revocation list. Empty URL disables it.
type RedisConfig struct {
	URL          string        `envconfig:"CONCORD_REDIS_URL"`
	PoolSize     int           `envconfig:"CONCORD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CONCORD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CONCORD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CONCORD_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"CONCORD_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// PostgresConfig configures the durable audit trail. Empty URL disables it.
type PostgresConfig struct {
	URL string `envconfig:"CONCORD_POSTGRES_URL"`
}

// KafkaConfig configures the audit fan-out topic. Empty brokers disables it.
type KafkaConfig struct {
	Brokers []string `envconfig:"CONCORD_KAFKA_BROKERS"`
	Topic   string   `envconfig:"CONCORD_KAFKA_AUDIT_TOPIC" default:"concord.registry.audit"`
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
