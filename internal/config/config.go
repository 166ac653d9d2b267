package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env     Environment   `mapstructure:"env" validate:"required"`
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Logging LoggingConfig `mapstructure:"logging"`
	Loyalty LoyaltyConfig `mapstructure:"loyalty"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port" validate:"required"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=mongodb mysql"`
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// MySQLConfig holds the gorm/mysql connection settings
type MySQLConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret string `mapstructure:"secret" validate:"required"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// LoyaltyConfig holds the voucher and lottery engine settings
type LoyaltyConfig struct {
	Timezone            string `mapstructure:"timezone" validate:"required"`
	CodeRetryAttempts   int    `mapstructure:"code_retry_attempts" validate:"min=1"`
	ExpirySweepSchedule string `mapstructure:"expiry_sweep_schedule" validate:"required"`
	ExpirySweepEnabled  bool   `mapstructure:"expiry_sweep_enabled"`
	ExpirySweepBatch    int    `mapstructure:"expiry_sweep_batch" validate:"min=1"`

	// MaxTransactionAmount is a decimal string, the largest purchase accepted
	MaxTransactionAmount      string `mapstructure:"max_transaction_amount" validate:"required"`
	MaxVouchersPerTransaction int    `mapstructure:"max_vouchers_per_transaction" validate:"min=1"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// Load loads configuration from .env files, an optional config file and
// LOYALTY_ prefixed environment variables, in increasing precedence.
func Load() (*Config, error) {
	LoadEnvFiles()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("LOYALTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags and the cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := c.Loyalty.Location(); err != nil {
		return err
	}
	if _, err := c.Loyalty.MaxAmount(); err != nil {
		return err
	}
	switch c.Store.Driver {
	case "mongodb":
		if c.MongoDB.URI == "" || c.MongoDB.Database == "" {
			return errMissing("mongodb.uri and mongodb.database")
		}
	case "mysql":
		if c.MySQL.DSN == "" {
			return errMissing("mysql.dsn")
		}
	}
	return nil
}

// Location resolves the configured store timezone.
func (c LoyaltyConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// MaxAmount parses the transaction ceiling, which must be positive.
func (c LoyaltyConfig) MaxAmount() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(c.MaxTransactionAmount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("config: loyalty.max_transaction_amount: %w", err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("config: loyalty.max_transaction_amount must be positive")
	}
	return amount, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", string(EnvDevelopment))
	v.SetDefault("server.port", "4000")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("store.driver", "mongodb")
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("mongodb.database", "retail-loyalty")
	v.SetDefault("mysql.max_open_conns", 20)
	v.SetDefault("mysql.max_idle_conns", 5)
	v.SetDefault("mysql.auto_migrate", true)
	v.SetDefault("mysql.dsn", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("loyalty.timezone", "Asia/Jakarta")
	v.SetDefault("loyalty.code_retry_attempts", 5)
	v.SetDefault("loyalty.expiry_sweep_schedule", "0 * * * *")
	v.SetDefault("loyalty.expiry_sweep_enabled", true)
	v.SetDefault("loyalty.expiry_sweep_batch", 500)
	v.SetDefault("loyalty.max_transaction_amount", "1000000000000")
	v.SetDefault("loyalty.max_vouchers_per_transaction", 1000)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "loyalty.events")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "retail-loyalty-backend")
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
}
