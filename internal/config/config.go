package config

import (
	"fmt"
	"time"

	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
)

// Config holds the application's configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Vault     VaultConfig     `mapstructure:"vault"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Authz     AuthzConfig     `mapstructure:"authz"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	GRPCPort        int      `mapstructure:"grpc_port"`
	Mode            string   `mapstructure:"mode"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // in seconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // in seconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // in seconds
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	EnablePprof     bool     `mapstructure:"enable_pprof"`
}

// HTTPAddr returns the listen address of the HTTP server.
func (c *ServerConfig) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GRPCAddr returns the listen address of the gRPC server.
func (c *ServerConfig) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GRPCPort)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres or sqlite
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxConns        int    `mapstructure:"max_conns"`
	MinConns        int    `mapstructure:"min_conns"`
	MaxConnLifetime int    `mapstructure:"max_conn_lifetime"` // in minutes
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == "sqlite" {
		return c.SQLitePath
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Addresses    []string `mapstructure:"addresses"`
	Password     string   `mapstructure:"password"`
	DB           int      `mapstructure:"db"`
	PoolSize     int      `mapstructure:"pool_size"`
	MinIdleConns int      `mapstructure:"min_idle_conns"`
}

type VaultConfig struct {
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	MountPath  string `mapstructure:"mount_path"`
	SecretPath string `mapstructure:"secret_path"`
	SecretKey  string `mapstructure:"secret_key"`
}

type JWTConfig struct {
	// Secret is the base64-encoded HS512 key, used when SecretSource is "config".
	Secret               string                 `mapstructure:"secret"`
	SecretSource         constants.SecretSource `mapstructure:"secret_source"`
	TokenValiditySeconds int64                  `mapstructure:"token_validity_seconds"`
}

// TokenValidity returns the configured token lifetime.
func (c *JWTConfig) TokenValidity() time.Duration {
	return time.Duration(c.TokenValiditySeconds) * time.Second
}

type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	LoginAttempts int  `mapstructure:"login_attempts"`
	WindowSeconds int  `mapstructure:"window_seconds"`
}

// Window returns the throttling window.
func (c *RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

type AuditConfig struct {
	Sink  constants.AuditSink `mapstructure:"sink"`
	Kafka KafkaConfig         `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // json or console
	OutputPath string `mapstructure:"output_path"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

// AuthzConfig carries route rules appended to the built-in policy.
type AuthzConfig struct {
	ExtraPolicies []PolicyRule `mapstructure:"extra_policies"`
}

// PolicyRule grants Role access to Path (keyMatch2 pattern) with Method ("*" for any).
type PolicyRule struct {
	Role   string `mapstructure:"role"`
	Path   string `mapstructure:"path"`
	Method string `mapstructure:"method"`
}

// BootstrapConfig optionally seeds an administrator on startup.
type BootstrapConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminNickname string `mapstructure:"admin_nickname"`
}

// Validate checks for essential configuration values.
// Signing key length is checked when the key is built, since the secret may come from Vault.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return invalid("server.port must be between 1 and 65535")
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return invalid("server.grpc_port must be between 0 and 65535")
	}

	if c.JWT.TokenValiditySeconds <= 0 {
		return invalid("jwt.token_validity_seconds must be positive")
	}
	switch c.JWT.SecretSource {
	case constants.SecretSourceConfig:
		if c.JWT.Secret == "" {
			return invalid("jwt.secret is required when jwt.secret_source is config")
		}
	case constants.SecretSourceVault:
		if c.Vault.Address == "" || c.Vault.SecretPath == "" {
			return invalid("vault.address and vault.secret_path are required when jwt.secret_source is vault")
		}
	default:
		return invalid(fmt.Sprintf("unknown jwt.secret_source %q", c.JWT.SecretSource))
	}

	switch c.Database.Driver {
	case "postgres":
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return invalid("database.sqlite_path is required for the sqlite driver")
		}
	default:
		return invalid(fmt.Sprintf("unknown database.driver %q", c.Database.Driver))
	}

	if c.Redis.Enabled && len(c.Redis.Addresses) == 0 {
		return invalid("redis.addresses is required when redis is enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.LoginAttempts <= 0 || c.RateLimit.WindowSeconds <= 0) {
		return invalid("rate_limit.login_attempts and rate_limit.window_seconds must be positive")
	}

	switch c.Audit.Sink {
	case constants.AuditSinkNone, constants.AuditSinkDatabase:
	case constants.AuditSinkKafka:
		if len(c.Audit.Kafka.Brokers) == 0 || c.Audit.Kafka.Topic == "" {
			return invalid("audit.kafka.brokers and audit.kafka.topic are required for the kafka sink")
		}
	default:
		return invalid(fmt.Sprintf("unknown audit.sink %q", c.Audit.Sink))
	}

	for i, rule := range c.Authz.ExtraPolicies {
		if rule.Role == "" || rule.Path == "" || rule.Method == "" {
			return invalid(fmt.Sprintf("authz.extra_policies[%d] needs role, path and method", i))
		}
	}

	if (c.Bootstrap.AdminUsername == "") != (c.Bootstrap.AdminPassword == "") {
		return invalid("bootstrap.admin_username and bootstrap.admin_password must be set together")
	}
	return nil
}

func invalid(description string) error {
	return errors.ErrInvalidConfig.WithDescription(description)
}
