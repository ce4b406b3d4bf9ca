package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
)

const testSecret = "c2lsdmVyLWxpbmluZy1zZWNyZXQta2V5LWZvci10ZXN0aW5nLXRoZS1qd3QtY29kZWMtd2l0aC1oczUxMi1hbGdvcml0aG0="

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
jwt:
  secret: `+testSecret+`
  token_validity_seconds: 3600
database:
  driver: sqlite
  sqlite_path: "file::memory:"
authz:
  extra_policies:
    - role: ROLE_USER
      path: /api/reports/*
      method: GET
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 50051, cfg.Server.GRPCPort)
	assert.Equal(t, testSecret, cfg.JWT.Secret)
	assert.Equal(t, time.Hour, cfg.JWT.TokenValidity())
	assert.Equal(t, constants.SecretSourceConfig, cfg.JWT.SecretSource)
	assert.Equal(t, constants.AuditSinkNone, cfg.Audit.Sink)
	assert.Equal(t, "file::memory:", cfg.Database.GetDSN())
	require.Len(t, cfg.Authz.ExtraPolicies, 1)
	assert.Equal(t, PolicyRule{Role: "ROLE_USER", Path: "/api/reports/*", Method: "GET"}, cfg.Authz.ExtraPolicies[0])
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: from-file
`)
	t.Setenv("JWTAUTH_JWT_SECRET", testSecret)
	t.Setenv("JWTAUTH_JWT_TOKEN_VALIDITY_SECONDS", "60")
	t.Setenv("JWTAUTH_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, testSecret, cfg.JWT.Secret)
	assert.Equal(t, int64(60), cfg.JWT.TokenValiditySeconds)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_DefaultValidity(t *testing.T) {
	t.Setenv("JWTAUTH_JWT_SECRET", testSecret)

	cfg, err := LoadConfig(writeConfig(t, "log:\n  level: info\n"))
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultTokenValidity, cfg.JWT.TokenValidity())
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: 8080, GRPCPort: 50051},
		Database:  DatabaseConfig{Driver: "postgres"},
		JWT:       JWTConfig{Secret: testSecret, SecretSource: constants.SecretSourceConfig, TokenValiditySeconds: 86400},
		RateLimit: RateLimitConfig{Enabled: true, LoginAttempts: 10, WindowSeconds: 60},
		Audit:     AuditConfig{Sink: constants.AuditSinkNone},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"non-positive validity", func(c *Config) { c.JWT.TokenValiditySeconds = 0 }, true},
		{"unknown secret source", func(c *Config) { c.JWT.SecretSource = "file" }, true},
		{"vault without address", func(c *Config) { c.JWT.SecretSource = constants.SecretSourceVault }, true},
		{"vault configured", func(c *Config) {
			c.JWT.Secret = ""
			c.JWT.SecretSource = constants.SecretSourceVault
			c.Vault = VaultConfig{Address: "http://vault:8200", SecretPath: "jwtauth"}
		}, false},
		{"sqlite without path", func(c *Config) { c.Database.Driver = "sqlite" }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"redis without addresses", func(c *Config) { c.Redis.Enabled = true }, true},
		{"kafka without brokers", func(c *Config) { c.Audit.Sink = constants.AuditSinkKafka }, true},
		{"incomplete policy rule", func(c *Config) {
			c.Authz.ExtraPolicies = []PolicyRule{{Role: "ROLE_USER", Path: "/x"}}
		}, true},
		{"admin username without password", func(c *Config) { c.Bootstrap.AdminUsername = "admin" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoader_Watch(t *testing.T) {
	t.Setenv("JWTAUTH_JWT_SECRET", testSecret)
	path := writeConfig(t, "log:\n  level: info\n")

	loader := NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, path, loader.ConfigFile())

	levels := make(chan string, 16)
	loader.Watch(func(cfg *Config) {
		select {
		case levels <- cfg.Log.Level:
		default:
		}
	}, nil)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case level := <-levels:
			if level == "debug" {
				return
			}
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
}
