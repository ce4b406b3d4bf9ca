// Package kms supplies the token signing secret from configuration or HashiCorp Vault.
package kms

import (
	"context"
	"fmt"
	"strings"

	vault "github.com/hashicorp/vault/api"

	"github.com/turtacn/jwtauth/internal/config"
	"github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
)

// ConfigSecretSource returns jwt.secret as configured.
type ConfigSecretSource struct {
	secret string
}

func NewConfigSecretSource(secret string) *ConfigSecretSource {
	return &ConfigSecretSource{secret: secret}
}

func (s *ConfigSecretSource) FetchSigningSecret(context.Context) (string, error) {
	if strings.TrimSpace(s.secret) == "" {
		return "", errors.ErrInvalidConfig.WithDescription("jwt.secret is empty")
	}
	return s.secret, nil
}

// VaultSecretSource reads the base64 signing secret from a KV v2 secret.
type VaultSecretSource struct {
	client     *vault.Client
	mountPath  string
	secretPath string
	secretKey  string
	logger     logger.Logger
}

// NewVaultSecretSource creates a Vault client for cfg.Address authenticated with cfg.Token.
func NewVaultSecretSource(cfg *config.VaultConfig, log logger.Logger) (*VaultSecretSource, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address
	vaultConfig.MaxRetries = 0

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, errors.ErrInvalidConfig.WithDescription("invalid vault configuration").WithError(err)
	}
	client.SetToken(cfg.Token)

	return &VaultSecretSource{
		client:     client,
		mountPath:  cfg.MountPath,
		secretPath: cfg.SecretPath,
		secretKey:  cfg.SecretKey,
		logger:     log.WithComponent("VaultSecretSource"),
	}, nil
}

// FetchSigningSecret reads the latest version of the secret.
func (s *VaultSecretSource) FetchSigningSecret(ctx context.Context) (string, error) {
	secret, err := s.client.KVv2(s.mountPath).Get(ctx, s.secretPath)
	if err != nil {
		s.logger.Error(ctx, "Failed to read signing secret from Vault", err,
			logger.String("mount", s.mountPath),
			logger.String("path", s.secretPath),
		)
		return "", errors.ErrInvalidConfig.WithDescription("signing secret not readable from vault").WithError(err)
	}

	value, ok := secret.Data[s.secretKey].(string)
	if !ok || value == "" {
		return "", errors.ErrInvalidConfig.WithDescription(
			fmt.Sprintf("vault secret %s/%s has no string field %q", s.mountPath, s.secretPath, s.secretKey))
	}

	fields := []logger.Field{logger.String("path", s.secretPath)}
	if secret.VersionMetadata != nil {
		fields = append(fields, logger.Int("version", secret.VersionMetadata.Version))
	}
	s.logger.Info(ctx, "Signing secret loaded from Vault", fields...)
	return value, nil
}

// StoreSigningSecret writes a new version of the secret holding only the signing key field.
func (s *VaultSecretSource) StoreSigningSecret(ctx context.Context, secretBase64 string) error {
	_, err := s.client.KVv2(s.mountPath).Put(ctx, s.secretPath, map[string]interface{}{
		s.secretKey: secretBase64,
	})
	if err != nil {
		return errors.ErrServiceUnavailable.WithDescription("failed to write signing secret to vault").WithError(err)
	}
	s.logger.Info(ctx, "Signing secret written to Vault", logger.String("path", s.secretPath))
	return nil
}

// NewSecretSource returns the source selected by jwt.secret_source.
func NewSecretSource(cfg *config.Config, log logger.Logger) (service.SecretSource, error) {
	switch cfg.JWT.SecretSource {
	case constants.SecretSourceVault:
		return NewVaultSecretSource(&cfg.Vault, log)
	case constants.SecretSourceConfig, "":
		return NewConfigSecretSource(cfg.JWT.Secret), nil
	default:
		return nil, errors.ErrInvalidConfig.WithDescription(fmt.Sprintf("unknown jwt.secret_source %q", cfg.JWT.SecretSource))
	}
}
