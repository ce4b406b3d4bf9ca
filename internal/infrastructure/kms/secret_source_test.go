package kms_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/jwtauth/internal/config"
	"github.com/turtacn/jwtauth/internal/infrastructure/kms"
	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
)

// fakeVault serves a single KV v2 secret at secret/jwtauth.
type fakeVault struct {
	mu     sync.Mutex
	data   map[string]interface{}
	tokens []string
}

func (f *fakeVault) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokens = append(f.tokens, r.Header.Get("X-Vault-Token"))
	if r.URL.Path != "/v1/secret/data/jwtauth" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	meta := map[string]interface{}{
		"version":       3,
		"created_time":  "2024-01-01T00:00:00Z",
		"deletion_time": "",
		"destroyed":     false,
	}

	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodGet:
		if f.data == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"data": f.data, "metadata": meta},
		})
	case http.MethodPut, http.MethodPost:
		var body struct {
			Data map[string]interface{} `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.data = body.Data
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": meta})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func vaultConfig(addr string) *config.VaultConfig {
	return &config.VaultConfig{
		Address:    addr,
		Token:      "test-token",
		MountPath:  "secret",
		SecretPath: "jwtauth",
		SecretKey:  "jwt_secret",
	}
}

func TestVaultSecretSource_Fetch(t *testing.T) {
	fv := &fakeVault{data: map[string]interface{}{"jwt_secret": "c2VjcmV0", "other": "kept"}}
	ts := httptest.NewServer(fv)
	defer ts.Close()

	src, err := kms.NewVaultSecretSource(vaultConfig(ts.URL), logger.NewNoopLogger())
	require.NoError(t, err)

	secret, err := src.FetchSigningSecret(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c2VjcmV0", secret)
	assert.Contains(t, fv.tokens, "test-token")
}

func TestVaultSecretSource_MissingField(t *testing.T) {
	ts := httptest.NewServer(&fakeVault{data: map[string]interface{}{"other": "value"}})
	defer ts.Close()

	src, err := kms.NewVaultSecretSource(vaultConfig(ts.URL), logger.NewNoopLogger())
	require.NoError(t, err)

	_, err = src.FetchSigningSecret(context.Background())
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestVaultSecretSource_NotFound(t *testing.T) {
	ts := httptest.NewServer(&fakeVault{})
	defer ts.Close()

	src, err := kms.NewVaultSecretSource(vaultConfig(ts.URL), logger.NewNoopLogger())
	require.NoError(t, err)

	_, err = src.FetchSigningSecret(context.Background())
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestVaultSecretSource_StoreThenFetch(t *testing.T) {
	fv := &fakeVault{}
	ts := httptest.NewServer(fv)
	defer ts.Close()

	src, err := kms.NewVaultSecretSource(vaultConfig(ts.URL), logger.NewNoopLogger())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, src.StoreSigningSecret(ctx, "bmV3LXNlY3JldA=="))

	secret, err := src.FetchSigningSecret(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bmV3LXNlY3JldA==", secret)
}

func TestNewSecretSource(t *testing.T) {
	log := logger.NewNoopLogger()

	src, err := kms.NewSecretSource(&config.Config{JWT: config.JWTConfig{
		Secret:       "c2VjcmV0",
		SecretSource: constants.SecretSourceConfig,
	}}, log)
	require.NoError(t, err)
	secret, err := src.FetchSigningSecret(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c2VjcmV0", secret)

	src, err = kms.NewSecretSource(&config.Config{
		JWT:   config.JWTConfig{SecretSource: constants.SecretSourceVault},
		Vault: *vaultConfig("http://127.0.0.1:8200"),
	}, log)
	require.NoError(t, err)
	assert.IsType(t, &kms.VaultSecretSource{}, src)

	_, err = kms.NewSecretSource(&config.Config{JWT: config.JWTConfig{SecretSource: "file"}}, log)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestConfigSecretSource_Empty(t *testing.T) {
	_, err := kms.NewConfigSecretSource("  ").FetchSigningSecret(context.Background())
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}
