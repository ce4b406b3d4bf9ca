//go:build integration

package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/jwtauth/internal/config"
	"github.com/turtacn/jwtauth/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
)

func TestUserRepositoryPostgres(t *testing.T) {
	if os.Getenv("SKIP_DOCKER_TESTS") == "true" {
		t.Skip("Skipping Docker-dependent tests")
	}

	ctx := context.Background()
	pgContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("jwtauth"),
		tcpostgres.WithUsername("jwtauth"),
		tcpostgres.WithPassword("jwtauth"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	}()

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	conn, err := postgres.NewDBConnection(ctx, &config.DatabaseConfig{
		Driver:          "postgres",
		Host:            host,
		Port:            port.Int(),
		User:            "jwtauth",
		Password:        "jwtauth",
		Database:        "jwtauth",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5,
		AutoMigrate:     true,
	}, logger.NewNoopLogger())
	require.NoError(t, err)
	defer conn.Close()

	repo := postgres.NewUserRepository(conn.DB(), nil, logger.NewNoopLogger())
	require.NoError(t, repo.Create(ctx, newUser("alice", constants.RoleUser)))

	err = repo.Create(ctx, newUser("alice", constants.RoleUser))
	assert.ErrorIs(t, err, errors.ErrUserAlreadyExists)

	got, err := repo.FindOneWithAuthoritiesByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{constants.RoleUser}, got.AuthorityNames())
}
