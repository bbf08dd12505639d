package pgservice_test

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/gmail-postgres-mcp/internal/config"
	"github.com/hal9000y/gmail-postgres-mcp/internal/pgservice"
)

func baseConfig() *config.Config {
	return &config.Config{
		PostgresHost:           "localhost",
		PostgresPort:           5432,
		PostgresDatabase:       "postgres",
		PostgresUser:           "postgres",
		PostgresMaxConns:       10,
		PostgresIdleTimeout:    30 * time.Second,
		PostgresConnectTimeout: 2 * time.Second,
	}
}

func TestUnconfiguredService(t *testing.T) {
	ctx := context.Background()

	svc, err := pgservice.New(ctx, baseConfig())
	require.NoError(t, err)

	assert.False(t, svc.Ready())

	_, err = svc.Query(ctx, "SELECT 1", nil)
	assert.ErrorIs(t, err, pgservice.ErrNoPool)

	_, err = svc.Exec(ctx, "DELETE FROM t", nil)
	assert.ErrorIs(t, err, pgservice.ErrNoPool)

	assert.ErrorIs(t, svc.Ping(ctx), pgservice.ErrNoPool)

	svc.Close()
}

func TestNewDoesNotConnect(t *testing.T) {
	cfg := baseConfig()
	cfg.PostgresHost = "host.invalid"
	cfg.PostgresPassword = "secret"

	svc, err := pgservice.New(context.Background(), cfg)
	require.NoError(t, err, "pool construction must not dial")
	assert.True(t, svc.Ready())

	svc.Close()
}

func TestIntegrationPostgres(t *testing.T) {
	password := os.Getenv("TEST_POSTGRES_PASSWORD")
	if password == "" {
		t.Skip("Skipping integration test: TEST_POSTGRES_PASSWORD env var must be set")
	}

	cfg := baseConfig()
	cfg.PostgresPassword = password
	if host := os.Getenv("TEST_POSTGRES_HOST"); host != "" {
		cfg.PostgresHost = host
	}
	if port := os.Getenv("TEST_POSTGRES_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		require.NoError(t, err)
		cfg.PostgresPort = p
	}
	if db := os.Getenv("TEST_POSTGRES_DATABASE"); db != "" {
		cfg.PostgresDatabase = db
	}
	if user := os.Getenv("TEST_POSTGRES_USER"); user != "" {
		cfg.PostgresUser = user
	}

	ctx := context.Background()

	svc, err := pgservice.New(ctx, cfg)
	require.NoError(t, err)
	defer svc.Close()

	require.NoError(t, svc.Ping(ctx))

	result, err := svc.Query(ctx, "SELECT $1::int AS n, $2::text AS s", []any{41, "hello"})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.EqualValues(t, 1, result.RowCount)
	assert.Equal(t, "hello", result.Rows[0]["s"])
	require.Len(t, result.Fields, 2)
	assert.Equal(t, "n", result.Fields[0].Name)
	assert.NotZero(t, result.Fields[0].DataTypeID)

	table := fmt.Sprintf("pgservice_test_%d", time.Now().UnixNano())

	_, err = svc.Exec(ctx, fmt.Sprintf("CREATE TABLE %s (id int)", table), nil)
	require.NoError(t, err)
	defer func() {
		_, _ = svc.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table), nil)
	}()

	ins, err := svc.Exec(ctx, fmt.Sprintf("INSERT INTO %s (id) VALUES ($1), ($2)", table), []any{1, 2})
	require.NoError(t, err)
	assert.EqualValues(t, 2, ins.RowsAffected)
	assert.Equal(t, "INSERT", ins.Command)

	empty, err := svc.Query(ctx, fmt.Sprintf("SELECT id FROM %s WHERE id > $1", table), []any{100})
	require.NoError(t, err)
	assert.NotNil(t, empty.Rows)
	assert.EqualValues(t, 0, empty.RowCount)
	require.Len(t, empty.Fields, 1)
	assert.Equal(t, "id", empty.Fields[0].Name)
}
