//go:build integration

package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tbourn/go-risk-gateway/internal/config"
	"github.com/tbourn/go-risk-gateway/internal/domain"
)

func TestPostgres_MigrateInsertAndList(t *testing.T) {
	ctx := context.Background()

	pgContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("screen-db"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(config.DBConfig{Driver: config.DriverPostgres, URL: dsn, MaxOpenConns: 5, MaxIdleConns: 5}, false)
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db))
	// Running twice is a no-op.
	require.NoError(t, Migrate(ctx, db))

	raw := `{ "address": "0xABC",   "risk": "Low" }`
	first, err := CreateAssessment(ctx, db, "0xABC", "Low", domain.Payload(raw))
	require.NoError(t, err)
	second, err := CreateAssessment(ctx, db, "0xDEF", "High", domain.Payload(`[1,2,3]`))
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	got, err := ListLatestAssessments(ctx, db, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	// json (not jsonb) keeps the payload text as written.
	assert.Equal(t, raw, string(got[1].Data))

	count, maxID, err := AssessmentsStats(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.Equal(t, second.ID, maxID)

	require.NoError(t, Ping(ctx, db))
}
