package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"coin-rewards-backend/internal/platform/db"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// TestDatabase holds a disposable PostgreSQL instance with the schema applied.
type TestDatabase struct {
	Container *postgres.PostgresContainer
	DB        *sql.DB
	URL       string
}

// SetupTestDatabase starts a PostgreSQL container, runs the embedded
// migrations and returns an open connection. Cleanup is registered on t.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("coins_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)

	testDB := &TestDatabase{Container: container}
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if testDB.DB != nil {
			_ = testDB.DB.Close()
		}
		if err := testDB.Container.Terminate(cleanupCtx); err != nil {
			t.Logf("Warning: failed to terminate test container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, db.MigrateUp(connStr))

	conn, err := db.Open(ctx, connStr)
	require.NoError(t, err)

	testDB.DB = conn
	testDB.URL = connStr
	return testDB
}
