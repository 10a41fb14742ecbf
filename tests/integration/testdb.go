// Package integration runs the services against a real PostgreSQL started
// with testcontainers. The tests are skipped in -short mode.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/erp/manufacturing/internal/infrastructure/config"
	"github.com/erp/manufacturing/internal/infrastructure/migration"
	"github.com/erp/manufacturing/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm/logger"
)

// TestDB is a migrated PostgreSQL database owned by one test
type TestDB struct {
	*persistence.Database
	t *testing.T
}

// NewTestDB starts a PostgreSQL container, applies the embedded migrations
// and returns a connection with a pool large enough for concurrent tests.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test needs Docker; skipped with -short")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("manufacturing_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	database, err := persistence.NewDatabaseWithCustomLogger(&config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		DBName:          "manufacturing_test",
		SSLMode:         "disable",
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 5,
	}, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err, "Failed to connect to database")
	t.Cleanup(func() { _ = database.Close() })

	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, "", zaptest.NewLogger(t))
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to apply migrations")

	return &TestDB{Database: database, t: t}
}

// Count returns the number of rows in table matching the optional condition
func (tdb *TestDB) Count(table string, query string, args ...any) int64 {
	tdb.t.Helper()
	var n int64
	q := tdb.DB.Table(table)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(tdb.t, q.Count(&n).Error)
	return n
}
