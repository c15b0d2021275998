// Package integration runs the pricing engine against real PostgreSQL and
// Redis containers started with testcontainers. Every test here is skipped
// under -short.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nvictorme/nikola-sub002/internal/infrastructure/migration"
	"github.com/nvictorme/nikola-sub002/migrations"
)

var (
	sharedPG    testcontainers.Container
	sharedPGDSN string
	sharedPGMu  sync.Mutex
)

// TestDB is a migrated PostgreSQL database
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	DSN   string
	t     *testing.T
}

// skipShort skips container backed tests under -short
func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
}

// NewSharedTestDB returns a connection to a package wide PostgreSQL
// container, migrated once with the embedded schema. Tables are truncated
// before the test runs.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()
	skipShort(t)

	sharedPGMu.Lock()
	if sharedPG == nil {
		ctx := context.Background()
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("pricing_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			sharedPGMu.Unlock()
			require.NoError(t, err, "Failed to start PostgreSQL container")
		}
		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedPGMu.Unlock()
			require.NoError(t, err, "Failed to get connection string")
		}

		_, sqlDB := connect(t, dsn)
		applyMigrations(t, sqlDB)
		_ = sqlDB.Close()

		sharedPG = container
		sharedPGDSN = dsn
	}
	dsn := sharedPGDSN
	sharedPGMu.Unlock()

	db, sqlDB := connect(t, dsn)
	tdb := &TestDB{DB: db, SqlDB: sqlDB, DSN: dsn, t: t}
	tdb.CleanTables()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return tdb
}

// CleanTables empties every table except the migration bookkeeping
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	require.NoError(tdb.t, tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public' AND tablename != 'schema_migrations'
	`).Scan(&tables).Error)

	for _, table := range tables {
		require.NoError(tdb.t, tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %q CASCADE", table)).Error)
	}
}

func connect(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")
	sqlDB, err := db.DB()
	require.NoError(t, err)

	// Enough connections for the concurrent credit tests to really race
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	return db, sqlDB
}

func applyMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	m, err := migration.NewEmbedded(sqlDB, migrations.FS, ".", zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")

	status, err := m.Status()
	require.NoError(t, err)
	require.True(t, status.Applied)
	require.False(t, status.Dirty)
}

// NewRedisClient starts a throwaway Redis container and returns a client
// for it. The container is terminated on cleanup.
func NewRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	skipShort(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate Redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

// TerminateShared stops the shared PostgreSQL container. TestMain calls it.
func TerminateShared() {
	sharedPGMu.Lock()
	defer sharedPGMu.Unlock()

	if sharedPG != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedPG.Terminate(ctx)
		sharedPG = nil
		sharedPGDSN = ""
	}
}
