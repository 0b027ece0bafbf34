package postgres_test

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"primes/pkg/storage/postgres"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testUser     = "postgres"
	testPassword = "postgres"
	testDB       = "testdb"
)

type postgresContainer struct {
	Container testcontainers.Container
	Host      string
	Port      int
}

// shared is started once per package run; every test gets its own database.
var shared *postgresContainer //nolint: gochecknoglobals

func startPostgresContainer(ctx context.Context) (*postgresContainer, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       testDB,
			},
			// the server restarts once after running the init scripts
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get container host: %w", err)
	}
	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return nil, fmt.Errorf("could not get mapped port: %w", err)
	}

	return &postgresContainer{Container: container, Host: host, Port: mappedPort.Int()}, nil
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	c, err := startPostgresContainer(ctx)
	if err != nil {
		log.Fatalf("could not start postgres: %v", err)
	}
	shared = c

	code := m.Run()
	_ = c.Container.Terminate(ctx)
	os.Exit(code)
}

func connect(ctx context.Context, database string) (*postgres.PgSQL, error) {
	return postgres.New(ctx, postgres.Options{ //nolint: wrapcheck
		Username:           testUser,
		Password:           testPassword,
		Host:               shared.Host,
		Port:               shared.Port,
		Database:           database,
		SslMode:            "disable",
		ConnMaxLifetime:    time.Minute,
		ConnMaxIdleTime:    time.Minute,
		MaxOpenConnections: 5,
		MaxIdleConnections: 1,
	})
}

// setupTestDB creates and migrates a fresh database. The returned func closes
// the connection and drops the database.
func setupTestDB(t *testing.T) (*postgres.PgSQL, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	admin, err := connect(ctx, testDB)
	require.NoError(t, err)
	name := "t_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.DB.ExecContext(ctx, "CREATE DATABASE "+name)
	require.NoError(t, err)

	pgSQL, err := connect(ctx, name)
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, pgSQL.DB.(*sql.DB)))

	return pgSQL, func() {
		_ = pgSQL.Close()
		_, _ = admin.DB.ExecContext(ctx, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)")
		_ = admin.Close()
	}
}

func TestNew_UnreachableServer(t *testing.T) {
	pg, err := postgres.New(context.Background(), postgres.Options{
		Username: testUser,
		Host:     "127.0.0.1",
		Port:     1,
		Database: testDB,
		SslMode:  "disable",
	})
	// the pool connects lazily, so only a malformed config fails here
	require.NoError(t, err)
	require.NoError(t, pg.Close())

	_, err = postgres.New(context.Background(), postgres.Options{Port: -1, SslMode: "bogus"})
	require.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)

	// setupTestDB already migrated once
	require.NoError(t, postgres.Migrate(context.Background(), pgSQL.DB.(*sql.DB)))

	var count int
	require.NoError(t, pgSQL.DB.QueryRowContext(context.Background(),
		"SELECT count(*) FROM scans").Scan(&count))
	require.Zero(t, count)
}
