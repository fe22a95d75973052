// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"database/sql"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-divvy/divvy/cmd/httpserver"
	"github.com/go-divvy/divvy/db"
	"github.com/go-divvy/divvy/internal/middleware"
	"github.com/go-divvy/divvy/pkg/configpkg"
	"github.com/go-divvy/divvy/pkg/dbpkg"
	"github.com/rs/zerolog"
)

// SetupServer returns test server that cleans up database after each integration test.
func SetupServer(t *testing.T) *httpserver.Server {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		t.Fatalf(`configpkg.Load("../../configs") returned error: %v`, err)
	}

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.CreateLogger(config)

	conn := SetupDB(t, config.DBDriver, config.DBSource)

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.New(conn, logger, config)
	if err != nil {
		t.Fatalf(`httpserver.New(conn, logger, config) returned error: %v`, err)
	}

	return server
}

// Flush flushes all db tables without droping.
// The schema_migrations table is kept so migrations are not reapplied.
func Flush(t *testing.T, conn *sql.DB) {
	t.Helper()

	var tables string

	const query = `
	SELECT string_agg(table_name, ', ')
	FROM information_schema.tables
	WHERE table_schema='public' AND table_name != 'schema_migrations';`

	row := conn.QueryRow(query)

	err := row.Scan(&tables)
	if err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}

	if _, err := conn.Exec(`TRUNCATE TABLE ` + tables + " CASCADE"); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB sets up a migrated database connection for testing and then cleans it.
func SetupDB(t *testing.T, driver, source string) *sql.DB {
	t.Helper()

	migrateDB(t, driver, source)

	conn, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, conn)

		if err := conn.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return conn
}

// SetupTX sets up a transaction on a migrated database to be used in tests.
//
// Once the tests are done it will rollback the transaction.
func SetupTX(t *testing.T, driver, source string) *sql.Tx {
	t.Helper()

	migrateDB(t, driver, source)

	return dbpkg.SetupTX(t, driver, source)
}

func migrateDB(t *testing.T, driver, source string) {
	t.Helper()

	if err := dbpkg.Migrate(driver, source, db.MigrationFS, "migration"); err != nil {
		t.Fatalf("dbpkg.Migrate(...) returned error: %v", err)
	}
}
