//go:build integration

package test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO required)

	"github.com/coregx/sqlcond"
)

// DatabaseSetup encapsulates database connection and cleanup.
type DatabaseSetup struct {
	DB        *sqlcond.DB
	Container testcontainers.Container
	Dialect   string
}

// Close cleans up database resources.
func (ds *DatabaseSetup) Close() {
	if ds.DB != nil {
		ds.DB.Close() //nolint:errcheck
	}
	if ds.Container != nil {
		ds.Container.Terminate(context.Background()) //nolint:errcheck
	}
}

// SetupPostgreSQLTestDB creates a PostgreSQL test database.
// Uses POSTGRES_TEST_DSN when set, else testcontainers.
func SetupPostgreSQLTestDB(t *testing.T) *DatabaseSetup {
	ctx := context.Background()

	if dsn := os.Getenv("POSTGRES_TEST_DSN"); dsn != "" {
		db, err := sqlcond.Open("postgres", dsn)
		require.NoError(t, err)
		return &DatabaseSetup{DB: db, Dialect: "postgres"}
	}

	pgContainer, err := postgres.Run(
		ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for PostgreSQL integration tests: " + err.Error())
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlcond.Open("postgres", dsn)
	require.NoError(t, err)
	return &DatabaseSetup{DB: db, Container: pgContainer, Dialect: "postgres"}
}

// SetupMySQLTestDB creates a MySQL test database.
// Uses MYSQL_TEST_DSN when set, else testcontainers.
func SetupMySQLTestDB(t *testing.T) *DatabaseSetup {
	ctx := context.Background()

	if dsn := os.Getenv("MYSQL_TEST_DSN"); dsn != "" {
		db, err := sqlcond.Open("mysql", withParseTime(dsn))
		require.NoError(t, err)
		return &DatabaseSetup{DB: db, Dialect: "mysql"}
	}

	mysqlContainer, err := mysql.Run(
		ctx,
		"mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("user"),
		mysql.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for MySQL integration tests: " + err.Error())
	}

	dsn, err := mysqlContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := sqlcond.Open("mysql", withParseTime(dsn))
	require.NoError(t, err)
	return &DatabaseSetup{DB: db, Container: mysqlContainer, Dialect: "mysql"}
}

// SetupSQLiteTestDB creates an in-memory SQLite database.
func SetupSQLiteTestDB(t *testing.T) *DatabaseSetup {
	db, err := sqlcond.Open("sqlite", ":memory:", sqlcond.WithMaxOpenConns(1))
	require.NoError(t, err)
	return &DatabaseSetup{DB: db, Dialect: "sqlite"}
}

// withParseTime makes the MySQL driver return DATETIME columns as time.Time.
func withParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime=true") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

// CreateMessagesTable creates the messages table used by the integration
// tests.
func CreateMessagesTable(t *testing.T, db *sqlcond.DB, dialect string) {
	var createSQL string

	switch dialect {
	case "postgres":
		createSQL = `
			CREATE TABLE IF NOT EXISTS messages (
				id SERIAL PRIMARY KEY,
				mailbox_id INTEGER NOT NULL,
				uid INTEGER NOT NULL,
				status INTEGER DEFAULT 1,
				subject TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (mailbox_id, uid)
			)
		`
	case "mysql":
		createSQL = `
			CREATE TABLE IF NOT EXISTS messages (
				id INT AUTO_INCREMENT PRIMARY KEY,
				mailbox_id INT NOT NULL,
				uid INT NOT NULL,
				status INT DEFAULT 1,
				subject TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE KEY mailbox_uid (mailbox_id, uid)
			)
		`
	case "sqlite":
		createSQL = `
			CREATE TABLE IF NOT EXISTS messages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				mailbox_id INTEGER NOT NULL,
				uid INTEGER NOT NULL,
				status INTEGER DEFAULT 1,
				subject TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (mailbox_id, uid)
			)
		`
	}

	ctx := context.Background()
	_, err := db.Exec(ctx, "DROP TABLE IF EXISTS messages")
	require.NoError(t, err)
	_, err = db.Exec(ctx, createSQL)
	require.NoError(t, err)
	db.ForgetSchema("messages")
}

// allDatabases returns a setup function per dialect.
func allDatabases() map[string]func(*testing.T) *DatabaseSetup {
	return map[string]func(*testing.T) *DatabaseSetup{
		"sqlite":   SetupSQLiteTestDB,
		"postgres": SetupPostgreSQLTestDB,
		"mysql":    SetupMySQLTestDB,
	}
}
