// Package sqltest opens in-memory SQLite databases for storage tests.
package sqltest

import (
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/cuongbtq/petstore/shared/logger"
	"github.com/cuongbtq/petstore/shared/postgresql"
)

// Open returns a client on a fresh in-memory database with the given schema
// files applied in order.
func Open(t testing.TB, schemaFiles ...string) *postgresql.Client {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	for _, path := range schemaFiles {
		schema, err := os.ReadFile(path)
		require.NoError(t, err, "read schema %s", path)
		_, err = db.Exec(string(schema))
		require.NoError(t, err, "apply schema %s", path)
	}

	return postgresql.NewFromDB(db, logger.NewNop().Logger)
}
