package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE id = ? AND b = ?"
	assert.Equal(t, q, Rebind(DriverMySQL, q))
	assert.Equal(t, q, Rebind(DriverSQLite, q))
	assert.Equal(t, "SELECT a FROM t WHERE id = $1 AND b = $2", Rebind(DriverPostgres, q))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	require.Error(t, err)
}

func TestExecuteTransaction(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	err = ExecuteTransaction(ctx, db, []func(*sql.Tx) error{
		func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "INSERT INTO t (id) VALUES (1)")
			return err
		},
		func(tx *sql.Tx) error {
			return errors.New("abort")
		},
	})
	require.Error(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&n))
	assert.Equal(t, 0, n, "failed transaction must roll back")

	err = ExecuteTransaction(ctx, db, []func(*sql.Tx) error{
		func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "INSERT INTO t (id) VALUES (1)")
			return err
		},
	})
	require.NoError(t, err)
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&n))
	assert.Equal(t, 1, n)
}
