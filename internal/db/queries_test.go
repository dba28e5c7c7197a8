package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a DBTX that remembers statements and returns scripted rows.
type recorder struct {
	sql  []string
	args [][]interface{}
	row  pgx.Row
}

func (r *recorder) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	r.sql = append(r.sql, sql)
	r.args = append(r.args, args)
	return pgconn.NewCommandTag("OK"), nil
}

func (r *recorder) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not scripted")
}

func (r *recorder) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	r.sql = append(r.sql, sql)
	r.args = append(r.args, args)
	return r.row
}

type errRow struct{ err error }

func (e errRow) Scan(...any) error { return e.err }

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestMigrateRunsSchema(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, Migrate(context.Background(), rec))
	require.Len(t, rec.sql, 1)
	assert.Contains(t, rec.sql[0], "CREATE TABLE IF NOT EXISTS snapshots")
}

func TestQueriesPassArgumentsAndErrors(t *testing.T) {
	rec := &recorder{row: errRow{pgx.ErrNoRows}}
	q := New(rec)
	ctx := context.Background()

	_, err := q.GetLatestSnapshot(ctx, "proj_1")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.Equal(t, []interface{}{"proj_1"}, rec.args[0])

	_, err = q.CreateSnapshot(ctx, CreateSnapshotParams{ID: "snap_1", ProjectID: "proj_1", Version: 3, Document: []byte("{}")})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.Equal(t, []interface{}{"snap_1", "proj_1", int32(3), []byte("{}")}, rec.args[1])

	require.NoError(t, q.DeleteProject(ctx, "proj_1"))
	assert.Equal(t, deleteProject, rec.sql[2])
}
