package dbutil

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/labimport/internal/pkg/errors"
)

type fakeBinder string

func (f fakeBinder) DriverName() string { return string(f) }

func (f fakeBinder) Rebind(query string) string {
	return sqlx.Rebind(sqlx.BindType(string(f)), query)
}

func TestFinalizePostgresLimit(t *testing.T) {
	query, args := Finalize(fakeBinder("postgres"), "SELECT id FROM status WHERE team_id=? LIMIT ?,?", []interface{}{"t", 0, 1})
	require.Equal(t, "SELECT id FROM status WHERE team_id=$1 LIMIT $2 OFFSET $3", query)
	require.Equal(t, []interface{}{"t", 1, 0}, args)
}

func TestFinalizeSQLiteKeepsQuery(t *testing.T) {
	query, args := Finalize(fakeBinder("sqlite"), "SELECT id FROM status WHERE team_id=? LIMIT ?,?", []interface{}{"t", 0, 1})
	require.Equal(t, "SELECT id FROM status WHERE team_id=? LIMIT ?,?", query)
	require.Equal(t, []interface{}{"t", 0, 1}, args)
}

func TestIsConflict(t *testing.T) {
	require.True(t, IsConflict(&pq.Error{Code: "23505"}))
	require.False(t, IsConflict(&pq.Error{Code: "23503"}))
	require.False(t, IsConflict(errors.New("boom")))
	require.False(t, IsConflict(nil))
}

func TestBoolToInt(t *testing.T) {
	require.Equal(t, 1, BoolToInt(true))
	require.Equal(t, 0, BoolToInt(false))
}

func TestMapConflict(t *testing.T) {
	require.NoError(t, MapConflict(nil, "item x"))

	plain := errors.New("disk i/o")
	require.Equal(t, plain, MapConflict(plain, "item x"))

	err := MapConflict(&pq.Error{Code: "23505"}, "item x")
	require.ErrorIs(t, err, appErr.ErrConflict)
	require.Contains(t, err.Error(), "item x")
}
