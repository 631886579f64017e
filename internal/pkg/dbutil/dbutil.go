package dbutil

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	appErr "github.com/xxxsen/labimport/internal/pkg/errors"
)

var limitRegex = regexp.MustCompile(`(?i)LIMIT\s+\?\s*,\s*\?`)

type Binder interface {
	DriverName() string
	Rebind(query string) string
}

// Finalize turns a gendry-built query into the placeholder dialect of b.
// For postgres the MySQL style "LIMIT ?,?" is rewritten to "LIMIT ? OFFSET ?".
func Finalize(b Binder, query string, args []interface{}) (string, []interface{}) {
	if sqlx.BindType(b.DriverName()) == sqlx.DOLLAR {
		loc := limitRegex.FindStringIndex(query)
		if loc != nil {
			prefix := query[:loc[0]]
			qCount := strings.Count(prefix, "?")
			if qCount+1 < len(args) {
				args[qCount], args[qCount+1] = args[qCount+1], args[qCount]
				query = limitRegex.ReplaceAllString(query, "LIMIT ? OFFSET ?")
			}
		}
	}
	return b.Rebind(query), args
}

func IsConflict(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// MapConflict turns a unique or primary key violation into appErr.ErrConflict
// and returns any other error unchanged.
func MapConflict(err error, what string) error {
	if err == nil || !IsConflict(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", appErr.ErrConflict, what, err)
}

func BoolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
