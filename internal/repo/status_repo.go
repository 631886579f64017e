package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/xxxsen/labimport/internal/model"
	"github.com/xxxsen/labimport/internal/pkg/dbutil"
	appErr "github.com/xxxsen/labimport/internal/pkg/errors"
)

type StatusRepo struct {
	db *sqlx.DB
}

func NewStatusRepo(db *sqlx.DB) *StatusRepo {
	return &StatusRepo{db: db}
}

func (r *StatusRepo) Create(ctx context.Context, status *model.Status) error {
	data := map[string]interface{}{
		"id":         status.ID,
		"team_id":    status.TeamID,
		"name":       status.Name,
		"color":      status.Color,
		"is_default": dbutil.BoolToInt(status.IsDefault),
	}
	sqlStr, args, err := builder.BuildInsert("status", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	q := conn(ctx, r.db)
	sqlStr, args = dbutil.Finalize(q, sqlStr, args)
	_, err = q.ExecContext(ctx, sqlStr, args...)
	return err
}

// GetDefault returns the status row a team marks as default.
func (r *StatusRepo) GetDefault(ctx context.Context, teamID string) (*model.Status, error) {
	where := map[string]interface{}{
		"team_id":    teamID,
		"is_default": 1,
		"_orderby":   "id asc",
		"_limit":     []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("status", where, []string{"id", "team_id", "name", "color", "is_default"})
	if err != nil {
		return nil, err
	}
	q := conn(ctx, r.db)
	sqlStr, args = dbutil.Finalize(q, sqlStr, args)
	var status model.Status
	if err := sqlx.GetContext(ctx, q, &status, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &status, nil
}
