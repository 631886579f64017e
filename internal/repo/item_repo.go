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

var itemColumns = []string{"id", "team_id", "user_id", "category_id", "title", "date", "body", "ctime"}

type ItemRepo struct {
	db *sqlx.DB
}

func NewItemRepo(db *sqlx.DB) *ItemRepo {
	return &ItemRepo{db: db}
}

func (r *ItemRepo) Create(ctx context.Context, item *model.Item) error {
	data := map[string]interface{}{
		"id":          item.ID,
		"team_id":     item.TeamID,
		"user_id":     item.UserID,
		"category_id": item.CategoryID,
		"title":       item.Title,
		"date":        item.Date,
		"body":        item.Body,
		"ctime":       item.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("items", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	q := conn(ctx, r.db)
	sqlStr, args = dbutil.Finalize(q, sqlStr, args)
	_, err = q.ExecContext(ctx, sqlStr, args...)
	return dbutil.MapConflict(err, "item " + item.ID)
}

func (r *ItemRepo) GetByID(ctx context.Context, teamID, id string) (*model.Item, error) {
	sqlStr, args, err := builder.BuildSelect("items", map[string]interface{}{"team_id": teamID, "id": id}, itemColumns)
	if err != nil {
		return nil, err
	}
	q := conn(ctx, r.db)
	sqlStr, args = dbutil.Finalize(q, sqlStr, args)
	var item model.Item
	if err := sqlx.GetContext(ctx, q, &item, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepo) ListByTeam(ctx context.Context, teamID string) ([]model.Item, error) {
	where := map[string]interface{}{"team_id": teamID, "_orderby": "ctime asc, id asc"}
	sqlStr, args, err := builder.BuildSelect("items", where, itemColumns)
	if err != nil {
		return nil, err
	}
	q := conn(ctx, r.db)
	sqlStr, args = dbutil.Finalize(q, sqlStr, args)
	items := make([]model.Item, 0)
	if err := sqlx.SelectContext(ctx, q, &items, sqlStr, args...); err != nil {
		return nil, err
	}
	return items, nil
}
