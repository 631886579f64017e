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

var experimentColumns = []string{"id", "team_id", "user_id", "title", "date", "body", "visibility", "status_id", "elabid", "ctime"}

type ExperimentRepo struct {
	db *sqlx.DB
}

func NewExperimentRepo(db *sqlx.DB) *ExperimentRepo {
	return &ExperimentRepo{db: db}
}

func (r *ExperimentRepo) Create(ctx context.Context, exp *model.Experiment) error {
	data := map[string]interface{}{
		"id":         exp.ID,
		"team_id":    exp.TeamID,
		"user_id":    exp.UserID,
		"title":      exp.Title,
		"date":       exp.Date,
		"body":       exp.Body,
		"visibility": exp.Visibility,
		"status_id":  exp.StatusID,
		"elabid":     exp.ElabID,
		"ctime":      exp.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("experiments", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	q := conn(ctx, r.db)
	sqlStr, args = dbutil.Finalize(q, sqlStr, args)
	_, err = q.ExecContext(ctx, sqlStr, args...)
	return dbutil.MapConflict(err, "experiment " + exp.ID)
}

func (r *ExperimentRepo) GetByID(ctx context.Context, teamID, id string) (*model.Experiment, error) {
	sqlStr, args, err := builder.BuildSelect("experiments", map[string]interface{}{"team_id": teamID, "id": id}, experimentColumns)
	if err != nil {
		return nil, err
	}
	q := conn(ctx, r.db)
	sqlStr, args = dbutil.Finalize(q, sqlStr, args)
	var exp model.Experiment
	if err := sqlx.GetContext(ctx, q, &exp, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &exp, nil
}

func (r *ExperimentRepo) ListByTeam(ctx context.Context, teamID string) ([]model.Experiment, error) {
	where := map[string]interface{}{"team_id": teamID, "_orderby": "ctime asc, id asc"}
	sqlStr, args, err := builder.BuildSelect("experiments", where, experimentColumns)
	if err != nil {
		return nil, err
	}
	q := conn(ctx, r.db)
	sqlStr, args = dbutil.Finalize(q, sqlStr, args)
	items := make([]model.Experiment, 0)
	if err := sqlx.SelectContext(ctx, q, &items, sqlStr, args...); err != nil {
		return nil, err
	}
	return items, nil
}
