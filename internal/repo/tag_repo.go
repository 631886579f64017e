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

type TagRepo struct {
	db *sqlx.DB
}

func NewTagRepo(db *sqlx.DB) *TagRepo {
	return &TagRepo{db: db}
}

// Ensure returns the team tag named text, creating it with the given id when
// it does not exist yet.
func (r *TagRepo) Ensure(ctx context.Context, id, teamID, text string, now int64) (*model.Tag, error) {
	q := conn(ctx, r.db)
	insert, args := dbutil.Finalize(q,
		"INSERT INTO tags (id, team_id, tag, ctime) VALUES (?, ?, ?, ?) ON CONFLICT (team_id, tag) DO NOTHING",
		[]interface{}{id, teamID, text, now})
	if _, err := q.ExecContext(ctx, insert, args...); err != nil {
		return nil, err
	}
	return r.GetByText(ctx, teamID, text)
}

func (r *TagRepo) GetByText(ctx context.Context, teamID, text string) (*model.Tag, error) {
	sqlStr, args, err := builder.BuildSelect("tags", map[string]interface{}{"team_id": teamID, "tag": text}, []string{"id", "team_id", "tag", "ctime"})
	if err != nil {
		return nil, err
	}
	q := conn(ctx, r.db)
	sqlStr, args = dbutil.Finalize(q, sqlStr, args)
	var tag model.Tag
	if err := sqlx.GetContext(ctx, q, &tag, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// Link attaches a tag to an entity; linking twice is a no-op.
func (r *TagRepo) Link(ctx context.Context, link *model.EntityTag) error {
	q := conn(ctx, r.db)
	sqlStr, args := dbutil.Finalize(q,
		"INSERT INTO tag2entity (tag_id, entity_id, entity_kind) VALUES (?, ?, ?) ON CONFLICT DO NOTHING",
		[]interface{}{link.TagID, link.EntityID, string(link.EntityKind)})
	_, err := q.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *TagRepo) ListByEntity(ctx context.Context, kind model.ImportKind, entityID string) ([]model.Tag, error) {
	q := conn(ctx, r.db)
	sqlStr, args := dbutil.Finalize(q, `
		SELECT t.id, t.team_id, t.tag, t.ctime
		FROM tags t
		JOIN tag2entity te ON te.tag_id = t.id
		WHERE te.entity_kind = ? AND te.entity_id = ?
		ORDER BY t.tag ASC
	`, []interface{}{string(kind), entityID})
	tags := make([]model.Tag, 0)
	if err := sqlx.SelectContext(ctx, q, &tags, sqlStr, args...); err != nil {
		return nil, err
	}
	return tags, nil
}
