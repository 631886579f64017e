package repo

import (
	"context"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/xxxsen/labimport/internal/model"
	"github.com/xxxsen/labimport/internal/pkg/dbutil"
)

var uploadColumns = []string{
	"id", "entity_id", "entity_kind", "team_id", "user_id", "real_name", "long_name", "comment", "hash", "mime_type", "size", "ctime",
}

type UploadRepo struct {
	db *sqlx.DB
}

func NewUploadRepo(db *sqlx.DB) *UploadRepo {
	return &UploadRepo{db: db}
}

func (r *UploadRepo) Create(ctx context.Context, upload *model.Upload) error {
	data := map[string]interface{}{
		"id":          upload.ID,
		"entity_id":   upload.EntityID,
		"entity_kind": string(upload.EntityKind),
		"team_id":     upload.TeamID,
		"user_id":     upload.UserID,
		"real_name":   upload.RealName,
		"long_name":   upload.LongName,
		"comment":     upload.Comment,
		"hash":        upload.Hash,
		"mime_type":   upload.MimeType,
		"size":        upload.Size,
		"ctime":       upload.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("uploads", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	q := conn(ctx, r.db)
	sqlStr, args = dbutil.Finalize(q, sqlStr, args)
	_, err = q.ExecContext(ctx, sqlStr, args...)
	return dbutil.MapConflict(err, "upload " + upload.ID)
}

func (r *UploadRepo) ListByEntity(ctx context.Context, kind model.ImportKind, entityID string) ([]model.Upload, error) {
	where := map[string]interface{}{
		"entity_kind": string(kind),
		"entity_id":   entityID,
		"_orderby":    "ctime asc, real_name asc",
	}
	sqlStr, args, err := builder.BuildSelect("uploads", where, uploadColumns)
	if err != nil {
		return nil, err
	}
	q := conn(ctx, r.db)
	sqlStr, args = dbutil.Finalize(q, sqlStr, args)
	items := make([]model.Upload, 0)
	if err := sqlx.SelectContext(ctx, q, &items, sqlStr, args...); err != nil {
		return nil, err
	}
	return items, nil
}
