package service

import (
	"context"

	"github.com/xxxsen/labimport/internal/model"
	"github.com/xxxsen/labimport/internal/pkg/timeutil"
	"github.com/xxxsen/labimport/internal/repo"
)

type TagService struct {
	tags *repo.TagRepo
}

func NewTagService(tags *repo.TagRepo) *TagService {
	return &TagService{tags: tags}
}

// AddTag links text to the entity, creating the team tag on first use.
func (s *TagService) AddTag(ctx context.Context, entity model.EntityRef, text string) error {
	if text == "" {
		return nil
	}
	tag, err := s.tags.Ensure(ctx, newID(), entity.TeamID, text, timeutil.NowUnix())
	if err != nil {
		return err
	}
	return s.tags.Link(ctx, &model.EntityTag{
		TagID:      tag.ID,
		EntityID:   entity.ID,
		EntityKind: entity.Kind,
	})
}
