package service

import (
	"context"
	"strings"

	"github.com/xxxsen/labimport/internal/model"
)

const tagSeparator = "|"

type Tagger interface {
	AddTag(ctx context.Context, entity model.EntityRef, text string) error
}

type TagIngestor struct {
	tagger Tagger
}

func NewTagIngestor(tagger Tagger) *TagIngestor {
	return &TagIngestor{tagger: tagger}
}

// Ingest hands every "|" separated part of tags to the tagger, in order and
// untrimmed. Strings of one byte or less carry no tags.
func (t *TagIngestor) Ingest(ctx context.Context, entity model.EntityRef, tags string) error {
	if len(tags) <= 1 {
		return nil
	}
	for _, part := range strings.Split(tags, tagSeparator) {
		if err := t.tagger.AddTag(ctx, entity, part); err != nil {
			return err
		}
	}
	return nil
}
