package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/labimport/internal/model"
	appErr "github.com/xxxsen/labimport/internal/pkg/errors"
	"github.com/xxxsen/labimport/internal/pkg/timeutil"
	"github.com/xxxsen/labimport/internal/repo"
)

type StatusProvider interface {
	DefaultStatus(ctx context.Context, teamID string) (*model.Status, error)
}

// RecordImporter turns one manifest record into one item or experiment row.
type RecordImporter struct {
	items       *repo.ItemRepo
	experiments *repo.ExperimentRepo
	statuses    StatusProvider
}

func NewRecordImporter(items *repo.ItemRepo, experiments *repo.ExperimentRepo, statuses StatusProvider) *RecordImporter {
	return &RecordImporter{items: items, experiments: experiments, statuses: statuses}
}

func (r *RecordImporter) Import(ctx context.Context, kind model.ImportKind, rec model.ImportRecord, identity model.Identity, target model.ImportTarget) (model.EntityRef, error) {
	if len(rec.MissingFields) > 0 {
		return model.EntityRef{}, fmt.Errorf("%w: missing %s", appErr.ErrInvalidRecord, strings.Join(rec.MissingFields, ", "))
	}
	switch kind {
	case model.KindItems:
		return r.importItem(ctx, rec, identity, target)
	case model.KindExperiments:
		return r.importExperiment(ctx, rec, identity, target)
	default:
		return model.EntityRef{}, fmt.Errorf("%w: unknown kind %q", appErr.ErrInvalidRecord, kind)
	}
}

func (r *RecordImporter) importItem(ctx context.Context, rec model.ImportRecord, identity model.Identity, target model.ImportTarget) (model.EntityRef, error) {
	if target.CategoryID == "" {
		return model.EntityRef{}, fmt.Errorf("%w: items need a target category", appErr.ErrInvalidRecord)
	}
	item := &model.Item{
		ID:         newID(),
		TeamID:     identity.TeamID,
		UserID:     identity.UserID,
		CategoryID: target.CategoryID,
		Title:      rec.Title,
		Date:       rec.Date,
		Body:       rec.Body,
		Ctime:      timeutil.NowUnix(),
	}
	if err := r.items.Create(ctx, item); err != nil {
		return model.EntityRef{}, persistenceError("insert item", err)
	}
	return model.EntityRef{Kind: model.KindItems, ID: item.ID, TeamID: item.TeamID, UserID: item.UserID}, nil
}

func (r *RecordImporter) importExperiment(ctx context.Context, rec model.ImportRecord, identity model.Identity, target model.ImportTarget) (model.EntityRef, error) {
	status, err := r.statuses.DefaultStatus(ctx, identity.TeamID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return model.EntityRef{}, fmt.Errorf("%w: team %s has no default status", appErr.ErrPersistenceFailed, identity.TeamID)
		}
		return model.EntityRef{}, fmt.Errorf("%w: load default status: %v", appErr.ErrPersistenceFailed, err)
	}
	owner := target.OwnerID
	if owner == "" {
		owner = identity.UserID
	}
	exp := &model.Experiment{
		ID:         newID(),
		TeamID:     identity.TeamID,
		UserID:     owner,
		Title:      rec.Title,
		Date:       rec.Date,
		Body:       rec.Body,
		Visibility: model.VisibilityTeam,
		StatusID:   status.ID,
		ElabID:     rec.ElabID,
		Ctime:      timeutil.NowUnix(),
	}
	if err := r.experiments.Create(ctx, exp); err != nil {
		return model.EntityRef{}, persistenceError("insert experiment", err)
	}
	return model.EntityRef{Kind: model.KindExperiments, ID: exp.ID, TeamID: exp.TeamID, UserID: exp.UserID}, nil
}

func persistenceError(op string, err error) error {
	if appErr.IsConflict(err) {
		return fmt.Errorf("%w: %s: duplicate row: %w", appErr.ErrPersistenceFailed, op, err)
	}
	return fmt.Errorf("%w: %s: %v", appErr.ErrPersistenceFailed, op, err)
}
