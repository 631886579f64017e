package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/labimport/internal/archive"
	"github.com/xxxsen/labimport/internal/config"
	"github.com/xxxsen/labimport/internal/manifest"
	"github.com/xxxsen/labimport/internal/model"
	appErr "github.com/xxxsen/labimport/internal/pkg/errors"
	"github.com/xxxsen/labimport/internal/workspace"
)

type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EntityImporter interface {
	Import(ctx context.Context, kind model.ImportKind, rec model.ImportRecord, identity model.Identity, target model.ImportTarget) (model.EntityRef, error)
}

type Attacher interface {
	AttachFile(ctx context.Context, entity model.EntityRef, absPath, displayName, comment string) (*model.Upload, error)
	Discard(ctx context.Context, uploads []*model.Upload)
}

type ImportRequest struct {
	ArchivePath string
	Identity    model.Identity
	Target      model.ImportTarget
}

type ImportOptions struct {
	// OnInvalidRecord is config.InvalidRecordAbort or config.InvalidRecordSkip.
	OnInvalidRecord string
}

type sessionState string

const (
	stateCreated        sessionState = "created"
	stateExtracted      sessionState = "extracted"
	stateManifestLoaded sessionState = "manifest_loaded"
	stateImporting      sessionState = "importing"
	stateFinished       sessionState = "finished"
	stateAborted        sessionState = "aborted"
)

// ImportService runs archive imports. Each call to Import is an independent
// session with its own workspace.
type ImportService struct {
	tx         TxRunner
	entities   EntityImporter
	attacher   Attacher
	tags       *TagIngestor
	resolver   *AttachmentResolver
	extractor  *archive.Extractor
	manifests  *manifest.Reader
	workspaces *workspace.Manager
	opts       ImportOptions
}

func NewImportService(tx TxRunner, entities EntityImporter, attacher Attacher, tags *TagIngestor,
	extractor *archive.Extractor, manifests *manifest.Reader, workspaces *workspace.Manager, opts ImportOptions) *ImportService {
	if opts.OnInvalidRecord == "" {
		opts.OnInvalidRecord = config.InvalidRecordAbort
	}
	return &ImportService{
		tx:         tx,
		entities:   entities,
		attacher:   attacher,
		tags:       tags,
		resolver:   NewAttachmentResolver(),
		extractor:  extractor,
		manifests:  manifests,
		workspaces: workspaces,
		opts:       opts,
	}
}

// Import extracts the archive, reads its manifest and persists every record.
// The returned result is never nil; on error it holds what was committed
// before the failure. The extraction workspace is always removed.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*model.ImportResult, error) {
	result := &model.ImportResult{
		ArchivePath:        req.ArchivePath,
		Entities:           []model.EntityRef{},
		Skipped:            []model.RecordFailure{},
		MissingAttachments: []string{},
	}
	logger := logutil.GetLogger(ctx).With(
		zap.String("archive", req.ArchivePath),
		zap.String("user_id", req.Identity.UserID),
		zap.String("team_id", req.Identity.TeamID),
	)
	state := stateCreated
	abort := func(phase appErr.Phase, position int, title string, err error) (*model.ImportResult, error) {
		logger.Error("import aborted",
			zap.String("state", string(state)),
			zap.Int("inserted", result.Inserted),
			zap.Error(err),
		)
		state = stateAborted
		return result, &appErr.ImportError{Phase: phase, Position: position, Title: title, Err: err}
	}

	if err := validateRequest(req); err != nil {
		return abort(appErr.PhaseValidate, -1, "", err)
	}
	if err := s.extractor.Validate(req.ArchivePath); err != nil {
		return abort(appErr.PhaseValidate, -1, "", err)
	}

	ws, err := s.workspaces.Acquire()
	if err != nil {
		return abort(appErr.PhaseExtract, -1, "", fmt.Errorf("%w: %v", appErr.ErrArchiveExtractionFailed, err))
	}
	defer func() {
		if err := ws.Release(); err != nil {
			logger.Warn("workspace cleanup failed", zap.String("dir", ws.Dir), zap.Error(err))
			return
		}
		logger.Debug("workspace removed", zap.String("dir", ws.Dir), zap.String("state", string(state)))
	}()

	if err := s.extractor.Extract(req.ArchivePath, ws.Dir); err != nil {
		return abort(appErr.PhaseExtract, -1, "", err)
	}
	state = stateExtracted

	kind, records, err := s.manifests.Read(ws.Dir)
	if err != nil {
		return abort(appErr.PhaseManifest, -1, "", err)
	}
	result.Kind = kind
	state = stateManifestLoaded
	logger.Info("manifest loaded", zap.String("kind", string(kind)), zap.Int("records", len(records)))

	state = stateImporting
	for _, rec := range records {
		ref, missing, err := s.importRecord(ctx, ws.Dir, kind, rec, req)
		if err != nil {
			if appErr.IsInvalidRecord(err) && s.opts.OnInvalidRecord == config.InvalidRecordSkip {
				logger.Warn("record skipped", zap.Int("position", rec.Position), zap.String("title", rec.Title), zap.Error(err))
				result.Skipped = append(result.Skipped, model.RecordFailure{
					Position: rec.Position,
					Title:    rec.Title,
					Reason:   err.Error(),
				})
				continue
			}
			return abort(appErr.PhaseImport, rec.Position, rec.Title, err)
		}
		result.Inserted++
		result.Entities = append(result.Entities, ref)
		result.MissingAttachments = append(result.MissingAttachments, missing...)
	}
	state = stateFinished
	logger.Info("import finished",
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("missing_attachments", len(result.MissingAttachments)),
	)
	return result, nil
}

// importRecord writes one record's entity, uploads and tags in a single
// transaction and returns the attachments that were not found.
func (s *ImportService) importRecord(ctx context.Context, rootDir string, kind model.ImportKind, rec model.ImportRecord, req ImportRequest) (model.EntityRef, []string, error) {
	var (
		ref      model.EntityRef
		missing  []string
		uploaded []*model.Upload
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		ref, err = s.entities.Import(ctx, kind, rec, req.Identity, req.Target)
		if err != nil {
			return err
		}
		for _, att := range s.resolver.Resolve(rootDir, kind, rec) {
			if !att.Exists {
				missing = append(missing, missingName(rootDir, kind, rec, att))
				continue
			}
			upload, err := s.attacher.AttachFile(ctx, ref, att.AbsolutePath, att.DisplayName, att.Comment)
			if err != nil {
				return fmt.Errorf("%w: attach %s: %v", appErr.ErrPersistenceFailed, att.DisplayName, err)
			}
			uploaded = append(uploaded, upload)
		}
		if err := s.tags.Ingest(ctx, ref, rec.Tags); err != nil {
			return fmt.Errorf("%w: tags: %v", appErr.ErrPersistenceFailed, err)
		}
		return nil
	})
	if err != nil {
		s.attacher.Discard(ctx, uploaded)
		if !appErr.IsInvalidRecord(err) && !errors.Is(err, appErr.ErrPersistenceFailed) {
			err = fmt.Errorf("%w: %v", appErr.ErrPersistenceFailed, err)
		}
		return model.EntityRef{}, nil, err
	}
	return ref, missing, nil
}

func missingName(rootDir string, kind model.ImportKind, rec model.ImportRecord, att model.ResolvedAttachment) string {
	if att.AbsolutePath != "" {
		if rel, err := filepath.Rel(rootDir, att.AbsolutePath); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return RecordFolder(kind, rec) + "/" + att.DisplayName
}

func validateRequest(req ImportRequest) error {
	if strings.TrimSpace(req.ArchivePath) == "" {
		return fmt.Errorf("%w: archive path is required", appErr.ErrInvalid)
	}
	if req.Identity.UserID == "" || req.Identity.TeamID == "" {
		return fmt.Errorf("%w: user and team are required", appErr.ErrInvalid)
	}
	return nil
}
