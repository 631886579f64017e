package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/labimport/internal/filestore"
	"github.com/xxxsen/labimport/internal/model"
	"github.com/xxxsen/labimport/internal/pkg/timeutil"
	"github.com/xxxsen/labimport/internal/repo"
)

// UploadService stores attachment files and records them against entities.
type UploadService struct {
	uploads *repo.UploadRepo
	store   filestore.Store
}

func NewUploadService(uploads *repo.UploadRepo, store filestore.Store) *UploadService {
	return &UploadService{uploads: uploads, store: store}
}

// AttachFile stores the file at absPath under entity. displayName is the
// name users see; the file's base name is used when it is empty.
func (s *UploadService) AttachFile(ctx context.Context, entity model.EntityRef, absPath, displayName, comment string) (*model.Upload, error) {
	file, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, fmt.Errorf("detect mime: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return nil, fmt.Errorf("hash file: %w", err)
	}

	if displayName == "" {
		displayName = filepath.Base(absPath)
	}
	key := newID() + strings.ToLower(filepath.Ext(absPath))
	if err := s.store.Save(ctx, key, file, info.Size()); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}
	upload := &model.Upload{
		ID:         newID(),
		EntityID:   entity.ID,
		EntityKind: entity.Kind,
		TeamID:     entity.TeamID,
		UserID:     entity.UserID,
		RealName:   displayName,
		LongName:   key,
		Comment:    comment,
		Hash:       hex.EncodeToString(hasher.Sum(nil)),
		MimeType:   mtype.String(),
		Size:       info.Size(),
		Ctime:      timeutil.NowUnix(),
	}
	if err := s.uploads.Create(ctx, upload); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logutil.GetLogger(ctx).Warn("remove orphan blob failed", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	logutil.GetLogger(ctx).Debug("attachment stored",
		zap.String("entity_id", entity.ID),
		zap.String("name", upload.RealName),
		zap.String("size", humanize.Bytes(uint64(upload.Size))),
		zap.String("mime", upload.MimeType),
	)
	return upload, nil
}

// Discard removes the stored blobs of uploads whose rows were rolled back.
func (s *UploadService) Discard(ctx context.Context, uploads []*model.Upload) {
	for _, upload := range uploads {
		if upload == nil {
			continue
		}
		if err := s.store.Delete(ctx, upload.LongName); err != nil {
			logutil.GetLogger(ctx).Warn("discard blob failed", zap.String("key", upload.LongName), zap.Error(err))
		}
	}
}
