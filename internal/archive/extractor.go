package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	appErr "github.com/xxxsen/labimport/internal/pkg/errors"
)

const zipMIME = "application/zip"

type Options struct {
	// MaxArchiveSize caps the archive file size in bytes, 0 for no limit.
	MaxArchiveSize uint64
	// MaxEntries caps the number of entries, 0 for no limit.
	MaxEntries int
	// MaxExtractedSize caps the sum of uncompressed entry sizes, 0 for no limit.
	MaxExtractedSize uint64
}

type Extractor struct {
	opts Options
}

func NewExtractor(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// Validate checks that archivePath is a readable zip file without touching
// the filesystem.
func (e *Extractor) Validate(archivePath string) error {
	if strings.TrimSpace(archivePath) == "" {
		return fmt.Errorf("%w: archive path is empty", appErr.ErrArchiveUnreadable)
	}
	info, err := os.Stat(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %v", appErr.ErrArchiveUnreadable, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", appErr.ErrArchiveUnreadable, archivePath)
	}
	if e.opts.MaxArchiveSize > 0 && uint64(info.Size()) > e.opts.MaxArchiveSize {
		return fmt.Errorf("%w: archive is %s, limit %s", appErr.ErrArchiveUnreadable,
			humanize.Bytes(uint64(info.Size())), humanize.Bytes(e.opts.MaxArchiveSize))
	}
	mtype, err := mimetype.DetectFile(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %v", appErr.ErrArchiveUnreadable, err)
	}
	if !isZip(mtype) {
		return fmt.Errorf("%w: unexpected content type %s", appErr.ErrArchiveUnreadable, mtype.String())
	}
	return nil
}

func isZip(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is(zipMIME) {
			return true
		}
	}
	return false
}

// Extract creates destDir, which must not exist yet, and writes every entry
// of the archive below it. On failure destDir may be left partially filled;
// removing it is the caller's job.
func (e *Extractor) Extract(archivePath, destDir string) error {
	if err := os.Mkdir(destDir, 0o700); err != nil {
		return fmt.Errorf("%w: create %s: %v", appErr.ErrArchiveExtractionFailed, destDir, err)
	}
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %v", appErr.ErrArchiveUnreadable, err)
	}
	defer reader.Close()

	if e.opts.MaxEntries > 0 && len(reader.File) > e.opts.MaxEntries {
		return fmt.Errorf("%w: %d entries exceed limit %d", appErr.ErrArchiveExtractionFailed, len(reader.File), e.opts.MaxEntries)
	}
	var total uint64
	for _, file := range reader.File {
		total += file.UncompressedSize64
		if e.opts.MaxExtractedSize > 0 && total > e.opts.MaxExtractedSize {
			return fmt.Errorf("%w: extracted size exceeds %s", appErr.ErrArchiveExtractionFailed, humanize.Bytes(e.opts.MaxExtractedSize))
		}
	}
	for _, file := range reader.File {
		if err := e.extractEntry(file, destDir); err != nil {
			return fmt.Errorf("%w: %s: %v", appErr.ErrArchiveExtractionFailed, file.Name, err)
		}
	}
	return nil
}

func (e *Extractor) extractEntry(file *zip.File, destDir string) error {
	target, err := entryPath(destDir, file.Name)
	if err != nil {
		return err
	}
	limit, err := entryLimit(file.UncompressedSize64)
	if err != nil {
		return err
	}
	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	written, err := io.Copy(out, io.LimitReader(src, limit))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if uint64(written) > file.UncompressedSize64 {
		return fmt.Errorf("entry larger than declared size")
	}
	return nil
}

// entryLimit is the number of bytes read for an entry: its declared size plus
// one, so that a header understating the real size is detected.
func entryLimit(declared uint64) (int64, error) {
	if declared >= math.MaxInt64 {
		return 0, fmt.Errorf("declared size %d out of range", declared)
	}
	return int64(declared) + 1, nil
}

// entryPath maps an archive entry name below destDir, rejecting names that
// would escape it.
func entryPath(destDir, name string) (string, error) {
	cleaned := filepath.FromSlash(strings.ReplaceAll(name, "\\", "/"))
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, string(filepath.Separator)) {
		return "", fmt.Errorf("absolute entry path")
	}
	target := filepath.Join(destDir, cleaned)
	rel, err := filepath.Rel(destDir, target)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry escapes destination")
	}
	return target, nil
}
