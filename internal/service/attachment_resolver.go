package service

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xxxsen/labimport/internal/model"
)

var unsafeTitleChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

// AttachmentResolver maps the attachment references of a record to files in
// the extracted archive tree.
type AttachmentResolver struct{}

func NewAttachmentResolver() *AttachmentResolver {
	return &AttachmentResolver{}
}

// Resolve returns one entry per attachment reference, in record order.
// Entries whose file is absent or unreadable have Exists set to false.
func (r *AttachmentResolver) Resolve(rootDir string, kind model.ImportKind, rec model.ImportRecord) []model.ResolvedAttachment {
	if len(rec.Uploads) == 0 {
		return nil
	}
	folder := recordDir(rootDir, kind, rec)
	out := make([]model.ResolvedAttachment, 0, len(rec.Uploads))
	for _, ref := range rec.Uploads {
		att := model.ResolvedAttachment{
			DisplayName: ref.RealName,
			Comment:     ref.Comment,
		}
		switch {
		case ref.Path != "":
			if abs, ok := joinInside(rootDir, ref.Path); ok {
				att.AbsolutePath = abs
			}
			if att.DisplayName == "" {
				att.DisplayName = filepath.Base(filepath.FromSlash(ref.Path))
			}
		case ref.RealName != "":
			if abs, ok := joinInside(folder, ref.RealName); ok {
				att.AbsolutePath = abs
			}
		}
		att.Exists = att.AbsolutePath != "" && readableFile(att.AbsolutePath)
		out = append(out, att)
	}
	return out
}

// RecordFolder is the directory the exporter writes a record's attachments
// to, relative to the archive root.
func RecordFolder(kind model.ImportKind, rec model.ImportRecord) string {
	return folderName(kind, rec, SanitizeTitle(rec.Title))
}

// recordDir prefers the folder named the way the exporter writes it, one
// underscore per replaced byte, and falls back to RecordFolder.
func recordDir(rootDir string, kind model.ImportKind, rec model.ImportRecord) string {
	collapsed := filepath.Join(rootDir, RecordFolder(kind, rec))
	exact := filepath.Join(rootDir, folderName(kind, rec, exporterTitle(rec.Title)))
	if exact == collapsed {
		return collapsed
	}
	if info, err := os.Stat(exact); err == nil && info.IsDir() {
		return exact
	}
	return collapsed
}

func folderName(kind model.ImportKind, rec model.ImportRecord, title string) string {
	if kind == model.KindExperiments {
		return rec.Date + "-" + title
	}
	return rec.Category + " - " + title
}

// exporterTitle replaces every byte outside [A-Za-z0-9] with an underscore.
func exporterTitle(title string) string {
	b := []byte(stripSlashes(title))
	for i, c := range b {
		if !isAlnum(c) {
			b[i] = '_'
		}
	}
	return string(b)
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// SanitizeTitle strips escaping backslashes, then folds every run of
// characters outside [A-Za-z0-9] into a single underscore.
func SanitizeTitle(title string) string {
	return unsafeTitleChars.ReplaceAllString(stripSlashes(title), "_")
}

func stripSlashes(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

func joinInside(base, rel string) (string, bool) {
	cleaned := filepath.FromSlash(strings.ReplaceAll(rel, "\\", "/"))
	if filepath.IsAbs(cleaned) {
		return "", false
	}
	target := filepath.Join(base, cleaned)
	out, err := filepath.Rel(base, target)
	if err != nil || out == ".." || strings.HasPrefix(out, ".."+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}

func readableFile(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
