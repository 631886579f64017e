// Package manifest reads the metadata document bundled at the root of an
// export archive.
//
// Two shapes are accepted. The historical one is a bare JSON list of record
// objects; its kind is sniffed from the first record (an "elabid" key means
// experiments). The envelope shape {"kind": "...", "records": [...]} names
// the kind explicitly. In strict mode every record must agree with the kind.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/xxxsen/labimport/internal/model"
	appErr "github.com/xxxsen/labimport/internal/pkg/errors"
)

const FileName = ".elabftw.json"

var requiredFields = []string{"title", "date", "body"}

type Reader struct {
	strict bool
}

func NewReader(strict bool) *Reader {
	return &Reader{strict: strict}
}

func (r *Reader) Read(rootDir string) (model.ImportKind, []model.ImportRecord, error) {
	data, err := os.ReadFile(filepath.Join(rootDir, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, fmt.Errorf("%w: %s", appErr.ErrManifestMissing, FileName)
		}
		return "", nil, fmt.Errorf("%w: %v", appErr.ErrManifestMalformed, err)
	}
	return r.Parse(data)
}

func (r *Reader) Parse(data []byte) (model.ImportKind, []model.ImportRecord, error) {
	if !gjson.ValidBytes(data) {
		return "", nil, fmt.Errorf("%w: invalid json", appErr.ErrManifestMalformed)
	}
	root := gjson.ParseBytes(data)
	list := root
	var explicit model.ImportKind
	switch {
	case root.IsArray():
	case root.IsObject():
		list = root.Get("records")
		if !list.IsArray() {
			return "", nil, fmt.Errorf("%w: records must be a list", appErr.ErrManifestMalformed)
		}
		if kind := root.Get("kind"); kind.Exists() {
			explicit = model.ImportKind(kind.String())
			if !explicit.Valid() {
				return "", nil, fmt.Errorf("%w: unknown kind %q", appErr.ErrManifestMalformed, kind.String())
			}
		}
	default:
		return "", nil, fmt.Errorf("%w: top level must be a list", appErr.ErrManifestMalformed)
	}

	entries := list.Array()
	records := make([]model.ImportRecord, 0, len(entries))
	for i, entry := range entries {
		if !entry.IsObject() {
			return "", nil, fmt.Errorf("%w: record %d is not an object", appErr.ErrManifestMalformed, i)
		}
		records = append(records, parseRecord(i, entry))
	}

	kind := explicit
	if kind == "" {
		kind = sniffKind(records)
	}
	if r.strict {
		for _, rec := range records {
			if rec.HasElabID != (kind == model.KindExperiments) {
				return "", nil, fmt.Errorf("%w: record %d does not match %s", appErr.ErrManifestMixedKinds, rec.Position, kind)
			}
		}
	}
	return kind, records, nil
}

// sniffKind classifies the whole file by its first record only.
func sniffKind(records []model.ImportRecord) model.ImportKind {
	if len(records) > 0 && records[0].HasElabID {
		return model.KindExperiments
	}
	return model.KindItems
}

func parseRecord(position int, entry gjson.Result) model.ImportRecord {
	rec := model.ImportRecord{
		Position: position,
		Title:    entry.Get("title").String(),
		Body:     entry.Get("body").String(),
		Date:     entry.Get("date").String(),
		Tags:     entry.Get("tags").String(),
		Category: entry.Get("category").String(),
	}
	for _, field := range requiredFields {
		if !present(entry.Get(field)) {
			rec.MissingFields = append(rec.MissingFields, field)
		}
	}
	if elabID := entry.Get("elabid"); present(elabID) {
		rec.HasElabID = true
		rec.ElabID = elabID.String()
	}
	uploads := entry.Get("uploads")
	if uploads.IsArray() {
		for idx, up := range uploads.Array() {
			if !up.IsObject() {
				continue
			}
			rec.Uploads = append(rec.Uploads, model.AttachmentRef{
				Index:    idx,
				RealName: up.Get("real_name").String(),
				Comment:  up.Get("comment").String(),
				Path:     up.Get("path").String(),
			})
		}
	}
	return rec
}

func present(value gjson.Result) bool {
	return value.Exists() && value.Type != gjson.Null
}
