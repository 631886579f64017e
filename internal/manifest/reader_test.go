package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/labimport/internal/model"
	appErr "github.com/xxxsen/labimport/internal/pkg/errors"
)

func TestParseItems(t *testing.T) {
	data := `[
		{"title": "First", "body": "<p>one</p>", "date": "20170203", "category": "Antibody", "tags": "a|b",
		 "uploads": [{"real_name": "data.csv", "comment": "raw"}, {"real_name": "img.png", "path": "x/img.png"}]},
		{"title": "Second", "body": "", "date": "20170204", "category": "Antibody", "uploads": false}
	]`
	kind, records, err := NewReader(false).Parse([]byte(data))
	require.NoError(t, err)
	require.Equal(t, model.KindItems, kind)
	require.Len(t, records, 2)

	first := records[0]
	require.Equal(t, 0, first.Position)
	require.Equal(t, "First", first.Title)
	require.Equal(t, "<p>one</p>", first.Body)
	require.Equal(t, "20170203", first.Date)
	require.Equal(t, "Antibody", first.Category)
	require.Equal(t, "a|b", first.Tags)
	require.Empty(t, first.MissingFields)
	require.Equal(t, []model.AttachmentRef{
		{Index: 0, RealName: "data.csv", Comment: "raw"},
		{Index: 1, RealName: "img.png", Path: "x/img.png"},
	}, first.Uploads)

	second := records[1]
	require.Equal(t, 1, second.Position)
	require.Equal(t, "", second.Body)
	require.Empty(t, second.MissingFields)
	require.Empty(t, second.Uploads)
}

func TestParseSniffsExperimentsFromFirstRecord(t *testing.T) {
	data := `[
		{"title": "E1", "body": "b", "date": "20200101", "elabid": "20200101-abc"},
		{"title": "E2", "body": "b", "date": "20200102"}
	]`
	kind, records, err := NewReader(false).Parse([]byte(data))
	require.NoError(t, err)
	require.Equal(t, model.KindExperiments, kind)
	require.Len(t, records, 2)
	require.True(t, records[0].HasElabID)
	require.Equal(t, "20200101-abc", records[0].ElabID)
	require.False(t, records[1].HasElabID)
}

func TestParseFirstRecordWithoutElabIDMeansItems(t *testing.T) {
	data := `[
		{"title": "I1", "body": "b", "date": "20200101"},
		{"title": "E2", "body": "b", "date": "20200102", "elabid": "x"}
	]`
	kind, _, err := NewReader(false).Parse([]byte(data))
	require.NoError(t, err)
	require.Equal(t, model.KindItems, kind)
}

func TestParseStrictRejectsMixedKinds(t *testing.T) {
	data := `[
		{"title": "E1", "body": "b", "date": "20200101", "elabid": "a"},
		{"title": "E2", "body": "b", "date": "20200102"}
	]`
	_, _, err := NewReader(true).Parse([]byte(data))
	require.ErrorIs(t, err, appErr.ErrManifestMixedKinds)
	require.ErrorIs(t, err, appErr.ErrManifestMalformed)
}

func TestParseEnvelope(t *testing.T) {
	data := `{"kind": "experiments", "records": [{"title": "E1", "body": "b", "date": "20200101"}]}`
	kind, records, err := NewReader(false).Parse([]byte(data))
	require.NoError(t, err)
	require.Equal(t, model.KindExperiments, kind)
	require.Len(t, records, 1)

	_, _, err = NewReader(true).Parse([]byte(data))
	require.ErrorIs(t, err, appErr.ErrManifestMixedKinds)

	kind, _, err = NewReader(false).Parse([]byte(`{"records": [{"title": "x", "body": "", "date": "", "elabid": "1"}]}`))
	require.NoError(t, err)
	require.Equal(t, model.KindExperiments, kind)
}

func TestParseMissingRequiredFields(t *testing.T) {
	data := `[{"title": "only title", "body": null}]`
	_, records, err := NewReader(false).Parse([]byte(data))
	require.NoError(t, err)
	require.Equal(t, []string{"date", "body"}, records[0].MissingFields)
}

func TestParseEmptyList(t *testing.T) {
	kind, records, err := NewReader(true).Parse([]byte(`[]`))
	require.NoError(t, err)
	require.Equal(t, model.KindItems, kind)
	require.Empty(t, records)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `[{"title": `},
		{name: "scalar", data: `"hello"`},
		{name: "record not object", data: `[1, 2]`},
		{name: "envelope without records", data: `{"kind": "items"}`},
		{name: "envelope unknown kind", data: `{"kind": "samples", "records": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewReader(false).Parse([]byte(tt.data))
			require.ErrorIs(t, err, appErr.ErrManifestMalformed)
		})
	}
}

func TestReadMissingManifest(t *testing.T) {
	_, _, err := NewReader(false).Read(t.TempDir())
	require.ErrorIs(t, err, appErr.ErrManifestMissing)
}

func TestReadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`[{"title": "a", "body": "b", "date": "c"}]`), 0o644))
	kind, records, err := NewReader(false).Read(dir)
	require.NoError(t, err)
	require.Equal(t, model.KindItems, kind)
	require.Len(t, records, 1)
}
