package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/labimport/internal/model"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Sample/Test #1", want: "Sample_Test_1"},
		{in: "plain", want: "plain"},
		{in: "a  b", want: "a_b"},
		{in: `It\'s done`, want: "It_s_done"},
		{in: `back\\slash`, want: "back_slash"},
		{in: "Ünïcode", want: "_n_code"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, SanitizeTitle(tt.in))
		})
	}
}

func TestRecordFolder(t *testing.T) {
	rec := model.ImportRecord{Title: "Sample/Test #1", Date: "20170203", Category: "Antibody"}
	require.Equal(t, "20170203-Sample_Test_1", RecordFolder(model.KindExperiments, rec))
	require.Equal(t, "Antibody - Sample_Test_1", RecordFolder(model.KindItems, rec))
}

func TestResolveExperimentAttachments(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "20170203-Sample_Test_1")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "data.csv"), []byte("a,b"), 0o644))

	rec := model.ImportRecord{
		Title: "Sample/Test #1",
		Date:  "20170203",
		Uploads: []model.AttachmentRef{
			{Index: 0, RealName: "data.csv", Comment: "raw"},
			{Index: 1, RealName: "gone.png"},
			{Index: 2},
		},
	}
	got := NewAttachmentResolver().Resolve(root, model.KindExperiments, rec)
	require.Len(t, got, 3)
	require.Equal(t, model.ResolvedAttachment{
		AbsolutePath: filepath.Join(folder, "data.csv"),
		DisplayName:  "data.csv",
		Comment:      "raw",
		Exists:       true,
	}, got[0])
	require.False(t, got[1].Exists)
	require.Equal(t, filepath.Join(folder, "gone.png"), got[1].AbsolutePath)
	require.False(t, got[2].Exists)
	require.Empty(t, got[2].AbsolutePath)
}

func TestResolveItemAttachments(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "Antibody - Anti_GFP")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "sheet.pdf"), []byte("%PDF-1.4"), 0o644))

	rec := model.ImportRecord{
		Title:    "Anti GFP",
		Category: "Antibody",
		Uploads:  []model.AttachmentRef{{RealName: "sheet.pdf"}},
	}
	got := NewAttachmentResolver().Resolve(root, model.KindItems, rec)
	require.Len(t, got, 1)
	require.True(t, got[0].Exists)
	require.Equal(t, filepath.Join(folder, "sheet.pdf"), got[0].AbsolutePath)
}

func TestResolveExplicitPath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "files"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "files", "x.bin"), []byte{1, 2}, 0o644))

	rec := model.ImportRecord{
		Title: "anything",
		Date:  "20200101",
		Uploads: []model.AttachmentRef{
			{Path: "files/x.bin"},
			{RealName: "evil", Path: "../outside"},
			{RealName: "dir", Path: "files"},
		},
	}
	got := NewAttachmentResolver().Resolve(root, model.KindExperiments, rec)
	require.Len(t, got, 3)
	require.True(t, got[0].Exists)
	require.Equal(t, "x.bin", got[0].DisplayName)
	require.False(t, got[1].Exists)
	require.Empty(t, got[1].AbsolutePath)
	require.False(t, got[2].Exists)
}

func TestResolveWithoutUploads(t *testing.T) {
	require.Nil(t, NewAttachmentResolver().Resolve(t.TempDir(), model.KindItems, model.ImportRecord{Title: "x"}))
}

func TestResolvePrefersExporterFolder(t *testing.T) {
	root := t.TempDir()
	exact := filepath.Join(root, "20170203-a__b")
	require.NoError(t, os.MkdirAll(exact, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(exact, "f.txt"), []byte("x"), 0o644))

	rec := model.ImportRecord{Title: "a  b", Date: "20170203", Uploads: []model.AttachmentRef{{RealName: "f.txt"}}}
	got := NewAttachmentResolver().Resolve(root, model.KindExperiments, rec)
	require.Len(t, got, 1)
	require.True(t, got[0].Exists)
	require.Equal(t, filepath.Join(exact, "f.txt"), got[0].AbsolutePath)

	rec.Uploads = []model.AttachmentRef{{RealName: "other.txt"}}
	got = NewAttachmentResolver().Resolve(t.TempDir(), model.KindExperiments, rec)
	require.False(t, got[0].Exists)
	require.Equal(t, "20170203-a_b", filepath.Base(filepath.Dir(got[0].AbsolutePath)))
}

func TestExporterTitle(t *testing.T) {
	require.Equal(t, "Sample_Test__1", exporterTitle("Sample/Test #1"))
	require.Equal(t, "It_s", exporterTitle(`It\'s`))
	require.Equal(t, "__", exporterTitle("Ü"))
}
