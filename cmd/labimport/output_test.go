package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/labimport/internal/model"
)

func TestRenderResult(t *testing.T) {
	var buf bytes.Buffer
	renderResult(&buf, &model.ImportResult{
		ArchivePath:        "a.zip",
		Kind:               model.KindItems,
		Inserted:           1,
		Entities:           []model.EntityRef{{Kind: model.KindItems, ID: "abc", UserID: "u1"}},
		Skipped:            []model.RecordFailure{{Position: 2, Title: "bad", Reason: "missing date"}},
		MissingAttachments: []string{"Antibody - x/y.png"},
	})
	out := buf.String()
	require.Contains(t, out, "inserted: 1")
	require.Contains(t, out, "abc")
	require.Contains(t, out, "missing date")
	require.Contains(t, out, "missing attachment: Antibody - x/y.png")

	buf.Reset()
	renderResult(&buf, nil)
	require.Empty(t, buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, &model.ImportResult{Kind: model.KindExperiments, Inserted: 3}))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "experiments", decoded["kind"])
	require.Equal(t, float64(3), decoded["inserted"])
}
