package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/xxxsen/labimport/internal/model"
)

func renderResult(w io.Writer, result *model.ImportResult) {
	if result == nil {
		return
	}
	fmt.Fprintf(w, "archive: %s\nkind: %s\ninserted: %d\n", result.ArchivePath, result.Kind, result.Inserted)
	if len(result.Entities) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"#", "Kind", "ID", "Owner"})
		for i, ref := range result.Entities {
			tw.AppendRow(table.Row{i + 1, ref.Kind, ref.ID, ref.UserID})
		}
		tw.Render()
	}
	if len(result.Skipped) > 0 {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleLight)
		tw.SetTitle("skipped records")
		tw.AppendHeader(table.Row{"Position", "Title", "Reason"})
		for _, failure := range result.Skipped {
			tw.AppendRow(table.Row{failure.Position, failure.Title, failure.Reason})
		}
		tw.Render()
	}
	for _, name := range result.MissingAttachments {
		fmt.Fprintf(w, "missing attachment: %s\n", name)
	}
}

func writeJSON(w io.Writer, result *model.ImportResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
