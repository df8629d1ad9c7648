package catalog

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeManifest(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "manifest.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save manifest: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, [][]any{
		{"Filename", "Blob Path", "Agent"},
		{"call1.mp3", "/recordings/call1.mp3", "Kim"},
		{"call2.mp3", "", "Ravi"},
		{"", "/recordings/orphan.mp3", ""},
	})

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	e, ok := cat.Lookup("call1.mp3")
	if !ok {
		t.Fatal("call1.mp3 not found")
	}
	if e.Path != "/recordings/call1.mp3" || e.Agent != "Kim" {
		t.Errorf("entry = %+v", e)
	}

	// A row without a path refers to the file itself.
	e, ok = cat.Lookup("call2.mp3")
	if !ok {
		t.Fatal("call2.mp3 not found")
	}
	if e.Path != "call2.mp3" {
		t.Errorf("path = %q, want filename fallback", e.Path)
	}

	// Rows without a filename are skipped.
	if got := len(cat.Filenames()); got != 2 {
		t.Errorf("len(Filenames) = %d, want 2", got)
	}
}

func TestLoad_MissingFilenameColumn(t *testing.T) {
	path := writeManifest(t, [][]any{
		{"Blob Path", "Agent"},
		{"/recordings/call1.mp3", "Kim"},
	})
	if _, err := Load(path); err == nil {
		t.Error("Load should fail without a filename column")
	}
}
