package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/mcao2/button-layout/internal/layout"
)

func activatedSession(t *testing.T, store layout.Store) *layout.Session {
	t.Helper()
	s := layout.NewSession(store)
	if _, err := s.Activate(testButtons); err != nil {
		t.Fatalf("activate: %v", err)
	}
	return s
}

func TestExportLayoutToFile(t *testing.T) {
	s := activatedSession(t, layout.NewMemoryStore())
	if err := s.SetHidden(idBeta, true); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	first, err := ExportLayoutToFile(s, dir)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	second, err := ExportLayoutToFile(s, dir)
	if err != nil {
		t.Fatalf("second export failed: %v", err)
	}
	if first == second {
		t.Errorf("expected a fresh file name, got %s twice", first)
	}
	if !strings.HasSuffix(second, "button-layout-1.json") {
		t.Errorf("unexpected second file name %s", second)
	}

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}

	other := activatedSession(t, layout.NewMemoryStore())
	snap, err := ImportLayoutText(other, string(data))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if len(snap.Hidden) != 1 || snap.Hidden[0] != idBeta {
		t.Errorf("unexpected hidden set %v", snap.Hidden)
	}
	display, err := other.Display()
	if err != nil {
		t.Fatal(err)
	}
	if len(display) != 3 {
		t.Errorf("expected 2 buttons and the edit slot, got %d elements", len(display))
	}
}

func TestImportLayoutTextRejectsBadFolders(t *testing.T) {
	s := activatedSession(t, layout.NewMemoryStore())
	text := "```json\n" + `{"version":1,"folders":[{"id":"f1","name":"Solo","buttons":["` + idAlpha + `"]}]}` + "\n```"

	if _, err := ImportLayoutText(s, text); err == nil {
		t.Fatal("expected a folder with one member to be rejected")
	}
	folders, err := s.Folders()
	if err != nil {
		t.Fatal(err)
	}
	if len(folders) != 0 {
		t.Errorf("expected store untouched, got %v", folders)
	}
}
