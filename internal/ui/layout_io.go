package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/mcao2/button-layout/internal/layout"
)

// Clipboard is the system clipboard, replaceable in tests
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

// SystemClipboard returns the clipboard of the desktop session.
func SystemClipboard() Clipboard { return systemClipboard{} }

func (systemClipboard) ReadAll() (string, error) { return clipboard.ReadAll() }

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// ExportLayoutJSON renders the persisted layout as indented JSON
func ExportLayoutJSON(s *layout.Session) (string, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal layout: %w", err)
	}
	return string(data), nil
}

// ImportLayoutText parses a pasted or saved layout and restores it
func ImportLayoutText(s *layout.Session, text string) (layout.Snapshot, error) {
	snap, err := layout.ParseSnapshot(text)
	if err != nil {
		return layout.Snapshot{}, err
	}
	if err := s.Restore(snap); err != nil {
		return layout.Snapshot{}, err
	}
	return snap, nil
}

// ExportLayoutToFile writes the layout to a new file in dir and returns the path
func ExportLayoutToFile(s *layout.Session, dir string) (string, error) {
	jsonData, err := ExportLayoutJSON(s)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "button-layout.json")

	counter := 1
	for {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(dir, fmt.Sprintf("button-layout-%d.json", counter))
		counter++
	}

	if err := os.WriteFile(path, []byte(jsonData), 0644); err != nil {
		return "", fmt.Errorf("failed to write layout file: %w", err)
	}
	return path, nil
}

// ExportToClipboard copies the layout to the clipboard
func (m *Model) ExportToClipboard() error {
	jsonData, err := ExportLayoutJSON(m.session)
	if err != nil {
		return err
	}
	if err := m.clipboard.WriteAll(jsonData); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// ImportFromClipboard restores the layout held in the clipboard
func (m *Model) ImportFromClipboard() (layout.Snapshot, error) {
	text, err := m.clipboard.ReadAll()
	if err != nil {
		return layout.Snapshot{}, fmt.Errorf("failed to read clipboard: %w", err)
	}
	return ImportLayoutText(m.session, text)
}
