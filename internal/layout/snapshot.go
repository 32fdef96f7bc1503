package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const snapshotVersion = 1

var codeBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// Snapshot is a portable copy of every persisted layout value
type Snapshot struct {
	Version     int          `json:"version"`
	ExportedAt  time.Time    `json:"exported_at"`
	CustomOrder []string     `json:"custom_order"`
	ItemOrder   []OrderEntry `json:"item_order"`
	Hidden      []string     `json:"hidden"`
	Folders     []Folder     `json:"folders"`
}

// Validate checks the folder invariants a restored layout must satisfy.
func (snap Snapshot) Validate() error {
	ids := make(map[string]bool)
	members := make(map[string]string)
	for i, f := range snap.Folders {
		if f.ID == "" {
			return fmt.Errorf("folder %d: missing id", i)
		}
		if ids[f.ID] {
			return fmt.Errorf("folder %d: duplicate id %s", i, f.ID)
		}
		ids[f.ID] = true
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("folder %s: %w", f.ID, ErrEmptyFolderName)
		}
		if len(dedupe(f.Buttons)) < 2 {
			return fmt.Errorf("folder %s: %w", f.ID, ErrTooFewMembers)
		}
		for _, id := range f.Buttons {
			if owner, ok := members[id]; ok && owner != f.ID {
				return fmt.Errorf("folder %s: %w: %s", f.ID, ErrAlreadyInFolder, id)
			}
			members[id] = f.ID
		}
	}
	for i, e := range snap.ItemOrder {
		if e.Type != EntryFolder && e.Type != EntryButton {
			return fmt.Errorf("item order %d: unknown type %q", i, e.Type)
		}
	}
	return nil
}

// Snapshot captures the persisted layout.
func (s *Session) Snapshot() (Snapshot, error) {
	custom, err := s.CustomOrder()
	if err != nil {
		return Snapshot{}, err
	}
	folders, hidden, order, err := s.state()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Version:     snapshotVersion,
		ExportedAt:  time.Now().UTC(),
		CustomOrder: nonNil(custom),
		ItemOrder:   nonNil(order),
		Hidden:      nonNil(hidden),
		Folders:     nonNil(folders),
	}, nil
}

// Restore replaces the persisted layout with snap and re-activates the page.
// An invalid snapshot is rejected before anything is written.
func (s *Session) Restore(snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}

	writes := []struct {
		key   string
		value any
	}{
		{KeyCustomOrder, nonNil(snap.CustomOrder)},
		{KeyHidden, nonNil(snap.Hidden)},
		{KeyFolders, nonNil(snap.Folders)},
		{KeyItemOrder, nonNil(snap.ItemOrder)},
	}
	var errs []error
	for _, w := range writes {
		if err := s.store.Set(w.key, w.value); err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", w.key, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	_, err := s.Activate(s.buttons)
	return err
}

// ParseSnapshot extracts a snapshot from text. The JSON object may be bare
// or wrapped in a fenced code block, as it is when pasted from a chat.
func ParseSnapshot(text string) (Snapshot, error) {
	raw := extractObject(text)
	if raw == "" {
		return Snapshot{}, errors.New("no JSON object found")
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse layout: %w", err)
	}
	if snap.Version > snapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported layout version %d", snap.Version)
	}
	return snap, snap.Validate()
}

func extractObject(text string) string {
	if m := codeBlock.FindStringSubmatch(text); len(m) > 1 {
		trimmed := strings.TrimSpace(m[1])
		if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
			return trimmed
		}
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
