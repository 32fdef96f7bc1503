package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/mcao2/button-layout/internal/layout"
)

func testItems() []layout.Item {
	return []layout.Item{
		{ID: "view--online_Watch", Category: layout.CategoryOnline, Button: layout.Button{Classes: []string{"view--online"}, Label: "Watch", Subtitle: "HDRezka"}},
		{ID: "view--lampac_Watch", Category: layout.CategoryOnline, Button: layout.Button{Classes: []string{"view--lampac"}, Label: "Watch"}},
		{ID: "view--torrent_Torrents", Category: layout.CategoryTorrent, Button: layout.Button{Classes: []string{"view--torrent"}, Label: "Torrents"}},
	}
}

func TestListView_SetElements(t *testing.T) {
	items := testItems()
	lv := NewListView(80, 20)
	lv.SetElements([]layout.Element{
		{Kind: layout.KindItem, Item: items[0]},
		{Kind: layout.KindFolder, Folder: layout.Folder{ID: "f1", Name: "Mine", Buttons: []string{items[1].ID, items[2].ID}}},
		{Kind: layout.KindEdit},
	}, items)

	if lv.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", lv.Len())
	}
	if got := lv.rows[0][3]; got != "Watch (HDRezka)" {
		t.Errorf("expected disambiguated label, got %q", got)
	}
	if got := lv.rows[1][3]; got != "Mine (2)" {
		t.Errorf("expected folder row, got %q", got)
	}
	if got := lv.rows[2][3]; got != "Edit layout" {
		t.Errorf("expected edit row, got %q", got)
	}
	if lv.rows[1][0] != "▸" {
		t.Errorf("expected folder marker, got %q", lv.rows[1][0])
	}
}

func TestListView_HiddenMarker(t *testing.T) {
	items := testItems()
	lv := NewListView(80, 20)
	lv.SetElements([]layout.Element{{Kind: layout.KindItem, Item: items[2], Hidden: true}}, items)

	if lv.rows[0][0] != "◌" {
		t.Errorf("expected hidden marker, got %q", lv.rows[0][0])
	}
	if !strings.HasSuffix(lv.rows[0][3], "[hidden]") {
		t.Errorf("expected hidden suffix, got %q", lv.rows[0][3])
	}
}

func TestListView_CursorClampedOnShrink(t *testing.T) {
	items := testItems()
	lv := NewListView(80, 20)
	lv.SetItems(items, items)
	lv.SetCursor(2)

	lv.SetItems(items[:1], items)
	if lv.Cursor() != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", lv.Cursor())
	}

	lv.SetItems(nil, items)
	if lv.Selected() != nil {
		t.Error("expected no selection in an empty list")
	}
}

func TestListView_CursorBoundary(t *testing.T) {
	items := testItems()
	lv := NewListView(80, 24)
	lv.SetItems(items[:2], items)

	// SetCursor out of bounds should be ignored
	lv.SetCursor(10)
	if lv.Cursor() != 0 {
		t.Errorf("expected cursor 0 after out-of-bounds set, got %d", lv.Cursor())
	}

	lv.SetCursor(-1)
	if lv.Cursor() != 0 {
		t.Errorf("expected cursor 0 after negative set, got %d", lv.Cursor())
	}

	lv.MoveCursor(-1)
	if lv.Cursor() != 0 {
		t.Errorf("expected cursor 0 after negative move, got %d", lv.Cursor())
	}

	lv.MoveCursor(1)
	if lv.Cursor() != 1 {
		t.Errorf("expected cursor 1, got %d", lv.Cursor())
	}

	lv.MoveCursor(5)
	if lv.Cursor() != 1 {
		t.Errorf("expected cursor 1 after large move, got %d", lv.Cursor())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		max      int
		expected string
	}{
		{"Hello World", 5, "Hell…"},
		{"Hello", 10, "Hello"},
		{"こんにちは", 5, "こん…"},
	}

	for _, tt := range tests {
		got := Truncate(tt.input, tt.max)
		if got != tt.expected {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
		}
		if w := runewidth.StringWidth(got); w > tt.max {
			t.Errorf("Truncate(%q, %d) is %d cells wide", tt.input, tt.max, w)
		}
	}
}

func TestListView_SetWidthHeight(t *testing.T) {
	lv := NewListView(80, 24)
	lv.SetWidthHeight(120, 40)
	if lv.width != 120 || lv.height != 40 {
		t.Errorf("expected 120x40, got %dx%d", lv.width, lv.height)
	}
	if lv.visibleRows != 26 {
		t.Errorf("expected 26 visible rows, got %d", lv.visibleRows)
	}

	lv.SetWidthHeight(40, 5)
	if lv.visibleRows != 3 {
		t.Errorf("expected minimum of 3 visible rows, got %d", lv.visibleRows)
	}
}

func TestListView_ViewScrolls(t *testing.T) {
	var items []layout.Item
	for _, label := range []string{"One", "Two", "Three", "Four", "Five", "Six"} {
		items = append(items, layout.Item{ID: "view--x_" + label, Button: layout.Button{Label: label}})
	}
	lv := NewListView(80, 5) // 3 visible rows
	lv.SetItems(items, items)
	lv.SetCursor(5)

	view := lv.View()
	if strings.Contains(view, "One") {
		t.Error("expected first row scrolled out of view")
	}
	if !strings.Contains(view, "Six") {
		t.Error("expected cursor row to be visible")
	}
}

func TestListView_DetailView(t *testing.T) {
	items := testItems()
	styles := DefaultStyles()
	lv := NewListView(80, 24)
	lv.SetFolders([]layout.Folder{{ID: "f1", Name: "Mine", Buttons: []string{items[2].ID, "gone"}}}, items)

	detail := lv.DetailView(80, styles)
	if !strings.Contains(detail, "Torrents") || !strings.Contains(detail, "gone") {
		t.Errorf("expected member names in detail pane:\n%s", detail)
	}
	if lines := strings.Count(detail, "\n") + 1; lines != detailPaneHeight {
		t.Errorf("expected %d detail lines, got %d", detailPaneHeight, lines)
	}

	lv.SetItems(items[:1], items)
	detail = lv.DetailView(80, styles)
	if !strings.Contains(detail, items[0].ID) {
		t.Errorf("expected item id in detail pane:\n%s", detail)
	}

	lv.SetItems(nil, items)
	if lv.DetailView(80, styles) != "" {
		t.Error("expected empty detail pane for an empty list")
	}
}
