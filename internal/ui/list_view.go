package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/mcao2/button-layout/internal/layout"
)

// ListView renders a scrolling list of layout elements. Rows are rendered by
// hand; the bubbles table only supplies the column and row types.
type ListView struct {
	elements    []layout.Element
	all         []layout.Item
	rows        []table.Row
	cursor      int
	width       int
	height      int
	visibleRows int // number of data rows visible (excluding header)

	headerStyle   lipgloss.Style
	cellStyle     lipgloss.Style
	selectedStyle lipgloss.Style
	hiddenStyle   lipgloss.Style
	columns       []table.Column
}

func listColumns(width int) []table.Column {
	// Each cell has Padding(0,1): 4 columns add 8 chars, plus 2 safety margin.
	fixedWidth := 2 + 8 + 10
	padding := 4*2 + 2
	nameWidth := width - fixedWidth - padding
	if nameWidth < 20 {
		nameWidth = 20
	}
	return []table.Column{
		{Title: " ", Width: 2},
		{Title: "Kind", Width: 8},
		{Title: "Category", Width: 10},
		{Title: "Name", Width: nameWidth},
	}
}

// listRows reserves space for: header(2) + divider(1) + detail pane(4) + status(1) + footer(4)
// and the table header (text + border).
func listRows(height int) int {
	visibleRows := height - 12 - 2
	if visibleRows < 3 {
		visibleRows = 3
	}
	return visibleRows
}

func NewListView(width, height int) ListView {
	lv := ListView{
		width:       width,
		height:      height,
		visibleRows: listRows(height),
		cellStyle:   lipgloss.NewStyle().Padding(0, 1),
		columns:     listColumns(width),
	}
	lv.UpdateTableStyles(Themes["default"])
	return lv
}

// UpdateTableStyles updates the styles to match the current theme
func (lv *ListView) UpdateTableStyles(theme Theme) {
	lv.headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(theme.Subtle)).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color(theme.Primary))
	lv.selectedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.Background)).
		Background(lipgloss.Color(theme.Primary)).
		Bold(false)
	lv.hiddenStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.Subtle))
}

// SetElements replaces the rows. all is the full item list used to
// disambiguate labels.
func (lv *ListView) SetElements(elements []layout.Element, all []layout.Item) {
	lv.elements = elements
	lv.all = all
	if lv.cursor >= len(elements) {
		lv.cursor = len(elements) - 1
	}
	if lv.cursor < 0 {
		lv.cursor = 0
	}
	lv.updateRows()
}

// SetItems shows plain items, as in a folder's contents.
func (lv *ListView) SetItems(items []layout.Item, all []layout.Item) {
	elements := make([]layout.Element, len(items))
	for i, it := range items {
		elements[i] = layout.Element{Kind: layout.KindItem, Item: it}
	}
	lv.SetElements(elements, all)
}

// SetFolders shows one row per folder.
func (lv *ListView) SetFolders(folders []layout.Folder, all []layout.Item) {
	elements := make([]layout.Element, len(folders))
	for i, f := range folders {
		elements[i] = layout.Element{Kind: layout.KindFolder, Folder: f}
	}
	lv.SetElements(elements, all)
}

func (lv *ListView) updateRows() {
	rows := make([]table.Row, len(lv.elements))
	for i, e := range lv.elements {
		rows[i] = table.Row{marker(e), e.Kind.String(), category(e), lv.name(e)}
	}
	lv.rows = rows
}

func marker(e layout.Element) string {
	switch {
	case e.Kind == layout.KindFolder:
		return "▸"
	case e.Hidden:
		return "◌"
	default:
		return "·"
	}
}

func category(e layout.Element) string {
	if e.Kind == layout.KindItem {
		return string(e.Item.Category)
	}
	return ""
}

func (lv *ListView) name(e layout.Element) string {
	switch e.Kind {
	case layout.KindFolder:
		return fmt.Sprintf("%s (%d)", e.Folder.Name, len(e.Folder.Buttons))
	case layout.KindEdit:
		return "Edit layout"
	}
	name := layout.DisplayName(e.Item, lv.all)
	if e.Hidden {
		name += " [hidden]"
	}
	return name
}

func Truncate(s string, maxLen int) string {
	if runewidth.StringWidth(s) > maxLen {
		return runewidth.Truncate(s, maxLen, "…")
	}
	return s
}

// detailPaneHeight is the fixed number of lines the detail pane always occupies.
const detailPaneHeight = 4

// DetailView renders a detail pane for the element under the cursor, padded
// to a fixed height.
func (lv *ListView) DetailView(width int, styles Styles) string {
	e := lv.Selected()
	if e == nil {
		return ""
	}

	maxWidth := width - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	var lines []string
	switch e.Kind {
	case layout.KindFolder:
		lines = append(lines, styles.Folder.Render(Truncate(e.Folder.Name, maxWidth)))
		lines = append(lines, styles.Help.Render(Truncate(e.Folder.ID, maxWidth)))
		names := make([]string, 0, len(e.Folder.Buttons))
		for _, id := range e.Folder.Buttons {
			names = append(names, lv.memberName(id))
		}
		lines = append(lines, styles.Normal.Render(Truncate("members: "+strings.Join(names, ", "), maxWidth)))
	case layout.KindItem:
		lines = append(lines, styles.Highlight.Render(Truncate(lv.name(*e), maxWidth)))
		lines = append(lines, styles.Help.Render(Truncate(e.Item.ID, maxWidth)))
		meta := []string{"cat:" + string(e.Item.Category)}
		if e.Item.Subtitle != "" {
			meta = append(meta, e.Item.Subtitle)
		}
		if len(e.Item.Classes) > 0 {
			meta = append(meta, strings.Join(e.Item.Classes, " "))
		}
		lines = append(lines, styles.HelpDesc.Render(Truncate(strings.Join(meta, " · "), maxWidth)))
	}

	for len(lines) < detailPaneHeight {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (lv *ListView) memberName(id string) string {
	for _, it := range lv.all {
		if it.ID == id {
			return layout.DisplayName(it, lv.all)
		}
	}
	return id
}

func (lv ListView) Cursor() int {
	return lv.cursor
}

func (lv ListView) Len() int {
	return len(lv.elements)
}

func (lv *ListView) SetCursor(pos int) {
	if pos >= 0 && pos < len(lv.elements) {
		lv.cursor = pos
	}
}

func (lv *ListView) MoveCursor(delta int) {
	lv.SetCursor(lv.cursor + delta)
}

// Selected returns the element under the cursor, or nil for an empty list.
func (lv ListView) Selected() *layout.Element {
	if lv.cursor >= 0 && lv.cursor < len(lv.elements) {
		return &lv.elements[lv.cursor]
	}
	return nil
}

// renderCell renders a single cell value with the given column width.
func (lv *ListView) renderCell(value string, colWidth int) string {
	style := lipgloss.NewStyle().Width(colWidth).MaxWidth(colWidth).Inline(true)
	return lv.cellStyle.Render(style.Render(runewidth.Truncate(value, colWidth, "…")))
}

// View renders the header and the visible window of rows around the cursor.
func (lv ListView) View() string {
	return lv.ViewRows(lv.visibleRows)
}

// ViewRows renders like View with a window of at most rows rows.
func (lv ListView) ViewRows(rows int) string {
	headerCells := make([]string, 0, len(lv.columns))
	for _, col := range lv.columns {
		style := lipgloss.NewStyle().Width(col.Width).MaxWidth(col.Width).Inline(true)
		cell := style.Render(runewidth.Truncate(col.Title, col.Width, "…"))
		headerCells = append(headerCells, lv.headerStyle.Render(lv.cellStyle.Render(cell)))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, headerCells...)

	visibleRows := rows
	if visibleRows <= 0 {
		visibleRows = 10
	}

	start := 0
	if lv.cursor >= visibleRows {
		start = lv.cursor - visibleRows + 1
	}
	end := start + visibleRows
	if end > len(lv.rows) {
		end = len(lv.rows)
		start = end - visibleRows
		if start < 0 {
			start = 0
		}
	}

	renderedRows := make([]string, 0, visibleRows)
	for i := start; i < end; i++ {
		cells := make([]string, 0, len(lv.columns))
		for ci, value := range lv.rows[i] {
			cells = append(cells, lv.renderCell(value, lv.columns[ci].Width))
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
		switch {
		case i == lv.cursor:
			row = lv.selectedStyle.Render(row)
		case lv.elements[i].Hidden:
			row = lv.hiddenStyle.Render(row)
		}
		renderedRows = append(renderedRows, row)
	}

	for len(renderedRows) < visibleRows {
		renderedRows = append(renderedRows, "")
	}

	return header + "\n" + strings.Join(renderedRows, "\n")
}

func (lv *ListView) SetWidthHeight(width, height int) {
	lv.width = width
	lv.height = height
	lv.columns = listColumns(width)
	lv.visibleRows = listRows(height)
}
