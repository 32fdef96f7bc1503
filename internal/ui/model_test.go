package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mcao2/button-layout/internal/config"
	"github.com/mcao2/button-layout/internal/host"
	"github.com/mcao2/button-layout/internal/layout"
	"github.com/mcao2/button-layout/internal/ready"
	"github.com/mcao2/button-layout/internal/sources"
)

func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "button-layout-test")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(tmpDir)

	os.Setenv("BUTTON_LAYOUT_CONFIG", filepath.Join(tmpDir, "config.yaml"))

	os.Exit(m.Run())
}

const (
	idAlpha = "view--alpha_Alpha"
	idBeta  = "view--beta_Beta"
	idGamma = "view--gamma_Gamma"
)

var testButtons = []layout.Button{
	{Classes: []string{"full-start__button", "view--alpha"}, Label: "Alpha"},
	{Classes: []string{"full-start__button", "view--beta"}, Label: "Beta"},
	{Classes: []string{"full-start__button", "view--gamma"}, Label: "Gamma"},
}

var testSources = []sources.Source{
	{Title: "Zeta 720p"},
	{Title: "alpha 1080p"},
	{Title: "Offline", Ghost: true},
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) ReadAll() (string, error) { return c.text, c.err }

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func newTestModel(t *testing.T) (*Model, *layout.MemoryStore, *fakeClipboard) {
	t.Helper()
	store := layout.NewMemoryStore()
	n := 0
	session := layout.NewSession(store, layout.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("folder_%d", n)
	}))
	clip := &fakeClipboard{}
	m := NewModel(session, store, WithClipboard(clip))
	m.Update(LoadedMsg{Buttons: testButtons, Sources: testSources})
	if m.state != StateDisplay {
		t.Fatalf("expected StateDisplay after load, got %v", m.state)
	}
	return m, store, clip
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyMsg(k))
	}
	return cmd
}

func listIDs(m *Model) []string {
	var out []string
	for i := 0; i < m.listView.Len(); i++ {
		m2 := m.listView
		m2.SetCursor(i)
		e := m2.Selected()
		if e.Kind == layout.KindEdit {
			out = append(out, "<edit>")
			continue
		}
		out = append(out, e.ID())
	}
	return out
}

func equalIDs(t *testing.T, want, got []string) {
	t.Helper()
	if strings.Join(want, ",") != strings.Join(got, ",") {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNewModel(t *testing.T) {
	m := NewModel(layout.NewSession(layout.NewMemoryStore()), layout.NewMemoryStore())
	if m.state != StateLoading {
		t.Errorf("expected initial state StateLoading, got %v", m.state)
	}
	if m.themeName() != "default" {
		t.Errorf("expected default theme, got %s", m.themeName())
	}
	if m.sourceSettings != sources.DefaultSettings {
		t.Errorf("expected default source settings, got %+v", m.sourceSettings)
	}
}

func TestStateString(t *testing.T) {
	if StateFolderContentsEdit.String() != "FolderContentsEdit" {
		t.Errorf("unexpected name %q", StateFolderContentsEdit.String())
	}
	if State(99).String() != "Unknown" {
		t.Errorf("expected Unknown for out of range state")
	}
	if !StateMemberSelect.editing() || StateDisplay.editing() {
		t.Error("editing() misclassifies states")
	}
}

func TestLoadCommand(t *testing.T) {
	catalog := &host.Catalog{
		Pages:     map[string][]layout.Button{"full": testButtons},
		Balancers: testSources,
	}
	m := NewModel(layout.NewSession(layout.NewMemoryStore()), layout.NewMemoryStore(),
		WithProvider(catalog), WithReady(ready.Resolved()))

	msg := m.load()()
	loaded, ok := msg.(LoadedMsg)
	if !ok {
		t.Fatalf("expected LoadedMsg, got %T", msg)
	}
	if len(loaded.Buttons) != 3 || len(loaded.Sources) != 3 {
		t.Errorf("unexpected load result: %+v", loaded)
	}

	m = NewModel(layout.NewSession(layout.NewMemoryStore()), layout.NewMemoryStore())
	if _, ok := m.load()().(ErrorMsg); !ok {
		t.Error("expected ErrorMsg without a provider")
	}
}

func TestLoadedShowsDisplay(t *testing.T) {
	m, _, _ := newTestModel(t)
	equalIDs(t, []string{idAlpha, idBeta, idGamma, "<edit>"}, listIDs(m))
	if !strings.Contains(m.statusMessage, "3 buttons") {
		t.Errorf("unexpected status %q", m.statusMessage)
	}
}

func TestErrorIsFatal(t *testing.T) {
	m := NewModel(layout.NewSession(layout.NewMemoryStore()), layout.NewMemoryStore())
	m.Update(ErrorMsg{Error: errors.New("host unreachable")})
	if m.state != StateMessage || m.messageType != "error" {
		t.Fatalf("expected error message, got %v %q", m.state, m.messageType)
	}

	cmd := press(m, "a")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestEditorMoveAndBack(t *testing.T) {
	m, _, _ := newTestModel(t)

	press(m, "e")
	if m.state != StateEditor {
		t.Fatalf("expected StateEditor, got %v", m.state)
	}
	equalIDs(t, []string{idAlpha, idBeta, idGamma}, listIDs(m))

	press(m, "J")
	equalIDs(t, []string{idBeta, idAlpha, idGamma}, listIDs(m))
	if m.listView.Cursor() != 1 {
		t.Errorf("expected cursor to follow the entry, got %d", m.listView.Cursor())
	}

	custom, err := m.session.CustomOrder()
	if err != nil {
		t.Fatal(err)
	}
	equalIDs(t, []string{idBeta, idAlpha, idGamma}, custom)

	// the second move past the top is a no-op
	press(m, "K", "K")
	equalIDs(t, []string{idAlpha, idBeta, idGamma}, listIDs(m))

	press(m, "esc")
	if m.state != StateDisplay {
		t.Fatalf("expected StateDisplay after esc, got %v", m.state)
	}
	equalIDs(t, []string{idAlpha, idBeta, idGamma, "<edit>"}, listIDs(m))
}

func TestToggleHidden(t *testing.T) {
	m, _, _ := newTestModel(t)

	press(m, "e", "x")
	if m.statusMessage != "Hidden Alpha" {
		t.Errorf("unexpected status %q", m.statusMessage)
	}
	hidden, _ := m.session.Hidden()
	equalIDs(t, []string{idAlpha}, hidden)

	// hidden items stay in the editor
	equalIDs(t, []string{idAlpha, idBeta, idGamma}, listIDs(m))

	press(m, "esc")
	equalIDs(t, []string{idBeta, idGamma, "<edit>"}, listIDs(m))

	press(m, "e", " ")
	hidden, _ = m.session.Hidden()
	if len(hidden) != 0 {
		t.Errorf("expected nothing hidden, got %v", hidden)
	}
}

func TestEnterOnEditElementOpensEditor(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, "j", "j", "j", "enter")
	if m.state != StateEditor {
		t.Errorf("expected StateEditor, got %v", m.state)
	}
}

func TestFolderLifecycle(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, "e")

	m.startFolderName(StateEditor)
	if m.state != StateFolderName || m.form == nil {
		t.Fatalf("expected folder name prompt, got %v", m.state)
	}
	m.folderName = "Mine"
	m.submitForm()
	if m.state != StateMemberSelect {
		t.Fatalf("expected member selection, got %v", m.state)
	}
	m.memberIDs = []string{idAlpha, idGamma}
	m.submitForm()
	if m.state != StateMessage || m.messageType != "success" {
		t.Fatalf("expected success message, got %v %q: %s", m.state, m.messageType, m.statusMessage)
	}

	press(m, "a")
	if m.state != StateEditor {
		t.Fatalf("expected StateEditor, got %v", m.state)
	}
	equalIDs(t, []string{"folder_1", idBeta}, listIDs(m))

	// open the folder and reorder its members
	press(m, "enter")
	if m.state != StateFolderContents {
		t.Fatalf("expected StateFolderContents, got %v", m.state)
	}
	equalIDs(t, []string{idAlpha, idGamma}, listIDs(m))

	press(m, "e", "J")
	if m.state != StateFolderContentsEdit {
		t.Fatalf("expected StateFolderContentsEdit, got %v", m.state)
	}
	equalIDs(t, []string{idGamma, idAlpha}, listIDs(m))

	press(m, "esc", "esc")
	if m.state != StateEditor {
		t.Fatalf("expected StateEditor, got %v", m.state)
	}

	// delete from the picker
	press(m, "f")
	if m.state != StateFolderPicker || m.listView.Len() != 1 {
		t.Fatalf("expected picker with one folder, got %v (%d)", m.state, m.listView.Len())
	}
	press(m, "d")
	if m.messageType != "success" {
		t.Fatalf("expected success, got %q: %s", m.messageType, m.statusMessage)
	}
	press(m, "a")
	if m.state != StateFolderPicker || m.listView.Len() != 0 {
		t.Errorf("expected empty picker, got %v (%d)", m.state, m.listView.Len())
	}

	press(m, "esc")
	equalIDs(t, []string{idAlpha, idBeta, idGamma}, listIDs(m))
}

func TestFolderNeedsTwoMembers(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, "e")

	m.startFolderName(StateEditor)
	m.folderName = "Solo"
	m.submitForm()
	m.memberIDs = []string{idBeta}
	m.submitForm()

	if m.messageType != "error" || m.statusMessage != layout.ErrTooFewMembers.Error() {
		t.Errorf("expected too-few-members error, got %q: %s", m.messageType, m.statusMessage)
	}
	folders, _ := m.session.Folders()
	if len(folders) != 0 {
		t.Errorf("expected no folders, got %v", folders)
	}
}

func TestCancelFolderPrompt(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, "e", "f")

	m.startFolderName(StateFolderPicker)
	press(m, "esc")
	if m.state != StateFolderPicker {
		t.Errorf("expected StateFolderPicker after esc, got %v", m.state)
	}
	if m.form != nil {
		t.Error("expected form to be dropped")
	}
}

func TestValidators(t *testing.T) {
	if err := validateFolderName("   "); !errors.Is(err, layout.ErrEmptyFolderName) {
		t.Errorf("expected ErrEmptyFolderName, got %v", err)
	}
	if err := validateFolderName("Online"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := validateMembers([]string{"a"}); !errors.Is(err, layout.ErrTooFewMembers) {
		t.Errorf("expected ErrTooFewMembers, got %v", err)
	}
	if err := validateMembers([]string{"a", "b"}); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestResetConfirmation(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, "e", "x", "R")
	if m.state != StateConfirmReset {
		t.Fatalf("expected StateConfirmReset, got %v", m.state)
	}

	press(m, "n")
	if m.state != StateEditor {
		t.Fatalf("expected StateEditor after cancel, got %v", m.state)
	}
	hidden, _ := m.session.Hidden()
	if len(hidden) != 1 {
		t.Fatalf("expected hidden item to survive cancel, got %v", hidden)
	}

	press(m, "R", "y")
	if m.messageType != "success" {
		t.Fatalf("expected success, got %q: %s", m.messageType, m.statusMessage)
	}
	hidden, _ = m.session.Hidden()
	if len(hidden) != 0 {
		t.Errorf("expected nothing hidden after reset, got %v", hidden)
	}
}

func TestClipboardExportImport(t *testing.T) {
	m, _, clip := newTestModel(t)
	press(m, "e", "x", "y")
	if m.statusMessage != "Layout copied to clipboard" {
		t.Fatalf("unexpected status %q", m.statusMessage)
	}
	if !strings.Contains(clip.text, idAlpha) {
		t.Fatalf("expected exported layout to mention %s: %s", idAlpha, clip.text)
	}

	if err := m.session.ResetAll(); err != nil {
		t.Fatal(err)
	}
	press(m, "p")
	if m.messageType != "success" {
		t.Fatalf("expected success, got %q: %s", m.messageType, m.statusMessage)
	}
	hidden, _ := m.session.Hidden()
	equalIDs(t, []string{idAlpha}, hidden)
}

func TestClipboardImportInvalid(t *testing.T) {
	m, _, clip := newTestModel(t)
	clip.text = "not a layout"
	press(m, "e", "p")
	if m.messageType != "error" {
		t.Fatalf("expected error, got %q", m.messageType)
	}
	press(m, "a")
	if m.state != StateEditor {
		t.Errorf("expected StateEditor, got %v", m.state)
	}

	clip.err = errors.New("no clipboard")
	press(m, "y")
	if m.messageType != "error" || !strings.Contains(m.statusMessage, "no clipboard") {
		t.Errorf("expected clipboard error, got %q: %s", m.messageType, m.statusMessage)
	}
}

func TestSourcesSettings(t *testing.T) {
	m, store, _ := newTestModel(t)
	press(m, "s")
	if m.state != StateSources {
		t.Fatalf("expected StateSources, got %v", m.state)
	}

	press(m, "o")
	if m.sourceSettings.Sort != sources.SortAlphabet {
		t.Errorf("expected alphabet sort, got %s", m.sourceSettings.Sort)
	}
	press(m, "h")

	saved, err := sources.LoadSettings(store)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Sort != sources.SortAlphabet || !saved.HideUnavailable {
		t.Errorf("settings not persisted: %+v", saved)
	}

	view := m.View()
	if !strings.Contains(view, "alpha 1080p") || strings.Contains(view, "Offline") {
		t.Errorf("unexpected sources view:\n%s", view)
	}

	press(m, "esc")
	if m.state != StateDisplay {
		t.Errorf("expected StateDisplay, got %v", m.state)
	}
}

func TestNextSortType(t *testing.T) {
	if nextSortType(sources.SortQuality) != sources.SortDefault {
		t.Error("expected sort types to wrap around")
	}
	if nextSortType("bogus") != sources.SortDefault {
		t.Error("expected unknown sort type to reset")
	}
}

func TestThemeCycling(t *testing.T) {
	cfg := &config.Config{Theme: "default", Activity: "full"}
	m := NewModel(layout.NewSession(layout.NewMemoryStore()), layout.NewMemoryStore(), WithConfig(cfg))

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if cfg.Theme != "catppuccin" {
		t.Errorf("expected theme catppuccin, got %s", cfg.Theme)
	}
	if m.styles.theme.Name != "catppuccin" {
		t.Errorf("expected styles to follow the theme, got %s", m.styles.theme.Name)
	}
}

func TestQuitCommitsWhileEditing(t *testing.T) {
	m, store, _ := newTestModel(t)
	press(m, "e")
	cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	var custom []string
	found, err := store.Get(layout.KeyCustomOrder, &custom)
	if err != nil || !found {
		t.Fatalf("expected custom order to be committed, found=%v err=%v", found, err)
	}
	equalIDs(t, []string{idAlpha, idBeta, idGamma}, custom)
}

func TestViewRendering(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	if view := m.View(); !strings.Contains(view, "Alpha") {
		t.Error("display view should list buttons")
	}

	press(m, "e")
	if view := m.View(); !strings.Contains(view, "Edit layout") {
		t.Error("editor view should carry its title")
	}

	press(m, "?")
	view := m.View()
	for _, want := range []string{"Editor", "reset layout", "Layout", "General", "q / ctrl+c"} {
		if !strings.Contains(view, want) {
			t.Errorf("full help should show %q:\n%s", want, view)
		}
	}
	if !strings.Contains(view, "Alpha") {
		t.Error("list should stay visible above the full help")
	}
	if lines := strings.Count(view, "\n") + 1; lines != 30 {
		t.Errorf("expected the view to fill 30 lines, got %d", lines)
	}
	press(m, "?")

	press(m, "f")
	if view := m.View(); !strings.Contains(view, "No folders yet") {
		t.Error("empty picker should say so")
	}

	m.startFolderName(StateFolderPicker)
	if view := m.View(); view == "" {
		t.Error("form view is empty")
	}

	m.state = StateConfirmReset
	if view := m.View(); !strings.Contains(view, "Reset Layout") {
		t.Error("confirm view should ask for confirmation")
	}

	m.showError(errors.New("boom"), StateEditor)
	if view := m.View(); !strings.Contains(view, "boom") {
		t.Error("message view should show the error")
	}

	m.state = StateLoading
	if view := m.View(); view == "" {
		t.Error("loading view is empty")
	}
}
