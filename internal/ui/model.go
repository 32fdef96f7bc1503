package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mcao2/button-layout/internal/config"
	"github.com/mcao2/button-layout/internal/host"
	"github.com/mcao2/button-layout/internal/layout"
	"github.com/mcao2/button-layout/internal/ready"
	"github.com/mcao2/button-layout/internal/sources"
	"github.com/sirupsen/logrus"
)

type State int

const (
	StateLoading State = iota
	StateDisplay
	StateEditor
	StateFolderPicker
	StateFolderName
	StateMemberSelect
	StateFolderContents
	StateFolderContentsEdit
	StateSources
	StateConfirmReset
	StateMessage
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StateDisplay:
		return "Display"
	case StateEditor:
		return "Editor"
	case StateFolderPicker:
		return "FolderPicker"
	case StateFolderName:
		return "FolderName"
	case StateMemberSelect:
		return "MemberSelect"
	case StateFolderContents:
		return "FolderContents"
	case StateFolderContentsEdit:
		return "FolderContentsEdit"
	case StateSources:
		return "Sources"
	case StateConfirmReset:
		return "ConfirmReset"
	case StateMessage:
		return "Message"
	default:
		return "Unknown"
	}
}

// editing reports whether the layout editor is open in this state.
func (s State) editing() bool {
	return s >= StateEditor && s <= StateFolderContentsEdit || s == StateConfirmReset
}

type Model struct {
	state  State
	width  int
	height int
	styles Styles
	keys   KeyMap

	themeIndex int
	showHelp   bool

	listView ListView
	spinner  spinner.Model
	form     *huh.Form

	statusMessage string
	messageType   string
	returnState   State
	fatal         bool

	cfg       *config.Config
	session   *layout.Session
	store     layout.Store
	provider  host.Provider
	ready     *ready.Future
	clipboard Clipboard
	log       logrus.FieldLogger

	display      []layout.Element
	folderID     string
	folderReturn State
	formReturn   State
	folderName   string
	memberIDs    []string

	sourceList     []sources.Source
	sourceSettings sources.Settings
	sourceReturn   State
}

// ModelOption configures a Model
type ModelOption func(*Model)

// WithConfig sets the configuration the theme and activity come from. Theme
// changes are saved back to it.
func WithConfig(cfg *config.Config) ModelOption {
	return func(m *Model) {
		m.cfg = cfg
	}
}

// WithProvider sets where buttons and sources are loaded from.
func WithProvider(p host.Provider) ModelOption {
	return func(m *Model) {
		m.provider = p
	}
}

// WithReady delays loading until the host is ready.
func WithReady(f *ready.Future) ModelOption {
	return func(m *Model) {
		m.ready = f
	}
}

// WithClipboard replaces the system clipboard.
func WithClipboard(c Clipboard) ModelOption {
	return func(m *Model) {
		m.clipboard = c
	}
}

// WithModelLogger sets the logger.
func WithModelLogger(l logrus.FieldLogger) ModelOption {
	return func(m *Model) {
		m.log = l
	}
}

// NewModel creates the editor for session. store is the store the session
// persists to; source settings are kept there too.
func NewModel(session *layout.Session, store layout.Store, opts ...ModelOption) *Model {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	m := &Model{
		state:          StateLoading,
		keys:           DefaultKeyMap(),
		session:        session,
		store:          store,
		clipboard:      systemClipboard{},
		log:            discard,
		sourceSettings: sources.DefaultSettings,
	}
	for _, opt := range opts {
		opt(m)
	}

	themeNames := GetThemeNames()
	m.themeIndex = 0
	if m.cfg != nil {
		for i, name := range themeNames {
			if name == m.cfg.Theme {
				m.themeIndex = i
				break
			}
		}
	}
	theme := Themes[themeNames[m.themeIndex]]

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Primary))
	m.spinner = s

	m.styles = NewStyles(theme)
	m.listView = NewListView(80, 24)
	m.listView.UpdateTableStyles(theme)

	if settings, err := sources.LoadSettings(store); err != nil {
		m.log.WithError(err).Warn("source settings unreadable, using defaults")
	} else {
		m.sourceSettings = settings
	}
	return m
}

func (m *Model) themeName() string {
	return GetThemeNames()[m.themeIndex]
}

func (m *Model) activity() string {
	if m.cfg != nil && m.cfg.Activity != "" {
		return m.cfg.Activity
	}
	return "full"
}

func (m *Model) cycleTheme() {
	themeNames := GetThemeNames()
	m.themeIndex = (m.themeIndex + 1) % len(themeNames)
	newTheme := themeNames[m.themeIndex]
	m.styles = NewStyles(Themes[newTheme])
	m.listView.UpdateTableStyles(Themes[newTheme])
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(Themes[newTheme].Primary))

	if m.cfg != nil {
		m.cfg.Theme = newTheme
		if err := m.cfg.Save(); err != nil {
			m.log.WithError(err).Warn("failed to save theme")
		}
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

type LoadedMsg struct {
	Buttons []layout.Button
	Sources []sources.Source
}

type ErrorMsg struct {
	Error error
}

// load waits for the host and fetches the page's buttons and sources.
func (m *Model) load() tea.Cmd {
	provider := m.provider
	future := m.ready
	activity := m.activity()
	log := m.log

	return func() tea.Msg {
		ctx := context.Background()
		if future != nil {
			if err := future.Await(ctx); err != nil {
				return ErrorMsg{Error: err}
			}
		}
		if provider == nil {
			return ErrorMsg{Error: errors.New("no host or catalog configured")}
		}

		buttons, err := provider.Buttons(ctx, activity)
		if err != nil {
			return ErrorMsg{Error: err}
		}
		list, err := provider.Sources(ctx)
		if err != nil {
			log.WithError(err).Warn("sources unavailable")
			list = nil
		}
		return LoadedMsg{Buttons: buttons, Sources: list}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.listView.SetWidthHeight(msg.Width, msg.Height)
		if m.form != nil {
			m.form = m.form.WithWidth(formWidth(msg.Width))
		}

	case spinner.TickMsg:
		if m.state != StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case LoadedMsg:
		m.sourceList = msg.Sources
		display, err := m.session.Activate(msg.Buttons)
		if err != nil {
			m.fatal = true
			m.showError(err, StateLoading)
			return m, nil
		}
		m.display = display
		m.state = StateDisplay
		m.listView.SetElements(display, m.session.Items())
		m.statusMessage = fmt.Sprintf("Loaded %d buttons for %s", len(m.session.Items()), m.activity())

	case ErrorMsg:
		m.fatal = true
		m.showError(msg.Error, StateLoading)

	default:
		if m.form != nil {
			return m.updateForm(msg)
		}
	}

	return m, nil
}

func formWidth(width int) int {
	if width > 64 {
		return 60
	}
	if width > 10 {
		return width - 4
	}
	return width
}

func (m *Model) View() string {
	var content string
	centered := true

	switch m.state {
	case StateLoading:
		content = m.loadingView()
	case StateDisplay, StateEditor, StateFolderPicker, StateFolderContents, StateFolderContentsEdit:
		content = m.listScreen()
		centered = false
	case StateFolderName, StateMemberSelect:
		content = m.formView()
	case StateSources:
		content = m.sourcesView()
	case StateConfirmReset:
		content = m.confirmResetView()
	case StateMessage:
		content = m.messageView()
	default:
		return "Unknown state"
	}

	if centered && m.width > 0 && m.height > 0 {
		content = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateMessage:
		return m.handleMessageKeys(msg)
	case StateFolderName, StateMemberSelect:
		return m.handleFormKeys(msg)
	case StateConfirmReset:
		return m.handleConfirmKeys(msg)
	}

	switch {
	case keyMatches(msg, m.keys.Quit):
		return m, m.quit()
	case keyMatches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case keyMatches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil
	}

	switch m.state {
	case StateDisplay:
		return m.handleDisplayKeys(msg)
	case StateEditor:
		return m.handleEditorKeys(msg)
	case StateFolderPicker:
		return m.handlePickerKeys(msg)
	case StateFolderContents:
		return m.handleContentsKeys(msg)
	case StateFolderContentsEdit:
		return m.handleContentsEditKeys(msg)
	case StateSources:
		return m.handleSourcesKeys(msg)
	}

	return m, nil
}

// quit commits the editor's order before leaving.
func (m *Model) quit() tea.Cmd {
	if m.state.editing() {
		if err := m.session.Commit(); err != nil {
			m.log.WithError(err).Warn("failed to save order on quit")
		}
	}
	return tea.Quit
}

// enter switches to state and reloads the list shown there.
func (m *Model) enter(state State) {
	m.state = state
	m.listView.SetCursor(0)
	if err := m.refresh(); err != nil {
		m.showError(err, StateDisplay)
	}
}

// back commits the current order, then enters state.
func (m *Model) back(state State) {
	if err := m.session.Commit(); err != nil {
		m.showError(err, state)
		return
	}
	m.enter(state)
}

// refresh reloads the list for the current state from the session.
func (m *Model) refresh() error {
	all := m.session.Items()
	switch m.state {
	case StateDisplay:
		display, err := m.session.Display()
		if err != nil {
			return err
		}
		m.display = display
		m.listView.SetElements(display, all)
	case StateEditor:
		entries, err := m.session.EditorEntries()
		if err != nil {
			return err
		}
		m.listView.SetElements(entries, all)
	case StateFolderPicker:
		folders, err := m.session.Folders()
		if err != nil {
			return err
		}
		m.listView.SetFolders(folders, all)
	case StateFolderContents, StateFolderContentsEdit:
		members, err := m.session.FolderMembers(m.folderID)
		if err != nil {
			return err
		}
		m.listView.SetItems(members, all)
	}
	return nil
}

func (m *Model) showError(err error, back State) {
	m.log.WithError(err).Debug("operation failed")
	m.statusMessage = err.Error()
	m.messageType = "error"
	m.returnState = back
	m.state = StateMessage
}

func (m *Model) showSuccess(text string, back State) {
	m.statusMessage = text
	m.messageType = "success"
	m.returnState = back
	m.state = StateMessage
}

func (m *Model) handleMessageKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.fatal {
		return m, tea.Quit
	}
	m.statusMessage = ""
	cursor := m.listView.Cursor()
	m.state = m.returnState
	if err := m.refresh(); err != nil {
		m.showError(err, StateDisplay)
		return m, nil
	}
	m.listView.SetCursor(cursor)
	return m, nil
}

func (m *Model) handleDisplayKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, m.keys.Up):
		m.listView.MoveCursor(-1)
	case keyMatches(msg, m.keys.Down):
		m.listView.MoveCursor(1)
	case keyMatches(msg, m.keys.Edit):
		m.openEditor()
	case keyMatches(msg, m.keys.Sources):
		m.openSources()
	case keyMatches(msg, m.keys.Enter):
		e := m.listView.Selected()
		if e == nil {
			return m, nil
		}
		switch e.Kind {
		case layout.KindEdit:
			m.openEditor()
		case layout.KindFolder:
			m.openFolder(e.Folder.ID, StateDisplay)
		case layout.KindItem:
			m.statusMessage = "Pressed " + layout.DisplayName(e.Item, m.session.Items())
		}
	}
	return m, nil
}

func (m *Model) openEditor() {
	m.statusMessage = ""
	m.enter(StateEditor)
}

func (m *Model) openFolder(id string, from State) {
	m.folderID = id
	m.folderReturn = from
	m.enter(StateFolderContents)
}

func (m *Model) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, m.keys.Up):
		m.listView.MoveCursor(-1)
	case keyMatches(msg, m.keys.Down):
		m.listView.MoveCursor(1)
	case keyMatches(msg, m.keys.MoveUp):
		m.moveEntry(-1)
	case keyMatches(msg, m.keys.MoveDown):
		m.moveEntry(1)
	case keyMatches(msg, m.keys.Hide):
		m.toggleHidden()
	case keyMatches(msg, m.keys.Enter):
		if e := m.listView.Selected(); e != nil && e.Kind == layout.KindFolder {
			m.openFolder(e.Folder.ID, StateEditor)
		}
	case keyMatches(msg, m.keys.Folders):
		m.enter(StateFolderPicker)
	case keyMatches(msg, m.keys.New):
		return m, m.startFolderName(StateEditor)
	case keyMatches(msg, m.keys.Reset):
		m.state = StateConfirmReset
	case keyMatches(msg, m.keys.Export):
		if err := m.ExportToClipboard(); err != nil {
			m.showError(err, StateEditor)
			return m, nil
		}
		m.statusMessage = "Layout copied to clipboard"
	case keyMatches(msg, m.keys.Import):
		snap, err := m.ImportFromClipboard()
		if err != nil {
			m.showError(err, StateEditor)
			return m, nil
		}
		m.showSuccess(fmt.Sprintf("Imported layout with %d folders and %d hidden buttons", len(snap.Folders), len(snap.Hidden)), StateEditor)
	case keyMatches(msg, m.keys.Back):
		m.back(StateDisplay)
	}
	return m, nil
}

func (m *Model) moveEntry(delta int) {
	cursor := m.listView.Cursor()
	moved, err := m.session.Move(cursor, delta)
	if err != nil {
		m.showError(err, StateEditor)
		return
	}
	if !moved {
		return
	}
	if err := m.refresh(); err != nil {
		m.showError(err, StateEditor)
		return
	}
	m.listView.SetCursor(cursor + delta)
}

func (m *Model) toggleHidden() {
	e := m.listView.Selected()
	if e == nil {
		return
	}
	if e.Kind != layout.KindItem {
		m.statusMessage = "Folders cannot be hidden"
		return
	}
	name := layout.DisplayName(e.Item, m.session.Items())
	hidden, err := m.session.ToggleHidden(e.Item.ID)
	if err != nil {
		m.showError(err, StateEditor)
		return
	}
	if hidden {
		m.statusMessage = "Hidden " + name
	} else {
		m.statusMessage = "Showing " + name
	}
	if err := m.refresh(); err != nil {
		m.showError(err, StateEditor)
	}
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, m.keys.Up):
		m.listView.MoveCursor(-1)
	case keyMatches(msg, m.keys.Down):
		m.listView.MoveCursor(1)
	case keyMatches(msg, m.keys.New):
		return m, m.startFolderName(StateFolderPicker)
	case keyMatches(msg, m.keys.Enter):
		if e := m.listView.Selected(); e != nil {
			m.openFolder(e.Folder.ID, StateFolderPicker)
		}
	case keyMatches(msg, m.keys.Delete):
		if e := m.listView.Selected(); e != nil {
			m.deleteFolder(e.Folder, StateFolderPicker)
		}
	case keyMatches(msg, m.keys.Back):
		m.back(StateEditor)
	}
	return m, nil
}

func (m *Model) deleteFolder(f layout.Folder, back State) {
	if err := m.session.DeleteFolder(f.ID); err != nil {
		m.showError(err, back)
		return
	}
	m.log.WithField("folder", f.ID).Info("folder deleted")
	m.showSuccess(fmt.Sprintf("Folder %q deleted", f.Name), back)
}

// startFolderName opens the name prompt of a new folder. from is where an
// aborted prompt returns to.
func (m *Model) startFolderName(from State) tea.Cmd {
	m.folderName = ""
	m.memberIDs = nil
	m.formReturn = from
	m.form = NewFolderNameForm(&m.folderName, m.themeName())
	if m.width > 0 {
		m.form = m.form.WithWidth(formWidth(m.width))
	}
	m.state = StateFolderName
	return m.form.Init()
}

// startMemberSelect offers the items that may join the folder being created.
func (m *Model) startMemberSelect() tea.Cmd {
	candidates, err := m.session.Candidates()
	if err != nil {
		m.form = nil
		m.showError(err, StateEditor)
		return nil
	}
	if len(candidates) < 2 {
		m.form = nil
		m.showError(layout.ErrTooFewMembers, StateEditor)
		return nil
	}

	m.memberIDs = nil
	m.form = NewMemberForm(candidates, m.session.Items(), &m.memberIDs, m.themeName())
	if m.width > 0 {
		m.form = m.form.WithWidth(formWidth(m.width))
	}
	m.state = StateMemberSelect
	return m.form.Init()
}

// finishFolder creates the folder from the collected name and members.
func (m *Model) finishFolder() {
	m.form = nil
	f, err := m.session.CreateFolder(m.folderName, m.memberIDs)
	if err != nil {
		m.showError(err, StateEditor)
		return
	}
	m.log.WithFields(logrus.Fields{"folder": f.ID, "members": len(f.Buttons)}).Info("folder created")
	m.showSuccess(fmt.Sprintf("Folder %q created with %d buttons", f.Name, len(f.Buttons)), StateEditor)
}

func (m *Model) cancelForm() {
	back := StateEditor
	if m.state == StateFolderName {
		back = m.formReturn
	}
	m.form = nil
	m.back(back)
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, m.quit()
	case "esc":
		m.cancelForm()
		return m, nil
	}
	return m.updateForm(msg)
}

func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.submitForm()
	case huh.StateAborted:
		m.cancelForm()
		return m, nil
	}
	return m, cmd
}

func (m *Model) submitForm() tea.Cmd {
	switch m.state {
	case StateFolderName:
		return m.startMemberSelect()
	case StateMemberSelect:
		m.finishFolder()
	}
	return nil
}

func (m *Model) handleContentsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, m.keys.Up):
		m.listView.MoveCursor(-1)
	case keyMatches(msg, m.keys.Down):
		m.listView.MoveCursor(1)
	case keyMatches(msg, m.keys.Edit):
		if m.folderReturn != StateDisplay {
			m.enter(StateFolderContentsEdit)
		}
	case keyMatches(msg, m.keys.Delete):
		if m.folderReturn == StateDisplay {
			return m, nil
		}
		f, err := m.session.Folder(m.folderID)
		if err != nil {
			m.showError(err, m.folderReturn)
			return m, nil
		}
		m.deleteFolder(f, m.folderReturn)
	case keyMatches(msg, m.keys.Back):
		m.back(m.folderReturn)
	}
	return m, nil
}

func (m *Model) handleContentsEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, m.keys.Up):
		m.listView.MoveCursor(-1)
	case keyMatches(msg, m.keys.Down):
		m.listView.MoveCursor(1)
	case keyMatches(msg, m.keys.MoveUp):
		m.moveMember(-1)
	case keyMatches(msg, m.keys.MoveDown):
		m.moveMember(1)
	case keyMatches(msg, m.keys.Back):
		m.back(StateFolderContents)
	}
	return m, nil
}

func (m *Model) moveMember(delta int) {
	cursor := m.listView.Cursor()
	moved, err := m.session.MoveWithinFolder(m.folderID, cursor, delta)
	if err != nil {
		m.showError(err, StateFolderContentsEdit)
		return
	}
	if !moved {
		return
	}
	if err := m.refresh(); err != nil {
		m.showError(err, StateFolderContentsEdit)
		return
	}
	m.listView.SetCursor(cursor + delta)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, m.keys.Confirm):
		if err := m.session.ResetAll(); err != nil {
			m.showError(err, StateEditor)
			return m, nil
		}
		m.log.Info("layout reset")
		m.showSuccess("Layout reset to defaults", StateEditor)
	case keyMatches(msg, m.keys.Cancel):
		m.state = StateEditor
	}
	return m, nil
}

func (m *Model) openSources() {
	m.sourceReturn = m.state
	m.state = StateSources
}

func (m *Model) handleSourcesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	changed := true
	switch {
	case keyMatches(msg, m.keys.SortType):
		m.sourceSettings.Sort = nextSortType(m.sourceSettings.Sort)
	case keyMatches(msg, m.keys.Ghosts):
		m.sourceSettings.HideUnavailable = !m.sourceSettings.HideUnavailable
	case keyMatches(msg, m.keys.Enter):
		m.sourceSettings.ButtonEnabled = !m.sourceSettings.ButtonEnabled
	case keyMatches(msg, m.keys.Back):
		m.state = m.sourceReturn
		return m, nil
	default:
		changed = false
	}

	if changed {
		if err := m.sourceSettings.Save(m.store); err != nil {
			m.showError(err, StateSources)
		}
	}
	return m, nil
}

func nextSortType(t sources.SortType) sources.SortType {
	for i, st := range sources.SortTypes {
		if st == t {
			return sources.SortTypes[(i+1)%len(sources.SortTypes)]
		}
	}
	return sources.SortDefault
}

// Views

func (m *Model) loadingView() string {
	status := fmt.Sprintf("%s Waiting for the host...", m.spinner.View())

	content := m.styles.Border.Render(
		lipgloss.JoinVertical(lipgloss.Center,
			m.styles.Title.Render("Loading "+m.activity()),
			"",
			m.styles.Normal.Render(status),
		),
	)

	help := m.renderHelpLine([]helpEntry{{"q", "cancel"}})
	return lipgloss.JoinVertical(lipgloss.Center, "", content, "", help)
}

func (m *Model) screenTitle() string {
	switch m.state {
	case StateEditor:
		return "Edit layout"
	case StateFolderPicker:
		return "Folders"
	case StateFolderContents, StateFolderContentsEdit:
		name := m.folderID
		if f, err := m.session.Folder(m.folderID); err == nil {
			name = f.Name
		}
		if m.state == StateFolderContentsEdit {
			return "Reorder " + name
		}
		return "Folder " + name
	default:
		return "Buttons [" + m.activity() + "]"
	}
}

func (m *Model) listScreen() string {
	headerLeft := m.styles.HelpKey.Render(m.screenTitle())
	countText := m.styles.HelpDesc.Render(fmt.Sprintf("%d/%d", m.listView.Cursor()+1, m.listView.Len()))
	if m.listView.Len() == 0 {
		countText = m.styles.HelpDesc.Render("0/0")
	}
	headerGap := ""
	if m.width > 0 {
		gap := m.width - lipgloss.Width(headerLeft) - lipgloss.Width(countText) - 4
		if gap > 0 {
			headerGap = strings.Repeat(" ", gap)
		}
	}
	header := m.styles.HeaderBar.Width(max(m.width-1, 1)).Render(headerLeft + headerGap + countText)

	var statusLine string
	if m.statusMessage != "" {
		statusLine = m.styles.Help.Render("  " + m.statusMessage)
	}

	var footer string
	if m.showHelp {
		footer = m.renderFullHelp()
	} else {
		footer = m.styles.FooterBar.Width(max(m.width-1, 1)).Render(m.renderHelpLine(m.footerEntries()))
	}

	var list string
	switch {
	case m.listView.Len() == 0 && m.state == StateFolderPicker:
		list = m.styles.Normal.Render("  No folders yet, press n to create one")
	case m.listView.Len() == 0:
		list = m.styles.Normal.Render("  Nothing to show")
	case m.showHelp && m.height > 0:
		// The full help takes the detail pane's place and shrinks the list.
		// The table header is two lines.
		used := lipgloss.Height(header) + 2 + lipgloss.Height(footer)
		if statusLine != "" {
			used += lipgloss.Height(statusLine)
		}
		list = m.listView.ViewRows(max(m.height-used, 1))
	default:
		list = m.listView.View()
	}

	detail := ""
	if m.listView.Len() > 0 && !m.showHelp {
		if detailContent := m.listView.DetailView(m.width, m.styles); detailContent != "" {
			divider := m.styles.HelpSep.Render(strings.Repeat("─", max(m.width-1, 1)))
			detail = divider + "\n" + detailContent
		}
	}

	parts := []string{header, list}
	if detail != "" {
		parts = append(parts, detail)
	}
	if statusLine != "" {
		parts = append(parts, statusLine)
	}
	parts = append(parts, footer)
	content := strings.Join(parts, "\n")

	// Pad to the full height so the alternate screen repaints cleanly.
	if m.height > 0 {
		rendered := strings.Split(content, "\n")
		for len(rendered) < m.height {
			rendered = append(rendered, "")
		}
		return strings.Join(rendered[:m.height], "\n")
	}
	return content
}

func (m *Model) formView() string {
	if m.form == nil {
		return ""
	}
	title := "New folder"
	if m.state == StateMemberSelect {
		title = fmt.Sprintf("New folder %q", strings.TrimSpace(m.folderName))
	}

	content := m.styles.Border.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.styles.Title.Render(title),
			m.form.View(),
		),
	)
	help := m.renderHelpLine([]helpEntry{{"enter", "next"}, {"esc", "cancel"}})
	return lipgloss.JoinVertical(lipgloss.Center, "", content, "", help)
}

func (m *Model) sourcesView() string {
	settings := m.sourceSettings

	lines := []string{
		m.styles.Normal.Render(fmt.Sprintf("Sort: %s (%s)", settings.Sort, settings.Sort.Description())),
		m.styles.Normal.Render(fmt.Sprintf("Hide unavailable: %s", onOff(settings.HideUnavailable))),
		m.styles.Normal.Render(fmt.Sprintf("Sort button: %s", onOff(settings.ButtonEnabled))),
		"",
	}

	processed := settings.Process(m.sourceList)
	if len(processed) == 0 {
		lines = append(lines, m.styles.Help.Render("No sources reported by the host"))
	}
	for i, src := range processed {
		line := fmt.Sprintf("%2d. %s", i+1, Truncate(src.Title, 48))
		if src.Ghost {
			lines = append(lines, m.styles.Hidden.Render(line))
			continue
		}
		lines = append(lines, m.styles.Normal.Render(line))
	}

	content := m.styles.Border.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			append([]string{m.styles.Title.Render("Sources")}, lines...)...,
		),
	)
	help := m.renderHelpLine([]helpEntry{
		{"o", "sort"},
		{"h", "hide unavailable"},
		{"enter", "sort button"},
		{"esc", "back"},
	})
	return lipgloss.JoinVertical(lipgloss.Center, "", content, "", help)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m *Model) confirmResetView() string {
	content := m.styles.Border.Render(
		lipgloss.JoinVertical(lipgloss.Center,
			m.styles.Title.Render("Reset Layout"),
			"",
			m.styles.Normal.Render("Forget the order, hidden buttons and folders?"),
		),
	)

	help := m.renderHelpLine([]helpEntry{
		{"y", "confirm"},
		{"n", "cancel"},
	})

	return lipgloss.JoinVertical(lipgloss.Center, "", content, "", help)
}

func (m *Model) messageView() string {
	var icon, title string
	var titleStyle lipgloss.Style

	if m.messageType == "error" {
		icon = "✗"
		title = "Error"
		titleStyle = m.styles.Error
	} else {
		icon = "✓"
		title = "Success"
		titleStyle = m.styles.Success
	}

	content := m.styles.Border.Render(
		lipgloss.JoinVertical(lipgloss.Center,
			titleStyle.Render(icon+" "+title),
			"",
			m.styles.Normal.Render(m.statusMessage),
		),
	)

	hint := "continue"
	if m.fatal {
		hint = "quit"
	}
	help := m.renderHelpLine([]helpEntry{{"any key", hint}})
	return lipgloss.JoinVertical(lipgloss.Center, "", content, "", help)
}

// Help rendering

type helpEntry struct {
	key  string
	desc string
}

func (m *Model) renderHelpLine(entries []helpEntry) string {
	var parts []string
	sep := m.styles.HelpSep.Render(" · ")
	for _, e := range entries {
		parts = append(parts, m.styles.HelpKey.Render(e.key)+" "+m.styles.HelpDesc.Render(e.desc))
	}
	return strings.Join(parts, sep)
}

func (m *Model) footerEntries() []helpEntry {
	switch m.state {
	case StateEditor:
		return []helpEntry{
			{"j/k", "navigate"},
			{"J/K", "move"},
			{"x", "hide"},
			{"n", "new folder"},
			{"f", "folders"},
			{"y/p", "export/import"},
			{"esc", "done"},
			{"?", "help"},
		}
	case StateFolderPicker:
		return []helpEntry{
			{"j/k", "navigate"},
			{"enter", "open"},
			{"n", "new"},
			{"d", "delete"},
			{"esc", "back"},
		}
	case StateFolderContents:
		if m.folderReturn == StateDisplay {
			return []helpEntry{{"j/k", "navigate"}, {"esc", "back"}}
		}
		return []helpEntry{
			{"j/k", "navigate"},
			{"e", "reorder"},
			{"d", "delete folder"},
			{"esc", "back"},
		}
	case StateFolderContentsEdit:
		return []helpEntry{
			{"j/k", "navigate"},
			{"J/K", "move"},
			{"esc", "done"},
		}
	default:
		return []helpEntry{
			{"j/k", "navigate"},
			{"enter", "open"},
			{"e", "edit"},
			{"s", "sources"},
			{"t", "theme"},
			{"?", "help"},
			{"q", "quit"},
		}
	}
}

func (m *Model) renderFullHelp() string {
	sections := []struct {
		title   string
		entries []helpEntry
	}{
		{"Navigation", []helpEntry{
			{"j / ↓", "move down"},
			{"k / ↑", "move up"},
			{"enter", "open folder or editor"},
			{"esc", "back (saves the order)"},
		}},
		{"Editor", []helpEntry{
			{"J / K", "move entry down / up"},
			{"x / space", "hide or show button"},
			{"n", "new folder"},
			{"f", "folder list"},
			{"R", "reset layout"},
		}},
		{"Layout", []helpEntry{
			{"y", "export to clipboard"},
			{"p", "import from clipboard"},
			{"s", "source sorting"},
		}},
		{"General", []helpEntry{
			{"t", "cycle theme"},
			{"?", "toggle this help"},
			{"q / ctrl+c", "quit"},
		}},
	}

	var lines []string
	for _, sec := range sections {
		lines = append(lines, m.styles.HelpKey.Render("  "+sec.title))
		for _, e := range sec.entries {
			lines = append(lines, fmt.Sprintf("    %s  %s",
				m.styles.HelpKey.Render(fmt.Sprintf("%-12s", e.key)),
				m.styles.HelpDesc.Render(e.desc),
			))
		}
	}

	return m.styles.FooterBar.Width(max(m.width-1, 1)).Render(strings.Join(lines, "\n"))
}

func keyMatches(msg tea.KeyMsg, target key.Binding) bool {
	for _, k := range target.Keys() {
		if msg.String() == k {
			return true
		}
	}
	return false
}
