package layout

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrTooFewMembers   = errors.New("select at least 2 items")
	ErrEmptyFolderName = errors.New("enter a folder name")
	ErrFolderNotFound  = errors.New("folder not found")
	ErrAlreadyInFolder = errors.New("item already belongs to a folder")
	ErrMembersMismatch = errors.New("new order must list exactly the folder's members")
)

// Option configures a Session
type Option func(*Session)

// WithLogger sets the logger used for mutation traces.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithRules replaces the categorization rules.
func WithRules(rules []Rule) Option {
	return func(s *Session) {
		s.rules = rules
	}
}

// WithIDGenerator replaces the folder id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		s.newID = fn
	}
}

// Session holds the buttons of one activated page together with the store
// their layout is persisted in. It replaces the plugin's module-level state
// and is owned by a single caller; it is not safe for concurrent use.
type Session struct {
	store Store
	rules []Rule
	log   logrus.FieldLogger
	newID func() string

	buttons []Button
	all     []Item // every discovered item, custom order applied
	current []Item // top-level items, folder members removed
}

// NewSession creates a session backed by store.
func NewSession(store Store, opts ...Option) *Session {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Session{
		store: store,
		rules: DefaultRules,
		log:   discard,
		newID: newFolderID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// folder ids are UUIDv7, so they stay ordered by creation time
func newFolderID() string {
	return "folder_" + uuid.Must(uuid.NewV7()).String()
}

// Activate rediscovers the page's buttons and returns the display sequence.
// It runs categorize, custom order and folder filtering in that order.
func (s *Session) Activate(buttons []Button) ([]Element, error) {
	s.buttons = append([]Button(nil), buttons...)

	items := Flatten(Categorize(Discover(buttons, s.rules)))

	custom, err := s.CustomOrder()
	if err != nil {
		return nil, err
	}
	s.all = ApplyCustomOrder(items, custom)

	folders, err := s.Folders()
	if err != nil {
		return nil, err
	}
	members := folderMembership(folders)

	s.current = make([]Item, 0, len(s.all))
	for _, it := range s.all {
		if !members[it.ID] {
			s.current = append(s.current, it)
		}
	}

	s.log.WithFields(logrus.Fields{
		"items":   len(s.all),
		"folders": len(folders),
	}).Debug("layout activated")

	return s.Display()
}

// Display builds the current display sequence without writing anything.
func (s *Session) Display() ([]Element, error) {
	folders, hidden, order, err := s.state()
	if err != nil {
		return nil, err
	}
	return BuildDisplaySequence(s.current, folders, hidden, order), nil
}

// Items returns every discovered item in discovery order.
func (s *Session) Items() []Item {
	return append([]Item(nil), s.all...)
}

// Current returns the top-level items in their current order.
func (s *Session) Current() []Item {
	return append([]Item(nil), s.current...)
}

// Commit persists the current top-level item order as the custom order.
func (s *Session) Commit() error {
	return s.saveCustomOrder(s.current)
}

func (s *Session) saveCustomOrder(items []Item) error {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	if err := s.store.Set(KeyCustomOrder, ids); err != nil {
		return fmt.Errorf("save custom order: %w", err)
	}
	return nil
}

func (s *Session) CustomOrder() ([]string, error) {
	return Load[[]string](s.store, KeyCustomOrder)
}

func (s *Session) ItemOrder() ([]OrderEntry, error) {
	return Load[[]OrderEntry](s.store, KeyItemOrder)
}

func (s *Session) Hidden() ([]string, error) {
	return Load[[]string](s.store, KeyHidden)
}

func (s *Session) Folders() ([]Folder, error) {
	return Load[[]Folder](s.store, KeyFolders)
}

func (s *Session) state() ([]Folder, []string, []OrderEntry, error) {
	folders, err := s.Folders()
	if err != nil {
		return nil, nil, nil, err
	}
	hidden, err := s.Hidden()
	if err != nil {
		return nil, nil, nil, err
	}
	order, err := s.ItemOrder()
	if err != nil {
		return nil, nil, nil, err
	}
	return folders, hidden, order, nil
}

// EditorEntries lists every top-level item (hidden ones included, flagged)
// and every folder, in the same order the display uses.
func (s *Session) EditorEntries() ([]Element, error) {
	folders, hidden, order, err := s.state()
	if err != nil {
		return nil, err
	}
	hiddenSet := toSet(hidden)

	var entries []Element
	placedItems := make(map[string]bool)
	placedFolders := make(map[string]bool)

	addItem := func(it Item) {
		e := itemElement(it)
		e.Hidden = hiddenSet[it.ID]
		entries = append(entries, e)
		placedItems[it.ID] = true
	}
	addFolder := func(f Folder) {
		entries = append(entries, folderElement(f))
		placedFolders[f.ID] = true
	}

	for _, entry := range order {
		switch entry.Type {
		case EntryFolder:
			if f, ok := findFolder(folders, entry.ID); ok && !placedFolders[f.ID] {
				addFolder(f)
			}
		case EntryButton:
			if it, ok := findItem(s.current, entry.ID); ok && !placedItems[it.ID] {
				addItem(it)
			}
		}
	}
	for _, it := range s.current {
		if !placedItems[it.ID] {
			addItem(it)
		}
	}
	for _, f := range folders {
		if !placedFolders[f.ID] {
			addFolder(f)
		}
	}
	return entries, nil
}

// Move swaps the editor entry at index with its neighbour delta steps away
// and persists the resulting order. Moves past either end are no-ops.
func (s *Session) Move(index, delta int) (bool, error) {
	entries, err := s.EditorEntries()
	if err != nil {
		return false, err
	}
	target := index + delta
	if index < 0 || index >= len(entries) || target < 0 || target >= len(entries) {
		return false, nil
	}
	entries[index], entries[target] = entries[target], entries[index]

	if err := s.saveEditorOrder(entries); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) saveEditorOrder(entries []Element) error {
	order := make([]OrderEntry, 0, len(entries))
	var ids []string
	for _, e := range entries {
		switch e.Kind {
		case KindFolder:
			order = append(order, OrderEntry{Type: EntryFolder, ID: e.Folder.ID})
		case KindItem:
			order = append(order, OrderEntry{Type: EntryButton, ID: e.Item.ID})
			ids = append(ids, e.Item.ID)
		}
	}
	if err := s.store.Set(KeyItemOrder, order); err != nil {
		return fmt.Errorf("save item order: %w", err)
	}

	s.current = ApplyCustomOrder(s.current, ids)
	return s.Commit()
}

// SetHidden adds id to or removes it from the hidden set. Folder membership
// and ordering are untouched, so an unhidden item reappears in place.
func (s *Session) SetHidden(id string, hide bool) error {
	hidden, err := s.Hidden()
	if err != nil {
		return err
	}

	next := make([]string, 0, len(hidden)+1)
	present := false
	for _, h := range hidden {
		if h == id {
			present = true
			if !hide {
				continue
			}
		}
		next = append(next, h)
	}
	if hide && !present {
		next = append(next, id)
	}

	if err := s.store.Set(KeyHidden, next); err != nil {
		return fmt.Errorf("save hidden: %w", err)
	}
	s.log.WithFields(logrus.Fields{"id": id, "hidden": hide}).Debug("visibility changed")
	return nil
}

// ToggleHidden flips the hidden flag of id and returns the new state.
func (s *Session) ToggleHidden(id string) (bool, error) {
	hidden, err := s.Hidden()
	if err != nil {
		return false, err
	}
	hide := !toSet(hidden)[id]
	return hide, s.SetHidden(id, hide)
}

// Folder looks up a folder by id.
func (s *Session) Folder(id string) (Folder, error) {
	folders, err := s.Folders()
	if err != nil {
		return Folder{}, err
	}
	f, ok := findFolder(folders, id)
	if !ok {
		return Folder{}, fmt.Errorf("%w: %s", ErrFolderNotFound, id)
	}
	return f, nil
}

// FolderMembers resolves the members of a folder that are present on the
// current page, in folder order.
func (s *Session) FolderMembers(id string) ([]Item, error) {
	f, err := s.Folder(id)
	if err != nil {
		return nil, err
	}
	var items []Item
	for _, mid := range f.Buttons {
		if it, ok := findItem(s.all, mid); ok {
			items = append(items, it)
		}
	}
	return items, nil
}

// Candidates lists the items that may join a new folder.
func (s *Session) Candidates() ([]Item, error) {
	folders, err := s.Folders()
	if err != nil {
		return nil, err
	}
	members := folderMembership(folders)

	var items []Item
	for _, it := range s.all {
		if !members[it.ID] {
			items = append(items, it)
		}
	}
	return items, nil
}

// CreateFolder groups ids under name. The folder takes the display slot of
// its first member found in the display order; the other members' slots are
// removed. A display order is synthesized from the current items when none
// has been saved yet. Validation failures leave the store untouched.
func (s *Session) CreateFolder(name string, ids []string) (Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Folder{}, ErrEmptyFolderName
	}
	ids = dedupe(ids)
	if len(ids) < 2 {
		return Folder{}, ErrTooFewMembers
	}

	folders, err := s.Folders()
	if err != nil {
		return Folder{}, err
	}
	members := folderMembership(folders)
	for _, id := range ids {
		if members[id] {
			return Folder{}, fmt.Errorf("%w: %s", ErrAlreadyInFolder, id)
		}
	}

	order, err := s.ItemOrder()
	if err != nil {
		return Folder{}, err
	}

	folder := Folder{ID: s.newID(), Name: name, Buttons: ids}

	if len(order) == 0 {
		for _, it := range s.current {
			order = append(order, OrderEntry{Type: EntryButton, ID: it.ID})
		}
	}

	current := append([]Item(nil), s.current...)
	placed := false
	for _, id := range ids {
		for j := 0; j < len(order); j++ {
			if order[j].Type != EntryButton || order[j].ID != id {
				continue
			}
			if !placed {
				order[j] = OrderEntry{Type: EntryFolder, ID: folder.ID}
				placed = true
			} else {
				order = append(order[:j], order[j+1:]...)
			}
			break
		}
		if k := indexOfItem(current, id); k >= 0 {
			current = append(current[:k], current[k+1:]...)
		}
	}
	if !placed {
		order = append(order, OrderEntry{Type: EntryFolder, ID: folder.ID})
	}

	if err := s.store.Set(KeyFolders, append(folders, folder)); err != nil {
		return Folder{}, fmt.Errorf("save folders: %w", err)
	}
	if err := s.store.Set(KeyItemOrder, order); err != nil {
		return Folder{}, fmt.Errorf("save item order: %w", err)
	}
	if err := s.saveCustomOrder(current); err != nil {
		return Folder{}, err
	}
	s.current = current

	s.log.WithFields(logrus.Fields{
		"folder":  folder.ID,
		"name":    folder.Name,
		"members": len(folder.Buttons),
	}).Info("folder created")
	return folder, nil
}

// DeleteFolder removes a folder and returns its members to the top level,
// each right after the closest placed item that preceded it in discovery
// order, so members keep their relative order.
func (s *Session) DeleteFolder(id string) error {
	folders, err := s.Folders()
	if err != nil {
		return err
	}
	idx := -1
	for i, f := range folders {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, id)
	}
	folder := folders[idx]
	folders = append(folders[:idx], folders[idx+1:]...)

	order, err := s.ItemOrder()
	if err != nil {
		return err
	}
	kept := order[:0]
	for _, e := range order {
		if e.Type == EntryFolder && e.ID == id {
			continue
		}
		kept = append(kept, e)
	}
	order = kept

	type member struct {
		item Item
		pos  int
	}
	var restore []member
	for _, mid := range folder.Buttons {
		pos := indexOfItem(s.all, mid)
		if pos < 0 {
			continue
		}
		restore = append(restore, member{item: s.all[pos], pos: pos})
	}
	sort.SliceStable(restore, func(i, j int) bool {
		return restore[i].pos < restore[j].pos
	})

	for _, m := range restore {
		if indexOfItem(s.current, m.item.ID) < 0 {
			s.current = insertItem(s.current, m.item, s.precedingItemSlot(m.pos))
		}
		if len(order) > 0 && !hasButtonEntry(order, m.item.ID) {
			order = insertEntry(order, OrderEntry{Type: EntryButton, ID: m.item.ID}, s.precedingEntrySlot(order, m.pos))
		}
	}

	if err := s.store.Set(KeyFolders, folders); err != nil {
		return fmt.Errorf("save folders: %w", err)
	}
	if err := s.store.Set(KeyItemOrder, order); err != nil {
		return fmt.Errorf("save item order: %w", err)
	}
	if err := s.Commit(); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"folder": id, "restored": len(restore)}).Info("folder deleted")
	return nil
}

// precedingItemSlot is the index right after the last current item that was
// discovered before pos.
func (s *Session) precedingItemSlot(pos int) int {
	slot := 0
	for i, it := range s.current {
		if p := indexOfItem(s.all, it.ID); p >= 0 && p < pos {
			slot = i + 1
		}
	}
	return slot
}

func (s *Session) precedingEntrySlot(order []OrderEntry, pos int) int {
	slot := 0
	for i, e := range order {
		if e.Type != EntryButton {
			continue
		}
		if p := indexOfItem(s.all, e.ID); p >= 0 && p < pos {
			slot = i + 1
		}
	}
	return slot
}

// ReorderWithinFolder replaces the folder's member order wholesale.
func (s *Session) ReorderWithinFolder(id string, members []string) error {
	folders, err := s.Folders()
	if err != nil {
		return err
	}
	idx := -1
	for i, f := range folders {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, id)
	}
	if !samePermutation(folders[idx].Buttons, members) {
		return ErrMembersMismatch
	}

	folders[idx].Buttons = append([]string(nil), members...)
	if err := s.store.Set(KeyFolders, folders); err != nil {
		return fmt.Errorf("save folders: %w", err)
	}
	return nil
}

// MoveWithinFolder moves the member at index delta steps and rewrites the
// folder's member order. Moves past either end are no-ops.
func (s *Session) MoveWithinFolder(id string, index, delta int) (bool, error) {
	f, err := s.Folder(id)
	if err != nil {
		return false, err
	}
	target := index + delta
	if index < 0 || index >= len(f.Buttons) || target < 0 || target >= len(f.Buttons) {
		return false, nil
	}
	next := append([]string(nil), f.Buttons...)
	next[index], next[target] = next[target], next[index]
	if err := s.ReorderWithinFolder(id, next); err != nil {
		return false, err
	}
	return true, nil
}

// ResetAll clears custom order, hidden set, folders and display order, then
// re-activates the page. Every write is attempted; there is no rollback.
func (s *Session) ResetAll() error {
	writes := []struct {
		key   string
		value any
	}{
		{KeyCustomOrder, []string{}},
		{KeyHidden, []string{}},
		{KeyFolders, []Folder{}},
		{KeyItemOrder, []OrderEntry{}},
	}

	var errs []error
	for _, w := range writes {
		if err := s.store.Set(w.key, w.value); err != nil {
			errs = append(errs, fmt.Errorf("reset %s: %w", w.key, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.log.Info("layout reset")
	_, err := s.Activate(s.buttons)
	return err
}

func insertItem(items []Item, it Item, at int) []Item {
	items = append(items, Item{})
	copy(items[at+1:], items[at:])
	items[at] = it
	return items
}

func insertEntry(order []OrderEntry, e OrderEntry, at int) []OrderEntry {
	order = append(order, OrderEntry{})
	copy(order[at+1:], order[at:])
	order[at] = e
	return order
}

func hasButtonEntry(order []OrderEntry, id string) bool {
	for _, e := range order {
		if e.Type == EntryButton && e.ID == id {
			return true
		}
	}
	return false
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func samePermutation(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, id := range a {
		counts[id]++
	}
	for _, id := range b {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}
