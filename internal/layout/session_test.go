package layout

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	idA = "view--alpha_A"
	idB = "view--beta_B"
	idC = "view--gamma_C"
)

var pageButtons = []Button{btn("alpha", "A"), btn("beta", "B"), btn("gamma", "C")}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("folder_%d", n)
	}
}

func newTestSession(t *testing.T, store Store) *Session {
	t.Helper()
	s := NewSession(store, WithIDGenerator(sequentialIDs()))
	_, err := s.Activate(pageButtons)
	require.NoError(t, err)
	return s
}

func display(t *testing.T, s *Session) []string {
	t.Helper()
	seq, err := s.Display()
	require.NoError(t, err)
	return elementIDs(seq)
}

func TestActivateAppliesCustomOrder(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(KeyCustomOrder, []string{idC, "stale"}))

	s := NewSession(store)
	seq, err := s.Activate(pageButtons)
	require.NoError(t, err)
	assert.Equal(t, []string{idC, idA, idB, "<edit>"}, elementIDs(seq))
	assert.Equal(t, []string{idC, idA, idB}, ids(s.Items()))
}

func TestActivateCorruptStore(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(KeyFolders, 42))

	_, err := NewSession(store).Activate(pageButtons)
	assert.Error(t, err)
}

func TestCreateFolder(t *testing.T) {
	store := NewMemoryStore()
	s := newTestSession(t, store)

	folder, err := s.CreateFolder("  Torrents ", []string{idA, idC})
	require.NoError(t, err)
	assert.Equal(t, "folder_1", folder.ID)
	assert.Equal(t, "Torrents", folder.Name)
	assert.Equal(t, []string{idA, idC}, folder.Buttons)

	assert.Equal(t, []string{"folder_1", idB, "<edit>"}, display(t, s))

	order, err := s.ItemOrder()
	require.NoError(t, err)
	assert.Equal(t, []OrderEntry{{Type: EntryFolder, ID: "folder_1"}, {Type: EntryButton, ID: idB}}, order)

	custom, err := s.CustomOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{idB}, custom)

	members, err := s.FolderMembers("folder_1")
	require.NoError(t, err)
	assert.Equal(t, []string{idA, idC}, ids(members))

	// survives a fresh activation
	again := newTestSession(t, store)
	assert.Equal(t, []string{"folder_1", idB, "<edit>"}, display(t, again))
}

func TestCreateFolderTakesFirstMemberSlot(t *testing.T) {
	s := newTestSession(t, NewMemoryStore())

	// members in selection order; C is not first in the display
	_, err := s.CreateFolder("Mix", []string{idC, idB})
	require.NoError(t, err)
	assert.Equal(t, []string{idA, "folder_1", "<edit>"}, display(t, s))
}

func TestCreateFolderValidation(t *testing.T) {
	tests := []struct {
		name    string
		folder  string
		members []string
		wantErr error
	}{
		{"one member", "Solo", []string{idA}, ErrTooFewMembers},
		{"duplicate members", "Twice", []string{idA, idA}, ErrTooFewMembers},
		{"no members", "Empty", nil, ErrTooFewMembers},
		{"blank name", "   ", []string{idA, idB}, ErrEmptyFolderName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, NewMemoryStore())

			_, err := s.CreateFolder(tt.folder, tt.members)
			require.ErrorIs(t, err, tt.wantErr)

			folders, err := s.Folders()
			require.NoError(t, err)
			assert.Empty(t, folders)
			order, err := s.ItemOrder()
			require.NoError(t, err)
			assert.Empty(t, order)
			assert.Equal(t, []string{idA, idB, idC, "<edit>"}, display(t, s))
		})
	}
}

func TestCreateFolderRejectsMemberOfAnotherFolder(t *testing.T) {
	s := newTestSession(t, NewMemoryStore())
	_, err := s.CreateFolder("First", []string{idA, idB})
	require.NoError(t, err)

	_, err = s.CreateFolder("Second", []string{idB, idC})
	require.ErrorIs(t, err, ErrAlreadyInFolder)

	folders, err := s.Folders()
	require.NoError(t, err)
	assert.Len(t, folders, 1)

	candidates, err := s.Candidates()
	require.NoError(t, err)
	assert.Equal(t, []string{idC}, ids(candidates))
}

func TestDeleteFolderRestoresMembers(t *testing.T) {
	s := newTestSession(t, NewMemoryStore())
	_, err := s.CreateFolder("Torrents", []string{idC, idA})
	require.NoError(t, err)
	require.Equal(t, []string{idB, "folder_1", "<edit>"}, display(t, s))

	require.NoError(t, s.DeleteFolder("folder_1"))
	assert.Equal(t, []string{idA, idB, idC, "<edit>"}, display(t, s))
	assert.Equal(t, []string{idA, idB, idC}, ids(s.Current()))

	order, err := s.ItemOrder()
	require.NoError(t, err)
	assert.Equal(t, []OrderEntry{
		{Type: EntryButton, ID: idA},
		{Type: EntryButton, ID: idB},
		{Type: EntryButton, ID: idC},
	}, order)

	folders, err := s.Folders()
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestDeleteFolderKeepsOtherFolders(t *testing.T) {
	buttons := append(append([]Button(nil), pageButtons...), btn("delta", "D"))
	s := NewSession(NewMemoryStore(), WithIDGenerator(sequentialIDs()))
	_, err := s.Activate(buttons)
	require.NoError(t, err)

	_, err = s.CreateFolder("One", []string{idA, idB})
	require.NoError(t, err)
	_, err = s.CreateFolder("Two", []string{idC, "view--delta_D"})
	require.NoError(t, err)
	require.Equal(t, []string{"folder_1", "folder_2", "<edit>"}, display(t, s))

	// folder entries do not anchor restored members
	require.NoError(t, s.DeleteFolder("folder_2"))
	assert.Equal(t, []string{idC, "view--delta_D", "folder_1", "<edit>"}, display(t, s))
}

func TestDeleteUnknownFolder(t *testing.T) {
	s := newTestSession(t, NewMemoryStore())
	assert.ErrorIs(t, s.DeleteFolder("folder_missing"), ErrFolderNotFound)
}

func TestHiddenRoundTrip(t *testing.T) {
	s := newTestSession(t, NewMemoryStore())

	require.NoError(t, s.SetHidden(idB, true))
	require.NoError(t, s.SetHidden(idB, true))
	assert.Equal(t, []string{idA, idC, "<edit>"}, display(t, s))

	hidden, err := s.Hidden()
	require.NoError(t, err)
	assert.Equal(t, []string{idB}, hidden)

	entries, err := s.EditorEntries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[1].Hidden)
	assert.False(t, entries[0].Hidden)

	hide, err := s.ToggleHidden(idB)
	require.NoError(t, err)
	assert.False(t, hide)
	assert.Equal(t, []string{idA, idB, idC, "<edit>"}, display(t, s))
}

func TestHiddenFolderMemberStaysInFolder(t *testing.T) {
	s := newTestSession(t, NewMemoryStore())
	_, err := s.CreateFolder("F", []string{idA, idB})
	require.NoError(t, err)

	require.NoError(t, s.SetHidden(idA, true))
	members, err := s.FolderMembers("folder_1")
	require.NoError(t, err)
	assert.Equal(t, []string{idA, idB}, ids(members))
	assert.Equal(t, []string{"folder_1", idC, "<edit>"}, display(t, s))
}

func TestMove(t *testing.T) {
	store := NewMemoryStore()
	s := newTestSession(t, store)

	moved, err := s.Move(2, -1)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []string{idA, idC, idB, "<edit>"}, display(t, s))

	custom, err := s.CustomOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{idA, idC, idB}, custom)

	moved, err = s.Move(0, -1)
	require.NoError(t, err)
	assert.False(t, moved)
	moved, err = s.Move(2, 1)
	require.NoError(t, err)
	assert.False(t, moved)

	again := newTestSession(t, store)
	assert.Equal(t, []string{idA, idC, idB, "<edit>"}, display(t, again))
}

func TestMoveFolderEntry(t *testing.T) {
	s := newTestSession(t, NewMemoryStore())
	_, err := s.CreateFolder("F", []string{idA, idC})
	require.NoError(t, err)

	entries, err := s.EditorEntries()
	require.NoError(t, err)
	require.Equal(t, []string{"folder_1", idB}, elementIDs(entries))

	moved, err := s.Move(0, 1)
	require.NoError(t, err)
	require.True(t, moved)
	assert.Equal(t, []string{idB, "folder_1", "<edit>"}, display(t, s))
}

func TestEditorEntriesFallbackOrder(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(KeyFolders, []Folder{{ID: "folder_x", Name: "X", Buttons: []string{idB, idC}}}))

	s := newTestSession(t, store)
	entries, err := s.EditorEntries()
	require.NoError(t, err)
	assert.Equal(t, []string{idA, "folder_x"}, elementIDs(entries))
	assert.Equal(t, []string{idA, "folder_x", "<edit>"}, display(t, s))
}

func TestMoveWithinFolder(t *testing.T) {
	s := newTestSession(t, NewMemoryStore())
	_, err := s.CreateFolder("F", []string{idA, idB, idC})
	require.NoError(t, err)

	moved, err := s.MoveWithinFolder("folder_1", 0, 1)
	require.NoError(t, err)
	assert.True(t, moved)

	f, err := s.Folder("folder_1")
	require.NoError(t, err)
	assert.Equal(t, []string{idB, idA, idC}, f.Buttons)

	moved, err = s.MoveWithinFolder("folder_1", 2, 1)
	require.NoError(t, err)
	assert.False(t, moved)

	err = s.ReorderWithinFolder("folder_1", []string{idA, idB})
	assert.ErrorIs(t, err, ErrMembersMismatch)
	err = s.ReorderWithinFolder("folder_1", []string{idA, idB, "other"})
	assert.ErrorIs(t, err, ErrMembersMismatch)

	require.NoError(t, s.ReorderWithinFolder("folder_1", []string{idC, idB, idA}))
	members, err := s.FolderMembers("folder_1")
	require.NoError(t, err)
	assert.Equal(t, []string{idC, idB, idA}, ids(members))
}

func TestResetAll(t *testing.T) {
	store := NewMemoryStore()
	s := newTestSession(t, store)
	_, err := s.Move(0, 1)
	require.NoError(t, err)
	_, err = s.CreateFolder("F", []string{idA, idC})
	require.NoError(t, err)
	require.NoError(t, s.SetHidden(idB, true))

	require.NoError(t, s.ResetAll())

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.CustomOrder)
	assert.Empty(t, snap.Hidden)
	assert.Empty(t, snap.Folders)
	assert.Empty(t, snap.ItemOrder)
	assert.Equal(t, []string{idA, idB, idC, "<edit>"}, display(t, s))
}

type failingStore struct {
	*MemoryStore
	fail     map[string]bool
	attempts []string
}

func (f *failingStore) Set(key string, value any) error {
	f.attempts = append(f.attempts, key)
	if f.fail[key] {
		return errors.New("quota exceeded")
	}
	return f.MemoryStore.Set(key, value)
}

func TestResetAllAttemptsEveryWrite(t *testing.T) {
	store := &failingStore{
		MemoryStore: NewMemoryStore(),
		fail:        map[string]bool{KeyCustomOrder: true, KeyFolders: true},
	}
	s := newTestSession(t, store)

	err := s.ResetAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reset button_custom_order")
	assert.Contains(t, err.Error(), "reset button_folders")
	assert.ElementsMatch(t, []string{KeyCustomOrder, KeyHidden, KeyFolders, KeyItemOrder}, store.attempts)
}

func TestCreateFolderFailedWriteKeepsItems(t *testing.T) {
	for _, key := range []string{KeyFolders, KeyItemOrder, KeyCustomOrder} {
		t.Run(key, func(t *testing.T) {
			store := &failingStore{MemoryStore: NewMemoryStore(), fail: map[string]bool{key: true}}
			s := newTestSession(t, store)

			_, err := s.CreateFolder("F", []string{idA, idC})
			require.Error(t, err)
			assert.Equal(t, []string{idA, idB, idC}, ids(s.Current()))
		})
	}

	store := &failingStore{MemoryStore: NewMemoryStore(), fail: map[string]bool{KeyFolders: true}}
	s := newTestSession(t, store)
	_, err := s.CreateFolder("F", []string{idA, idC})
	require.Error(t, err)
	assert.Equal(t, []string{idA, idB, idC, "<edit>"}, display(t, s))

	entries, err := s.EditorEntries()
	require.NoError(t, err)
	assert.Equal(t, []string{idA, idB, idC}, elementIDs(entries))
}
