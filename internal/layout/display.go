package layout

// BuildDisplaySequence lays out top-level items and folders.
//
// With a saved display order the order is walked first, then any visible
// item it does not mention, then any folder it does not mention. Without
// one, visible items come in their given order followed by all folders.
// Folder members and hidden items are never emitted as top-level items.
// The edit control is always last.
func BuildDisplaySequence(items []Item, folders []Folder, hidden []string, order []OrderEntry) []Element {
	inFolder := folderMembership(folders)
	hiddenSet := toSet(hidden)

	visible := func(id string) bool {
		return !hiddenSet[id] && !inFolder[id]
	}

	var seq []Element

	if len(order) > 0 {
		addedItems := make(map[string]bool)
		addedFolders := make(map[string]bool)

		for _, entry := range order {
			switch entry.Type {
			case EntryFolder:
				if addedFolders[entry.ID] {
					continue
				}
				if f, ok := findFolder(folders, entry.ID); ok {
					seq = append(seq, folderElement(f))
					addedFolders[f.ID] = true
				}
			case EntryButton:
				if addedItems[entry.ID] || !visible(entry.ID) {
					continue
				}
				if it, ok := findItem(items, entry.ID); ok {
					seq = append(seq, itemElement(it))
					addedItems[it.ID] = true
				}
			}
		}

		for _, it := range items {
			if !addedItems[it.ID] && visible(it.ID) {
				seq = append(seq, itemElement(it))
			}
		}
		for _, f := range folders {
			if !addedFolders[f.ID] {
				seq = append(seq, folderElement(f))
			}
		}
	} else {
		for _, it := range items {
			if visible(it.ID) {
				seq = append(seq, itemElement(it))
			}
		}
		for _, f := range folders {
			seq = append(seq, folderElement(f))
		}
	}

	return append(seq, Element{Kind: KindEdit})
}

func folderMembership(folders []Folder) map[string]bool {
	members := make(map[string]bool)
	for _, f := range folders {
		for _, id := range f.Buttons {
			members[id] = true
		}
	}
	return members
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func findFolder(folders []Folder, id string) (Folder, bool) {
	for _, f := range folders {
		if f.ID == id {
			return f, true
		}
	}
	return Folder{}, false
}

func findItem(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

func indexOfItem(items []Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
