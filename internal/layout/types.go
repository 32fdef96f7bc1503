package layout

// Category is the default grouping bucket of a button
type Category string

const (
	CategoryOnline   Category = "online"
	CategoryTorrent  Category = "torrent"
	CategoryTrailer  Category = "trailer"
	CategoryBook     Category = "book"
	CategoryReaction Category = "reaction"
	CategoryOther    Category = "other"
)

// Categories lists every category in flattening order.
var Categories = []Category{
	CategoryOnline,
	CategoryTorrent,
	CategoryTrailer,
	CategoryBook,
	CategoryReaction,
	CategoryOther,
}

// Button is a raw entry discovered in the host's render tree
type Button struct {
	Classes  []string `json:"classes" yaml:"classes"`
	Label    string   `json:"label" yaml:"label"`
	Subtitle string   `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Icon     string   `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Item is a discovered button with its derived identity
type Item struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Button
}

// Folder groups buttons under a name
type Folder struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Buttons []string `json:"buttons"`
}

// Contains reports whether id is a member of the folder.
func (f Folder) Contains(id string) bool {
	for _, b := range f.Buttons {
		if b == id {
			return true
		}
	}
	return false
}

// EntryType tells folder entries from button entries in the display order
type EntryType string

const (
	EntryFolder EntryType = "folder"
	EntryButton EntryType = "button"
)

// OrderEntry is one slot of the persisted top-level order
type OrderEntry struct {
	Type EntryType `json:"type"`
	ID   string    `json:"id"`
}

// ElementKind identifies what a display slot holds
type ElementKind int

const (
	KindItem ElementKind = iota
	KindFolder
	KindEdit
)

func (k ElementKind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindFolder:
		return "folder"
	case KindEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// Element is one slot of a display sequence or of the editor list.
// Hidden is only ever set on editor entries.
type Element struct {
	Kind   ElementKind
	Item   Item
	Folder Folder
	Hidden bool
}

// ID returns the item or folder id the element refers to.
func (e Element) ID() string {
	switch e.Kind {
	case KindItem:
		return e.Item.ID
	case KindFolder:
		return e.Folder.ID
	default:
		return ""
	}
}

func itemElement(it Item) Element {
	return Element{Kind: KindItem, Item: it}
}

func folderElement(f Folder) Element {
	return Element{Kind: KindFolder, Folder: f}
}
