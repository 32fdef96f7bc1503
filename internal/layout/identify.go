package layout

import (
	"regexp"
	"strings"
	"unicode"
)

const subtitleIDLen = 20

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonAlnum      = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// excludedClasses mark controls that are never laid out as items
var excludedClasses = []string{"button--play", "button--edit-order", "button--folder"}

// Identify derives the id correlating a live button with persisted state.
// It is deterministic but not unique: two buttons with the same markers,
// label and subtitle prefix share an id and lookups resolve to the first.
func Identify(b Button) string {
	var markers []string
	for _, c := range b.Classes {
		if strings.HasPrefix(c, "view--") || strings.HasPrefix(c, "button--") {
			markers = append(markers, c)
		}
	}

	label := whitespaceRun.ReplaceAllString(strings.TrimSpace(b.Label), "_")
	id := strings.Join(markers, "_") + "_" + label

	if b.Subtitle != "" {
		id += "_" + nonAlnum.ReplaceAllString(firstRunes(b.Subtitle, subtitleIDLen), "_")
	}
	return id
}

// Excluded reports whether the button is a control rather than an item.
func Excluded(b Button) bool {
	attr := strings.Join(b.Classes, " ")
	for _, c := range excludedClasses {
		if strings.Contains(attr, c) {
			return true
		}
	}
	return false
}

// Discover turns raw buttons into items, skipping excluded controls.
func Discover(buttons []Button, rules []Rule) []Item {
	items := make([]Item, 0, len(buttons))
	for _, b := range buttons {
		if Excluded(b) {
			continue
		}
		items = append(items, Item{
			ID:       Identify(b),
			Category: Classify(b.Classes, rules),
			Button:   b,
		})
	}
	return items
}

// DisplayName returns the label shown for an item in editor lists. Items
// without a label are named after their marker class; labels shared with
// other items get the subtitle or view marker appended.
func DisplayName(it Item, all []Item) string {
	text := strings.TrimSpace(it.Label)
	if text == "" {
		for _, c := range it.Classes {
			if strings.HasPrefix(c, "view--") || strings.HasPrefix(c, "button--") {
				name := strings.TrimPrefix(strings.TrimPrefix(c, "view--"), "button--")
				return capitalize(strings.ReplaceAll(name, "_", " "))
			}
		}
		return "Button"
	}

	same := 0
	for _, other := range all {
		if strings.TrimSpace(other.Label) == text {
			same++
		}
	}
	if same < 2 {
		return text
	}

	if it.Subtitle != "" {
		return text + " (" + firstRunes(it.Subtitle, 30) + ")"
	}
	for _, c := range it.Classes {
		if strings.HasPrefix(c, "view--") {
			name := strings.ReplaceAll(strings.TrimPrefix(c, "view--"), "_", " ")
			return text + " (" + capitalize(name) + ")"
		}
	}
	return text
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
