package layout

import "strings"

// Rule maps class-attribute substrings to a category
type Rule struct {
	Category Category
	Patterns []string
}

// DefaultRules are checked in order; the first matching rule wins.
var DefaultRules = []Rule{
	{Category: CategoryOnline, Patterns: []string{"online", "lampac", "modss", "showy"}},
	{Category: CategoryTorrent, Patterns: []string{"torrent"}},
	{Category: CategoryTrailer, Patterns: []string{"trailer", "rutube"}},
	{Category: CategoryBook, Patterns: []string{"book"}},
	{Category: CategoryReaction, Patterns: []string{"reaction"}},
}

// Classify returns the category of the first rule with a pattern found in
// the class attribute, or CategoryOther.
func Classify(classes []string, rules []Rule) Category {
	attr := strings.Join(classes, " ")
	for _, rule := range rules {
		for _, p := range rule.Patterns {
			if strings.Contains(attr, p) {
				return rule.Category
			}
		}
	}
	return CategoryOther
}

// Categorize buckets items by category keeping their relative order.
// Unknown categories land in CategoryOther.
func Categorize(items []Item) map[Category][]Item {
	buckets := make(map[Category][]Item, len(Categories))
	for _, c := range Categories {
		buckets[c] = nil
	}
	for _, it := range items {
		if _, ok := buckets[it.Category]; ok {
			buckets[it.Category] = append(buckets[it.Category], it)
		} else {
			buckets[CategoryOther] = append(buckets[CategoryOther], it)
		}
	}
	return buckets
}

// Flatten concatenates buckets in category precedence order.
func Flatten(buckets map[Category][]Item) []Item {
	var out []Item
	for _, c := range Categories {
		out = append(out, buckets[c]...)
	}
	return out
}

// ApplyCustomOrder emits items named in saved first, in saved order, then
// everything else in input order. Each saved id consumes at most one item,
// the first remaining match; no item is ever dropped.
func ApplyCustomOrder(items []Item, saved []string) []Item {
	if len(saved) == 0 {
		return append([]Item(nil), items...)
	}

	sorted := make([]Item, 0, len(items))
	remaining := append([]Item(nil), items...)

	for _, id := range saved {
		for i, it := range remaining {
			if it.ID == id {
				sorted = append(sorted, it)
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}
	return append(sorted, remaining...)
}
