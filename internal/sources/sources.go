// Package sources orders and filters the online balancers a title can be
// played from.
package sources

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Source is one balancer offered for a title
type Source struct {
	Title    string `json:"title" yaml:"title"`
	Balancer string `json:"source,omitempty" yaml:"source,omitempty"`
	Ghost    bool   `json:"ghost,omitempty" yaml:"ghost,omitempty"`
}

// SortType selects how sources are ordered
type SortType string

const (
	SortDefault  SortType = "default"
	SortAlphabet SortType = "alphabet"
	SortQuality  SortType = "quality"
)

// SortTypes lists every sort type in menu order.
var SortTypes = []SortType{SortDefault, SortAlphabet, SortQuality}

func (t SortType) Description() string {
	switch t {
	case SortAlphabet:
		return "A to Z"
	case SortQuality:
		return "Best to worst"
	default:
		return "Server order"
	}
}

// ParseSortType accepts the persisted names of the sort types.
func ParseSortType(s string) (SortType, error) {
	for _, t := range SortTypes {
		if string(t) == strings.ToLower(strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return SortDefault, fmt.Errorf("unknown sort type %q", s)
}

var qualityNumber = regexp.MustCompile(`(\d{3,4})[pP]?`)

// Quality extracts a vertical resolution from a source name, 0 if none.
func Quality(name string) int {
	if name == "" {
		return 0
	}
	upper := strings.ToUpper(name)
	if strings.Contains(upper, "4K") || strings.Contains(upper, "UHD") || strings.Contains(upper, "2160") {
		return 2160
	}
	if m := qualityNumber.FindStringSubmatch(name); m != nil {
		q, _ := strconv.Atoi(m[1])
		return q
	}
	if strings.Contains(upper, "FULLHD") || strings.Contains(upper, "FHD") {
		return 1080
	}
	if strings.Contains(upper, "HD") {
		return 720
	}
	return 0
}

// Apply returns a sorted copy of list. Unavailable sources always follow
// the available ones and keep their server order.
func Apply(list []Source, sortType SortType) []Source {
	if len(list) == 0 {
		return list
	}

	available, ghosts := split(list)

	switch sortType {
	case SortAlphabet:
		c := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(available, func(i, j int) bool {
			return c.CompareString(available[i].Title, available[j].Title) < 0
		})
	case SortQuality:
		sort.SliceStable(available, func(i, j int) bool {
			return Quality(available[i].Title) > Quality(available[j].Title)
		})
	}

	return append(available, ghosts...)
}

// FilterUnavailable drops unavailable sources when hide is set.
func FilterUnavailable(list []Source, hide bool) []Source {
	if !hide {
		return list
	}
	out := make([]Source, 0, len(list))
	for _, s := range list {
		if !s.Ghost {
			out = append(out, s)
		}
	}
	return out
}

func split(list []Source) (available, ghosts []Source) {
	available = make([]Source, 0, len(list))
	for _, s := range list {
		if s.Ghost {
			ghosts = append(ghosts, s)
		} else {
			available = append(available, s)
		}
	}
	return available, ghosts
}
