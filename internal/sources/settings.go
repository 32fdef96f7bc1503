package sources

import (
	"fmt"

	"github.com/mcao2/button-layout/internal/layout"
)

const (
	KeySortType        = "online_source_sort_type"
	KeyHideUnavailable = "online_source_hide_unavailable"
	KeyButtonEnabled   = "online_source_sort_button_enabled"
)

// Settings are the persisted source management preferences
type Settings struct {
	Sort            SortType
	HideUnavailable bool
	ButtonEnabled   bool
}

// DefaultSettings keeps server order and shows every source.
var DefaultSettings = Settings{Sort: SortDefault, ButtonEnabled: true}

// LoadSettings reads settings from store, falling back to the defaults for
// absent or unknown values.
func LoadSettings(store layout.Store) (Settings, error) {
	s := DefaultSettings

	var raw string
	found, err := store.Get(KeySortType, &raw)
	if err != nil {
		return s, fmt.Errorf("load %s: %w", KeySortType, err)
	}
	if found {
		if t, err := ParseSortType(raw); err == nil {
			s.Sort = t
		}
	}

	if _, err := store.Get(KeyHideUnavailable, &s.HideUnavailable); err != nil {
		return s, fmt.Errorf("load %s: %w", KeyHideUnavailable, err)
	}
	if _, err := store.Get(KeyButtonEnabled, &s.ButtonEnabled); err != nil {
		return s, fmt.Errorf("load %s: %w", KeyButtonEnabled, err)
	}
	return s, nil
}

// Save writes every setting to store.
func (s Settings) Save(store layout.Store) error {
	if err := store.Set(KeySortType, string(s.Sort)); err != nil {
		return fmt.Errorf("save %s: %w", KeySortType, err)
	}
	if err := store.Set(KeyHideUnavailable, s.HideUnavailable); err != nil {
		return fmt.Errorf("save %s: %w", KeyHideUnavailable, err)
	}
	if err := store.Set(KeyButtonEnabled, s.ButtonEnabled); err != nil {
		return fmt.Errorf("save %s: %w", KeyButtonEnabled, err)
	}
	return nil
}

// Process sorts and filters list the way the settings ask for. The input
// is left untouched so it can be reprocessed after a settings change.
func (s Settings) Process(list []Source) []Source {
	return FilterUnavailable(Apply(list, s.Sort), s.HideUnavailable)
}
