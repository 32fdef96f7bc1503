package config

import (
	"fmt"

	"github.com/mcao2/button-layout/internal/layout"
)

// Store is a layout store that holds resources until closed
type Store interface {
	layout.Store
	Close() error
}

// OpenStore opens the layout store selected by storage.backend.
func (c *Config) OpenStore() (Store, error) {
	path, err := c.StorePath()
	if err != nil {
		return nil, err
	}

	switch c.Storage.Backend {
	case BackendSQLite:
		s, err := OpenSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendJSON, "":
		s, err := OpenFileStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
}
