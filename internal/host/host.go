// Package host talks to the media center the layouts are applied to: the
// HTTP bridge that exposes its pages and search sources, an offline
// catalog standing in for it, and the event and source registries plugins
// hook into.
package host

import (
	"context"

	"github.com/mcao2/button-layout/internal/layout"
	"github.com/mcao2/button-layout/internal/sources"
)

// Card is one search result
type Card struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Title      string `json:"title" yaml:"title"`
	Subtitle   string `json:"original_title,omitempty" yaml:"subtitle,omitempty"`
	Overview   string `json:"overview,omitempty" yaml:"overview,omitempty"`
	URL        string `json:"url,omitempty" yaml:"url,omitempty"`
	CustomType string `json:"custom_type,omitempty" yaml:"custom_type,omitempty"`
}

// Source answers search queries for one provider
type Source interface {
	Title() string
	Search(ctx context.Context, query string) ([]Card, error)
}

// Middleware decorates a search source when it is registered.
type Middleware func(Source) Source

// Provider is everything the editor needs from the media center.
type Provider interface {
	// Buttons lists the raw buttons rendered on an activity page.
	Buttons(ctx context.Context, activity string) ([]layout.Button, error)
	// Sources lists the online balancers for the current title.
	Sources(ctx context.Context) ([]sources.Source, error)
	// SearchSources lists the registered search providers.
	SearchSources(ctx context.Context) ([]Source, error)
}
