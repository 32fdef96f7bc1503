package host

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcao2/button-layout/internal/layout"
	"github.com/mcao2/button-layout/internal/sources"
)

// Catalog is an offline snapshot of a media center: the buttons of each
// activity page, the balancers of a title and canned search results.
type Catalog struct {
	Pages     map[string][]layout.Button `yaml:"buttons"`
	Balancers []sources.Source           `yaml:"sources"`
	Searches  []CatalogSearch            `yaml:"search"`
}

// CatalogSearch is a search provider answering from fixed results
type CatalogSearch struct {
	Name    string `yaml:"title"`
	Results []Card `yaml:"results"`
}

// LoadCatalog reads a YAML catalog from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(c.Pages) == 0 {
		return nil, fmt.Errorf("catalog has no buttons")
	}
	return &c, nil
}

// Activities lists the pages the catalog has buttons for.
func (c *Catalog) Activities() []string {
	out := make([]string, 0, len(c.Pages))
	for name := range c.Pages {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Buttons(ctx context.Context, activity string) ([]layout.Button, error) {
	buttons, ok := c.Pages[activity]
	if !ok {
		return nil, fmt.Errorf("catalog has no activity %q", activity)
	}
	return append([]layout.Button(nil), buttons...), nil
}

func (c *Catalog) Sources(ctx context.Context) ([]sources.Source, error) {
	return append([]sources.Source(nil), c.Balancers...), nil
}

func (c *Catalog) SearchSources(ctx context.Context) ([]Source, error) {
	out := make([]Source, 0, len(c.Searches))
	for i := range c.Searches {
		out = append(out, &c.Searches[i])
	}
	return out, nil
}

func (s *CatalogSearch) Title() string { return s.Name }

// Search returns the results whose title contains query, ignoring case.
func (s *CatalogSearch) Search(ctx context.Context, query string) ([]Card, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Card
	for _, r := range s.Results {
		if q == "" || strings.Contains(strings.ToLower(r.Title), q) {
			out = append(out, r)
		}
	}
	return out, nil
}
