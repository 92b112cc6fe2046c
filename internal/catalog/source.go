package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed menu.json
var defaultMenu []byte

// Source fetches the raw menu. Implementations are consulted once at
// startup; the resulting Catalog is immutable.
type Source interface {
	Fetch(ctx context.Context) ([]MenuItem, error)
}

// Load fetches from src and builds a validated Catalog.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	items, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return New(items)
}

// FileSource reads a JSON array of menu items from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(_ context.Context) ([]MenuItem, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %q: %w", s.Path, err)
	}
	return decode(b)
}

// EmbeddedSource serves the menu compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Fetch(_ context.Context) ([]MenuItem, error) {
	return decode(defaultMenu)
}

func decode(b []byte) ([]MenuItem, error) {
	var items []MenuItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("catalog: decode menu: %w", err)
	}
	return items, nil
}
