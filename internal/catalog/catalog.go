// Package catalog holds the built-in tree item catalog that seeds a fresh
// database.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/validation"
)

//go:embed items.yaml
var defaultItems []byte

// File is the on-disk catalog layout
type File struct {
	Version int               `yaml:"version"`
	Items   []models.TreeItem `yaml:"items"`
}

// Default returns the built-in catalog, sorted by item id.
func Default() ([]models.TreeItem, error) {
	return Parse(defaultItems)
}

// Parse decodes and validates a YAML catalog. Item ids must be unique.
func Parse(data []byte) ([]models.TreeItem, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse item catalog: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported item catalog version %d", f.Version)
	}

	seen := make(map[string]bool, len(f.Items))
	for _, item := range f.Items {
		if err := validation.ValidateItem(item); err != nil {
			return nil, err
		}
		if seen[item.ItemID] {
			return nil, fmt.Errorf("duplicate item id %q in catalog", item.ItemID)
		}
		seen[item.ItemID] = true
	}

	sort.Slice(f.Items, func(i, j int) bool { return f.Items[i].ItemID < f.Items[j].ItemID })
	return f.Items, nil
}
