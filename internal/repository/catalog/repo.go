// Package catalog loads raw product records from a JSON catalog file.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meridian-cloud/specdex/internal/domain/product"
)

// Repo is a file-backed catalog source.
type Repo struct {
	path string
}

// New creates a catalog repository for the given JSON file.
func New(path string) *Repo {
	return &Repo{path: path}
}

// Load reads and decodes the catalog: a JSON array of raw product records.
// Record-level malformation is the index builder's concern; Load only fails
// on unreadable files or invalid JSON.
func (r *Repo) Load() ([]product.Raw, error) {
	data, err := os.ReadFile(filepath.Clean(r.path))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", r.path, err)
	}

	var products []product.Raw
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", r.path, err)
	}
	return products, nil
}
