// Package jsonstore implements the catalog and order repositories on top of
// flat JSON files under a single data directory. Writes are staged to a
// temporary file and renamed into place so readers never observe a partial
// document.
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	categoriesFile = "categories.json"
	productsFile   = "products.json"
	ordersFile     = "orders.json"
)

// Store is the shared root for the file-backed repositories. A single mutex
// serialises writers across all files; catalog traffic is read-heavy and the
// write path is admin-only, so contention is not a concern.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New ensures the data directory exists and returns a store rooted at it.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("jsonstore: data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("jsonstore: create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory root.
func (s *Store) Dir() string { return s.dir }

// Categories returns the category repository view of the store.
func (s *Store) Categories() *Categories { return &Categories{s: s} }

// Products returns the product repository view of the store.
func (s *Store) Products() *Products { return &Products{s: s} }

// Orders returns the order repository view of the store.
func (s *Store) Orders() *Orders { return &Orders{s: s} }

// readJSON decodes the file at path into v. A missing file is not an error;
// v is left untouched and ok is false.
func (s *Store) readJSON(path string, v any) (ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("jsonstore: read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("jsonstore: decode %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// writeJSON stages v to a temp file in the target directory and renames it
// over path. Rename within one directory is atomic on POSIX filesystems.
func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonstore: encode %s: %w", filepath.Base(path), err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("jsonstore: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("jsonstore: stage %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("jsonstore: stage %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonstore: stage %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonstore: replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
