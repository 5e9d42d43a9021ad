package jsonstore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/qualclamps/storefront/internal/catalog"
)

// Categories implements catalog.CategoryRepository over categories.json.
type Categories struct {
	s *Store
}

var _ catalog.CategoryRepository = (*Categories)(nil)

func (c *Categories) path() string {
	return filepath.Join(c.s.dir, categoriesFile)
}

// List returns all categories; an absent file reads as an empty catalog.
func (c *Categories) List(ctx context.Context) ([]catalog.Category, error) {
	var out []catalog.Category
	if _, err := c.s.readJSON(c.path(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the category with the given folder.
func (c *Categories) Get(ctx context.Context, folder string) (catalog.Category, error) {
	all, err := c.List(ctx)
	if err != nil {
		return catalog.Category{}, err
	}
	for _, cat := range all {
		if cat.Folder == folder {
			return cat, nil
		}
	}
	return catalog.Category{}, catalog.ErrNotFound
}

// Save inserts the category or replaces the entry sharing its folder.
func (c *Categories) Save(ctx context.Context, cat catalog.Category) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var all []catalog.Category
	if _, err := c.s.readJSON(c.path(), &all); err != nil {
		return err
	}
	replaced := false
	for i := range all {
		if all[i].Folder == cat.Folder {
			all[i] = cat
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, cat)
	}
	return c.s.writeJSON(c.path(), all)
}

// Delete removes the category entry and its product folder.
func (c *Categories) Delete(ctx context.Context, folder string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var all []catalog.Category
	if _, err := c.s.readJSON(c.path(), &all); err != nil {
		return err
	}
	kept := all[:0]
	found := false
	for _, cat := range all {
		if cat.Folder == folder {
			found = true
			continue
		}
		kept = append(kept, cat)
	}
	if !found {
		return catalog.ErrNotFound
	}
	if err := c.s.writeJSON(c.path(), kept); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(c.s.dir, folder))
}
