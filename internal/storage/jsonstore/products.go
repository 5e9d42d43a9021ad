package jsonstore

import (
	"context"
	"path/filepath"

	"github.com/qualclamps/storefront/internal/catalog"
)

// Products implements catalog.ProductRepository over per-category
// <folder>/products.json files.
type Products struct {
	s *Store
}

var _ catalog.ProductRepository = (*Products)(nil)

func (p *Products) path(folder string) string {
	return filepath.Join(p.s.dir, folder, productsFile)
}

// List returns the products in a category folder; an absent file reads as an
// empty category.
func (p *Products) List(ctx context.Context, folder string) ([]catalog.Product, error) {
	var out []catalog.Product
	if _, err := p.s.readJSON(p.path(folder), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the product with the given slug within the folder.
func (p *Products) Get(ctx context.Context, folder, slug string) (catalog.Product, error) {
	all, err := p.List(ctx, folder)
	if err != nil {
		return catalog.Product{}, err
	}
	for _, prod := range all {
		if prod.Slug == slug {
			return prod, nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

// Save inserts the product or replaces the entry sharing its slug.
func (p *Products) Save(ctx context.Context, folder string, prod catalog.Product) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	var all []catalog.Product
	if _, err := p.s.readJSON(p.path(folder), &all); err != nil {
		return err
	}
	replaced := false
	for i := range all {
		if all[i].Slug == prod.Slug {
			all[i] = prod
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, prod)
	}
	return p.s.writeJSON(p.path(folder), all)
}

// Delete removes the product with the given slug.
func (p *Products) Delete(ctx context.Context, folder, slug string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	var all []catalog.Product
	if _, err := p.s.readJSON(p.path(folder), &all); err != nil {
		return err
	}
	kept := all[:0]
	found := false
	for _, prod := range all {
		if prod.Slug == slug {
			found = true
			continue
		}
		kept = append(kept, prod)
	}
	if !found {
		return catalog.ErrNotFound
	}
	return p.s.writeJSON(p.path(folder), kept)
}
