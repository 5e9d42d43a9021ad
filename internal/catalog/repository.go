package catalog

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested category or product could not be located.
var ErrNotFound = errors.New("catalog entry not found")

// ErrConflict is returned when a create would collide with an existing entry.
var ErrConflict = errors.New("catalog entry already exists")

// CategoryRepository persists the category index.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, folder string) (Category, error)
	Save(ctx context.Context, c Category) error
	Delete(ctx context.Context, folder string) error
}

// ProductRepository persists products per category folder.
type ProductRepository interface {
	List(ctx context.Context, folder string) ([]Product, error)
	Get(ctx context.Context, folder, slug string) (Product, error)
	Save(ctx context.Context, folder string, p Product) error
	Delete(ctx context.Context, folder, slug string) error
}
