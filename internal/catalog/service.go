package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Service encapsulates catalog domain operations.
type Service struct {
	Categories CategoryRepository
	Products   ProductRepository
}

// ListCategories returns the category index.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	if s == nil || s.Categories == nil {
		return nil, errors.New("catalog service not configured")
	}
	return s.Categories.List(ctx)
}

// CategoryWithProducts loads a category and its product list.
func (s *Service) CategoryWithProducts(ctx context.Context, folder string) (Category, []Product, error) {
	if s == nil || s.Categories == nil || s.Products == nil {
		return Category{}, nil, errors.New("catalog service not configured")
	}
	cat, err := s.Categories.Get(ctx, folder)
	if err != nil {
		return Category{}, nil, err
	}
	products, err := s.Products.List(ctx, folder)
	if err != nil {
		return Category{}, nil, err
	}
	return cat, products, nil
}

// Product loads a single product by category folder and slug.
func (s *Service) Product(ctx context.Context, folder, slug string) (Product, error) {
	if s == nil || s.Products == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	return s.Products.Get(ctx, folder, slug)
}

// CreateCategory derives the storage folder from the name and persists the
// category. The folder doubles as the identifier, so name collisions are
// conflicts.
func (s *Service) CreateCategory(ctx context.Context, name, description, image string) (Category, error) {
	if s == nil || s.Categories == nil {
		return Category{}, errors.New("catalog service not configured")
	}
	folder := Slugify(name)
	if folder == "" {
		return Category{}, fmt.Errorf("category name is required: %w", ErrInvalidInput)
	}
	if _, err := s.Categories.Get(ctx, folder); err == nil {
		return Category{}, fmt.Errorf("category %q: %w", folder, ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return Category{}, err
	}
	cat := Category{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Folder:      folder,
		Image:       image,
	}
	if err := s.Categories.Save(ctx, cat); err != nil {
		return Category{}, err
	}
	return cat, nil
}

// DeleteCategory removes a category and all of its products.
func (s *Service) DeleteCategory(ctx context.Context, folder string) error {
	if s == nil || s.Categories == nil {
		return errors.New("catalog service not configured")
	}
	return s.Categories.Delete(ctx, folder)
}

// ProductInput is the admin payload for creating or updating a product.
type ProductInput struct {
	Name           string         `json:"name" validate:"required"`
	Description    string         `json:"description"`
	OEM            string         `json:"oem"`
	Price          float64        `json:"price" validate:"gte=0"`
	WeightKg       float64        `json:"weightKg" validate:"gte=0"`
	Stock          int            `json:"stock" validate:"gte=0"`
	Image          string         `json:"image"`
	Images         []string       `json:"images"`
	Specifications []SpecCategory `json:"specifications" validate:"dive"`
}

func (in ProductInput) toProduct() Product {
	w := Weight(in.WeightKg)
	if w <= 0 {
		w = DefaultWeightKg
	}
	return Product{
		Name:           strings.TrimSpace(in.Name),
		Slug:           Slugify(in.Name),
		Description:    strings.TrimSpace(in.Description),
		OEM:            strings.TrimSpace(in.OEM),
		Price:          in.Price,
		Weight:         w,
		Stock:          in.Stock,
		Image:          in.Image,
		Images:         in.Images,
		Specifications: in.Specifications,
	}
}

// CreateProduct adds a product to the category and refreshes its count.
func (s *Service) CreateProduct(ctx context.Context, folder string, in ProductInput) (Product, error) {
	if s == nil || s.Products == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	p := in.toProduct()
	if p.Slug == "" {
		return Product{}, fmt.Errorf("product name is required: %w", ErrInvalidInput)
	}
	if _, err := s.Categories.Get(ctx, folder); err != nil {
		return Product{}, err
	}
	if _, err := s.Products.Get(ctx, folder, p.Slug); err == nil {
		return Product{}, fmt.Errorf("product %q: %w", p.Slug, ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return Product{}, err
	}
	if err := s.Products.Save(ctx, folder, p); err != nil {
		return Product{}, err
	}
	if err := s.refreshCount(ctx, folder); err != nil {
		return Product{}, err
	}
	return p, nil
}

// UpdateProduct replaces an existing product. The slug follows the new name,
// so a rename retires the old slug.
func (s *Service) UpdateProduct(ctx context.Context, folder, slug string, in ProductInput) (Product, error) {
	if s == nil || s.Products == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	if _, err := s.Products.Get(ctx, folder, slug); err != nil {
		return Product{}, err
	}
	p := in.toProduct()
	if p.Slug == "" {
		return Product{}, fmt.Errorf("product name is required: %w", ErrInvalidInput)
	}
	if p.Slug != slug {
		if err := s.Products.Delete(ctx, folder, slug); err != nil {
			return Product{}, err
		}
	}
	if err := s.Products.Save(ctx, folder, p); err != nil {
		return Product{}, err
	}
	if err := s.refreshCount(ctx, folder); err != nil {
		return Product{}, err
	}
	return p, nil
}

// DeleteProduct removes a product and refreshes the category count.
func (s *Service) DeleteProduct(ctx context.Context, folder, slug string) error {
	if s == nil || s.Products == nil {
		return errors.New("catalog service not configured")
	}
	if err := s.Products.Delete(ctx, folder, slug); err != nil {
		return err
	}
	return s.refreshCount(ctx, folder)
}

func (s *Service) refreshCount(ctx context.Context, folder string) error {
	cat, err := s.Categories.Get(ctx, folder)
	if err != nil {
		// Products can exist without a category entry in hand-edited data
		// files; nothing to refresh then.
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	products, err := s.Products.List(ctx, folder)
	if err != nil {
		return err
	}
	cat.Count = len(products)
	return s.Categories.Save(ctx, cat)
}
