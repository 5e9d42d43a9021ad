package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qualclamps/storefront/internal/catalog"
	"github.com/qualclamps/storefront/internal/pricing"
	"github.com/qualclamps/storefront/internal/shipping"
)

// ErrNotFound indicates the cart line could not be located.
var ErrNotFound = errors.New("cart line not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Service encapsulates cart domain operations.
type Service struct {
	Store    Store
	Products catalog.ProductRepository
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Add inserts a line or increments the quantity of the line sharing the same
// composite key. A supplied shipping selection replaces the stored one; its
// cost is recomputed server-side against the whole-cart quantity.
func (s *Service) Add(ctx context.Context, sessionID, folder, slug string, qty int, specs map[string]string, sel *ShippingSelection) (string, error) {
	if s == nil || s.Store == nil || s.Products == nil {
		return "", errors.New("cart service not configured")
	}
	if qty <= 0 {
		return "", fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}
	product, err := s.Products.Get(ctx, folder, slug)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return "", fmt.Errorf("unknown product %s/%s: %w", folder, slug, ErrNotFound)
		}
		return "", err
	}

	lines, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}

	key := LineKey(folder, slug, specs)
	line, exists := lines[key]
	if exists {
		line.Quantity += qty
	} else {
		line = Line{
			CategoryFolder: folder,
			ProductSlug:    slug,
			Quantity:       qty,
			Specifications: specs,
			AddedAt:        s.now(),
		}
	}
	if sel != nil {
		line.Shipping = &ShippingSelection{Country: sel.Country, Method: sel.Method}
	}
	lines[key] = line

	s.recomputeLineShipping(&line, product, TotalQuantity(lines))
	lines[key] = line

	if err := s.Store.Save(ctx, sessionID, lines); err != nil {
		return "", err
	}
	return key, nil
}

// UpdateQuantity sets a line's quantity. Zero or negative removes the line.
// The stored shipping cost is recomputed with the new line weight and the
// whole-cart quantity before the cart is saved.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, key string, qty int) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	lines, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	line, ok := lines[key]
	if !ok {
		return fmt.Errorf("line %q: %w", key, ErrNotFound)
	}

	if qty <= 0 {
		delete(lines, key)
		return s.Store.Save(ctx, sessionID, lines)
	}

	line.Quantity = qty
	lines[key] = line

	if product, err := s.Products.Get(ctx, line.CategoryFolder, line.ProductSlug); err == nil {
		s.recomputeLineShipping(&line, product, TotalQuantity(lines))
		lines[key] = line
	}

	return s.Store.Save(ctx, sessionID, lines)
}

// Remove deletes a line from the cart.
func (s *Service) Remove(ctx context.Context, sessionID, key string) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	lines, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if _, ok := lines[key]; !ok {
		return fmt.Errorf("line %q: %w", key, ErrNotFound)
	}
	delete(lines, key)
	return s.Store.Save(ctx, sessionID, lines)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	return s.Store.Clear(ctx, sessionID)
}

// TotalQuantity sums the quantities of every line in the cart. Quantity
// discounts for shipping are driven by this whole-cart figure, not the line's
// own quantity.
func TotalQuantity(lines map[string]Line) int {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total
}

// recomputeLineShipping refreshes the cached shipping cost for a line using
// its current weight and the whole-cart quantity. Destinations we no longer
// ship to leave the selection cost untouched.
func (s *Service) recomputeLineShipping(line *Line, product catalog.Product, totalQty int) {
	if line.Shipping == nil {
		return
	}
	lp, err := pricing.PriceLine(product, line.Specifications, line.Quantity)
	if err != nil {
		return
	}
	cost, err := shipping.Cost(line.Shipping.Country, lp.TotalWeightKg, totalQty, line.Shipping.Method)
	if err != nil {
		return
	}
	line.Shipping.Cost = cost.InexactFloat64()
}
