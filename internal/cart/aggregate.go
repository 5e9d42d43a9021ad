package cart

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/qualclamps/storefront/internal/catalog"
	"github.com/qualclamps/storefront/internal/pricing"
	"github.com/qualclamps/storefront/internal/shipping"
)

// LineDetail is a cart line joined with its catalog product and fully
// recomputed pricing and shipping.
type LineDetail struct {
	Key            string              `json:"key"`
	CategoryFolder string              `json:"categoryFolder"`
	ProductSlug    string              `json:"productSlug"`
	ProductName    string              `json:"productName"`
	Image          string              `json:"image,omitempty"`
	Quantity       int                 `json:"quantity"`
	Specifications map[string]string   `json:"specifications,omitempty"`
	UnitPrice      float64             `json:"unitPrice"`
	DiscountRate   float64             `json:"discountRate"`
	FinalUnitPrice float64             `json:"finalUnitPrice"`
	LineTotal      float64             `json:"lineTotal"`
	UnitWeightKg   float64             `json:"unitWeightKg"`
	LineWeightKg   float64             `json:"lineWeightKg"`
	Shipping       *ShippingSelection  `json:"shipping,omitempty"`
	Pricing        pricing.LinePricing `json:"-"`
}

// Totals aggregates the cart. Every figure is recomputed from the catalog on
// each call; nothing cached in the stored lines is trusted.
type Totals struct {
	ProductsTotal float64 `json:"productsTotal"`
	ShippingTotal float64 `json:"shippingTotal"`
	GrandTotal    float64 `json:"grandTotal"`
	TotalWeightKg float64 `json:"totalWeightKg"`
	TotalQuantity int     `json:"totalQuantity"`
	SuggestSea    bool    `json:"suggestSea"`
}

// Details loads the cart and prices every line against the current catalog.
// Lines whose product has vanished are skipped. Per-line shipping costs are
// recomputed with the line's weight and the whole-cart quantity, so a second
// call on an unchanged cart returns identical figures.
func (s *Service) Details(ctx context.Context, sessionID string) ([]LineDetail, Totals, error) {
	if s == nil || s.Store == nil || s.Products == nil {
		return nil, Totals{}, errors.New("cart service not configured")
	}
	lines, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, Totals{}, err
	}

	totalQty := TotalQuantity(lines)

	keys := make([]string, 0, len(lines))
	for key := range lines {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	details := make([]LineDetail, 0, len(lines))
	productsTotal := decimal.Zero
	shippingTotal := decimal.Zero
	totalWeight := 0.0

	for _, key := range keys {
		line := lines[key]
		product, err := s.Products.Get(ctx, line.CategoryFolder, line.ProductSlug)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				continue
			}
			return nil, Totals{}, err
		}
		lp, err := pricing.PriceLine(product, line.Specifications, line.Quantity)
		if err != nil {
			continue
		}

		detail := LineDetail{
			Key:            key,
			CategoryFolder: line.CategoryFolder,
			ProductSlug:    line.ProductSlug,
			ProductName:    product.Name,
			Image:          product.Image,
			Quantity:       line.Quantity,
			Specifications: line.Specifications,
			UnitPrice:      lp.UnitPrice.Round(2).InexactFloat64(),
			DiscountRate:   lp.DiscountRate.InexactFloat64(),
			FinalUnitPrice: lp.FinalUnitPrice.Round(2).InexactFloat64(),
			LineTotal:      lp.FinalTotal.Round(2).InexactFloat64(),
			UnitWeightKg:   lp.UnitWeightKg,
			LineWeightKg:   lp.TotalWeightKg,
			Pricing:        lp,
		}

		if line.Shipping != nil {
			sel := ShippingSelection{Country: line.Shipping.Country, Method: line.Shipping.Method}
			if cost, err := shipping.Cost(sel.Country, lp.TotalWeightKg, totalQty, sel.Method); err == nil {
				sel.Cost = cost.InexactFloat64()
				shippingTotal = shippingTotal.Add(cost)
			}
			detail.Shipping = &sel
		}

		productsTotal = productsTotal.Add(lp.FinalTotal)
		totalWeight += lp.TotalWeightKg
		details = append(details, detail)
	}

	totals := Totals{
		ProductsTotal: productsTotal.Round(2).InexactFloat64(),
		ShippingTotal: shippingTotal.Round(2).InexactFloat64(),
		GrandTotal:    productsTotal.Add(shippingTotal).Round(2).InexactFloat64(),
		TotalWeightKg: totalWeight,
		TotalQuantity: totalQty,
		SuggestSea:    shipping.SuggestSea(totalQty),
	}
	return details, totals, nil
}
