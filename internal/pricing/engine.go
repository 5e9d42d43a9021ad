package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/qualclamps/storefront/internal/catalog"
)

// ErrInvalidQuantity is returned for non-positive quantities.
var ErrInvalidQuantity = errors.New("pricing: quantity must be positive")

// AppliedOption records a specification selection that resolved against the
// product and contributed its modifiers to the line.
type AppliedOption struct {
	Option         string  `json:"option"`
	PriceModifier  float64 `json:"priceModifier"`
	WeightModifier float64 `json:"weightModifier"`
}

// LinePricing is the fully priced view of a single cart line. Monetary fields
// carry full precision; callers round at the reporting boundary.
type LinePricing struct {
	BasePrice      decimal.Decimal
	UnitPrice      decimal.Decimal
	UnitWeightKg   float64
	Quantity       int
	DiscountRate   decimal.Decimal
	FinalUnitPrice decimal.Decimal
	Subtotal       decimal.Decimal
	FinalTotal     decimal.Decimal
	TotalWeightKg  float64
	Applied        map[string]AppliedOption
}

// TotalDiscount is the amount saved across the line.
func (lp LinePricing) TotalDiscount() decimal.Decimal {
	return lp.Subtotal.Sub(lp.FinalTotal)
}

// PriceLine prices a quantity of a product under the given specification
// selections. Selections that name an unknown specification category or an
// option the product does not offer are dropped without error; only resolved
// options adjust the unit price and weight.
func PriceLine(p catalog.Product, selections map[string]string, qty int) (LinePricing, error) {
	if qty <= 0 {
		return LinePricing{}, ErrInvalidQuantity
	}

	base := decimal.NewFromFloat(p.Price)
	unitPrice := base
	unitWeight := p.BaseWeight()
	applied := map[string]AppliedOption{}

	idx := p.SpecIndex()
	for category, optionName := range selections {
		opts, ok := idx[category]
		if !ok {
			continue
		}
		opt, ok := opts[optionName]
		if !ok {
			continue
		}
		unitPrice = unitPrice.Add(decimal.NewFromFloat(opt.PriceModifier))
		unitWeight += opt.WeightModifier
		applied[category] = AppliedOption{
			Option:         opt.Name,
			PriceModifier:  opt.PriceModifier,
			WeightModifier: opt.WeightModifier,
		}
	}
	if unitWeight <= 0 {
		unitWeight = catalog.DefaultWeightKg
	}

	discount := BulkDiscount.Rate(qty)
	finalUnit := unitPrice.Mul(decimal.NewFromInt(1).Sub(discount))
	qtyDec := decimal.NewFromInt(int64(qty))

	return LinePricing{
		BasePrice:      base,
		UnitPrice:      unitPrice,
		UnitWeightKg:   unitWeight,
		Quantity:       qty,
		DiscountRate:   discount,
		FinalUnitPrice: finalUnit,
		Subtotal:       unitPrice.Mul(qtyDec),
		FinalTotal:     finalUnit.Mul(qtyDec),
		TotalWeightKg:  unitWeight * float64(qty),
		Applied:        applied,
	}, nil
}
