package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/qualclamps/storefront/internal/catalog"
	"github.com/qualclamps/storefront/internal/pricing"
)

func clamp() catalog.Product {
	return catalog.Product{
		Name:   "Heavy Duty Clamp",
		Slug:   "heavy-duty-clamp",
		Price:  12.00,
		Weight: 1.0,
		Specifications: []catalog.SpecCategory{
			{
				Category: "Size",
				Options: []catalog.SpecOption{
					{Name: "Small", PriceModifier: 0, WeightModifier: 0},
					{Name: "Large", PriceModifier: 3.50, WeightModifier: 0.4},
				},
			},
			{
				Category: "Material",
				Options: []catalog.SpecOption{
					{Name: "Steel", PriceModifier: 0, WeightModifier: 0},
					{Name: "Titanium", PriceModifier: 20, WeightModifier: -0.3},
				},
			},
		},
	}
}

func TestBulkDiscountTiers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		qty  int
		rate string
	}{
		{1, "0.02"},
		{19, "0.02"},
		{20, "0.05"},
		{49, "0.05"},
		{50, "0.08"},
		{99, "0.08"},
		{100, "0.12"},
		{199, "0.12"},
		{200, "0.2"},
		{499, "0.2"},
		{500, "0.25"},
		{100000, "0.25"},
	}
	for _, tc := range cases {
		got := pricing.BulkDiscount.Rate(tc.qty)
		require.True(t, got.Equal(decimal.RequireFromString(tc.rate)),
			"qty %d: got %s want %s", tc.qty, got, tc.rate)
	}
}

func TestPriceLineAppliesModifiersAndDiscount(t *testing.T) {
	t.Parallel()

	lp, err := pricing.PriceLine(clamp(), map[string]string{
		"Size":     "Large",
		"Material": "Titanium",
	}, 600)
	require.NoError(t, err)

	// 12.00 + 3.50 + 20.00 = 35.50 unit, 25% off at qty 600.
	require.True(t, lp.UnitPrice.Equal(decimal.RequireFromString("35.5")), lp.UnitPrice.String())
	require.True(t, lp.DiscountRate.Equal(decimal.RequireFromString("0.25")))
	require.True(t, lp.FinalUnitPrice.Equal(decimal.RequireFromString("26.625")), lp.FinalUnitPrice.String())
	require.True(t, lp.FinalTotal.Equal(decimal.RequireFromString("15975")), lp.FinalTotal.String())
	require.InDelta(t, 1.1, lp.UnitWeightKg, 1e-9)
	require.InDelta(t, 660.0, lp.TotalWeightKg, 1e-9)
	require.Len(t, lp.Applied, 2)
}

func TestPriceLineBulkOnly(t *testing.T) {
	t.Parallel()

	lp, err := pricing.PriceLine(clamp(), nil, 600)
	require.NoError(t, err)

	// 12.00 at 25% off is 9.00; 600 units weigh 600 kg.
	require.True(t, lp.FinalUnitPrice.Equal(decimal.RequireFromString("9")), lp.FinalUnitPrice.String())
	require.True(t, lp.FinalTotal.Equal(decimal.RequireFromString("5400")), lp.FinalTotal.String())
	require.InDelta(t, 600.0, lp.TotalWeightKg, 1e-9)
}

func TestPriceLineDropsUnresolvableSelections(t *testing.T) {
	t.Parallel()

	lp, err := pricing.PriceLine(clamp(), map[string]string{
		"Size":   "Gigantic", // not offered
		"Finish": "Matte",    // category does not exist
	}, 10)
	require.NoError(t, err)

	require.True(t, lp.UnitPrice.Equal(decimal.RequireFromString("12")))
	require.InDelta(t, 1.0, lp.UnitWeightKg, 1e-9)
	require.Empty(t, lp.Applied)
}

func TestPriceLineRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	_, err := pricing.PriceLine(clamp(), nil, 0)
	require.ErrorIs(t, err, pricing.ErrInvalidQuantity)
	_, err = pricing.PriceLine(clamp(), nil, -3)
	require.ErrorIs(t, err, pricing.ErrInvalidQuantity)
}

func TestPriceLineDefaultsWeight(t *testing.T) {
	t.Parallel()

	p := catalog.Product{Name: "Washer", Slug: "washer", Price: 0.40}
	lp, err := pricing.PriceLine(p, nil, 5)
	require.NoError(t, err)
	require.InDelta(t, 1.0, lp.UnitWeightKg, 1e-9)
	require.InDelta(t, 5.0, lp.TotalWeightKg, 1e-9)
}
