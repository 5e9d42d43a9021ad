package pricing

import "github.com/shopspring/decimal"

// Breakpoint maps a minimum quantity to a discount rate.
type Breakpoint struct {
	MinQty int
	Rate   decimal.Decimal
}

// Table is a quantity breakpoint table ordered from highest MinQty to lowest.
// Rate returns the first breakpoint whose MinQty the quantity meets, so the
// highest applicable tier always wins.
type Table []Breakpoint

// Rate resolves the discount rate for the given quantity. Quantities below
// every breakpoint yield a zero rate.
func (t Table) Rate(qty int) decimal.Decimal {
	for _, bp := range t {
		if qty >= bp.MinQty {
			return bp.Rate
		}
	}
	return decimal.Zero
}

func rate(pct int) decimal.Decimal {
	return decimal.New(int64(pct), -2)
}

// BulkDiscount is the tiered discount applied to product unit prices.
var BulkDiscount = Table{
	{MinQty: 500, Rate: rate(25)},
	{MinQty: 200, Rate: rate(20)},
	{MinQty: 100, Rate: rate(12)},
	{MinQty: 50, Rate: rate(8)},
	{MinQty: 20, Rate: rate(5)},
	{MinQty: 1, Rate: rate(2)},
}

// AirFreightDiscount reduces the base shipping cost for air consignments.
var AirFreightDiscount = Table{
	{MinQty: 5000, Rate: rate(92)},
	{MinQty: 3000, Rate: rate(91)},
	{MinQty: 2000, Rate: rate(90)},
	{MinQty: 1500, Rate: rate(89)},
	{MinQty: 1000, Rate: rate(88)},
	{MinQty: 500, Rate: rate(29)},
	{MinQty: 200, Rate: rate(18)},
	{MinQty: 100, Rate: rate(14)},
	{MinQty: 50, Rate: rate(8)},
}

// SeaFreightDiscount applies on top of the sea base, which is itself derived
// from the discounted air cost.
var SeaFreightDiscount = Table{
	{MinQty: 5000, Rate: rate(32)},
	{MinQty: 3000, Rate: rate(28)},
	{MinQty: 2000, Rate: rate(25)},
	{MinQty: 1500, Rate: rate(22)},
	{MinQty: 1000, Rate: rate(20)},
	{MinQty: 500, Rate: rate(15)},
	{MinQty: 200, Rate: rate(10)},
	{MinQty: 100, Rate: rate(8)},
	{MinQty: 50, Rate: rate(5)},
}
