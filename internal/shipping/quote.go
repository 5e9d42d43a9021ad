package shipping

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/qualclamps/storefront/internal/pricing"
)

// Quote is the API view of a shipping calculation. Disallowed destinations
// carry Allowed=false and a human message instead of a cost.
type Quote struct {
	Allowed     bool    `json:"allowed"`
	Country     string  `json:"country"`
	WeightKg    float64 `json:"weightKg,omitempty"`
	BillableKg  int     `json:"billableKg,omitempty"`
	DistanceKm  int     `json:"distanceKm,omitempty"`
	Quantity    int     `json:"quantity,omitempty"`
	Method      string  `json:"method,omitempty"`
	Cost        float64 `json:"cost,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	Calculation string  `json:"calculation,omitempty"`
	Message     string  `json:"message,omitempty"`
}

// BuildQuote evaluates a shipment and renders the step-by-step breakdown the
// storefront shows next to the cost.
func BuildQuote(country string, weightKg float64, qty int, method, currency string) Quote {
	if !Allowed(country) {
		return Quote{
			Allowed: false,
			Country: country,
			Message: fmt.Sprintf("We currently do not ship to %s.", strings.TrimSpace(country)),
		}
	}

	cost, err := Cost(country, weightKg, qty, method)
	if err != nil {
		return Quote{Allowed: false, Country: country, Message: err.Error()}
	}

	billable := BillableWeightKg(weightKg)
	q := Quote{
		Allowed:     true,
		Country:     country,
		WeightKg:    weightKg,
		BillableKg:  billable,
		Quantity:    qty,
		Method:      normalize(method),
		Cost:        cost.InexactFloat64(),
		Currency:    currency,
		Calculation: explain(country, billable, qty, method),
	}
	if normalize(country) != HomeCountry {
		q.DistanceKm = DistanceKm(country)
	}
	return q
}

func explain(country string, billableKg, qty int, method string) string {
	var b strings.Builder
	if normalize(country) == HomeCountry {
		base := decimal.NewFromFloat(domesticRatePerKg).Mul(decimal.NewFromInt(int64(billableKg)))
		fmt.Fprintf(&b, "Domestic: %d kg x %.2f per kg = %s", billableKg, domesticRatePerKg, base.Round(2))
	} else {
		dist := DistanceKm(country)
		base := decimal.NewFromInt(int64(dist)).
			Div(decimal.NewFromInt(1000)).
			Mul(decimal.NewFromInt(int64(billableKg))).
			Mul(decimal.NewFromFloat(ratePer1000KmPerKg)).
			Mul(decimal.NewFromFloat(internationalDiscount))
		fmt.Fprintf(&b, "%d km / 1000 x %d kg x %.2f, with 50%% international discount = %s",
			dist, billableKg, ratePer1000KmPerKg, base.Round(2))
	}

	switch normalize(method) {
	case MethodAir:
		airRate := pricing.AirFreightDiscount.Rate(qty)
		if !airRate.IsZero() {
			fmt.Fprintf(&b, "; air quantity discount %s%% for %d units", airRate.Mul(decimal.NewFromInt(100)), qty)
		}
	case MethodSea:
		airRate := pricing.AirFreightDiscount.Rate(qty)
		if !airRate.IsZero() {
			fmt.Fprintf(&b, "; air quantity discount %s%% for %d units", airRate.Mul(decimal.NewFromInt(100)), qty)
		}
		fmt.Fprintf(&b, "; sea freight at 16%% of the air cost")
		seaRate := pricing.SeaFreightDiscount.Rate(qty)
		if !seaRate.IsZero() {
			fmt.Fprintf(&b, " with a further %s%% volume discount", seaRate.Mul(decimal.NewFromInt(100)))
		}
	}
	return b.String()
}
