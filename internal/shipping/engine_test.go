package shipping_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/qualclamps/storefront/internal/shipping"
)

func costOf(t *testing.T, country string, weight float64, qty int, method string) float64 {
	t.Helper()
	d, err := shipping.Cost(country, weight, qty, method)
	require.NoError(t, err)
	return d.InexactFloat64()
}

func TestDomesticBaseRate(t *testing.T) {
	t.Parallel()

	// 4 kg at 5.80 per kg, no air tier below 50 units.
	require.InDelta(t, 23.20, costOf(t, "India", 4, 10, "air"), 1e-9)
	// 3.2 kg bills as 4 kg.
	require.InDelta(t, 23.20, costOf(t, "INDIA", 3.2, 10, "air"), 1e-9)
}

func TestDomesticTakesMethodDiscounts(t *testing.T) {
	t.Parallel()

	// The per-kg base feeds the same quantity tables as international
	// shipments: 58.00 x (1 - 0.92) at 5000 units.
	require.InDelta(t, 4.64, costOf(t, "India", 10, 5000, "air"), 1e-9)
	// Sea is 16% of the (undiscounted, below 50 units) air cost:
	// 23.20 x 0.16 = 3.712.
	require.InDelta(t, 3.71, costOf(t, "india", 4, 10, "sea"), 1e-9)
}

func TestInternationalAirBase(t *testing.T) {
	t.Parallel()

	// 12000/1000 x 10 x 14 x 0.5 = 840.00, no quantity discount below 50.
	require.InDelta(t, 840.00, costOf(t, "United States", 10, 10, "air"), 1e-9)
}

func TestAirQuantityDiscountCompounds(t *testing.T) {
	t.Parallel()

	// 92% off the 840.00 base at 5000 units.
	require.InDelta(t, 67.20, costOf(t, "United States", 10, 5000, "air"), 1e-9)
}

func TestSeaCompoundsOnDiscountedAirCost(t *testing.T) {
	t.Parallel()

	// Sea is 16% of the discounted air cost (67.20 -> 10.752), then its own
	// 32% tier applies: 10.752 x 0.68 = 7.31136, rounded to 7.31.
	require.InDelta(t, 7.31, costOf(t, "United States", 10, 5000, "sea"), 1e-9)
}

func TestUnknownMethodFallsBackToBase(t *testing.T) {
	t.Parallel()

	// Quantity discounts never apply without a recognised method.
	require.InDelta(t, 840.00, costOf(t, "United States", 10, 5000, "courier-pigeon"), 1e-9)
}

func TestUnknownCountryUsesDefaultDistance(t *testing.T) {
	t.Parallel()

	// 10000/1000 x 1 x 14 x 0.5 = 70.00
	require.InDelta(t, 70.00, costOf(t, "Atlantis", 1, 1, "air"), 1e-9)
	require.Equal(t, 10000, shipping.DistanceKm("Atlantis"))
}

func TestDistanceTable(t *testing.T) {
	t.Parallel()

	require.Equal(t, 2000, shipping.DistanceKm("United Arab Emirates"))
	require.Equal(t, 3500, shipping.DistanceKm("vietnam"))
	require.Equal(t, 3500, shipping.DistanceKm("Russia"))
	require.Equal(t, 6500, shipping.DistanceKm(" Spain "))
	require.Equal(t, 15000, shipping.DistanceKm("Brazil"))
	require.Equal(t, 12000, shipping.DistanceKm("French Polynesia"))
	require.Equal(t, 0, shipping.DistanceKm("India"))
}

func TestSampleQuotes(t *testing.T) {
	t.Parallel()

	quotes := shipping.SampleQuotes(1, "USD")
	require.Len(t, quotes, len(shipping.SampleQuoteCountries))
	require.Equal(t, "India", quotes[0].Country)
	require.True(t, quotes[0].Allowed)
	require.InDelta(t, 5.80, quotes[0].Cost, 1e-9)
	require.Equal(t, "United States", quotes[1].Country)
	require.InDelta(t, 84.00, quotes[1].Cost, 1e-9)
}

func TestExcludedCountriesCaseInsensitive(t *testing.T) {
	t.Parallel()

	for _, country := range []string{"Pakistan", "pakistan", "PAKISTAN", "China", " china "} {
		require.False(t, shipping.Allowed(country), country)
		_, err := shipping.Cost(country, 1, 1, "air")
		require.ErrorIs(t, err, shipping.ErrNotAvailable, country)
	}
	require.True(t, shipping.Allowed("Chinambique"))
}

func TestBillableWeight(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1, shipping.BillableWeightKg(0))
	require.Equal(t, 1, shipping.BillableWeightKg(0.2))
	require.Equal(t, 1, shipping.BillableWeightKg(1.0))
	require.Equal(t, 3, shipping.BillableWeightKg(2.01))
}

func TestSuggestSea(t *testing.T) {
	t.Parallel()

	require.False(t, shipping.SuggestSea(999))
	require.True(t, shipping.SuggestSea(1000))
}

func TestBuildQuoteDisallowed(t *testing.T) {
	t.Parallel()

	q := shipping.BuildQuote("Pakistan", 2, 10, "air", "USD")
	require.False(t, q.Allowed)
	require.Contains(t, q.Message, "Pakistan")
	require.Zero(t, q.Cost)
}

func TestBuildQuoteBreakdown(t *testing.T) {
	t.Parallel()

	q := shipping.BuildQuote("United States", 10, 5000, "sea", "USD")
	require.True(t, q.Allowed)
	require.InDelta(t, 7.31, q.Cost, 1e-9)
	require.Equal(t, 12000, q.DistanceKm)
	require.Equal(t, 10, q.BillableKg)
	require.Contains(t, q.Calculation, "12000 km")
	require.Contains(t, q.Calculation, "16%")
}

func TestInfoHandler(t *testing.T) {
	t.Parallel()

	h := shipping.Handlers{Currency: "USD"}
	r := chi.NewRouter()
	r.Get("/shipping-info/{country}", h.Info)

	req := httptest.NewRequest(http.MethodGet, "/shipping-info/United%20States?weight=10&quantity=5000&method=air", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"cost":67.2`)

	req = httptest.NewRequest(http.MethodGet, "/shipping-info/India?weight=-2", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
