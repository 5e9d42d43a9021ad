package shipping

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/qualclamps/storefront/internal/common"
)

// Handlers serves the public shipping quote and policy endpoints.
type Handlers struct {
	Currency     string
	QuotesServed prometheus.Counter
}

// Info handles GET /shipping-info/{country}. Weight, quantity, and method are
// query parameters with storefront defaults.
func (h Handlers) Info(w http.ResponseWriter, r *http.Request) {
	country := strings.TrimSpace(chi.URLParam(r, "country"))
	if country == "" {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", "country is required", nil)
		return
	}

	weight := parseFloatDefault(r.URL.Query().Get("weight"), 1.0)
	qty := common.AtoiDefault(r.URL.Query().Get("quantity"), 1)
	method := r.URL.Query().Get("method")
	if method == "" {
		method = MethodAir
	}
	if weight <= 0 || qty <= 0 {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", "weight and quantity must be positive", nil)
		return
	}

	quote := BuildQuote(country, weight, qty, method, h.Currency)
	if h.QuotesServed != nil {
		h.QuotesServed.Inc()
	}
	common.JSON(w, http.StatusOK, quote)
}

// Policy handles GET /shipping-policy, exposing the embargo list and rate
// constants the storefront renders on its shipping page.
func (h Handlers) Policy(w http.ResponseWriter, r *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{
		"homeCountry":           HomeCountry,
		"excludedCountries":     ExcludedCountries(),
		"domesticRatePerKg":     domesticRatePerKg,
		"ratePer1000KmPerKg":    ratePer1000KmPerKg,
		"internationalDiscount": internationalDiscount,
		"defaultDistanceKm":     defaultDistanceKm,
		"seaBaseFraction":       seaBaseFraction,
		"suggestSeaThreshold":   SuggestSeaThreshold,
		"currency":              h.Currency,
	})
}

func parseFloatDefault(s string, def float64) float64 {
	if strings.TrimSpace(s) == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
