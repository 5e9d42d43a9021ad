package shipping

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/qualclamps/storefront/internal/pricing"
)

// Shipping methods accepted by the cost engine. Anything else falls back to
// the undiscounted base cost.
const (
	MethodAir = "air"
	MethodSea = "sea"
)

// ErrNotAvailable is returned for destinations we do not ship to.
var ErrNotAvailable = errors.New("shipping not available for destination")

// HomeCountry is the dispatch origin; domestic orders use a flat per-kg rate.
const HomeCountry = "india"

const (
	domesticRatePerKg     = 5.8
	ratePer1000KmPerKg    = 14.0
	internationalDiscount = 0.5
	defaultDistanceKm     = 10000
	seaBaseFraction       = 0.16
)

var excludedCountries = []string{"pakistan", "china"}

// distanceKm holds approximate freight distances from the dispatch origin in
// Faridabad. Unlisted countries fall back to defaultDistanceKm.
var distanceKm = map[string]int{
	"india":                        0,
	"myanmar":                      2000,
	"thailand":                     3000,
	"malaysia":                     4000,
	"singapore":                    4200,
	"indonesia":                    4500,
	"philippines":                  5000,
	"vietnam":                      3500,
	"cambodia":                     3800,
	"laos":                         3200,
	"japan":                        6000,
	"south korea":                  5500,
	"mongolia":                     4000,
	"kazakhstan":                   2500,
	"uzbekistan":                   2000,
	"turkmenistan":                 1800,
	"kyrgyzstan":                   2200,
	"tajikistan":                   1800,
	"iran":                         1500,
	"iraq":                         2200,
	"syria":                        3000,
	"turkey":                       3500,
	"georgia":                      3200,
	"armenia":                      3000,
	"azerbaijan":                   2800,
	"saudi arabia":                 2500,
	"united arab emirates":         2000,
	"qatar":                        2200,
	"kuwait":                       2300,
	"bahrain":                      2200,
	"oman":                         2000,
	"yemen":                        2800,
	"jordan":                       3200,
	"lebanon":                      3300,
	"israel":                       3400,
	"egypt":                        3800,
	"libya":                        4500,
	"tunisia":                      5000,
	"algeria":                      5200,
	"morocco":                      5800,
	"sudan":                        4000,
	"ethiopia":                     4200,
	"somalia":                      3800,
	"kenya":                        4500,
	"uganda":                       4800,
	"tanzania":                     5000,
	"south africa":                 7000,
	"nigeria":                      6000,
	"ghana":                        6500,
	"ivory coast":                  6800,
	"senegal":                      7200,
	"mali":                         6800,
	"burkina faso":                 6500,
	"niger":                        6200,
	"chad":                         5800,
	"cameroon":                     5800,
	"central african republic":     5500,
	"democratic republic of congo": 6000,
	"angola":                       6800,
	"zambia":                       6200,
	"zimbabwe":                     6500,
	"botswana":                     6800,
	"namibia":                      7200,
	"madagascar":                   5500,
	"mauritius":                    4800,
	"russia":                       3500,
	"belarus":                      4500,
	"poland":                       5000,
	"germany":                      5500,
	"france":                       6000,
	"spain":                        6500,
	"portugal":                     7000,
	"italy":                        5200,
	"switzerland":                  5600,
	"austria":                      5400,
	"czech republic":               5200,
	"slovakia":                     5100,
	"hungary":                      5000,
	"romania":                      4800,
	"bulgaria":                     4600,
	"greece":                       4800,
	"albania":                      5000,
	"serbia":                       4900,
	"croatia":                      5200,
	"slovenia":                     5400,
	"bosnia and herzegovina":       5100,
	"montenegro":                   5000,
	"north macedonia":              4900,
	"moldova":                      4600,
	"lithuania":                    4800,
	"latvia":                       4900,
	"estonia":                      5000,
	"finland":                      5500,
	"sweden":                       5800,
	"norway":                       6000,
	"denmark":                      5600,
	"netherlands":                  5800,
	"belgium":                      5900,
	"luxembourg":                   5800,
	"united kingdom":               6200,
	"ireland":                      6500,
	"iceland":                      7000,
	"united states":                12000,
	"canada":                       11500,
	"mexico":                       15000,
	"guatemala":                    16000,
	"belize":                       16200,
	"honduras":                     16100,
	"el salvador":                  16000,
	"nicaragua":                    16300,
	"costa rica":                   16500,
	"panama":                       16800,
	"colombia":                     17000,
	"venezuela":                    17200,
	"guyana":                       17500,
	"suriname":                     17600,
	"brazil":                       15000,
	"ecuador":                      17500,
	"peru":                         17000,
	"bolivia":                      16500,
	"paraguay":                     15800,
	"uruguay":                      15500,
	"argentina":                    15200,
	"chile":                        16000,
	"australia":                    8000,
	"new zealand":                  9500,
	"papua new guinea":             7500,
	"fiji":                         9000,
	"solomon islands":              8500,
	"vanuatu":                      8800,
	"new caledonia":                8600,
	"samoa":                        10000,
	"tonga":                        10200,
	"cook islands":                 11000,
	"french polynesia":             12000,
}

func normalize(country string) string {
	return strings.ToLower(strings.TrimSpace(country))
}

// Allowed reports whether we ship to the country at all.
func Allowed(country string) bool {
	c := normalize(country)
	for _, excluded := range excludedCountries {
		if c == excluded {
			return false
		}
	}
	return true
}

// ExcludedCountries returns the embargo list for the policy endpoint.
func ExcludedCountries() []string {
	out := make([]string, len(excludedCountries))
	copy(out, excludedCountries)
	return out
}

// DistanceKm resolves the freight distance for a destination, defaulting to
// defaultDistanceKm for countries missing from the table.
func DistanceKm(country string) int {
	if d, ok := distanceKm[normalize(country)]; ok {
		return d
	}
	return defaultDistanceKm
}

// BillableWeightKg rounds the physical weight up to whole kilograms, with a
// one kilogram minimum.
func BillableWeightKg(weightKg float64) int {
	if weightKg <= 0 {
		return 1
	}
	return int(math.Ceil(weightKg))
}

// Cost computes the shipping cost for a consignment, rounded to two decimal
// places. Domestic shipments start from a flat per-kg rate; international
// shipments from distance x weight x rate, halved. Either base then takes the
// air quantity discount; sea freight is 16% of the discounted air cost with
// its own quantity table on top. Unknown methods pay the undiscounted base.
func Cost(country string, weightKg float64, qty int, method string) (decimal.Decimal, error) {
	if !Allowed(country) {
		return decimal.Decimal{}, ErrNotAvailable
	}

	billable := decimal.NewFromInt(int64(BillableWeightKg(weightKg)))

	var base decimal.Decimal
	if normalize(country) == HomeCountry {
		base = decimal.NewFromFloat(domesticRatePerKg).Mul(billable)
	} else {
		base = decimal.NewFromInt(int64(DistanceKm(country))).
			Div(decimal.NewFromInt(1000)).
			Mul(billable).
			Mul(decimal.NewFromFloat(ratePer1000KmPerKg)).
			Mul(decimal.NewFromFloat(internationalDiscount))
	}

	switch normalize(method) {
	case MethodAir:
		air := base.Mul(decimal.NewFromInt(1).Sub(pricing.AirFreightDiscount.Rate(qty)))
		return air.Round(2), nil
	case MethodSea:
		air := base.Mul(decimal.NewFromInt(1).Sub(pricing.AirFreightDiscount.Rate(qty)))
		sea := air.Mul(decimal.NewFromFloat(seaBaseFraction)).
			Mul(decimal.NewFromInt(1).Sub(pricing.SeaFreightDiscount.Rate(qty)))
		return sea.Round(2), nil
	default:
		return base.Round(2), nil
	}
}

// SuggestSeaThreshold is the whole-cart quantity at which sea freight becomes
// the recommended method.
const SuggestSeaThreshold = 1000

// SuggestSea reports whether the cart quantity warrants recommending sea
// freight over air.
func SuggestSea(totalQty int) bool {
	return totalQty >= SuggestSeaThreshold
}
