package shipping

// SampleQuoteCountries are the destinations shown on a product detail page to
// give buyers a feel for shipping costs before they reach the cart.
var SampleQuoteCountries = []string{"India", "United States", "Germany", "Australia"}

// SampleQuotes builds single-unit air quotes for a product weight across the
// storefront's showcase destinations.
func SampleQuotes(weightKg float64, currency string) []Quote {
	quotes := make([]Quote, 0, len(SampleQuoteCountries))
	for _, country := range SampleQuoteCountries {
		quotes = append(quotes, BuildQuote(country, weightKg, 1, MethodAir, currency))
	}
	return quotes
}
