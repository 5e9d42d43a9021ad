package cart

import (
	"encoding/json"
	"fmt"
	"time"
)

// ShippingSelection is the destination and method chosen for a cart line.
// Cost is a cached server-side computation; it is recomputed on every
// quantity change and on every cart read, never trusted from the client.
type ShippingSelection struct {
	Country string  `json:"country"`
	Method  string  `json:"method"`
	Cost    float64 `json:"cost"`
}

// Line is one entry in a cart. The same product with different specification
// selections forms distinct lines.
type Line struct {
	CategoryFolder string             `json:"categoryFolder"`
	ProductSlug    string             `json:"productSlug"`
	Quantity       int                `json:"quantity"`
	Specifications map[string]string  `json:"specifications,omitempty"`
	Shipping       *ShippingSelection `json:"shipping,omitempty"`
	AddedAt        time.Time          `json:"addedAt"`
}

// Key derives the line's canonical composite key:
// folder:slug:<specifications as JSON>. encoding/json serialises map keys in
// sorted order, so the same selections always produce the same key regardless
// of the order the client sent them in.
func (l Line) Key() string {
	return LineKey(l.CategoryFolder, l.ProductSlug, l.Specifications)
}

// LineKey builds the composite key for a prospective line.
func LineKey(folder, slug string, specs map[string]string) string {
	if specs == nil {
		specs = map[string]string{}
	}
	encoded, err := json.Marshal(specs)
	if err != nil {
		// map[string]string cannot fail to marshal.
		encoded = []byte("{}")
	}
	return fmt.Sprintf("%s:%s:%s", folder, slug, encoded)
}
