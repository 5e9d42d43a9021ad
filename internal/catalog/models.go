package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

// Category groups products under a folder name that doubles as the storage
// directory for the category's product file.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Folder      string `json:"folder"`
	Image       string `json:"image,omitempty"`
	Count       int    `json:"count"`
}

// SpecOption is a selectable value within a specification category. Modifiers
// adjust the product's base price and base weight per unit.
type SpecOption struct {
	Name           string  `json:"name"`
	PriceModifier  float64 `json:"price_modifier"`
	WeightModifier float64 `json:"weight_modifier"`
}

// SpecCategory names a configurable dimension of a product (e.g. "Size",
// "Material") and the options it offers.
type SpecCategory struct {
	Category string       `json:"category"`
	Options  []SpecOption `json:"options"`
}

// Weight is a kilogram weight that tolerates legacy encodings: catalog files
// written by earlier tooling stored weights as strings. Absent or unparseable
// values fall back to 1.0 kg.
type Weight float64

// DefaultWeightKg is assumed when a product carries no usable weight.
const DefaultWeightKg = 1.0

// UnmarshalJSON accepts both numeric and quoted-string weights.
func (w *Weight) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*w = DefaultWeightKg
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		*w = DefaultWeightKg
		return nil
	}
	*w = Weight(f)
	return nil
}

// Product is a catalog entry. Slug is derived from the name and is the stable
// identifier within a category folder.
type Product struct {
	Name           string         `json:"name"`
	Slug           string         `json:"slug"`
	Description    string         `json:"description,omitempty"`
	OEM            string         `json:"oem,omitempty"`
	Price          float64        `json:"price"`
	Weight         Weight         `json:"weight"`
	Stock          int            `json:"stock"`
	Image          string         `json:"image,omitempty"`
	Images         []string       `json:"images,omitempty"`
	Specifications []SpecCategory `json:"specifications,omitempty"`
}

// BaseWeight returns the product's unit weight in kilograms, applying the
// 1.0 kg default for zero or negative values.
func (p Product) BaseWeight() float64 {
	if p.Weight <= 0 {
		return DefaultWeightKg
	}
	return float64(p.Weight)
}

// SpecIndex maps specification category name to option name to option,
// giving O(1) resolution of a customer's selections.
func (p Product) SpecIndex() map[string]map[string]SpecOption {
	idx := make(map[string]map[string]SpecOption, len(p.Specifications))
	for _, sc := range p.Specifications {
		opts := make(map[string]SpecOption, len(sc.Options))
		for _, opt := range sc.Options {
			opts[opt.Name] = opt
		}
		idx[sc.Category] = opts
	}
	return idx
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(name string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}
