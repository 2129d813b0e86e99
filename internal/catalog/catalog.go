package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Option is one entry of the fixed product picker.
type Option struct {
	Label string
	Value int
}

// Product is the picker selection as the order step consumes it.
// Price keeps the option value as a decimal string.
type Product struct {
	Name  string `json:"product_name"`
	Price string `json:"price"`
}

var options = []Option{
	{Label: "MacBook Air", Value: 999},
	{Label: "MacBook Pro", Value: 1100},
	{Label: "Mac Mini", Value: 599},
}

// Options returns the products in display order.
func Options() []Option {
	out := make([]Option, len(options))
	copy(out, options)
	return out
}

// Select returns the product for the option at index.
func Select(index int) (Product, error) {
	if index < 0 || index >= len(options) {
		return Product{}, fmt.Errorf("catalog: no option at index %d", index)
	}
	return SelectByValue(options[index].Label, strconv.Itoa(options[index].Value)), nil
}

// SelectByValue builds a product from a visible label and the option's raw value.
func SelectByValue(label, value string) Product {
	return Product{Name: label, Price: value}
}

// PriceValue parses the price string into whole currency units.
func (p Product) PriceValue() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(p.Price))
	if err != nil {
		return 0, fmt.Errorf("catalog: price %q: %w", p.Price, err)
	}
	return n, nil
}

// IsZero reports whether no product has been selected.
func (p Product) IsZero() bool {
	return p.Name == "" && p.Price == ""
}

// Lookup resolves a free-form name to a product. Exact (case-insensitive)
// matches win; otherwise the closest label by edit distance is used as long
// as it is within half the query length.
func Lookup(name string) (Product, error) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return Product{}, fmt.Errorf("catalog: empty product name")
	}
	best, bestDist := -1, 0
	for i, o := range options {
		label := strings.ToLower(o.Label)
		if label == q {
			return Select(i)
		}
		d := levenshtein.ComputeDistance(q, label)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if bestDist > len(q)/2 {
		return Product{}, fmt.Errorf("catalog: unknown product %q", name)
	}
	return Select(best)
}
