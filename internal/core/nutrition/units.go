package nutrition

import "strings"

// gramsPerUnit maps a canonical unit to its grams-equivalent factor.
// Mass units are exact. Volume units assume water-like density (1 ml = 1 g);
// the source data carries no per-ingredient density.
var gramsPerUnit = map[string]float64{
	"g":    1,
	"kg":   1000,
	"mg":   0.001,
	"oz":   28.35,
	"lb":   453.592,
	"ml":   1,
	"l":    1000,
	"cup":  240,
	"tbsp": 15,
	"tsp":  5,
}

// ToGrams converts a quantity in the given unit to grams. Unknown or empty
// units use a 1:1 factor, treating the quantity as a count. Linear in
// quantity by construction.
func ToGrams(quantity float64, unit string) float64 {
	factor, ok := gramsPerUnit[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		factor = 1
	}
	return quantity * factor
}
