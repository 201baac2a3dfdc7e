package nutrition

import "math"

// ParsedIngredientLine is one free-text ingredient line decomposed by the
// model. Quantity 0 means unspecified; an empty unit means a count-based
// item. SearchTerm is the simplified form used for the database lookup.
type ParsedIngredientLine struct {
	OriginalText  string  `json:"original_text"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	CanonicalName string  `json:"canonical_name"`
	SearchTerm    string  `json:"search_term"`
}

// NutrientVector is the fixed set of tracked nutrients. Values are
// interpreted per whatever reference amount the context defines (per 100 g
// when coming from the database, absolute once scaled).
type NutrientVector struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
	FiberG   float64 `json:"fiber_g"`
	SugarG   float64 `json:"sugar_g"`
	SodiumMg float64 `json:"sodium_mg"`
}

// Add returns the pointwise sum of v and o.
func (v NutrientVector) Add(o NutrientVector) NutrientVector {
	return NutrientVector{
		Calories: v.Calories + o.Calories,
		ProteinG: v.ProteinG + o.ProteinG,
		FatG:     v.FatG + o.FatG,
		CarbsG:   v.CarbsG + o.CarbsG,
		FiberG:   v.FiberG + o.FiberG,
		SugarG:   v.SugarG + o.SugarG,
		SodiumMg: v.SodiumMg + o.SodiumMg,
	}
}

// Scale returns v multiplied by factor.
func (v NutrientVector) Scale(factor float64) NutrientVector {
	return NutrientVector{
		Calories: v.Calories * factor,
		ProteinG: v.ProteinG * factor,
		FatG:     v.FatG * factor,
		CarbsG:   v.CarbsG * factor,
		FiberG:   v.FiberG * factor,
		SugarG:   v.SugarG * factor,
		SodiumMg: v.SodiumMg * factor,
	}
}

// ScaleToAmount rescales a vector expressed per baseAmount to targetAmount.
func (v NutrientVector) ScaleToAmount(baseAmount, targetAmount float64) NutrientVector {
	if baseAmount == 0 {
		return NutrientVector{}
	}
	return v.Scale(targetAmount / baseAmount)
}

// rounded applies display precision: calories and sodium to the nearest
// integer, gram fields to one decimal. Only called when producing the
// final result so rounding error never compounds across ingredients.
func (v NutrientVector) rounded() NutrientVector {
	return NutrientVector{
		Calories: math.Round(v.Calories),
		ProteinG: round1(v.ProteinG),
		FatG:     round1(v.FatG),
		CarbsG:   round1(v.CarbsG),
		FiberG:   round1(v.FiberG),
		SugarG:   round1(v.SugarG),
		SodiumMg: math.Round(v.SodiumMg),
	}
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Result is the outcome of a nutrition calculation. It is always
// presentable: when no ingredient could be processed the vectors are zero
// and IngredientsProcessed is 0, which is not an error state.
type Result struct {
	TotalNutrition       NutrientVector `json:"total_nutrition"`
	PerServing           NutrientVector `json:"per_serving"`
	Servings             int            `json:"servings"`
	IngredientsProcessed int            `json:"ingredients_processed"`
	IngredientsTotal     int            `json:"ingredients_total"`
}
