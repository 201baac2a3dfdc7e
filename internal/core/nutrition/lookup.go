package nutrition

import (
	"context"
	"errors"
)

// ErrNotFound means the nutrient database has no record for a search term.
// Callers treat it as "exclude this ingredient from totals", never as a
// request-level failure.
var ErrNotFound = errors.New("food not found")

// FoodRecord is one matched food. Nutrient values are per 100 g.
type FoodRecord struct {
	FdcID           int64
	Description     string
	PerHundredGrams NutrientVector
}

// Lookup searches an external food-composition database.
type Lookup interface {
	Search(ctx context.Context, term string) (*FoodRecord, error)
}
