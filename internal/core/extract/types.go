package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"recipe-extractor/internal/core/usage"
)

// FailureReason classifies a request-level extraction failure.
type FailureReason string

const (
	// FailureNoContent means the input was empty before any paid call.
	FailureNoContent FailureReason = "NO_CONTENT"
	// FailureModelUnavailable covers network, auth, quota and timeout
	// errors talking to the model.
	FailureModelUnavailable FailureReason = "MODEL_UNAVAILABLE"
	// FailureUnparseable means the model responded but no decoding
	// strategy produced JSON.
	FailureUnparseable FailureReason = "UNPARSEABLE"
)

// Recipe categories the model may assign. Anything else is nulled.
var Categories = []string{
	"appetizer",
	"breakfast",
	"main",
	"side",
	"soup",
	"salad",
	"dessert",
	"snack",
	"beverage",
	"sauce",
}

// ExtractedRecipe is a draft recipe. Every field is optional; the caller
// must not assume any of them are present.
type ExtractedRecipe struct {
	Title           *string `json:"title"`
	Category        *string `json:"category"`
	PrepTimeMinutes *int    `json:"prep_time_minutes"`
	CookTimeMinutes *int    `json:"cook_time_minutes"`
	Servings        *string `json:"servings"`
	Ingredients     *string `json:"ingredients"`
	Instructions    *string `json:"instructions"`
	Notes           *string `json:"notes"`
	Source          *string `json:"source"`
	Rating          *int    `json:"rating"`
}

// Outcome is the result of one extraction request. Failure is empty on
// success. Usage is populated whenever a model response arrived, even
// when that response later failed to parse.
type Outcome struct {
	Recipe     *ExtractedRecipe `json:"recipe,omitempty"`
	Confidence float64          `json:"confidence"`
	Failure    FailureReason    `json:"failure,omitempty"`
	Usage      usage.Report     `json:"usage"`
}

// Succeeded reports whether the extraction produced a recipe.
func (o *Outcome) Succeeded() bool {
	return o.Failure == ""
}

// flexInt tolerates the model emitting numbers as strings ("30" or
// "30 minutes") or floats. Null and unreadable values decode to nil.
type flexInt struct {
	Value *int
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		v := int(num)
		f.Value = &v
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		var v int
		if _, err := fmt.Sscanf(strings.TrimSpace(str), "%d", &v); err == nil {
			f.Value = &v
		}
		return nil
	}

	return nil
}

// wireRecipe is the shape decoded from the model before sanitizing.
type wireRecipe struct {
	Title           *string `json:"title"`
	Category        *string `json:"category"`
	PrepTimeMinutes flexInt `json:"prep_time_minutes"`
	CookTimeMinutes flexInt `json:"cook_time_minutes"`
	Servings        *string `json:"servings"`
	Ingredients     *string `json:"ingredients"`
	Instructions    *string `json:"instructions"`
	Notes           *string `json:"notes"`
	Source          *string `json:"source"`
	Rating          flexInt `json:"rating"`
}

// sanitize turns a decoded wire recipe into a validated draft: blank
// strings become nil, unknown categories are nulled, negative times are
// nulled and ratings are kept only inside 1..5.
func (w *wireRecipe) sanitize() *ExtractedRecipe {
	r := &ExtractedRecipe{
		Title:        cleanString(w.Title),
		Servings:     cleanString(w.Servings),
		Ingredients:  cleanString(w.Ingredients),
		Instructions: cleanString(w.Instructions),
		Notes:        cleanString(w.Notes),
		Source:       cleanString(w.Source),
	}

	if c := cleanString(w.Category); c != nil {
		lower := strings.ToLower(*c)
		for _, known := range Categories {
			if lower == known {
				r.Category = &lower
				break
			}
		}
	}

	r.PrepTimeMinutes = nonNegative(w.PrepTimeMinutes.Value)
	r.CookTimeMinutes = nonNegative(w.CookTimeMinutes.Value)

	if v := w.Rating.Value; v != nil && *v >= 1 && *v <= 5 {
		r.Rating = v
	}

	return r
}

func cleanString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nonNegative(v *int) *int {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}
