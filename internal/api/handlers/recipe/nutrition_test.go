package recipe

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-extractor/internal/core/nutrition"
	"recipe-extractor/internal/core/usage"
)

type fixedLookup struct {
	record *nutrition.FoodRecord
}

func (l fixedLookup) Search(ctx context.Context, term string) (*nutrition.FoodRecord, error) {
	if l.record == nil {
		return nil, nutrition.ErrNotFound
	}
	return l.record, nil
}

func newNutritionRouter(p *stubProvider, lookup nutrition.Lookup) *gin.Engine {
	svc := nutrition.NewService(
		nutrition.NewLineParser(p),
		lookup,
		usage.NewLedger(usage.NewMemorySink()),
		4,
	)
	r := gin.New()
	r.POST("/nutrition/calculate", HandleNutritionCalculate(svc))
	return r
}

func TestNutritionCalculate(t *testing.T) {
	p := &stubProvider{content: `[{"quantity": 100, "unit": "g", "canonical_name": "rice", "search_term": "rice"}]`}
	lookup := fixedLookup{record: &nutrition.FoodRecord{
		FdcID:           42,
		Description:     "Rice, white, cooked",
		PerHundredGrams: nutrition.NutrientVector{Calories: 130, CarbsG: 28, ProteinG: 2.7},
	}}
	r := newNutritionRouter(p, lookup)

	w := postJSON(t, r, "/nutrition/calculate", gin.H{"ingredients": "100 g rice", "servings": 2})

	require.Equal(t, http.StatusOK, w.Code)
	var result nutrition.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.IngredientsProcessed)
	assert.Equal(t, 2, result.Servings)
	assert.Equal(t, 130.0, result.TotalNutrition.Calories)
	assert.Equal(t, 65.0, result.PerServing.Calories)
}

func TestNutritionCalculateRejectsBlankIngredients(t *testing.T) {
	r := newNutritionRouter(&stubProvider{content: "[]"}, fixedLookup{})

	w := postJSON(t, r, "/nutrition/calculate", gin.H{"ingredients": "   \n  ", "servings": 2})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNutritionCalculateUnknownIngredientsStillOK(t *testing.T) {
	p := &stubProvider{content: `[{"quantity": 1, "unit": "cup", "canonical_name": "mystery", "search_term": "mystery"}]`}
	r := newNutritionRouter(p, fixedLookup{})

	w := postJSON(t, r, "/nutrition/calculate", gin.H{"ingredients": "1 cup mystery", "servings": 1})

	require.Equal(t, http.StatusOK, w.Code)
	var result nutrition.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.IngredientsTotal)
	assert.Equal(t, 0, result.IngredientsProcessed)
	assert.Equal(t, nutrition.NutrientVector{}, result.TotalNutrition)
}
