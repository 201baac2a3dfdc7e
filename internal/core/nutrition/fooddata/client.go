// Package fooddata queries the USDA FoodData Central database for
// per-100g nutrient values.
package fooddata

import (
	"context"
	"fmt"
	"net/http"

	"recipe-extractor/internal/core/nutrition"
	"recipe-extractor/internal/infrastructure/config"
	"recipe-extractor/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// searchResponse mirrors the relevant slice of the FoodData Central
// search payload.
type searchResponse struct {
	Foods []struct {
		FdcID         int64  `json:"fdcId"`
		Description   string `json:"description"`
		FoodNutrients []struct {
			NutrientID int64   `json:"nutrientId"`
			Value      float64 `json:"value"`
			UnitName   string  `json:"unitName"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

// FoodData Central nutrient IDs for the tracked vector.
const (
	nutrientIDEnergy  = 1008 // kcal
	nutrientIDProtein = 1003 // g
	nutrientIDFat     = 1004 // g
	nutrientIDCarbs   = 1005 // g
	nutrientIDFiber   = 1079 // g
	nutrientIDSugar   = 2000 // g
	nutrientIDSodium  = 1093 // mg
)

// Client queries FoodData Central. Requests pass through a rate limiter
// sized to the API's hourly quota. Implements nutrition.Lookup.
type Client struct {
	client  *resty.Client
	apiKey  string
	limiter *rate.Limiter
}

// NewClient creates a FoodData Central client configured from cfg.
func NewClient(cfg *config.Config) *Client {
	perSecond := float64(cfg.FoodData.RequestsPerHour) / 3600.0
	limiter := rate.NewLimiter(rate.Limit(perSecond), cfg.FoodData.Burst)

	client := resty.New().
		SetBaseURL(cfg.FoodData.BaseURL).
		SetTimeout(cfg.FoodData.Timeout).
		SetHeader("User-Agent", "recipe-extractor/1.0")

	return &Client{
		client:  client,
		apiKey:  cfg.FoodData.APIKey,
		limiter: limiter,
	}
}

// Search looks up the first match for term. The query is restricted to the
// Foundation and SR Legacy data types to bias toward household ingredients
// over branded products, and requests a single result: no ranking or
// disambiguation beyond what the service itself does.
func (c *Client) Search(ctx context.Context, term string) (*nutrition.FoodRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	var result searchResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":    term,
			"api_key":  c.apiKey,
			"dataType": "Foundation,SR Legacy",
			"pageSize": "1",
		}).
		SetResult(&result).
		Get("/v1/foods/search")

	if err != nil {
		common.LogError("FoodData request failed",
			zap.Error(err),
			zap.String("term", term),
		)
		return nil, fmt.Errorf("fooddata search: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, nutrition.ErrNotFound
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogError("FoodData returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("term", term),
		)
		return nil, fmt.Errorf("fooddata search: status %d", resp.StatusCode())
	}

	if len(result.Foods) == 0 {
		common.LogDebug("FoodData had no match", zap.String("term", term))
		return nil, nutrition.ErrNotFound
	}

	first := result.Foods[0]
	record := &nutrition.FoodRecord{
		FdcID:       first.FdcID,
		Description: first.Description,
	}
	for _, n := range first.FoodNutrients {
		// Absent nutrients stay 0; the vector starts zeroed.
		switch n.NutrientID {
		case nutrientIDEnergy:
			record.PerHundredGrams.Calories = n.Value
		case nutrientIDProtein:
			record.PerHundredGrams.ProteinG = n.Value
		case nutrientIDFat:
			record.PerHundredGrams.FatG = n.Value
		case nutrientIDCarbs:
			record.PerHundredGrams.CarbsG = n.Value
		case nutrientIDFiber:
			record.PerHundredGrams.FiberG = n.Value
		case nutrientIDSugar:
			record.PerHundredGrams.SugarG = n.Value
		case nutrientIDSodium:
			record.PerHundredGrams.SodiumMg = n.Value
		}
	}

	common.LogDebug("FoodData match",
		zap.String("term", term),
		zap.Int64("fdc_id", record.FdcID),
		zap.String("description", record.Description),
	)

	return record, nil
}
