package fooddata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-extractor/internal/core/nutrition"
	"recipe-extractor/internal/infrastructure/config"
	"recipe-extractor/internal/pkg/common"
)

func init() {
	_ = common.InitLogger("error")
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		FoodData: config.FoodDataConfig{
			APIKey:          "test-key",
			BaseURL:         baseURL,
			Timeout:         5 * time.Second,
			RequestsPerHour: 360000, // effectively unlimited in tests
			Burst:           10,
			MaxConcurrent:   4,
		},
	}
}

func TestSearchMapsTrackedNutrients(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"query":    r.URL.Query().Get("query"),
			"dataType": r.URL.Query().Get("dataType"),
			"pageSize": r.URL.Query().Get("pageSize"),
			"api_key":  r.URL.Query().Get("api_key"),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"foods": []map[string]interface{}{
				{
					"fdcId":       171287,
					"description": "Wheat flour, white, all-purpose",
					"foodNutrients": []map[string]interface{}{
						{"nutrientId": 1008, "value": 364.0, "unitName": "KCAL"},
						{"nutrientId": 1003, "value": 10.3, "unitName": "G"},
						{"nutrientId": 1004, "value": 1.0, "unitName": "G"},
						{"nutrientId": 1005, "value": 76.3, "unitName": "G"},
						{"nutrientId": 1093, "value": 2.0, "unitName": "MG"},
						// fiber and sugar absent on purpose
						{"nutrientId": 9999, "value": 42.0, "unitName": "G"}, // untracked
					},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	record, err := client.Search(context.Background(), "flour")
	require.NoError(t, err)

	assert.Equal(t, int64(171287), record.FdcID)
	assert.Equal(t, 364.0, record.PerHundredGrams.Calories)
	assert.Equal(t, 10.3, record.PerHundredGrams.ProteinG)
	assert.Equal(t, 1.0, record.PerHundredGrams.FatG)
	assert.Equal(t, 76.3, record.PerHundredGrams.CarbsG)
	assert.Equal(t, 2.0, record.PerHundredGrams.SodiumMg)
	assert.Zero(t, record.PerHundredGrams.FiberG, "absent nutrient defaults to 0")
	assert.Zero(t, record.PerHundredGrams.SugarG, "absent nutrient defaults to 0")

	assert.Equal(t, "flour", gotQuery["query"])
	assert.Equal(t, "Foundation,SR Legacy", gotQuery["dataType"])
	assert.Equal(t, "1", gotQuery["pageSize"])
	assert.Equal(t, "test-key", gotQuery["api_key"])
}

func TestSearchEmptyResultIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"foods":[]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.Search(context.Background(), "unobtainium")
	assert.ErrorIs(t, err, nutrition.ErrNotFound)
}

func TestSearchServerErrorIsNotNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.Search(context.Background(), "flour")
	require.Error(t, err)
	assert.NotErrorIs(t, err, nutrition.ErrNotFound)
}
