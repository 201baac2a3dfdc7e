package recipe

import (
	"net/http"
	"strings"

	"recipe-extractor/internal/core/nutrition"
	"recipe-extractor/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NutritionRequest is the body of POST /nutrition/calculate. Ingredients
// is the recipe's ingredient block, one ingredient per line.
type NutritionRequest struct {
	Ingredients string `json:"ingredients" binding:"required"`
	Servings    int    `json:"servings"`
}

// HandleNutritionCalculate handles POST /nutrition/calculate.
func HandleNutritionCalculate(nutritionSvc *nutrition.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := requestid.Get(c)

		var req NutritionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.LogWarn("Invalid nutrition request",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "invalid request format",
			})
			return
		}
		if strings.TrimSpace(req.Ingredients) == "" {
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "ingredients must not be empty",
			})
			return
		}

		common.LogInfo("Processing nutrition calculation request",
			zap.Int("servings", req.Servings),
			zap.String("request_id", requestID),
			zap.String("client_ip", c.ClientIP()),
		)

		result := nutritionSvc.Calculate(c.Request.Context(), req.Ingredients, req.Servings)
		c.JSON(http.StatusOK, result)
	}
}
