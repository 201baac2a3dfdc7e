package recipe

import (
	"errors"
	"net/http"

	"recipe-extractor/internal/core/ai/provider"
	"recipe-extractor/internal/core/extract"
	"recipe-extractor/internal/core/image"
	"recipe-extractor/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxImagesPerRequest = 10

// ExtractRequest is the body of POST /recipes/extract. Each image may be
// a base64 string, a data URI or an http(s) URL.
type ExtractRequest struct {
	Images []string `json:"images" binding:"required"`
}

// ExtractTextRequest is the body of POST /recipes/extract-text. The text
// is typically the output of an upstream PDF text extractor.
type ExtractTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// HandleExtractFromImages handles POST /recipes/extract.
func HandleExtractFromImages(extractSvc *extract.Service, imageSvc *image.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := requestid.Get(c)

		var req ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.LogWarn("Invalid extract request",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "invalid request format",
			})
			return
		}
		if len(req.Images) == 0 || len(req.Images) > maxImagesPerRequest {
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "images must contain between 1 and 10 entries",
			})
			return
		}

		blobs := make([]provider.ImageBlob, 0, len(req.Images))
		for i, img := range req.Images {
			blob, err := imageSvc.Prepare(c.Request.Context(), img)
			if err != nil {
				common.LogWarn("Image rejected",
					zap.Error(err),
					zap.Int("image_index", i),
					zap.String("request_id", requestID),
				)
				respondError(c, err)
				return
			}
			blobs = append(blobs, blob)
		}

		common.LogInfo("Processing image extraction request",
			zap.Int("image_count", len(blobs)),
			zap.String("request_id", requestID),
			zap.String("client_ip", c.ClientIP()),
		)

		outcome := extractSvc.ExtractFromImages(c.Request.Context(), blobs)
		respondOutcome(c, outcome)
	}
}

// HandleExtractFromText handles POST /recipes/extract-text.
func HandleExtractFromText(extractSvc *extract.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := requestid.Get(c)

		var req ExtractTextRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.LogWarn("Invalid extract-text request",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "invalid request format",
			})
			return
		}

		common.LogInfo("Processing text extraction request",
			zap.Int("text_length", len(req.Text)),
			zap.String("request_id", requestID),
			zap.String("client_ip", c.ClientIP()),
		)

		outcome := extractSvc.ExtractFromText(c.Request.Context(), req.Text)
		respondOutcome(c, outcome)
	}
}

// respondOutcome maps a domain outcome to an HTTP response. Successful
// extractions return 200 with the draft; failures carry the typed reason
// so clients can branch on it.
func respondOutcome(c *gin.Context, outcome *extract.Outcome) {
	if outcome.Succeeded() {
		c.JSON(http.StatusOK, outcome)
		return
	}

	status := http.StatusBadRequest
	message := "no extractable content in the request"
	switch outcome.Failure {
	case extract.FailureModelUnavailable:
		status = http.StatusServiceUnavailable
		message = "model service is unavailable"
	case extract.FailureUnparseable:
		status = http.StatusUnprocessableEntity
		message = "model response could not be parsed as a recipe"
	}

	c.JSON(status, gin.H{
		"error":   common.ErrorResponse{Code: string(outcome.Failure), Message: message},
		"failure": outcome.Failure,
		"usage":   outcome.Usage,
	})
}

// respondError writes a CustomError with its own status, or a generic 500.
func respondError(c *gin.Context, err error) {
	var ce *common.CustomError
	if errors.As(err, &ce) {
		c.JSON(ce.Status, common.ErrorResponse{
			Code:    ce.Code,
			Message: ce.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, common.ErrorResponse{
		Code:    common.ErrCodeInternalError,
		Message: "internal server error",
	})
}
