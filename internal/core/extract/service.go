// Package extract turns photographed recipe cards, multi-page scans and
// document text into validated draft recipes.
package extract

import (
	"context"
	"strings"

	"recipe-extractor/internal/core/ai/provider"
	"recipe-extractor/internal/core/usage"
	"recipe-extractor/internal/pkg/common"
	"recipe-extractor/internal/pkg/llmjson"

	"go.uber.org/zap"
)

// Service orchestrates recipe extraction: prompt building, the model call,
// response decoding, confidence scoring and usage accounting. It never
// retries; retry policy belongs to the caller.
type Service struct {
	provider provider.Provider
	ledger   *usage.Ledger
}

// NewService creates an extraction service.
func NewService(p provider.Provider, ledger *usage.Ledger) *Service {
	return &Service{
		provider: p,
		ledger:   ledger,
	}
}

// ExtractFromImages extracts a recipe from one or more images. All images
// are sent in a single model call; the multi-image prompt instructs the
// model to merge content across pages instead of reading them in isolation.
func (s *Service) ExtractFromImages(ctx context.Context, images []provider.ImageBlob) *Outcome {
	if len(images) == 0 {
		return &Outcome{Failure: FailureNoContent}
	}

	prompt := singleImagePrompt()
	if len(images) > 1 {
		prompt = multiImagePrompt(len(images))
	}

	return s.invoke(ctx, &provider.Request{
		Prompt: prompt,
		Images: images,
	}, "extract_from_images")
}

// ExtractFromText extracts a recipe from document text (typically the
// output of PDF text extraction). Whitespace-only input fails fast so no
// model spend is incurred on an empty document.
func (s *Service) ExtractFromText(ctx context.Context, document string) *Outcome {
	if strings.TrimSpace(document) == "" {
		return &Outcome{Failure: FailureNoContent}
	}

	return s.invoke(ctx, &provider.Request{
		Prompt: textDocumentPrompt(document),
	}, "extract_from_text")
}

func (s *Service) invoke(ctx context.Context, req *provider.Request, operation string) *Outcome {
	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		common.LogError("Model invocation failed",
			zap.Error(err),
			zap.String("operation", operation),
			zap.Int("image_count", len(req.Images)),
		)
		// No response means no spend to report.
		return &Outcome{Failure: FailureModelUnavailable}
	}

	report := usage.NewReport(s.provider.Model(), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	s.ledger.Record(ctx, report, usage.Context{
		Service:   "extraction",
		Operation: operation,
		Model:     s.provider.Model(),
	})

	var wire wireRecipe
	if err := llmjson.Decode(resp.Content, &wire); err != nil {
		common.LogWarn("Model response did not contain decodable JSON",
			zap.Error(err),
			zap.String("operation", operation),
			zap.Int("content_length", len(resp.Content)),
		)
		// The call was made and paid for; the report still goes out.
		return &Outcome{Failure: FailureUnparseable, Usage: report}
	}

	recipe := wire.sanitize()
	confidence := Confidence(recipe)

	common.LogInfo("Extraction completed",
		zap.String("operation", operation),
		zap.Float64("confidence", confidence),
		zap.Int("total_tokens", report.TotalTokens),
	)

	return &Outcome{
		Recipe:     recipe,
		Confidence: confidence,
		Usage:      report,
	}
}

// Confidence is the fraction of the three load-bearing fields (title,
// ingredients, instructions) present in the draft. Those three make a
// record minimally usable; all other fields are enrichment.
func Confidence(r *ExtractedRecipe) float64 {
	present := 0
	if r.Title != nil {
		present++
	}
	if r.Ingredients != nil {
		present++
	}
	if r.Instructions != nil {
		present++
	}
	return float64(present) / 3.0
}
