// Package usage tracks token counts and estimated spend for model calls.
package usage

import (
	"context"
	"time"

	"recipe-extractor/internal/pkg/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Report is the token accounting and derived cost for one model call.
// Cost is computed from the price table, never inferred from wall time.
type Report struct {
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	TotalTokens   int     `json:"total_tokens"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// ModelPrice holds per-token rates for one model.
type ModelPrice struct {
	InputPerToken  float64
	OutputPerToken float64
}

// Per-model rates, USD per token. Unknown models fall back to defaultPrice
// so spend is never silently dropped to zero.
var modelPrices = map[string]ModelPrice{
	"qwen/qwen2.5-vl-72b-instruct":             {InputPerToken: 0.7e-6, OutputPerToken: 0.7e-6},
	"openai/gpt-4o":                            {InputPerToken: 2.5e-6, OutputPerToken: 10e-6},
	"openai/gpt-4o-mini":                       {InputPerToken: 0.15e-6, OutputPerToken: 0.6e-6},
	"anthropic/claude-3.5-sonnet":              {InputPerToken: 3e-6, OutputPerToken: 15e-6},
	"google/gemini-2.0-flash-001":              {InputPerToken: 0.1e-6, OutputPerToken: 0.4e-6},
	"meta-llama/llama-3.2-90b-vision-instruct": {InputPerToken: 0.9e-6, OutputPerToken: 0.9e-6},
}

var defaultPrice = ModelPrice{InputPerToken: 1e-6, OutputPerToken: 1e-6}

// PriceFor returns the per-token rates for model.
func PriceFor(model string) ModelPrice {
	if p, ok := modelPrices[model]; ok {
		return p
	}
	return defaultPrice
}

// NewReport builds a Report from token counts and the model's price pair.
func NewReport(model string, inputTokens, outputTokens int) Report {
	price := PriceFor(model)
	return Report{
		InputTokens:   inputTokens,
		OutputTokens:  outputTokens,
		TotalTokens:   inputTokens + outputTokens,
		EstimatedCost: float64(inputTokens)*price.InputPerToken + float64(outputTokens)*price.OutputPerToken,
	}
}

// Context identifies what a report belongs to.
type Context struct {
	TenantID  string `json:"tenant_id,omitempty"`
	Service   string `json:"service"`
	Operation string `json:"operation"`
	Model     string `json:"model"`
}

// Record is one persisted ledger entry.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Context   Context   `json:"context"`
	Report    Report    `json:"report"`
}

// Sink persists records. Implementations must be append-only.
type Sink interface {
	Append(ctx context.Context, rec Record) error
}

// Ledger records usage reports through a sink. Recording is best-effort:
// a sink failure is logged and never propagated, because the spend already
// happened and the primary result must not be rolled back over bookkeeping.
type Ledger struct {
	sink Sink
}

// NewLedger creates a ledger writing to sink.
func NewLedger(sink Sink) *Ledger {
	return &Ledger{sink: sink}
}

// Record appends a tagged report to the sink.
func (l *Ledger) Record(ctx context.Context, report Report, rc Context) {
	if l == nil || l.sink == nil {
		return
	}

	rec := Record{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Context:   rc,
		Report:    report,
	}

	if err := l.sink.Append(ctx, rec); err != nil {
		common.LogWarn("Failed to persist usage record",
			zap.Error(err),
			zap.String("operation", rc.Operation),
			zap.Int("total_tokens", report.TotalTokens),
		)
		return
	}

	common.LogDebug("Usage recorded",
		zap.String("operation", rc.Operation),
		zap.String("model", rc.Model),
		zap.Int("input_tokens", report.InputTokens),
		zap.Int("output_tokens", report.OutputTokens),
		zap.Float64("estimated_cost", report.EstimatedCost),
	)
}
