package nutrition

import (
	"context"
	"fmt"
	"strings"

	"recipe-extractor/internal/core/ai/provider"
	"recipe-extractor/internal/core/usage"
	"recipe-extractor/internal/pkg/common"
	"recipe-extractor/internal/pkg/llmjson"

	"go.uber.org/zap"
)

const lineParsePrompt = `Decompose each ingredient line below into structured fields. Return ONLY a JSON array with exactly one object per input line, in the same order:
[{"quantity": 2, "unit": "cup", "canonical_name": "all-purpose flour", "search_term": "flour"}]
Rules:
- quantity: a decimal number. Convert vulgar fractions (1/2 -> 0.5, 1/3 -> 0.33, 3/4 -> 0.75). Use 0 if no quantity is given.
- unit: one of cup, tbsp, tsp, oz, lb, g, ml, l, or "" for count-based items (e.g. "3 eggs").
- canonical_name: the ingredient with preparation qualifiers stripped ("chopped fresh parsley" -> "parsley").
- search_term: a further-simplified name suitable for a food database ("boneless skinless chicken breast" -> "chicken").

Lines:
%s`

// LineParser decomposes free-text ingredient lines with a single batched
// model call per request. One call for the whole list amortizes cost and
// keeps relative context between lines.
type LineParser struct {
	provider provider.Provider
}

// NewLineParser creates a line parser backed by p.
func NewLineParser(p provider.Provider) *LineParser {
	return &LineParser{provider: p}
}

// ParseLines parses the given non-empty, pre-trimmed lines. The returned
// slice always has the same length and order as the input: if the batch
// response cannot be used, every line degrades to a zero-quantity entry
// whose search term is the raw text, which downstream treats as "excluded
// from totals" rather than an error. The usage report is zero when no
// model response was obtained.
func (p *LineParser) ParseLines(ctx context.Context, lines []string) ([]ParsedIngredientLine, usage.Report) {
	if len(lines) == 0 {
		return nil, usage.Report{}
	}

	numbered := make([]string, len(lines))
	for i, line := range lines {
		numbered[i] = fmt.Sprintf("%d. %s", i+1, line)
	}

	resp, err := p.provider.Generate(ctx, &provider.Request{
		Prompt: fmt.Sprintf(lineParsePrompt, strings.Join(numbered, "\n")),
	})
	if err != nil {
		common.LogWarn("Ingredient parse call failed, using fallback lines",
			zap.Error(err),
			zap.Int("line_count", len(lines)),
		)
		return fallbackLines(lines), usage.Report{}
	}

	report := usage.NewReport(p.provider.Model(), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	var parsed []struct {
		Quantity      float64 `json:"quantity"`
		Unit          string  `json:"unit"`
		CanonicalName string  `json:"canonical_name"`
		SearchTerm    string  `json:"search_term"`
	}
	if err := llmjson.Decode(resp.Content, &parsed); err != nil {
		common.LogWarn("Ingredient parse response undecodable, using fallback lines",
			zap.Error(err),
			zap.Int("line_count", len(lines)),
		)
		return fallbackLines(lines), report
	}
	if len(parsed) != len(lines) {
		common.LogWarn("Ingredient parse response length mismatch, using fallback lines",
			zap.Int("expected", len(lines)),
			zap.Int("got", len(parsed)),
		)
		return fallbackLines(lines), report
	}

	out := make([]ParsedIngredientLine, len(lines))
	for i, item := range parsed {
		quantity := item.Quantity
		if quantity < 0 {
			quantity = 0
		}
		searchTerm := strings.TrimSpace(item.SearchTerm)
		if searchTerm == "" {
			searchTerm = lines[i]
		}
		out[i] = ParsedIngredientLine{
			OriginalText:  lines[i],
			Quantity:      quantity,
			Unit:          strings.TrimSpace(item.Unit),
			CanonicalName: strings.TrimSpace(item.CanonicalName),
			SearchTerm:    searchTerm,
		}
	}
	return out, report
}

func fallbackLines(lines []string) []ParsedIngredientLine {
	out := make([]ParsedIngredientLine, len(lines))
	for i, line := range lines {
		out[i] = ParsedIngredientLine{
			OriginalText:  line,
			Quantity:      0,
			Unit:          "",
			CanonicalName: line,
			SearchTerm:    line,
		}
	}
	return out
}
