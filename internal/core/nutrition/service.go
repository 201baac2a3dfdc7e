// Package nutrition estimates per-serving nutrition from a free-text
// ingredient list.
package nutrition

import (
	"context"
	"errors"
	"strings"
	"sync"

	"recipe-extractor/internal/core/usage"
	"recipe-extractor/internal/pkg/common"

	"go.uber.org/zap"
)

// Service runs the full calculation: batch-parse the ingredient lines,
// look up each parsed line concurrently, and reduce the scaled vectors
// into totals. Per-ingredient failures are absorbed, never propagated.
type Service struct {
	parser        *LineParser
	lookup        Lookup
	ledger        *usage.Ledger
	maxConcurrent int
}

// NewService creates a nutrition service. maxConcurrent bounds the
// lookup fan-out.
func NewService(parser *LineParser, lookup Lookup, ledger *usage.Ledger, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Service{
		parser:        parser,
		lookup:        lookup,
		ledger:        ledger,
		maxConcurrent: maxConcurrent,
	}
}

// Calculate estimates nutrition for ingredientText split into lines,
// divided across servings. The result is always presentable: lines that
// cannot be parsed, have no quantity, or have no database match are
// skipped and only reflected in the processed/total counters.
func (s *Service) Calculate(ctx context.Context, ingredientText string, servings int) *Result {
	if servings < 1 {
		servings = 1
	}

	lines := splitLines(ingredientText)
	if len(lines) == 0 {
		return &Result{Servings: servings}
	}

	parsed, report := s.parser.ParseLines(ctx, lines)
	if report.TotalTokens > 0 {
		s.ledger.Record(ctx, report, usage.Context{
			Service:   "nutrition",
			Operation: "parse_ingredients",
			Model:     s.parser.provider.Model(),
		})
	}

	// Fan out the lookups: each branch produces its own scaled vector and
	// a single reduction sums them afterward, so no lock guards the total.
	type contribution struct {
		vector NutrientVector
		ok     bool
	}

	contributions := make([]contribution, len(parsed))
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i, line := range parsed {
		if line.Quantity <= 0 {
			continue
		}

		wg.Add(1)
		go func(i int, line ParsedIngredientLine) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			record, err := s.lookup.Search(ctx, line.SearchTerm)
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					common.LogWarn("Nutrient lookup failed, skipping ingredient",
						zap.Error(err),
						zap.String("search_term", line.SearchTerm),
					)
				}
				return
			}

			grams := ToGrams(line.Quantity, line.Unit)
			contributions[i] = contribution{
				vector: record.PerHundredGrams.ScaleToAmount(100, grams),
				ok:     true,
			}
		}(i, line)
	}
	wg.Wait()

	var total NutrientVector
	processed := 0
	for _, c := range contributions {
		if !c.ok {
			continue
		}
		total = total.Add(c.vector)
		processed++
	}

	result := &Result{
		TotalNutrition:       total.rounded(),
		PerServing:           total.Scale(1 / float64(servings)).rounded(),
		Servings:             servings,
		IngredientsProcessed: processed,
		IngredientsTotal:     len(lines),
	}

	common.LogInfo("Nutrition calculated",
		zap.Int("ingredients_total", result.IngredientsTotal),
		zap.Int("ingredients_processed", result.IngredientsProcessed),
		zap.Int("servings", servings),
	)

	return result
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
