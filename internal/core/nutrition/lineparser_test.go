package nutrition

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-extractor/internal/core/ai/provider"
)

type rawProvider struct {
	content string
	err     error
	lastReq *provider.Request
}

func (p *rawProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return &provider.Response{
		Content: p.content,
		Usage:   provider.TokenUsage{PromptTokens: 80, CompletionTokens: 40, TotalTokens: 120},
	}, nil
}

func (p *rawProvider) Model() string { return "openai/gpt-4o-mini" }
func (p *rawProvider) Close() error  { return nil }

func TestParseLinesBatch(t *testing.T) {
	p := &rawProvider{content: "```json\n" + `[
		{"quantity": 2, "unit": "cup", "canonical_name": "all-purpose flour", "search_term": "flour"},
		{"quantity": 0.5, "unit": "tsp", "canonical_name": "salt", "search_term": "salt"},
		{"quantity": 3, "unit": "", "canonical_name": "egg", "search_term": "egg"}
	]` + "\n```"}
	parser := NewLineParser(p)

	lines := []string{"2 cups all-purpose flour", "1/2 tsp salt", "3 large eggs"}
	parsed, report := parser.ParseLines(context.Background(), lines)

	require.Len(t, parsed, 3)
	assert.Equal(t, "2 cups all-purpose flour", parsed[0].OriginalText)
	assert.Equal(t, 2.0, parsed[0].Quantity)
	assert.Equal(t, "cup", parsed[0].Unit)
	assert.Equal(t, "flour", parsed[0].SearchTerm)
	assert.Equal(t, 0.5, parsed[1].Quantity)
	assert.Equal(t, "", parsed[2].Unit)
	assert.Equal(t, 120, report.TotalTokens)

	// All lines go in one numbered prompt.
	assert.Contains(t, p.lastReq.Prompt, "1. 2 cups all-purpose flour")
	assert.Contains(t, p.lastReq.Prompt, "3. 3 large eggs")
}

func TestParseLinesProviderFailure(t *testing.T) {
	p := &rawProvider{err: errors.New("502 from upstream")}
	parser := NewLineParser(p)

	parsed, report := parser.ParseLines(context.Background(), []string{"2 cups flour", "1 cup sugar"})

	require.Len(t, parsed, 2)
	for i, line := range []string{"2 cups flour", "1 cup sugar"} {
		assert.Equal(t, line, parsed[i].OriginalText)
		assert.Equal(t, line, parsed[i].SearchTerm)
		assert.Zero(t, parsed[i].Quantity)
	}
	assert.Zero(t, report.TotalTokens, "no usage when no response arrived")
}

func TestParseLinesUndecodableFallsBack(t *testing.T) {
	p := &rawProvider{content: "Sorry, I can't parse that list."}
	parser := NewLineParser(p)

	parsed, report := parser.ParseLines(context.Background(), []string{"2 cups flour"})

	require.Len(t, parsed, 1)
	assert.Equal(t, "2 cups flour", parsed[0].SearchTerm)
	assert.Zero(t, parsed[0].Quantity)
	assert.Equal(t, 120, report.TotalTokens, "tokens were spent even though the reply was unusable")
}

func TestParseLinesLengthMismatchFallsBack(t *testing.T) {
	p := &rawProvider{content: `[{"quantity": 2, "unit": "cup", "canonical_name": "flour", "search_term": "flour"}]`}
	parser := NewLineParser(p)

	parsed, _ := parser.ParseLines(context.Background(), []string{"2 cups flour", "1 cup sugar"})

	require.Len(t, parsed, 2)
	assert.Zero(t, parsed[0].Quantity)
	assert.Zero(t, parsed[1].Quantity)
}

func TestParseLinesSanitizesFields(t *testing.T) {
	p := &rawProvider{content: `[{"quantity": -3, "unit": " cup ", "canonical_name": " flour ", "search_term": "  "}]`}
	parser := NewLineParser(p)

	parsed, _ := parser.ParseLines(context.Background(), []string{"weird line"})

	require.Len(t, parsed, 1)
	assert.Zero(t, parsed[0].Quantity)
	assert.Equal(t, "cup", parsed[0].Unit)
	assert.Equal(t, "flour", parsed[0].CanonicalName)
	assert.Equal(t, "weird line", parsed[0].SearchTerm, "blank search term falls back to the raw line")
}

func TestParseLinesEmptyInput(t *testing.T) {
	p := &rawProvider{}
	parser := NewLineParser(p)

	parsed, report := parser.ParseLines(context.Background(), nil)

	assert.Nil(t, parsed)
	assert.Zero(t, report.TotalTokens)
	assert.Nil(t, p.lastReq)
}
