// Package llmjson extracts JSON values from language-model completions.
// Models wrap JSON in prose or markdown fences despite explicit prompt
// instructions, so decoding is attempted through an ordered list of
// strategies and the first success wins.
package llmjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError is returned when no strategy produced a valid JSON value.
// Raw retains the original completion for diagnostics.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no JSON value found in model output (%d bytes)", len(e.Raw))
}

var (
	fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	objectSpanPattern  = regexp.MustCompile(`(?s)\{.*\}`)
	arraySpanPattern   = regexp.MustCompile(`(?s)\[.*\]`)
)

// Extract locates the JSON payload inside raw and returns it as a string.
// Strategies, in order: the trimmed text itself, the inner content of a
// fenced code block, the first {...} or [...] span.
func Extract(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	if m := fencedBlockPattern.FindStringSubmatch(trimmed); m != nil {
		inner := strings.TrimSpace(m[1])
		if json.Valid([]byte(inner)) {
			return inner, nil
		}
	}

	for _, pattern := range []*regexp.Regexp{objectSpanPattern, arraySpanPattern} {
		if span := pattern.FindString(trimmed); span != "" && json.Valid([]byte(span)) {
			return span, nil
		}
	}

	return "", &ParseError{Raw: raw}
}

// Decode extracts the JSON payload from raw and unmarshals it into v.
func Decode(raw string, v interface{}) error {
	payload, err := Extract(raw)
	if err != nil {
		return err
	}
	return decodeJSON([]byte(payload), v)
}

func decodeJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
