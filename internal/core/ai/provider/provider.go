// Package provider defines the interface to generative model upstreams.
package provider

import (
	"context"
	"errors"
)

// ErrTimeout indicates the upstream did not answer within the configured
// deadline. Callers treat it as a distinct failure from other transport
// errors only in reporting; both mean the model was unavailable.
var ErrTimeout = errors.New("model request timed out")

// ImageBlob is one image attachment: raw bytes plus the declared media type.
type ImageBlob struct {
	Data      []byte
	MediaType string
}

// Request is a single model invocation. Images are optional and ordered;
// the first image is the canonical/front page.
type Request struct {
	Prompt    string
	Images    []ImageBlob
	MaxTokens int
}

// TokenUsage is the token accounting reported by the upstream for one call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completion text plus usage for one call.
type Response struct {
	Content string
	Usage   TokenUsage
}

// Provider is a callable model upstream. Implementations must send all
// images of a request in a single call so the model sees cross-image
// context, and must respect ctx cancellation.
type Provider interface {
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Model returns the upstream model identifier, used for pricing.
	Model() string

	Close() error
}
