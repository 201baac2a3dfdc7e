package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"recipe-extractor/internal/core/ai/provider"
	"recipe-extractor/internal/pkg/common"
)

var mediaTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// Service validates image payloads and prepares them for model calls.
type Service struct {
	maxSizeBytes int64
	httpClient   *http.Client
}

// NewService creates an image service that rejects payloads larger than
// maxSizeBytes.
func NewService(maxSizeBytes int64) *Service {
	return &Service{
		maxSizeBytes: maxSizeBytes,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Prepare turns a client-supplied image reference into a validated blob.
// It accepts an http(s) URL, a data URI, or a bare base64 string. The
// media type is taken from the decoded image, not from what the client
// claims.
func (s *Service) Prepare(ctx context.Context, imageData string) (provider.ImageBlob, error) {
	raw, err := s.fetchBytes(ctx, imageData)
	if err != nil {
		return provider.ImageBlob{}, err
	}
	return s.validate(raw)
}

func (s *Service) fetchBytes(ctx context.Context, imageData string) ([]byte, error) {
	if strings.HasPrefix(imageData, "http://") || strings.HasPrefix(imageData, "https://") {
		return s.download(ctx, imageData)
	}

	payload := imageData
	if strings.HasPrefix(imageData, "data:") {
		parts := strings.SplitN(imageData, ",", 2)
		if len(parts) != 2 {
			return nil, common.NewError(common.ErrInvalidImageFormat.Code, "malformed data URI", http.StatusBadRequest, nil)
		}
		payload = parts[1]
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, common.NewError(common.ErrInvalidImageFormat.Code, "invalid base64 image data", http.StatusBadRequest, err)
	}
	return decoded, nil
}

func (s *Service) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status code %d", resp.StatusCode)
	}

	// Cap the read one byte past the limit so oversized bodies are
	// rejected without buffering them whole.
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}

func (s *Service) validate(data []byte) (provider.ImageBlob, error) {
	if int64(len(data)) > s.maxSizeBytes {
		return provider.ImageBlob{}, common.NewError(common.ErrInvalidImageSize.Code,
			fmt.Sprintf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes),
			http.StatusBadRequest, nil)
	}

	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return provider.ImageBlob{}, common.NewError(common.ErrInvalidImageFormat.Code, "failed to decode image", http.StatusBadRequest, err)
	}

	mediaType, ok := mediaTypes[format]
	if !ok {
		return provider.ImageBlob{}, common.NewError(common.ErrInvalidImageFormat.Code,
			fmt.Sprintf("unsupported image format: %s", format), http.StatusBadRequest, nil)
	}

	return provider.ImageBlob{Data: data, MediaType: mediaType}, nil
}
