package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-extractor/internal/pkg/common"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareDataURI(t *testing.T) {
	svc := NewService(1 << 20)
	data := tinyPNG(t)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	blob, err := svc.Prepare(context.Background(), uri)

	require.NoError(t, err)
	assert.Equal(t, "image/png", blob.MediaType)
	assert.Equal(t, data, blob.Data)
}

func TestPrepareBareBase64(t *testing.T) {
	svc := NewService(1 << 20)
	encoded := base64.StdEncoding.EncodeToString(tinyPNG(t))

	blob, err := svc.Prepare(context.Background(), encoded)

	require.NoError(t, err)
	assert.Equal(t, "image/png", blob.MediaType)
}

func TestPrepareURL(t *testing.T) {
	data := tinyPNG(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer server.Close()

	svc := NewService(1 << 20)
	blob, err := svc.Prepare(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "image/png", blob.MediaType)
	assert.Equal(t, data, blob.Data)
}

func TestPrepareRejectsOversized(t *testing.T) {
	data := tinyPNG(t)
	svc := NewService(int64(len(data)) - 1)

	_, err := svc.Prepare(context.Background(), base64.StdEncoding.EncodeToString(data))

	require.Error(t, err)
	var ce *common.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, common.ErrInvalidImageSize.Code, ce.Code)
}

func TestPrepareRejectsNonImage(t *testing.T) {
	svc := NewService(1 << 20)

	_, err := svc.Prepare(context.Background(), base64.StdEncoding.EncodeToString([]byte("not an image")))

	require.Error(t, err)
	var ce *common.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, common.ErrInvalidImageFormat.Code, ce.Code)
}

func TestPrepareRejectsBadBase64(t *testing.T) {
	svc := NewService(1 << 20)

	_, err := svc.Prepare(context.Background(), "%%% definitely not base64 %%%")

	require.Error(t, err)
	var ce *common.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, common.ErrInvalidImageFormat.Code, ce.Code)
}

func TestPrepareRejectsMalformedDataURI(t *testing.T) {
	svc := NewService(1 << 20)

	_, err := svc.Prepare(context.Background(), "data:image/png;base64")

	require.Error(t, err)
}
