package recipe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	imagepkg "image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-extractor/internal/core/ai/provider"
	"recipe-extractor/internal/core/extract"
	"recipe-extractor/internal/core/image"
	"recipe-extractor/internal/core/usage"
	"recipe-extractor/internal/pkg/common"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = common.InitLogger("error")
}

type stubProvider struct {
	content string
	err     error
}

func (p *stubProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &provider.Response{
		Content: p.content,
		Usage:   provider.TokenUsage{PromptTokens: 200, CompletionTokens: 100, TotalTokens: 300},
	}, nil
}

func (p *stubProvider) Model() string { return "openai/gpt-4o" }
func (p *stubProvider) Close() error  { return nil }

func newRouter(p provider.Provider) *gin.Engine {
	extractSvc := extract.NewService(p, usage.NewLedger(usage.NewMemorySink()))
	imageSvc := image.NewService(1 << 20)

	r := gin.New()
	r.POST("/recipes/extract", HandleExtractFromImages(extractSvc, imageSvc))
	r.POST("/recipes/extract-text", HandleExtractFromText(extractSvc))
	return r
}

func pngBase64(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imagepkg.NewRGBA(imagepkg.Rect(0, 0, 1, 1))))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const recipeJSON = `{"title":"Beef Stew","category":"main","prep_time_minutes":20,"cook_time_minutes":90,"servings":"6","ingredients":"2 lb beef chuck\n4 carrots","instructions":"Brown the beef. Simmer.","notes":null,"source":null,"rating":null}`

func TestExtractFromImagesSuccess(t *testing.T) {
	r := newRouter(&stubProvider{content: recipeJSON})

	w := postJSON(t, r, "/recipes/extract", gin.H{"images": []string{pngBase64(t)}})

	require.Equal(t, http.StatusOK, w.Code)
	var outcome extract.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	require.NotNil(t, outcome.Recipe)
	assert.Equal(t, "Beef Stew", *outcome.Recipe.Title)
	assert.Equal(t, 1.0, outcome.Confidence)
	assert.Equal(t, 300, outcome.Usage.TotalTokens)
}

func TestExtractFromImagesRejectsEmptyList(t *testing.T) {
	r := newRouter(&stubProvider{content: recipeJSON})

	w := postJSON(t, r, "/recipes/extract", gin.H{"images": []string{}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractFromImagesRejectsBadImage(t *testing.T) {
	r := newRouter(&stubProvider{content: recipeJSON})

	w := postJSON(t, r, "/recipes/extract", gin.H{
		"images": []string{base64.StdEncoding.EncodeToString([]byte("plain text"))},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrInvalidImageFormat.Code)
}

func TestExtractFromTextSuccess(t *testing.T) {
	r := newRouter(&stubProvider{content: recipeJSON})

	w := postJSON(t, r, "/recipes/extract-text", gin.H{"text": "Beef Stew\n2 lb beef..."})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Beef Stew")
}

func TestExtractModelUnavailableMapsTo503(t *testing.T) {
	r := newRouter(&stubProvider{err: errors.New("upstream 502")})

	w := postJSON(t, r, "/recipes/extract-text", gin.H{"text": "some recipe text"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), string(extract.FailureModelUnavailable))
}

func TestExtractUnparseableMapsTo422(t *testing.T) {
	r := newRouter(&stubProvider{content: "I could not find a recipe here, sorry!"})

	w := postJSON(t, r, "/recipes/extract-text", gin.H{"text": "unrelated text"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), string(extract.FailureUnparseable))
	// The call was paid for, so the usage report is surfaced.
	assert.Contains(t, w.Body.String(), `"total_tokens":300`)
}

func TestExtractMissingBodyFields(t *testing.T) {
	r := newRouter(&stubProvider{content: recipeJSON})

	w := postJSON(t, r, "/recipes/extract-text", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeInvalidRequest)
}
