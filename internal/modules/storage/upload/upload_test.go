package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcfg "github.com/penline/core/internal/config"
	"github.com/penline/core/internal/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func allowAll(c *gin.Context) { c.Next() }

func newRouter(t *testing.T, maxBytes int64) (*gin.Engine, string, *metrics.Metrics) {
	t.Helper()
	dir := t.TempDir()
	m := metrics.New()
	h := NewHandler(NewLocalStorage(dir), Options{AllowedFormats: []string{"jpg", "png"}, MaxBytes: maxBytes}, zap.NewNop(), m)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"), allowAll)
	return r, dir, m
}

func multipartRequest(t *testing.T, field, filename string, payload []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(payload)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "nothing attached"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadStoresFile(t *testing.T) {
	r, dir, m := newRouter(t, 1<<20)
	payload := []byte("\x89PNG\r\n\x1a\nfake image")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "image", "Photo.PNG", payload))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Success bool   `json:"success"`
		Data    string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.True(t, strings.HasPrefix(body.Data, "image-"))
	assert.True(t, strings.HasSuffix(body.Data, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, body.Data))
	require.NoError(t, err)
	assert.Equal(t, payload, stored)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Uploads.WithLabelValues(appcfg.UploadLocal, "stored")))
}

func TestUploadRejections(t *testing.T) {
	r, dir, _ := newRouter(t, 16)

	cases := []struct {
		name     string
		req      *http.Request
		contains string
	}{
		{"missing file", multipartRequest(t, "", "", nil), "Please upload a file"},
		{"wrong field", multipartRequest(t, "file", "a.png", []byte("x")), "Please upload a file"},
		{"bad extension", multipartRequest(t, "image", "a.exe", []byte("x")), "Only jpg, png files are allowed"},
		{"too large", multipartRequest(t, "image", "a.jpg", bytes.Repeat([]byte("x"), 32)), "larger than"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, tc.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tc.contains)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuildFileNameIsUnique(t *testing.T) {
	a, b := buildFileName("x.JPG"), buildFileName("x.JPG")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".jpg"))
}

func TestS3StorageURL(t *testing.T) {
	s, err := NewS3Storage(appcfg.S3Config{Bucket: "media", Region: "eu-central-1", Prefix: "/posts/"})
	require.NoError(t, err)
	assert.Equal(t, "https://media.s3.eu-central-1.amazonaws.com/posts/a.png", s.URL("a.png"))

	s, err = NewS3Storage(appcfg.S3Config{Bucket: "media", Endpoint: "http://minio:9000/", PublicURL: "https://cdn.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", s.URL("a.png"))

	_, err = NewS3Storage(appcfg.S3Config{})
	assert.Error(t, err)
}
