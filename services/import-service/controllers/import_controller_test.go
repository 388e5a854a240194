package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	bucket, key, contentType string
	expires                  time.Duration
	err                      error
	called                   int
}

func (f *fakePresigner) PresignPut(ctx context.Context, bucket, key, contentType string, expires time.Duration) (string, error) {
	f.called++
	f.bucket, f.key, f.contentType, f.expires = bucket, key, contentType, expires
	if f.err != nil {
		return "", f.err
	}
	return "https://import-bucket.s3.amazonaws.com/" + key + "?X-Amz-Signature=abc", nil
}

func newImportRouter(p Presigner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/import", NewImportController(p, "import-bucket", "uploaded/").ImportProductsFile)
	return r
}

func TestImportProductsFile_ReturnsPresignedURL(t *testing.T) {
	p := &fakePresigner{}
	w := httptest.NewRecorder()
	newImportRouter(p).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/import?name=products.csv", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["url"], "uploaded/products.csv")

	assert.Equal(t, "import-bucket", p.bucket)
	assert.Equal(t, "uploaded/products.csv", p.key)
	assert.Equal(t, "text/csv", p.contentType)
	assert.Equal(t, time.Hour, p.expires)
}

func TestImportProductsFile_MissingName(t *testing.T) {
	for _, target := range []string{"/import", "/import?name=", "/import?name=%20"} {
		p := &fakePresigner{}
		w := httptest.NewRecorder()
		newImportRouter(p).ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.JSONEq(t, `{"message":"The file name is required"}`, w.Body.String(), target)
		assert.Zero(t, p.called, target)
	}
}

func TestImportProductsFile_PresignFailure(t *testing.T) {
	w := httptest.NewRecorder()
	newImportRouter(&fakePresigner{err: errors.New("no credentials")}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/import?name=products.csv", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String())
}
