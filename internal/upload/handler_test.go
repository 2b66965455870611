package upload

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRouter(t *testing.T, svc Authorizer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc, zaptest.NewLogger(t)).RegisterRoutes(r.Group("/v1"))
	return r
}

func TestGenerateUploadURLFromPath(t *testing.T) {
	presigner := &fakePresigner{}
	r := newTestRouter(t, NewService(presigner, "file-uploads", 0))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/upload-url/reports/q3.pdf", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))

	var auth Authorization
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
	assert.Equal(t, "reports/q3.pdf", auth.Fields["key"])
	assert.Equal(t, "https://file-uploads.s3.amazonaws.com/", auth.URL)
}

func TestGenerateUploadURLFromBody(t *testing.T) {
	presigner := &fakePresigner{}
	r := newTestRouter(t, NewService(presigner, "file-uploads", 0))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/upload-url/", strings.NewReader(`{"filename":"notes.txt"}`)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "notes.txt", presigner.calls[0].objectName)
}

func TestGenerateUploadURLDefaultName(t *testing.T) {
	presigner := &fakePresigner{}
	r := newTestRouter(t, NewService(presigner, "file-uploads", 0))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/upload-url/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, DefaultObjectName, presigner.calls[0].objectName)
}

func TestGenerateUploadURLOverlongName(t *testing.T) {
	r := newTestRouter(t, NewService(&fakePresigner{}, "file-uploads", 0))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/upload-url/?filename="+strings.Repeat("a", 1100), nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateUploadURLPresignFailure(t *testing.T) {
	r := newTestRouter(t, NewService(&fakePresigner{err: errors.New("signing failed")}, "file-uploads", 0))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/upload-url/a.txt", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "signing failed")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

type countingAuthorizer struct{ calls int }

func (c *countingAuthorizer) Authorize(ctx context.Context, objectName string) (Authorization, error) {
	c.calls++
	return Authorization{}, nil
}

func TestUploadPreflight(t *testing.T) {
	svc := &countingAuthorizer{}
	r := newTestRouter(t, svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/v1/upload-url/a.txt", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Zero(t, svc.calls)
}
