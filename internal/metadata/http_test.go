package metadata

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

type stubLister struct {
	set RecordSet
	err error
}

func (s stubLister) ListAll(ctx context.Context) (RecordSet, error) {
	return s.set, s.err
}

type stubProcessor struct {
	got Notification
	err error
}

func (s *stubProcessor) Process(ctx context.Context, n Notification) (ProcessingResult, error) {
	s.got = n
	if s.err != nil {
		return ProcessingResult{}, s.err
	}
	return ProcessingResult{Message: "ok", FilesProcessed: len(n.Events)}, nil
}

func newTestRouter(t *testing.T, reader Lister, writer Processor) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/v1"), reader, writer, zaptest.NewLogger(t))
	return r
}

func TestListMetadataReturnsRecordSet(t *testing.T) {
	r := newTestRouter(t, stubLister{set: RecordSet{
		Count:   1,
		Records: []Record{{RecordID: "uploads/a.txt", ObjectName: "a.txt", SizeBytes: 3}},
	}}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/metadata", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))

	var body struct {
		Count   int              `json:"count"`
		Records []map[string]any `json:"records"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Records, 1)
	assert.Equal(t, "uploads/a.txt", body.Records[0]["record_id"])
	assert.Contains(t, body.Records[0], "store_last_modified")
}

func TestListMetadataFailure(t *testing.T) {
	r := newTestRouter(t, stubLister{err: errors.New("scan metadata: timeout")}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/metadata", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"error":"scan metadata: timeout"}`, w.Body.String())
}

func TestListMetadataPreflight(t *testing.T) {
	r := newTestRouter(t, stubLister{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/v1/metadata", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
}

const s3EventJSON = `{
  "Records": [
    {
      "eventName": "ObjectCreated:Post",
      "s3": {
        "bucket": {"name": "uploads"},
        "object": {"key": "reports%2Fq3.pdf", "size": 2048}
      }
    }
  ]
}`

func TestIngestEventsPassesNotification(t *testing.T) {
	proc := &stubProcessor{}
	r := newTestRouter(t, nil, proc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(s3EventJSON))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"ok","files_processed":1}`, w.Body.String())
	require.Len(t, proc.got.Events, 1)
	assert.Equal(t, ObjectEvent{Container: "uploads", ObjectName: "reports%2Fq3.pdf", Size: 2048}, proc.got.Events[0])
}

func TestIngestEventsRejectsInvalidPayload(t *testing.T) {
	r := newTestRouter(t, nil, &stubProcessor{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestEventsSurfacesWriterFailure(t *testing.T) {
	r := newTestRouter(t, nil, &stubProcessor{err: ErrEmptyNotification})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(`{"Records":[]}`)))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestRegisterRoutesSkipsMissingSides(t *testing.T) {
	r := newTestRouter(t, stubLister{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(s3EventJSON)))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
