package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RishiKendai/veritext/internal/config"
	"github.com/RishiKendai/veritext/internal/models"
	"github.com/RishiKendai/veritext/internal/plagiarism"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	originalText   = "Photosynthesis converts light energy into chemical energy stored in glucose molecules."
	comparisonText = "In plants, photosynthesis converts light energy into sugar."
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeJobs struct {
	enqueued []string
	jobs     map[string]*models.JobResponse
}

func (f *fakeJobs) Enqueue(ctx context.Context, original, comparison string) (string, error) {
	id := "job-" + string(rune('a'+len(f.enqueued)))
	f.enqueued = append(f.enqueued, original+"|"+comparison)
	f.jobs[id] = &models.JobResponse{JobID: id, Status: models.JobQueued}
	return id, nil
}

func (f *fakeJobs) Get(ctx context.Context, jobID string) (*models.JobResponse, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, models.ErrJobNotFound
	}
	return job, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.RateLimitRPS = 1000
	cfg.MaxBatchSize = 3
	cfg.MaxTextBytes = 4096
	return cfg
}

func newTestRouter(t *testing.T, cfg *config.Config, jobs JobQueue) *gin.Engine {
	t.Helper()
	pool := plagiarism.NewWorkerPool(context.Background(), 2)
	t.Cleanup(pool.Close)

	limiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))
	return SetupRoutes(cfg, plagiarism.NewDefault(), pool, jobs, limiter)
}

func doJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, testConfig(t), nil)

	for _, path := range []string{"/health", "/api/health"} {
		rec := doJSON(router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	}
}

func TestCompare(t *testing.T) {
	router := newTestRouter(t, testConfig(t), nil)

	rec := doJSON(router, http.MethodPost, "/api/compare", map[string]string{
		"originalText":   originalText,
		"comparisonText": comparisonText,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	var got plagiarism.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, plagiarism.NewDefault().Compare(originalText, comparisonText), got)
}

func TestCompareEmptyTextsAreValid(t *testing.T) {
	router := newTestRouter(t, testConfig(t), nil)

	rec := doJSON(router, http.MethodPost, "/api/compare", `{"originalText":"","comparisonText":""}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got plagiarism.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 0.0, got.SimilarityScore)
	assert.Equal(t, plagiarism.LevelLow, got.Level)
	assert.Empty(t, got.MatchingSegments)
}

func TestCompareRejectsBadRequests(t *testing.T) {
	router := newTestRouter(t, testConfig(t), nil)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing comparison", `{"originalText":"abc"}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"malformed json", `{"originalText":`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"too large", `{"originalText":"` + strings.Repeat("a", 5000) + `","comparisonText":"b"}`,
			http.StatusRequestEntityTooLarge, "TEXT_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(router, http.MethodPost, "/api/compare", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

// countingReader records how much of a request body the server pulled.
type countingReader struct {
	r    io.Reader
	read int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	return n, err
}

func TestOversizedBodyStopsAtLimit(t *testing.T) {
	cfg := testConfig(t)
	router := newTestRouter(t, cfg, nil)

	body := &countingReader{r: io.MultiReader(
		strings.NewReader(`{"originalText":"`),
		io.LimitReader(repeatReader('a'), 64<<20),
		strings.NewReader(`","comparisonText":"b"}`),
	)}
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "TEXT_TOO_LARGE", decodeError(t, rec).Code)

	limit := int64(2*jsonEscapeFactor*cfg.MaxTextBytes + jsonEnvelopeBytes)
	assert.LessOrEqual(t, body.read, limit+64<<10)
}

func TestEscapedTextWithinLimit(t *testing.T) {
	cfg := testConfig(t)
	router := newTestRouter(t, cfg, nil)

	// Encodes as \u003c, six bytes per character
	text := strings.Repeat("<", cfg.MaxTextBytes)
	rec := doJSON(router, http.MethodPost, "/api/compare", map[string]string{
		"originalText":   text,
		"comparisonText": text,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

type repeatReader byte

func (r repeatReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r)
	}
	return len(p), nil
}

func TestCompareTimeout(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxConcurrentCompute = 1
	cfg.ComputationTimeout = 20 * time.Millisecond

	pool := plagiarism.NewWorkerPool(context.Background(), 1)
	defer pool.Close()

	handler := NewHandler(cfg, plagiarism.NewDefault(), pool, nil)
	handler.computeSem <- struct{}{} // every slot busy

	router := gin.New()
	router.POST("/api/compare", handler.Compare)

	rec := doJSON(router, http.MethodPost, "/api/compare", map[string]string{
		"originalText":   originalText,
		"comparisonText": comparisonText,
	})
	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
	assert.Equal(t, "REQUEST_TIMEOUT", decodeError(t, rec).Code)
}

func TestCompareBatch(t *testing.T) {
	router := newTestRouter(t, testConfig(t), nil)
	comparisons := []string{comparisonText, originalText, ""}

	rec := doJSON(router, http.MethodPost, "/api/compare/batch", map[string]interface{}{
		"originalText":    originalText,
		"comparisonTexts": comparisons,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.BatchCompareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Results, 3)

	engine := plagiarism.NewDefault()
	for i, comparison := range comparisons {
		assert.Equal(t, engine.Compare(originalText, comparison), got.Results[i])
	}
}

func TestCompareBatchRejectsBadRequests(t *testing.T) {
	router := newTestRouter(t, testConfig(t), nil)

	rec := doJSON(router, http.MethodPost, "/api/compare/batch", `{"originalText":"a","comparisonTexts":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/compare/batch", `{"originalText":"a","comparisonTexts":["1","2","3","4"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BATCH_TOO_LARGE", decodeError(t, rec).Code)

	rec = doJSON(router, http.MethodPost, "/api/compare/batch", `{"comparisonTexts":["1"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobsDisabled(t *testing.T) {
	router := newTestRouter(t, testConfig(t), nil)

	rec := doJSON(router, http.MethodPost, "/api/jobs", map[string]string{"originalText": "a", "comparisonText": "b"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "ASYNC_DISABLED", decodeError(t, rec).Code)

	rec = doJSON(router, http.MethodGet, "/api/jobs/anything", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestJobs(t *testing.T) {
	jobs := &fakeJobs{jobs: make(map[string]*models.JobResponse)}
	router := newTestRouter(t, testConfig(t), jobs)

	rec := doJSON(router, http.MethodPost, "/api/jobs", map[string]string{
		"originalText":   originalText,
		"comparisonText": comparisonText,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var queued models.JobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &queued))
	assert.Equal(t, models.JobQueued, queued.Status)
	assert.Equal(t, []string{originalText + "|" + comparisonText}, jobs.enqueued)

	rec = doJSON(router, http.MethodGet, "/api/jobs/"+queued.JobID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodGet, "/api/jobs/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "JOB_NOT_FOUND", decodeError(t, rec).Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, testConfig(t), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/compare", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagated(t *testing.T) {
	router := newTestRouter(t, testConfig(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}
