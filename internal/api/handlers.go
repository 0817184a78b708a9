package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/RishiKendai/veritext/internal/config"
	"github.com/RishiKendai/veritext/internal/metrics"
	"github.com/RishiKendai/veritext/internal/models"
	"github.com/RishiKendai/veritext/internal/plagiarism"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	jsonEscapeFactor  = 6
	jsonEnvelopeBytes = 4096
)

// JobQueue accepts comparisons for asynchronous processing.
type JobQueue interface {
	Enqueue(ctx context.Context, original, comparison string) (string, error)
	Get(ctx context.Context, jobID string) (*models.JobResponse, error)
}

// Handler holds dependencies for handlers
type Handler struct {
	cfg            *config.Config
	engine         *plagiarism.Engine
	workerPool     *plagiarism.WorkerPool
	jobs           JobQueue
	computeSem     chan struct{} // Semaphore for bounded concurrency
	computeTimeout time.Duration
}

// NewHandler creates a new handler. jobs may be nil when async processing
// is not configured.
func NewHandler(
	cfg *config.Config,
	engine *plagiarism.Engine,
	workerPool *plagiarism.WorkerPool,
	jobs JobQueue,
) *Handler {
	sem := make(chan struct{}, cfg.MaxConcurrentCompute)

	return &Handler{
		cfg:            cfg,
		engine:         engine,
		workerPool:     workerPool,
		jobs:           jobs,
		computeSem:     sem,
		computeTimeout: cfg.ComputationTimeout,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

func (h *Handler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if !h.bindJSON(c, 2, &req, "originalText and comparisonText are required") {
		return
	}

	original, comparison := *req.OriginalText, *req.ComparisonText
	if !h.withinLimit(original) || !h.withinLimit(comparison) {
		abortWithError(c, http.StatusRequestEntityTooLarge, h.tooLargeMessage(), "TEXT_TOO_LARGE")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.computeTimeout)
	defer cancel()

	done := make(chan plagiarism.Result, 1)
	err := h.runBounded(ctx, func() {
		start := time.Now()
		result := h.engine.Compare(original, comparison)
		metrics.ObserveComparison("http", string(result.Level), time.Since(start).Seconds())
		done <- result
	})
	if err != nil {
		h.abortTimeout(c, err)
		return
	}

	select {
	case result := <-done:
		log.Debug().
			Str("requestId", c.GetString(requestIDKey)).
			Float64("score", result.SimilarityScore).
			Str("level", string(result.Level)).
			Int("segments", len(result.MatchingSegments)).
			Msg("Comparison completed")
		c.JSON(http.StatusOK, result)
	case <-ctx.Done():
		h.abortTimeout(c, ctx.Err())
	}
}

func (h *Handler) CompareBatch(c *gin.Context) {
	var req models.BatchCompareRequest
	if !h.bindJSON(c, h.cfg.MaxBatchSize+1, &req, "originalText and comparisonTexts are required") {
		return
	}

	if len(req.ComparisonTexts) == 0 {
		abortWithError(c, http.StatusBadRequest, plagiarism.ErrEmptyBatch.Error(), "INVALID_REQUEST")
		return
	}
	if len(req.ComparisonTexts) > h.cfg.MaxBatchSize {
		abortWithError(c, http.StatusBadRequest,
			fmt.Sprintf("batch exceeds %d comparison texts", h.cfg.MaxBatchSize), "BATCH_TOO_LARGE")
		return
	}

	original := *req.OriginalText
	if !h.withinLimit(original) {
		abortWithError(c, http.StatusRequestEntityTooLarge, h.tooLargeMessage(), "TEXT_TOO_LARGE")
		return
	}
	for _, text := range req.ComparisonTexts {
		if !h.withinLimit(text) {
			abortWithError(c, http.StatusRequestEntityTooLarge, h.tooLargeMessage(), "TEXT_TOO_LARGE")
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.computeTimeout)
	defer cancel()

	type batchOutcome struct {
		results []plagiarism.Result
		err     error
	}
	done := make(chan batchOutcome, 1)
	err := h.runBounded(ctx, func() {
		start := time.Now()
		results, err := plagiarism.CompareBatch(ctx, h.workerPool, h.engine, original, req.ComparisonTexts)
		if err == nil {
			elapsed := time.Since(start).Seconds() / float64(len(results))
			for _, result := range results {
				metrics.ObserveComparison("batch", string(result.Level), elapsed)
			}
		}
		done <- batchOutcome{results: results, err: err}
	})
	if err != nil {
		h.abortTimeout(c, err)
		return
	}

	outcome := <-done
	if outcome.err != nil {
		if errors.Is(outcome.err, context.DeadlineExceeded) || errors.Is(outcome.err, context.Canceled) {
			h.abortTimeout(c, outcome.err)
			return
		}
		log.Error().Err(outcome.err).Str("requestId", c.GetString(requestIDKey)).Msg("Batch comparison failed")
		abortWithError(c, http.StatusInternalServerError, "Batch comparison failed", "INTERNAL_ERROR")
		return
	}

	c.JSON(http.StatusOK, models.BatchCompareResponse{Results: outcome.results})
}

func (h *Handler) EnqueueJob(c *gin.Context) {
	if h.jobs == nil {
		abortWithError(c, http.StatusServiceUnavailable, "Async comparisons are not configured", "ASYNC_DISABLED")
		return
	}

	var req models.CompareRequest
	if !h.bindJSON(c, 2, &req, "originalText and comparisonText are required") {
		return
	}
	if !h.withinLimit(*req.OriginalText) || !h.withinLimit(*req.ComparisonText) {
		abortWithError(c, http.StatusRequestEntityTooLarge, h.tooLargeMessage(), "TEXT_TOO_LARGE")
		return
	}

	jobID, err := h.jobs.Enqueue(c.Request.Context(), *req.OriginalText, *req.ComparisonText)
	if err != nil {
		log.Error().Err(err).Msg("Failed to enqueue comparison job")
		abortWithError(c, http.StatusInternalServerError, "Failed to enqueue comparison", "INTERNAL_ERROR")
		return
	}

	// Return 202 Accepted immediately
	c.JSON(http.StatusAccepted, models.JobResponse{
		JobID:  jobID,
		Status: models.JobQueued,
	})
}

func (h *Handler) GetJob(c *gin.Context) {
	if h.jobs == nil {
		abortWithError(c, http.StatusServiceUnavailable, "Async comparisons are not configured", "ASYNC_DISABLED")
		return
	}

	jobID := c.Param("id")
	job, err := h.jobs.Get(c.Request.Context(), jobID)
	if errors.Is(err, models.ErrJobNotFound) {
		abortWithError(c, http.StatusNotFound, "Job not found or expired", "JOB_NOT_FOUND")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("jobId", jobID).Msg("Failed to get job")
		abortWithError(c, http.StatusInternalServerError, "Failed to get job", "INTERNAL_ERROR")
		return
	}

	c.JSON(http.StatusOK, job)
}

// runBounded acquires a compute slot and runs fn in the background. The slot
// is released when fn returns, even if the caller has stopped waiting.
func (h *Handler) runBounded(ctx context.Context, fn func()) error {
	select {
	case h.computeSem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	go func() {
		defer func() { <-h.computeSem }()
		fn()
	}()
	return nil
}

func (h *Handler) abortTimeout(c *gin.Context, err error) {
	log.Warn().Err(err).Str("requestId", c.GetString(requestIDKey)).Msg("Comparison did not finish in time")
	abortWithError(c, http.StatusRequestTimeout, "Comparison timed out or was cancelled", "REQUEST_TIMEOUT")
}

// bindJSON decodes a body carrying up to texts documents. The body is capped
// before it is read, so oversized requests stop at the limit.
func (h *Handler) bindJSON(c *gin.Context, texts int, obj interface{}, invalidMessage string) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.bodyLimit(texts))

	if err := c.ShouldBindJSON(obj); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, http.StatusRequestEntityTooLarge, h.tooLargeMessage(), "TEXT_TOO_LARGE")
			return false
		}
		abortWithError(c, http.StatusBadRequest, invalidMessage, "INVALID_REQUEST")
		return false
	}
	return true
}

// bodyLimit allows each text its worst-case JSON escaping (\uXXXX per byte)
// plus room for keys and punctuation.
func (h *Handler) bodyLimit(texts int) int64 {
	return int64(texts)*jsonEscapeFactor*int64(h.cfg.MaxTextBytes) + jsonEnvelopeBytes
}

func (h *Handler) withinLimit(text string) bool {
	return len(text) <= h.cfg.MaxTextBytes
}

func (h *Handler) tooLargeMessage() string {
	return fmt.Sprintf("Text exceeds %d bytes", h.cfg.MaxTextBytes)
}

func abortWithError(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
