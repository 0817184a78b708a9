package models

import (
	"errors"

	"github.com/RishiKendai/veritext/internal/plagiarism"
)

var ErrJobNotFound = errors.New("job not found")

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// CompareRequest is the body of a single comparison. Both fields must be
// present; empty strings are valid documents.
type CompareRequest struct {
	OriginalText   *string `json:"originalText" binding:"required"`
	ComparisonText *string `json:"comparisonText" binding:"required"`
}

// CompareResponse is the result bundle of a single comparison.
type CompareResponse = plagiarism.Result

// BatchCompareRequest compares one original against many documents.
type BatchCompareRequest struct {
	OriginalText    *string  `json:"originalText" binding:"required"`
	ComparisonTexts []string `json:"comparisonTexts" binding:"required"`
}

type BatchCompareResponse struct {
	Results []plagiarism.Result `json:"results"`
}

// JobResponse reports the state of an async comparison.
type JobResponse struct {
	JobID  string             `json:"jobId"`
	Status JobStatus          `json:"status"`
	Result *plagiarism.Result `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
