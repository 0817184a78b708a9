package stream

import (
	"fmt"
)

const (
	fieldJobID          = "jobId"
	fieldOriginalText   = "originalText"
	fieldComparisonText = "comparisonText"
)

// StreamMessage is a stream entry with its values flattened to strings
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// Job is one queued comparison
type Job struct {
	MessageID      string
	JobID          string
	OriginalText   string
	ComparisonText string
}

// ParseJob extracts a comparison job from a stream message. Empty texts are
// valid; absent fields are not.
func ParseJob(msg *StreamMessage) (*Job, error) {
	jobID := msg.Fields[fieldJobID]
	if jobID == "" {
		return nil, fmt.Errorf("message %s has no %s", msg.ID, fieldJobID)
	}

	original, ok := msg.Fields[fieldOriginalText]
	if !ok {
		return nil, fmt.Errorf("job %s has no %s", jobID, fieldOriginalText)
	}
	comparison, ok := msg.Fields[fieldComparisonText]
	if !ok {
		return nil, fmt.Errorf("job %s has no %s", jobID, fieldComparisonText)
	}

	return &Job{
		MessageID:      msg.ID,
		JobID:          jobID,
		OriginalText:   original,
		ComparisonText: comparison,
	}, nil
}

func jobValues(jobID, original, comparison string) map[string]interface{} {
	return map[string]interface{}{
		fieldJobID:          jobID,
		fieldOriginalText:   original,
		fieldComparisonText: comparison,
	}
}

func statusKey(jobID string) string {
	return "similarity:job:" + jobID + ":status"
}

func resultKey(jobID string) string {
	return "similarity:job:" + jobID + ":result"
}
