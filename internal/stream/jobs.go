package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/veritext/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var validStatuses = map[models.JobStatus]bool{
	models.JobQueued:     true,
	models.JobProcessing: true,
	models.JobCompleted:  true,
	models.JobFailed:     true,
}

// JobStore enqueues comparisons on the stream and keeps short-lived status
// and reply keys for them.
type JobStore struct {
	client    redis.Cmdable
	streamKey string
	ttl       time.Duration
}

func NewJobStore(client redis.Cmdable, streamKey string, ttl time.Duration) *JobStore {
	return &JobStore{
		client:    client,
		streamKey: streamKey,
		ttl:       ttl,
	}
}

func (s *JobStore) Enqueue(ctx context.Context, original, comparison string) (string, error) {
	jobID := uuid.New().String()

	// Status first so a fast consumer never overwrites a later "queued"
	if err := s.SetStatus(ctx, jobID, models.JobQueued); err != nil {
		return "", err
	}

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.streamKey,
		Values: jobValues(jobID, original, comparison),
	}).Err()
	if err != nil {
		return "", fmt.Errorf("failed to add job to stream: %w", err)
	}

	log.Debug().Str("jobId", jobID).Str("stream", s.streamKey).Msg("Comparison job enqueued")

	return jobID, nil
}

func (s *JobStore) Get(ctx context.Context, jobID string) (*models.JobResponse, error) {
	raw, err := s.client.Get(ctx, resultKey(jobID)).Bytes()
	if err == nil {
		var job models.JobResponse
		if err := json.Unmarshal(raw, &job); err != nil {
			return nil, fmt.Errorf("failed to decode job result: %w", err)
		}
		return &job, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get job result: %w", err)
	}

	status, err := s.client.Get(ctx, statusKey(jobID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job status: %w", err)
	}

	return &models.JobResponse{
		JobID:  jobID,
		Status: models.JobStatus(status),
	}, nil
}

func (s *JobStore) SetStatus(ctx context.Context, jobID string, status models.JobStatus) error {
	if err := validateStatus(status); err != nil {
		return err
	}

	rkey := statusKey(jobID)
	if err := s.client.Set(ctx, rkey, string(status), s.ttl).Err(); err != nil {
		log.Error().Err(err).
			Str("status", string(status)).
			Str("jobId", jobID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("status", string(status)).
		Str("jobId", jobID).
		Msg("Status updated in Redis")

	return nil
}

// Complete stores the final job response and its status.
func (s *JobStore) Complete(ctx context.Context, job *models.JobResponse) error {
	if err := validateStatus(job.Status); err != nil {
		return err
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job result: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, resultKey(job.JobID), payload, s.ttl)
		pipe.Set(ctx, statusKey(job.JobID), string(job.Status), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store job result: %w", err)
	}

	return nil
}

func validateStatus(status models.JobStatus) error {
	if !validStatuses[status] {
		return fmt.Errorf("unknown job status: %s", status)
	}
	return nil
}
