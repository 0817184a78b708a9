package stream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RishiKendai/veritext/internal/metrics"
	"github.com/RishiKendai/veritext/internal/models"
	"github.com/RishiKendai/veritext/internal/plagiarism"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Consumer struct {
	client              redis.Cmdable
	streamKey           string
	consumerGroup       string
	consumerName        string
	engine              *plagiarism.Engine
	workerPool          *plagiarism.WorkerPool
	jobs                *JobStore
	retryHandler        *RetryHandler
	retentionDuration   time.Duration
	pelRecoveryInterval time.Duration
	cleanupInterval     time.Duration
	lastPELCheck        time.Time
}

func NewConsumer(
	client redis.Cmdable,
	streamKey string,
	consumerGroup string,
	consumerName string,
	engine *plagiarism.Engine,
	workerPool *plagiarism.WorkerPool,
	jobs *JobStore,
	retryHandler *RetryHandler,
	retentionDuration time.Duration,
) *Consumer {
	return &Consumer{
		client:              client,
		streamKey:           streamKey,
		consumerGroup:       consumerGroup,
		consumerName:        consumerName,
		engine:              engine,
		workerPool:          workerPool,
		jobs:                jobs,
		retryHandler:        retryHandler,
		retentionDuration:   retentionDuration,
		pelRecoveryInterval: 30 * time.Second,
		cleanupInterval:     1 * time.Hour,
		lastPELCheck:        time.Now(),
	}
}

func (c *Consumer) Start(ctx context.Context) error {
	if err := c.createConsumerGroup(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create consumer group, may be already exists")
	}

	// Recover PEL messages on startup (handle crash recovery)
	log.Info().Msg("Recovering PEL messages on startup")
	if err := c.recoverPEL(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to recover PEL messages on startup")
	}
	c.lastPELCheck = time.Now()

	go c.runCleanupPeriodically(ctx)
	log.Info().
		Dur("cleanup_interval", c.cleanupInterval).
		Dur("retention", c.retentionDuration).
		Msg("Started cleanup goroutine")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.consume(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Error().Err(err).Msg("Error consuming messages")
				time.Sleep(1 * time.Second) // Brief pause before retrying
			}
		}
	}
}

func (c *Consumer) createConsumerGroup(ctx context.Context) error {
	// MKSTREAM will create the stream if it doesn't exist
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.consumerGroup, "$").Err()
	if err != nil {
		if strings.Contains(err.Error(), "BUSYGROUP") {
			log.Debug().
				Str("group", c.consumerGroup).
				Msg("Consumer group already exists")
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.Info().
		Str("group", c.consumerGroup).
		Str("stream", c.streamKey).
		Msg("Created new consumer group (will only read new messages)")
	return nil
}

// recovers pending messages from the Pending Entry List
func (c *Consumer) recoverPEL(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.streamKey,
		Group:  c.consumerGroup,
		Start:  "-",
		End:    "+",
		Count:  100,
	}).Result()

	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("failed to get pending messages: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	log.Debug().Int("count", len(pending)).Msg("Found pending messages in PEL")

	// Claim pending messages that are idle for more than 1 minute
	minIdleTime := 1 * time.Minute
	messageIDs := c.claimableIDs(pending, minIdleTime)
	if len(messageIDs) == 0 {
		return nil
	}

	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.streamKey,
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		MinIdle:  minIdleTime,
		Messages: messageIDs,
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to claim messages: %w", err)
	}

	log.Info().
		Int("claimed", len(claimed)).
		Msg("Claimed PEL messages, processing")

	for i := range claimed {
		if err := c.processMessage(ctx, &claimed[i]); err != nil {
			log.Error().
				Err(err).
				Str("message_id", claimed[i].ID).
				Msg("Failed to process claimed PEL message")
		}
	}

	return nil
}

// claimableIDs picks idle entries owned by other consumers. Entries owned by
// this consumer are still queued on the worker pool.
func (c *Consumer) claimableIDs(pending []redis.XPendingExt, minIdle time.Duration) []string {
	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		if p.Consumer == c.consumerName {
			continue
		}
		if p.Idle >= minIdle {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (c *Consumer) consume(ctx context.Context) error {
	// Periodically check for PEL messages
	if time.Since(c.lastPELCheck) > c.pelRecoveryInterval {
		if err := c.recoverPEL(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to recover PEL messages")
		}
		c.lastPELCheck = time.Now()
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		Streams:  []string{c.streamKey, ">"},
		Count:    int64(c.workerPool.Size()),
		Block:    time.Second,
	}).Result()

	if err == redis.Nil {
		return nil // No messages available
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		if stream.Stream != c.streamKey {
			continue
		}

		for i := range stream.Messages {
			if err := c.processMessage(ctx, &stream.Messages[i]); err != nil {
				log.Error().
					Err(err).
					Str("message_id", stream.Messages[i].ID).
					Msg("Failed to process message")
			}
		}
	}

	return nil
}

// processMessage parses a message and hands it to the worker pool
func (c *Consumer) processMessage(ctx context.Context, msg *redis.XMessage) error {
	streamMsg := toStreamMessage(msg)

	job, err := ParseJob(streamMsg)
	if err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to parse job")
		metrics.JobCount.WithLabelValues(string(models.JobFailed)).Inc()
		if jobID := streamMsg.Fields[fieldJobID]; jobID != "" {
			c.storeFailure(ctx, jobID, err)
		}
		// Acknowledge bad messages to avoid reprocessing
		_ = c.acknowledge(ctx, msg.ID)
		return err
	}

	return c.workerPool.Submit(ctx, &comparisonTask{
		consumer: c,
		job:      job,
		fields:   toInterfaceMap(streamMsg.Fields),
	})
}

// comparisonTask runs a queued job on the worker pool
type comparisonTask struct {
	consumer *Consumer
	job      *Job
	fields   map[string]interface{}
}

func (t *comparisonTask) Execute(ctx context.Context) error {
	c, job := t.consumer, t.job

	if err := c.jobs.SetStatus(ctx, job.JobID, models.JobProcessing); err != nil {
		log.Warn().Err(err).Str("jobId", job.JobID).Msg("Failed to mark job processing")
	}

	start := time.Now()
	result := c.engine.Compare(job.OriginalText, job.ComparisonText)
	metrics.ObserveComparison("stream", string(result.Level), time.Since(start).Seconds())

	response := &models.JobResponse{
		JobID:  job.JobID,
		Status: models.JobCompleted,
		Result: &result,
	}

	err := c.retryHandler.RetryWithBackoff(ctx, func() error {
		return c.jobs.Complete(ctx, response)
	}, job.MessageID, t.fields)
	if err != nil {
		// Already sent to dead-letter stream by retry handler
		metrics.JobCount.WithLabelValues(string(models.JobFailed)).Inc()
		_ = c.acknowledge(ctx, job.MessageID)
		return err
	}

	metrics.JobCount.WithLabelValues(string(models.JobCompleted)).Inc()
	log.Debug().
		Str("jobId", job.JobID).
		Float64("score", result.SimilarityScore).
		Str("level", string(result.Level)).
		Msg("Comparison job completed")

	return c.acknowledge(ctx, job.MessageID)
}

func (c *Consumer) storeFailure(ctx context.Context, jobID string, cause error) {
	err := c.jobs.Complete(ctx, &models.JobResponse{
		JobID:  jobID,
		Status: models.JobFailed,
		Error:  cause.Error(),
	})
	if err != nil {
		log.Error().Err(err).Str("jobId", jobID).Msg("Failed to store job failure")
	}
}

// removes messages older than retention duration
func (c *Consumer) cleanupOldMessages(ctx context.Context) error {
	cutoffTime := time.Now().Add(-c.retentionDuration)
	minID := fmt.Sprintf("%d-0", cutoffTime.UnixMilli())

	trimmed, err := c.client.XTrimMinID(ctx, c.streamKey, minID).Result()
	if err != nil {
		return fmt.Errorf("failed to trim stream: %w", err)
	}

	if trimmed > 0 {
		log.Debug().
			Int64("trimmed", trimmed).
			Dur("retention", c.retentionDuration).
			Str("cutoff_time", cutoffTime.Format(time.RFC3339)).
			Msg("Cleaned up old messages from stream")
	}

	return nil
}

// runs cleanup every cleanupInterval
func (c *Consumer) runCleanupPeriodically(ctx context.Context) {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	if err := c.cleanupOldMessages(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to run initial cleanup")
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Cleanup goroutine shutting down")
			return
		case <-ticker.C:
			if err := c.cleanupOldMessages(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to cleanup old messages")
			}
		}
	}
}

func (c *Consumer) acknowledge(ctx context.Context, messageID string) error {
	err := c.client.XAck(ctx, c.streamKey, c.consumerGroup, messageID).Err()
	if err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to acknowledge message")
		return err
	}

	log.Debug().
		Str("message_id", messageID).
		Msg("Message acknowledged")

	return nil
}

func toStreamMessage(msg *redis.XMessage) *StreamMessage {
	fields := make(map[string]string, len(msg.Values))
	for key, val := range msg.Values {
		if value, ok := val.(string); ok {
			fields[key] = value
		}
	}
	return &StreamMessage{
		ID:     msg.ID,
		Fields: fields,
	}
}

func toInterfaceMap(fields map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
