package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RetryHandler retries work with exponential backoff and moves messages that
// keep failing to a dead-letter stream.
type RetryHandler struct {
	client        redis.Cmdable
	deadLetterKey string
	maxRetries    int
	baseDelay     time.Duration
	maxDelay      time.Duration
}

func NewRetryHandler(client redis.Cmdable, deadLetterKey string) *RetryHandler {
	return &RetryHandler{
		client:        client,
		deadLetterKey: deadLetterKey,
		maxRetries:    3,
		baseDelay:     100 * time.Millisecond,
		maxDelay:      2 * time.Second,
	}
}

// backoff returns the delay before retry attempt n (1-based)
func (r *RetryHandler) backoff(attempt int) time.Duration {
	if attempt > 30 {
		return r.maxDelay
	}
	delay := r.baseDelay << (attempt - 1)
	if delay <= 0 || delay > r.maxDelay {
		return r.maxDelay
	}
	return delay
}

func (r *RetryHandler) RetryWithBackoff(
	ctx context.Context,
	fn func() error,
	messageID string,
	fields map[string]interface{},
) error {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			delay := r.backoff(attempt)
			log.Warn().
				Err(lastErr).
				Str("message_id", messageID).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying message")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}

	r.sendToDeadLetter(ctx, messageID, fields, lastErr)
	return fmt.Errorf("message %s failed after %d retries: %w", messageID, r.maxRetries, lastErr)
}

func (r *RetryHandler) sendToDeadLetter(ctx context.Context, messageID string, fields map[string]interface{}, cause error) {
	values := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		values[k] = v
	}
	values["original_message_id"] = messageID
	values["error"] = cause.Error()
	values["failed_at"] = time.Now().UTC().Format(time.RFC3339)

	err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.deadLetterKey,
		Values: values,
	}).Err()
	if err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to write message to dead-letter stream")
		return
	}

	log.Warn().
		Str("message_id", messageID).
		Str("dead_letter_key", r.deadLetterKey).
		Msg("Message moved to dead-letter stream")
}
