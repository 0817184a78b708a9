package plagiarism

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	count *atomic.Int64
}

func (j *countingJob) Execute(ctx context.Context) error {
	j.count.Add(1)
	return nil
}

func TestWorkerPoolDrainsOnClose(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 3)
	assert.Equal(t, 3, pool.Size())

	var count atomic.Int64
	for i := 0; i < 50; i++ {
		require.NoError(t, pool.Submit(context.Background(), &countingJob{count: &count}))
	}

	pool.Close()

	assert.Equal(t, int64(50), count.Load())
	select {
	case <-pool.Done():
	default:
		t.Fatal("pool should report done after Close")
	}
}

func TestWorkerPoolCPUSizing(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 0)
	defer pool.Close()

	assert.GreaterOrEqual(t, pool.Size(), 1)
}

func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)
	pool.Close()
	pool.Close()

	var count atomic.Int64
	err := pool.Submit(context.Background(), &countingJob{count: &count})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestCompareBatch(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 2)
	defer pool.Close()

	engine := NewDefault()
	original := "The quick brown fox jumps over the lazy dog near the river bank"
	comparisons := []string{
		"A quick brown fox jumps over a sleepy cat",
		original,
		"",
		"Completely different words describing other matters entirely",
	}

	results, err := CompareBatch(context.Background(), pool, engine, original, comparisons)
	require.NoError(t, err)
	require.Len(t, results, len(comparisons))

	for i, comparison := range comparisons {
		assert.Equal(t, engine.Compare(original, comparison), results[i], "index %d", i)
	}
	assert.Equal(t, 1.0, results[1].SimilarityScore)
}

func TestCompareBatchEmpty(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)
	defer pool.Close()

	_, err := CompareBatch(context.Background(), pool, NewDefault(), "text", nil)
	assert.True(t, errors.Is(err, ErrEmptyBatch))
}

func TestCompareBatchClosedPool(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)
	pool.Close()

	_, err := CompareBatch(context.Background(), pool, NewDefault(), "text", []string{"other"})
	assert.ErrorIs(t, err, ErrPoolClosed)
}
