package plagiarism

import (
	"context"
	"errors"
	"fmt"
)

var ErrEmptyBatch = errors.New("batch contains no comparison texts")

// BatchItem carries one comparison result back to the collector.
type BatchItem struct {
	Index  int
	Result Result
}

// ComparisonJob compares one pair of documents on the worker pool.
type ComparisonJob struct {
	Index      int
	Original   string
	Comparison string
	Engine     *Engine
	ResultChan chan<- BatchItem
}

func (j *ComparisonJob) Execute(ctx context.Context) error {
	result := j.Engine.Compare(j.Original, j.Comparison)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case j.ResultChan <- BatchItem{Index: j.Index, Result: result}:
		return nil
	}
}

// CompareBatch compares original against each of comparisons on the pool and
// returns the results in input order.
func CompareBatch(
	ctx context.Context,
	pool *WorkerPool,
	engine *Engine,
	original string,
	comparisons []string,
) ([]Result, error) {
	if len(comparisons) == 0 {
		return nil, ErrEmptyBatch
	}

	// Buffered so workers never block on a collector that gave up
	resultChan := make(chan BatchItem, len(comparisons))

	for i, comparison := range comparisons {
		job := &ComparisonJob{
			Index:      i,
			Original:   original,
			Comparison: comparison,
			Engine:     engine,
			ResultChan: resultChan,
		}
		if err := pool.Submit(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to submit comparison %d: %w", i, err)
		}
	}

	results := make([]Result, len(comparisons))
	for received := 0; received < len(comparisons); received++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-pool.Done():
			return nil, ErrPoolClosed
		case item := <-resultChan:
			results[item.Index] = item.Result
		}
	}

	return results, nil
}
