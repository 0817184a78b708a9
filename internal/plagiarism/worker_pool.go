package plagiarism

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

var ErrPoolClosed = errors.New("worker pool is closed")

type Job interface {
	Execute(ctx context.Context) error
}

type WorkerPool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// creates a new worker pool; size <= 0 selects CPU-based sizing
func NewWorkerPool(ctx context.Context, size int) *WorkerPool {
	if size <= 0 {
		totalCPU := runtime.NumCPU()
		systemReserve := max(1, totalCPU/4) // Reserve 1/4 of the CPU for system processes
		size = max(1, totalCPU-systemReserve)
		log.Info().
			Int("totalCPU", totalCPU).
			Int("systemReserve", systemReserve).
			Int("workers", size).
			Msg("Worker pool initialized")
	} else {
		log.Info().Int("workers", size).Msg("Worker pool initialized")
	}
	poolCtx, cancel := context.WithCancel(ctx)

	pool := &WorkerPool{
		workers:  size,
		jobQueue: make(chan Job, size*2), // Buffer 2x the worker count
		ctx:      poolCtx,
		cancel:   cancel,
	}

	pool.start()

	return pool
}

// starts all worker goroutines
func (p *WorkerPool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// worker goroutine that processes jobs until the queue is closed
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobQueue {
		if err := job.Execute(p.ctx); err != nil {
			log.Error().Err(err).Int("worker", id).Msg("Worker failed to execute job")
		}
	}
}

// submits a job to the pool, blocking while the queue is full
func (p *WorkerPool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolClosed
	case p.jobQueue <- job:
		return nil
	}
}

// closes the worker pool, lets queued jobs drain and waits for all workers
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

// closed once the pool has shut down or its parent context is cancelled
func (p *WorkerPool) Done() <-chan struct{} {
	return p.ctx.Done()
}

// returns the number of workers
func (p *WorkerPool) Size() int {
	return p.workers
}
