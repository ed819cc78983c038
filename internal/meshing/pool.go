package meshing

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
)

// ErrPoolClosed is the result of work submitted after Shutdown
var ErrPoolClosed = errors.New("worker pool is shut down")

// WorkUnitFailure wraps the error or panic of one failed unit of work
type WorkUnitFailure struct {
	Name string
	Err  error
}

func (f *WorkUnitFailure) Error() string {
	return fmt.Sprintf("work unit %q failed: %v", f.Name, f.Err)
}

func (f *WorkUnitFailure) Unwrap() error { return f.Err }

// Job is the handle of a submitted unit of work. Callers may wait on it or drop it.
type Job struct {
	name string
	fn   func() error
	done chan struct{}
	err  error
}

// Name returns the name given at submission
func (j *Job) Name() string { return j.name }

// Done is closed once the unit has finished
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the unit has finished and returns its failure, if any.
// A failure is always a *WorkUnitFailure, or ErrPoolClosed.
func (j *Job) Wait() error {
	<-j.done
	return j.err
}

// WorkerPool runs independent units of work on a fixed set of goroutines
// pulling from one FIFO queue.
type WorkerPool struct {
	jobQueue chan *Job
	workers  int
	logger   *slog.Logger

	// mu guards closed and the close of jobQueue against in-flight sends
	mu       sync.RWMutex
	closed   bool
	shutdown sync.Once
	wg       sync.WaitGroup
}

// NewWorkerPool starts workers goroutines with a queue of queueSize pending units
func NewWorkerPool(workers int, queueSize int, logger *slog.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool := &WorkerPool{
		jobQueue: make(chan *Job, queueSize),
		workers:  workers,
		logger:   logger,
	}

	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// Submit queues fn, blocking while the queue is full. Work is never dropped:
// after Shutdown the returned job is already finished with ErrPoolClosed.
func (p *WorkerPool) Submit(name string, fn func() error) *Job {
	job := newJob(name, fn)

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		job.finish(ErrPoolClosed)
		return job
	}
	p.jobQueue <- job
	return job
}

// TrySubmit queues fn only if there is room. It returns false, and no job,
// when the queue is full or the pool is shut down.
func (p *WorkerPool) TrySubmit(name string, fn func() error) (*Job, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, false
	}

	job := newJob(name, fn)
	select {
	case p.jobQueue <- job:
		return job, true
	default:
		return nil, false
	}
}

func newJob(name string, fn func() error) *Job {
	return &Job{name: name, fn: fn, done: make(chan struct{})}
}

func (j *Job) finish(err error) {
	j.err = err
	close(j.done)
}

// worker is the worker goroutine that processes queued units until the queue is closed
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobQueue {
		if err := p.run(job); err != nil {
			p.logger.Error("work unit failed", "unit", job.name, "worker", id, "err", err.Err)
			job.finish(err)
			continue
		}
		job.finish(nil)
	}
}

// run executes one unit, turning an error or panic into a WorkUnitFailure
func (p *WorkerPool) run(job *Job) (failure *WorkUnitFailure) {
	defer func() {
		if r := recover(); r != nil {
			failure = &WorkUnitFailure{Name: job.name, Err: errors.Errorf("panic: %v", r)}
		}
	}()
	if err := job.fn(); err != nil {
		return &WorkUnitFailure{Name: job.name, Err: err}
	}
	return nil
}

// Shutdown stops accepting work, lets every queued unit finish and waits for
// all workers to exit. It is safe to call more than once.
func (p *WorkerPool) Shutdown() {
	p.shutdown.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobQueue)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

// Workers returns the number of worker goroutines
func (p *WorkerPool) Workers() int {
	return p.workers
}

// QueueLength returns the current number of units waiting for a worker
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}
