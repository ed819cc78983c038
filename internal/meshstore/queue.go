package meshstore

import (
	"sync"

	"nova/internal/geometry"
)

type pendingUpload struct {
	shader string
	record geometry.Record
}

// UploadQueue is a FIFO of records waiting for the render thread.
// Push may be called from any goroutine.
type UploadQueue struct {
	mu      sync.Mutex
	pending []pendingUpload
}

// NewUploadQueue creates an empty queue
func NewUploadQueue() *UploadQueue {
	return &UploadQueue{}
}

// Push enqueues rec for the named shader group
func (q *UploadQueue) Push(shader string, rec geometry.Record) {
	q.mu.Lock()
	q.pending = append(q.pending, pendingUpload{shader: shader, record: rec})
	q.mu.Unlock()
}

// Len returns the number of records waiting
func (q *UploadQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// DrainInto materialises every queued record into store, in push order, and
// returns how many were added. It must be called from the render thread.
// The lock is held only to take the batch, so producers are never blocked
// behind mesh creation; records pushed meanwhile wait for the next drain.
func (q *UploadQueue) DrainInto(store *Store) int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for i := range batch {
		store.materialize(batch[i].shader, &batch[i].record)
	}
	return len(batch)
}
