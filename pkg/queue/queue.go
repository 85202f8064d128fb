package queue

import (
	"sync"
	"time"
)

// RetryRequest is a catalog mutation waiting to be replayed against the
// remote service.
type RetryRequest struct {
	ID         string
	Action     string
	BookID     uint64
	RetryAt    time.Time
	RetryCount int
	MaxRetries int
}

// Exhausted reports whether the request has used up its retries.
func (r *RetryRequest) Exhausted() bool {
	return r.RetryCount >= r.MaxRetries
}

type Queue struct {
	items []*RetryRequest
	mu    sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{
		items: make([]*RetryRequest, 0),
	}
}

func (q *Queue) Enqueue(req *RetryRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, req)
}

// Dequeue removes and returns the first request due at now, or nil.
func (q *Queue) Dequeue(now time.Time) *RetryRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, req := range q.items {
		if !req.RetryAt.After(now) {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return req
		}
	}
	return nil
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
