package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDequeueOnlyDueRequests(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	q := NewQueue()
	q.Enqueue(&RetryRequest{ID: "later", Action: "borrow", BookID: 1, RetryAt: now.Add(time.Minute)})
	q.Enqueue(&RetryRequest{ID: "due", Action: "return", BookID: 2, RetryAt: now})

	assert.Equal(t, 2, q.Size())

	req := q.Dequeue(now)
	require.NotNil(t, req)
	assert.Equal(t, "due", req.ID)
	assert.Equal(t, uint64(2), req.BookID)

	assert.Nil(t, q.Dequeue(now))
	assert.Equal(t, 1, q.Size())

	req = q.Dequeue(now.Add(time.Minute))
	require.NotNil(t, req)
	assert.Equal(t, "later", req.ID)
	assert.Equal(t, 0, q.Size())
}

func TestExhausted(t *testing.T) {
	req := &RetryRequest{MaxRetries: 2}
	assert.False(t, req.Exhausted())
	req.RetryCount = 2
	assert.True(t, req.Exhausted())
}
