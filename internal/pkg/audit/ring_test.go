package audit

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBuffer_RecordAndRecent(t *testing.T) {
	rb := NewRingBuffer(10)

	rb.Record(EventCancellationAttempt, SeverityLow, map[string]interface{}{"transaction_id": "txn_1"})
	rb.Record(EventCancellationSuccess, SeverityMedium, map[string]interface{}{"transaction_id": "txn_1"})

	assert.Equal(t, 2, rb.Len())

	events := rb.Recent(10)
	require.Len(t, events, 2)

	// Newest first
	assert.Equal(t, EventCancellationSuccess, events[0].Type)
	assert.Equal(t, EventCancellationAttempt, events[1].Type)
	assert.Equal(t, "txn_1", events[0].Payload["transaction_id"])
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestRingBuffer_OverwritesOldestWhenFull(t *testing.T) {
	rb := NewRingBuffer(3)

	for i := 0; i < 5; i++ {
		rb.Record(EventCancellationAttempt, SeverityLow, map[string]interface{}{"seq": i})
	}

	assert.Equal(t, 3, rb.Len())

	events := rb.Recent(3)
	require.Len(t, events, 3)
	assert.Equal(t, 4, events[0].Payload["seq"])
	assert.Equal(t, 3, events[1].Payload["seq"])
	assert.Equal(t, 2, events[2].Payload["seq"])
}

func TestRingBuffer_RecentLimits(t *testing.T) {
	rb := NewRingBuffer(10)
	for i := 0; i < 4; i++ {
		rb.Record(EventCancellationAttempt, SeverityLow, nil)
	}

	assert.Len(t, rb.Recent(2), 2)
	assert.Len(t, rb.Recent(0), 4)
	assert.Len(t, rb.Recent(100), 4)
}

func TestRingBuffer_DefaultCapacity(t *testing.T) {
	rb := NewRingBuffer(0)
	rb.Record(EventCancellationAttempt, SeverityLow, nil)
	assert.Equal(t, 1, rb.Len())
}

func TestRingBuffer_ConcurrentRecord(t *testing.T) {
	rb := NewRingBuffer(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rb.Record(EventCancellationAttempt, SeverityLow, map[string]interface{}{
					"worker": fmt.Sprintf("w%d", n),
				})
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, rb.Len())
}
