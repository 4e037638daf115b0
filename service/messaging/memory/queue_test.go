package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// migration mirrors the payload the scheduler moves through the queue:
// a process identity plus the pool it is bound for.
type migration struct {
	ProcessID uint64
	Pool      string
}

func TestQueue(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[migration](config)
	ctx := context.Background()

	item := migration{ProcessID: 42, Pool: "dirty-cpu"}
	assert.NoError(t, queue.Publish(ctx, &item))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, message)
	assert.Equal(t, 0, queue.Size())

	payload := message.T()
	assert.EqualValues(t, 42, payload.ProcessID)
	assert.Equal(t, "dirty-cpu", payload.Pool)

	assert.NoError(t, message.Ack())
	time.Sleep(20 * time.Millisecond)

	// Acknowledging twice is a defect.
	assert.Error(t, message.Ack())
}

func TestQueueRetriesToDeadLetter(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 1
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[migration](config)
	ctx := context.Background()

	item := migration{ProcessID: 7, Pool: "dirty-io"}
	assert.NoError(t, queue.Publish(ctx, &item))

	// First delivery fails; the item is redelivered after the retry delay.
	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NoError(t, message.Nack(nil))
	time.Sleep(20 * time.Millisecond)

	message, err = queue.Consume(ctx)
	assert.NoError(t, err)
	assert.EqualValues(t, 7, message.T().ProcessID)

	// Second failure exceeds MaxRetries: dead-lettered, not redelivered.
	assert.NoError(t, message.Nack(nil))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, 1, queue.DLQSize())
}

func TestQueueConcurrency(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[migration](config)
	ctx := context.Background()

	const producers = 8
	const perProducer = 25

	var consumed sync.Map
	var wg sync.WaitGroup

	wg.Add(producers)
	for c := 0; c < producers; c++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				message, err := queue.Consume(ctx)
				if !assert.NoError(t, err) {
					return
				}
				consumed.Store(message.T().ProcessID, true)
				assert.NoError(t, message.Ack())
			}
		}()
	}

	for p := 0; p < producers; p++ {
		go func(p int) {
			for i := 0; i < perProducer; i++ {
				item := migration{ProcessID: uint64(p*perProducer + i), Pool: "dirty-cpu"}
				assert.NoError(t, queue.Publish(ctx, &item))
			}
		}(p)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumers did not drain the queue in time")
	}

	total := 0
	consumed.Range(func(key, value any) bool {
		total++
		return true
	})
	assert.Equal(t, producers*perProducer, total)
	assert.Equal(t, 0, queue.Size())
}

func TestQueueContextCancellation(t *testing.T) {
	queue := NewQueue[migration](DefaultConfig())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	item := migration{ProcessID: 1}
	assert.Error(t, queue.Publish(cancelled, &item))

	// Consume must unblock when the context expires.
	shortCtx, cancelShort := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelShort()
	_, err := queue.Consume(shortCtx)
	assert.Error(t, err)

	// The queue stays usable afterwards.
	ctx := context.Background()
	assert.NoError(t, queue.Publish(ctx, &item))
	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, message)
}
