package proc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTryRun(t *testing.T) {
	p := New(1)
	assert.True(t, p.TryRun())
	assert.True(t, p.Is(FlagRunning))
	assert.False(t, p.Is(FlagRunnable))

	// Already running: a second dispatcher must lose.
	assert.False(t, p.TryRun())

	p.FinishRun()
	assert.True(t, p.Is(FlagRunnable))
	assert.False(t, p.Is(FlagRunning))
	assert.True(t, p.TryRun())
}

func TestTryRunSuspended(t *testing.T) {
	p := New(1)
	p.Suspend()
	assert.False(t, p.TryRun())

	p.Unsuspend()
	assert.True(t, p.TryRun())
}

func TestTryRunExclusive(t *testing.T) {
	// Many dispatchers race for the same descriptor; exactly one may win
	// each round.
	p := New(1)
	const dispatchers = 32
	for round := 0; round < 50; round++ {
		var wg sync.WaitGroup
		var winners int32
		var mu sync.Mutex
		for i := 0; i < dispatchers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if p.TryRun() {
					mu.Lock()
					winners++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.EqualValues(t, 1, winners)
		p.FinishRun()
	}
}

func TestTryQueueSingleSlot(t *testing.T) {
	p := New(1)
	assert.True(t, p.TryQueue())
	// The slot is exclusive until released.
	assert.False(t, p.TryQueue())

	p.ClearQueued()
	assert.True(t, p.TryQueue())

	// Dispatching converts the claim into Running and frees the slot bit,
	// but a Running process still cannot be queued.
	assert.True(t, p.TryRun())
	assert.False(t, p.Is(FlagInRunQueue))
	assert.False(t, p.TryQueue())

	// Ending the slice with a re-claim leaves no window for a concurrent
	// enqueue.
	p.FinishRunQueued()
	assert.True(t, p.Is(FlagRunnable))
	assert.True(t, p.Is(FlagInRunQueue))
	assert.False(t, p.TryQueue())
}

func TestExitingSticky(t *testing.T) {
	p := New(1)
	p.MarkExiting()
	assert.True(t, p.IsExiting())

	// Exiting survives the run transitions; only retirement clears it,
	// by dropping the descriptor.
	assert.True(t, p.TryRun())
	assert.True(t, p.IsExiting())
	p.FinishRun()
	assert.True(t, p.IsExiting())
}

func TestFlagString(t *testing.T) {
	p := New(1)
	assert.Equal(t, "runnable", p.Flags().String())
	p.MarkExiting()
	assert.Contains(t, p.Flags().String(), "exiting")
}
