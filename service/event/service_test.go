package event

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/sched/runtime/proc"
)

func TestPublishConsume(t *testing.T) {
	service := NewService()
	ctx := context.Background()

	published := newTestEvent(t)
	service.Publish(ctx, published)

	consumed, err := service.Publisher().Consume(ctx)
	assert.NoError(t, err)
	if !assert.NotNil(t, consumed) {
		return
	}
	assert.Equal(t, published.ID, consumed.ID)
	assert.Equal(t, KindTrapped, consumed.Kind)
	assert.EqualValues(t, 42, consumed.ProcessID)
	assert.Equal(t, "normal-1", consumed.Scheduler)
	assert.Equal(t, proc.High, consumed.Priority)
	assert.Equal(t, "lists:reverse/2", consumed.Target)
	assert.False(t, consumed.CreatedAt.IsZero())
	assert.NotEmpty(t, consumed.ID)
}

// newTestEvent builds a fully populated test event.
func newTestEvent(t *testing.T) *Event {
	t.Helper()
	return New(KindTrapped, 42).
		WithScheduler("normal-1").
		WithPriority(proc.High).
		WithTarget("lists:reverse/2").
		WithReds(1000)
}

func TestNilServicePublish(t *testing.T) {
	var service *Service
	// Must not panic.
	service.Publish(context.Background(), New(KindSpawned, 1))
}

func TestListener(t *testing.T) {
	service := NewService()
	ctx := context.Background()

	var seen atomic.Int32
	service.SetListener(func(e *Event) {
		seen.Add(1)
	})
	defer service.Close()

	for i := 0; i < 3; i++ {
		service.Publish(ctx, New(KindSpawned, proc.ID(i+1)))
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && seen.Load() < 3 {
		time.Sleep(time.Millisecond)
	}
	assert.EqualValues(t, 3, seen.Load())
}
