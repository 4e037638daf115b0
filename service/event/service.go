// Package event publishes process lifecycle transitions (spawn, trap,
// migrate, exit) to an in-process queue so that monitoring code can
// observe the scheduler without touching descriptor internals.
package event

import (
	"context"

	"github.com/viant/sched/service/messaging"
	"github.com/viant/sched/service/messaging/memory"
)

// Service owns the lifecycle event queue, its publisher and an optional
// listener.
type Service struct {
	queue     messaging.Queue[Event]
	publisher *Publisher
	listener  *Listener
}

// Option customises the event service.
type Option func(s *Service)

// WithQueue overrides the backing queue.
func WithQueue(queue messaging.Queue[Event]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// NewService creates an event service backed by an in-memory queue
// unless overridden.
func NewService(options ...Option) *Service {
	s := &Service{}
	for _, option := range options {
		option(s)
	}
	if s.queue == nil {
		s.queue = memory.NewQueue[Event](memory.DefaultConfig())
	}
	s.publisher = NewPublisher(s.queue)
	return s
}

// Publisher returns the event publisher.
func (s *Service) Publisher() *Publisher {
	return s.publisher
}

// Publish forwards an event; a nil service is a no-op so callers do not
// need to guard every publication site.
func (s *Service) Publish(ctx context.Context, event *Event) {
	if s == nil || event == nil {
		return
	}
	_ = s.publisher.Publish(ctx, event)
}

// SetListener replaces the handler draining the queue.
func (s *Service) SetListener(handler func(*Event)) {
	if s.listener != nil {
		s.listener.Stop()
	}
	s.listener = NewListener(s.publisher, handler)
	s.listener.Start()
}

// Close stops the listener.
func (s *Service) Close() {
	if s.listener != nil {
		s.listener.Stop()
	}
}
