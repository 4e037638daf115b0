package event

import (
	"context"

	"github.com/viant/sched/service/messaging"
)

// Publisher forwards lifecycle events to the underlying queue.
type Publisher struct {
	queue messaging.Queue[Event]
}

// NewPublisher creates a publisher over the supplied queue.
func NewPublisher(queue messaging.Queue[Event]) *Publisher {
	return &Publisher{queue: queue}
}

// Publish enqueues the event.
func (p *Publisher) Publish(ctx context.Context, event *Event) error {
	return p.queue.Publish(ctx, event)
}

// Consume retrieves and acknowledges a single event.
func (p *Publisher) Consume(ctx context.Context) (*Event, error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
