package event

import (
	"context"
	"errors"
	"log"
)

// Listener drains the event queue on a background goroutine and hands each
// event to the registered handler.
type Listener struct {
	publisher *Publisher
	handler   func(*Event)
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewListener creates a stopped listener; call Start to begin draining.
func NewListener(publisher *Publisher, handler func(*Event)) *Listener {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Stop terminates the background goroutine.
func (l *Listener) Stop() {
	l.cancel()
}

// Start begins consuming events.
func (l *Listener) Start() {
	go func() {
		for {
			event, err := l.publisher.Consume(l.ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				log.Printf("event listener: consume failed: %v", err)
				continue
			}
			if event != nil {
				l.handler(event)
			}
		}
	}()
}
