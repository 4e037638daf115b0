package event

import (
	"time"

	"github.com/viant/sched/internal/clock"
	"github.com/viant/sched/internal/idgen"
	"github.com/viant/sched/runtime/proc"
)

// Kind classifies a process lifecycle event.
type Kind string

const (
	// KindSpawned is published when a process is created and enqueued.
	KindSpawned Kind = "spawned"
	// KindExited is published after the process is removed from the registry.
	KindExited Kind = "exited"
	// KindTrapped is published when a slice ends with a pending continuation.
	KindTrapped Kind = "trapped"
	// KindMigrated is published when a process moves between the normal and
	// dirty scheduler pools.
	KindMigrated Kind = "migrated"
)

// Event describes one process lifecycle transition.
type Event struct {
	ID        string        `json:"id"`
	ProcessID proc.ID       `json:"processID"`
	Kind      Kind          `json:"kind"`
	Scheduler string        `json:"scheduler,omitempty"`
	Priority  proc.Priority `json:"priority"`
	Target    string        `json:"target,omitempty"`
	Reds      int64         `json:"reds,omitempty"`
	Lifetime  time.Duration `json:"lifetime,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// New creates a lifecycle event with a fresh token and timestamp.
func New(kind Kind, id proc.ID) *Event {
	return &Event{
		ID:        idgen.New(),
		ProcessID: id,
		Kind:      kind,
		CreatedAt: clock.Now(),
	}
}

// WithScheduler records the scheduler the transition happened on.
func (e *Event) WithScheduler(name string) *Event {
	e.Scheduler = name
	return e
}

// WithPriority records the process priority.
func (e *Event) WithPriority(priority proc.Priority) *Event {
	e.Priority = priority
	return e
}

// WithTarget records the trap continuation target.
func (e *Event) WithTarget(target string) *Event {
	e.Target = target
	return e
}

// WithReds records the lifetime reductions at event time.
func (e *Event) WithReds(reds int64) *Event {
	e.Reds = reds
	return e
}

// WithLifetime records how long the process lived.
func (e *Event) WithLifetime(lifetime time.Duration) *Event {
	e.Lifetime = lifetime
	return e
}
