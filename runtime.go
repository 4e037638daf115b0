package sched

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/sched/progress"
	"github.com/viant/sched/runtime/proc"
	"github.com/viant/sched/service/event"
	"github.com/viant/sched/service/registry"
	"github.com/viant/sched/service/runqueue"
	"github.com/viant/sched/tracing"
)

// Runtime is the process-control façade: spawning, suspension, exit
// signalling and lifecycle queries, all addressed by identity.
type Runtime struct {
	service *Service
}

// Start launches the scheduler pools. Spawn requires a started runtime;
// processes registered earlier via SpawnAt are dispatched once enqueued.
func (r *Runtime) Start(ctx context.Context) error {
	return r.service.scheduler.Start(ctx)
}

// Shutdown stops the scheduler pools and the event listener. Registered
// processes remain in the table; a subsequent runtime may adopt them.
func (r *Runtime) Shutdown() {
	r.service.scheduler.Shutdown()
	r.service.events.Close()
}

// Spawn registers a new process and enqueues it for execution. The
// returned identity is unique among live processes; identities of
// terminated processes are recycled oldest-first.
func (r *Runtime) Spawn(ctx context.Context, options ...proc.Option) (proc.ID, error) {
	ctx, span := tracing.StartSpan(ctx, "runtime.spawn", "INTERNAL")
	id, element, err := r.service.registry.NewElement(func(id proc.ID) *proc.Proc {
		return proc.New(id, options...)
	})
	tracing.EndSpan(span, err)
	if err != nil {
		return 0, err
	}
	progress.UpdateCtx(ctx, progress.Delta{Spawned: 1})
	r.service.events.Publish(ctx, event.New(event.KindSpawned, id).
		WithPriority(element.Priority()))
	if err = r.service.scheduler.Enqueue(id); err != nil {
		_, _ = r.service.registry.Remove(id)
		return 0, err
	}
	return id, nil
}

// SpawnAt registers a process under a caller-chosen identity, for
// bootstrap processes that must live at well-known slots. It does not
// enqueue; call Enqueue once the process is ready to run.
func (r *Runtime) SpawnAt(ctx context.Context, id proc.ID, options ...proc.Option) (*proc.Proc, error) {
	element := proc.New(id, options...)
	_, inserted, err := r.service.registry.InsertIfAbsent(id, element)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, fmt.Errorf("%w: %d already registered", registry.ErrInvalidID, id)
	}
	r.service.events.Publish(ctx, event.New(event.KindSpawned, id).
		WithPriority(element.Priority()))
	return element, nil
}

// Enqueue schedules a registered process for execution.
func (r *Runtime) Enqueue(id proc.ID) error {
	return r.service.scheduler.Enqueue(id)
}

// Lookup returns the descriptor registered under id.
func (r *Runtime) Lookup(id proc.ID) (*proc.Proc, bool) {
	return r.service.registry.Lookup(id)
}

// Suspend marks the process so schedulers pass it over. A currently
// running slice finishes; the process is simply not dispatched again
// until Resume.
func (r *Runtime) Suspend(id proc.ID) error {
	element, ok := r.service.registry.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", registry.ErrInvalidID, id)
	}
	element.Suspend()
	return nil
}

// Resume clears the suspension and puts the process back on a run queue.
func (r *Runtime) Resume(id proc.ID) error {
	element, ok := r.service.registry.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", registry.ErrInvalidID, id)
	}
	element.Unsuspend()
	return ignoreScheduled(r.service.scheduler.Enqueue(id))
}

// Kill marks the process as exiting. The next dispatched slice retires it:
// exit hooks run, the identity is recycled and an exit event is published.
// A process that is not currently queued is enqueued so the exit is
// collected promptly.
func (r *Runtime) Kill(id proc.ID) error {
	element, ok := r.service.registry.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", registry.ErrInvalidID, id)
	}
	element.MarkExiting()
	element.Unsuspend()
	return ignoreScheduled(r.service.scheduler.Enqueue(id))
}

// ignoreScheduled drops enqueue failures that mean the process is already
// on its way through a scheduler: queued, or mid-slice. In both cases the
// owning loop observes the updated flags at the next transition.
func ignoreScheduled(err error) error {
	if errors.Is(err, runqueue.ErrAlreadyQueued) || errors.Is(err, runqueue.ErrRunning) {
		return nil
	}
	return err
}

// ProcessCount returns the number of live processes.
func (r *Runtime) ProcessCount() int {
	return r.service.registry.Size()
}

// WaitExit polls until the identity leaves the registry or the timeout
// expires. It is a convenience for tests and shutdown paths; production
// code should subscribe to exit events instead.
func (r *Runtime) WaitExit(ctx context.Context, id proc.ID, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if _, ok := r.service.registry.Lookup(id); !ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("process %d did not exit within %v", id, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}
