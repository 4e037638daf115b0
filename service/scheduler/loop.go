package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/viant/sched/policy"
	"github.com/viant/sched/progress"
	"github.com/viant/sched/runtime/proc"
	"github.com/viant/sched/service/event"
	"github.com/viant/sched/service/runqueue"
	"github.com/viant/sched/tracing"
)

// dirtyAllowed consults the optional admission policy carried by ctx. A
// denied target keeps running on the normal scheduler instead, which is
// safe, only slower.
func dirtyAllowed(ctx context.Context, target proc.Target) bool {
	return policy.FromContext(ctx).IsAllowed(target.Module + ":" + target.Function)
}

// idlePoll bounds how long an idle loop sleeps between queue checks when
// no enqueue notification arrives.
const idlePoll = 10 * time.Millisecond

// loop is one normal scheduler: a goroutine owning one run queue.
type loop struct {
	index   int
	name    string
	service *Service
	queue   *runqueue.Set

	ctx    context.Context
	cancel context.CancelFunc
}

func newLoop(index int, service *Service, queue *runqueue.Set) *loop {
	return &loop{
		index:   index,
		name:    fmt.Sprintf("normal-%d", index),
		service: service,
		queue:   queue,
	}
}

// run is the steady-state cycle: dequeue, dispatch, requeue or retire. An
// invariant violation aborts this loop; other schedulers keep running.
func (l *loop) run() {
	defer l.service.workerWg.Done()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-l.service.shutdownCh:
			return
		default:
		}

		id, priority, ok := l.queue.Dequeue()
		if !ok {
			select {
			case <-l.ctx.Done():
				return
			case <-l.service.shutdownCh:
				return
			case <-l.queue.Notify():
			case <-time.After(idlePoll):
			}
			continue
		}

		if err := l.dispatch(l.ctx, id, priority); err != nil {
			if errors.Is(err, ErrInvariant) {
				log.Printf("scheduler %s: %v; aborting loop", l.name, err)
				return
			}
			log.Printf("scheduler %s: dispatch %d failed: %v", l.name, id, err)
		}
	}
}

// dispatch runs one slice of the dequeued identity and decides its fate
// from the post-execution descriptor state.
func (l *loop) dispatch(ctx context.Context, id proc.ID, priority proc.Priority) error {
	s := l.service
	element, ok := s.registry.Lookup(id)
	if !ok {
		// Already terminated; a benign race, not an error.
		return nil
	}
	if !element.TryRun() {
		if element.Is(proc.FlagRunning) {
			// The same process is referenced from two run queues.
			return fmt.Errorf("%w: process %d already running", ErrInvariant, id)
		}
		// Suspended or exiting-and-collected meanwhile; release the slot
		// so a resume can requeue it.
		element.ClearQueued()
		return nil
	}
	element.ResetScheduleCount()
	element.SetFcalls(s.config.Quota)

	spanCtx, span := tracing.StartSpan(ctx, "scheduler.slice", "INTERNAL")
	span.WithAttributes(map[string]string{
		"process.id":       fmt.Sprintf("%d", id),
		"process.priority": priority.String(),
		"scheduler":        l.name,
	})
	outcome, err := s.executor.Execute(spanCtx, element)
	tracing.EndSpan(span, err)
	consumed := int64(s.config.Quota - element.Fcalls())
	l.queue.AddReds(priority, consumed)
	progress.UpdateCtx(ctx, progress.Delta{Slices: 1, Reductions: consumed})

	if err != nil {
		// An executor failure terminates the process; the descriptor may be
		// in an arbitrary state, so unwinding is the only safe option.
		element.MarkExiting()
	}

	if element.IsExiting() || outcome == OutcomeExited {
		s.retire(ctx, l.name, element)
		return err
	}

	if resume := element.PendingResume(); resume != nil {
		element.FinishRunQueued()
		progress.UpdateCtx(ctx, progress.Delta{Trapped: 1})
		s.events.Publish(ctx, event.New(event.KindTrapped, id).
			WithScheduler(l.name).
			WithPriority(priority).
			WithTarget(resume.Target.String()))
		if resume.Target.Sched.Dirty() && dirtyAllowed(ctx, resume.Target) {
			return s.migrate(ctx, l.name, element, resume.Target.Sched)
		}
		return l.queue.EnqueueClaimed(id, priority)
	}

	// Budget exhausted or voluntary yield.
	element.FinishRunQueued()
	return l.queue.EnqueueClaimed(id, priority)
}
