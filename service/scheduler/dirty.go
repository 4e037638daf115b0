package scheduler

import (
	"context"
	"errors"
	"log"

	"github.com/viant/sched/runtime/proc"
	"github.com/viant/sched/service/event"
	"github.com/viant/sched/service/messaging"
)

// startDirtyWorker launches one dirty scheduler consuming migrated work
// from the given queue. Dirty slices run with an effectively unbounded
// budget; on completion the process migrates back to a normal queue.
func (s *Service) startDirtyWorker(ctx context.Context, name string, queue messaging.Queue[work]) {
	workerCtx, cancel := context.WithCancel(ctx)
	s.hookMux.Lock()
	s.dirtyCancels = append(s.dirtyCancels, cancel)
	s.hookMux.Unlock()

	s.workerWg.Add(1)
	go func() {
		defer s.workerWg.Done()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-s.shutdownCh:
				return
			default:
			}
			message, err := queue.Consume(workerCtx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				log.Printf("dirty %s: consume failed: %v", name, err)
				continue
			}
			if err := s.runDirty(workerCtx, name, *message.T()); err != nil {
				log.Printf("dirty %s: %v", name, err)
			}
			if err := message.Ack(); err != nil {
				log.Printf("dirty %s: ack failed: %v", name, err)
			}
		}
	}()
}

func (s *Service) runDirty(ctx context.Context, name string, item work) error {
	element, ok := s.registry.Lookup(item.ID)
	if !ok {
		return nil
	}
	if !element.TryRun() {
		// Raced with an exit or a suspend while in transit; drop the item
		// and release the slot so the owner can reschedule it.
		if !element.Is(proc.FlagRunning) {
			element.ClearQueued()
		}
		return nil
	}
	element.SetFcalls(s.config.DirtyBudget)

	outcome, err := s.executor.Execute(ctx, element)
	if err != nil {
		element.MarkExiting()
	}
	if element.IsExiting() || outcome == OutcomeExited {
		s.retire(ctx, name, element)
		return err
	}

	if resume := element.PendingResume(); resume != nil && resume.Target.Sched.Dirty() && dirtyAllowed(ctx, resume.Target) {
		// Trapped onto the other dirty class; forward without bouncing
		// through a normal queue.
		element.FinishRunQueued()
		return s.migrate(ctx, name, element, resume.Target.Sched)
	}

	// Dirty slice done; hand back to a normal scheduler.
	element.FinishRunQueued()
	s.events.Publish(ctx, event.New(event.KindMigrated, item.ID).
		WithScheduler(name).
		WithPriority(element.Priority()).
		WithTarget(proc.SchedNormal.String()))
	return s.enqueueClaimed(item.ID, element.Priority())
}
