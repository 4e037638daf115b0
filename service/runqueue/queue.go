// Package runqueue implements the per-scheduler, priority-stratified
// collection of runnable process identities. Each scheduler loop owns
// exactly one Set; only identities are stored, never descriptors, so
// migration between schedulers is a plain dequeue/enqueue.
package runqueue

import (
	"errors"
	"sync"

	"github.com/viant/sched/runtime/proc"
)

var (
	// ErrAlreadyQueued indicates an identity was enqueued twice; a process
	// must sit in at most one run-queue slot at any instant.
	ErrAlreadyQueued = errors.New("runqueue: identity already enqueued")

	// ErrRunning indicates an attempt to enqueue a process that is
	// currently executing on a scheduler.
	ErrRunning = errors.New("runqueue: process is running")
)

// DefaultLowSkipLimit is the number of consecutive dequeue rounds a Low
// priority head may be passed over before it is served regardless of
// higher-priority arrivals.
const DefaultLowSkipLimit = 8

// Resolver maps an identity to its descriptor, typically the registry
// lookup. A nil result means the process terminated already.
type Resolver func(id proc.ID) (*proc.Proc, bool)

// Info carries per-priority accounting for diagnostics.
type Info struct {
	Len    int
	MaxLen int
	Reds   int64
}

// Set is one scheduler's run queue: a FIFO sub-queue per priority plus a
// membership guard preventing double enqueueing.
type Set struct {
	mux     sync.Mutex
	queues  [proc.PriorityLevels][]proc.ID
	member  map[proc.ID]struct{}
	info    [proc.PriorityLevels]Info
	resolve Resolver

	lowSkipLimit uint32
	notify       chan struct{}
}

// Option customises a Set.
type Option func(s *Set)

// WithLowSkipLimit overrides the anti-starvation bound.
func WithLowSkipLimit(limit uint32) Option {
	return func(s *Set) {
		if limit > 0 {
			s.lowSkipLimit = limit
		}
	}
}

// New creates an empty run queue backed by the supplied resolver.
func New(resolve Resolver, options ...Option) *Set {
	s := &Set{
		member:       make(map[proc.ID]struct{}),
		resolve:      resolve,
		lowSkipLimit: DefaultLowSkipLimit,
		notify:       make(chan struct{}, 1),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Notify returns the channel signalled whenever an identity is enqueued;
// the owning scheduler loop waits on it instead of spinning.
func (s *Set) Notify() <-chan struct{} {
	return s.notify
}

// Enqueue claims the descriptor's pending-work slot and appends the
// identity to the tail of its priority sub-queue. The slot claim is
// global, so an identity queued on another scheduler's Set (or in flight
// to a dirty pool) is rejected here too.
func (s *Set) Enqueue(id proc.ID, priority proc.Priority) error {
	if element, ok := s.resolve(id); ok && !element.TryQueue() {
		if element.Is(proc.FlagRunning) {
			return ErrRunning
		}
		return ErrAlreadyQueued
	}
	return s.append(id, priority)
}

// EnqueueClaimed appends an identity whose pending-work slot the caller
// already holds, typically via FinishRunQueued at the end of a slice.
func (s *Set) EnqueueClaimed(id proc.ID, priority proc.Priority) error {
	return s.append(id, priority)
}

func (s *Set) append(id proc.ID, priority proc.Priority) error {
	s.mux.Lock()
	if _, queued := s.member[id]; queued {
		s.mux.Unlock()
		return ErrAlreadyQueued
	}
	s.member[id] = struct{}{}
	s.queues[priority] = append(s.queues[priority], id)
	s.info[priority].Len++
	if s.info[priority].Len > s.info[priority].MaxLen {
		s.info[priority].MaxLen = s.info[priority].Len
	}
	s.mux.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue serves the first non-empty sub-queue scanning Max downward, with
// one exception: a Low head whose consecutive-skip count reached the limit
// is served first, bounding worst-case latency for Low processes. The
// dequeued identity keeps its pending-work slot claimed; the dispatcher
// releases it through TryRun or ClearQueued.
func (s *Set) Dequeue() (proc.ID, proc.Priority, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.lowHeadStarved() {
		return s.pop(proc.Low)
	}
	for priority := proc.Max; priority <= proc.Low; priority++ {
		if len(s.queues[priority]) == 0 {
			continue
		}
		if priority != proc.Low && len(s.queues[proc.Low]) > 0 {
			s.bumpLowHead()
		}
		return s.pop(priority)
	}
	return 0, proc.Normal, false
}

// lowHeadStarved reports whether the Low head must be forced ahead of
// non-empty higher-priority sub-queues.
func (s *Set) lowHeadStarved() bool {
	if len(s.queues[proc.Low]) == 0 {
		return false
	}
	higher := false
	for priority := proc.Max; priority < proc.Low; priority++ {
		if len(s.queues[priority]) > 0 {
			higher = true
			break
		}
	}
	if !higher {
		return false
	}
	element, ok := s.resolve(s.queues[proc.Low][0])
	return ok && element.ScheduleCount() >= s.lowSkipLimit
}

func (s *Set) bumpLowHead() {
	if element, ok := s.resolve(s.queues[proc.Low][0]); ok {
		element.BumpScheduleCount()
	}
}

func (s *Set) pop(priority proc.Priority) (proc.ID, proc.Priority, bool) {
	queue := s.queues[priority]
	id := queue[0]
	s.queues[priority] = queue[1:]
	delete(s.member, id)
	s.info[priority].Len--
	return id, priority, true
}

// AddReds charges reductions consumed by a slice against the priority's
// accounting.
func (s *Set) AddReds(priority proc.Priority, reds int64) {
	s.mux.Lock()
	s.info[priority].Reds += reds
	s.mux.Unlock()
}

// InfoAt returns a copy of the accounting for one priority.
func (s *Set) InfoAt(priority proc.Priority) Info {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.info[priority]
}

// Len returns the total number of queued identities.
func (s *Set) Len() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	total := 0
	for priority := range s.queues {
		total += len(s.queues[priority])
	}
	return total
}

// Contains reports whether the identity is currently enqueued.
func (s *Set) Contains(id proc.ID) bool {
	s.mux.Lock()
	_, ok := s.member[id]
	s.mux.Unlock()
	return ok
}
