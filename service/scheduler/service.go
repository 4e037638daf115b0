// Package scheduler drives process execution: a pool of normal scheduler
// loops, one run queue each, plus dirty CPU and dirty IO pools for work
// that cannot honor the reduction quota. The byte-code interpreter is an
// external collaborator supplied as the Executor callback.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/viant/sched/internal/clock"
	"github.com/viant/sched/progress"
	"github.com/viant/sched/runtime/proc"
	"github.com/viant/sched/service/event"
	"github.com/viant/sched/service/messaging"
	"github.com/viant/sched/service/messaging/memory"
	"github.com/viant/sched/service/registry"
	"github.com/viant/sched/service/runqueue"
)

// Outcome is what the executor reports back after running a slice.
type Outcome int

const (
	// OutcomeContinue means the slice ended by budget exhaustion or a
	// voluntary yield; the process is requeued.
	OutcomeContinue Outcome = iota
	// OutcomeTrapped means a built-in operation recorded a continuation;
	// the process is requeued or migrated according to the target's
	// scheduler class.
	OutcomeTrapped
	// OutcomeExited means the process terminated and must be retired.
	OutcomeExited
)

// Executor runs one slice of a process. Implementations communicate status
// exclusively through the descriptor's atomic fields and resume slot,
// never via side channels.
type Executor interface {
	Execute(ctx context.Context, p *proc.Proc) (Outcome, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, p *proc.Proc) (Outcome, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, p *proc.Proc) (Outcome, error) {
	return f(ctx, p)
}

// ExitHook observes a process after its final slice, before it is removed
// from the registry.
type ExitHook func(ctx context.Context, p *proc.Proc)

// Config represents scheduler service configuration.
type Config struct {
	// Schedulers is the number of normal scheduler loops constructed.
	Schedulers int `json:"schedulers" yaml:"schedulers"`
	// SchedulersOnline is how many of them actually run (<= Schedulers).
	SchedulersOnline int `json:"schedulersOnline" yaml:"schedulersOnline"`
	// DirtyCPU and DirtyIO size the dirty worker pools.
	DirtyCPU int `json:"dirtyCPU" yaml:"dirtyCPU"`
	DirtyIO  int `json:"dirtyIO" yaml:"dirtyIO"`
	// Quota is the per-slice reduction budget on normal schedulers.
	Quota int32 `json:"quota" yaml:"quota"`
	// DirtyBudget is the budget assigned for a dirty slice; dirty execution
	// is expected to run to its own completion rather than being preempted.
	DirtyBudget int32 `json:"dirtyBudget" yaml:"dirtyBudget"`
	// LowSkipLimit bounds consecutive dequeue rounds a Low priority head
	// may be passed over.
	LowSkipLimit uint32 `json:"lowSkipLimit" yaml:"lowSkipLimit"`
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		Schedulers:       4,
		SchedulersOnline: 4,
		DirtyCPU:         2,
		DirtyIO:          2,
		Quota:            4000,
		DirtyBudget:      1 << 30,
		LowSkipLimit:     runqueue.DefaultLowSkipLimit,
	}
}

// Validate reports configuration errors.
func (c *Config) Validate() error {
	if c.Schedulers < 1 {
		return fmt.Errorf("%w: schedulers must be at least 1", ErrStartup)
	}
	if c.SchedulersOnline < 1 {
		return fmt.Errorf("%w: schedulersOnline must be at least 1", ErrStartup)
	}
	if c.SchedulersOnline > c.Schedulers {
		return fmt.Errorf("%w: schedulersOnline (%d) cannot exceed schedulers (%d)", ErrStartup, c.SchedulersOnline, c.Schedulers)
	}
	if c.DirtyCPU < 0 || c.DirtyIO < 0 {
		return fmt.Errorf("%w: dirty pool sizes cannot be negative", ErrStartup)
	}
	if c.Quota <= 0 {
		return fmt.Errorf("%w: quota must be positive", ErrStartup)
	}
	return nil
}

// work is a dirty-pool migration item: identity plus the scheduler class
// the pending trap target requires. Descriptors are never copied; the
// registry stays the single owner.
type work struct {
	ID    proc.ID
	Sched proc.SchedType
}

// Service owns the scheduler pools.
type Service struct {
	config   Config
	registry *registry.Service
	executor Executor
	events   *event.Service

	loops        []*loop
	dirtyCPU     messaging.Queue[work]
	dirtyIO      messaging.Queue[work]
	nextLoop     atomic.Uint32
	started      atomic.Bool
	shutdownCh   chan struct{}
	workerWg     sync.WaitGroup
	dirtyCancels []context.CancelFunc

	hookMux   sync.RWMutex
	exitHooks []ExitHook
}

// Option customises the scheduler service.
type Option func(s *Service)

// WithConfig replaces the default configuration.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithRegistry sets the process registry.
func WithRegistry(r *registry.Service) Option {
	return func(s *Service) {
		s.registry = r
	}
}

// WithExecutor sets the executor callback.
func WithExecutor(executor Executor) Option {
	return func(s *Service) {
		s.executor = executor
	}
}

// WithEventService attaches a lifecycle event publisher.
func WithEventService(events *event.Service) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithExitHook registers a hook run before a process is removed from the
// registry.
func WithExitHook(hook ExitHook) Option {
	return func(s *Service) {
		s.exitHooks = append(s.exitHooks, hook)
	}
}

// New creates a scheduler service.
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		shutdownCh: make(chan struct{}),
	}
	for _, option := range options {
		option(s)
	}
	if s.registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if s.executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.config
}

// RegisterExitHook adds a hook run before registry removal.
func (s *Service) RegisterExitHook(hook ExitHook) {
	s.hookMux.Lock()
	s.exitHooks = append(s.exitHooks, hook)
	s.hookMux.Unlock()
}

// Start constructs the run queues and launches the normal loops and dirty
// pools. Loops run until ctx is cancelled or Shutdown is called.
func (s *Service) Start(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: already started", ErrStartup)
	}

	resolve := func(id proc.ID) (*proc.Proc, bool) {
		return s.registry.Lookup(id)
	}
	s.loops = make([]*loop, s.config.Schedulers)
	for i := range s.loops {
		s.loops[i] = newLoop(i+1, s, runqueue.New(resolve, runqueue.WithLowSkipLimit(s.config.LowSkipLimit)))
	}
	s.dirtyCPU = memory.NewQueue[work](memory.DefaultConfig())
	s.dirtyIO = memory.NewQueue[work](memory.DefaultConfig())

	for i := 0; i < s.config.SchedulersOnline; i++ {
		l := s.loops[i]
		loopCtx, cancel := context.WithCancel(ctx)
		l.ctx, l.cancel = loopCtx, cancel
		s.workerWg.Add(1)
		go l.run()
	}
	for i := 0; i < s.config.DirtyCPU; i++ {
		s.startDirtyWorker(ctx, fmt.Sprintf("dirty-cpu-%d", i+1), s.dirtyCPU)
	}
	for i := 0; i < s.config.DirtyIO; i++ {
		s.startDirtyWorker(ctx, fmt.Sprintf("dirty-io-%d", i+1), s.dirtyIO)
	}
	return nil
}

// Shutdown stops every loop and waits for them to drain.
func (s *Service) Shutdown() {
	if !s.started.Load() {
		return
	}
	close(s.shutdownCh)
	for _, l := range s.loops {
		if l.cancel != nil {
			l.cancel()
		}
	}
	s.hookMux.Lock()
	cancels := s.dirtyCancels
	s.hookMux.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
	s.workerWg.Wait()
}

// Enqueue places a runnable identity on one of the online normal run
// queues, round-robin. It is the single entry point for spawns, resumes
// and dirty-pool migrations back to normal scheduling.
func (s *Service) Enqueue(id proc.ID) error {
	if !s.started.Load() {
		return ErrNotStarted
	}
	element, ok := s.registry.Lookup(id)
	if !ok {
		return nil
	}
	index := int(s.nextLoop.Add(1)-1) % s.config.SchedulersOnline
	return s.loops[index].queue.Enqueue(id, element.Priority())
}

// enqueueClaimed routes an identity whose pending-work slot is already
// held, round-robin like Enqueue.
func (s *Service) enqueueClaimed(id proc.ID, priority proc.Priority) error {
	index := int(s.nextLoop.Add(1)-1) % s.config.SchedulersOnline
	return s.loops[index].queue.EnqueueClaimed(id, priority)
}

// QueueLen returns the total number of queued identities across the
// normal schedulers.
func (s *Service) QueueLen() int {
	total := 0
	for _, l := range s.loops {
		if l != nil {
			total += l.queue.Len()
		}
	}
	return total
}

func (s *Service) runExitHooks(ctx context.Context, element *proc.Proc) {
	s.hookMux.RLock()
	hooks := s.exitHooks
	s.hookMux.RUnlock()
	for _, hook := range hooks {
		hook(ctx, element)
	}
}

// retire finalises an exiting process: exit hooks first, then removal from
// the registry, which recycles the identity.
func (s *Service) retire(ctx context.Context, schedulerName string, element *proc.Proc) {
	s.runExitHooks(ctx, element)
	_, _ = s.registry.Remove(element.ID())
	progress.UpdateCtx(ctx, progress.Delta{Exited: 1})
	s.events.Publish(ctx, event.New(event.KindExited, element.ID()).
		WithScheduler(schedulerName).
		WithPriority(element.Priority()).
		WithReds(element.Reds()).
		WithLifetime(clock.Since(element.CreatedAt())))
}

// migrate hands an identity to the dirty pool required by its pending
// continuation target. The caller holds the pending-work slot; it travels
// with the item and is released by the dirty worker's dispatch.
func (s *Service) migrate(ctx context.Context, schedulerName string, element *proc.Proc, sched proc.SchedType) error {
	queue := s.dirtyCPU
	if sched == proc.SchedDirtyIO {
		queue = s.dirtyIO
	}
	item := work{ID: element.ID(), Sched: sched}
	if err := queue.Publish(ctx, &item); err != nil {
		element.ClearQueued()
		return err
	}
	progress.UpdateCtx(ctx, progress.Delta{Migrated: 1})
	s.events.Publish(ctx, event.New(event.KindMigrated, element.ID()).
		WithScheduler(schedulerName).
		WithPriority(element.Priority()).
		WithTarget(sched.String()))
	return nil
}
