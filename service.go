package sched

import (
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/sched/runtime/trap"
	"github.com/viant/sched/service/event"
	"github.com/viant/sched/service/meta"
	"github.com/viant/sched/service/registry"
	"github.com/viant/sched/service/scheduler"
)

// Service is the high-level façade wiring the process registry, the
// scheduler pools, the trap export table and the lifecycle event bus.
type Service struct {
	config        *Config
	runtime       *Runtime
	registry      *registry.Service
	scheduler     *scheduler.Service
	executor      scheduler.Executor
	events        *event.Service
	exports       *trap.Exports
	exitHooks     []scheduler.ExitHook
	metaService   *meta.Service
	metaBaseURL   string
	metaFsOptions []storage.Option
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.executor == nil {
		return fmt.Errorf("executor is required")
	}
	schedulerOptions := []scheduler.Option{
		scheduler.WithConfig(s.config.Scheduler),
		scheduler.WithRegistry(s.registry),
		scheduler.WithExecutor(s.executor),
		scheduler.WithEventService(s.events),
	}
	for _, hook := range s.exitHooks {
		schedulerOptions = append(schedulerOptions, scheduler.WithExitHook(hook))
	}
	var err error
	if s.scheduler, err = scheduler.New(schedulerOptions...); err != nil {
		return err
	}
	s.runtime = &Runtime{service: s}
	return nil
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL, s.metaFsOptions...)
	}
	if s.registry == nil {
		s.registry = registry.New(registry.WithMaxSize(s.config.Registry.MaxSize))
	}
	if s.events == nil {
		s.events = event.NewService()
	}
	if s.exports == nil {
		s.exports = trap.NewExports()
	}
}

// Runtime returns the runtime façade used to spawn and control processes.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Registry returns the process registry.
func (s *Service) Registry() *registry.Service {
	return s.registry
}

// Scheduler returns the scheduler service.
func (s *Service) Scheduler() *scheduler.Service {
	return s.scheduler
}

// Events returns the lifecycle event service.
func (s *Service) Events() *event.Service {
	return s.events
}

// Exports returns the trap export table.
func (s *Service) Exports() *trap.Exports {
	return s.exports
}

// New creates a runtime service. An executor must be supplied via
// WithExecutor.
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
