package trap

import (
	"fmt"
	"sync"

	"github.com/viant/sched/runtime/proc"
)

// Well-known continuation targets installed at bootstrap. Operations look
// them up by name so the target table stays the single source of truth for
// arity and scheduler class.
const (
	ReturnTrap          = "bif_return_trap"
	HandleSignalsReturn = "bif_handle_signals_return"
	AwaitExit           = "await_exit"
)

// Exports is the table of registered trap targets, keyed by function name
// within a module.
type Exports struct {
	mux     sync.RWMutex
	targets map[string]proc.Target
}

// NewExports creates a table pre-populated with the runtime's well-known
// targets.
func NewExports() *Exports {
	e := &Exports{targets: make(map[string]proc.Target)}
	e.Register(proc.Target{Module: "erlang", Function: ReturnTrap, Arity: 2})
	e.Register(proc.Target{Module: "erlang", Function: HandleSignalsReturn, Arity: 2})
	e.Register(proc.Target{Module: "erts_internal", Function: AwaitExit, Arity: 0})
	return e
}

// Register adds or replaces a target, keyed by module:function.
func (e *Exports) Register(target proc.Target) {
	e.mux.Lock()
	e.targets[target.Module+":"+target.Function] = target
	e.mux.Unlock()
}

// Lookup resolves a registered target by module and function name.
func (e *Exports) Lookup(module, function string) (proc.Target, bool) {
	e.mux.RLock()
	target, ok := e.targets[module+":"+function]
	e.mux.RUnlock()
	return target, ok
}

// Resolve parses a module:function/arity spec and registers it, returning
// the resulting target. Used for boot-time configuration entries.
func (e *Exports) Resolve(spec string) (proc.Target, error) {
	target, err := ParseTarget(spec)
	if err != nil {
		return proc.Target{}, fmt.Errorf("invalid trap target %q: %w", spec, err)
	}
	e.Register(target)
	return target, nil
}
