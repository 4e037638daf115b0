// Package trap implements the cooperative suspension protocol built-in
// operations use to pause a process mid-call and resume it later without
// blocking a scheduler. A trap records a continuation in the descriptor's
// resume slot; the scheduler loop consumes it and requeues (or migrates)
// the process.
package trap

import (
	"errors"
	"fmt"

	"github.com/viant/sched/runtime/proc"
)

var (
	// ErrBadArity indicates PrepareWithArgs was called with an argument
	// count that does not match the declared arity.
	ErrBadArity = errors.New("trap: arity mismatch")

	// ErrNilProcess indicates a protocol call on a nil descriptor.
	ErrNilProcess = errors.New("trap: nil process")
)

// Prepare records a continuation with no saved arguments. The process will
// be rescheduled and resumed at target; the reduction budget is untouched.
func Prepare(p *proc.Proc, target proc.Target, arity uint32) error {
	if p == nil {
		return ErrNilProcess
	}
	p.SetResume(proc.NewResume(target, arity, nil))
	return nil
}

// PrepareWithArgs records a continuation with saved argument registers at
// positions 0..len(args). A mismatch between arity and len(args) is a
// calling-BIF defect and fails fast rather than truncating or padding.
func PrepareWithArgs(p *proc.Proc, target proc.Target, arity uint32, args []proc.Term) error {
	if p == nil {
		return ErrNilProcess
	}
	if int(arity) != len(args) {
		return fmt.Errorf("%w: declared %d, got %d args", ErrBadArity, arity, len(args))
	}
	if len(args) > proc.MaxResumeArgs {
		return fmt.Errorf("%w: %d args exceed register window of %d", ErrBadArity, len(args), proc.MaxResumeArgs)
	}
	p.SetResume(proc.NewResume(target, arity, args))
	return nil
}

// PrepareYieldReturn is used by an operation that already computed its
// result but must still yield for fairness. It forces the remaining
// reduction budget to zero and traps to target with (value, op) as the two
// resumption arguments, so resumed code receives them as ordinary call
// arguments.
func PrepareYieldReturn(p *proc.Proc, target proc.Target, value, op proc.Term) error {
	if p == nil {
		return ErrNilProcess
	}
	p.SetFcalls(0)
	return PrepareWithArgs(p, target, 2, []proc.Term{value, op})
}

// IsOutOfReds reports whether the process has exhausted its reduction
// budget and must yield at the next checkpoint.
func IsOutOfReds(p *proc.Proc) bool {
	return p.Fcalls() <= 0
}

// RedsLeft returns the non-negative remaining reduction budget. The fuller
// saved-calls-buffer accounting is intentionally not modeled; see the
// DirtyBudget constant in the scheduler configuration for the dirty-slice
// counterpart.
func RedsLeft(p *proc.Proc) int32 {
	if fcalls := p.Fcalls(); fcalls > 0 {
		return fcalls
	}
	return 0
}
