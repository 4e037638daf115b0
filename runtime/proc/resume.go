package proc

import "strconv"

// SchedType is the scheduler class a trap target must run on. It is an
// explicit capability tag carried by the target, never inferred from
// naming.
type SchedType int

const (
	// SchedNormal runs on a regular reduction-budgeted scheduler.
	SchedNormal SchedType = iota
	// SchedDirtyCPU runs on the dirty pool reserved for long computations.
	SchedDirtyCPU
	// SchedDirtyIO runs on the dirty pool reserved for blocking I/O.
	SchedDirtyIO
)

// Dirty reports whether the target must migrate to a dirty scheduler.
func (t SchedType) Dirty() bool {
	return t == SchedDirtyCPU || t == SchedDirtyIO
}

// String returns the scheduler class name.
func (t SchedType) String() string {
	switch t {
	case SchedDirtyCPU:
		return "dirty-cpu"
	case SchedDirtyIO:
		return "dirty-io"
	}
	return "normal"
}

// Target names a code entry point (module:function/arity) used as a trap
// continuation, together with the scheduler class it must run on.
type Target struct {
	Module   string
	Function string
	Arity    uint32
	Sched    SchedType
}

// String formats the target as module:function/arity.
func (t Target) String() string {
	return t.Module + ":" + t.Function + "/" + strconv.FormatUint(uint64(t.Arity), 10)
}

// MaxResumeArgs caps the number of saved argument registers a resume slot
// can carry.
const MaxResumeArgs = 8

// Resume is the continuation recorded by the trap protocol: the target to
// resume at and the argument registers saved across the suspension. It is
// consumed exactly once by the scheduler loop. Arity is the target's
// declared arity; the saved-register count is tracked separately because
// an argument-less trap saves nothing regardless of arity.
type Resume struct {
	Target Target
	Arity  uint32
	saved  int
	args   [MaxResumeArgs]Term
}

// NewResume creates a continuation with the given saved arguments. The
// caller guarantees len(args) <= MaxResumeArgs.
func NewResume(target Target, arity uint32, args []Term) *Resume {
	resume := &Resume{Target: target, Arity: arity, saved: len(args)}
	copy(resume.args[:], args)
	return resume
}

// Args returns the saved argument registers; empty when the trap saved
// none.
func (r *Resume) Args() []Term {
	return r.args[:r.saved]
}

// Arg returns the saved argument register at position i.
func (r *Resume) Arg(i int) Term {
	return r.args[i]
}
