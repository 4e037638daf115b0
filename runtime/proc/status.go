package proc

import "sync/atomic"

// Flag is a single bit of the process status word. Flags combine: a
// process can be Exiting and Suspended at the same time.
type Flag uint32

const (
	// FlagRunnable marks a process eligible to sit in a run queue.
	FlagRunnable Flag = 1 << iota
	// FlagRunning marks a process currently executing on exactly one
	// scheduler; a Running process is never present in a run queue.
	FlagRunning
	// FlagSuspended marks a process not runnable until explicitly resumed.
	FlagSuspended
	// FlagExiting marks a process for termination; the executor unwinds on
	// next dispatch and the scheduler removes it from the registry.
	FlagExiting
	// FlagInRunQueue marks an identity occupying its single pending-work
	// slot, either a run-queue position or an in-flight dirty migration.
	// Claimed on enqueue, released when a scheduler dispatches or skips
	// the process.
	FlagInRunQueue
)

// String returns a compact textual form of the set flags.
func (f Flag) String() string {
	names := ""
	appendName := func(name string) {
		if names != "" {
			names += "|"
		}
		names += name
	}
	if f&FlagRunnable != 0 {
		appendName("runnable")
	}
	if f&FlagRunning != 0 {
		appendName("running")
	}
	if f&FlagSuspended != 0 {
		appendName("suspended")
	}
	if f&FlagExiting != 0 {
		appendName("exiting")
	}
	if f&FlagInRunQueue != 0 {
		appendName("queued")
	}
	if names == "" {
		return "none"
	}
	return names
}

type status struct {
	bits atomic.Uint32
}

func (s *status) init(flags Flag) {
	s.bits.Store(uint32(flags))
}

// or atomically sets the given bits; equivalent to atomic.Uint32.Or,
// which requires go >= 1.23.
func (s *status) or(mask uint32) {
	for {
		old := s.bits.Load()
		if s.bits.CompareAndSwap(old, old|mask) {
			return
		}
	}
}

// and atomically masks the status word; equivalent to atomic.Uint32.And,
// which requires go >= 1.23.
func (s *status) and(mask uint32) {
	for {
		old := s.bits.Load()
		if s.bits.CompareAndSwap(old, old&mask) {
			return
		}
	}
}

// Flags returns the current status word.
func (p *Proc) Flags() Flag {
	return Flag(p.status.bits.Load())
}

// Is reports whether every flag in mask is set.
func (p *Proc) Is(mask Flag) bool {
	return Flag(p.status.bits.Load())&mask == mask
}

// SetFlag sets the given flags.
func (p *Proc) SetFlag(mask Flag) {
	p.status.or(uint32(mask))
}

// ClearFlag clears the given flags.
func (p *Proc) ClearFlag(mask Flag) {
	p.status.and(^uint32(mask))
}

// TryRun attempts the Runnable -> Running transition. It succeeds only when
// the process is Runnable and not already Running, guarding against
// double-dispatch from two run queues, and fails when the process is
// suspended mid-queue.
func (p *Proc) TryRun() bool {
	for {
		old := p.status.bits.Load()
		flags := Flag(old)
		if flags&FlagRunnable == 0 || flags&(FlagRunning|FlagSuspended) != 0 {
			return false
		}
		next := (flags &^ (FlagRunnable | FlagInRunQueue)) | FlagRunning
		if p.status.bits.CompareAndSwap(old, uint32(next)) {
			return true
		}
	}
}

// TryQueue attempts to claim the process's single pending-work slot. It
// fails when the slot is already taken or the process is currently
// executing, so an identity never occupies two queue positions at once.
func (p *Proc) TryQueue() bool {
	for {
		old := p.status.bits.Load()
		flags := Flag(old)
		if flags&(FlagInRunQueue|FlagRunning) != 0 {
			return false
		}
		if p.status.bits.CompareAndSwap(old, uint32(flags|FlagInRunQueue)) {
			return true
		}
	}
}

// ClearQueued releases the pending-work slot without dispatching, used
// when a scheduler dequeues an identity it cannot run.
func (p *Proc) ClearQueued() {
	p.status.and(^uint32(FlagInRunQueue))
}

// FinishRun reverts Running back to Runnable at the end of a slice.
func (p *Proc) FinishRun() {
	for {
		old := p.status.bits.Load()
		next := (Flag(old) &^ FlagRunning) | FlagRunnable
		if p.status.bits.CompareAndSwap(old, uint32(next)) {
			return
		}
	}
}

// FinishRunQueued atomically ends the slice while re-claiming the
// pending-work slot, so no concurrent enqueue can slip in between the end
// of a slice and the requeue or migration that follows it.
func (p *Proc) FinishRunQueued() {
	for {
		old := p.status.bits.Load()
		next := (Flag(old) &^ FlagRunning) | FlagRunnable | FlagInRunQueue
		if p.status.bits.CompareAndSwap(old, uint32(next)) {
			return
		}
	}
}

// Suspend marks the process not runnable until Resume is called.
func (p *Proc) Suspend() {
	for {
		old := p.status.bits.Load()
		next := (Flag(old) &^ FlagRunnable) | FlagSuspended
		if p.status.bits.CompareAndSwap(old, uint32(next)) {
			return
		}
	}
}

// Unsuspend makes a suspended process runnable again. The caller is
// responsible for re-enqueueing it.
func (p *Proc) Unsuspend() {
	for {
		old := p.status.bits.Load()
		next := (Flag(old) &^ FlagSuspended) | FlagRunnable
		if p.status.bits.CompareAndSwap(old, uint32(next)) {
			return
		}
	}
}

// MarkExiting flags the process for termination. Safe to call from any
// thread holding a registry lookup; takes effect at the next scheduling
// checkpoint.
func (p *Proc) MarkExiting() {
	p.status.or(uint32(FlagExiting))
}

// IsExiting reports whether the process has been marked for termination.
func (p *Proc) IsExiting() bool {
	return p.Is(FlagExiting)
}
