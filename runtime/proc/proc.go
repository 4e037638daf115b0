package proc

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/sched/internal/clock"
)

// ID identifies a live process. The zero value is reserved and means
// "no process". IDs are recycled by the registry after removal.
type ID uint64

// Term is a single word of process data (heap slot, saved argument
// register, atom or immediate value).
type Term uint64

// DefaultHeapSize is the initial heap allocation, in words, for a newly
// spawned process.
const DefaultHeapSize = 233

// ErrHeapLimit is returned by HeapAlloc when growing the heap would exceed
// the configured maximum heap size.
var ErrHeapLimit = errors.New("proc: heap limit exceeded")

// Proc is the per-process descriptor: identity, scheduling state, reduction
// budget and the resume slot used by the trap protocol.
//
// Ownership rules: the status word, reduction counters and schedule count
// are atomics readable from any thread; everything else is mutated only by
// the scheduler thread currently running the process (or, before first
// dispatch, by the spawning thread).
type Proc struct {
	id       ID
	status   status
	priority Priority

	// fcalls is the remaining reduction budget for the current slice;
	// <= 0 means the process must yield at its next checkpoint.
	fcalls atomic.Int32
	// reds accumulates the total reductions consumed over the process
	// lifetime, for diagnostics.
	reds atomic.Int64
	// scheduleCount bounds how many consecutive dequeue rounds a Low
	// priority process may be skipped before it is forced to run.
	scheduleCount atomic.Uint32

	mu     sync.RWMutex
	resume *Resume

	hmu      sync.Mutex
	heap     []Term
	heapTop  int
	stackTop int
	minHeap  int
	maxHeap  int // 0 = unlimited

	createdAt time.Time
}

// Option customises a new descriptor.
type Option func(p *Proc)

// WithPriority sets the scheduling priority.
func WithPriority(priority Priority) Option {
	return func(p *Proc) {
		p.priority = priority
	}
}

// WithHeapSize sets the initial and minimum heap size in words.
func WithHeapSize(words int) Option {
	return func(p *Proc) {
		if words > 0 {
			p.minHeap = words
		}
	}
}

// WithMaxHeapSize caps the heap size in words (0 = unlimited).
func WithMaxHeapSize(words int) Option {
	return func(p *Proc) {
		p.maxHeap = words
	}
}

// New creates a descriptor for the given identity. The new process starts
// Runnable; the caller is responsible for enqueueing it.
func New(id ID, options ...Option) *Proc {
	p := &Proc{
		id:        id,
		priority:  Normal,
		minHeap:   DefaultHeapSize,
		createdAt: clock.Now(),
	}
	for _, option := range options {
		option(p)
	}
	p.heap = make([]Term, p.minHeap)
	p.status.init(FlagRunnable)
	return p
}

// ID returns the process identity.
func (p *Proc) ID() ID {
	return p.id
}

// Priority returns the scheduling priority.
func (p *Proc) Priority() Priority {
	return p.priority
}

// CreatedAt returns the spawn time.
func (p *Proc) CreatedAt() time.Time {
	return p.createdAt
}

// Fcalls returns the remaining reduction budget. May be read from any
// thread for diagnostics.
func (p *Proc) Fcalls() int32 {
	return p.fcalls.Load()
}

// SetFcalls assigns the reduction budget for the next slice. Only the
// scheduler thread owning the process mutates the budget.
func (p *Proc) SetFcalls(n int32) {
	p.fcalls.Store(n)
}

// ConsumeReds charges n reductions against the current budget and records
// them in the lifetime total.
func (p *Proc) ConsumeReds(n int32) {
	p.fcalls.Add(-n)
	p.reds.Add(int64(n))
}

// Reds returns the total reductions consumed over the process lifetime.
func (p *Proc) Reds() int64 {
	return p.reds.Load()
}

// ScheduleCount returns the consecutive-skip counter used by the
// anti-starvation policy.
func (p *Proc) ScheduleCount() uint32 {
	return p.scheduleCount.Load()
}

// BumpScheduleCount increments and returns the consecutive-skip counter.
func (p *Proc) BumpScheduleCount() uint32 {
	return p.scheduleCount.Add(1)
}

// ResetScheduleCount clears the consecutive-skip counter.
func (p *Proc) ResetScheduleCount() {
	p.scheduleCount.Store(0)
}

// SetResume records the continuation the process resumes at after a trap.
// It is called exclusively by the trap protocol while the process runs.
func (p *Proc) SetResume(resume *Resume) {
	p.mu.Lock()
	p.resume = resume
	p.mu.Unlock()
}

// TakeResume returns the pending continuation and clears the slot
// atomically with consumption. It returns nil when no trap is pending.
func (p *Proc) TakeResume() *Resume {
	p.mu.Lock()
	resume := p.resume
	p.resume = nil
	p.mu.Unlock()
	return resume
}

// PendingResume reports the pending continuation without consuming it.
func (p *Proc) PendingResume() *Resume {
	p.mu.RLock()
	resume := p.resume
	p.mu.RUnlock()
	return resume
}

// HeapAlloc reserves n words on the process heap and returns the offset of
// the reserved region. The heap grows on demand up to the configured
// maximum; offsets remain valid across growth since the heap is addressed
// by index, never by pointer.
func (p *Proc) HeapAlloc(n int) (int, error) {
	p.hmu.Lock()
	defer p.hmu.Unlock()
	offset := p.heapTop
	needed := offset + n
	if p.maxHeap > 0 && needed > p.maxHeap {
		return 0, ErrHeapLimit
	}
	if needed > len(p.heap) {
		grown := len(p.heap) * 2
		if grown < needed {
			grown = needed
		}
		if p.maxHeap > 0 && grown > p.maxHeap {
			grown = p.maxHeap
		}
		heap := make([]Term, grown)
		copy(heap, p.heap)
		p.heap = heap
	}
	p.heapTop = needed
	return offset, nil
}

// HeapWrite stores a term at the given heap offset.
func (p *Proc) HeapWrite(offset int, value Term) bool {
	p.hmu.Lock()
	defer p.hmu.Unlock()
	if offset < 0 || offset >= p.heapTop {
		return false
	}
	p.heap[offset] = value
	return true
}

// HeapRead loads the term at the given heap offset.
func (p *Proc) HeapRead(offset int) (Term, bool) {
	p.hmu.Lock()
	defer p.hmu.Unlock()
	if offset < 0 || offset >= p.heapTop {
		return 0, false
	}
	return p.heap[offset], true
}

// HeapSize returns the current heap capacity in words.
func (p *Proc) HeapSize() int {
	p.hmu.Lock()
	defer p.hmu.Unlock()
	return len(p.heap)
}

// HeapUsed returns the number of heap words currently allocated.
func (p *Proc) HeapUsed() int {
	p.hmu.Lock()
	defer p.hmu.Unlock()
	return p.heapTop
}
