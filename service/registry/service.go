// Package registry maintains the concurrent table mapping process
// identities to descriptors. It owns identity allocation and recycling;
// run-queue membership is deliberately not its concern and stays with the
// scheduler.
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/viant/sched/runtime/proc"
)

// Service is the process table: a shared map from identity to descriptor
// plus a FIFO pool of freed identities. Lookups run concurrently; inserts
// and removals are mutually exclusive with each other and with lookups.
type Service struct {
	mux      sync.RWMutex
	elements map[proc.ID]*proc.Proc

	freeMux sync.Mutex
	free    []proc.ID

	// next is the high-water identity counter; 0 is reserved and skipped.
	next    atomic.Uint64
	maxSize int
}

// Option customises the registry.
type Option func(s *Service)

// WithMaxSize bounds the number of live processes (0 = unlimited).
func WithMaxSize(maxSize int) Option {
	return func(s *Service) {
		s.maxSize = maxSize
	}
}

// New creates an empty registry.
func New(options ...Option) *Service {
	s := &Service{
		elements: make(map[proc.ID]*proc.Proc),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// MaxSize returns the configured capacity (0 = unlimited).
func (s *Service) MaxSize() int {
	return s.maxSize
}

// NewElement allocates an identity (reusing the oldest freed one first),
// constructs the descriptor via init and inserts it. When the table is at
// capacity it fails with ErrTableFull before calling init; when a
// concurrent spawn fills the table between identity acquisition and
// insertion the identity is returned to the free pool so it is not
// permanently wasted.
func (s *Service) NewElement(init func(id proc.ID) *proc.Proc) (proc.ID, *proc.Proc, error) {
	if s.full() {
		return 0, nil, ErrTableFull
	}
	for {
		id := s.acquireID()
		element := init(id)

		s.mux.Lock()
		if s.maxSize > 0 && len(s.elements) >= s.maxSize {
			s.mux.Unlock()
			s.releaseIDFront(id)
			return 0, nil, ErrTableFull
		}
		if _, occupied := s.elements[id]; occupied {
			// Stale identity; leave it to its owner and pick a fresh one.
			s.mux.Unlock()
			continue
		}
		s.elements[id] = element
		s.mux.Unlock()
		return id, element, nil
	}
}

// Lookup resolves an identity; concurrent and non-blocking with respect to
// other lookups.
func (s *Service) Lookup(id proc.ID) (*proc.Proc, bool) {
	s.mux.RLock()
	element, ok := s.elements[id]
	s.mux.RUnlock()
	return element, ok
}

// Insert stores a descriptor under an explicitly chosen identity, used for
// fixed-ID bootstrap processes. It returns the previous descriptor when
// replacing one.
func (s *Service) Insert(id proc.ID, element *proc.Proc) (*proc.Proc, error) {
	if id == 0 {
		return nil, ErrInvalidID
	}
	if element == nil {
		return nil, ErrNilProcess
	}
	s.mux.Lock()
	previous := s.elements[id]
	s.elements[id] = element
	s.mux.Unlock()
	return previous, nil
}

// InsertIfAbsent stores a descriptor under an explicitly chosen identity
// only when the slot is free. An occupied slot is left untouched and the
// occupant is returned with inserted=false, so a refused insert never
// clobbers a live process.
func (s *Service) InsertIfAbsent(id proc.ID, element *proc.Proc) (previous *proc.Proc, inserted bool, err error) {
	if id == 0 {
		return nil, false, ErrInvalidID
	}
	if element == nil {
		return nil, false, ErrNilProcess
	}
	s.mux.Lock()
	previous = s.elements[id]
	if previous == nil {
		s.elements[id] = element
		inserted = true
	}
	s.mux.Unlock()
	return previous, inserted, nil
}

// Remove deletes an identity and, when something was removed, pushes the
// identity onto the free-pool tail for FIFO reuse. Removing an absent
// identity returns nil.
func (s *Service) Remove(id proc.ID) (*proc.Proc, error) {
	if id == 0 {
		return nil, ErrInvalidID
	}
	s.mux.Lock()
	element, ok := s.elements[id]
	if ok {
		delete(s.elements, id)
	}
	s.mux.Unlock()
	if ok {
		s.freeMux.Lock()
		s.free = append(s.free, id)
		s.freeMux.Unlock()
	}
	return element, nil
}

// Size returns the number of live processes.
func (s *Service) Size() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.elements)
}

// IsEmpty reports whether no process is live.
func (s *Service) IsEmpty() bool {
	return s.Size() == 0
}

// IDs returns the identities of all live processes, in no particular order.
func (s *Service) IDs() []proc.ID {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ids := make([]proc.ID, 0, len(s.elements))
	for id := range s.elements {
		ids = append(ids, id)
	}
	return ids
}

// Clear drops every process and the free-identity pool.
func (s *Service) Clear() {
	s.mux.Lock()
	s.elements = make(map[proc.ID]*proc.Proc)
	s.mux.Unlock()
	s.freeMux.Lock()
	s.free = nil
	s.freeMux.Unlock()
}

func (s *Service) full() bool {
	if s.maxSize == 0 {
		return false
	}
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.elements) >= s.maxSize
}

// acquireID pops the oldest freed identity, falling back to the counter;
// identity 0 is reserved and never produced.
func (s *Service) acquireID() proc.ID {
	s.freeMux.Lock()
	if len(s.free) > 0 {
		id := s.free[0]
		s.free = s.free[1:]
		s.freeMux.Unlock()
		return id
	}
	s.freeMux.Unlock()
	for {
		if id := proc.ID(s.next.Add(1)); id != 0 {
			return id
		}
	}
}

// releaseIDFront returns an identity to the head of the free pool so the
// next allocation reuses it first.
func (s *Service) releaseIDFront(id proc.ID) {
	if id == 0 {
		return
	}
	s.freeMux.Lock()
	s.free = append([]proc.ID{id}, s.free...)
	s.freeMux.Unlock()
}
