package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/sched/runtime/proc"
)

func newProc(id proc.ID) *proc.Proc {
	return proc.New(id)
}

func TestNewElement(t *testing.T) {
	service := New()
	id, element, err := service.NewElement(newProc)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, id)
	assert.Equal(t, id, element.ID())
	assert.Equal(t, 1, service.Size())

	found, ok := service.Lookup(id)
	assert.True(t, ok)
	assert.Same(t, element, found)
}

func TestIdentityZeroNeverIssued(t *testing.T) {
	service := New()
	for i := 0; i < 100; i++ {
		id, _, err := service.NewElement(newProc)
		assert.NoError(t, err)
		assert.NotZero(t, id)
	}
}

func TestCapacity(t *testing.T) {
	service := New(WithMaxSize(2))
	assert.Equal(t, 2, service.MaxSize())

	_, _, err := service.NewElement(newProc)
	assert.NoError(t, err)
	id2, _, err := service.NewElement(newProc)
	assert.NoError(t, err)

	// At capacity the constructor must not even be invoked.
	invoked := false
	_, _, err = service.NewElement(func(id proc.ID) *proc.Proc {
		invoked = true
		return proc.New(id)
	})
	assert.ErrorIs(t, err, ErrTableFull)
	assert.False(t, invoked)

	// Removing one frees a slot.
	_, err = service.Remove(id2)
	assert.NoError(t, err)
	_, _, err = service.NewElement(newProc)
	assert.NoError(t, err)
}

func TestFIFORecycling(t *testing.T) {
	service := New()
	var ids []proc.ID
	for i := 0; i < 4; i++ {
		id, _, err := service.NewElement(newProc)
		assert.NoError(t, err)
		ids = append(ids, id)
	}

	// Free 2 then 4; the oldest freed identity must come back first.
	_, err := service.Remove(ids[1])
	assert.NoError(t, err)
	_, err = service.Remove(ids[3])
	assert.NoError(t, err)

	reused1, _, err := service.NewElement(newProc)
	assert.NoError(t, err)
	assert.Equal(t, ids[1], reused1)

	reused2, _, err := service.NewElement(newProc)
	assert.NoError(t, err)
	assert.Equal(t, ids[3], reused2)

	// Pool drained: back to the counter.
	fresh, _, err := service.NewElement(newProc)
	assert.NoError(t, err)
	assert.EqualValues(t, 5, fresh)
}

func TestRemove(t *testing.T) {
	service := New()
	id, element, err := service.NewElement(newProc)
	assert.NoError(t, err)

	removed, err := service.Remove(id)
	assert.NoError(t, err)
	assert.Same(t, element, removed)
	assert.True(t, service.IsEmpty())

	// Absent identity: not an error, nothing returned.
	removed, err = service.Remove(id)
	assert.NoError(t, err)
	assert.Nil(t, removed)

	// Identity 0 is reserved.
	_, err = service.Remove(0)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestInsertFixedID(t *testing.T) {
	service := New()

	_, err := service.Insert(0, proc.New(0))
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = service.Insert(9, nil)
	assert.ErrorIs(t, err, ErrNilProcess)

	first := proc.New(9)
	previous, err := service.Insert(9, first)
	assert.NoError(t, err)
	assert.Nil(t, previous)

	second := proc.New(9)
	previous, err = service.Insert(9, second)
	assert.NoError(t, err)
	assert.Same(t, first, previous)

	found, ok := service.Lookup(9)
	assert.True(t, ok)
	assert.Same(t, second, found)
}

func TestInsertIfAbsent(t *testing.T) {
	service := New()

	_, _, err := service.InsertIfAbsent(0, proc.New(0))
	assert.ErrorIs(t, err, ErrInvalidID)
	_, _, err = service.InsertIfAbsent(9, nil)
	assert.ErrorIs(t, err, ErrNilProcess)

	first := proc.New(9)
	previous, inserted, err := service.InsertIfAbsent(9, first)
	assert.NoError(t, err)
	assert.True(t, inserted)
	assert.Nil(t, previous)

	// A refused insert must leave the occupant in place.
	second := proc.New(9)
	previous, inserted, err = service.InsertIfAbsent(9, second)
	assert.NoError(t, err)
	assert.False(t, inserted)
	assert.Same(t, first, previous)

	found, ok := service.Lookup(9)
	assert.True(t, ok)
	assert.Same(t, first, found)
}

func TestIDsAndClear(t *testing.T) {
	service := New()
	for i := 0; i < 3; i++ {
		_, _, err := service.NewElement(newProc)
		assert.NoError(t, err)
	}
	assert.Len(t, service.IDs(), 3)

	service.Clear()
	assert.True(t, service.IsEmpty())
	assert.Empty(t, service.IDs())
}

func TestConcurrentUniqueness(t *testing.T) {
	service := New()
	const workers = 16
	const perWorker = 200

	var mu sync.Mutex
	seen := map[proc.ID]bool{}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id, _, err := service.NewElement(newProc)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				assert.False(t, seen[id], "identity issued twice")
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, workers*perWorker, service.Size())
	assert.Len(t, seen, workers*perWorker)
}

func TestConcurrentChurn(t *testing.T) {
	// Spawn/remove churn against a small table: live identities stay
	// unique and the table never exceeds its capacity.
	const maxSize = 32
	service := New(WithMaxSize(maxSize))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				id, element, err := service.NewElement(newProc)
				if err != nil {
					assert.ErrorIs(t, err, ErrTableFull)
					continue
				}
				assert.Equal(t, id, element.ID())
				assert.LessOrEqual(t, service.Size(), maxSize)
				_, err = service.Remove(id)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	assert.True(t, service.IsEmpty())
}
