package orders

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorConcurrentCallersGetDistinctNumbers(t *testing.T) {
	f := newFixture()
	f.store.seedFacility(1000)

	const callers = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int64
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := f.svc.allocator.Next(context.Background())
			assert.NoError(t, err)

			mu.Lock()
			numbers = append(numbers, number)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, numbers, callers)
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for i, number := range numbers {
		assert.Equal(t, int64(1000+i), number)
	}
}

// racingSequences reports the counter as missing once and then loses the
// seeding race to another instance.
type racingSequences struct {
	mu         sync.Mutex
	value      int64
	seeded     bool
	increments int
	seeds      int
}

func (r *racingSequences) Increment(context.Context, string) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.increments++
	if !r.seeded {
		// another instance seeds between this miss and our Seed call
		r.seeded = true
		r.value = 1000
		return 0, false, nil
	}
	r.value++
	return r.value, true, nil
}

func (r *racingSequences) Seed(context.Context, string, int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seeds++
	return false, nil
}

func TestAllocatorRetriesAfterLosingSeedRace(t *testing.T) {
	mem := newMemStore()
	mem.seedFacility(1000)
	seq := &racingSequences{}

	number, err := NewAllocator(seq, mem, mem).Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1001), number)
	assert.Equal(t, 2, seq.increments)
	assert.Equal(t, 1, seq.seeds)
}
