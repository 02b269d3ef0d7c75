package idgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnowflakeRejectsInvalidNodeID(t *testing.T) {
	_, err := NewSnowflake(-1)
	assert.ErrorIs(t, err, ErrInvalidNodeID)

	_, err = NewSnowflake(1024)
	assert.ErrorIs(t, err, ErrInvalidNodeID)

	_, err = NewSnowflake(1023)
	assert.NoError(t, err)
}

func TestGenerateIDUniqueAndIncreasing(t *testing.T) {
	gen, err := NewSnowflake(1)
	require.NoError(t, err)

	last := int64(0)
	seen := make(map[int64]bool)
	for i := 0; i < 10000; i++ {
		id := gen.GenerateID()
		require.Greater(t, id, last)
		require.False(t, seen[id])
		seen[id] = true
		last = id
	}
}

func TestGenerateIDConcurrent(t *testing.T) {
	gen, err := NewSnowflake(2)
	require.NoError(t, err)

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	results := make([][]int64, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ids := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				ids = append(ids, gen.GenerateID())
			}
			results[w] = ids
		}(w)
	}
	wg.Wait()

	seen := make(map[int64]bool, workers*perWorker)
	for _, ids := range results {
		for _, id := range ids {
			require.False(t, seen[id])
			seen[id] = true
		}
	}
	assert.Len(t, seen, workers*perWorker)
}
