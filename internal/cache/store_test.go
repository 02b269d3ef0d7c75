package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetAbsent(t *testing.T) {
	store := NewMemoryStore()

	_, ok, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreBatchRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.PutAll(ctx, map[string]string{"a": "1", "b": "2"}))

	got, err := store.GetAll(ctx, []string{"a", "b", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got)
}

func TestMemoryStoreUpdate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "counter", "2"))

	err := store.Update(ctx, []string{"counter", "missing"}, func(current map[string]string) (map[string]string, error) {
		assert.Equal(t, map[string]string{"counter": "2"}, current)
		return map[string]string{"counter": FormatCounter(ParseCounter(current["counter"]) + 1)}, nil
	})
	require.NoError(t, err)

	val, ok, err := store.Get(ctx, "counter")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3", val)
}
