package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterInsertContainsDelete(t *testing.T) {
	f := NewFilter()
	member := []byte("edge:1:2")

	assert.False(t, f.Contains(member))

	f.Insert(member)
	assert.True(t, f.Contains(member))

	f.Delete(member)
	assert.False(t, f.Contains(member))
}

func TestFilterEncodeDecodeRoundTrip(t *testing.T) {
	f := NewFilter()
	f.Insert([]byte("edge:1:2"))
	f.Insert([]byte("edge:1:3"))

	decoded, err := DecodeFilter(f.Encode())
	require.NoError(t, err)

	assert.True(t, decoded.Contains([]byte("edge:1:2")))
	assert.True(t, decoded.Contains([]byte("edge:1:3")))
	assert.False(t, decoded.Contains([]byte("edge:1:4")))
}

func TestDecodeFilterOrNewEmptyInput(t *testing.T) {
	f, err := DecodeFilterOrNew("")
	require.NoError(t, err)
	assert.False(t, f.Contains([]byte("edge:1:2")))
}

func TestDecodeFilterGarbledInput(t *testing.T) {
	_, err := DecodeFilter("garbage")
	assert.Error(t, err)
}

func TestFilterStoreLoadAbsentNamespace(t *testing.T) {
	fs := NewFilterStore(NewMemoryStore())

	f, err := fs.Load(context.Background(), FollowingFilterKey(1))
	require.NoError(t, err)
	assert.False(t, f.Contains([]byte("edge:1:2")))
}

func TestFilterStoreInsertPersists(t *testing.T) {
	fs := NewFilterStore(NewMemoryStore())
	ctx := context.Background()
	key := FollowingFilterKey(1)
	member := []byte("edge:1:2")

	require.NoError(t, fs.Insert(ctx, key, member))

	f, err := fs.Load(ctx, key)
	require.NoError(t, err)
	assert.True(t, f.Contains(member))
}

func TestFilterStoreSaveLoadRoundTrip(t *testing.T) {
	fs := NewFilterStore(NewMemoryStore())
	ctx := context.Background()
	key := FollowerFilterKey(2)

	f := NewFilter()
	f.Insert([]byte("edge:1:2"))
	require.NoError(t, fs.Save(ctx, key, f))

	loaded, err := fs.Load(ctx, key)
	require.NoError(t, err)
	assert.True(t, loaded.Contains([]byte("edge:1:2")))
}
