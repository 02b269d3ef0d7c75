package cache

import (
	"context"
	"fmt"

	cuckoo "github.com/linvon/cuckoo-filter"
)

const (
	// filterTagsPerBucket and filterBitsPerItem fix the cuckoo table geometry.
	// 16 fingerprint bits keep the false-positive rate around 1/2^16 at the
	// cost of two bytes per tracked edge.
	filterTagsPerBucket = 4
	filterBitsPerItem   = 16

	// filterCapacity is the standard capacity for a freshly created namespace
	filterCapacity = 1 << 20
)

// Filter is an approximate membership filter for one cache namespace, e.g. the
// set of follow edges originating from a single user. It has no false negatives
// for members that were inserted and not deleted; Contains may report a member
// that was never inserted within the configured false-positive rate.
//
// Delete removes at most one matching fingerprint. Deleting a member that was
// never inserted can evict a colliding member and break the no-false-negative
// guarantee, so callers must only delete members they previously inserted.
type Filter struct {
	cf *cuckoo.Filter
}

// NewFilter creates an empty filter of the standard capacity
func NewFilter() *Filter {
	return &Filter{cf: cuckoo.NewFilter(filterTagsPerBucket, filterBitsPerItem, filterCapacity, cuckoo.TableTypePacked)}
}

// DecodeFilter restores a filter from its cache-tier encoding
func DecodeFilter(data string) (*Filter, error) {
	cf, err := cuckoo.Decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("decode membership filter: %w", err)
	}
	return &Filter{cf: cf}, nil
}

// DecodeFilterOrNew restores a filter, falling back to an empty one for the
// absent-namespace case
func DecodeFilterOrNew(data string) (*Filter, error) {
	if data == "" {
		return NewFilter(), nil
	}
	return DecodeFilter(data)
}

// Insert adds a member
func (f *Filter) Insert(member []byte) {
	f.cf.Add(member)
}

// Contains reports whether a member is probably in the set
func (f *Filter) Contains(member []byte) bool {
	return f.cf.Contain(member)
}

// Delete removes up to one fingerprint matching the member
func (f *Filter) Delete(member []byte) {
	f.cf.Delete(member)
}

// Encode renders the filter for storage in the cache tier
func (f *Filter) Encode() string {
	data, _ := f.cf.Encode()
	return string(data)
}

// FilterStore loads and persists namespace filters through the cache tier.
// Filters are shared mutable blobs: every mutation is a full fetch-mutate-store
// cycle against the tier, there is no in-place shared state between processes.
type FilterStore struct {
	store Store
}

// NewFilterStore creates a new FilterStore
func NewFilterStore(store Store) *FilterStore {
	return &FilterStore{store: store}
}

// Load fetches the filter for a namespace, creating an empty one of the
// standard capacity when the namespace has no filter yet
func (s *FilterStore) Load(ctx context.Context, key string) (*Filter, error) {
	data, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return NewFilter(), nil
	}
	return DecodeFilter(data)
}

// Save writes the filter back to its namespace
func (s *FilterStore) Save(ctx context.Context, key string, f *Filter) error {
	return s.store.Put(ctx, key, f.Encode())
}

// Insert adds a member to the namespace filter as one optimistic
// fetch-mutate-store cycle, so the insert lands in the latest blob even when
// another writer updated the namespace since the caller last read it.
func (s *FilterStore) Insert(ctx context.Context, key string, member []byte) error {
	return s.store.Update(ctx, []string{key}, func(current map[string]string) (map[string]string, error) {
		f, err := DecodeFilterOrNew(current[key])
		if err != nil {
			return nil, err
		}
		f.Insert(member)
		return map[string]string{key: f.Encode()}, nil
	})
}
