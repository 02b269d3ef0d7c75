// Package idgen provides int64 id generation for entities created outside a
// request context, such as relationships materialized by the batch consumer.
package idgen

import (
	"errors"
	"sync"
	"time"
)

// Generator defines the interface for id generation
type Generator interface {
	GenerateID() int64
}

const (
	// epoch is the generator's custom start time (2024-01-01 00:00:00 UTC, ms)
	epoch int64 = 1704067200000

	nodeBits     = 10
	sequenceBits = 12

	maxNodeID   = (1 << nodeBits) - 1
	maxSequence = (1 << sequenceBits) - 1

	nodeShift      = sequenceBits
	timestampShift = sequenceBits + nodeBits
)

// ErrInvalidNodeID is returned for a node id outside [0, 1023]
var ErrInvalidNodeID = errors.New("node ID must be between 0 and 1023")

// Snowflake generates 64-bit ids laid out as
// [1-bit sign][41-bit timestamp][10-bit node][12-bit sequence].
// Ids are unique per node and trend-increasing over time.
type Snowflake struct {
	mu            sync.Mutex
	nodeID        int64
	sequence      int64
	lastTimestamp int64
}

// NewSnowflake creates a generator for the given node id
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	if nodeID < 0 || nodeID > maxNodeID {
		return nil, ErrInvalidNodeID
	}
	return &Snowflake{nodeID: nodeID, lastTimestamp: -1}, nil
}

// GenerateID returns the next id. Within one millisecond ids advance through
// the sequence field; when the sequence overflows the generator spins until
// the next millisecond.
func (s *Snowflake) GenerateID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if now < s.lastTimestamp {
		// Clock went backwards; hold the line at the last seen timestamp so
		// ids stay unique, at the cost of burning through the sequence.
		now = s.lastTimestamp
	}

	if now == s.lastTimestamp {
		s.sequence = (s.sequence + 1) & maxSequence
		if s.sequence == 0 {
			for now <= s.lastTimestamp {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		s.sequence = 0
	}
	s.lastTimestamp = now

	return (now-epoch)<<timestampShift | s.nodeID<<nodeShift | s.sequence
}
