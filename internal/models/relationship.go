package models

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Relationship represents a directed follow edge from one user to another.
// At most one relationship exists per ordered (FromID, ToID) pair; the unique
// index enforces that regardless of how the row's ID was assigned.
type Relationship struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	FromID      int64     `json:"from_id" gorm:"index;uniqueIndex:idx_relationship_pair"`
	ToID        int64     `json:"to_id" gorm:"index;uniqueIndex:idx_relationship_pair"`
	DisplayName string    `json:"display_name" gorm:"size:100"` // Follower's display name, denormalized for feed rendering
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// RelationshipID derives the storage id for an edge from its ordered pair, so
// re-creating the same edge is idempotent at the key level
func RelationshipID(fromID, toID int64) string {
	return fmt.Sprintf("%d:%d", fromID, toID)
}

// RelationshipKey is the membership-filter member for an edge: the ordered
// pair packed big-endian into 16 bytes
func RelationshipKey(fromID, toID int64) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[:8], uint64(fromID))
	binary.BigEndian.PutUint64(key[8:], uint64(toID))
	return key
}
