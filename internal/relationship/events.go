package relationship

import (
	"time"

	"github.com/sajidulbari/loopin/backend/internal/models"
)

// Task names tagging the event type of queued relationship changes
const (
	EventFollow   = "Follow"
	EventUnfollow = "Unfollow"
)

// FollowPayload is the queued form of a follow action. It carries the
// follower's display fields so the consumer can materialize the relationship
// row without loading the follower.
type FollowPayload struct {
	FromUserID      int64              `json:"from_user_id"`
	ToUserID        int64              `json:"to_user_id"`
	FromDisplayName string             `json:"from_display_name"`
	FromAvatarImage models.AvatarImage `json:"from_avatar_image"`
	EnqueuedAt      time.Time          `json:"enqueued_at"`
}

// UnfollowPayload is the queued form of an unfollow action
type UnfollowPayload struct {
	FromUserID int64     `json:"from_user_id"`
	ToUserID   int64     `json:"to_user_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
