package cache

import (
	"fmt"
	"strconv"
)

// Cache keys follow the "<kind>_<direction>:<id>" scheme shared with the other
// services reading this tier.

// FollowerCounterKey is the cached follower count for a user
func FollowerCounterKey(userID int64) string {
	return fmt.Sprintf("counter_follower:%d", userID)
}

// FollowingCounterKey is the cached following count for a user
func FollowingCounterKey(userID int64) string {
	return fmt.Sprintf("counter_following:%d", userID)
}

// FollowerFilterKey is the membership filter over a user's follower edges
func FollowerFilterKey(userID int64) string {
	return fmt.Sprintf("filter_follower:%d", userID)
}

// FollowingFilterKey is the membership filter over a user's following edges
func FollowingFilterKey(userID int64) string {
	return fmt.Sprintf("filter_following:%d", userID)
}

// ParseCounter reads a cached counter value. Absent or garbled entries count
// as zero rather than failing the request.
func ParseCounter(value string) int64 {
	if value == "" {
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FormatCounter renders a counter for storage
func FormatCounter(n int64) string {
	return strconv.FormatInt(n, 10)
}
