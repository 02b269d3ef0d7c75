package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "counter_follower:42", FollowerCounterKey(42))
	assert.Equal(t, "counter_following:42", FollowingCounterKey(42))
	assert.Equal(t, "filter_follower:42", FollowerFilterKey(42))
	assert.Equal(t, "filter_following:42", FollowingFilterKey(42))
}

func TestParseCounter(t *testing.T) {
	assert.Equal(t, int64(0), ParseCounter(""))
	assert.Equal(t, int64(0), ParseCounter("not a number"))
	assert.Equal(t, int64(7), ParseCounter("7"))
	assert.Equal(t, int64(-1), ParseCounter("-1"))
}

func TestFormatCounterRoundTrip(t *testing.T) {
	assert.Equal(t, int64(123), ParseCounter(FormatCounter(123)))
}
