package relationship

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sajidulbari/loopin/backend/internal/cache"
	"github.com/sajidulbari/loopin/backend/internal/idgen"
	"github.com/sajidulbari/loopin/backend/internal/models"
	"github.com/sajidulbari/loopin/backend/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type consumerEnv struct {
	queue         *queue.MemoryQueue
	users         *fakeUserRepo
	relationships *fakeRelationshipRepo
	processed     *fakeProcessedEventRepo
	store         *cache.MemoryStore
	consumer      *Consumer
}

func newConsumerEnv(t *testing.T, users ...models.User) *consumerEnv {
	t.Helper()
	gen, err := idgen.NewSnowflake(1)
	require.NoError(t, err)

	env := &consumerEnv{
		queue:         queue.NewMemoryQueue(time.Hour),
		users:         newFakeUserRepo(users...),
		relationships: newFakeRelationshipRepo(),
		processed:     newFakeProcessedEventRepo(),
		store:         cache.NewMemoryStore(),
	}
	env.consumer = NewConsumer(env.queue, env.users, env.relationships, env.processed, env.store, gen)
	env.consumer.SetLeaseBounds(DefaultLeaseTasks, 0)
	return env
}

func (env *consumerEnv) enqueueFollow(t *testing.T, fromID, toID int64) {
	t.Helper()
	data, err := json.Marshal(FollowPayload{FromUserID: fromID, ToUserID: toID, EnqueuedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, env.queue.Enqueue(context.Background(), EventFollow, data))
}

func (env *consumerEnv) enqueueUnfollow(t *testing.T, fromID, toID int64) {
	t.Helper()
	data, err := json.Marshal(UnfollowPayload{FromUserID: fromID, ToUserID: toID, EnqueuedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, env.queue.Enqueue(context.Background(), EventUnfollow, data))
}

func TestProcessOnceEmptyQueue(t *testing.T) {
	env := newConsumerEnv(t)

	n, err := env.consumer.ProcessOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestProcessOnceAppliesNetFollowerDelta(t *testing.T) {
	env := newConsumerEnv(t,
		models.User{ID: 1},
		models.User{ID: 2, FollowerCount: 10},
		models.User{ID: 3},
		models.User{ID: 4},
	)
	ctx := context.Background()
	env.enqueueFollow(t, 1, 2)
	env.enqueueFollow(t, 3, 2)
	env.enqueueFollow(t, 4, 2)

	n, err := env.consumer.ProcessOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int64(13), env.users.users[2].FollowerCount)
	assert.True(t, env.relationships.hasPair(1, 2))
	assert.True(t, env.relationships.hasPair(3, 2))
	assert.True(t, env.relationships.hasPair(4, 2))
	assert.Equal(t, 0, env.queue.Pending())

	counter, _, err := env.store.Get(ctx, cache.FollowerCounterKey(2))
	require.NoError(t, err)
	assert.Equal(t, "13", counter)
}

func TestProcessOnceFollowThenUnfollowSamePairCancels(t *testing.T) {
	env := newConsumerEnv(t,
		models.User{ID: 1},
		models.User{ID: 2, FollowerCount: 5},
	)
	env.enqueueFollow(t, 1, 2)
	env.enqueueUnfollow(t, 1, 2)

	n, err := env.consumer.ProcessOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(5), env.users.users[2].FollowerCount)
	assert.False(t, env.relationships.hasPair(1, 2))
	assert.Equal(t, 0, env.queue.Pending())
}

func TestProcessOnceSkipsMalformedTasks(t *testing.T) {
	env := newConsumerEnv(t,
		models.User{ID: 1},
		models.User{ID: 2},
	)
	ctx := context.Background()
	require.NoError(t, env.queue.Enqueue(ctx, EventFollow, []byte("not json")))
	require.NoError(t, env.queue.Enqueue(ctx, "Block", []byte("{}")))
	env.enqueueFollow(t, 1, 2)

	n, err := env.consumer.ProcessOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int64(1), env.users.users[2].FollowerCount)
	assert.True(t, env.relationships.hasPair(1, 2))
	// Malformed and unknown tasks are dropped, not redelivered forever.
	assert.Equal(t, 0, env.queue.Pending())
}

// flakyAckQueue fails acknowledgements on demand to force a redelivery.
type flakyAckQueue struct {
	*queue.MemoryQueue
	failDelete bool
}

func (q *flakyAckQueue) Delete(ctx context.Context, tasks []*queue.Task) error {
	if q.failDelete {
		return errors.New("connection lost")
	}
	return q.MemoryQueue.Delete(ctx, tasks)
}

func TestRedeliveredBatchIsNotAppliedTwice(t *testing.T) {
	gen, err := idgen.NewSnowflake(1)
	require.NoError(t, err)

	flaky := &flakyAckQueue{MemoryQueue: queue.NewMemoryQueue(time.Hour), failDelete: true}
	users := newFakeUserRepo(models.User{ID: 1}, models.User{ID: 2})
	rels := newFakeRelationshipRepo()
	processed := newFakeProcessedEventRepo()
	consumer := NewConsumer(flaky, users, rels, processed, cache.NewMemoryStore(), gen)
	consumer.SetLeaseBounds(DefaultLeaseTasks, 0)

	ctx := context.Background()
	data, err := json.Marshal(FollowPayload{FromUserID: 1, ToUserID: 2, EnqueuedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, flaky.Enqueue(ctx, EventFollow, data))

	// First attempt persists the batch and its markers but cannot acknowledge.
	_, err = consumer.ProcessOnce(ctx)
	require.Error(t, err)
	assert.Equal(t, int64(1), users.users[2].FollowerCount)

	// The visibility timeout lapses and the same batch is delivered again.
	flaky.failDelete = false
	flaky.ExpireLeases()

	n, err := consumer.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(1), users.users[2].FollowerCount)
	assert.Len(t, rels.rels, 1)
	assert.Equal(t, 0, flaky.Pending())
}
