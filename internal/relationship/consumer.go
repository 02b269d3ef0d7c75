package relationship

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/sajidulbari/loopin/backend/internal/cache"
	"github.com/sajidulbari/loopin/backend/internal/idgen"
	"github.com/sajidulbari/loopin/backend/internal/models"
	"github.com/sajidulbari/loopin/backend/internal/queue"
	"github.com/sajidulbari/loopin/backend/internal/repositories"
)

const (
	// DefaultLeaseTasks is the per-invocation lease bound
	DefaultLeaseTasks = 500
	// DefaultLeaseWait bounds how long one invocation waits for a first task
	DefaultLeaseWait = 5 * time.Second
)

// Consumer drains queued relationship events in batches. One invocation
// leases a bounded batch, aggregates the events into net changes, applies
// them to the store in batch writes, refreshes the follower counters in the
// cache tier, and only then acknowledges the lease. A crash before the
// acknowledgement redelivers the whole batch after the visibility timeout;
// the processed-event markers keep the replay from applying deltas twice.
type Consumer struct {
	queue         queue.Queue
	users         repositories.UserRepository
	relationships repositories.RelationshipRepository
	processed     repositories.ProcessedEventRepository
	store         cache.Store
	idgen         idgen.Generator

	leaseTasks int
	leaseWait  time.Duration
}

// NewConsumer creates a new Consumer with the default lease bounds
func NewConsumer(
	q queue.Queue,
	users repositories.UserRepository,
	relationships repositories.RelationshipRepository,
	processed repositories.ProcessedEventRepository,
	store cache.Store,
	gen idgen.Generator,
) *Consumer {
	return &Consumer{
		queue:         q,
		users:         users,
		relationships: relationships,
		processed:     processed,
		store:         store,
		idgen:         gen,
		leaseTasks:    DefaultLeaseTasks,
		leaseWait:     DefaultLeaseWait,
	}
}

// SetLeaseBounds overrides the lease size and first-task wait
func (c *Consumer) SetLeaseBounds(tasks int, wait time.Duration) {
	c.leaseTasks = tasks
	c.leaseWait = wait
}

// ProcessOnce runs one lease-process-acknowledge cycle and reports how many
// tasks were drained. An empty queue is a normal outcome and returns (0, nil).
func (c *Consumer) ProcessOnce(ctx context.Context) (int, error) {
	tasks, err := c.queue.Lease(ctx, c.leaseWait, c.leaseTasks)
	if err != nil {
		return 0, fmt.Errorf("lease tasks: %w", err)
	}
	if len(tasks) == 0 {
		log.Println("Relationship queue has no tasks available for lease.")
		return 0, nil
	}

	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	seen := map[string]bool{}
	if c.processed != nil {
		if seen, err = c.processed.FilterProcessed(ctx, ids); err != nil {
			return 0, fmt.Errorf("filter processed events: %w", err)
		}
	}

	var (
		pendingRels []*models.Relationship
		deletePairs [][2]int64
		appliedIDs  []string
		deltas      = map[int64]int64{}
	)

	for _, task := range tasks {
		if seen[task.ID] {
			log.Printf("Skipping already-processed task %s", task.ID)
			continue
		}

		switch task.Name {
		case EventFollow:
			var payload FollowPayload
			if err := json.Unmarshal(task.Payload, &payload); err != nil {
				log.Printf("Skipping malformed %s task %s: %v", task.Name, task.ID, err)
				continue
			}
			pendingRels = append(pendingRels, &models.Relationship{
				ID:          strconv.FormatInt(c.idgen.GenerateID(), 10),
				FromID:      payload.FromUserID,
				ToID:        payload.ToUserID,
				DisplayName: payload.FromDisplayName,
				AvatarURL:   payload.FromAvatarImage.URL,
				CreatedAt:   time.Now(),
			})
			deltas[payload.ToUserID]++
			appliedIDs = append(appliedIDs, task.ID)

		case EventUnfollow:
			var payload UnfollowPayload
			if err := json.Unmarshal(task.Payload, &payload); err != nil {
				log.Printf("Skipping malformed %s task %s: %v", task.Name, task.ID, err)
				continue
			}
			deletePairs = append(deletePairs, [2]int64{payload.FromUserID, payload.ToUserID})
			deltas[payload.ToUserID]--
			appliedIDs = append(appliedIDs, task.ID)

		default:
			log.Printf("Skipping task %s with unknown name %q", task.ID, task.Name)
		}
	}

	// Events against the same user collapse into one net follower delta, so a
	// follow and unfollow of the same pair within a batch cancel out.
	affectedIDs := make([]int64, 0, len(deltas))
	for id, delta := range deltas {
		if delta != 0 {
			affectedIDs = append(affectedIDs, id)
		}
	}

	affected, err := c.users.GetUsersByIDs(affectedIDs)
	if err != nil {
		return 0, fmt.Errorf("load affected users: %w", err)
	}

	// This path adjusts follower counts only; following counts are owned by
	// the direct write path.
	mutated := make([]*models.User, 0, len(affected))
	for i := range affected {
		user := &affected[i]
		user.FollowerCount += deltas[user.ID]
		mutated = append(mutated, user)
	}

	if err := c.relationships.SaveAll(pendingRels); err != nil {
		return 0, fmt.Errorf("save relationships: %w", err)
	}
	if err := c.users.SaveUsers(mutated); err != nil {
		return 0, fmt.Errorf("save users: %w", err)
	}
	if err := c.relationships.DeleteByPairs(deletePairs); err != nil {
		return 0, fmt.Errorf("delete relationships: %w", err)
	}

	// Reconcile the cached follower counters from the rows just persisted.
	counters := make(map[string]string, len(mutated))
	for _, user := range mutated {
		counters[cache.FollowerCounterKey(user.ID)] = cache.FormatCounter(user.FollowerCount)
	}
	if err := c.store.PutAll(ctx, counters); err != nil {
		log.Printf("Failed to refresh follower counters: %v", err)
	}

	if c.processed != nil {
		if err := c.processed.MarkProcessed(ctx, appliedIDs); err != nil {
			return 0, fmt.Errorf("mark processed events: %w", err)
		}
	}

	if err := c.queue.Delete(ctx, tasks); err != nil {
		return 0, fmt.Errorf("acknowledge tasks: %w", err)
	}

	log.Printf("Processed and deleted %d tasks from the relationship queue (max: %d).", len(tasks), c.leaseTasks)
	return len(tasks), nil
}

// Run invokes ProcessOnce on the given interval until the context is canceled
func (c *Consumer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.ProcessOnce(ctx); err != nil {
				log.Printf("Relationship batch failed: %v", err)
			}
		}
	}
}
