package queue

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryQueue implements Queue with in-process state and the same lease
// semantics as the JetStream implementation. It backs local development
// without a NATS server and the pipeline tests.
type MemoryQueue struct {
	mu         sync.Mutex
	visibility time.Duration
	seq        int64
	entries    []*memoryEntry
}

type memoryEntry struct {
	task        *Task
	leasedUntil time.Time
	done        bool
}

// NewMemoryQueue creates a new MemoryQueue with the given visibility timeout
func NewMemoryQueue(visibility time.Duration) *MemoryQueue {
	return &MemoryQueue{visibility: visibility}
}

// Enqueue appends a task
func (q *MemoryQueue) Enqueue(ctx context.Context, name string, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	entry := &memoryEntry{}
	entry.task = &Task{
		ID:      strconv.FormatInt(q.seq, 10),
		Name:    name,
		Payload: payload,
		ack: func(ctx context.Context) error {
			q.mu.Lock()
			defer q.mu.Unlock()
			entry.done = true
			return nil
		},
	}
	q.entries = append(q.entries, entry)
	return nil
}

// Lease claims up to maxTasks tasks whose lease has lapsed. maxWait is part of
// the queue contract but a memory queue never blocks waiting for producers.
func (q *MemoryQueue) Lease(ctx context.Context, maxWait time.Duration, maxTasks int) ([]*Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := time.Now()
	var tasks []*Task
	for _, entry := range q.entries {
		if len(tasks) >= maxTasks {
			break
		}
		if entry.done || now.Before(entry.leasedUntil) {
			continue
		}
		entry.leasedUntil = now.Add(q.visibility)
		tasks = append(tasks, entry.task)
	}
	return tasks, nil
}

// Delete acknowledges the tasks
func (q *MemoryQueue) Delete(ctx context.Context, tasks []*Task) error {
	for _, t := range tasks {
		if err := t.ack(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ExpireLeases makes every unacknowledged task immediately leasable again, as
// if all visibility timeouts had lapsed
func (q *MemoryQueue) ExpireLeases() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, entry := range q.entries {
		entry.leasedUntil = time.Time{}
	}
}

// Pending reports how many tasks are neither acknowledged nor currently leased
func (q *MemoryQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := time.Now()
	n := 0
	for _, entry := range q.entries {
		if !entry.done && !now.Before(entry.leasedUntil) {
			n++
		}
	}
	return n
}
