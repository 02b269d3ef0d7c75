// Package queue provides the lease-based task queue behind the relationship
// pipeline. Producers enqueue named tasks; a consumer leases a bounded batch
// under a visibility timeout and deletes the tasks it has fully processed.
// Tasks whose lease expires without deletion become leasable again, giving
// at-least-once delivery.
package queue

import (
	"context"
	"time"
)

// Task is one leased queue entry. Name tags the event type carried in Payload.
type Task struct {
	ID      string
	Name    string
	Payload []byte

	ack func(ctx context.Context) error
}

// Queue defines the interface for the lease-based task queue
type Queue interface {
	Enqueue(ctx context.Context, name string, payload []byte) error
	// Lease claims up to maxTasks pending tasks, waiting at most maxWait for
	// the first one. An empty result is a normal outcome, not an error.
	Lease(ctx context.Context, maxWait time.Duration, maxTasks int) ([]*Task, error)
	// Delete acknowledges leased tasks, removing them from the queue
	Delete(ctx context.Context, tasks []*Task) error
}
