package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// JetStreamQueue implements Queue on a NATS JetStream work queue. The stream
// keeps every task until an explicit ack, and AckWait acts as the lease
// visibility timeout: a fetched but unacked task is redelivered to a later
// Lease call once the window elapses.
type JetStreamQueue struct {
	js      nats.JetStreamContext
	sub     *nats.Subscription
	subject string
}

// NewJetStreamQueue creates the stream (idempotently) and binds a durable pull
// consumer to it. subject is the stream's subject prefix; task names become
// subject suffixes under it.
func NewJetStreamQueue(nc *nats.Conn, stream, subject string, visibility time.Duration) (*JetStreamQueue, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:      stream,
		Subjects:  []string{subject + ".*"},
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.FileStorage,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		return nil, fmt.Errorf("add stream %s: %w", stream, err)
	}

	sub, err := js.PullSubscribe(subject+".*", stream+"-consumer",
		nats.AckExplicit(),
		nats.AckWait(visibility),
	)
	if err != nil {
		return nil, fmt.Errorf("pull subscribe %s: %w", subject, err)
	}

	return &JetStreamQueue{js: js, sub: sub, subject: subject}, nil
}

// Enqueue publishes a task under the stream's subject prefix
func (q *JetStreamQueue) Enqueue(ctx context.Context, name string, payload []byte) error {
	_, err := q.js.Publish(q.subject+"."+name, payload, nats.Context(ctx))
	return err
}

// Lease fetches up to maxTasks pending tasks. A fetch timeout means the queue
// is empty and returns no tasks and no error.
func (q *JetStreamQueue) Lease(ctx context.Context, maxWait time.Duration, maxTasks int) ([]*Task, error) {
	msgs, err := q.sub.Fetch(maxTasks, nats.MaxWait(maxWait))
	if err != nil {
		if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, err
	}

	tasks := make([]*Task, 0, len(msgs))
	for _, msg := range msgs {
		msg := msg
		id := msg.Subject
		if meta, err := msg.Metadata(); err == nil {
			id = fmt.Sprintf("%s-%d", meta.Stream, meta.Sequence.Stream)
		}
		tasks = append(tasks, &Task{
			ID:      id,
			Name:    strings.TrimPrefix(msg.Subject, q.subject+"."),
			Payload: msg.Data,
			ack: func(ctx context.Context) error {
				return msg.AckSync(nats.Context(ctx))
			},
		})
	}
	return tasks, nil
}

// Delete acknowledges the tasks so the work queue drops them
func (q *JetStreamQueue) Delete(ctx context.Context, tasks []*Task) error {
	for _, t := range tasks {
		if err := t.ack(ctx); err != nil {
			return fmt.Errorf("ack task %s: %w", t.ID, err)
		}
	}
	return nil
}
