// Package notifier delivers push notifications for relationship events.
// Delivery is best-effort: a failed push never affects the write that
// triggered it.
package notifier

import (
	"context"

	"firebase.google.com/go/v4/messaging"
)

// Notifier defines the interface for outbound push delivery
type Notifier interface {
	SendFollow(ctx context.Context, targetToken, followerName string) error
}

// FCMNotifier implements Notifier on Firebase Cloud Messaging
type FCMNotifier struct {
	client *messaging.Client
}

// NewFCMNotifier creates a new FCMNotifier
func NewFCMNotifier(client *messaging.Client) *FCMNotifier {
	return &FCMNotifier{client: client}
}

// SendFollow pushes a "started following you" notification to the device token
func (n *FCMNotifier) SendFollow(ctx context.Context, targetToken, followerName string) error {
	msg := &messaging.Message{
		Token: targetToken,
		Data: map[string]string{
			"type":          "follow",
			"follower_name": followerName,
		},
	}
	_, err := n.client.Send(ctx, msg)
	return err
}
