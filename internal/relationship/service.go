// Package relationship implements the follow-graph pipeline: the synchronous
// direct write path, the queued event envelopes, and the lease-based batch
// consumer that reconciles queued changes into the store and cache tier.
package relationship

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sajidulbari/loopin/backend/internal/cache"
	"github.com/sajidulbari/loopin/backend/internal/models"
	"github.com/sajidulbari/loopin/backend/internal/notifier"
	"github.com/sajidulbari/loopin/backend/internal/queue"
	"github.com/sajidulbari/loopin/backend/internal/repositories"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when the followed user does not exist
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyFollowing is returned for a duplicate follow of the same user
	ErrAlreadyFollowing = errors.New("already following this user")
)

// Service is the direct write path for follow and unfollow: it mutates the
// membership filters, counter cache and relationship store synchronously
// within one request. The persistent store is the source of truth; cache
// writes are best-effort and may drift until a later write reconciles them.
type Service struct {
	users         repositories.UserRepository
	relationships repositories.RelationshipRepository
	notifications repositories.NotificationRepository
	store         cache.Store
	filters       *cache.FilterStore
	notifier      notifier.Notifier
	queue         queue.Queue
}

// NewService creates a new Service. notifications, notifier and queue may be
// nil when the corresponding collaborator is not configured.
func NewService(
	users repositories.UserRepository,
	relationships repositories.RelationshipRepository,
	notifications repositories.NotificationRepository,
	store cache.Store,
	n notifier.Notifier,
	q queue.Queue,
) *Service {
	return &Service{
		users:         users,
		relationships: relationships,
		notifications: notifications,
		store:         store,
		filters:       cache.NewFilterStore(store),
		notifier:      n,
		queue:         q,
	}
}

// Follow creates the requester → target edge synchronously. Returns
// ErrUserNotFound when either user is missing and ErrAlreadyFollowing when
// the requester's following filter already holds the edge.
func (s *Service) Follow(ctx context.Context, requesterID, targetID int64) error {
	loaded, err := s.users.GetUsersByIDs([]int64{requesterID, targetID})
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	var requester, target *models.User
	for i := range loaded {
		switch loaded[i].ID {
		case requesterID:
			requester = &loaded[i]
		case targetID:
			target = &loaded[i]
		}
	}
	if requester == nil || target == nil {
		return ErrUserNotFound
	}

	followingKey := cache.FollowingFilterKey(requesterID)
	filter, err := s.filters.Load(ctx, followingKey)
	if err != nil {
		return fmt.Errorf("load following filter: %w", err)
	}
	edgeKey := models.RelationshipKey(requesterID, targetID)
	if filter.Contains(edgeKey) {
		return ErrAlreadyFollowing
	}

	requester.FollowingCount++
	target.FollowerCount++

	rel := &models.Relationship{
		ID:          models.RelationshipID(requesterID, targetID),
		FromID:      requesterID,
		ToID:        targetID,
		DisplayName: requester.DisplayName,
		AvatarURL:   requester.AvatarURL,
		CreatedAt:   time.Now(),
	}

	if err := s.users.SaveUsers([]*models.User{requester, target}); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	if err := s.relationships.CreateRelationship(rel); err != nil {
		return fmt.Errorf("create relationship: %w", err)
	}

	// The row is persisted; a failed filter write only widens the cache drift
	// window until the next mutation of this namespace.
	if err := s.filters.Insert(ctx, followingKey, edgeKey); err != nil {
		log.Printf("Failed to update following filter for user %d: %v", requesterID, err)
	}

	if s.notifications != nil {
		n := &models.Notification{
			Type:        "follow",
			ActorID:     requesterID,
			RecipientID: targetID,
			Message:     requester.DisplayName + " started following you",
		}
		if err := s.notifications.CreateNotification(n); err != nil {
			log.Printf("Failed to create follow notification for user %d: %v", targetID, err)
		}
	}
	if s.notifier != nil && target.FcmToken != "" {
		if err := s.notifier.SendFollow(ctx, target.FcmToken, requester.DisplayName); err != nil {
			log.Printf("Failed to push follow notification to user %d: %v", targetID, err)
		}
	}

	return nil
}

// Unfollow removes the requester → target edge synchronously. All four cache
// entries for the pair travel in one fetch and one write. Unfollowing a pair
// with no persisted edge is a no-op, not an error.
func (s *Service) Unfollow(ctx context.Context, requesterID, targetID int64) error {
	followerCounterKey := cache.FollowerCounterKey(targetID)
	followingCounterKey := cache.FollowingCounterKey(requesterID)
	followerFilterKey := cache.FollowerFilterKey(targetID)
	followingFilterKey := cache.FollowingFilterKey(requesterID)
	edgeKey := models.RelationshipKey(requesterID, targetID)

	keys := []string{followerCounterKey, followingCounterKey, followerFilterKey, followingFilterKey}
	err := s.store.Update(ctx, keys, func(current map[string]string) (map[string]string, error) {
		followerFilter, err := cache.DecodeFilterOrNew(current[followerFilterKey])
		if err != nil {
			return nil, err
		}
		followingFilter, err := cache.DecodeFilterOrNew(current[followingFilterKey])
		if err != nil {
			return nil, err
		}
		followerFilter.Delete(edgeKey)
		followingFilter.Delete(edgeKey)

		// Counters are decremented without a floor; the batch consumer
		// rewrites them from the persisted counts.
		return map[string]string{
			followerCounterKey:  cache.FormatCounter(cache.ParseCounter(current[followerCounterKey]) - 1),
			followingCounterKey: cache.FormatCounter(cache.ParseCounter(current[followingCounterKey]) - 1),
			followerFilterKey:   followerFilter.Encode(),
			followingFilterKey:  followingFilter.Encode(),
		}, nil
	})
	if err != nil {
		return fmt.Errorf("update relationship caches: %w", err)
	}

	rel, err := s.relationships.FindByPair(requesterID, targetID)
	if err != nil {
		return fmt.Errorf("find relationship: %w", err)
	}
	if rel == nil {
		return nil
	}
	if err := s.relationships.Delete(rel.ID); err != nil {
		return fmt.Errorf("delete relationship: %w", err)
	}
	return nil
}

// EnqueueFollow queues a follow event for the batch consumer instead of
// writing it synchronously
func (s *Service) EnqueueFollow(ctx context.Context, requesterID, targetID int64) error {
	requester, err := s.users.GetUserByID(requesterID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("load requester: %w", err)
	}

	payload := FollowPayload{
		FromUserID:      requesterID,
		ToUserID:        targetID,
		FromDisplayName: requester.DisplayName,
		FromAvatarImage: models.AvatarImage{URL: requester.AvatarURL},
		EnqueuedAt:      time.Now(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal follow event: %w", err)
	}
	return s.queue.Enqueue(ctx, EventFollow, data)
}

// EnqueueUnfollow queues an unfollow event for the batch consumer
func (s *Service) EnqueueUnfollow(ctx context.Context, requesterID, targetID int64) error {
	payload := UnfollowPayload{
		FromUserID: requesterID,
		ToUserID:   targetID,
		EnqueuedAt: time.Now(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal unfollow event: %w", err)
	}
	return s.queue.Enqueue(ctx, EventUnfollow, data)
}
