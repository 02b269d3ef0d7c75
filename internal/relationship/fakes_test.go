package relationship

import (
	"context"
	"errors"

	"github.com/sajidulbari/loopin/backend/internal/models"
	"gorm.io/gorm"
)

// In-memory repository fakes for exercising the service and consumer without
// a database.

type fakeUserRepo struct {
	users map[int64]models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[int64]models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) CreateUser(u *models.User) error {
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetUserByID(id int64) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetUsersByIDs(ids []int64) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	for _, u := range r.users {
		if u.FirebaseUID == firebaseUID {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UpdateUser(u *models.User) error {
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) SaveUsers(users []*models.User) error {
	for _, u := range users {
		r.users[u.ID] = *u
	}
	return nil
}

type fakeRelationshipRepo struct {
	rels map[string]models.Relationship
}

func newFakeRelationshipRepo() *fakeRelationshipRepo {
	return &fakeRelationshipRepo{rels: make(map[string]models.Relationship)}
}

// CreateRelationship rejects a second edge for the same ordered pair the way
// the unique index does.
func (r *fakeRelationshipRepo) CreateRelationship(rel *models.Relationship) error {
	for _, existing := range r.rels {
		if existing.FromID == rel.FromID && existing.ToID == rel.ToID {
			return errors.New("duplicate relationship pair")
		}
	}
	r.rels[rel.ID] = *rel
	return nil
}

func (r *fakeRelationshipRepo) SaveAll(rels []*models.Relationship) error {
	for _, rel := range rels {
		if err := r.CreateRelationship(rel); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRelationshipRepo) FindByPair(fromID, toID int64) (*models.Relationship, error) {
	for _, rel := range r.rels {
		if rel.FromID == fromID && rel.ToID == toID {
			rel := rel
			return &rel, nil
		}
	}
	return nil, nil
}

func (r *fakeRelationshipRepo) Delete(id string) error {
	delete(r.rels, id)
	return nil
}

func (r *fakeRelationshipRepo) DeleteByPairs(pairs [][2]int64) error {
	for _, p := range pairs {
		for id, rel := range r.rels {
			if rel.FromID == p[0] && rel.ToID == p[1] {
				delete(r.rels, id)
			}
		}
	}
	return nil
}

func (r *fakeRelationshipRepo) hasPair(fromID, toID int64) bool {
	rel, _ := r.FindByPair(fromID, toID)
	return rel != nil
}

type fakeNotificationRepo struct {
	created []models.Notification
}

func (r *fakeNotificationRepo) CreateNotification(n *models.Notification) error {
	r.created = append(r.created, *n)
	return nil
}

func (r *fakeNotificationRepo) GetByRecipientID(recipientID int64, page, limit int) ([]models.Notification, int64, error) {
	return nil, 0, nil
}

func (r *fakeNotificationRepo) GetUnreadCount(recipientID int64) (int64, error) { return 0, nil }

func (r *fakeNotificationRepo) MarkAsRead(notificationID int64) error { return nil }

func (r *fakeNotificationRepo) MarkAllAsRead(recipientID int64) error { return nil }

type fakeProcessedEventRepo struct {
	marked map[string]bool
}

func newFakeProcessedEventRepo() *fakeProcessedEventRepo {
	return &fakeProcessedEventRepo{marked: make(map[string]bool)}
}

func (r *fakeProcessedEventRepo) FilterProcessed(ctx context.Context, ids []string) (map[string]bool, error) {
	seen := make(map[string]bool)
	for _, id := range ids {
		if r.marked[id] {
			seen[id] = true
		}
	}
	return seen, nil
}

func (r *fakeProcessedEventRepo) MarkProcessed(ctx context.Context, ids []string) error {
	for _, id := range ids {
		r.marked[id] = true
	}
	return nil
}

type fakeNotifier struct {
	sentTokens []string
}

func (n *fakeNotifier) SendFollow(ctx context.Context, targetToken, followerName string) error {
	n.sentTokens = append(n.sentTokens, targetToken)
	return nil
}
