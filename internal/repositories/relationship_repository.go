package repositories

import (
	"errors"

	"github.com/sajidulbari/loopin/backend/internal/models"
	"gorm.io/gorm"
)

// RelationshipRepository defines the interface for follow-edge data operations
type RelationshipRepository interface {
	CreateRelationship(rel *models.Relationship) error
	SaveAll(rels []*models.Relationship) error
	FindByPair(fromID, toID int64) (*models.Relationship, error)
	Delete(id string) error
	DeleteByPairs(pairs [][2]int64) error
}

// PostgresRelationshipRepository implements RelationshipRepository for PostgreSQL
type PostgresRelationshipRepository struct {
	db *gorm.DB
}

// NewPostgresRelationshipRepository creates a new PostgresRelationshipRepository
func NewPostgresRelationshipRepository(db *gorm.DB) *PostgresRelationshipRepository {
	return &PostgresRelationshipRepository{db: db}
}

// CreateRelationship inserts a single follow edge
func (r *PostgresRelationshipRepository) CreateRelationship(rel *models.Relationship) error {
	return r.db.Create(rel).Error
}

// SaveAll inserts a batch of follow edges in one write
func (r *PostgresRelationshipRepository) SaveAll(rels []*models.Relationship) error {
	if len(rels) == 0 {
		return nil
	}
	return r.db.Create(rels).Error
}

// FindByPair looks an edge up by its ordered (from, to) pair. Returns
// (nil, nil) when no edge exists.
func (r *PostgresRelationshipRepository) FindByPair(fromID, toID int64) (*models.Relationship, error) {
	var rel models.Relationship
	err := r.db.Where("from_id = ? AND to_id = ?", fromID, toID).First(&rel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// Delete removes an edge by id
func (r *PostgresRelationshipRepository) Delete(id string) error {
	return r.db.Delete(&models.Relationship{}, "id = ?", id).Error
}

// DeleteByPairs removes all edges matching the ordered pairs in one statement
func (r *PostgresRelationshipRepository) DeleteByPairs(pairs [][2]int64) error {
	if len(pairs) == 0 {
		return nil
	}
	tuples := make([][]interface{}, 0, len(pairs))
	for _, p := range pairs {
		tuples = append(tuples, []interface{}{p[0], p[1]})
	}
	return r.db.Where("(from_id, to_id) IN ?", tuples).Delete(&models.Relationship{}).Error
}
