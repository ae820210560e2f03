package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forcize/hylo-node/internal/infra/database/models"
)

type ConnectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// Connect records a direct relationship of the given type between two
// users, e.g. an exchanged message. Repeats are no-ops.
func (r *ConnectionRepository) Connect(ctx context.Context, userID, otherUserID int64, connType string) error {
	conn := models.UserConnection{
		UserID:      userID,
		OtherUserID: otherUserID,
		Type:        connType,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&conn).Error
}
