package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forcize/hylo-node/internal/infra/database/models"
)

type BlockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// Block records userID blocking blockedUserID. Repeats are no-ops.
func (r *BlockRepository) Block(ctx context.Context, userID, blockedUserID int64) error {
	block := models.BlockedUser{
		UserID:        userID,
		BlockedUserID: blockedUserID,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&block).Error
}

// Unblock removes the block edge if present.
func (r *BlockRepository) Unblock(ctx context.Context, userID, blockedUserID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND blocked_user_id = ?", userID, blockedUserID).
		Delete(&models.BlockedUser{}).Error
}

// ExistsEither reports whether a block exists in either direction
// between the two users. Visibility checks treat blocks as symmetric.
func (r *BlockRepository) ExistsEither(ctx context.Context, userID, otherUserID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BlockedUser{}).
		Where("(user_id = ? AND blocked_user_id = ?) OR (user_id = ? AND blocked_user_id = ?)",
			userID, otherUserID, otherUserID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
