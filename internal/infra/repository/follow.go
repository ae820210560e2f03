package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forcize/hylo-node/internal/domain"
	"github.com/forcize/hylo-node/internal/infra/database/models"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Follow records userID following postID. AddedByID is the user who
// created the follow when someone else added the follower to the
// thread. Repeats are no-ops.
func (r *FollowRepository) Follow(ctx context.Context, userID, postID int64, addedByID *int64) error {
	follow := models.Follow{
		UserID:    userID,
		PostID:    postID,
		AddedByID: addedByID,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error
}

// Unfollow removes the follow edge if present.
func (r *FollowRepository) Unfollow(ctx context.Context, userID, postID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Follow{}).Error
}

// Exists reports whether userID follows postID.
func (r *FollowRepository) Exists(ctx context.Context, userID, postID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Followers returns the follows attached to a post.
func (r *FollowRepository) Followers(ctx context.Context, postID int64) ([]domain.Follow, error) {
	var rows []models.Follow
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("user_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	follows := make([]domain.Follow, 0, len(rows))
	for _, row := range rows {
		follows = append(follows, domain.Follow{
			UserID:    row.UserID,
			PostID:    row.PostID,
			AddedByID: row.AddedByID,
			CreatedAt: row.CreatedAt,
		})
	}
	return follows, nil
}
