package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forcize/hylo-node/internal/domain"
	"github.com/forcize/hylo-node/internal/infra/database/models"
	"github.com/forcize/hylo-node/internal/visibility"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func postToDomain(m models.Post) domain.Post {
	return domain.Post{
		ID:           m.ID,
		UserID:       m.UserID,
		ParentPostID: m.ParentPostID,
		Visibility:   m.Visibility,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
	}
}

// Find returns the active post with the given id.
func (r *PostRepository) Find(ctx context.Context, id int64) (domain.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		Take(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Post{}, domain.NotFoundError{Resource: "post"}
		}
		return domain.Post{}, err
	}
	return postToDomain(post), nil
}

// Create stores a post and links it into the given communities.
func (r *PostRepository) Create(ctx context.Context, post domain.Post, communityIDs []int64) (domain.Post, error) {
	m := models.Post{
		UserID:       post.UserID,
		ParentPostID: post.ParentPostID,
		Visibility:   post.Visibility,
		Active:       true,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		for _, communityID := range communityIDs {
			link := models.PostMembership{PostID: m.ID, CommunityID: communityID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Post{}, translateConflict("createPost", err)
	}
	return postToDomain(m), nil
}

// CommunityIDs returns the ids of the communities the post belongs to.
func (r *PostRepository) CommunityIDs(ctx context.Context, postID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.PostMembership{}).
		Where("post_id = ?", postID).
		Pluck("community_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// List returns active posts narrowed by the given visibility scope.
func (r *PostRepository) List(ctx context.Context, scope visibility.Scope) ([]domain.Post, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if scope != nil {
		q = scope(q)
	}

	var rows []models.Post
	if err := q.Order("posts.id").Find(&rows).Error; err != nil {
		return nil, err
	}

	posts := make([]domain.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, postToDomain(row))
	}
	return posts, nil
}
