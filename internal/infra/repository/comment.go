package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/forcize/hylo-node/internal/domain"
	"github.com/forcize/hylo-node/internal/infra/database/models"
	"github.com/forcize/hylo-node/internal/visibility"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func commentToDomain(m models.Comment) domain.Comment {
	return domain.Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		UserID:    m.UserID,
		Text:      m.Text,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
	}
}

// Create stores a comment on a post.
func (r *CommentRepository) Create(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	m := models.Comment{
		PostID: comment.PostID,
		UserID: comment.UserID,
		Text:   comment.Text,
		Active: true,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Comment{}, translateConflict("createComment", err)
	}
	return commentToDomain(m), nil
}

// List returns active comments narrowed by the given visibility scope.
func (r *CommentRepository) List(ctx context.Context, scope visibility.Scope) ([]domain.Comment, error) {
	q := r.db.WithContext(ctx).Model(&models.Comment{})
	if scope != nil {
		q = scope(q)
	}

	var rows []models.Comment
	if err := q.Order("comments.id").Find(&rows).Error; err != nil {
		return nil, err
	}

	comments := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, commentToDomain(row))
	}
	return comments, nil
}
