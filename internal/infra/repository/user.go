package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/forcize/hylo-node/internal/domain"
	"github.com/forcize/hylo-node/internal/infra/database/models"
	"github.com/forcize/hylo-node/internal/visibility"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func userToDomain(m models.User) domain.User {
	return domain.User{
		ID:        m.ID,
		Name:      m.Name,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
	}
}

// Find returns the active user with the given id.
func (r *UserRepository) Find(ctx context.Context, id int64) (domain.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, err
	}
	return userToDomain(user), nil
}

// List returns active users narrowed by the given visibility scope.
func (r *UserRepository) List(ctx context.Context, scope visibility.Scope) ([]domain.User, error) {
	q := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("users.active = ?", true)
	if scope != nil {
		q = scope(q)
	}

	var rows []models.User
	if err := q.Order("users.id").Find(&rows).Error; err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, userToDomain(row))
	}
	return users, nil
}
