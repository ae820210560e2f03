package repository

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/forcize/hylo-node/internal/domain"
	"github.com/forcize/hylo-node/internal/infra/database/models"
	"github.com/forcize/hylo-node/internal/visibility"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func membershipToDomain(m models.GroupMembership) domain.GroupMembership {
	settings := domain.Settings{}
	if m.Settings != "" {
		// A corrupt settings payload degrades to the empty bag rather
		// than failing the read.
		_ = json.Unmarshal([]byte(m.Settings), &settings)
	}
	return domain.GroupMembership{
		ID:            m.ID,
		GroupID:       m.GroupID,
		UserID:        m.UserID,
		GroupDataType: domain.DataType(m.GroupDataType),
		Role:          domain.Role(m.Role),
		ProjectRoleID: m.ProjectRoleID,
		Following:     m.Following,
		Settings:      settings,
		Active:        m.Active,
		CreatedAt:     m.CreatedAt,
	}
}

func membershipToModel(m domain.GroupMembership) (models.GroupMembership, error) {
	settings := m.Settings
	if settings == nil {
		settings = domain.Settings{}
	}
	serialized, err := json.Marshal(settings)
	if err != nil {
		return models.GroupMembership{}, err
	}
	return models.GroupMembership{
		ID:            m.ID,
		GroupID:       m.GroupID,
		UserID:        m.UserID,
		GroupDataType: int(m.GroupDataType),
		Role:          int(m.Role),
		ProjectRoleID: m.ProjectRoleID,
		Following:     m.Following,
		Settings:      string(serialized),
		Active:        m.Active,
		CreatedAt:     m.CreatedAt,
	}, nil
}

func translateConflict(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ConflictError{Op: op, Err: err}
	}
	return err
}

// AddMembers upserts memberships for the given users: existing rows
// (active or not) get the new role, settings merged on top of theirs,
// and active forced true; missing rows are created. The whole call is
// one transaction and converges to the same state on repeat.
func (r *MembershipRepository) AddMembers(ctx context.Context, group domain.Group, userIDs []int64, attrs domain.MembershipAttrs) ([]domain.GroupMembership, error) {
	var result []domain.GroupMembership

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := loadMemberships(tx, group.ID, userIDs)
		if err != nil {
			return err
		}

		seen := make(map[int64]bool, len(existing))
		for _, row := range existing {
			seen[row.UserID] = true

			dm := membershipToDomain(row)
			dm.ApplyAdd(attrs)
			saved, err := saveMembership(tx, dm)
			if err != nil {
				return err
			}
			result = append(result, saved)
		}

		for _, userID := range userIDs {
			if seen[userID] {
				continue
			}
			dm := domain.GroupMembership{
				GroupID:       group.ID,
				UserID:        userID,
				GroupDataType: group.DataType,
				Settings:      domain.Settings{},
			}
			dm.ApplyAdd(attrs)
			saved, err := createMembership(tx, dm)
			if err != nil {
				return err
			}
			result = append(result, saved)
		}
		return nil
	})
	if err != nil {
		return nil, translateConflict("addMembers", err)
	}
	return result, nil
}

// UpdateMembers mutates existing memberships only; users without a row
// in the group are skipped. Settings reset to the empty bag unless
// provided. One transaction per call.
func (r *MembershipRepository) UpdateMembers(ctx context.Context, group domain.Group, userIDs []int64, attrs domain.MembershipAttrs) ([]domain.GroupMembership, error) {
	var result []domain.GroupMembership

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := loadMemberships(tx, group.ID, userIDs)
		if err != nil {
			return err
		}

		for _, row := range existing {
			dm := membershipToDomain(row)
			dm.ApplyUpdate(attrs)
			saved, err := saveMembership(tx, dm)
			if err != nil {
				return err
			}
			result = append(result, saved)
		}
		return nil
	})
	if err != nil {
		return nil, translateConflict("updateMembers", err)
	}
	return result, nil
}

// RemoveMembers soft-deletes memberships for the given users. Rows are
// kept for auditing and can be reactivated by a later add.
func (r *MembershipRepository) RemoveMembers(ctx context.Context, group domain.Group, userIDs []int64) ([]domain.GroupMembership, error) {
	inactive := false
	return r.UpdateMembers(ctx, group, userIDs, domain.MembershipAttrs{Active: &inactive})
}

// Deactivate marks the group wrapping (dataType, dataID) inactive and
// soft-removes every currently active member, atomically.
func (r *MembershipRepository) Deactivate(ctx context.Context, t domain.DataType, dataID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		err := tx.Where("group_data_type = ? AND group_data_id = ?", int(t), dataID).
			Take(&group).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrGroupNotFound
			}
			return err
		}

		if err := tx.Model(&models.Group{}).
			Where("id = ?", group.ID).
			Update("active", false).Error; err != nil {
			return err
		}

		return tx.Model(&models.GroupMembership{}).
			Where("group_id = ? AND active = ?", group.ID, true).
			Updates(map[string]any{"active": false, "settings": "{}"}).Error
	})
	return translateConflict("deactivate", err)
}

// MembersOf lists the memberships of a group, optionally including
// soft-removed rows.
func (r *MembershipRepository) MembersOf(ctx context.Context, group domain.Group, includeInactive bool) ([]domain.GroupMembership, error) {
	q := r.db.WithContext(ctx).Where("group_id = ?", group.ID)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}

	var rows []models.GroupMembership
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	memberships := make([]domain.GroupMembership, 0, len(rows))
	for _, row := range rows {
		memberships = append(memberships, membershipToDomain(row))
	}
	return memberships, nil
}

// List returns memberships narrowed by the given visibility scope.
func (r *MembershipRepository) List(ctx context.Context, scope visibility.Scope) ([]domain.GroupMembership, error) {
	q := r.db.WithContext(ctx).Model(&models.GroupMembership{})
	if scope != nil {
		q = scope(q)
	}

	var rows []models.GroupMembership
	if err := q.Order("group_memberships.id").Find(&rows).Error; err != nil {
		return nil, err
	}

	memberships := make([]domain.GroupMembership, 0, len(rows))
	for _, row := range rows {
		memberships = append(memberships, membershipToDomain(row))
	}
	return memberships, nil
}

func loadMemberships(tx *gorm.DB, groupID int64, userIDs []int64) ([]models.GroupMembership, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var rows []models.GroupMembership
	err := tx.Where("group_id = ? AND user_id IN ?", groupID, userIDs).
		Find(&rows).Error
	return rows, err
}

func saveMembership(tx *gorm.DB, dm domain.GroupMembership) (domain.GroupMembership, error) {
	model, err := membershipToModel(dm)
	if err != nil {
		return domain.GroupMembership{}, err
	}
	err = tx.Model(&models.GroupMembership{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"role":            model.Role,
			"project_role_id": model.ProjectRoleID,
			"following":       model.Following,
			"settings":        model.Settings,
			"active":          model.Active,
		}).Error
	if err != nil {
		return domain.GroupMembership{}, err
	}
	return dm, nil
}

func createMembership(tx *gorm.DB, dm domain.GroupMembership) (domain.GroupMembership, error) {
	model, err := membershipToModel(dm)
	if err != nil {
		return domain.GroupMembership{}, err
	}
	if err := tx.Create(&model).Error; err != nil {
		return domain.GroupMembership{}, err
	}
	return membershipToDomain(model), nil
}
