package repository

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forcize/hylo-node/internal/domain"
	"github.com/forcize/hylo-node/internal/infra/database/models"
	"github.com/forcize/hylo-node/internal/visibility"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func groupToDomain(m models.Group) domain.Group {
	return domain.Group{
		ID:        m.ID,
		DataType:  domain.DataType(m.GroupDataType),
		DataID:    m.GroupDataID,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
	}
}

// CreateForEntity provisions (or reactivates) the group row wrapping a
// concrete entity instance.
func (r *GroupRepository) CreateForEntity(ctx context.Context, t domain.DataType, dataID int64) (domain.Group, error) {
	if !t.Valid() {
		return domain.Group{}, domain.UnknownDataTypeError{Tag: t}
	}

	group := models.Group{
		GroupDataType: int(t),
		GroupDataID:   dataID,
		Active:        true,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_data_type"}, {Name: "group_data_id"}},
		DoUpdates: clause.Assignments(map[string]any{"active": true}),
	}).Create(&group).Error
	if err != nil {
		return domain.Group{}, err
	}

	return groupToDomain(group), nil
}

// FindByIDAndType looks up the group wrapping (dataType, dataID).
func (r *GroupRepository) FindByIDAndType(ctx context.Context, t domain.DataType, dataID int64) (domain.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).
		Where("group_data_type = ? AND group_data_id = ?", int(t), dataID).
		Take(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Group{}, domain.ErrGroupNotFound
		}
		return domain.Group{}, err
	}
	return groupToDomain(group), nil
}

// GroupData resolves the concrete entity a group wraps. The tag switch
// is exhaustive over the registry; anything else is a configuration
// error.
func (r *GroupRepository) GroupData(ctx context.Context, group domain.Group) (domain.GroupEntity, error) {
	db := r.db.WithContext(ctx)
	switch group.DataType {
	case domain.DataTypeCommunity:
		var m models.Community
		if err := db.Where("id = ?", group.DataID).Take(&m).Error; err != nil {
			return nil, translateEntityErr(err, "community")
		}
		return domain.Community{ID: m.ID, Name: m.Name, Slug: m.Slug, Active: m.Active}, nil
	case domain.DataTypeNetwork:
		var m models.Network
		if err := db.Where("id = ?", group.DataID).Take(&m).Error; err != nil {
			return nil, translateEntityErr(err, "network")
		}
		return domain.Network{ID: m.ID, Name: m.Name, Active: m.Active}, nil
	case domain.DataTypeProject:
		var m models.Project
		if err := db.Where("id = ?", group.DataID).Take(&m).Error; err != nil {
			return nil, translateEntityErr(err, "project")
		}
		return domain.Project{ID: m.ID, Name: m.Name, Active: m.Active}, nil
	case domain.DataTypePost:
		var m models.Post
		if err := db.Where("id = ?", group.DataID).Take(&m).Error; err != nil {
			return nil, translateEntityErr(err, "post")
		}
		return domain.Post{
			ID:           m.ID,
			UserID:       m.UserID,
			ParentPostID: m.ParentPostID,
			Visibility:   m.Visibility,
			Active:       m.Active,
			CreatedAt:    m.CreatedAt,
		}, nil
	default:
		return nil, domain.UnknownDataTypeError{Tag: group.DataType}
	}
}

func translateEntityErr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError{Resource: resource}
	}
	return err
}

// ConnectGroups creates a parent/child edge. Self-loops are rejected;
// the graph carries no other acyclicity constraint.
func (r *GroupRepository) ConnectGroups(ctx context.Context, parentGroupID, childGroupID int64) error {
	if parentGroupID == childGroupID {
		return domain.ErrSelfReference
	}
	conn := models.GroupConnection{
		ParentGroupID: parentGroupID,
		ChildGroupID:  childGroupID,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&conn).Error
}

// ChildGroups returns the groups one hop below the given group.
// Self-referential edges are skipped.
func (r *GroupRepository) ChildGroups(ctx context.Context, group domain.Group) ([]domain.Group, error) {
	return r.connectedGroups(ctx, group, "group_connections.parent_group_id", "group_connections.child_group_id")
}

// ParentGroups returns the groups one hop above the given group.
func (r *GroupRepository) ParentGroups(ctx context.Context, group domain.Group) ([]domain.Group, error) {
	return r.connectedGroups(ctx, group, "group_connections.child_group_id", "group_connections.parent_group_id")
}

func (r *GroupRepository) connectedGroups(ctx context.Context, group domain.Group, fromCol, toCol string) ([]domain.Group, error) {
	var rows []models.Group
	err := r.db.WithContext(ctx).
		Model(&models.Group{}).
		Joins("JOIN group_connections ON "+toCol+" = groups.id").
		Where(fromCol+" = ?", group.ID).
		Where(toCol+" <> ?", group.ID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	groups := make([]domain.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, groupToDomain(row))
	}
	return groups, nil
}

// PluckIDsForMember returns the data ids of active groups of the given
// kind in which the user holds an active membership. extra optionally
// narrows the query further. Set semantics, no guaranteed order.
func (r *GroupRepository) PluckIDsForMember(ctx context.Context, userID int64, t domain.DataType, extra visibility.Scope) ([]int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Joins("JOIN groups ON groups.id = group_memberships.group_id").
		Where("group_memberships.user_id = ? AND group_memberships.active = ?", userID, true).
		Where("groups.active = ? AND groups.group_data_type = ?", true, int(t))
	if extra != nil {
		q = extra(q)
	}

	var ids []int64
	if err := q.Pluck("groups.group_data_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// HavingExactMembers returns groups of the given kind whose active
// member set equals exactly the input set. Groups with extra or missing
// members do not match.
func (r *GroupRepository) HavingExactMembers(ctx context.Context, userIDs []int64, t domain.DataType) ([]domain.Group, error) {
	sorted := make([]int64, len(userIDs))
	copy(sorted, userIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	expected := "{" + strings.Join(parts, ",") + "}"

	var rows []models.Group
	err := r.db.WithContext(ctx).
		Model(&models.Group{}).
		Joins("JOIN group_memberships ON group_memberships.group_id = groups.id").
		Where("group_memberships.active = ?", true).
		Where("groups.group_data_type = ?", int(t)).
		Group("groups.id").
		Having("array_agg(group_memberships.user_id ORDER BY group_memberships.user_id) = ?::bigint[]", expected).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	groups := make([]domain.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, groupToDomain(row))
	}
	return groups, nil
}

// ParentNetworkIDs returns the data ids of active networks one hop
// above the given communities.
func (r *GroupRepository) ParentNetworkIDs(ctx context.Context, communityIDs []int64) ([]int64, error) {
	if len(communityIDs) == 0 {
		return nil, nil
	}

	var ids []int64
	err := r.db.WithContext(ctx).
		Table("groups AS community_groups").
		Joins("JOIN group_connections ON group_connections.child_group_id = community_groups.id").
		Joins("JOIN groups AS network_groups ON network_groups.id = group_connections.parent_group_id").
		Where("community_groups.group_data_type = ? AND community_groups.group_data_id IN ?", int(domain.DataTypeCommunity), communityIDs).
		Where("network_groups.group_data_type = ? AND network_groups.active = ?", int(domain.DataTypeNetwork), true).
		Pluck("network_groups.group_data_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
