package usecase

import (
	"context"

	"github.com/pkg/errors"

	"github.com/forcize/hylo-node/internal/domain"
)

type GroupUsecase struct {
	groups GroupRepository
}

func NewGroupUsecase(groups GroupRepository) *GroupUsecase {
	return &GroupUsecase{groups: groups}
}

// Provision creates (or reactivates) the group row wrapping an entity.
func (uc *GroupUsecase) Provision(ctx context.Context, entity domain.GroupEntity) (domain.Group, error) {
	group, err := uc.groups.CreateForEntity(ctx, entity.GroupDataType(), entity.EntityID())
	if err != nil {
		return domain.Group{}, errors.Wrap(err, "GroupUsecase.Provision: create failed")
	}
	return group, nil
}

func (uc *GroupUsecase) Find(ctx context.Context, t domain.DataType, dataID int64) (domain.Group, error) {
	return uc.groups.FindByIDAndType(ctx, t, dataID)
}

func (uc *GroupUsecase) Data(ctx context.Context, group domain.Group) (domain.GroupEntity, error) {
	return uc.groups.GroupData(ctx, group)
}

func (uc *GroupUsecase) Connect(ctx context.Context, parentGroupID, childGroupID int64) error {
	return uc.groups.ConnectGroups(ctx, parentGroupID, childGroupID)
}

func (uc *GroupUsecase) Children(ctx context.Context, group domain.Group) ([]domain.Group, error) {
	return uc.groups.ChildGroups(ctx, group)
}

func (uc *GroupUsecase) Parents(ctx context.Context, group domain.Group) ([]domain.Group, error) {
	return uc.groups.ParentGroups(ctx, group)
}

// MemberGroupIDs returns the data ids of active groups of the given
// kind the user is an active member of.
func (uc *GroupUsecase) MemberGroupIDs(ctx context.Context, userID int64, t domain.DataType) ([]int64, error) {
	return uc.groups.PluckIDsForMember(ctx, userID, t, nil)
}

// WithExactMembers returns groups of the given kind whose active member
// set equals exactly the input set.
func (uc *GroupUsecase) WithExactMembers(ctx context.Context, userIDs []int64, t domain.DataType) ([]domain.Group, error) {
	return uc.groups.HavingExactMembers(ctx, userIDs, t)
}

// AllHaveMember reports whether every id in groupDataIDs names a group
// of the given kind the user is an active member of. The empty input
// is vacuously true.
func (uc *GroupUsecase) AllHaveMember(ctx context.Context, groupDataIDs []int64, userID int64, t domain.DataType) (bool, error) {
	if len(groupDataIDs) == 0 {
		return true, nil
	}

	memberIDs, err := uc.groups.PluckIDsForMember(ctx, userID, t, nil)
	if err != nil {
		return false, errors.Wrap(err, "GroupUsecase.AllHaveMember: pluck failed")
	}

	member := make(map[int64]bool, len(memberIDs))
	for _, id := range memberIDs {
		member[id] = true
	}
	for _, id := range groupDataIDs {
		if !member[id] {
			return false, nil
		}
	}
	return true, nil
}

// InSameGroup reports whether at least one group of the given kind has
// every listed user as a simultaneously active member. A group shared
// by only a subset of the users does not count.
func (uc *GroupUsecase) InSameGroup(ctx context.Context, userIDs []int64, t domain.DataType) (bool, error) {
	if len(userIDs) == 0 {
		return false, nil
	}

	shared, err := uc.groups.PluckIDsForMember(ctx, userIDs[0], t, nil)
	if err != nil {
		return false, errors.Wrap(err, "GroupUsecase.InSameGroup: pluck failed")
	}

	for _, userID := range userIDs[1:] {
		if len(shared) == 0 {
			return false, nil
		}
		ids, err := uc.groups.PluckIDsForMember(ctx, userID, t, nil)
		if err != nil {
			return false, errors.Wrap(err, "GroupUsecase.InSameGroup: pluck failed")
		}
		shared = intersect(shared, ids)
	}
	return len(shared) > 0, nil
}

func intersect(a, b []int64) []int64 {
	set := make(map[int64]bool, len(b))
	for _, id := range b {
		set[id] = true
	}
	var out []int64
	for _, id := range a {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}
