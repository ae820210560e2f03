package usecase

import (
	"context"
	"testing"

	"github.com/forcize/hylo-node/internal/domain"
	"github.com/forcize/hylo-node/internal/visibility"
)

type mockGroupRepo struct {
	groups        map[int64]domain.Group
	memberIDs     map[int64]map[domain.DataType][]int64
	parentNetIDs  map[int64][]int64
	pluckCalls    int
	connectedFrom int64
	connectedTo   int64
}

func (m *mockGroupRepo) CreateForEntity(ctx context.Context, t domain.DataType, dataID int64) (domain.Group, error) {
	return domain.Group{ID: dataID * 100, DataType: t, DataID: dataID, Active: true}, nil
}

func (m *mockGroupRepo) FindByIDAndType(ctx context.Context, t domain.DataType, dataID int64) (domain.Group, error) {
	for _, g := range m.groups {
		if g.DataType == t && g.DataID == dataID {
			return g, nil
		}
	}
	return domain.Group{}, domain.ErrGroupNotFound
}

func (m *mockGroupRepo) GroupData(ctx context.Context, group domain.Group) (domain.GroupEntity, error) {
	return nil, domain.NotFoundError{Resource: "entity"}
}

func (m *mockGroupRepo) ConnectGroups(ctx context.Context, parentGroupID, childGroupID int64) error {
	m.connectedFrom = parentGroupID
	m.connectedTo = childGroupID
	return nil
}

func (m *mockGroupRepo) ChildGroups(ctx context.Context, group domain.Group) ([]domain.Group, error) {
	return nil, nil
}

func (m *mockGroupRepo) ParentGroups(ctx context.Context, group domain.Group) ([]domain.Group, error) {
	return nil, nil
}

func (m *mockGroupRepo) PluckIDsForMember(ctx context.Context, userID int64, t domain.DataType, extra visibility.Scope) ([]int64, error) {
	m.pluckCalls++
	return m.memberIDs[userID][t], nil
}

func (m *mockGroupRepo) HavingExactMembers(ctx context.Context, userIDs []int64, t domain.DataType) ([]domain.Group, error) {
	return nil, nil
}

func (m *mockGroupRepo) ParentNetworkIDs(ctx context.Context, communityIDs []int64) ([]int64, error) {
	var out []int64
	for _, id := range communityIDs {
		out = append(out, m.parentNetIDs[id]...)
	}
	return out, nil
}

func TestAllHaveMemberVacuousTrue(t *testing.T) {
	repo := &mockGroupRepo{}
	uc := NewGroupUsecase(repo)

	ok, err := uc.AllHaveMember(context.Background(), nil, 1, domain.DataTypeCommunity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected vacuous true on empty input")
	}
	if repo.pluckCalls != 0 {
		t.Fatalf("expected no storage calls, got %d", repo.pluckCalls)
	}
}

func TestAllHaveMember(t *testing.T) {
	repo := &mockGroupRepo{
		memberIDs: map[int64]map[domain.DataType][]int64{
			1: {domain.DataTypeCommunity: {10, 20, 30}},
		},
	}
	uc := NewGroupUsecase(repo)

	ok, err := uc.AllHaveMember(context.Background(), []int64{10, 30}, 1, domain.DataTypeCommunity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected member of all listed groups")
	}

	ok, err = uc.AllHaveMember(context.Background(), []int64{10, 40}, 1, domain.DataTypeCommunity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected false when one group is missing")
	}
}

func TestInSameGroupFullIntersection(t *testing.T) {
	// Group 20 is shared by users 1 and 2 only; no group holds all
	// three users at once.
	repo := &mockGroupRepo{
		memberIDs: map[int64]map[domain.DataType][]int64{
			1: {domain.DataTypeCommunity: {10, 20}},
			2: {domain.DataTypeCommunity: {20, 30}},
			3: {domain.DataTypeCommunity: {30, 40}},
		},
	}
	uc := NewGroupUsecase(repo)

	ok, err := uc.InSameGroup(context.Background(), []int64{1, 2}, domain.DataTypeCommunity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected users 1 and 2 to share group 20")
	}

	ok, err = uc.InSameGroup(context.Background(), []int64{1, 2, 3}, domain.DataTypeCommunity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("pairwise overlap must not satisfy the full intersection")
	}
}

func TestInSameGroupEmptyUsers(t *testing.T) {
	uc := NewGroupUsecase(&mockGroupRepo{})

	ok, err := uc.InSameGroup(context.Background(), nil, domain.DataTypeCommunity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected false for empty user list")
	}
}

func TestGroupUsecaseProvision(t *testing.T) {
	repo := &mockGroupRepo{}
	uc := NewGroupUsecase(repo)

	group, err := uc.Provision(context.Background(), domain.Community{ID: 7})
	if err != nil {
		t.Fatalf("provision failed: %v", err)
	}
	if group.DataType != domain.DataTypeCommunity || group.DataID != 7 {
		t.Fatalf("unexpected group %+v", group)
	}
}
