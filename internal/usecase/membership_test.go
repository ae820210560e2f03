package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/forcize/hylo-node"
	"github.com/forcize/hylo-node/internal/domain"
	"github.com/forcize/hylo-node/internal/visibility"
)

type mockMembershipRepo struct {
	members     map[int64][]domain.GroupMembership
	deactivated bool
}

func (m *mockMembershipRepo) AddMembers(ctx context.Context, group domain.Group, userIDs []int64, attrs domain.MembershipAttrs) ([]domain.GroupMembership, error) {
	var out []domain.GroupMembership
	for _, userID := range userIDs {
		dm := domain.GroupMembership{GroupID: group.ID, UserID: userID, Settings: domain.Settings{}}
		dm.ApplyAdd(attrs)
		out = append(out, dm)
	}
	if m.members == nil {
		m.members = map[int64][]domain.GroupMembership{}
	}
	m.members[group.ID] = out
	return out, nil
}

func (m *mockMembershipRepo) UpdateMembers(ctx context.Context, group domain.Group, userIDs []int64, attrs domain.MembershipAttrs) ([]domain.GroupMembership, error) {
	var out []domain.GroupMembership
	for _, dm := range m.members[group.ID] {
		for _, userID := range userIDs {
			if dm.UserID == userID {
				dm.ApplyUpdate(attrs)
				out = append(out, dm)
			}
		}
	}
	m.members[group.ID] = out
	return out, nil
}

func (m *mockMembershipRepo) RemoveMembers(ctx context.Context, group domain.Group, userIDs []int64) ([]domain.GroupMembership, error) {
	inactive := false
	return m.UpdateMembers(ctx, group, userIDs, domain.MembershipAttrs{Active: &inactive})
}

func (m *mockMembershipRepo) Deactivate(ctx context.Context, t domain.DataType, dataID int64) error {
	m.deactivated = true
	return nil
}

func (m *mockMembershipRepo) MembersOf(ctx context.Context, group domain.Group, includeInactive bool) ([]domain.GroupMembership, error) {
	return m.members[group.ID], nil
}

func (m *mockMembershipRepo) List(ctx context.Context, scope visibility.Scope) ([]domain.GroupMembership, error) {
	return nil, nil
}

type mockPublisher struct {
	events []hylo.Event
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, event hylo.Event) error {
	m.events = append(m.events, event)
	return nil
}

func newMembershipFixture() (*MembershipUsecase, *mockGroupRepo, *mockMembershipRepo, *mockMembershipCache, *mockPublisher) {
	groups := &mockGroupRepo{
		groups: map[int64]domain.Group{
			1: {ID: 1, DataType: domain.DataTypeCommunity, DataID: 7, Active: true},
		},
	}
	memberships := &mockMembershipRepo{}
	cache := &mockMembershipCache{ids: map[int64][]int64{}}
	publisher := &mockPublisher{}
	uc := NewMembershipUsecase(groups, memberships, cache, publisher)
	return uc, groups, memberships, cache, publisher
}

func TestMembershipAddPublishesAndInvalidates(t *testing.T) {
	uc, _, _, cache, publisher := newMembershipFixture()
	cache.ids[5] = []int64{1}

	role := domain.RoleModerator
	result, err := uc.AddMembers(context.Background(), domain.DataTypeCommunity, 7, []int64{5, 6}, domain.MembershipAttrs{Role: &role})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(result))
	}
	for _, m := range result {
		if m.Role != domain.RoleModerator || !m.Active {
			t.Fatalf("unexpected membership %+v", m)
		}
	}

	if len(cache.invalidated) != 2 {
		t.Fatalf("expected both users invalidated, got %v", cache.invalidated)
	}
	if len(publisher.events) != 1 || publisher.events[0].Type != hylo.EventMembersAdded {
		t.Fatalf("unexpected events %+v", publisher.events)
	}
}

func TestMembershipAddUnknownGroup(t *testing.T) {
	uc, _, _, _, publisher := newMembershipFixture()

	_, err := uc.AddMembers(context.Background(), domain.DataTypeProject, 99, []int64{5}, domain.MembershipAttrs{})
	if !errors.Is(err, domain.ErrGroupNotFound) {
		t.Fatalf("expected group-not-found, got %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("failed mutation must not publish, got %+v", publisher.events)
	}
}

func TestMembershipRemoveSoftDeletes(t *testing.T) {
	uc, _, memberships, _, publisher := newMembershipFixture()

	if _, err := uc.AddMembers(context.Background(), domain.DataTypeCommunity, 7, []int64{5}, domain.MembershipAttrs{}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	result, err := uc.RemoveMembers(context.Background(), domain.DataTypeCommunity, 7, []int64{5})
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(result) != 1 || result[0].Active {
		t.Fatalf("expected soft-deleted membership, got %+v", result)
	}
	if len(memberships.members[1]) != 1 {
		t.Fatalf("row must survive removal")
	}
	if publisher.events[len(publisher.events)-1].Type != hylo.EventMembersRemoved {
		t.Fatalf("expected removal event")
	}
}

func TestMembershipDeactivate(t *testing.T) {
	uc, _, memberships, cache, publisher := newMembershipFixture()

	if _, err := uc.AddMembers(context.Background(), domain.DataTypeCommunity, 7, []int64{5, 6}, domain.MembershipAttrs{}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	cache.invalidated = nil

	if err := uc.Deactivate(context.Background(), domain.DataTypeCommunity, 7); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if !memberships.deactivated {
		t.Fatalf("expected storage deactivation")
	}
	if len(cache.invalidated) != 2 {
		t.Fatalf("expected member caches dropped, got %v", cache.invalidated)
	}
	if publisher.events[len(publisher.events)-1].Type != hylo.EventGroupDeactivated {
		t.Fatalf("expected deactivation event")
	}
}

func TestMembershipDeactivateUnknownGroup(t *testing.T) {
	uc, _, _, _, _ := newMembershipFixture()

	err := uc.Deactivate(context.Background(), domain.DataTypeNetwork, 42)
	if !errors.Is(err, domain.ErrGroupNotFound) {
		t.Fatalf("expected group-not-found, got %v", err)
	}
}
