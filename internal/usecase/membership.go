package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/forcize/hylo-node"
	"github.com/forcize/hylo-node/internal/domain"
)

var tracer = otel.Tracer("membership")

type MembershipUsecase struct {
	groups      GroupRepository
	memberships MembershipRepository
	cache       MembershipCache
	signal      EventPublisher
}

func NewMembershipUsecase(
	groups GroupRepository,
	memberships MembershipRepository,
	cache MembershipCache,
	signal EventPublisher,
) *MembershipUsecase {
	return &MembershipUsecase{
		groups:      groups,
		memberships: memberships,
		cache:       cache,
		signal:      signal,
	}
}

// AddMembers upserts memberships in the group wrapping (t, dataID) and
// announces the change. Safe to repeat with the same input.
func (uc *MembershipUsecase) AddMembers(ctx context.Context, t domain.DataType, dataID int64, userIDs []int64, attrs domain.MembershipAttrs) ([]domain.GroupMembership, error) {
	ctx, span := tracer.Start(ctx, "Membership.Usecase.AddMembers")
	defer span.End()

	group, err := uc.groups.FindByIDAndType(ctx, t, dataID)
	if err != nil {
		return nil, errors.Wrap(err, "MembershipUsecase.AddMembers: group lookup failed")
	}

	result, err := uc.memberships.AddMembers(ctx, group, userIDs, attrs)
	if err != nil {
		return nil, errors.Wrap(err, "MembershipUsecase.AddMembers: upsert failed")
	}

	uc.afterMutation(ctx, hylo.EventMembersAdded, group.ID, userIDs)
	return result, nil
}

// UpdateMembers mutates existing memberships only and announces the
// change. Users without a membership in the group are skipped.
func (uc *MembershipUsecase) UpdateMembers(ctx context.Context, t domain.DataType, dataID int64, userIDs []int64, attrs domain.MembershipAttrs) ([]domain.GroupMembership, error) {
	ctx, span := tracer.Start(ctx, "Membership.Usecase.UpdateMembers")
	defer span.End()

	group, err := uc.groups.FindByIDAndType(ctx, t, dataID)
	if err != nil {
		return nil, errors.Wrap(err, "MembershipUsecase.UpdateMembers: group lookup failed")
	}

	result, err := uc.memberships.UpdateMembers(ctx, group, userIDs, attrs)
	if err != nil {
		return nil, errors.Wrap(err, "MembershipUsecase.UpdateMembers: update failed")
	}

	uc.afterMutation(ctx, hylo.EventMembersUpdated, group.ID, userIDs)
	return result, nil
}

// RemoveMembers soft-deletes memberships and announces the change.
func (uc *MembershipUsecase) RemoveMembers(ctx context.Context, t domain.DataType, dataID int64, userIDs []int64) ([]domain.GroupMembership, error) {
	ctx, span := tracer.Start(ctx, "Membership.Usecase.RemoveMembers")
	defer span.End()

	group, err := uc.groups.FindByIDAndType(ctx, t, dataID)
	if err != nil {
		return nil, errors.Wrap(err, "MembershipUsecase.RemoveMembers: group lookup failed")
	}

	result, err := uc.memberships.RemoveMembers(ctx, group, userIDs)
	if err != nil {
		return nil, errors.Wrap(err, "MembershipUsecase.RemoveMembers: remove failed")
	}

	uc.afterMutation(ctx, hylo.EventMembersRemoved, group.ID, userIDs)
	return result, nil
}

// Deactivate marks the group inactive and soft-removes every active
// member. Member caches are dropped before the mutation so a racing
// read repopulates from the post-mutation state.
func (uc *MembershipUsecase) Deactivate(ctx context.Context, t domain.DataType, dataID int64) error {
	ctx, span := tracer.Start(ctx, "Membership.Usecase.Deactivate")
	defer span.End()

	group, err := uc.groups.FindByIDAndType(ctx, t, dataID)
	if err != nil {
		return err
	}

	members, err := uc.memberships.MembersOf(ctx, group, false)
	if err != nil {
		return errors.Wrap(err, "MembershipUsecase.Deactivate: member listing failed")
	}

	userIDs := make([]int64, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}

	if err := uc.memberships.Deactivate(ctx, t, dataID); err != nil {
		return err
	}

	uc.afterMutation(ctx, hylo.EventGroupDeactivated, group.ID, userIDs)
	return nil
}

// MembersOf lists memberships in the group wrapping (t, dataID).
func (uc *MembershipUsecase) MembersOf(ctx context.Context, t domain.DataType, dataID int64, includeInactive bool) ([]domain.GroupMembership, error) {
	group, err := uc.groups.FindByIDAndType(ctx, t, dataID)
	if err != nil {
		return nil, err
	}
	return uc.memberships.MembersOf(ctx, group, includeInactive)
}

func (uc *MembershipUsecase) afterMutation(ctx context.Context, eventType string, groupID int64, userIDs []int64) {
	if uc.cache != nil {
		for _, userID := range userIDs {
			uc.cache.Invalidate(ctx, userID)
		}
	}

	if uc.signal == nil {
		return
	}
	event := hylo.Event{
		Channel:   hylo.ChannelMemberships,
		Type:      eventType,
		GroupID:   groupID,
		UserIDs:   userIDs,
		Timestamp: time.Now(),
	}
	if err := uc.signal.Publish(ctx, hylo.ChannelMemberships, event); err != nil {
		slog.ErrorContext(
			ctx, "Failed to publish membership event",
			slog.String("error", err.Error()),
			slog.String("module", "membership"),
		)
	}
}
