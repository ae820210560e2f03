package usecase

import (
	"context"

	"github.com/forcize/hylo-node"
	"github.com/forcize/hylo-node/internal/domain"
	"github.com/forcize/hylo-node/internal/visibility"
)

// GroupRepository defines persistence/lookup for the group graph.
type GroupRepository interface {
	CreateForEntity(ctx context.Context, t domain.DataType, dataID int64) (domain.Group, error)
	FindByIDAndType(ctx context.Context, t domain.DataType, dataID int64) (domain.Group, error)
	GroupData(ctx context.Context, group domain.Group) (domain.GroupEntity, error)
	ConnectGroups(ctx context.Context, parentGroupID, childGroupID int64) error
	ChildGroups(ctx context.Context, group domain.Group) ([]domain.Group, error)
	ParentGroups(ctx context.Context, group domain.Group) ([]domain.Group, error)
	PluckIDsForMember(ctx context.Context, userID int64, t domain.DataType, extra visibility.Scope) ([]int64, error)
	HavingExactMembers(ctx context.Context, userIDs []int64, t domain.DataType) ([]domain.Group, error)
	ParentNetworkIDs(ctx context.Context, communityIDs []int64) ([]int64, error)
}

// MembershipRepository defines the membership lifecycle storage operations.
type MembershipRepository interface {
	AddMembers(ctx context.Context, group domain.Group, userIDs []int64, attrs domain.MembershipAttrs) ([]domain.GroupMembership, error)
	UpdateMembers(ctx context.Context, group domain.Group, userIDs []int64, attrs domain.MembershipAttrs) ([]domain.GroupMembership, error)
	RemoveMembers(ctx context.Context, group domain.Group, userIDs []int64) ([]domain.GroupMembership, error)
	Deactivate(ctx context.Context, t domain.DataType, dataID int64) error
	MembersOf(ctx context.Context, group domain.Group, includeInactive bool) ([]domain.GroupMembership, error)
	List(ctx context.Context, scope visibility.Scope) ([]domain.GroupMembership, error)
}

// PostRepository defines persistence/lookup for posts.
type PostRepository interface {
	Find(ctx context.Context, id int64) (domain.Post, error)
	Create(ctx context.Context, post domain.Post, communityIDs []int64) (domain.Post, error)
	CommunityIDs(ctx context.Context, postID int64) ([]int64, error)
	List(ctx context.Context, scope visibility.Scope) ([]domain.Post, error)
}

// UserRepository defines persistence/lookup for users.
type UserRepository interface {
	Find(ctx context.Context, id int64) (domain.User, error)
	List(ctx context.Context, scope visibility.Scope) ([]domain.User, error)
}

// CommentRepository defines persistence/lookup for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	List(ctx context.Context, scope visibility.Scope) ([]domain.Comment, error)
}

// FollowRepository defines the post-follow edge operations.
type FollowRepository interface {
	Follow(ctx context.Context, userID, postID int64, addedByID *int64) error
	Unfollow(ctx context.Context, userID, postID int64) error
	Exists(ctx context.Context, userID, postID int64) (bool, error)
	Followers(ctx context.Context, postID int64) ([]domain.Follow, error)
}

// BlockRepository defines the user-block edge operations.
type BlockRepository interface {
	Block(ctx context.Context, userID, blockedUserID int64) error
	Unblock(ctx context.Context, userID, blockedUserID int64) error
	ExistsEither(ctx context.Context, userID, otherUserID int64) (bool, error)
}

// ConnectionRepository records direct user relationships.
type ConnectionRepository interface {
	Connect(ctx context.Context, userID, otherUserID int64, connType string) error
}

// MembershipCache caches a viewer's community-id set for the hot
// visibility path. Misses report ok=false; errors from the backing
// store are swallowed by implementations.
type MembershipCache interface {
	CommunityIDs(ctx context.Context, userID int64) ([]int64, bool)
	StoreCommunityIDs(ctx context.Context, userID int64, ids []int64)
	Invalidate(ctx context.Context, userID int64)
}

// EventPublisher fans lifecycle events out to realtime subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event hylo.Event) error
}
