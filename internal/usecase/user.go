package usecase

import (
	"context"

	"github.com/pkg/errors"

	"github.com/forcize/hylo-node/internal/domain"
)

// UserUsecase covers the direct social graph between people: blocks,
// connections, and explicit post follows. These edges feed the
// visibility filters, so mutations here change what reads return.
type UserUsecase struct {
	users       UserRepository
	blocks      BlockRepository
	connections ConnectionRepository
	follows     FollowRepository
}

func NewUserUsecase(
	users UserRepository,
	blocks BlockRepository,
	connections ConnectionRepository,
	follows FollowRepository,
) *UserUsecase {
	return &UserUsecase{
		users:       users,
		blocks:      blocks,
		connections: connections,
		follows:     follows,
	}
}

func (uc *UserUsecase) Find(ctx context.Context, id int64) (domain.User, error) {
	user, err := uc.users.Find(ctx, id)
	if err != nil {
		return domain.User{}, errors.Wrap(err, "failed to find user")
	}
	return user, nil
}

// Block hides the two users from each other in filtered reads. The
// edge is directional in storage but symmetric in effect.
func (uc *UserUsecase) Block(ctx context.Context, userID, blockedUserID int64) error {
	if userID == blockedUserID {
		return domain.ErrSelfReference
	}
	if _, err := uc.users.Find(ctx, blockedUserID); err != nil {
		return errors.Wrap(err, "failed to find blocked user")
	}
	if err := uc.blocks.Block(ctx, userID, blockedUserID); err != nil {
		return errors.Wrap(err, "failed to create block")
	}
	return nil
}

func (uc *UserUsecase) Unblock(ctx context.Context, userID, blockedUserID int64) error {
	if err := uc.blocks.Unblock(ctx, userID, blockedUserID); err != nil {
		return errors.Wrap(err, "failed to remove block")
	}
	return nil
}

func (uc *UserUsecase) IsBlocked(ctx context.Context, userID, otherUserID int64) (bool, error) {
	blocked, err := uc.blocks.ExistsEither(ctx, userID, otherUserID)
	if err != nil {
		return false, errors.Wrap(err, "failed to check block")
	}
	return blocked, nil
}

// Connect records a direct relationship between two users, typically
// written when a connection message is delivered.
func (uc *UserUsecase) Connect(ctx context.Context, userID, otherUserID int64, connType string) error {
	if userID == otherUserID {
		return domain.ErrSelfReference
	}
	if _, err := uc.users.Find(ctx, otherUserID); err != nil {
		return errors.Wrap(err, "failed to find connection target")
	}
	if err := uc.connections.Connect(ctx, userID, otherUserID, connType); err != nil {
		return errors.Wrap(err, "failed to create connection")
	}
	return nil
}

// FollowPost subscribes a user to a post. addedByID is set when
// someone else added the follower, nil for self-follows.
func (uc *UserUsecase) FollowPost(ctx context.Context, userID, postID int64, addedByID *int64) error {
	if err := uc.follows.Follow(ctx, userID, postID, addedByID); err != nil {
		return errors.Wrap(err, "failed to create follow")
	}
	return nil
}

func (uc *UserUsecase) UnfollowPost(ctx context.Context, userID, postID int64) error {
	if err := uc.follows.Unfollow(ctx, userID, postID); err != nil {
		return errors.Wrap(err, "failed to remove follow")
	}
	return nil
}

func (uc *UserUsecase) PostFollowers(ctx context.Context, postID int64) ([]domain.Follow, error) {
	followers, err := uc.follows.Followers(ctx, postID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list followers")
	}
	return followers, nil
}
