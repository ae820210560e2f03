package usecase

import (
	"context"

	"github.com/pkg/errors"

	"github.com/forcize/hylo-node/internal/domain"
)

type PostUsecase struct {
	posts   PostRepository
	groups  GroupRepository
	follows FollowRepository
	cache   MembershipCache
}

func NewPostUsecase(
	posts PostRepository,
	groups GroupRepository,
	follows FollowRepository,
	cache MembershipCache,
) *PostUsecase {
	return &PostUsecase{
		posts:   posts,
		groups:  groups,
		follows: follows,
		cache:   cache,
	}
}

// Create stores a post in the given communities, wraps it in a group so
// comment followers can attach to it, and subscribes the author.
func (uc *PostUsecase) Create(ctx context.Context, post domain.Post, communityIDs []int64) (domain.Post, error) {
	created, err := uc.posts.Create(ctx, post, communityIDs)
	if err != nil {
		return domain.Post{}, errors.Wrap(err, "PostUsecase.Create: store failed")
	}

	if _, err := uc.groups.CreateForEntity(ctx, domain.DataTypePost, created.ID); err != nil {
		return domain.Post{}, errors.Wrap(err, "PostUsecase.Create: group provisioning failed")
	}
	if err := uc.follows.Follow(ctx, created.UserID, created.ID, nil); err != nil {
		return domain.Post{}, errors.Wrap(err, "PostUsecase.Create: author follow failed")
	}

	return created, nil
}

// IsVisibleToUser decides single-item access with an ordered cascade,
// stopping at the first grant: public flag, visible ancestor, shared
// community, direct follow, then network containment. Zero ids answer
// false without touching storage.
func (uc *PostUsecase) IsVisibleToUser(ctx context.Context, postID, userID int64) (bool, error) {
	if postID == 0 || userID == 0 {
		return false, nil
	}

	post, err := uc.posts.Find(ctx, postID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, errors.Wrap(err, "PostUsecase.IsVisibleToUser: post lookup failed")
	}

	if post.IsPublic() {
		return true, nil
	}

	if post.ParentPostID != nil {
		visible, err := uc.IsVisibleToUser(ctx, *post.ParentPostID, userID)
		if err != nil {
			return false, err
		}
		if visible {
			return true, nil
		}
	}

	postCommunityIDs, err := uc.posts.CommunityIDs(ctx, postID)
	if err != nil {
		return false, errors.Wrap(err, "PostUsecase.IsVisibleToUser: community lookup failed")
	}

	userCommunityIDs, err := uc.communityIDsForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(intersect(postCommunityIDs, userCommunityIDs)) > 0 {
		return true, nil
	}

	following, err := uc.follows.Exists(ctx, userID, postID)
	if err != nil {
		return false, errors.Wrap(err, "PostUsecase.IsVisibleToUser: follow lookup failed")
	}
	if following {
		return true, nil
	}

	networkIDs, err := uc.groups.ParentNetworkIDs(ctx, postCommunityIDs)
	if err != nil {
		return false, errors.Wrap(err, "PostUsecase.IsVisibleToUser: network lookup failed")
	}
	if len(networkIDs) == 0 {
		return false, nil
	}

	userNetworkIDs, err := uc.groups.PluckIDsForMember(ctx, userID, domain.DataTypeNetwork, nil)
	if err != nil {
		return false, errors.Wrap(err, "PostUsecase.IsVisibleToUser: network membership lookup failed")
	}
	return len(intersect(networkIDs, userNetworkIDs)) > 0, nil
}

func (uc *PostUsecase) communityIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	if uc.cache != nil {
		if ids, ok := uc.cache.CommunityIDs(ctx, userID); ok {
			return ids, nil
		}
	}

	ids, err := uc.groups.PluckIDsForMember(ctx, userID, domain.DataTypeCommunity, nil)
	if err != nil {
		return nil, errors.Wrap(err, "PostUsecase: community membership lookup failed")
	}

	if uc.cache != nil {
		uc.cache.StoreCommunityIDs(ctx, userID, ids)
	}
	return ids, nil
}
