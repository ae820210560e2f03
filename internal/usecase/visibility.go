package usecase

import (
	"context"

	"github.com/forcize/hylo-node/internal/domain"
	"github.com/forcize/hylo-node/internal/visibility"
)

// VisibilityUsecase narrows collection reads to what a viewer may see.
// Filtering can be toggled off wholesale for trusted internal callers.
type VisibilityUsecase struct {
	users       UserRepository
	posts       PostRepository
	comments    CommentRepository
	memberships MembershipRepository
}

func NewVisibilityUsecase(
	users UserRepository,
	posts PostRepository,
	comments CommentRepository,
	memberships MembershipRepository,
) *VisibilityUsecase {
	return &VisibilityUsecase{
		users:       users,
		posts:       posts,
		comments:    comments,
		memberships: memberships,
	}
}

func (uc *VisibilityUsecase) ListPeople(ctx context.Context, viewerID int64, filtered bool) ([]domain.User, error) {
	scope := visibility.Toggle(filtered)(visibility.ForPerson(viewerID))
	return uc.users.List(ctx, scope)
}

func (uc *VisibilityUsecase) ListPosts(ctx context.Context, viewerID int64, filtered bool) ([]domain.Post, error) {
	scope := visibility.Toggle(filtered)(visibility.ForPost(viewerID))
	return uc.posts.List(ctx, scope)
}

func (uc *VisibilityUsecase) ListComments(ctx context.Context, viewerID int64, filtered bool) ([]domain.Comment, error) {
	scope := visibility.Toggle(filtered)(visibility.ForComment(viewerID))
	return uc.comments.List(ctx, scope)
}

func (uc *VisibilityUsecase) ListMemberships(ctx context.Context, viewerID int64, filtered bool) ([]domain.GroupMembership, error) {
	scope := visibility.Toggle(filtered)(visibility.ForMembership(viewerID))
	return uc.memberships.List(ctx, scope)
}
