package usecase

import (
	"context"
	"testing"

	"github.com/forcize/hylo-node/internal/domain"
	"github.com/forcize/hylo-node/internal/visibility"
)

type mockPostRepo struct {
	posts        map[int64]domain.Post
	communityIDs map[int64][]int64
	findCalls    int
}

func (m *mockPostRepo) Find(ctx context.Context, id int64) (domain.Post, error) {
	m.findCalls++
	post, ok := m.posts[id]
	if !ok {
		return domain.Post{}, domain.NotFoundError{Resource: "post"}
	}
	return post, nil
}

func (m *mockPostRepo) Create(ctx context.Context, post domain.Post, communityIDs []int64) (domain.Post, error) {
	post.ID = int64(len(m.posts) + 1)
	post.Active = true
	if m.posts == nil {
		m.posts = map[int64]domain.Post{}
	}
	m.posts[post.ID] = post
	if m.communityIDs == nil {
		m.communityIDs = map[int64][]int64{}
	}
	m.communityIDs[post.ID] = communityIDs
	return post, nil
}

func (m *mockPostRepo) CommunityIDs(ctx context.Context, postID int64) ([]int64, error) {
	return m.communityIDs[postID], nil
}

func (m *mockPostRepo) List(ctx context.Context, scope visibility.Scope) ([]domain.Post, error) {
	return nil, nil
}

type mockFollowRepo struct {
	follows map[[2]int64]bool
}

func (m *mockFollowRepo) Follow(ctx context.Context, userID, postID int64, addedByID *int64) error {
	if m.follows == nil {
		m.follows = map[[2]int64]bool{}
	}
	m.follows[[2]int64{userID, postID}] = true
	return nil
}

func (m *mockFollowRepo) Unfollow(ctx context.Context, userID, postID int64) error {
	delete(m.follows, [2]int64{userID, postID})
	return nil
}

func (m *mockFollowRepo) Exists(ctx context.Context, userID, postID int64) (bool, error) {
	return m.follows[[2]int64{userID, postID}], nil
}

func (m *mockFollowRepo) Followers(ctx context.Context, postID int64) ([]domain.Follow, error) {
	return nil, nil
}

type mockMembershipCache struct {
	ids         map[int64][]int64
	stores      int
	invalidated []int64
}

func (m *mockMembershipCache) CommunityIDs(ctx context.Context, userID int64) ([]int64, bool) {
	ids, ok := m.ids[userID]
	return ids, ok
}

func (m *mockMembershipCache) StoreCommunityIDs(ctx context.Context, userID int64, ids []int64) {
	if m.ids == nil {
		m.ids = map[int64][]int64{}
	}
	m.ids[userID] = ids
	m.stores++
}

func (m *mockMembershipCache) Invalidate(ctx context.Context, userID int64) {
	delete(m.ids, userID)
	m.invalidated = append(m.invalidated, userID)
}

func newOracleFixture() (*PostUsecase, *mockPostRepo, *mockGroupRepo, *mockFollowRepo) {
	posts := &mockPostRepo{
		posts:        map[int64]domain.Post{},
		communityIDs: map[int64][]int64{},
	}
	groups := &mockGroupRepo{
		memberIDs:    map[int64]map[domain.DataType][]int64{},
		parentNetIDs: map[int64][]int64{},
	}
	follows := &mockFollowRepo{}
	uc := NewPostUsecase(posts, groups, follows, nil)
	return uc, posts, groups, follows
}

func TestIsVisibleMissingIDs(t *testing.T) {
	uc, posts, _, _ := newOracleFixture()

	for _, pair := range [][2]int64{{0, 1}, {1, 0}, {0, 0}} {
		ok, err := uc.IsVisibleToUser(context.Background(), pair[0], pair[1])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Fatalf("expected not visible for ids %v", pair)
		}
	}
	if posts.findCalls != 0 {
		t.Fatalf("missing ids must not touch storage, got %d lookups", posts.findCalls)
	}
}

func TestIsVisibleUnknownPost(t *testing.T) {
	uc, _, _, _ := newOracleFixture()

	ok, err := uc.IsVisibleToUser(context.Background(), 99, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected unknown post to be invisible")
	}
}

func TestIsVisiblePublicPost(t *testing.T) {
	uc, posts, _, _ := newOracleFixture()
	posts.posts[1] = domain.Post{ID: 1, UserID: 5, Visibility: domain.VisibilityPublicReadable, Active: true}

	ok, err := uc.IsVisibleToUser(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected public post to be visible")
	}
}

func TestIsVisibleViaParent(t *testing.T) {
	uc, posts, _, _ := newOracleFixture()
	parentID := int64(1)
	posts.posts[1] = domain.Post{ID: 1, UserID: 5, Visibility: domain.VisibilityPublicReadable, Active: true}
	posts.posts[2] = domain.Post{ID: 2, UserID: 5, ParentPostID: &parentID, Active: true}

	ok, err := uc.IsVisibleToUser(context.Background(), 2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected visibility to inherit from public ancestor")
	}
}

func TestIsVisibleViaCommunity(t *testing.T) {
	uc, posts, groups, _ := newOracleFixture()
	posts.posts[1] = domain.Post{ID: 1, UserID: 5, Active: true}
	posts.communityIDs[1] = []int64{10, 11}
	groups.memberIDs[3] = map[domain.DataType][]int64{
		domain.DataTypeCommunity: {11, 12},
	}

	ok, err := uc.IsVisibleToUser(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected shared community to grant visibility")
	}
}

func TestIsVisibleViaFollow(t *testing.T) {
	uc, posts, _, follows := newOracleFixture()
	posts.posts[1] = domain.Post{ID: 1, UserID: 5, Active: true}
	follows.Follow(context.Background(), 3, 1, nil)

	ok, err := uc.IsVisibleToUser(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected direct follow to grant visibility")
	}
}

func TestIsVisibleViaNetwork(t *testing.T) {
	uc, posts, groups, _ := newOracleFixture()
	posts.posts[1] = domain.Post{ID: 1, UserID: 5, Active: true}
	posts.communityIDs[1] = []int64{10}
	groups.parentNetIDs[10] = []int64{100}
	groups.memberIDs[3] = map[domain.DataType][]int64{
		domain.DataTypeNetwork: {100},
	}

	ok, err := uc.IsVisibleToUser(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected network containment to grant visibility")
	}
}

func TestIsVisibleDeniedByDefault(t *testing.T) {
	uc, posts, groups, _ := newOracleFixture()
	posts.posts[1] = domain.Post{ID: 1, UserID: 5, Active: true}
	posts.communityIDs[1] = []int64{10}
	groups.memberIDs[3] = map[domain.DataType][]int64{
		domain.DataTypeCommunity: {20},
	}

	ok, err := uc.IsVisibleToUser(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected no grant to deny visibility")
	}
}

func TestIsVisibleUsesCache(t *testing.T) {
	posts := &mockPostRepo{
		posts:        map[int64]domain.Post{1: {ID: 1, UserID: 5, Active: true}},
		communityIDs: map[int64][]int64{1: {10}},
	}
	groups := &mockGroupRepo{memberIDs: map[int64]map[domain.DataType][]int64{}}
	cache := &mockMembershipCache{ids: map[int64][]int64{3: {10}}}
	uc := NewPostUsecase(posts, groups, &mockFollowRepo{}, cache)

	ok, err := uc.IsVisibleToUser(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected cached community set to grant visibility")
	}
	if groups.pluckCalls != 0 {
		t.Fatalf("cache hit must not hit storage, got %d plucks", groups.pluckCalls)
	}
}

func TestPostCreateProvisionsGroupAndFollow(t *testing.T) {
	posts := &mockPostRepo{}
	groups := &mockGroupRepo{}
	follows := &mockFollowRepo{}
	uc := NewPostUsecase(posts, groups, follows, nil)

	created, err := uc.Create(context.Background(), domain.Post{UserID: 5}, []int64{10})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if ok, _ := follows.Exists(context.Background(), 5, created.ID); !ok {
		t.Fatalf("expected author to follow own post")
	}
}
