package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
	"github.com/glimmer-social/backend/internal/common/logger"
	notifdomain "github.com/glimmer-social/backend/internal/notification/domain"
	"github.com/glimmer-social/backend/internal/post/domain"
	userdomain "github.com/glimmer-social/backend/internal/user/domain"
)

type mockPostRepo struct {
	posts map[string]*domain.Post
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: map[string]*domain.Post{}}
}

func (m *mockPostRepo) Create(ctx context.Context, post *domain.Post) error {
	copied := *post
	m.posts[post.ID] = &copied
	return nil
}

func (m *mockPostRepo) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, commonerrors.ErrPostNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockPostRepo) FindByAuthors(ctx context.Context, authorIDs []string) ([]domain.Post, error) {
	wanted := map[string]bool{}
	for _, id := range authorIDs {
		wanted[id] = true
	}
	result := []domain.Post{}
	for _, p := range m.posts {
		if wanted[p.AuthorID] && !p.IsDeleted {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockPostRepo) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	p, ok := m.posts[postID]
	if !ok || p.IsDeleted || p.Likes[userID] {
		return false, nil
	}
	if p.Likes == nil {
		p.Likes = map[string]bool{}
	}
	p.Likes[userID] = true
	return true, nil
}

func (m *mockPostRepo) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	p, ok := m.posts[postID]
	if !ok || p.IsDeleted || !p.Likes[userID] {
		return false, nil
	}
	delete(p.Likes, userID)
	return true, nil
}

func (m *mockPostRepo) AddComment(ctx context.Context, postID string, comment domain.Comment) error {
	p, ok := m.posts[postID]
	if !ok || p.IsDeleted {
		return commonerrors.ErrPostNotFound
	}
	p.Comments = append([]domain.Comment{comment}, p.Comments...)
	return nil
}

func (m *mockPostRepo) SoftDelete(ctx context.Context, postID string) error {
	p, ok := m.posts[postID]
	if !ok || p.IsDeleted {
		return commonerrors.ErrPostNotFound
	}
	p.IsDeleted = true
	return nil
}

type mockUserRepo struct {
	users map[string]*userdomain.User
}

func (m *mockUserRepo) Create(ctx context.Context, user *userdomain.User) error { return nil }

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*userdomain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, commonerrors.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	return nil, commonerrors.ErrUserNotFound
}

func (m *mockUserRepo) FindByEmailOrUsername(ctx context.Context, v string) (*userdomain.User, error) {
	return nil, commonerrors.ErrUserNotFound
}

func (m *mockUserRepo) FindProfiles(ctx context.Context, ids []string) ([]userdomain.Profile, error) {
	profiles := []userdomain.Profile{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			profiles = append(profiles, u.Profile())
		}
	}
	return profiles, nil
}

func (m *mockUserRepo) FindSuggestions(ctx context.Context, userID string, excluded []string, limit int) ([]userdomain.Profile, error) {
	return nil, nil
}

func (m *mockUserRepo) AddFollower(ctx context.Context, userID, followerID string) (bool, error) {
	return false, nil
}
func (m *mockUserRepo) RemoveFollower(ctx context.Context, userID, followerID string) (bool, error) {
	return false, nil
}
func (m *mockUserRepo) AddFollowing(ctx context.Context, userID, followingID string) (bool, error) {
	return false, nil
}
func (m *mockUserRepo) RemoveFollowing(ctx context.Context, userID, followingID string) (bool, error) {
	return false, nil
}
func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *userdomain.User) error { return nil }
func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID, hash string) error  { return nil }
func (m *mockUserRepo) UpdatePicture(ctx context.Context, userID, url string) error    { return nil }
func (m *mockUserRepo) SetVerified(ctx context.Context, userID string) error           { return nil }

type mockNotifRepo struct {
	created []*notifdomain.Notification
}

func (m *mockNotifRepo) Create(ctx context.Context, n *notifdomain.Notification) error {
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotifRepo) ListByRecipient(ctx context.Context, recipientID string) ([]notifdomain.HydratedNotification, error) {
	return nil, nil
}

type seqIDs struct{ n int }

func (s *seqIDs) NewID() (string, error) {
	s.n++
	return fmt.Sprintf("id-%03d", s.n), nil
}

type fixture struct {
	svc    *Service
	posts  *mockPostRepo
	users  *mockUserRepo
	notifs *mockNotifRepo
}

func newFixture(users ...*userdomain.User) *fixture {
	userRepo := &mockUserRepo{users: map[string]*userdomain.User{}}
	for _, u := range users {
		userRepo.users[u.ID] = u
	}
	postRepo := newMockPostRepo()
	notifRepo := &mockNotifRepo{}
	log, _ := logger.New("", "test", "error")
	return &fixture{
		svc:    New(postRepo, userRepo, notifRepo, &seqIDs{}, log),
		posts:  postRepo,
		users:  userRepo,
		notifs: notifRepo,
	}
}

func (f *fixture) seedPost(id, authorID, content string, createdAt time.Time) *domain.Post {
	p := &domain.Post{
		ID:        id,
		AuthorID:  authorID,
		Content:   content,
		Likes:     map[string]bool{},
		Comments:  []domain.Comment{},
		CreatedAt: createdAt,
	}
	f.posts.posts[id] = p
	return p
}

func TestGetFeedIncludesSelfAndFollowingsOnly(t *testing.T) {
	alice := &userdomain.User{ID: "alice", Username: "alice", Followings: []string{"bob"}}
	bob := &userdomain.User{ID: "bob", Username: "bob"}
	carol := &userdomain.User{ID: "carol", Username: "carol"}
	f := newFixture(alice, bob, carol)

	base := time.Now()
	f.seedPost("p1", "alice", "mine", base.Add(-3*time.Minute))
	f.seedPost("p2", "bob", "followed", base.Add(-2*time.Minute))
	f.seedPost("p3", "carol", "stranger", base.Add(-1*time.Minute))

	feed, err := f.svc.GetFeed(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetFeed returned error: %v", err)
	}

	if len(feed) != 2 {
		t.Fatalf("expected 2 posts in feed, got %d", len(feed))
	}
	for _, p := range feed {
		if p.AuthorID == "carol" {
			t.Errorf("feed contains post from unfollowed author: %+v", p)
		}
	}
}

func TestGetFeedOrdersNewestFirst(t *testing.T) {
	alice := &userdomain.User{ID: "alice", Username: "alice", Followings: []string{"bob"}}
	bob := &userdomain.User{ID: "bob", Username: "bob"}
	f := newFixture(alice, bob)

	base := time.Now()
	f.seedPost("old", "alice", "old", base.Add(-2*time.Hour))
	f.seedPost("mid", "bob", "mid", base.Add(-time.Hour))
	f.seedPost("new", "alice", "new", base)

	feed, err := f.svc.GetFeed(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetFeed returned error: %v", err)
	}

	wantOrder := []string{"new", "mid", "old"}
	for i, want := range wantOrder {
		if feed[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, feed[i].ID)
		}
	}
}

func TestGetFeedExcludesDeletedPosts(t *testing.T) {
	alice := &userdomain.User{ID: "alice", Username: "alice"}
	f := newFixture(alice)

	f.seedPost("kept", "alice", "kept", time.Now())
	deleted := f.seedPost("gone", "alice", "gone", time.Now())
	deleted.IsDeleted = true

	feed, err := f.svc.GetFeed(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetFeed returned error: %v", err)
	}
	if len(feed) != 1 || feed[0].ID != "kept" {
		t.Errorf("expected only the non-deleted post, got %+v", feed)
	}

	// The record itself stays retrievable.
	if _, err := f.posts.FindByID(context.Background(), "gone"); err != nil {
		t.Errorf("deleted post should remain readable as a record: %v", err)
	}
}

func TestCreatePostRejectsEmptyContent(t *testing.T) {
	alice := &userdomain.User{ID: "alice", Username: "alice"}
	f := newFixture(alice)

	if _, err := f.svc.CreatePost(context.Background(), "alice", "   ", ""); !errors.Is(err, commonerrors.ErrEmptyContent) {
		t.Errorf("expected ErrEmptyContent, got %v", err)
	}
}

func TestLikeToggleRoundTrip(t *testing.T) {
	alice := &userdomain.User{ID: "alice", Username: "alice"}
	bob := &userdomain.User{ID: "bob", Username: "bob"}
	f := newFixture(alice, bob)
	f.seedPost("p1", "bob", "hello", time.Now())

	if _, err := f.svc.LikePost(context.Background(), "p1", "alice"); err != nil {
		t.Fatalf("first toggle returned error: %v", err)
	}
	if !f.posts.posts["p1"].Likes["alice"] {
		t.Fatal("expected like after first toggle")
	}

	if _, err := f.svc.LikePost(context.Background(), "p1", "alice"); err != nil {
		t.Fatalf("second toggle returned error: %v", err)
	}
	if f.posts.posts["p1"].Likes["alice"] {
		t.Error("expected like removed after second toggle")
	}

	if len(f.notifs.created) != 1 {
		t.Errorf("expected exactly 1 like notification across the toggle pair, got %d", len(f.notifs.created))
	}
}

func TestLikeOwnPostNotifiesAuthor(t *testing.T) {
	bob := &userdomain.User{ID: "bob", Username: "bob"}
	f := newFixture(bob)
	f.seedPost("p1", "bob", "hello", time.Now())

	if _, err := f.svc.LikePost(context.Background(), "p1", "bob"); err != nil {
		t.Fatalf("LikePost returned error: %v", err)
	}
	if len(f.notifs.created) != 1 {
		t.Fatalf("expected 1 like notification on the like-adding transition, got %d", len(f.notifs.created))
	}
	n := f.notifs.created[0]
	if n.RecipientID != "bob" || n.ActorID != "bob" {
		t.Errorf("unexpected notification parties: %+v", n)
	}
}

func TestPostCommentPrependsAndNotifies(t *testing.T) {
	alice := &userdomain.User{ID: "alice", Username: "alice"}
	bob := &userdomain.User{ID: "bob", Username: "bob"}
	f := newFixture(alice, bob)
	f.seedPost("p1", "bob", "hello", time.Now())

	if _, err := f.svc.PostComment(context.Background(), "p1", "alice", "first"); err != nil {
		t.Fatalf("PostComment returned error: %v", err)
	}
	hydrated, err := f.svc.PostComment(context.Background(), "p1", "alice", "second")
	if err != nil {
		t.Fatalf("PostComment returned error: %v", err)
	}

	if len(hydrated.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(hydrated.Comments))
	}
	if hydrated.Comments[0].Content != "second" {
		t.Errorf("expected newest comment first, got %q", hydrated.Comments[0].Content)
	}
	if hydrated.Comments[0].AuthorUsername != "alice" {
		t.Errorf("expected hydrated comment author, got %q", hydrated.Comments[0].AuthorUsername)
	}
	if len(f.notifs.created) != 2 {
		t.Errorf("expected a notification per comment, got %d", len(f.notifs.created))
	}
}

func TestDeletePostRequiresAuthor(t *testing.T) {
	alice := &userdomain.User{ID: "alice", Username: "alice"}
	bob := &userdomain.User{ID: "bob", Username: "bob"}
	f := newFixture(alice, bob)
	f.seedPost("p1", "bob", "hello", time.Now())

	if err := f.svc.DeletePost(context.Background(), "p1", "alice"); !errors.Is(err, commonerrors.ErrNotPostAuthor) {
		t.Fatalf("expected ErrNotPostAuthor, got %v", err)
	}
	if err := f.svc.DeletePost(context.Background(), "p1", "bob"); err != nil {
		t.Fatalf("author delete returned error: %v", err)
	}
	if !f.posts.posts["p1"].IsDeleted {
		t.Error("expected post soft-deleted")
	}
}
