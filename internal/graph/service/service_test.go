package service

import (
	"context"
	"errors"
	"testing"

	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
	"github.com/glimmer-social/backend/internal/common/logger"
	notifdomain "github.com/glimmer-social/backend/internal/notification/domain"
	"github.com/glimmer-social/backend/internal/user/domain"
)

type mockUserRepo struct {
	users       map[string]*domain.User
	addFollower func(ctx context.Context, userID, followerID string) (bool, error)
}

func newMockUserRepo(users ...*domain.User) *mockUserRepo {
	m := &mockUserRepo{users: map[string]*domain.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, commonerrors.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, commonerrors.ErrUserNotFound
}

func (m *mockUserRepo) FindByEmailOrUsername(ctx context.Context, v string) (*domain.User, error) {
	return nil, commonerrors.ErrUserNotFound
}

func (m *mockUserRepo) FindProfiles(ctx context.Context, ids []string) ([]domain.Profile, error) {
	profiles := []domain.Profile{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			profiles = append(profiles, u.Profile())
		}
	}
	return profiles, nil
}

func (m *mockUserRepo) FindSuggestions(ctx context.Context, userID string, excluded []string, limit int) ([]domain.Profile, error) {
	skip := map[string]bool{userID: true}
	for _, id := range excluded {
		skip[id] = true
	}
	profiles := []domain.Profile{}
	for id, u := range m.users {
		if !skip[id] && len(profiles) < limit {
			profiles = append(profiles, u.Profile())
		}
	}
	return profiles, nil
}

func (m *mockUserRepo) AddFollower(ctx context.Context, userID, followerID string) (bool, error) {
	if m.addFollower != nil {
		return m.addFollower(ctx, userID, followerID)
	}
	u := m.users[userID]
	for _, f := range u.Followers {
		if f == followerID {
			return false, nil
		}
	}
	u.Followers = append(u.Followers, followerID)
	return true, nil
}

func (m *mockUserRepo) RemoveFollower(ctx context.Context, userID, followerID string) (bool, error) {
	u := m.users[userID]
	for i, f := range u.Followers {
		if f == followerID {
			u.Followers = append(u.Followers[:i], u.Followers[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) AddFollowing(ctx context.Context, userID, followingID string) (bool, error) {
	u := m.users[userID]
	for _, f := range u.Followings {
		if f == followingID {
			return false, nil
		}
	}
	u.Followings = append(u.Followings, followingID)
	return true, nil
}

func (m *mockUserRepo) RemoveFollowing(ctx context.Context, userID, followingID string) (bool, error) {
	u := m.users[userID]
	for i, f := range u.Followings {
		if f == followingID {
			u.Followings = append(u.Followings[:i], u.Followings[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *domain.User) error { return nil }
func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID, hash string) error {
	return nil
}
func (m *mockUserRepo) UpdatePicture(ctx context.Context, userID, url string) error { return nil }
func (m *mockUserRepo) SetVerified(ctx context.Context, userID string) error        { return nil }

type mockNotifRepo struct {
	created []*notifdomain.Notification
	err     error
}

func (m *mockNotifRepo) Create(ctx context.Context, n *notifdomain.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotifRepo) ListByRecipient(ctx context.Context, recipientID string) ([]notifdomain.HydratedNotification, error) {
	return nil, nil
}

type fixedIDs struct{ next int }

func (f *fixedIDs) NewID() (string, error) {
	f.next++
	return "id-" + string(rune('0'+f.next)), nil
}

func newTestGraph(users *mockUserRepo, notifs *mockNotifRepo) *FollowGraph {
	log, _ := logger.New("", "test", "error")
	return NewFollowGraph(users, notifs, &fixedIDs{}, log, 20)
}

func TestFollowAddsBothSidesAndNotifies(t *testing.T) {
	alice := &domain.User{ID: "alice", Username: "alice"}
	bob := &domain.User{ID: "bob", Username: "bob"}
	users := newMockUserRepo(alice, bob)
	notifs := &mockNotifRepo{}
	graph := newTestGraph(users, notifs)

	rel, err := graph.Follow(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("Follow returned error: %v", err)
	}

	if len(bob.Followers) != 1 || bob.Followers[0] != "alice" {
		t.Errorf("expected bob followers [alice], got %v", bob.Followers)
	}
	if len(alice.Followings) != 1 || alice.Followings[0] != "bob" {
		t.Errorf("expected alice followings [bob], got %v", alice.Followings)
	}
	if len(notifs.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifs.created))
	}
	if notifs.created[0].RecipientID != "bob" || notifs.created[0].Type != notifdomain.TypeFollow {
		t.Errorf("unexpected notification: %+v", notifs.created[0])
	}
	if len(rel.Followings) != 1 || rel.Followings[0].ID != "bob" {
		t.Errorf("expected hydrated followings [bob], got %v", rel.Followings)
	}
}

func TestFollowIsIdempotent(t *testing.T) {
	alice := &domain.User{ID: "alice", Username: "alice"}
	bob := &domain.User{ID: "bob", Username: "bob"}
	users := newMockUserRepo(alice, bob)
	notifs := &mockNotifRepo{}
	graph := newTestGraph(users, notifs)

	for i := 0; i < 3; i++ {
		if _, err := graph.Follow(context.Background(), "alice", "bob"); err != nil {
			t.Fatalf("Follow attempt %d returned error: %v", i, err)
		}
	}

	if len(bob.Followers) != 1 {
		t.Errorf("expected exactly 1 follower after repeated follows, got %v", bob.Followers)
	}
	if len(notifs.created) != 1 {
		t.Errorf("expected exactly 1 notification, got %d", len(notifs.created))
	}
}

func TestUnfollowRoundTrip(t *testing.T) {
	alice := &domain.User{ID: "alice", Username: "alice"}
	bob := &domain.User{ID: "bob", Username: "bob"}
	users := newMockUserRepo(alice, bob)
	graph := newTestGraph(users, &mockNotifRepo{})

	if _, err := graph.Follow(context.Background(), "alice", "bob"); err != nil {
		t.Fatalf("Follow returned error: %v", err)
	}
	if _, err := graph.Unfollow(context.Background(), "alice", "bob"); err != nil {
		t.Fatalf("Unfollow returned error: %v", err)
	}

	if len(bob.Followers) != 0 {
		t.Errorf("expected empty followers after unfollow, got %v", bob.Followers)
	}
	if len(alice.Followings) != 0 {
		t.Errorf("expected empty followings after unfollow, got %v", alice.Followings)
	}
}

func TestFollowBackSuppressesNotification(t *testing.T) {
	alice := &domain.User{ID: "alice", Username: "alice"}
	bob := &domain.User{ID: "bob", Username: "bob"}
	users := newMockUserRepo(alice, bob)
	notifs := &mockNotifRepo{}
	graph := newTestGraph(users, notifs)

	if _, err := graph.FollowBack(context.Background(), "bob", "alice"); err != nil {
		t.Fatalf("FollowBack returned error: %v", err)
	}

	if len(alice.Followers) != 1 || alice.Followers[0] != "bob" {
		t.Errorf("expected alice followers [bob], got %v", alice.Followers)
	}
	if len(notifs.created) != 0 {
		t.Errorf("expected no notification from followBack, got %d", len(notifs.created))
	}
}

func TestFollowRejectsSelf(t *testing.T) {
	alice := &domain.User{ID: "alice", Username: "alice"}
	graph := newTestGraph(newMockUserRepo(alice), &mockNotifRepo{})

	if _, err := graph.Follow(context.Background(), "alice", "alice"); !errors.Is(err, commonerrors.ErrSelfFollow) {
		t.Errorf("expected ErrSelfFollow, got %v", err)
	}
}

func TestFollowMissingTarget(t *testing.T) {
	alice := &domain.User{ID: "alice", Username: "alice"}
	graph := newTestGraph(newMockUserRepo(alice), &mockNotifRepo{})

	if _, err := graph.Follow(context.Background(), "alice", "ghost"); !errors.Is(err, commonerrors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFollowSurvivesNotificationFailure(t *testing.T) {
	alice := &domain.User{ID: "alice", Username: "alice"}
	bob := &domain.User{ID: "bob", Username: "bob"}
	users := newMockUserRepo(alice, bob)
	notifs := &mockNotifRepo{err: errors.New("store down")}
	graph := newTestGraph(users, notifs)

	if _, err := graph.Follow(context.Background(), "alice", "bob"); err != nil {
		t.Fatalf("Follow should not fail when the notification write fails, got %v", err)
	}
	if len(bob.Followers) != 1 {
		t.Errorf("expected the edge despite notification failure, got %v", bob.Followers)
	}
}
