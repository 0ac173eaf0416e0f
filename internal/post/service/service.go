package service

import (
	"context"
	"strings"
	"time"

	"github.com/glimmer-social/backend/internal/common/constants"
	"github.com/glimmer-social/backend/internal/common/crypto"
	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
	"github.com/glimmer-social/backend/internal/common/logger"
	notifdomain "github.com/glimmer-social/backend/internal/notification/domain"
	notifrepo "github.com/glimmer-social/backend/internal/notification/repository"
	"github.com/glimmer-social/backend/internal/observability/metrics"
	"github.com/glimmer-social/backend/internal/post/domain"
	postrepo "github.com/glimmer-social/backend/internal/post/repository"
	userdomain "github.com/glimmer-social/backend/internal/user/domain"
	userrepo "github.com/glimmer-social/backend/internal/user/repository"
)

const (
	likeNotificationText    = "Liked your post"
	commentNotificationText = "Commented on your post"
)

type Service struct {
	posts         postrepo.Repository
	users         userrepo.Repository
	notifications notifrepo.Repository
	ids           crypto.IDGenerator
	log           *logger.Logger
}

func New(
	posts postrepo.Repository,
	users userrepo.Repository,
	notifications notifrepo.Repository,
	ids crypto.IDGenerator,
	log *logger.Logger,
) *Service {
	return &Service{
		posts:         posts,
		users:         users,
		notifications: notifications,
		ids:           ids,
		log:           log,
	}
}

// GetFeed composes the timeline: the user's own posts plus posts of everyone
// they follow, non-deleted only, newest first.
func (s *Service) GetFeed(ctx context.Context, userID string) ([]domain.HydratedPost, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	authors := append([]string{userID}, user.Followings...)
	posts, err := s.posts.FindByAuthors(ctx, authors)
	if err != nil {
		return nil, err
	}

	metrics.FeedRequestsTotal.Inc()
	return s.hydrate(ctx, posts)
}

func (s *Service) GetUserPosts(ctx context.Context, userID string) ([]domain.HydratedPost, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	posts, err := s.posts.FindByAuthors(ctx, []string{userID})
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, posts)
}

func (s *Service) CreatePost(ctx context.Context, authorID, content, imageURL string) (*domain.HydratedPost, error) {
	content = strings.TrimSpace(content)
	if content == "" && imageURL == "" {
		return nil, commonerrors.ErrEmptyContent
	}
	if len(content) > constants.MaxPostLength {
		return nil, commonerrors.ErrContentTooLong
	}
	if _, err := s.users.FindByID(ctx, authorID); err != nil {
		return nil, err
	}

	id, err := s.ids.NewID()
	if err != nil {
		return nil, commonerrors.ErrInternalError.WithCause(err)
	}

	post := &domain.Post{
		ID:        id,
		AuthorID:  authorID,
		Content:   content,
		ImageURL:  imageURL,
		Likes:     map[string]bool{},
		Comments:  []domain.Comment{},
		CreatedAt: time.Now(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	metrics.PostsCreatedTotal.Inc()

	stored, err := s.posts.FindByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return s.hydrateOne(ctx, stored)
}

// LikePost toggles the actor's like. The like notification fires only on the
// like-adding transition, the author's own likes included. The response is the
// author's full re-hydrated post list, matching the shape the clients expect.
func (s *Service) LikePost(ctx context.Context, postID, actorID string) ([]domain.HydratedPost, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.IsDeleted {
		return nil, commonerrors.ErrPostNotFound
	}

	if post.LikedBy(actorID) {
		if _, err := s.posts.RemoveLike(ctx, postID, actorID); err != nil {
			return nil, err
		}
		metrics.PostLikeTogglesTotal.WithLabelValues("unlike").Inc()
	} else {
		added, err := s.posts.AddLike(ctx, postID, actorID)
		if err != nil {
			return nil, err
		}
		metrics.PostLikeTogglesTotal.WithLabelValues("like").Inc()
		if added {
			s.notify(ctx, notifdomain.TypeLike, post.AuthorID, actorID, postID, likeNotificationText)
		}
	}

	posts, err := s.posts.FindByAuthors(ctx, []string{post.AuthorID})
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, posts)
}

// PostComment prepends the comment and returns the single re-hydrated post.
func (s *Service) PostComment(ctx context.Context, postID, actorID, text string) (*domain.HydratedPost, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, commonerrors.ErrEmptyContent
	}
	if len(text) > constants.MaxCommentLength {
		return nil, commonerrors.ErrContentTooLong
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.IsDeleted {
		return nil, commonerrors.ErrPostNotFound
	}

	id, err := s.ids.NewID()
	if err != nil {
		return nil, commonerrors.ErrInternalError.WithCause(err)
	}

	comment := domain.Comment{
		ID:        id,
		AuthorID:  actorID,
		Content:   text,
		CreatedAt: time.Now(),
	}
	if err := s.posts.AddComment(ctx, postID, comment); err != nil {
		return nil, err
	}

	metrics.CommentsCreatedTotal.Inc()
	s.notify(ctx, notifdomain.TypeComment, post.AuthorID, actorID, postID, commentNotificationText)

	stored, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.hydrateOne(ctx, stored)
}

// DeletePost soft-deletes; only the post's author may delete it.
func (s *Service) DeletePost(ctx context.Context, postID, actorID string) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.IsDeleted {
		return commonerrors.ErrPostNotFound
	}
	if post.AuthorID != actorID {
		return commonerrors.ErrNotPostAuthor
	}

	if err := s.posts.SoftDelete(ctx, postID); err != nil {
		return err
	}
	metrics.PostsDeletedTotal.Inc()
	return nil
}

func (s *Service) hydrateOne(ctx context.Context, post *domain.Post) (*domain.HydratedPost, error) {
	hydrated, err := s.hydrate(ctx, []domain.Post{*post})
	if err != nil {
		return nil, err
	}
	if len(hydrated) == 0 {
		return nil, commonerrors.ErrPostNotFound
	}
	return &hydrated[0], nil
}

// hydrate attaches author projections to posts and their comments in one
// batch profile lookup.
func (s *Service) hydrate(ctx context.Context, posts []domain.Post) ([]domain.HydratedPost, error) {
	seen := map[string]bool{}
	ids := []string{}
	collect := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, p := range posts {
		collect(p.AuthorID)
		for _, c := range p.Comments {
			collect(c.AuthorID)
		}
	}

	profiles, err := s.users.FindProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := map[string]userdomain.Profile{}
	for _, p := range profiles {
		byID[p.ID] = p
	}

	result := make([]domain.HydratedPost, 0, len(posts))
	for _, p := range posts {
		author := byID[p.AuthorID]
		h := domain.HydratedPost{
			ID:             p.ID,
			AuthorID:       p.AuthorID,
			AuthorUsername: author.Username,
			AuthorPicture:  author.PictureURL,
			Content:        p.Content,
			ImageURL:       p.ImageURL,
			Likes:          p.Likes,
			Comments:       make([]domain.HydratedComment, 0, len(p.Comments)),
			CreatedAt:      p.CreatedAt,
		}
		for _, c := range p.Comments {
			ca := byID[c.AuthorID]
			h.Comments = append(h.Comments, domain.HydratedComment{
				Comment:        c,
				AuthorUsername: ca.Username,
				AuthorPicture:  ca.PictureURL,
			})
		}
		result = append(result, h)
	}
	return result, nil
}

func (s *Service) notify(ctx context.Context, typ notifdomain.NotificationType, recipientID, actorID, postID, content string) {
	id, err := s.ids.NewID()
	if err != nil {
		s.log.Errorf("failed to generate notification id: %v", err)
		return
	}
	n := &notifdomain.Notification{
		ID:          id,
		Type:        typ,
		RecipientID: recipientID,
		ActorID:     actorID,
		PostID:      postID,
		Content:     content,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"post_id":  postID,
			"actor_id": actorID,
		}).Errorf("failed to record %s notification: %v", typ, err)
		return
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(string(typ)).Inc()
}
