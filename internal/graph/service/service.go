package service

import (
	"context"

	"github.com/glimmer-social/backend/internal/common/crypto"
	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
	"github.com/glimmer-social/backend/internal/common/logger"
	notifdomain "github.com/glimmer-social/backend/internal/notification/domain"
	notifrepo "github.com/glimmer-social/backend/internal/notification/repository"
	"github.com/glimmer-social/backend/internal/observability/metrics"
	"github.com/glimmer-social/backend/internal/user/domain"
	userrepo "github.com/glimmer-social/backend/internal/user/repository"
)

const followNotificationText = "Started Following You"

// Relations is the hydrated view returned after every graph mutation and by
// the relation read endpoints.
type Relations struct {
	User        domain.PublicView `json:"user"`
	Followers   []domain.Profile  `json:"followers"`
	Followings  []domain.Profile  `json:"followings"`
	Suggestions []domain.Profile  `json:"suggestions"`
}

type FollowGraph struct {
	users           userrepo.Repository
	notifications   notifrepo.Repository
	ids             crypto.IDGenerator
	log             *logger.Logger
	suggestionLimit int
}

func NewFollowGraph(
	users userrepo.Repository,
	notifications notifrepo.Repository,
	ids crypto.IDGenerator,
	log *logger.Logger,
	suggestionLimit int,
) *FollowGraph {
	return &FollowGraph{
		users:           users,
		notifications:   notifications,
		ids:             ids,
		log:             log,
		suggestionLimit: suggestionLimit,
	}
}

// Follow makes actor follow target. Re-following is a no-op and the follow
// notification fires only when the edge is actually added.
func (s *FollowGraph) Follow(ctx context.Context, actorID, targetID string) (*Relations, error) {
	added, err := s.link(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	if added {
		s.notify(ctx, actorID, targetID)
	}

	metrics.FollowOperationsTotal.WithLabelValues("follow").Inc()
	return s.Relations(ctx, actorID)
}

// FollowBack is Follow without the notification: the target already got one
// for the follow being reciprocated.
func (s *FollowGraph) FollowBack(ctx context.Context, actorID, targetID string) (*Relations, error) {
	if _, err := s.link(ctx, actorID, targetID); err != nil {
		return nil, err
	}

	metrics.FollowOperationsTotal.WithLabelValues("follow_back").Inc()
	return s.Relations(ctx, actorID)
}

func (s *FollowGraph) Unfollow(ctx context.Context, actorID, targetID string) (*Relations, error) {
	if actorID == targetID {
		return nil, commonerrors.ErrSelfFollow
	}
	if err := s.ensureBothExist(ctx, actorID, targetID); err != nil {
		return nil, err
	}

	if _, err := s.users.RemoveFollower(ctx, targetID, actorID); err != nil {
		return nil, err
	}
	if _, err := s.users.RemoveFollowing(ctx, actorID, targetID); err != nil {
		return nil, err
	}

	metrics.FollowOperationsTotal.WithLabelValues("unfollow").Inc()
	return s.Relations(ctx, actorID)
}

// Relations hydrates the user's follower/following lists in one batch lookup
// each and appends paginated suggestions.
func (s *FollowGraph) Relations(ctx context.Context, userID string) (*Relations, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	followers, err := s.users.FindProfiles(ctx, user.Followers)
	if err != nil {
		return nil, err
	}
	followings, err := s.users.FindProfiles(ctx, user.Followings)
	if err != nil {
		return nil, err
	}
	suggestions, err := s.users.FindSuggestions(ctx, userID, user.Followings, s.suggestionLimit)
	if err != nil {
		return nil, err
	}

	return &Relations{
		User:        user.PublicView(),
		Followers:   followers,
		Followings:  followings,
		Suggestions: suggestions,
	}, nil
}

func (s *FollowGraph) Suggestions(ctx context.Context, userID string, limit int) ([]domain.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.suggestionLimit
	}
	return s.users.FindSuggestions(ctx, userID, user.Followings, limit)
}

// link adds the two-sided edge. The pair of single-sided updates is not
// transactional: a failure between them leaves the graph asymmetric and
// surfaces Internal to the caller.
func (s *FollowGraph) link(ctx context.Context, actorID, targetID string) (bool, error) {
	if actorID == targetID {
		return false, commonerrors.ErrSelfFollow
	}
	if err := s.ensureBothExist(ctx, actorID, targetID); err != nil {
		return false, err
	}

	added, err := s.users.AddFollower(ctx, targetID, actorID)
	if err != nil {
		return false, err
	}
	if _, err := s.users.AddFollowing(ctx, actorID, targetID); err != nil {
		return false, err
	}
	return added, nil
}

func (s *FollowGraph) ensureBothExist(ctx context.Context, actorID, targetID string) error {
	if _, err := s.users.FindByID(ctx, actorID); err != nil {
		return err
	}
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return err
	}
	return nil
}

// notify records the follow notification. Failure here must not fail the
// follow itself.
func (s *FollowGraph) notify(ctx context.Context, actorID, targetID string) {
	id, err := s.ids.NewID()
	if err != nil {
		s.log.Errorf("failed to generate notification id: %v", err)
		return
	}
	n := &notifdomain.Notification{
		ID:          id,
		Type:        notifdomain.TypeFollow,
		RecipientID: targetID,
		ActorID:     actorID,
		Content:     followNotificationText,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"actor_id":  actorID,
			"target_id": targetID,
		}).Errorf("failed to record follow notification: %v", err)
		return
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(string(notifdomain.TypeFollow)).Inc()
}
