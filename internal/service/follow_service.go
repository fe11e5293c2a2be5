package service

import (
	"context"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/policy"
	"inkwell/internal/repository"
)

// Follow command outcomes, as recorded in metrics.
const (
	FollowCreated = "created"
	FollowExisted = "existed"
	FollowRemoved = "removed"
	FollowAbsent  = "absent"
	FollowSkipped = "skipped"
)

// FollowService runs the follow and unfollow workflows.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow subscribes the identity to the author's posts. Following oneself is
// silently skipped and following twice keeps the single edge.
func (s *FollowService) Follow(ctx context.Context, identity models.Identity, username string) (string, error) {
	author, err := s.target(ctx, identity, username)
	if err != nil {
		return "", err
	}
	if !policy.CanFollow(identity, author) {
		return s.record("follow", FollowSkipped), nil
	}
	created, err := s.followRepo.Follow(ctx, identity.UserID, author.ID)
	if err != nil {
		return "", err
	}
	if created {
		middleware.Logger.InfoContext(ctx, "follow created", "author_id", author.ID)
		return s.record("follow", FollowCreated), nil
	}
	return s.record("follow", FollowExisted), nil
}

// Unfollow removes the edge if present.
func (s *FollowService) Unfollow(ctx context.Context, identity models.Identity, username string) (string, error) {
	author, err := s.target(ctx, identity, username)
	if err != nil {
		return "", err
	}
	if !policy.CanFollow(identity, author) {
		return s.record("unfollow", FollowSkipped), nil
	}
	removed, err := s.followRepo.Unfollow(ctx, identity.UserID, author.ID)
	if err != nil {
		return "", err
	}
	if removed {
		return s.record("unfollow", FollowRemoved), nil
	}
	return s.record("unfollow", FollowAbsent), nil
}

func (s *FollowService) target(ctx context.Context, identity models.Identity, username string) (*models.User, error) {
	if !identity.Authenticated {
		return nil, ErrDenied
	}
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *FollowService) record(action, result string) string {
	observability.FollowCommands.WithLabelValues(action, result).Inc()
	return result
}
