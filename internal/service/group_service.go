package service

import (
	"context"
	"strings"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

// GroupService runs the admin group workflows.
type GroupService struct {
	groupRepo repository.GroupRepository
}

func NewGroupService(groupRepo repository.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

// CreateGroup stores a new group. Only admins may create groups.
func (s *GroupService) CreateGroup(ctx context.Context, identity models.Identity, in validation.GroupSubmission) (*models.Group, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	if err := validation.ValidateGroup(in); err != nil {
		return nil, err
	}
	group := &models.Group{
		Title:       in.Title,
		Slug:        in.Slug,
		Description: in.Description,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "group created", "group_id", group.ID, "slug", group.Slug)
	return group, nil
}

// DeleteGroup removes a group. Its posts stay, detached from any group.
func (s *GroupService) DeleteGroup(ctx context.Context, identity models.Identity, slug string) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.groupRepo.Delete(ctx, group.ID); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "group deleted", "group_id", group.ID, "slug", group.Slug)
	return nil
}

// ListGroups returns every group by title.
func (s *GroupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	return s.groupRepo.List(ctx)
}

func requireAdmin(identity models.Identity) error {
	if !identity.Authenticated {
		return models.NewUnauthorizedError("authentication required")
	}
	if !identity.IsAdmin {
		return models.NewForbiddenError("admin access required")
	}
	return nil
}
