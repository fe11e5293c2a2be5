package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn  func(context.Context, *models.Post) error
	getByIDFn func(context.Context, uint) (*models.Post, error)
	updateFn  func(context.Context, *models.Post) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(context.Context, uint) error { return nil }
func (s *postRepoStub) Count(context.Context) (int64, error) { return 0, nil }
func (s *postRepoStub) ListAll() *repository.PostQuery { return nil }
func (s *postRepoStub) ListByGroup(uint) *repository.PostQuery { return nil }
func (s *postRepoStub) ListByAuthor(uint) *repository.PostQuery { return nil }
func (s *postRepoStub) ListFollowedBy(uint) *repository.PostQuery { return nil }

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		},
		updateFn: func(_ context.Context, _ *models.Post) error { return nil },
	}
}

// groupRepoStub is a stub for repository.GroupRepository.
type groupRepoStub struct {
	getByIDFn func(context.Context, uint) (*models.Group, error)
	listFn    func(context.Context) ([]models.Group, error)
}

func (s *groupRepoStub) Create(context.Context, *models.Group) error { return nil }
func (s *groupRepoStub) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	return s.getByIDFn(ctx, id)
}
func (s *groupRepoStub) GetBySlug(_ context.Context, slug string) (*models.Group, error) {
	return nil, models.NewNotFoundError("Group", slug)
}
func (s *groupRepoStub) List(ctx context.Context) ([]models.Group, error) {
	return s.listFn(ctx)
}
func (s *groupRepoStub) Delete(context.Context, uint) error { return nil }

func groupsWith(ids ...uint) *groupRepoStub {
	return &groupRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Group, error) {
			for _, known := range ids {
				if known == id {
					return &models.Group{ID: id, Slug: "g"}, nil
				}
			}
			return nil, models.NewNotFoundError("Group", id)
		},
		listFn: func(context.Context) ([]models.Group, error) {
			out := make([]models.Group, 0, len(ids))
			for _, id := range ids {
				out = append(out, models.Group{ID: id})
			}
			return out, nil
		},
	}
}

// assertFieldError asserts that err is a VALIDATION_ERROR on field.
func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Equal(t, field, appErr.Field)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func uintPtr(v uint) *uint { return &v }
