package service

import (
	"context"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/policy"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

// PostService runs the create and edit post workflows.
type PostService struct {
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
	media     *MediaStore
}

// PostInput is a submitted create or edit form.
type PostInput struct {
	Text    string
	GroupID *uint
	// Image is nil when no file was attached.
	Image      *Upload
	ClearImage bool
}

func NewPostService(postRepo repository.PostRepository, groupRepo repository.GroupRepository, media *MediaStore) *PostService {
	return &PostService{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		media:     media,
	}
}

// GroupChoices lists the groups a post may be filed under.
func (s *PostService) GroupChoices(ctx context.Context) ([]models.Group, error) {
	return s.groupRepo.List(ctx)
}

// CreatePost stores a new post authored by the identity.
func (s *PostService) CreatePost(ctx context.Context, identity models.Identity, in PostInput) (*models.Post, error) {
	if !policy.CanCreatePost(identity) {
		return nil, ErrDenied
	}
	if err := s.check(ctx, in); err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     in.Text,
		AuthorID: identity.UserID,
		GroupID:  in.GroupID,
	}
	if in.Image != nil {
		name, err := s.saveImage(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = name
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		s.discardImage(ctx, post.Image)
		return nil, err
	}
	observability.PostsCreated.Inc()
	return post, nil
}

// EditPost replaces the text and group of a post the identity wrote.
// An omitted group detaches the post. The image is replaced only when a new
// file is attached, and removed when ClearImage is set. A replaced or cleared
// file is deleted from the media store once the edit is saved.
func (s *PostService) EditPost(ctx context.Context, identity models.Identity, postID uint, in PostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !policy.CanEdit(identity, post) {
		return nil, ErrDenied
	}
	if err := s.check(ctx, in); err != nil {
		return nil, err
	}

	oldImage := post.Image
	patch := models.PostPatch{
		Text:       &in.Text,
		GroupID:    in.GroupID,
		ClearGroup: in.GroupID == nil,
	}
	switch {
	case in.Image != nil:
		name, err := s.saveImage(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		patch.Image = &name
	case in.ClearImage:
		empty := ""
		patch.Image = &empty
	}
	post.Apply(patch)

	if err := s.postRepo.Update(ctx, post); err != nil {
		if in.Image != nil {
			s.discardImage(ctx, post.Image)
		}
		return nil, err
	}
	if oldImage != post.Image {
		s.discardImage(ctx, oldImage)
	}
	return post, nil
}

// EditablePost returns the post when the identity may edit it.
func (s *PostService) EditablePost(ctx context.Context, identity models.Identity, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !policy.CanEdit(identity, post) {
		return nil, ErrDenied
	}
	return post, nil
}

func (s *PostService) check(ctx context.Context, in PostInput) error {
	if err := validation.ValidatePostSubmission(validation.PostSubmission{Text: in.Text, GroupID: in.GroupID}); err != nil {
		return err
	}
	if in.GroupID == nil {
		return nil
	}
	if _, err := s.groupRepo.GetByID(ctx, *in.GroupID); err != nil {
		if models.IsNotFound(err) {
			return models.NewFieldError("group", "select a valid group")
		}
		return err
	}
	return nil
}

func (s *PostService) saveImage(ctx context.Context, up Upload) (string, error) {
	if s.media == nil {
		return "", models.NewFieldError("image", "image uploads are not enabled")
	}
	return s.media.SavePostImage(ctx, up)
}

// discardImage deletes a stored image that no post references any more.
func (s *PostService) discardImage(ctx context.Context, name string) {
	if s.media == nil || name == "" {
		return
	}
	if err := s.media.Remove(name); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove post image", "path", name, "error", err)
	}
}
