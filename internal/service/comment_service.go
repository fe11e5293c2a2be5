package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/policy"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

// CommentService runs the add comment workflow.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// AddComment attaches a comment by the identity to the post.
func (s *CommentService) AddComment(ctx context.Context, identity models.Identity, postID uint, text string) (*models.Comment, error) {
	if !policy.CanComment(identity) {
		return nil, ErrDenied
	}
	if err := validation.ValidateCommentSubmission(validation.CommentSubmission{Text: text}); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   &post.ID,
		AuthorID: identity.UserID,
		Text:     text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
