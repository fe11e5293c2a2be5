package repository

import (
	"context"
	"strings"

	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	ListOrphaned(ctx context.Context) ([]models.Comment, error)
	Count(ctx context.Context) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if strings.TrimSpace(comment.Text) == "" {
		return models.NewFieldError("text", "text required")
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListByPost returns the comments of a post, newest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("post_id = ?", postID)
	})
}

// ListOrphaned returns comments whose post has been deleted.
func (r *commentRepository) ListOrphaned(ctx context.Context) ([]models.Comment, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("post_id IS NULL")
	})
}

func (r *commentRepository) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]models.Comment, error) {
	var comments []models.Comment
	err := scope(readDB(r.db).WithContext(ctx)).
		Preload("Author").
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Comment{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
