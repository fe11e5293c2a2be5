package repository

import (
	"context"
	"strings"

	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)

	ListAll() *PostQuery
	ListByGroup(groupID uint) *PostQuery
	ListByAuthor(authorID uint) *PostQuery
	ListFollowedBy(userID uint) *PostQuery
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create stores a new post, assigning its ID and creation time.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if strings.TrimSpace(post.Text) == "" {
		return models.NewFieldError("text", "text required")
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := withPostDetails(readDB(r.db).WithContext(ctx)).First(&post, id).Error; err != nil {
		return nil, lookupError(err, "Post", id)
	}
	return &post, nil
}

// Update overwrites the mutable fields of an existing post. Ownership is the
// caller's concern.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if strings.TrimSpace(post.Text) == "" {
		return models.NewFieldError("text", "text required")
	}
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
		"text":     post.Text,
		"group_id": post.GroupID,
		"image":    post.Image,
	})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

// Delete removes the post. Its comments are kept with a null post reference,
// in the same transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", id).Update("post_id", nil).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Post{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// ListAll is every post, newest first.
func (r *postRepository) ListAll() *PostQuery {
	return newPostQuery(r.db, func(db *gorm.DB) *gorm.DB { return db })
}

// ListByGroup is every post tagged with the group, newest first.
func (r *postRepository) ListByGroup(groupID uint) *PostQuery {
	return newPostQuery(r.db, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.group_id = ?", groupID)
	})
}

// ListByAuthor is every post written by the author, newest first.
func (r *postRepository) ListByAuthor(authorID uint) *PostQuery {
	return newPostQuery(r.db, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author_id = ?", authorID)
	})
}

// ListFollowedBy is every post by an author the user follows, newest first.
// The user's own posts never appear even if a self edge exists.
func (r *postRepository) ListFollowedBy(userID uint) *PostQuery {
	return newPostQuery(r.db, func(db *gorm.DB) *gorm.DB {
		followed := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Follow{}).
			Select("author_id").
			Where("user_id = ?", userID)
		return db.Where("posts.author_id IN (?)", followed).
			Where("posts.author_id <> ?", userID)
	})
}

// PostQuery is an ordered, lazily evaluated post sequence. Nothing is read
// until Count, Slice or All is called.
type PostQuery struct {
	db    *gorm.DB
	scope func(*gorm.DB) *gorm.DB
}

func newPostQuery(db *gorm.DB, scope func(*gorm.DB) *gorm.DB) *PostQuery {
	return &PostQuery{db: db, scope: scope}
}

func (q *PostQuery) base(ctx context.Context) *gorm.DB {
	return q.scope(readDB(q.db).WithContext(ctx).Model(&models.Post{}))
}

// Count returns the number of posts in the sequence.
func (q *PostQuery) Count(ctx context.Context) (int, error) {
	var n int64
	if err := q.base(ctx).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return int(n), nil
}

// Slice returns up to limit posts starting at offset.
func (q *PostQuery) Slice(ctx context.Context, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := withPostDetails(q.base(ctx)).
		Order(newestFirst).
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// All returns the whole sequence.
func (q *PostQuery) All(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := withPostDetails(q.base(ctx)).Order(newestFirst).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

const newestFirst = "posts.created_at DESC, posts.id DESC"

func withPostDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Group")
}
