// Package feed assembles the read-side post sequences: the global feed,
// group and profile feeds, the followed-authors feed and post detail.
package feed

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Listing is an ordered post sequence, newest first with ties broken by
// descending id. It is evaluated lazily.
type Listing interface {
	Count(ctx context.Context) (int, error)
	Slice(ctx context.Context, offset, limit int) ([]models.Post, error)
	All(ctx context.Context) ([]models.Post, error)
}

// GroupFeed is a group together with its posts.
type GroupFeed struct {
	Group *models.Group
	Posts Listing
}

// ProfileFeed is an author's posts plus whether the requester follows them.
type ProfileFeed struct {
	Author      *models.User
	Posts       Listing
	IsFollowing bool
}

// PostDetail is a single post with its comments, newest first.
type PostDetail struct {
	Post        *models.Post
	Comments    []models.Comment
	AuthorPosts int
}

// Assembler builds feeds from the content store. It never mutates.
type Assembler struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	groups   repository.GroupRepository
	users    repository.UserRepository
	follows  repository.FollowRepository
}

// NewAssembler returns an Assembler reading through the given repositories.
func NewAssembler(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	follows repository.FollowRepository,
) *Assembler {
	return &Assembler{posts: posts, comments: comments, groups: groups, users: users, follows: follows}
}

// Global is every post.
func (a *Assembler) Global() Listing {
	return a.posts.ListAll()
}

// Group resolves slug and returns the group's posts. Unknown slugs are NOT_FOUND.
func (a *Assembler) Group(ctx context.Context, slug string) (_ *GroupFeed, err error) {
	ctx, span := observability.StartSpan(ctx, "feed", "Group", attribute.String("group.slug", slug))
	defer func() { observability.EndSpan(span, err) }()

	group, err := a.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &GroupFeed{Group: group, Posts: a.posts.ListByGroup(group.ID)}, nil
}

// Profile resolves username and returns the author's posts. IsFollowing is
// only ever true for an authenticated requester viewing someone else.
func (a *Assembler) Profile(ctx context.Context, username string, viewer models.Identity) (_ *ProfileFeed, err error) {
	ctx, span := observability.StartSpan(ctx, "feed", "Profile", attribute.String("profile.username", username))
	defer func() { observability.EndSpan(span, err) }()

	author, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	following := false
	if viewer.Authenticated && viewer.UserID != author.ID {
		following, err = a.follows.Exists(ctx, viewer.UserID, author.ID)
		if err != nil {
			return nil, err
		}
	}

	return &ProfileFeed{
		Author:      author,
		Posts:       a.posts.ListByAuthor(author.ID),
		IsFollowing: following,
	}, nil
}

// Followed is every post by authors userID follows, excluding userID's own.
func (a *Assembler) Followed(userID uint) Listing {
	return a.posts.ListFollowedBy(userID)
}

// Post returns a post with its comments. Unknown ids are NOT_FOUND.
func (a *Assembler) Post(ctx context.Context, id uint) (_ *PostDetail, err error) {
	ctx, span := observability.StartSpan(ctx, "feed", "Post", attribute.Int64("post.id", int64(id)))
	defer func() { observability.EndSpan(span, err) }()

	post, err := a.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := a.comments.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	authorPosts, err := a.posts.ListByAuthor(post.AuthorID).Count(ctx)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Comments: comments, AuthorPosts: authorPosts}, nil
}
