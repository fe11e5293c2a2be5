package feed

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/pagination"
	"inkwell/internal/repository"
	"inkwell/internal/testutil"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAssembler(db *gorm.DB) *Assembler {
	return NewAssembler(
		repository.NewPostRepository(db),
		repository.NewCommentRepository(db),
		repository.NewGroupRepository(db),
		repository.NewUserRepository(db),
		repository.NewFollowRepository(db),
	)
}

func ids(posts []models.Post) []uint {
	return lo.Map(posts, func(p models.Post, _ int) uint { return p.ID })
}

func TestGlobal_OrderAndPagination(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	a := newAssembler(db)
	leo := testutil.CreateUser(t, db, "leo")
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var created []uint
	for i := 0; i < 13; i++ {
		p := testutil.CreatePost(t, db, leo, nil, "post", base.Add(time.Duration(i)*time.Minute))
		created = append(created, p.ID)
	}
	newestFirst := lo.Reverse(append([]uint(nil), created...))

	all, err := a.Global().All(ctx)
	require.NoError(t, err)
	assert.Equal(t, newestFirst, ids(all))

	page1, err := pagination.Paginate[models.Post](ctx, a.Global(), pagination.DefaultPageSize, "")
	require.NoError(t, err)
	assert.Len(t, page1.Items, 10)
	assert.Equal(t, 2, page1.TotalPages)
	assert.True(t, page1.HasNext)

	page2, err := pagination.Paginate[models.Post](ctx, a.Global(), pagination.DefaultPageSize, "2")
	require.NoError(t, err)
	assert.Equal(t, newestFirst[10:], ids(page2.Items))

	clamped, err := pagination.Paginate[models.Post](ctx, a.Global(), pagination.DefaultPageSize, "50")
	require.NoError(t, err)
	assert.Equal(t, 2, clamped.Number)
}

func TestGroup(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	a := newAssembler(db)
	leo := testutil.CreateUser(t, db, "leo")
	cats := testutil.CreateGroup(t, db, "cats")
	dogs := testutil.CreateGroup(t, db, "dogs")
	ctx := context.Background()

	inCats := testutil.CreatePost(t, db, leo, cats, "meow", time.Now())
	testutil.CreatePost(t, db, leo, dogs, "woof", time.Now())
	testutil.CreatePost(t, db, leo, nil, "nothing", time.Now())

	feed, err := a.Group(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, cats.ID, feed.Group.ID)
	posts, err := feed.Posts.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{inCats.ID}, ids(posts))

	_, err = a.Group(ctx, "birds")
	assert.True(t, models.IsNotFound(err))
}

func TestGroup_EmptyHasOnePage(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	a := newAssembler(db)
	testutil.CreateGroup(t, db, "empty")
	ctx := context.Background()

	feed, err := a.Group(ctx, "empty")
	require.NoError(t, err)
	page, err := pagination.Paginate[models.Post](ctx, feed.Posts, 10, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.TotalPages)
}

func TestProfile(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	a := newAssembler(db)
	me := testutil.CreateUser(t, db, "me")
	author := testutil.CreateUser(t, db, "author")
	mine := testutil.CreatePost(t, db, author, nil, "by author", time.Now())
	testutil.CreatePost(t, db, me, nil, "by me", time.Now())
	ctx := context.Background()

	anon, err := a.Profile(ctx, "author", models.Anonymous())
	require.NoError(t, err)
	assert.False(t, anon.IsFollowing)
	posts, err := anon.Posts.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{mine.ID}, ids(posts))

	viewer := models.IdentityOf(me)
	before, err := a.Profile(ctx, "author", viewer)
	require.NoError(t, err)
	assert.False(t, before.IsFollowing)

	testutil.Follow(t, db, me, author)
	after, err := a.Profile(ctx, "author", viewer)
	require.NoError(t, err)
	assert.True(t, after.IsFollowing)

	self, err := a.Profile(ctx, "me", viewer)
	require.NoError(t, err)
	assert.False(t, self.IsFollowing)

	_, err = a.Profile(ctx, "ghost", viewer)
	assert.True(t, models.IsNotFound(err))
}

func TestFollowed(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	a := newAssembler(db)
	me := testutil.CreateUser(t, db, "me")
	x := testutil.CreateUser(t, db, "x")
	y := testutil.CreateUser(t, db, "y")
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	px := testutil.CreatePost(t, db, x, nil, "x", base)
	testutil.CreatePost(t, db, y, nil, "y", base.Add(time.Second))
	testutil.CreatePost(t, db, me, nil, "me", base.Add(2*time.Second))

	empty, err := a.Followed(me.ID).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	testutil.Follow(t, db, me, x)
	got, err := a.Followed(me.ID).All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{px.ID}, ids(got))

	removed, err := repository.NewFollowRepository(db).Unfollow(ctx, me.ID, x.ID)
	require.NoError(t, err)
	require.True(t, removed)
	got, err = a.Followed(me.ID).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "unfollowed author drops out")
	count, err := a.Followed(me.ID).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPostDetail(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	a := newAssembler(db)
	leo := testutil.CreateUser(t, db, "leo")
	post := testutil.CreatePost(t, db, leo, nil, "hello", time.Now())
	testutil.CreatePost(t, db, leo, nil, "another", time.Now())
	ctx := context.Background()

	comments := repository.NewCommentRepository(db)
	require.NoError(t, comments.Create(ctx, &models.Comment{PostID: &post.ID, AuthorID: leo.ID, Text: "nice"}))

	detail, err := a.Post(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", detail.Post.Text)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "nice", detail.Comments[0].Text)
	assert.Equal(t, 2, detail.AuthorPosts)

	_, err = a.Post(ctx, 999)
	assert.True(t, models.IsNotFound(err))
}
