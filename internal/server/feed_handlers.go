package server

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/featureflags"
	"inkwell/internal/feed"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

type listingView struct {
	Page *pagination.Page[models.Post] `json:"page"`
}

type groupView struct {
	Group *models.Group                 `json:"group"`
	Page  *pagination.Page[models.Post] `json:"page"`
}

type profileView struct {
	Author     *models.User                  `json:"author"`
	Page       *pagination.Page[models.Post] `json:"page"`
	Following  bool                          `json:"following"`
	PostsCount int                           `json:"posts_count"`
}

type postDetailView struct {
	Post             *models.Post     `json:"post"`
	Comments         []models.Comment `json:"comments"`
	AuthorPostsCount int              `json:"author_posts_count"`
}

func (s *Server) paginate(ctx context.Context, listing feed.Listing, rawPage string) (*pagination.Page[models.Post], error) {
	return pagination.Paginate[models.Post](ctx, listing, s.pageSize(), rawPage)
}

// Index handles GET / with the global feed. The rendered page is cached per
// page number for the configured TTL.
func (s *Server) Index(c *fiber.Ctx) error {
	ctx := c.UserContext()
	rawPage := c.Query("page")

	render := func(ctx context.Context) ([]byte, error) {
		defer observability.TrackRender("index")()
		page, err := s.paginate(ctx, s.feeds.Global(), rawPage)
		if err != nil {
			return nil, err
		}
		return json.Marshal(listingView{Page: page})
	}

	var (
		body []byte
		err  error
	)
	identity := middleware.CurrentIdentity(c)
	if s.pages != nil && s.featureFlags.Enabled(featureflags.IndexCache, identity.UserID) {
		body, err = s.pages.GetOrRender(ctx, cache.IndexPageKey(rawPage), s.indexTTL(), render)
	} else {
		body, err = render(ctx)
	}
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(body)
}

// GroupPosts handles GET /group/:slug/
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	gf, err := s.feeds.Group(ctx, c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	page, err := s.paginate(ctx, gf.Posts, c.Query("page"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(groupView{Group: gf.Group, Page: page})
}

// Profile handles GET /profile/:username/
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	pf, err := s.feeds.Profile(ctx, c.Params("username"), middleware.CurrentIdentity(c))
	if err != nil {
		return respondError(c, err)
	}
	page, err := s.paginate(ctx, pf.Posts, c.Query("page"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profileView{
		Author:     pf.Author,
		Page:       page,
		Following:  pf.IsFollowing,
		PostsCount: page.TotalItems,
	})
}

// PostDetail handles GET /posts/:id/
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	detail, err := s.feeds.Post(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(postDetailView{
		Post:             detail.Post,
		Comments:         detail.Comments,
		AuthorPostsCount: detail.AuthorPosts,
	})
}

// FollowIndex handles GET /follow/ with posts by authors the requester follows.
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	page, err := s.paginate(c.UserContext(), s.feeds.Followed(identity.UserID), c.Query("page"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listingView{Page: page})
}
