package server

import (
	"strconv"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/policy"

	"github.com/gofiber/fiber/v2"
)

type postFormView struct {
	Post   *models.Post   `json:"post,omitempty"`
	Groups []models.Group `json:"groups"`
	IsEdit bool           `json:"is_edit"`
}

// CreateForm handles GET /create/ with the groups a new post may use.
func (s *Server) CreateForm(c *fiber.Ctx) error {
	groups, err := s.postService.GroupChoices(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(postFormView{Groups: groups})
}

// CreatePost handles POST /create/ and redirects to the author's profile.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	in, err := postInput(c)
	if err != nil {
		return respondError(c, err)
	}
	if _, err := s.postService.CreatePost(c.UserContext(), identity, in); err != nil {
		return redirectDenied(c, err, loginRedirect(c))
	}
	return c.Redirect(policy.ProfilePath(identity.Username), fiber.StatusFound)
}

// EditForm handles GET /posts/:id/edit/. Requesters who did not write the
// post are sent to their own profile.
func (s *Server) EditForm(c *fiber.Ctx) error {
	ctx := c.UserContext()
	identity := middleware.CurrentIdentity(c)
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	post, err := s.postService.EditablePost(ctx, identity, id)
	if err != nil {
		return redirectDenied(c, err, policy.EditDeniedRedirect(identity))
	}
	groups, err := s.postService.GroupChoices(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(postFormView{Post: post, Groups: groups, IsEdit: true})
}

// EditPost handles POST /posts/:id/edit/ and redirects to the post.
func (s *Server) EditPost(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	in, err := postInput(c)
	if err != nil {
		return respondError(c, err)
	}
	if _, err := s.postService.EditPost(c.UserContext(), identity, id, in); err != nil {
		return redirectDenied(c, err, policy.EditDeniedRedirect(identity))
	}
	return c.Redirect(postPath(id), fiber.StatusFound)
}

// AddComment handles POST /posts/:id/comment/. An invalid comment is dropped
// and the requester is still sent back to the post.
func (s *Server) AddComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	identity := middleware.CurrentIdentity(c)
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if _, err := s.commentService.AddComment(ctx, identity, id, c.FormValue("text")); err != nil {
		if !models.IsValidation(err) {
			return redirectDenied(c, err, loginRedirect(c))
		}
		middleware.Logger.DebugContext(ctx, "comment rejected", "post_id", id, "error", err)
	}
	return c.Redirect(postPath(id), fiber.StatusFound)
}

func postPath(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}
