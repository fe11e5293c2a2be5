package server

import (
	"inkwell/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

const followIndexPath = "/follow/"

// ProfileFollow handles POST /profile/:username/follow/
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	if _, err := s.followService.Follow(c.UserContext(), identity, c.Params("username")); err != nil {
		return redirectDenied(c, err, loginRedirect(c))
	}
	return c.Redirect(followIndexPath, fiber.StatusFound)
}

// ProfileUnfollow handles POST /profile/:username/unfollow/
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	if _, err := s.followService.Unfollow(c.UserContext(), identity, c.Params("username")); err != nil {
		return redirectDenied(c, err, loginRedirect(c))
	}
	return c.Redirect(followIndexPath, fiber.StatusFound)
}
