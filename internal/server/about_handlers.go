package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

type aboutPage struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

var (
	aboutAuthor = aboutPage{
		Title: "About the author",
		Text:  "Inkwell is a small place to write: short posts, groups to file them under, and a feed of the authors you follow.",
	}
	aboutTech = aboutPage{
		Title: "Technology",
		Text:  "Go with Fiber for HTTP, GORM over PostgreSQL for storage, Redis for the page cache and rate limits.",
	}
)

// AboutAuthor handles GET /about/author/
func (s *Server) AboutAuthor(c *fiber.Ctx) error {
	return c.JSON(aboutAuthor)
}

// AboutTech handles GET /about/tech/
func (s *Server) AboutTech(c *fiber.Ctx) error {
	return c.JSON(aboutTech)
}

// NotFound answers any unmatched route with a JSON 404.
func (s *Server) NotFound(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Page", c.Path()))
}
