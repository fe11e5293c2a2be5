package server

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/pagination"
	"inkwell/internal/policy"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts a positive integer route parameter. Anything else is a
// missing page, as the route would not have matched an integer pattern.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewNotFoundError("Page", c.Path())
	}
	return uint(id), nil
}

// respondError writes err with the status its code maps to. Errors that are
// not AppErrors are logged and reported as internal.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}
	status := models.StatusFor(appErr)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(), "path", c.Path(), "error", err)
	}
	return models.RespondWithError(c, status, appErr)
}

// redirectDenied turns a policy denial into the redirect the requester should
// see, and any other error into an error response.
func redirectDenied(c *fiber.Ctx, err error, target string) error {
	if errors.Is(err, service.ErrDenied) {
		return c.Redirect(target, fiber.StatusFound)
	}
	return respondError(c, err)
}

func loginRedirect(c *fiber.Ctx) string {
	return policy.LoginURL(c.OriginalURL())
}

func (s *Server) pageSize() int {
	if s.config.PageSize > 0 {
		return s.config.PageSize
	}
	return pagination.DefaultPageSize
}

func (s *Server) indexTTL() time.Duration {
	return time.Duration(s.config.IndexCacheTTLSeconds) * time.Second
}

// postInput reads the create/edit post form. The group field is optional; an
// attached image is read fully into memory.
func postInput(c *fiber.Ctx) (service.PostInput, error) {
	in := service.PostInput{
		Text:       c.FormValue("text"),
		ClearImage: c.FormValue("image-clear") != "",
	}

	if raw := strings.TrimSpace(c.FormValue("group")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return in, models.NewFieldError("group", "select a valid group")
		}
		groupID := uint(id)
		in.GroupID = &groupID
	}

	fh, err := c.FormFile("image")
	if err != nil {
		// No file attached.
		return in, nil
	}
	f, err := fh.Open()
	if err != nil {
		return in, models.NewFieldError("image", "the submitted file could not be read")
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return in, models.NewFieldError("image", "the submitted file could not be read")
	}
	in.Image = &service.Upload{Filename: fh.Filename, Content: content}
	return in, nil
}
