package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetHomeFeed handles GET /api/feed/home
func (s *Server) GetHomeFeed(c *fiber.Ctx) error {
	entries, err := s.feedService.HomeFeed(c.UserContext(), principal(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(entries)
}
