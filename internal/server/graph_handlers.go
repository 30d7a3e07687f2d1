package server

import (
	"github.com/gofiber/fiber/v2"
)

// Follow handles POST /api/users/follow/:id
func (s *Server) Follow(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actorID := principal(c)

	if err := s.graphService.Follow(c.UserContext(), actorID, targetID); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Followed successfully",
		"follower_id": actorID,
		"followee_id": targetID,
	})
}

// Unfollow handles POST /api/users/unfollow/:id
func (s *Server) Unfollow(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actorID := principal(c)

	if err := s.graphService.Unfollow(c.UserContext(), actorID, targetID); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Unfollowed successfully",
		"follower_id": actorID,
		"followee_id": targetID,
	})
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	set, err := s.graphService.Following(c.UserContext(), userID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"user_id": userID, "following": set.Slice()})
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	set, err := s.graphService.Followers(c.UserContext(), userID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"user_id": userID, "followers": set.Slice()})
}
