package server

import (
	"snapgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateStoryRequest is the body of POST /api/stories. IsPublic defaults to
// true when omitted.
type CreateStoryRequest struct {
	FilePath string `json:"file_path" validate:"required"`
	IsPublic *bool  `json:"is_public"`
}

// CreateStory handles POST /api/stories
func (s *Server) CreateStory(c *fiber.Ctx) error {
	var req CreateStoryRequest
	if err := bodyParser(c, &req); err != nil {
		return nil
	}
	public := true
	if req.IsPublic != nil {
		public = *req.IsPublic
	}

	story, err := s.storyService.PublishStory(c.UserContext(), service.PublishStoryInput{
		OwnerID:  principal(c),
		FileRef:  req.FilePath,
		IsPublic: public,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(story)
}

// GetUserStories handles GET /api/stories/user/:id
func (s *Server) GetUserStories(c *fiber.Ctx) error {
	ownerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	stories, err := s.storyService.ActiveStoriesFor(c.UserContext(), ownerID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(stories)
}

// GetStory handles GET /api/stories/:id
func (s *Server) GetStory(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	story, err := s.storyService.GetStory(c.UserContext(), storyID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(story)
}

// ViewStory handles POST /api/stories/:id/view
func (s *Server) ViewStory(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.storyService.RecordView(c.UserContext(), storyID, principal(c)); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Story viewed"})
}

// ReactionRequest is the body of POST /api/stories/:id/reactions.
type ReactionRequest struct {
	ReactionType string `json:"reaction_type" validate:"required,max=32"`
}

// ReactToStory handles POST /api/stories/:id/reactions
func (s *Server) ReactToStory(c *fiber.Ctx) error {
	storyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req ReactionRequest
	if err := bodyParser(c, &req); err != nil {
		return nil
	}
	if err := s.storyService.RecordReaction(c.UserContext(), storyID, principal(c), req.ReactionType); err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Reaction recorded"})
}
