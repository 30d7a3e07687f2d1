package server

import (
	"snapgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest is the body of POST /api/posts. Image is an opaque
// reference produced by the upload collaborator.
type CreatePostRequest struct {
	Image   string `json:"image" validate:"required"`
	Caption string `json:"caption" validate:"max=2200"`
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := bodyParser(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:   principal(c),
		ImageRef: req.Image,
		Caption:  req.Caption,
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.Like(c.UserContext(), postID, principal(c)); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post liked"})
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.Unlike(c.UserContext(), postID, principal(c)); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post unliked"})
}

// CreateCommentRequest is the body of POST /api/posts/:id/comments.
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req CreateCommentRequest
	if err := bodyParser(c, &req); err != nil {
		return nil
	}

	comment, err := s.postService.AddComment(c.UserContext(), postID, principal(c), req.Text)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// SharePost handles POST /api/posts/:id/share
func (s *Server) SharePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.Share(c.UserContext(), postID); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post shared"})
}
