package server

import (
	"snapgram/internal/models"
	"snapgram/internal/service"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Register handles POST /api/auth/register. The password is hashed here so
// the core only ever sees the hash.
func (s *Server) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := bodyParser(c, &req); err != nil {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	})
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}
