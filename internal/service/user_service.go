package service

import (
	"context"
	"net/mail"
	"strings"

	"snapgram/internal/models"
	"snapgram/internal/repository"
)

// UserService registers users and serves their profiles. Credential hashing
// happens before Register is called.
type UserService struct {
	userRepo repository.UserRepository
	opts     Options
}

// RegisterInput is the payload for Register. PasswordHash is stored as given.
type RegisterInput struct {
	Username     string
	Email        string
	PasswordHash string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, opts Options) *UserService {
	return &UserService{userRepo: userRepo, opts: opts}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.PasswordHash == "" {
		return nil, tagOp(models.NewValidationError("Username, email and password are required"), "user.register")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, tagOp(models.NewValidationError("Invalid email address"), "user.register")
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: in.PasswordHash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, tagOp(err, "user.register")
	}
	return user, nil
}

// GetProfile returns the user with follow counts.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, tagOp(err, "user.profile")
	}
	return user, nil
}
