package service

import (
	"context"
	"testing"

	"snapgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserServiceRegister(t *testing.T) {
	repo := noopUserRepo()
	var stored *models.User
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 1
		stored = u
		return nil
	}
	svc := NewUserService(repo, Options{})

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: " ana ", Email: "Ana@Example.com", PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, "ana", stored.Username)
	assert.Equal(t, "ana@example.com", stored.Email)
	assert.Equal(t, "hash", stored.Password)
}

func TestUserServiceRegisterValidation(t *testing.T) {
	svc := NewUserService(noopUserRepo(), Options{})

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"missing username", RegisterInput{Email: "a@b.com", PasswordHash: "h"}},
		{"missing password", RegisterInput{Username: "a", Email: "a@b.com"}},
		{"bad email", RegisterInput{Username: "a", Email: "nope", PasswordHash: "h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			assert.True(t, models.HasCode(err, models.CodeValidation))
		})
	}
}

func TestUserServiceRegisterDuplicate(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana")

	_, err := f.users.Register(context.Background(), RegisterInput{
		Username: "ana", Email: "other@example.com", PasswordHash: "h",
	})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestPostServiceValidation(t *testing.T) {
	svc := NewPostService(noopPostRepo(), noopUserRepo(), Options{})
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = svc.AddComment(ctx, 1, 1, "   ")
	assert.True(t, models.HasCode(err, models.CodeValidation))

	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", id)
	}
	svc = NewPostService(noopPostRepo(), users, Options{})
	_, err = svc.CreatePost(ctx, CreatePostInput{UserID: 9, ImageRef: "x.jpg"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
