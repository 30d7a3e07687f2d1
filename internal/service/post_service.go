package service

import (
	"context"
	"strings"

	"snapgram/internal/models"
	"snapgram/internal/repository"
)

// MaxCommentLength bounds a comment body.
const MaxCommentLength = 2000

// PostService publishes posts and records interactions on them.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	opts     Options
}

// CreatePostInput is the payload for CreatePost.
type CreatePostInput struct {
	UserID   uint
	ImageRef string
	Caption  string
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, opts Options) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		opts:     opts,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	if strings.TrimSpace(in.ImageRef) == "" {
		return nil, tagOp(models.NewValidationError("Image is required"), "post.create")
	}
	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, tagOp(err, "post.create")
	}

	post := &models.Post{
		UserID:    in.UserID,
		ImageRef:  in.ImageRef,
		Caption:   strings.TrimSpace(in.Caption),
		CreatedAt: s.opts.now(),
		Comments:  []models.PostComment{},
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, tagOp(err, "post.create")
	}
	return post, nil
}

// Like records userID's like on postID. Repeated likes are no-ops.
func (s *PostService) Like(ctx context.Context, postID, userID uint) error {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	return tagOp(s.postRepo.Like(ctx, postID, userID, s.opts.now()), "post.like")
}

// Unlike removes userID's like on postID.
func (s *PostService) Unlike(ctx context.Context, postID, userID uint) error {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	return tagOp(s.postRepo.Unlike(ctx, postID, userID), "post.unlike")
}

// AddComment appends a comment to postID.
func (s *PostService) AddComment(ctx context.Context, postID, userID uint, text string) (*models.PostComment, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	text = strings.TrimSpace(text)
	if text == "" || len(text) > MaxCommentLength {
		return nil, tagOp(models.NewValidationError("Comment must be 1-2000 characters"), "post.comment")
	}
	comment := &models.PostComment{
		PostID:    postID,
		UserID:    userID,
		Text:      text,
		CreatedAt: s.opts.now(),
	}
	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		return nil, tagOp(err, "post.comment")
	}
	return comment, nil
}

// Share increments the post's share counter.
func (s *PostService) Share(ctx context.Context, postID uint) error {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	return tagOp(s.postRepo.IncrementShare(ctx, postID), "post.share")
}
