package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"snapgram/internal/cache"
	"snapgram/internal/models"
	"snapgram/internal/repository"
	"snapgram/internal/testutil"

	"gorm.io/gorm"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fixture struct {
	db      *gorm.DB
	clock   *fakeClock
	users   *UserService
	graph   *GraphService
	feed    *FeedService
	stories *StoryService
	posts   *PostService
}

var epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	return newFixtureWithCache(t, nil)
}

func newFixtureWithCache(t *testing.T, c *cache.Cache) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	clock := newFakeClock(epoch)
	opts := Options{FollowRetryLimit: 1, Now: clock.Now}

	userRepo := repository.NewUserRepository(db, c)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	storyRepo := repository.NewStoryRepository(db)

	return &fixture{
		db:      db,
		clock:   clock,
		users:   NewUserService(userRepo, opts),
		graph:   NewGraphService(userRepo, followRepo, c, opts),
		feed:    NewFeedService(userRepo, followRepo, postRepo, opts),
		stories: NewStoryService(storyRepo, userRepo, opts),
		posts:   NewPostService(postRepo, userRepo, opts),
	}
}

func (f *fixture) register(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterInput{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "$2a$10$hash",
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return u
}

// --- function-field stubs ---

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByIDsFn      func(context.Context, []uint) ([]models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		getByIDsFn: func(_ context.Context, ids []uint) ([]models.User, error) {
			users := make([]models.User, 0, len(ids))
			for _, id := range ids {
				users = append(users, models.User{ID: id})
			}
			return users, nil
		},
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
	}
}

type followRepoStub struct {
	isFollowingFn  func(context.Context, uint, uint) (bool, error)
	followingIDsFn func(context.Context, uint) ([]uint, error)
	followerIDsFn  func(context.Context, uint) ([]uint, error)
	followFn       func(context.Context, uint, uint, time.Time) error
	unfollowFn     func(context.Context, uint, uint) error
}

func (s *followRepoStub) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	return s.isFollowingFn(ctx, a, b)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, id uint) ([]uint, error) {
	return s.followingIDsFn(ctx, id)
}
func (s *followRepoStub) FollowerIDs(ctx context.Context, id uint) ([]uint, error) {
	return s.followerIDsFn(ctx, id)
}
func (s *followRepoStub) Follow(ctx context.Context, a, b uint, at time.Time) error {
	return s.followFn(ctx, a, b, at)
}
func (s *followRepoStub) Unfollow(ctx context.Context, a, b uint) error {
	return s.unfollowFn(ctx, a, b)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		isFollowingFn:  func(context.Context, uint, uint) (bool, error) { return false, nil },
		followingIDsFn: func(context.Context, uint) ([]uint, error) { return nil, nil },
		followerIDsFn:  func(context.Context, uint) ([]uint, error) { return nil, nil },
		followFn:       func(context.Context, uint, uint, time.Time) error { return nil },
		unfollowFn:     func(context.Context, uint, uint) error { return nil },
	}
}

type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	latestByOwnersFn func(context.Context, []uint) ([]models.Post, error)
	likeFn           func(context.Context, uint, uint, time.Time) error
	unlikeFn         func(context.Context, uint, uint) error
	addCommentFn     func(context.Context, *models.PostComment) error
	incrementShareFn func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error { return s.createFn(ctx, p) }
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) LatestByOwners(ctx context.Context, ids []uint) ([]models.Post, error) {
	return s.latestByOwnersFn(ctx, ids)
}
func (s *postRepoStub) Like(ctx context.Context, postID, userID uint, at time.Time) error {
	return s.likeFn(ctx, postID, userID, at)
}
func (s *postRepoStub) Unlike(ctx context.Context, postID, userID uint) error {
	return s.unlikeFn(ctx, postID, userID)
}
func (s *postRepoStub) AddComment(ctx context.Context, c *models.PostComment) error {
	return s.addCommentFn(ctx, c)
}
func (s *postRepoStub) IncrementShare(ctx context.Context, postID uint) error {
	return s.incrementShareFn(ctx, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:         func(context.Context, *models.Post) error { return nil },
		getByIDFn:        func(context.Context, uint) (*models.Post, error) { return &models.Post{}, nil },
		latestByOwnersFn: func(context.Context, []uint) ([]models.Post, error) { return nil, nil },
		likeFn:           func(context.Context, uint, uint, time.Time) error { return nil },
		unlikeFn:         func(context.Context, uint, uint) error { return nil },
		addCommentFn:     func(context.Context, *models.PostComment) error { return nil },
		incrementShareFn: func(context.Context, uint) error { return nil },
	}
}

var _ repository.UserRepository = (*userRepoStub)(nil)
var _ repository.FollowRepository = (*followRepoStub)(nil)
var _ repository.PostRepository = (*postRepoStub)(nil)
