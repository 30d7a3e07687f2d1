package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"snapgram/internal/database"
	"snapgram/internal/models"
	"snapgram/internal/observability"
	"snapgram/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Preset is a named seeding profile.
type Preset struct {
	Users          int
	FollowsPerUser int
	PostsPerUser   int
	// StoriesPerUser live stories plus one expired story per user when
	// WithExpired is set, so the reaper has something to collect.
	StoriesPerUser int
	WithExpired    bool
}

// Presets are the profiles accepted by ApplyPreset.
var Presets = map[string]Preset{
	"Minimal":       {Users: 5, FollowsPerUser: 2, PostsPerUser: 1, StoriesPerUser: 1},
	"Default":       {Users: 50, FollowsPerUser: 10, PostsPerUser: 4, StoriesPerUser: 1, WithExpired: true},
	"MegaPopulated": {Users: 500, FollowsPerUser: 60, PostsPerUser: 10, StoriesPerUser: 2, WithExpired: true},
}

// Seeder populates a database through the same repositories the API uses so
// counters and edges stay consistent.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	follows repository.FollowRepository
	posts   repository.PostRepository
	stories repository.StoryRepository
	opts    Options
}

// NewSeeder creates a seeder for db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db, opts),
		follows: repository.NewFollowRepository(db),
		posts:   repository.NewPostRepository(db),
		stories: repository.NewStoryRepository(db),
		opts:    opts,
	}
}

// ClearAll deletes every row of every persistent model, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	if s.opts.DryRun {
		return nil
	}
	all := database.PersistentModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(all[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", all[i], err)
		}
	}
	observability.Logger.InfoContext(ctx, "Cleared seeded data")
	return nil
}

// SeedSocialMesh creates n users and has each follow up to followsPerUser
// random others.
func (s *Seeder) SeedSocialMesh(ctx context.Context, n, followsPerUser int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := s.factory.CreateUser(ctx)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	edges := 0
	for _, u := range users {
		for _, target := range s.factory.pickOthers(users, u.ID, followsPerUser) {
			if s.opts.DryRun {
				edges++
				continue
			}
			err := s.follows.Follow(ctx, u.ID, target.ID, time.Now().UTC())
			if errors.Is(err, repository.ErrWriteConflict) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("follow %d -> %d: %w", u.ID, target.ID, err)
			}
			edges++
		}
	}

	observability.Logger.InfoContext(ctx, "Seeded social mesh",
		slog.Int("users", len(users)),
		slog.Int("follows", edges),
	)
	return users, nil
}

// SeedContent gives every user postsPerUser posts and storiesPerUser live
// stories, then sprinkles likes, comments and story views across them.
func (s *Seeder) SeedContent(ctx context.Context, users []*models.User, postsPerUser, storiesPerUser int, withExpired bool) error {
	posts := make([]*models.Post, 0, len(users)*postsPerUser)
	for _, u := range users {
		for i := 0; i < postsPerUser; i++ {
			posts = append(posts, s.factory.BuildPost(u))
		}
	}
	if err := s.factory.CreatePostsBatch(ctx, posts); err != nil {
		return fmt.Errorf("create posts: %w", err)
	}

	now := time.Now().UTC()
	var stories []*models.Story
	for _, u := range users {
		for i := 0; i < storiesPerUser; i++ {
			age := time.Duration(s.factory.rng.Intn(20*60)) * time.Minute
			st, err := s.factory.CreateStory(ctx, u, now.Add(-age))
			if err != nil {
				return err
			}
			stories = append(stories, st)
		}
		if withExpired {
			if _, err := s.factory.CreateStory(ctx, u, now.Add(-models.StoryTTL-6*time.Hour)); err != nil {
				return err
			}
		}
	}

	if s.opts.DryRun {
		return nil
	}
	if err := s.seedEngagement(ctx, users, posts, stories); err != nil {
		return err
	}

	observability.Logger.InfoContext(ctx, "Seeded content",
		slog.Int("posts", len(posts)),
		slog.Int("stories", len(stories)),
	)
	return nil
}

func (s *Seeder) seedEngagement(ctx context.Context, users []*models.User, posts []*models.Post, stories []*models.Story) error {
	now := time.Now().UTC()
	for _, p := range posts {
		for _, u := range s.factory.pickOthers(users, p.UserID, s.factory.rng.Intn(4)) {
			if err := s.posts.Like(ctx, p.ID, u.ID, now); err != nil {
				return fmt.Errorf("like post %d: %w", p.ID, err)
			}
		}
		for _, u := range s.factory.pickOthers(users, p.UserID, s.factory.rng.Intn(3)) {
			comment := &models.PostComment{PostID: p.ID, UserID: u.ID, Text: gofakeit.Sentence(6), CreatedAt: now}
			if err := s.posts.AddComment(ctx, comment); err != nil {
				return fmt.Errorf("comment on post %d: %w", p.ID, err)
			}
		}
	}
	for _, st := range stories {
		for _, u := range s.factory.pickOthers(users, st.OwnerID, s.factory.rng.Intn(5)) {
			if _, err := s.stories.AppendView(ctx, st.ID, u.ID, now); err != nil {
				return fmt.Errorf("view story %d: %w", st.ID, err)
			}
		}
	}
	return nil
}

// ApplyPreset seeds the named profile.
func (s *Seeder) ApplyPreset(ctx context.Context, name string) error {
	p, ok := Presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	users, err := s.SeedSocialMesh(ctx, p.Users, p.FollowsPerUser)
	if err != nil {
		return err
	}
	return s.SeedContent(ctx, users, p.PostsPerUser, p.StoriesPerUser, p.WithExpired)
}
