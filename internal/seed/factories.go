// Package seed provides helpers to create demo data for development
// databases and tests. These helpers are not used by the API server.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"snapgram/internal/models"
	"snapgram/internal/observability"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password of every seeded user.
const DefaultPassword = "password123"

// Options configures the factory and seeder.
type Options struct {
	// SkipBcrypt stores the plaintext password. Only for fast local runs.
	SkipBcrypt bool
	// DryRun builds entities with synthetic ids and writes nothing.
	DryRun bool
	// MaxDays bounds how far back post timestamps are spread. Defaults to 30.
	MaxDays int
	// Seed makes generated content reproducible. Zero seeds from the clock.
	Seed int64
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic id counter, also used to keep usernames unique
	nextID uint
}

// NewFactory creates a new Factory bound to the provided gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seed)), nextID: 1000}
}

// CreateUser constructs and persists a sample user. Optional overrides may
// modify the generated user before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	f.nextID++
	username := strings.ToLower(fmt.Sprintf("%s%d", gofakeit.Username(), f.nextID))
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		ProfilePhoto: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	if f.opts.SkipBcrypt {
		user.Password = DefaultPassword
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		user.ID = f.nextID
		observability.Logger.DebugContext(ctx, "dry-run create user", slog.String("username", user.Username))
		return user, nil
	}
	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// BuildPost constructs a post for owner with a created_at spread over the
// last MaxDays. It does not persist it.
func (f *Factory) BuildPost(owner *models.User, overrides ...func(*models.Post)) *models.Post {
	back := time.Duration(f.rng.Intn(f.opts.MaxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	post := &models.Post{
		UserID:    owner.ID,
		ImageRef:  fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		Caption:   gofakeit.Sentence(8),
		CreatedAt: time.Now().UTC().Add(-back),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists posts in a single insert.
func (f *Factory) CreatePostsBatch(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		observability.Logger.DebugContext(ctx, "dry-run create posts", slog.Int("count", len(posts)))
		return nil
	}
	return f.db.WithContext(ctx).Omit("Likes", "Comments").Create(&posts).Error
}

// CreateStory persists a story for owner published at the given time. The
// expiry is fixed to one story lifetime after it.
func (f *Factory) CreateStory(ctx context.Context, owner *models.User, at time.Time) (*models.Story, error) {
	at = at.UTC()
	story := &models.Story{
		OwnerID:       owner.ID,
		OwnerUsername: owner.Username,
		FileRef:       fmt.Sprintf("stories/%d/%s.jpg", owner.ID, gofakeit.UUID()),
		IsPublic:      f.rng.Intn(4) != 0,
		CreatedAt:     at,
		ExpiresAt:     at.Add(models.StoryTTL),
	}
	if f.opts.DryRun {
		f.nextID++
		story.ID = f.nextID
		return story, nil
	}
	if err := f.db.WithContext(ctx).Omit("Viewers", "Reactions").Create(story).Error; err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}
	return story, nil
}

// pickOthers returns up to n distinct users from pool, excluding self.
func (f *Factory) pickOthers(pool []*models.User, self uint, n int) []*models.User {
	picked := make([]*models.User, 0, n)
	for _, i := range f.rng.Perm(len(pool)) {
		if len(picked) == n {
			break
		}
		if pool[i].ID == self {
			continue
		}
		picked = append(picked, pool[i])
	}
	return picked
}
