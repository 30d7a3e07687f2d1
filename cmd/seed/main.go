// Command seed populates a development database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"snapgram/internal/config"
	"snapgram/internal/database"
	"snapgram/internal/observability"
	"snapgram/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	follows := flag.Int("follows", 10, "Follows per user")
	posts := flag.Int("posts", 4, "Posts per user")
	stories := flag.Int("stories", 1, "Live stories per user")
	expired := flag.Bool("expired", true, "Also create one expired story per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Apply a named preset (Minimal, Default, MegaPopulated)")
	skipBcrypt := flag.Bool("fast", false, "Store plaintext passwords (local use only)")
	dryRun := flag.Bool("dry-run", false, "Build entities without writing them")
	flag.Parse()

	log.Println("Database Seeder")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}
	observability.InitLogger(cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	s := seed.NewSeeder(db, seed.Options{SkipBcrypt: *skipBcrypt, DryRun: *dryRun})

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if *preset != "" {
		log.Printf("Applying preset: %s (ignoring other flags)", *preset)
		if err := s.ApplyPreset(ctx, *preset); err != nil {
			log.Fatalf("Preset seeding failed: %v", err)
		}
	} else {
		users, err := s.SeedSocialMesh(ctx, *numUsers, *follows)
		if err != nil {
			log.Fatalf("User seeding failed: %v", err)
		}
		if err := s.SeedContent(ctx, users, *posts, *stories, *expired); err != nil {
			log.Fatalf("Content seeding failed: %v", err)
		}
	}

	log.Printf("All done. Seeded users have the password: %s", seed.DefaultPassword)
}
