// Command main fills the database with generated or fixture recipes.
package main

import (
	"flag"
	"log"

	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	postsPerUser := flag.Int("posts", 5, "Posts per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixture := flag.String("fixture", "", "Seed from a YAML fixture instead of generated data (\"demo\" for the built-in one)")
	dryRun := flag.Bool("dry-run", false, "Log what would be created without writing")
	randSeed := flag.Int64("seed", 0, "Random seed for generated data (0 picks one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)
	factoryOpts := seed.FactoryOptions{DryRun: *dryRun, Seed: *randSeed}

	if *fixture != "" {
		path := *fixture
		if path == "demo" {
			path = ""
		}
		fx, err := seed.LoadFixture(path)
		if err != nil {
			log.Fatalf("Failed to load fixture: %v", err)
		}
		if *shouldClean && !*dryRun {
			if err := s.ClearAll(); err != nil {
				log.Fatalf("Cleanup failed: %v", err)
			}
		}
		if err := s.ApplyFixture(fx, factoryOpts); err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
		log.Printf("Fixture applied: %d users", len(fx.Users))
		return
	}

	users, err := s.Seed(seed.Options{
		NumUsers:           *numUsers,
		PostsPerUser:       *postsPerUser,
		TagsPerUser:        6,
		IngredientsPerUser: 12,
		ShouldClean:        *shouldClean && !*dryRun,
		Factory:            factoryOpts,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users", len(users))
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
