// Command seed inserts sample products and an admin profile into a local
// database. Products whose slug already exists are skipped, so it can be run
// repeatedly.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"

	"github.com/ghuser/showcase/pkg/config"
	"github.com/ghuser/showcase/pkg/database"
	"github.com/ghuser/showcase/pkg/identity"
	"github.com/ghuser/showcase/pkg/logger"
	productdomain "github.com/ghuser/showcase/services/product/domain"
	"github.com/ghuser/showcase/services/product/domain/models"
	"github.com/ghuser/showcase/services/product/domain/repositories"
	"github.com/ghuser/showcase/services/product/infrastructure/persistence/postgres"
)

// seedConfig is read from SEED_* environment variables.
type seedConfig struct {
	AdminUserID string `conf:"default:user_admin"`
	AdminEmail  string `conf:"default:admin@showcase.local"`
	ImageBase   string `conf:"default:http://localhost:9000/showcase-images/products"`
}

type sample struct {
	name, slug, tagline, description, url string
	tags                                  []string
	status                                models.Status
	votes                                 int
}

var samples = []sample{
	{"Pixel Forge", "pixel-forge", "Generate app icons in seconds", "Drop in a logo and get every icon size your stores ask for.", "https://pixelforge.example.com", []string{"design", "tools"}, models.StatusApproved, 42},
	{"Query Pilot", "query-pilot", "Plain-English questions over your database", "Ask questions in English and get SQL you can read, edit and run.", "https://querypilot.example.com", []string{"ai", "databases"}, models.StatusApproved, 37},
	{"Standup Bot", "standup-bot", "Async standups in your chat", "Collects daily updates from the team and posts a digest every morning.", "https://standup.example.com", []string{"productivity", "slack"}, models.StatusApproved, 18},
	{"Lintly", "lintly", "Opinionated linting for Go teams", "A curated golangci-lint setup with fixes suggested right in review.", "https://lintly.example.com", []string{"go", "devtools"}, models.StatusApproved, 18},
	{"Budget Bee", "budget-bee", "Personal finance without spreadsheets", "Tracks spending by category and nudges you before the month runs out.", "https://budgetbee.example.com", []string{"finance"}, models.StatusApproved, 5},
	{"Tone Check", "tone-check", "Rewrite emails in the right voice", "Paste a draft and pick a tone; get a rewrite that keeps your meaning.", "https://tonecheck.example.com", []string{"ai", "writing"}, models.StatusPending, 0},
	{"Crate Watch", "crate-watch", "Dependency alerts for Rust projects", "Watches your Cargo.lock and opens an issue when an advisory lands.", "https://cratewatch.example.com", []string{"rust", "security"}, models.StatusPending, 0},
	{"Spam Cannon", "spam-cannon", "Send a million cold emails", "Bulk outreach with no opt-out links and rotating sender domains.", "https://spamcannon.example.com", []string{"marketing"}, models.StatusRejected, 0},
}

func main() {
	if err := run(); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	var sc seedConfig
	if help, err := conf.Parse("SEED", &sc); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parse seed config: %w", err)
	}

	log := logger.New(cfg)
	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := identity.NewPostgresDirectory(pool).Upsert(ctx, identity.Profile{
		UserID:       sc.AdminUserID,
		PrimaryEmail: sc.AdminEmail,
		DisplayName:  "Admin",
		IsAdmin:      true,
	}); err != nil {
		return fmt.Errorf("upsert admin profile: %w", err)
	}
	log.Info("admin profile ready", "user_id", sc.AdminUserID)

	// No event bus: seeding should not fan out cache work.
	repo := postgres.NewProductRepository(pool, nil)
	inserted := 0
	for i, s := range samples {
		ok, err := seedProduct(ctx, repo, sc, s, time.Duration(len(samples)-i)*time.Hour)
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.slug, err)
		}
		if ok {
			inserted++
		}
	}
	log.Info("seeding completed", "inserted", inserted, "skipped", len(samples)-inserted)
	return nil
}

// seedProduct inserts s as if it were submitted age ago and then moderated.
// It reports false when the slug already exists.
func seedProduct(ctx context.Context, repo repositories.ProductRepository, sc seedConfig, s sample, age time.Duration) (bool, error) {
	slug, err := models.NewSlug(s.slug)
	if err != nil {
		return false, err
	}
	p := models.NewProduct(models.NewProductParams{
		Name:        s.name,
		Slug:        slug,
		Tagline:     s.tagline,
		Description: s.description,
		WebURL:      s.url,
		WebImage:    sc.ImageBase + "/" + s.slug + ".png",
		Tags:        s.tags,
		SubmittedBy: sc.AdminEmail,
		UserID:      sc.AdminUserID,
	})
	p.CreatedAt = p.CreatedAt.Add(-age)
	p.UpdatedAt = p.CreatedAt

	if err := repo.Create(ctx, p); err != nil {
		if errors.Is(err, productdomain.ErrSlugTaken) {
			return false, nil
		}
		return false, err
	}
	if s.votes > 0 {
		if _, err := repo.AdjustVotes(ctx, p.ID, s.votes); err != nil {
			return false, err
		}
	}
	if s.status != models.StatusPending {
		if _, err := repo.UpdateStatus(ctx, p.ID, s.status, p.CreatedAt.Add(time.Hour)); err != nil {
			return false, err
		}
	}
	return true, nil
}
