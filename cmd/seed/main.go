// Package main populates a Vivilio data directory with demo content: a few
// readers and authors, books with generated covers, reviews, and a community
// with posts and comments. Everything goes through the services, so the
// search index is filled as a side effect.
//
// Usage:
//
//	go run ./cmd/seed -data-path ~/Vivilio/data
//
// Running it twice is safe: accounts that already exist are skipped.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"

	"github.com/vivilio/vivilio-server/internal/auth"
	"github.com/vivilio/vivilio-server/internal/domain"
	domainerrors "github.com/vivilio/vivilio-server/internal/errors"
	"github.com/vivilio/vivilio-server/internal/media/images"
	"github.com/vivilio/vivilio-server/internal/search"
	"github.com/vivilio/vivilio-server/internal/service"
	"github.com/vivilio/vivilio-server/internal/store/sqlite"
)

const seedPassword = "vivilio123"

var dataPath = flag.String("data-path", os.ExpandEnv("$HOME/Vivilio/data"), "Data directory to seed")

type account struct {
	email  string
	name   string
	author bool
	bio    string
}

var accounts = []account{
	{"ursula@example.com", "Ursula Vale", true, "Writes about islands and the people who leave them."},
	{"tomas@example.com", "Tomas Reyes", true, "Crime, mostly. Sometimes worse."},
	{"ann@example.com", "Ann Okafor", false, "Reads on trains."},
	{"lee@example.com", "Lee Park", false, "Fantasy first, questions later."},
	{"mira@example.com", "Mira Costa", false, ""},
}

type seedBook struct {
	author      string
	title       string
	description string
	genres      []string
}

var books = []seedBook{
	{"ursula@example.com", "The Salt Orchard", "Three sisters inherit an orchard that floods every spring.", []string{"Historical", "Romance"}},
	{"ursula@example.com", "A Map of Low Tides", "A cartographer charts a coast that will not stay still.", []string{"Fantasy"}},
	{"tomas@example.com", "The Knife Drawer", "A retired detective finds a blade that is not hers.", []string{"Mystery", "Thriller"}},
	{"tomas@example.com", "Quiet Hours", "Night shift at a hospital where nobody sleeps.", []string{"Thriller"}},
}

func main() {
	flag.Parse()

	if err := run(context.Background(), *dataPath); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	fmt.Println("\nSeeding complete!")
}

func run(ctx context.Context, dir string) error {
	fmt.Printf("Seeding data directory: %s\n", dir)
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(dir, "vivilio.db"), logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	idx, err := search.NewIndex(search.Options{DataPath: dir, Logger: logger})
	if err != nil {
		return fmt.Errorf("open search index: %w", err)
	}
	defer idx.Close()

	covers, err := images.NewStorage(dir, "covers", 10<<20)
	if err != nil {
		return fmt.Errorf("cover storage: %w", err)
	}

	key, err := auth.LoadOrGenerateKey(dir)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenService(key, time.Hour)
	if err != nil {
		return err
	}

	deps := service.Deps{Store: st, Index: idx, Logger: logger}
	authSvc := service.NewAuthService(deps, auth.NewHasher(auth.DefaultParams), tokens)
	profiles := service.NewProfileService(deps)
	bookSvc := service.NewBookService(deps, covers)
	reviews := service.NewReviewService(deps)
	communities := service.NewCommunityService(deps)
	content := service.NewContentService(deps)

	fmt.Println("\n=== Accounts ===")
	users := make(map[string]*domain.User, len(accounts))
	for _, a := range accounts {
		user, created, err := ensureUser(ctx, authSvc, a)
		if err != nil {
			return err
		}
		users[a.email] = user
		if !created {
			fmt.Printf("  %s already exists, skipping\n", a.email)
			continue
		}

		update := service.UpdateProfileRequest{IsAuthor: lo.ToPtr(a.author)}
		if a.bio != "" {
			update.Bio = lo.ToPtr(a.bio)
		}
		if _, err := profiles.Update(ctx, user.ID, update); err != nil {
			return fmt.Errorf("update profile of %s: %w", a.email, err)
		}
		fmt.Printf("  Created %s (%s)\n", a.name, a.email)

		strengths := lo.Ternary(a.author, []string{"gen-classics"}, []string{"gen-fantasy", "gen-mystery"})
		for _, genreID := range strengths {
			if _, err := profiles.AddStrength(ctx, user.ID, genreID); err != nil {
				fmt.Printf("    strength %s skipped: %v\n", genreID, err)
			}
		}
	}

	existing, err := bookSvc.List(ctx)
	if err != nil {
		return err
	}
	titles := lo.SliceToMap(existing, func(b *domain.Book) (string, bool) { return b.Title, true })

	fmt.Println("\n=== Books ===")
	rng := rand.New(rand.NewPCG(uint64(len(existing)), 7))
	readers := lo.Filter(accounts, func(a account, _ int) bool { return !a.author })

	for i, b := range books {
		if titles[b.title] {
			fmt.Printf("  %q already exists, skipping\n", b.title)
			continue
		}

		cover, err := coverPNG(i)
		if err != nil {
			return err
		}
		book, err := bookSvc.Create(ctx, users[b.author].ID, service.CreateBookRequest{
			Title:       b.title,
			Description: b.description,
			Cover:       &service.Upload{Filename: "cover.png", Content: cover},
		})
		if err != nil {
			return fmt.Errorf("create %q: %w", b.title, err)
		}
		fmt.Printf("  Created %q\n", b.title)

		for _, g := range b.genres {
			if _, err := bookSvc.AttachGenre(ctx, book.ID, service.AttachGenreRequest{Type: g}); err != nil {
				fmt.Printf("    genre %s skipped: %v\n", g, err)
			}
		}

		for _, r := range readers {
			star := 1 + rng.IntN(5)
			_, err := reviews.Add(ctx, book.ID, users[r.email].ID, service.ReviewRequest{
				Overview: lo.Ternary(star >= 3, "Worth the time", "Not for me"),
				Content:  fmt.Sprintf("%s gives %q %d stars.", r.name, b.title, star),
				Star:     star,
			})
			if err != nil {
				return fmt.Errorf("review %q: %w", b.title, err)
			}
		}
	}

	fmt.Println("\n=== Communities ===")
	return seedCommunity(ctx, communities, content, users)
}

// ensureUser registers a, reporting false when the email is already taken.
func ensureUser(ctx context.Context, authSvc *service.AuthService, a account) (*domain.User, bool, error) {
	user, err := authSvc.Register(ctx, service.RegisterRequest{Email: a.email, Name: a.name, Password: seedPassword})
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, domainerrors.ErrConflict) {
		return nil, false, fmt.Errorf("register %s: %w", a.email, err)
	}

	login, err := authSvc.Login(ctx, service.LoginRequest{Email: a.email, Password: seedPassword})
	if err != nil {
		return nil, false, fmt.Errorf("%s exists with a different password: %w", a.email, err)
	}
	return login.User, false, nil
}

func seedCommunity(ctx context.Context, communities *service.CommunityService, content *service.ContentService, users map[string]*domain.User) error {
	const name = "Night Train Readers"

	all, err := communities.List(ctx)
	if err != nil {
		return err
	}
	if lo.ContainsBy(all, func(c *domain.Community) bool { return c.Name == name }) {
		fmt.Printf("  %q already exists, skipping\n", name)
		return nil
	}

	creator := users["ann@example.com"]
	details, err := communities.Create(ctx, creator.ID, service.CreateCommunityRequest{
		Name:            name,
		Description:     "One chapter per commute.",
		RestrictPosting: lo.ToPtr(false),
		Visibility:      "Public",
		Category:        "Fiction",
	})
	if err != nil {
		return fmt.Errorf("create community: %w", err)
	}
	fmt.Printf("  Created %q\n", name)

	members := []struct {
		email string
		role  string
	}{
		{"lee@example.com", "Moderator"},
		{"mira@example.com", "Member"},
		{"ursula@example.com", "Member"},
	}
	for _, m := range members {
		if _, err := communities.AddMember(ctx, creator.ID, details.ID, service.AddMemberRequest{
			UserID: users[m.email].ID,
			Role:   m.role,
		}); err != nil {
			return fmt.Errorf("add %s: %w", m.email, err)
		}
	}

	post, err := content.CreatePost(ctx, details.ID, creator.ID, service.PostRequest{
		Content:           "This month: **The Salt Orchard**. Spoilers below the fold.",
		TurnOffCommenting: lo.ToPtr(false),
	})
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	for _, email := range []string{"lee@example.com", "ursula@example.com"} {
		if _, err := content.AddComment(ctx, details.ID, post.ID, users[email].ID, service.CommentRequest{
			Content: "Halfway through and already flooded.",
		}); err != nil {
			return fmt.Errorf("comment: %w", err)
		}
	}
	fmt.Printf("  Added %d members, 1 post and 2 comments\n", len(members))
	return nil
}

// coverPNG draws a small two-tone gradient so each book gets a distinct blurhash.
func coverPNG(seed int) (*bytes.Buffer, error) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 90))
	base := uint8(40 + seed*50)
	for y := range 90 {
		for x := range 60 {
			img.Set(x, y, color.RGBA{R: base, G: uint8(y * 2), B: uint8(x * 4), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return &buf, nil
}
