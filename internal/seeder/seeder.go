// Package seeder fills a database with demo accounts, profiles, posts and
// follow edges for local development.
package seeder

import (
	"fmt"
	"math/rand/v2"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/crypto"
	"gorm.io/gorm"

	"mingle/internal/accounts"
	"mingle/internal/posts"
	"mingle/internal/profiles"
)

// Seeder handles the data seeding process.
type Seeder struct {
	DBManager cartridge.DBManager
	Logger    *slog.Logger
	UserCount int
	PostCount int
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, userCount, postCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DBManager: dbManager,
		Logger:    logger,
		UserCount: userCount,
		PostCount: postCount,
	}
}

var bios = []string{
	"Coffee first, code later.",
	"Amateur photographer, professional lurker.",
	"Posting mostly about my dog.",
	"Here for the comments.",
	"Runner, reader, reluctant cook.",
}

var postTitles = []string{
	"Morning thoughts",
	"Weekend project update",
	"A small win today",
	"Things I learned this week",
	"Unpopular opinion",
}

// Seed populates the database with demo data. The same password is used for
// every account so any of them can be logged into during development.
func (s *Seeder) Seed(password string) error {
	start := time.Now()
	s.Logger.Info("Seeding demo data...",
		slog.Int("users", s.UserCount),
		slog.Int("postsPerUser", s.PostCount))

	db := s.DBManager.GetConnection()

	hashed, err := crypto.GeneratePasswordHash(password)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	users := make([]accounts.User, 0, s.UserCount)
	for i := 1; i <= s.UserCount; i++ {
		user := accounts.User{
			Email:             fmt.Sprintf("demo%d@example.com", i),
			EncryptedPassword: string(hashed),
		}
		if err := db.Where("email = ?", user.Email).FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", user.Email, err)
		}
		users = append(users, user)

		profile := profiles.Profile{
			UserID: user.ID,
			Bio:    bios[rand.IntN(len(bios))],
		}
		if err := db.Where("user_id = ?", user.ID).FirstOrCreate(&profile).Error; err != nil {
			return fmt.Errorf("failed to create profile for %s: %w", user.Email, err)
		}
	}

	for _, user := range users {
		for j := 0; j < s.PostCount; j++ {
			post := posts.Post{
				UserID:    user.ID,
				Title:     fmt.Sprintf("%s #%d", postTitles[rand.IntN(len(postTitles))], j+1),
				Content:   fmt.Sprintf("Demo content by %s.", user.Email),
				CreatedAt: time.Now().UTC().Add(-time.Duration(rand.IntN(72)) * time.Hour),
			}
			if err := db.Create(&post).Error; err != nil {
				return fmt.Errorf("failed to create post: %w", err)
			}
		}
	}

	if err := s.seedFollows(db, users); err != nil {
		return err
	}

	s.Logger.Info("Seeding complete", slog.Duration("took", time.Since(start)))
	return nil
}

// seedFollows makes every user follow roughly half of the other profiles.
func (s *Seeder) seedFollows(db *gorm.DB, users []accounts.User) error {
	for _, user := range users {
		for _, other := range users {
			if other.ID == user.ID || rand.IntN(2) == 0 {
				continue
			}

			profile, err := profiles.GetProfileByUserID(db, other.ID)
			if err != nil {
				return fmt.Errorf("failed to resolve profile for user %d: %w", other.ID, err)
			}

			follow := profiles.Follow{FollowerID: user.ID, ProfileID: profile.ID}
			if err := db.Where(&follow).FirstOrCreate(&follow).Error; err != nil {
				return fmt.Errorf("failed to create follow: %w", err)
			}
		}
	}
	return nil
}
