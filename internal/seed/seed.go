// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"xtagram/internal/models"
	"xtagram/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// DemoUsername and DemoPassword are the credentials of the account that is
// always present in non-production databases.
const (
	DemoUsername = "demo"
	DemoPassword = "demo"
)

// EnsureDemoUser creates the demo account when it does not exist yet, so a
// fresh database is immediately usable from a browser.
func EnsureDemoUser(db *gorm.DB) (*models.User, error) {
	var user models.User
	err := db.Where("username = ?", DemoUsername).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("looking up demo user: %w", err)
	}

	user = models.User{
		Username:       DemoUsername,
		PasswordDigest: service.HashPassword(DemoPassword),
		AvatarURL:      models.DefaultAvatarURL,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("creating demo user: %w", err)
	}
	log.Printf("✓ demo user %q created", DemoUsername)
	return &user, nil
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)
	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	demo, err := EnsureDemoUser(db)
	if err != nil {
		return err
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	users = append(users, demo)
	log.Printf("✓ %d test users created", len(users))

	posts, err := createPosts(db, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	if err := createNotifications(db, users, posts); err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}

	log.Println("🌱 Database seeding complete")
	return nil
}

func clearData(db *gorm.DB) error {
	for _, table := range []string{"notifications", "posts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		username := strings.ToLower(gofakeit.Username())
		if len(username) > 30 {
			username = username[:30]
		}
		user := &models.User{
			Username:       fmt.Sprintf("%s%d", username, i),
			PasswordDigest: service.HashPassword(gofakeit.Password(true, true, true, false, false, 12)),
			AvatarURL:      models.DefaultAvatarURL,
		}
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPosts(db *gorm.DB, users []*models.User, count int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[r.Intn(len(users))]
		post := &models.Post{
			Content:   gofakeit.Sentence(6 + r.Intn(12)),
			UserID:    author.ID,
			Likes:     r.Intn(40),
			CreatedAt: time.Now().Add(-time.Duration(r.Intn(72)) * time.Hour),
		}
		if err := db.Create(post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func createNotifications(db *gorm.DB, users []*models.User, posts []*models.Post) error {
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	created := 0
	for _, post := range posts {
		if r.Intn(3) != 0 {
			continue
		}
		recipient := users[r.Intn(len(users))]
		if recipient.ID == post.UserID {
			continue
		}
		message := post.Content
		if len([]rune(message)) > 100 {
			message = string([]rune(message)[:100]) + "..."
		}
		n := &models.Notification{
			UserID:    recipient.ID,
			Title:     fmt.Sprintf("New post from %s", usernameFor(users, post.UserID)),
			Message:   message,
			IsRead:    r.Intn(2) == 0,
			CreatedAt: post.CreatedAt.Add(time.Second),
		}
		if err := db.Create(n).Error; err != nil {
			return err
		}
		created++
	}
	log.Printf("✓ %d notifications created", created)
	return nil
}

func usernameFor(users []*models.User, id uint) string {
	for _, u := range users {
		if u.ID == id {
			return u.Username
		}
	}
	return "someone"
}
