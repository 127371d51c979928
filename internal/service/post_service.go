package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"xtagram/internal/middleware"
	"xtagram/internal/models"
	"xtagram/internal/notify"
	"xtagram/internal/repository"
)

// PostOutcome describes what happened to a post submission. The HTTP layer
// collapses every outcome into the same redirect; the distinction exists so
// the skip paths stay observable to callers and tests.
type PostOutcome int

const (
	PostCreated PostOutcome = iota
	PostSkippedEmpty
	PostSkippedTooLong
)

// PostServiceConfig carries the feed and validation knobs.
type PostServiceConfig struct {
	// MaxPostChars is the content cap in characters; 0 means unlimited.
	// Oversize content is silently dropped, not rejected with an error.
	MaxPostChars int
	// FeedScope is "global" (all users) or "own" (viewer's posts only).
	FeedScope string
	FeedLimit int
}

// PostService handles post creation, the feed, likes and notification fan-out.
type PostService struct {
	postRepo         repository.PostRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	bridge           notify.Bridge
	cfg              PostServiceConfig
}

// NewPostService returns a new PostService. bridge may be nil.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	bridge notify.Bridge,
	cfg PostServiceConfig,
) *PostService {
	if cfg.FeedLimit <= 0 {
		cfg.FeedLimit = 20
	}
	return &PostService{
		postRepo:         postRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		bridge:           bridge,
		cfg:              cfg,
	}
}

// CreatePost persists a post for the author and fans out notifications.
// Empty or oversize content is silently skipped: no post, no error.
func (s *PostService) CreatePost(ctx context.Context, authorID uint, content string) (*models.Post, PostOutcome, error) {
	if strings.TrimSpace(content) == "" {
		middleware.PostsSkipped.WithLabelValues("empty").Inc()
		return nil, PostSkippedEmpty, nil
	}
	if s.cfg.MaxPostChars > 0 && len([]rune(content)) > s.cfg.MaxPostChars {
		middleware.PostsSkipped.WithLabelValues("too_long").Inc()
		middleware.Logger.InfoContext(ctx, "post dropped: content over cap",
			slog.Int("cap", s.cfg.MaxPostChars),
			slog.Int("length", len([]rune(content))),
		)
		return nil, PostSkippedTooLong, nil
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, PostCreated, err
	}

	post := &models.Post{
		Content: content,
		UserID:  authorID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, PostCreated, err
	}
	middleware.PostsCreated.Inc()

	// Fan-out runs after the post write and is not atomic with it: each
	// notification row is its own autocommit statement, and an interruption
	// mid-loop leaves a partial broadcast.
	s.fanOut(ctx, author, post)

	return post, PostCreated, nil
}

func (s *PostService) fanOut(ctx context.Context, author *models.User, post *models.Post) {
	self := &models.Notification{
		UserID:  author.ID,
		Title:   "New post created",
		Message: fmt.Sprintf("You created a post: %s...", truncateRunes(post.Content, 50)),
	}
	if err := s.notificationRepo.Create(ctx, self); err != nil {
		middleware.Logger.ErrorContext(ctx, "fan-out: self notification failed",
			slog.String("error", err.Error()))
	} else {
		middleware.NotificationsFanned.Inc()
	}

	recipients, err := s.userRepo.ListIDsExcept(ctx, author.ID)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "fan-out: listing recipients failed",
			slog.String("error", err.Error()))
		return
	}

	message := truncateRunes(post.Content, 100)
	if len([]rune(post.Content)) > 100 {
		message += "..."
	}
	title := fmt.Sprintf("New post from %s", author.Username)

	for _, recipientID := range recipients {
		n := &models.Notification{
			UserID:  recipientID,
			Title:   title,
			Message: message,
		}
		if err := s.notificationRepo.Create(ctx, n); err != nil {
			middleware.Logger.ErrorContext(ctx, "fan-out: broadcast notification failed",
				slog.Uint64("recipient_id", uint64(recipientID)),
				slog.String("error", err.Error()))
			continue
		}
		middleware.NotificationsFanned.Inc()

		// Best effort: the mobile bridge must never affect the store writes.
		if s.bridge != nil {
			if err := s.bridge.PublishNewPost(ctx, recipientID, title, message); err != nil {
				middleware.Logger.WarnContext(ctx, "mobile bridge publish failed",
					slog.Uint64("recipient_id", uint64(recipientID)),
					slog.String("error", err.Error()))
			}
		}
	}
}

// Feed returns the posts shown to the viewer, newest first.
func (s *PostService) Feed(ctx context.Context, viewerID uint) ([]*models.Post, error) {
	if s.cfg.FeedScope == "own" {
		return s.postRepo.ListRecentByUser(ctx, viewerID, s.cfg.FeedLimit)
	}
	return s.postRepo.ListRecent(ctx, s.cfg.FeedLimit)
}

// Like increments the post's like counter and returns the new count.
// Repeated calls keep incrementing; there is no per-user dedup.
func (s *PostService) Like(ctx context.Context, postID uint) (int, error) {
	likes, err := s.postRepo.Like(ctx, postID)
	if err != nil {
		return 0, err
	}
	middleware.LikesRecorded.Inc()
	return likes, nil
}

// ProfileStats summarizes a user's activity for the profile page.
type ProfileStats struct {
	PostCount  int64
	TotalLikes int64
}

// Stats computes the profile counters for the given user.
func (s *PostService) Stats(ctx context.Context, userID uint) (*ProfileStats, error) {
	postCount, err := s.postRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	totalLikes, err := s.postRepo.SumLikesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileStats{PostCount: postCount, TotalLikes: totalLikes}, nil
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
