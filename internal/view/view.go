// Package view renders handler results into HTML documents. Rendering is a
// pure function of the view model: a fixed shell (header, nav, container)
// plus a per-page content fragment. No state, no side effects.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"xtagram/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = map[string]*template.Template{}

func init() {
	for _, page := range []string{
		"landing.html",
		"feed.html",
		"login.html",
		"register.html",
		"profile.html",
		"notifications.html",
	} {
		pages[page] = template.Must(template.New("layout.html").ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/"+page,
		))
	}
}

// Nav drives the navigation fragment of the shell. UnreadCount renders the
// badge only when greater than zero.
type Nav struct {
	LoggedIn    bool
	UnreadCount int64
}

// PostView is one feed entry.
type PostView struct {
	ID        uint
	Author    string
	AvatarURL string
	Content   string
	Likes     int
	PostedAt  string
}

// NotificationView is one row on the notifications page.
type NotificationView struct {
	ID      uint
	Title   string
	Message string
	Time    string
	IsRead  bool
}

// FeedPage is the authenticated home page.
type FeedPage struct {
	Nav   Nav
	Posts []PostView
}

// FormPage backs the login and register forms.
type FormPage struct {
	Nav   Nav
	Error string
}

// ProfilePage shows the user's stats and image grid.
type ProfilePage struct {
	Nav        Nav
	Username   string
	AvatarURL  string
	PostCount  int64
	TotalLikes int64
	GridSeeds  []int
}

// NotificationsPage lists the user's notifications, newest first.
type NotificationsPage struct {
	Nav           Nav
	Notifications []NotificationView
}

// LandingPage greets anonymous visitors.
type LandingPage struct {
	Nav Nav
}

func render(page string, data any) (string, error) {
	tmpl, ok := pages[page]
	if !ok {
		return "", fmt.Errorf("unknown page template %q", page)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", page, err)
	}
	return buf.String(), nil
}

// Landing renders the anonymous home page.
func Landing() (string, error) {
	return render("landing.html", LandingPage{})
}

// Feed renders the authenticated home page.
func Feed(posts []*models.Post, unread int64) (string, error) {
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, PostView{
			ID:        p.ID,
			Author:    p.User.Username,
			AvatarURL: p.User.AvatarURL,
			Content:   p.Content,
			Likes:     p.Likes,
			PostedAt:  FormatTime(p.CreatedAt),
		})
	}
	return render("feed.html", FeedPage{
		Nav:   Nav{LoggedIn: true, UnreadCount: unread},
		Posts: views,
	})
}

// Login renders the login form, optionally with an error message.
func Login(errMsg string) (string, error) {
	return render("login.html", FormPage{Error: errMsg})
}

// Register renders the registration form, optionally with an error message.
func Register(errMsg string) (string, error) {
	return render("register.html", FormPage{Error: errMsg})
}

// Profile renders the user's profile page.
func Profile(user *models.User, postCount, totalLikes int64) (string, error) {
	seeds := make([]int, 9)
	for i := range seeds {
		seeds[i] = i
	}
	return render("profile.html", ProfilePage{
		Nav:        Nav{LoggedIn: true},
		Username:   user.Username,
		AvatarURL:  user.AvatarURL,
		PostCount:  postCount,
		TotalLikes: totalLikes,
		GridSeeds:  seeds,
	})
}

// Notifications renders the notifications page.
func Notifications(notifications []*models.Notification) (string, error) {
	views := make([]NotificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, NotificationView{
			ID:      n.ID,
			Title:   n.Title,
			Message: n.Message,
			Time:    n.CreatedAt.Format("15:04"),
			IsRead:  n.IsRead,
		})
	}
	return render("notifications.html", NotificationsPage{
		Nav:           Nav{LoggedIn: true},
		Notifications: views,
	})
}

// FormatTime renders a post timestamp the way the feed shows it.
func FormatTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}
