package server

import (
	"log/slog"
	"time"

	"xtagram/internal/middleware"
	"xtagram/internal/models"
	"xtagram/internal/view"

	"github.com/gofiber/fiber/v2"
)

// currentUserID reads the user ID stored by RequireAuthenticated.
func currentUserID(c *fiber.Ctx) uint {
	userID, _ := c.Locals("userID").(uint)
	return userID
}

// sendHTML writes a rendered page, or a 500 when rendering failed.
func (s *Server) sendHTML(c *fiber.Ctx, html string, err error) error {
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "page render failed",
			slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}

// Home handles GET /. Probe traffic gets a JSON liveness answer; browsers get
// the landing page, or the feed when a session is present.
func (s *Server) Home(c *fiber.Ctx) error {
	if isProbe(c) {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}

	userID, ok := s.sessions.UserID(c)
	if !ok {
		html, err := view.Landing()
		return s.sendHTML(c, html, err)
	}

	ctx := c.UserContext()
	posts, err := s.postService.Feed(ctx, userID)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "loading feed failed",
			slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	unread, err := s.notificationService.UnreadCount(ctx, userID)
	if err != nil {
		// Badge is cosmetic; show the feed anyway.
		middleware.Logger.WarnContext(ctx, "unread count failed",
			slog.String("error", err.Error()))
		unread = 0
	}

	html, err := view.Feed(posts, unread)
	return s.sendHTML(c, html, err)
}

// RegisterForm handles GET /register.
func (s *Server) RegisterForm(c *fiber.Ctx) error {
	html, err := view.Register("")
	return s.sendHTML(c, html, err)
}

// Register handles POST /register. Duplicate usernames and empty fields come
// back as a form error; success starts a session and lands on the feed.
func (s *Server) Register(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	user, err := s.userService.Register(c.UserContext(), username, password)
	if err != nil {
		if models.IsCode(err, "DUPLICATE") || models.IsCode(err, "VALIDATION_ERROR") {
			html, renderErr := view.Register(err.Error())
			return s.sendHTML(c, html, renderErr)
		}
		middleware.Logger.ErrorContext(c.UserContext(), "registration failed",
			slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	if err := s.sessions.Login(c, user.ID); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "session issue failed",
			slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// LoginForm handles GET /login.
func (s *Server) LoginForm(c *fiber.Ctx) error {
	html, err := view.Login("")
	return s.sendHTML(c, html, err)
}

// Login handles POST /login. A failed attempt answers with plain error text
// that never reveals whether the username exists.
func (s *Server) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	user, err := s.userService.Authenticate(c.UserContext(), username, password)
	if err != nil {
		if models.IsCode(err, "UNAUTHORIZED") {
			return c.Status(fiber.StatusUnauthorized).SendString("Invalid credentials")
		}
		middleware.Logger.ErrorContext(c.UserContext(), "login failed",
			slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	if err := s.sessions.Login(c, user.ID); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "session issue failed",
			slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Logout handles GET /logout.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.sessions.Logout(c)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// CreatePost handles POST /post. Every outcome, including silently skipped
// content, ends in the same redirect back to the feed.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	content := c.FormValue("content")

	_, _, err := s.postService.CreatePost(c.UserContext(), currentUserID(c), content)
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "creating post failed",
			slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Profile handles GET /profile.
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	user, err := s.userService.GetByID(ctx, userID)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "loading profile failed",
			slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	stats, err := s.postService.Stats(ctx, userID)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "loading profile stats failed",
			slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	html, err := view.Profile(user, stats.PostCount, stats.TotalLikes)
	return s.sendHTML(c, html, err)
}

// Notifications handles GET /notifications.
func (s *Server) Notifications(c *fiber.Ctx) error {
	ctx := c.UserContext()

	notifications, err := s.notificationService.List(ctx, currentUserID(c))
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "loading notifications failed",
			slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	html, err := view.Notifications(notifications)
	return s.sendHTML(c, html, err)
}

// ReadNotification handles GET /read_notification/:id. Missing rows, malformed
// IDs and ownership mismatches all redirect the same way as success.
func (s *Server) ReadNotification(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := c.ParamsInt("id")
	if err == nil && id > 0 {
		if _, err := s.notificationService.MarkRead(ctx, uint(id), currentUserID(c)); err != nil {
			middleware.Logger.ErrorContext(ctx, "marking notification read failed",
				slog.Int("notification_id", id),
				slog.String("error", err.Error()))
		}
	}
	return c.Redirect("/notifications", fiber.StatusSeeOther)
}

// logNotificationRequest is the payload the mobile shell posts.
type logNotificationRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// LogNotification handles POST /api/log_notification.
func (s *Server) LogNotification(c *fiber.Ctx) error {
	var req logNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if _, err := s.notificationService.LogClientEvent(c.UserContext(), currentUserID(c), req.Type, req.Content); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"status": "logged"})
}

// LikePost handles GET /like/:id. Likes are a bare counter; repeated requests
// keep incrementing.
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", c.Params("id")))
	}

	likes, err := s.postService.Like(c.UserContext(), uint(id))
	if err != nil {
		if models.IsCode(err, "NOT_FOUND") {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"status": "ok",
		"likes":  likes,
	})
}
