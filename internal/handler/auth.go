package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-api/internal/config"
	"github.com/moviehub/movie-api/internal/errs"
	"github.com/moviehub/movie-api/internal/middleware"
	"github.com/moviehub/movie-api/internal/model"
	"github.com/moviehub/movie-api/internal/repository"
	"github.com/moviehub/movie-api/internal/utils"
)

// UserStore is the slice of the user repository the auth handler needs.
type UserStore interface {
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Create(ctx context.Context, username, email, passwordHash string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// SessionStore creates and invalidates session rows.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	InvalidateByUserAndIP(ctx context.Context, userID uint64, ip string) error
}

// AttemptStore records login attempts.
type AttemptStore interface {
	Record(ctx context.Context, ip, email string, success bool) error
}

// AuthHandler bundles dependencies for the auth endpoints. Single-message
// failures are returned as *errs.HTTPError and rendered by the central
// error handler; field-level validation failures answer directly with an
// errors array.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Sessions SessionStore
	Attempts AttemptStore
}

func NewAuthHandler(cfg config.Config, u UserStore, s SessionStore, a AttemptStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Attempts: a}
}

// ----- DTOs -----

type signupReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// Signup creates a user, opens a session and returns a bearer token.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return errs.New(http.StatusBadRequest, "invalid request body")
	}
	username := utils.StripIdentifier(req.Username)
	email := utils.StripIdentifier(strings.ToLower(req.Email))

	if verrs := validateSignup(username, email, req.Password); len(verrs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "errors": verrs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Pre-check mirrors the API's duplicate message; the unique constraints
	// on users.email and users.username close the race under concurrency.
	exists, err := h.Users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return errs.New(http.StatusInternalServerError, "signup failed")
	}
	if exists {
		return errs.New(http.StatusBadRequest, "this email or username is already registered")
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return errs.New(http.StatusInternalServerError, "signup failed")
	}

	uid, err := h.Users.Create(ctx, username, email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return errs.New(http.StatusBadRequest, "this email or username is already registered")
		}
		return errs.New(http.StatusInternalServerError, "signup failed")
	}

	u := model.User{ID: uid, Username: username, Email: email, Role: model.RoleUser}
	return h.sendToken(ctx, c, u, http.StatusCreated)
}

// Login verifies credentials, records the attempt, opens a session and
// returns a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return errs.New(http.StatusBadRequest, "invalid request body")
	}
	email := utils.StripIdentifier(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return errs.New(http.StatusBadRequest, "email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ip := c.RealIP()
	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = h.Attempts.Record(ctx, ip, email, false)
			return errs.New(http.StatusUnauthorized, "incorrect email or password")
		}
		return errs.New(http.StatusInternalServerError, "login failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		_ = h.Attempts.Record(ctx, ip, email, false)
		return errs.New(http.StatusUnauthorized, "incorrect email or password")
	}
	_ = h.Attempts.Record(ctx, ip, email, true)

	return h.sendToken(ctx, c, u, http.StatusOK)
}

// Logout clears the jwt cookie and, when a parseable bearer token is
// presented, invalidates the caller's sessions for this IP. Both halves
// are best-effort: an absent or invalid token still gets a 200.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     "jwt",
		Value:    "loggedout",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Path:     "/",
	})

	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		raw := strings.TrimPrefix(auth, "Bearer ")
		if uid, err := utils.ParseAccessToken(h.Cfg.JWTSecret, raw); err == nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			_ = h.Sessions.InvalidateByUserAndIP(ctx, uid, c.RealIP())
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

// Me returns the identity attached by the auth guard.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return errs.New(http.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data":   echo.Map{"user": toUserPart(u)},
	})
}

// sendToken opens a session row, signs the bearer token, sets the
// httpOnly jwt cookie and writes the auth response envelope.
func (h *AuthHandler) sendToken(ctx context.Context, c echo.Context, u model.User, status int) error {
	sess := model.Session{
		UserID:    u.ID,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
	if err := h.Sessions.Create(ctx, &sess); err != nil {
		return errs.New(http.StatusInternalServerError, "could not create session")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.JWTTTLHours)
	if err != nil {
		return errs.New(http.StatusInternalServerError, "could not issue token")
	}

	c.SetCookie(&http.Cookie{
		Name:     "jwt",
		Value:    access.Token,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   h.Cfg.Env == "production" || c.Scheme() == "https",
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	return c.JSON(status, echo.Map{
		"status": "success",
		"token":  access.Token,
		"data":   echo.Map{"user": toUserPart(u)},
	})
}
