package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ndc-feature-tracker/internal/config"
	"github.com/iliyamo/ndc-feature-tracker/internal/model"
	"github.com/iliyamo/ndc-feature-tracker/internal/repository"
	"github.com/iliyamo/ndc-feature-tracker/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Log    *zap.Logger
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Log: log}
}

var credentialsMessages = map[string]string{
	rootField:  bodyMustBeObject,
	"email":    "A valid email is required",
	"password": "Password must be between 8 and 72 characters",
}

var registerSchema = mustSchema(object(map[string]any{
	"email":    map[string]any{"type": "string", "format": "email", "maxLength": 255},
	"password": map[string]any{"type": "string", "minLength": 8, "maxLength": 72},
}, "email", "password"), credentialsMessages)

var loginSchema = mustSchema(object(map[string]any{
	"email":    map[string]any{"type": "string", "minLength": 1},
	"password": map[string]any{"type": "string", "minLength": 1},
}, "email", "password"), map[string]string{
	rootField:  bodyMustBeObject,
	"email":    "Email is required",
	"password": "Password is required",
})

var refreshSchema = mustSchema(object(map[string]any{
	"refresh_token": text(512),
}, "refresh_token"), map[string]string{
	rootField:       bodyMustBeObject,
	"refresh_token": "refresh_token is required",
})

var logoutSchema = mustSchema(object(map[string]any{
	"refresh_token": map[string]any{"type": "string"},
}), map[string]string{
	rootField:       bodyMustBeObject,
	"refresh_token": "refresh_token must be a string",
})

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// issue creates an access/refresh pair.  When oldHash is set the old refresh
// token is rotated out in the same transaction.
func (h *AuthHandler) issue(ctx context.Context, u userPart, oldHash string) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	newHash := utils.HashRefreshRaw(refresh.Raw)
	if oldHash == "" {
		err = h.Tokens.StoreRefresh(ctx, u.ID, newHash, refresh.Exp)
	} else {
		err = h.Tokens.Rotate(ctx, u.ID, oldHash, newHash, refresh.Exp)
	}
	if err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

// Register creates an account and signs it in.  The first account becomes
// ADMIN, later ones VIEWER.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentials
	if err := registerSchema.bind(c, &req); err != nil {
		msg, _ := asValidation(err)
		return validationFailed(c, msg)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n, err := h.Users.Count(ctx)
	if err != nil {
		h.Log.Error("count users", zap.Error(err))
		return internal(c, "Failed to register user")
	}
	role := model.RoleViewer
	if n == 0 {
		role = model.RoleAdmin
	}

	uid, err := h.Users.Create(ctx, email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return conflict(c, "An account with this email already exists")
		}
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return validationFailed(c, "Password must be between 8 and 72 characters")
		}
		h.Log.Error("create user", zap.Error(err))
		return internal(c, "Failed to register user")
	}

	resp, err := h.issue(ctx, userPart{ID: uid, Email: email, Role: role}, "")
	if err != nil {
		h.Log.Error("issue tokens", zap.Uint64("user_id", uid), zap.Error(err))
		return internal(c, "Failed to issue tokens")
	}
	return respond(c, http.StatusCreated, resp, "User registered successfully")
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentials
	if err := loginSchema.bind(c, &req); err != nil {
		msg, _ := asValidation(err)
		return validationFailed(c, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
		}
		h.Log.Error("load user", zap.Error(err))
		return internal(c, "Failed to log in")
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
	}

	resp, err := h.issue(ctx, userPart{ID: u.ID, Email: u.Email, Role: u.Role}, "")
	if err != nil {
		h.Log.Error("issue tokens", zap.Uint64("user_id", u.ID), zap.Error(err))
		return internal(c, "Failed to issue tokens")
	}
	return respond(c, http.StatusOK, resp, "Logged in successfully")
}

// Refresh swaps a live refresh token for a new pair.  The presented token is
// revoked; presenting it again fails.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := refreshSchema.bind(c, &req); err != nil {
		msg, _ := asValidation(err)
		return validationFailed(c, msg)
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash, time.Now().UTC())
	if err != nil {
		return h.invalidRefresh(c, err)
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusUnauthorized, "Unauthorized", "Invalid refresh token")
		}
		h.Log.Error("load user", zap.Uint64("user_id", userID), zap.Error(err))
		return internal(c, "Failed to refresh session")
	}

	resp, err := h.issue(ctx, userPart{ID: u.ID, Email: u.Email, Role: u.Role}, hash)
	if err != nil {
		return h.invalidRefresh(c, err)
	}
	return respond(c, http.StatusOK, resp, "Session refreshed")
}

func (h *AuthHandler) invalidRefresh(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrRefreshInvalid) {
		return fail(c, http.StatusUnauthorized, "Unauthorized", "Invalid refresh token")
	}
	h.Log.Error("refresh session", zap.Error(err))
	return internal(c, "Failed to refresh session")
}

// Logout revokes the refresh token in the body, or every token of the
// bearer when the body carries none.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := logoutSchema.bind(c, &req); err != nil {
		msg, _ := asValidation(err)
		return validationFailed(c, msg)
	}
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash, time.Now().UTC()); err != nil {
			return h.invalidRefresh(c, err)
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			h.Log.Error("revoke refresh token", zap.Error(err))
			return internal(c, "Failed to log out")
		}
		return respond(c, http.StatusOK, nil, "Logged out successfully")
	}

	bearer, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	if !ok {
		return validationFailed(c, "Provide an Authorization header or refresh_token")
	}
	cl, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimSpace(bearer))
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized", "Invalid token")
	}
	if err := h.Tokens.RevokeAllForUser(ctx, cl.UserID); err != nil {
		h.Log.Error("revoke all refresh tokens", zap.Uint64("user_id", cl.UserID), zap.Error(err))
		return internal(c, "Failed to log out")
	}
	return respond(c, http.StatusOK, nil, "Logged out of all sessions")
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := c.Get(utils.ContextUserID).(uint64)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Unauthorized", "Authentication required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound(c, "User not found")
		}
		h.Log.Error("load user", zap.Uint64("user_id", id), zap.Error(err))
		return internal(c, "Failed to load user")
	}
	return respond(c, http.StatusOK, userPart{ID: u.ID, Email: u.Email, Role: u.Role}, "")
}
