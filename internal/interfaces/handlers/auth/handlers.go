package auth

import (
	"context"
	"errors"

	authsvc "edutoken-backend/internal/auth"
	"edutoken-backend/internal/middleware"
	"edutoken-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// principalSessionsPrefix indexes the live session ids of one principal (a Redis set).
const principalSessionsPrefix = "principal_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Finder authsvc.PrincipalFinder
	DB     *gorm.DB
	Rdb    *redis.Client
	Config middleware.SessionConfig
}

// LoginRequest body.
type LoginRequest struct {
	Principal string `json:"principal"`
	Password  string `json:"password"`
}

// Register POST /api/v1/auth/register: create a principal with a bcrypt password.
func (h *Handlers) Register(c *fiber.Ctx) error {
	if h.DB == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, authsvc.ErrPrincipalPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	p, err := authsvc.RegisterPrincipal(h.DB, req)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrPrincipalExists):
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		case errors.Is(err, authsvc.ErrPrincipalPasswordRequired),
			errors.Is(err, authsvc.ErrInvalidPrincipal),
			errors.Is(err, authsvc.ErrWeakPassword),
			errors.Is(err, authsvc.ErrInvalidDisplayName):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			log.Error().Err(err).Msg("register principal")
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	log.Info().Str("principal", p.Principal).Msg("Principal registered")
	return response.SuccessCreated(c, "Principal registered", fiber.Map{
		"principal": fiber.Map{
			"principal":    p.Principal,
			"display_name": p.DisplayName,
		},
	}, nil)
}

// Login POST /api/v1/auth/login: authenticate, create session, SAdd principal_sessions:<principal>, set cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.Finder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, authsvc.ErrPrincipalPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}
	if req.Principal == "" || req.Password == "" {
		return response.Error(c, authsvc.ErrPrincipalPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	p, err := h.Finder.FindByPrincipalAndPassword(req.Principal, req.Password)
	if err != nil {
		switch err {
		case authsvc.ErrPrincipalPasswordRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case authsvc.ErrInvalidPrincipal, authsvc.ErrIncorrectPassword:
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionPrincipal(c, middleware.SessionPrincipal{
		Principal:   p.Principal,
		DisplayName: p.DisplayName,
	})

	ctx := context.Background()
	if err := h.Rdb.SAdd(ctx, principalSessionsPrefix+p.Principal, sessionID).Err(); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = sessionID
	c.Cookie(&cookie)

	return response.Success(c, "Login successful", fiber.Map{
		"principal": fiber.Map{
			"principal":    p.Principal,
			"display_name": p.DisplayName,
		},
	}, nil)
}

// Me GET /api/v1/auth/me: return current session principal.
func (h *Handlers) Me(c *fiber.Ctx) error {
	sessionUser := middleware.GetUser(c)
	p, err := authsvc.VerifyPrincipal(sessionUser)
	if err != nil {
		log.Debug().Str("path", "/auth/me").
			Bool("session_id_present", middleware.GetSessionID(c) != "").
			Bool("session_user_nil", sessionUser == nil).
			Msg("auth/me: returning 401 Not authenticated")
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"principal": p}, nil)
}

// Logout DELETE /api/v1/auth/logout: SRem principal_sessions:<principal>, Del session key, clear cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := context.Background()

	if principal := middleware.CallerPrincipal(c); principal != "" && sessionID != "" {
		_ = h.Rdb.SRem(ctx, principalSessionsPrefix+principal, sessionID).Err()
	}
	if sessionID != "" {
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}

	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}
