package handlers

import (
	"time"

	"iprofit/internal/services/auth"
	"iprofit/internal/utils"
	"iprofit/internal/utils/response"
	"iprofit/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
	secure      bool
	refreshTTL  time.Duration
}

// NewAuthHandler builds the auth endpoints. secure marks cookies Secure
// (production); refreshTTL sets the refresh cookie lifetime.
func NewAuthHandler(authService auth.Service, secure bool, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		secure:      secure,
		refreshTTL:  refreshTTL,
	}
}

// AdminLogin handles admin authentication and returns JWT tokens
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if ok, err := bind(c, &input); !ok {
		return err
	}

	result, err := h.authService.AdminLogin(c.UserContext(), input.Email, input.Password, c.IP())
	if err != nil {
		return response.FromError(c, err)
	}

	h.setAuthCookies(c, result.Tokens)
	return response.Success(c, "Login successful", result)
}

// Signup registers an app user.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req auth.SignupRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	v := validation.New()
	v.Signup(req.Name, req.Email, req.Phone, req.Password)
	if !v.Valid() {
		return response.ValidationError(c, v.Errors)
	}

	result, err := h.authService.Signup(c.UserContext(), req, c.IP())
	if err != nil {
		return response.FromError(c, err)
	}

	h.setAuthCookies(c, result.Tokens)
	return response.Created(c, "Account created", result)
}

// UserLogin authenticates an app user from a known device.
func (h *AuthHandler) UserLogin(c *fiber.Ctx) error {
	var req auth.UserLoginRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if req.Email == "" && req.Phone == "" {
		return response.ValidationError(c, map[string]string{"email": "email or phone is required"})
	}

	result, err := h.authService.UserLogin(c.UserContext(), req, c.IP())
	if err != nil {
		return response.FromError(c, err)
	}

	h.setAuthCookies(c, result.Tokens)
	return response.Success(c, "Login successful", result)
}

// DeviceCheck reports whether a device may register another account.
func (h *AuthHandler) DeviceCheck(c *fiber.Ctx) error {
	var input struct {
		DeviceID string `json:"device_id" validate:"required"`
		UserID   *uint  `json:"user_id,omitempty"`
	}
	if ok, err := bind(c, &input); !ok {
		return err
	}

	check, err := h.authService.CheckDevice(c.UserContext(), input.DeviceID, input.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Device checked", check)
}

// RefreshToken handles token refresh requests
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		var input struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.BodyParser(&input); err != nil {
			return response.Error(c, fiber.StatusUnauthorized, "Refresh token not provided")
		}
		refreshToken = input.RefreshToken
	}
	if refreshToken == "" {
		return response.Error(c, fiber.StatusUnauthorized, "Refresh token not provided")
	}

	tokens, err := h.authService.Refresh(c.UserContext(), refreshToken)
	if err != nil {
		return response.FromError(c, err)
	}

	h.setAuthCookies(c, *tokens)
	return response.Success(c, "Token refreshed", tokens)
}

// Logout invalidates every token issued to the caller.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	if err := h.authService.Logout(c.UserContext(), claims); err != nil {
		return response.FromError(c, err)
	}

	h.clearAuthCookies(c)
	return response.Success(c, "Successfully logged out", nil)
}

// Me returns the caller's claims.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	return response.Success(c, "Current session", fiber.Map{
		"id":           claims.UserID,
		"email":        claims.Email,
		"role":         claims.Role,
		"subject_type": claims.SubjectType,
		"permissions":  claims.Permissions,
	})
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, tokens auth.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    tokens.AccessToken,
		HTTPOnly: true,
		Secure:   h.secure,
		Path:     "/",
		SameSite: "Strict",
		MaxAge:   int(tokens.ExpiresIn),
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    tokens.RefreshToken,
		HTTPOnly: true,
		Secure:   h.secure,
		Path:     "/api/auth",
		SameSite: "Strict",
		MaxAge:   int(h.refreshTTL.Seconds()),
	})
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		Expires:  expired,
		HTTPOnly: true,
		Secure:   h.secure,
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Expires:  expired,
		HTTPOnly: true,
		Secure:   h.secure,
		Path:     "/api/auth",
	})
}
