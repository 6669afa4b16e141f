package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Avdeevkonst/oauth2-chat/internal/api/dto"
	"github.com/Avdeevkonst/oauth2-chat/internal/auth"
	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
	"github.com/Avdeevkonst/oauth2-chat/internal/service"
	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

// UsersHandler exposes account and token endpoints.
type UsersHandler struct {
	auth     *service.AuthService
	profiles *service.ProfileService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, profileService *service.ProfileService) *UsersHandler {
	return &UsersHandler{auth: authService, profiles: profileService}
}

// Register handles POST /user/registration.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}

	role := domain.RoleUser
	if req.Role != "" {
		parsed, ok := domain.ParseRole(req.Role)
		if !ok {
			return fiber.NewError(http.StatusBadRequest, "unknown role")
		}
		role = parsed
	}

	user, personal, err := h.auth.Register(c.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Role:     role,
		Phone:    req.Phone,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.NewUserView(user, personal, false))
}

// Login handles POST /user/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}

	_, pair, err := h.auth.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewTokenPairResponse(pair))
}

// Refresh handles POST /user/refresh-token.
func (h *UsersHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Token == "" {
		return fiber.NewError(http.StatusBadRequest, "token required")
	}

	pair, err := h.auth.Refresh(c.Context(), req.Token)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewTokenPairResponse(pair))
}

// ChangePassword handles PUT /user/change/password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	userID, err := claims.RequireUserID()
	if err != nil {
		return err
	}
	email, err := claims.RequireEmail()
	if err != nil {
		return err
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "username, password, new_password required")
	}

	if err := h.auth.ChangePassword(c.Context(), userID, email, req.Username, req.Password, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_changed"}})
}

// RequestPasswordReset handles POST /user/password/reset/request.
func (h *UsersHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" {
		return fiber.NewError(http.StatusBadRequest, "username required")
	}

	token, err := h.auth.RequestPasswordReset(c.Context(), req.Username)
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{
			"reset_token": token.Token,
			"expires_at":  token.ExpiresAt,
		},
	})
}

// ConfirmPasswordReset handles POST /user/password/reset/confirm.
func (h *UsersHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Token == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "token and new password required")
	}

	if err := h.auth.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_reset"}})
}

// Profile handles GET /user/profile/:user_id.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	requesterID, err := claims.RequireUserID()
	if err != nil {
		return err
	}
	userID, err := strconv.ParseInt(c.Params("user_id"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "user_id must be numeric")
	}

	user, personal, redacted, err := h.profiles.Get(c.Context(), requesterID, userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserView(user, personal, redacted))
}

// ChangeProfile handles PUT /user/change/profile.
func (h *UsersHandler) ChangeProfile(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	userID, err := claims.RequireUserID()
	if err != nil {
		return err
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	personal, err := h.profiles.Update(c.Context(), userID, req.Phone, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"phone": personal.Phone,
		"email": personal.Email,
	}})
}

// Me handles GET /user/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	userID, err := claims.RequireUserID()
	if err != nil {
		return err
	}

	user, personal, err := h.auth.Me(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserView(user, personal, false))
}
