package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lokalo/lokalo-backend/internal/common"
	"github.com/lokalo/lokalo-backend/internal/middleware"
	"github.com/lokalo/lokalo-backend/internal/service"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// LoginRequest login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest refresh token request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Register handles POST /api/v1/auth/register
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterRequest true "registration payload"
// @Success 201 {object} common.APIResponse{data=domain.UserResponse}
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.service.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrEmailTaken):
			common.ErrorResponse(c, http.StatusConflict, "Email already in use", err)
		case errors.Is(err, common.ErrUsernameTaken):
			common.ErrorResponse(c, http.StatusConflict, "Username already in use", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Registration failed", err)
		}
		return
	}

	common.CreatedResponse(c, user)
}

// Login handles POST /api/v1/auth/login
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "credentials"
// @Success 200 {object} common.APIResponse{data=service.LoginResponse}
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	response, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			common.ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Login failed", err)
		return
	}

	common.SuccessResponse(c, response, nil)
}

// RefreshToken handles POST /api/v1/auth/refresh
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "refresh token"
// @Success 200 {object} common.APIResponse{data=service.TokenPair}
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tokens, err := h.service.RefreshToken(req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrUserNotFound) {
			common.ErrorResponse(c, http.StatusUnauthorized, "Invalid refresh token", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Token refresh failed", err)
		return
	}

	common.SuccessResponse(c, tokens, nil)
}

// Me handles GET /api/v1/auth/me
// @Summary Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} common.APIResponse{data=domain.UserResponse}
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.GetProfile(middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "User not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Profile lookup failed", err)
		return
	}

	common.SuccessResponse(c, user, nil)
}

// DeleteAccount handles DELETE /api/v1/auth/me
// @Summary Delete the authenticated account and its listings and favorites
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 204
// @Router /auth/me [delete]
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	if err := h.service.DeleteAccount(middleware.GetUserID(c)); err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "User not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Account deletion failed", err)
		return
	}

	c.Status(http.StatusNoContent)
}
