package organization

import (
	"errors"
	"strings"

	"backend/internal/auth"
	"backend/internal/common"
	"backend/internal/organization"

	"github.com/gin-gonic/gin"
)

// AuthHandler exposes login, token refresh and logout.
type AuthHandler struct {
	service    *organization.Service
	jwtService *auth.JWTService
}

func NewAuthHandler(service *organization.Service, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{service: service, jwtService: jwtService}
}

// Login authenticates a user and issues a token pair.
// @Summary Sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "credentials"
// @Success 200 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.service.GetUserByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, organization.ErrUserNotFound) {
			common.ResponseError(c, common.CodeInvalidCredentials, "")
			return
		}
		common.ResponseInternalError(c, "login failed")
		return
	}
	if !user.IsActive {
		common.ResponseError(c, common.CodeUserDisabled, "")
		return
	}
	if !h.service.VerifyPassword(user, req.Password) {
		common.ResponseError(c, common.CodeInvalidCredentials, "")
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(user.ID, user.RoleID)
	if err != nil {
		common.ResponseInternalError(c, "failed to issue tokens")
		return
	}
	common.ResponseSuccess(c, gin.H{"user": user, "tokens": pair})
}

// Refresh exchanges a refresh token for a new pair.
// @Summary Refresh tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "refresh token"
// @Success 200 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Router /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "invalid request: "+err.Error())
		return
	}

	pair, err := h.jwtService.RefreshTokenPair(c.Request.Context(), req.RefreshToken)
	if err != nil {
		common.ResponseUnauthorized(c, "invalid refresh token")
		return
	}
	common.ResponseSuccess(c, pair)
}

// Logout revokes the caller's access token.
// @Summary Sign out
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} common.APIResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		common.ResponseUnauthorized(c, "missing authorization token")
		return
	}

	claims, err := h.jwtService.ValidateToken(c.Request.Context(), strings.TrimSpace(parts[1]))
	if err != nil {
		common.ResponseUnauthorized(c, "invalid authorization token")
		return
	}
	if err := h.jwtService.RevokeToken(c.Request.Context(), claims); err != nil {
		common.ResponseInternalError(c, "failed to revoke token")
		return
	}
	common.ResponseSuccessMessage(c, "signed out", nil)
}

// Me returns the authenticated user's profile.
// @Summary Current user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} common.APIResponse
// @Router /api/v1/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		respondOrganizationError(c, err)
		return
	}
	common.ResponseSuccess(c, user)
}
