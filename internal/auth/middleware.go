package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"backend/internal/common"
)

const (
	ContextUserIDKey = "user_id"
	ContextRoleIDKey = "role_id"
)

// AuthMiddleware validates the Bearer token and stores the actor's
// identity on the gin context for downstream handlers.
func AuthMiddleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			common.AbortWithError(c, common.CodeUnauthorized, "missing authorization token")
			return
		}

		claims, err := jwtService.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			msg := "invalid authorization token"
			if errors.Is(err, ErrTokenExpired) {
				msg = "authorization token expired"
			}
			common.AbortWithError(c, common.CodeUnauthorized, msg)
			return
		}
		if claims.TokenType != "access" {
			common.AbortWithError(c, common.CodeUnauthorized, "refresh token cannot be used for access")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleIDKey, claims.RoleID)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentUserID returns the authenticated user ID, or "" when the
// request passed no auth middleware.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

// CurrentRoleID returns the authenticated user's role ID.
func CurrentRoleID(c *gin.Context) string {
	return c.GetString(ContextRoleIDKey)
}
