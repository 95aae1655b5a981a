package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/certibase/backend/internal/application/services"
	"github.com/certibase/backend/pkg/auth"
	"github.com/certibase/backend/pkg/constants"
)

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		constants.ResponseError: "Unauthorized",
		constants.FieldMessage:  message,
		"code":                  "UNAUTHORIZED",
		"data":                  nil,
	})
	c.Abort()
}

// RequireAuth validates the bearer token and the backing session row, and
// stores the user session in the request context.
func RequireAuth(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			abortUnauthorized(c, "No authorization token provided")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}
		tokenString := parts[1]

		claims, err := authSvc.ValidateSession(c.Request.Context(), tokenString)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		// Last activity is non-critical, fire and forget
		authSvc.TouchSession(claims.RegisteredClaims.ID)

		c.Set(constants.ContextKeyUser, claims.User)
		c.Set(constants.ContextKeyToken, tokenString)
		c.Set("sessionId", claims.RegisteredClaims.ID)

		c.Next()
	}
}

func requireRole(c *gin.Context, check func(role string) bool, message string) {
	userInterface, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		abortUnauthorized(c, "User not authenticated")
		return
	}

	user := userInterface.(auth.UserSession)
	if !check(user.Role) {
		c.JSON(http.StatusForbidden, gin.H{
			constants.ResponseError: "Forbidden",
			constants.FieldMessage:  message,
			"code":                  "FORBIDDEN",
			"data":                  nil,
		})
		c.Abort()
		return
	}

	c.Next()
}

// RequireAdmin allows only administrators through.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		requireRole(c, constants.IsAdmin, "Only administrators can access this resource")
	}
}

// RequireManager allows managers and administrators through.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		requireRole(c, constants.IsManager, "Only managers can access this resource")
	}
}
