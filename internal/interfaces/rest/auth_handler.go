package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/certibase/backend/internal/application/services"
	"github.com/certibase/backend/pkg/auth"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/errors"
)

type AuthHandler struct {
	svcMgr *services.ServiceManager
}

func NewAuthHandler(svcMgr *services.ServiceManager) *AuthHandler {
	return &AuthHandler{svcMgr: svcMgr}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !BindJSON(c, &req) {
		return
	}

	if !auth.IsValidEmail(req.Email) {
		RespondError(c, http.StatusBadRequest, "Invalid email format")
		return
	}

	result, err := h.svcMgr.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user": gin.H{
			"id":    result.User.ID,
			"name":  result.User.Name,
			"email": result.User.Email,
			"role":  result.User.Role,
		},
		"expiresAt": result.ExpiresAt.Format(time.RFC3339),
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenString, exists := c.Get(constants.ContextKeyToken)
	if !exists {
		RespondError(c, http.StatusUnauthorized, "No token provided")
		return
	}

	HandleDeleteEnvelope(c, "Logged out successfully", func() error {
		return h.svcMgr.Auth.Logout(c.Request.Context(), tokenString.(string))
	})
}

// GetMe handles GET /api/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	HandleGetEnvelope(c, "user", func() (interface{}, error) {
		return h.svcMgr.Auth.GetUserByID(c.Request.Context(), user.ID)
	})
}

// ChangePasswordRequest represents change password request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !BindJSON(c, &req) {
		return
	}

	user := GetUserFromContext(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}
	sessionID := c.GetString("sessionId")

	HandleDeleteEnvelope(c, "Password changed successfully", func() error {
		return h.svcMgr.Auth.ChangePassword(c.Request.Context(), user.ID, sessionID, req.CurrentPassword, req.NewPassword)
	})
}

// User management (admin only)

// ListUsers handles GET /api/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	HandleGetEnvelope(c, "users", func() (interface{}, error) {
		return h.svcMgr.Auth.GetUsers(c.Request.Context())
	})
}

// CreateUser handles POST /api/users
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	HandleCreateEnvelope(c, "user", "User created successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Auth.CreateUser(c.Request.Context(), req)
	})
}

// UpdateUser handles PUT /api/users/:id
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		RespondAppError(c, errors.NewValidationError("id", "User ID is required"))
		return
	}

	var req services.UpdateUserRequest
	HandleUpdateEnvelope(c, "user", "User updated successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Auth.UpdateUser(c.Request.Context(), id, req)
	})
}
