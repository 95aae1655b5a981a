package services

import (
	"context"
	"fmt"
	"log"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/pkg/auth"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/errors"
	"github.com/certibase/backend/pkg/utils"
)

// ==================== User Management ====================

// CreateUserRequest contains the data needed to create a new user
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// CreateUser creates a new user account (admin only)
func (s *AuthService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if !auth.IsValidEmail(req.Email) {
		return nil, errors.NewValidationError(constants.FieldEmail, "Invalid email format")
	}

	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = constants.RoleStaff
	}
	if !isValidRole(role) {
		return nil, errors.NewValidationError("role", "Unknown role: "+role)
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if exists {
		return nil, errors.NewConflictError(constants.TableUser, constants.FieldEmail, req.Email)
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:       utils.GenerateID(),
		Email:    req.Email,
		Name:     req.Name,
		Role:     role,
		IsActive: true,
	}
	if err := s.users.Insert(ctx, user, hashedPassword); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("👤 User created: %s (%s)", user.Email, user.Role)
	return user, nil
}

// UpdateUserRequest contains the data that can be updated on a user
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive *bool  `json:"isActive"`
}

// UpdateUser updates an existing user's information (admin only)
func (s *AuthService) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user", userID)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" && req.Email != user.Email {
		if !auth.IsValidEmail(req.Email) {
			return nil, errors.NewValidationError(constants.FieldEmail, "Invalid email format")
		}
		exists, err := s.users.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if exists {
			return nil, errors.NewConflictError(constants.TableUser, constants.FieldEmail, req.Email)
		}
		user.Email = req.Email
	}
	if req.Role != "" {
		if !isValidRole(req.Role) {
			return nil, errors.NewValidationError("role", "Unknown role: "+req.Role)
		}
		user.Role = req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	log.Printf("📝 User updated: %s", userID)
	return user, nil
}

// GetUsers retrieves all users, newest first (admin only)
func (s *AuthService) GetUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	return users, nil
}

func isValidRole(role string) bool {
	for _, r := range constants.ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
