package services

import (
	"context"
	"fmt"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/infrastructure/persistence"
	"github.com/certibase/backend/pkg/errors"
	"github.com/certibase/backend/pkg/utils"
)

// StandardService manages the catalogue of certifiable standards.
type StandardService struct {
	standards *persistence.StandardRepository
}

func NewStandardService(standards *persistence.StandardRepository) *StandardService {
	return &StandardService{standards: standards}
}

// StandardRequest carries a standard create/update.
type StandardRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (s *StandardService) CreateStandard(ctx context.Context, req StandardRequest) (*models.ISOStandard, error) {
	exists, err := s.standards.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if exists {
		return nil, errors.NewConflictError("iso_standards", "code", req.Code)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	std := &models.ISOStandard{
		ID:          utils.GenerateID(),
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    active,
	}
	if err := s.standards.Insert(ctx, std); err != nil {
		return nil, fmt.Errorf("failed to create standard: %w", err)
	}
	return std, nil
}

func (s *StandardService) GetStandard(ctx context.Context, id string) (*models.ISOStandard, error) {
	std, err := s.standards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if std == nil {
		return nil, errors.NewNotFoundError("standard", id)
	}
	return std, nil
}

func (s *StandardService) ListStandards(ctx context.Context) ([]*models.ISOStandard, error) {
	return s.standards.List(ctx)
}

func (s *StandardService) UpdateStandard(ctx context.Context, id string, req StandardRequest) (*models.ISOStandard, error) {
	std, err := s.GetStandard(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != std.Code {
		exists, err := s.standards.ExistsByCode(ctx, req.Code)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if exists {
			return nil, errors.NewConflictError("iso_standards", "code", req.Code)
		}
	}

	std.Code = req.Code
	std.Name = req.Name
	std.Description = req.Description
	if req.IsActive != nil {
		std.IsActive = *req.IsActive
	}

	if err := s.standards.Update(ctx, std); err != nil {
		return nil, fmt.Errorf("failed to update standard: %w", err)
	}
	return std, nil
}
