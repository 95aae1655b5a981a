package services

import (
	"context"
	"fmt"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/infrastructure/persistence"
	"github.com/certibase/backend/pkg/errors"
	"github.com/certibase/backend/pkg/template"
	"github.com/certibase/backend/pkg/utils"
)

// TemplateService manages the document templates used to generate
// certificates, contracts and proposals.
type TemplateService struct {
	templates *persistence.TemplateRepository
	renderer  *template.Renderer
}

func NewTemplateService(templates *persistence.TemplateRepository) *TemplateService {
	return &TemplateService{
		templates: templates,
		renderer:  template.NewRenderer(),
	}
}

func isValidTemplateKind(k string) bool {
	switch k {
	case models.TemplateKindCertificate, models.TemplateKindContract, models.TemplateKindProposal:
		return true
	}
	return false
}

// DocumentTemplateRequest carries a template create/update.
type DocumentTemplateRequest struct {
	Name     string `json:"name" binding:"required"`
	Kind     string `json:"kind" binding:"required"`
	Body     string `json:"body" binding:"required"`
	IsActive *bool  `json:"isActive"`
}

func (s *TemplateService) CreateTemplate(ctx context.Context, req DocumentTemplateRequest) (*models.DocumentTemplate, error) {
	if !isValidTemplateKind(req.Kind) {
		return nil, errors.NewValidationError("kind", "Unknown template kind: "+req.Kind)
	}
	if err := s.renderer.Validate(req.Body, nil); err != nil {
		return nil, errors.NewValidationError("body", err.Error())
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	tpl := &models.DocumentTemplate{
		ID:       utils.GenerateID(),
		Name:     req.Name,
		Kind:     req.Kind,
		Body:     req.Body,
		IsActive: active,
	}
	if err := s.templates.Insert(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return tpl, nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, id string) (*models.DocumentTemplate, error) {
	tpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, errors.NewNotFoundError("document template", id)
	}
	return tpl, nil
}

func (s *TemplateService) ListTemplates(ctx context.Context, kind string) ([]*models.DocumentTemplate, error) {
	if kind != "" && !isValidTemplateKind(kind) {
		return nil, errors.NewValidationError("kind", "Unknown template kind: "+kind)
	}
	return s.templates.List(ctx, kind)
}

func (s *TemplateService) UpdateTemplate(ctx context.Context, id string, req DocumentTemplateRequest) (*models.DocumentTemplate, error) {
	tpl, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isValidTemplateKind(req.Kind) {
		return nil, errors.NewValidationError("kind", "Unknown template kind: "+req.Kind)
	}
	if err := s.renderer.Validate(req.Body, nil); err != nil {
		return nil, errors.NewValidationError("body", err.Error())
	}

	tpl.Name = req.Name
	tpl.Kind = req.Kind
	tpl.Body = req.Body
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}

	if err := s.templates.Update(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return tpl, nil
}

// Placeholders lists the variables a template body references.
func (s *TemplateService) Placeholders(body string) []string {
	return template.Placeholders(body)
}
