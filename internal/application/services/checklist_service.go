package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/infrastructure/persistence"
	"github.com/certibase/backend/pkg/errors"
	"github.com/certibase/backend/pkg/utils"
)

// ChecklistService manages checklist templates and audit responses, and
// computes the weighted compliance score.
type ChecklistService struct {
	checklists *persistence.ChecklistRepository
	audits     *persistence.AuditRepository
	standards  *persistence.StandardRepository
}

func NewChecklistService(checklists *persistence.ChecklistRepository, audits *persistence.AuditRepository, standards *persistence.StandardRepository) *ChecklistService {
	return &ChecklistService{
		checklists: checklists,
		audits:     audits,
		standards:  standards,
	}
}

// Templates

// TemplateRequest carries a checklist template create/update.
type TemplateRequest struct {
	StandardID string `json:"standardId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Version    string `json:"version"`
	IsActive   *bool  `json:"isActive"`
}

func (s *ChecklistService) CreateTemplate(ctx context.Context, req TemplateRequest) (*models.ChecklistTemplate, error) {
	std, err := s.standards.GetByID(ctx, req.StandardID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if std == nil {
		return nil, errors.NewNotFoundError("standard", req.StandardID)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	tpl := &models.ChecklistTemplate{
		ID:         utils.GenerateID(),
		StandardID: req.StandardID,
		Name:       req.Name,
		Version:    req.Version,
		IsActive:   active,
	}
	if err := s.checklists.InsertTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return tpl, nil
}

func (s *ChecklistService) GetTemplate(ctx context.Context, id string) (*models.ChecklistTemplate, error) {
	tpl, err := s.checklists.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, errors.NewNotFoundError("checklist template", id)
	}
	return tpl, nil
}

func (s *ChecklistService) ListTemplates(ctx context.Context, standardID string) ([]*models.ChecklistTemplate, error) {
	return s.checklists.ListTemplates(ctx, standardID)
}

func (s *ChecklistService) UpdateTemplate(ctx context.Context, id string, req TemplateRequest) (*models.ChecklistTemplate, error) {
	tpl, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	tpl.Name = req.Name
	tpl.Version = req.Version
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}

	if err := s.checklists.UpdateTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return tpl, nil
}

// Items

// ItemRequest carries a checklist item create.
type ItemRequest struct {
	Position    int     `json:"position"`
	ClauseRef   string  `json:"clauseRef"`
	Requirement string  `json:"requirement" binding:"required"`
	Guidance    string  `json:"guidance"`
	Weight      float64 `json:"weight"`
}

func (s *ChecklistService) AddItem(ctx context.Context, templateID string, req ItemRequest) (*models.ChecklistItem, error) {
	if _, err := s.GetTemplate(ctx, templateID); err != nil {
		return nil, err
	}

	weight := req.Weight
	if weight <= 0 {
		weight = 1
	}

	item := &models.ChecklistItem{
		ID:          utils.GenerateID(),
		TemplateID:  templateID,
		Position:    req.Position,
		ClauseRef:   req.ClauseRef,
		Requirement: req.Requirement,
		Guidance:    req.Guidance,
		Weight:      weight,
	}
	if err := s.checklists.InsertItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}
	return item, nil
}

func (s *ChecklistService) ListItems(ctx context.Context, templateID string) ([]*models.ChecklistItem, error) {
	if _, err := s.GetTemplate(ctx, templateID); err != nil {
		return nil, err
	}
	return s.checklists.ListItems(ctx, templateID)
}

func (s *ChecklistService) DeleteItem(ctx context.Context, templateID, itemID string) error {
	return s.checklists.DeleteItem(ctx, templateID, itemID)
}

// Responses

// ResponseRequest carries an auditor's answer for one item.
type ResponseRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Result   string `json:"result" binding:"required"`
	Evidence string `json:"evidence"`
	Notes    string `json:"notes"`
}

func isValidResponseResult(r string) bool {
	switch r {
	case models.ResponseConformity, models.ResponseMinorNC, models.ResponseMajorNC,
		models.ResponseObservation, models.ResponseNotApplicable:
		return true
	}
	return false
}

// SubmitResponse records an answer; re-answering the same item overwrites.
func (s *ChecklistService) SubmitResponse(ctx context.Context, auditID, userID string, req ResponseRequest) (*models.ChecklistResponse, error) {
	if !isValidResponseResult(req.Result) {
		return nil, errors.NewValidationError("result", "Unknown response result: "+req.Result)
	}

	audit, err := s.audits.GetByID(ctx, auditID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if audit == nil {
		return nil, errors.NewNotFoundError("audit", auditID)
	}
	if audit.Status == models.AuditStatusCompleted || audit.Status == models.AuditStatusCancelled {
		return nil, errors.NewValidationError("status", "Audit is no longer accepting responses")
	}

	resp := &models.ChecklistResponse{
		ID:          utils.GenerateID(),
		AuditID:     auditID,
		ItemID:      req.ItemID,
		Result:      req.Result,
		Evidence:    req.Evidence,
		Notes:       req.Notes,
		RespondedBy: userID,
	}
	if err := s.checklists.UpsertResponse(ctx, resp); err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}
	return resp, nil
}

func (s *ChecklistService) ListResponses(ctx context.Context, auditID string) ([]*models.ChecklistResponse, error) {
	return s.checklists.ListResponses(ctx, auditID)
}

// GetComplianceSummary computes the weighted compliance score for an audit
// against a checklist template. Conformity and observation earn full item
// weight, minor nonconformity earns half, major earns none. Items answered
// not_applicable leave the denominator entirely.
func (s *ChecklistService) GetComplianceSummary(ctx context.Context, auditID, templateID string) (*models.ComplianceSummary, error) {
	items, err := s.ListItems(ctx, templateID)
	if err != nil {
		return nil, err
	}
	responses, err := s.checklists.ListResponses(ctx, auditID)
	if err != nil {
		return nil, err
	}

	byItem := make(map[string]*models.ChecklistResponse, len(responses))
	for _, r := range responses {
		byItem[r.ItemID] = r
	}

	summary := &models.ComplianceSummary{
		AuditID:    auditID,
		TotalItems: len(items),
		ByResult:   make(map[string]int),
	}

	type clauseAgg struct {
		answered    int
		conform     int
		earned      float64
		totalWeight float64
	}
	clauses := make(map[string]*clauseAgg)

	var earned, totalWeight float64
	applicable := 0
	answeredApplicable := 0

	for _, item := range items {
		resp, ok := byItem[item.ID]
		if ok {
			summary.Answered++
			summary.ByResult[resp.Result]++
		}

		if ok && resp.Result == models.ResponseNotApplicable {
			continue
		}
		applicable++

		agg := clauses[item.ClauseRef]
		if agg == nil {
			agg = &clauseAgg{}
			clauses[item.ClauseRef] = agg
		}

		if !ok {
			continue
		}
		answeredApplicable++
		totalWeight += item.Weight
		agg.answered++
		agg.totalWeight += item.Weight

		credit := responseCredit(resp.Result)
		earned += item.Weight * credit
		agg.earned += item.Weight * credit
		if resp.Result == models.ResponseConformity {
			agg.conform++
		}
	}

	if applicable > 0 {
		summary.Progress = round2(float64(answeredApplicable) / float64(applicable) * 100)
	}
	if totalWeight > 0 {
		summary.Score = round2(earned / totalWeight * 100)
	}

	refs := make([]string, 0, len(clauses))
	for ref := range clauses {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	for _, ref := range refs {
		agg := clauses[ref]
		score := 0.0
		if agg.totalWeight > 0 {
			score = round2(agg.earned / agg.totalWeight * 100)
		}
		summary.ClauseScores = append(summary.ClauseScores, models.ComplianceClauseScore{
			ClauseRef: ref,
			Answered:  agg.answered,
			Conform:   agg.conform,
			Score:     score,
		})
	}

	return summary, nil
}

func responseCredit(result string) float64 {
	switch result {
	case models.ResponseConformity, models.ResponseObservation:
		return 1
	case models.ResponseMinorNC:
		return 0.5
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
