package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/certibase/backend/internal/domain/events"
	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/infrastructure/persistence"
	"github.com/certibase/backend/pkg/errors"
	"github.com/certibase/backend/pkg/utils"
)

// AuditService manages audit engagements and their findings.
type AuditService struct {
	audits   *persistence.AuditRepository
	clients  *persistence.ClientRepository
	eventBus *EventBus
}

func NewAuditService(audits *persistence.AuditRepository, clients *persistence.ClientRepository, eventBus *EventBus) *AuditService {
	return &AuditService{
		audits:   audits,
		clients:  clients,
		eventBus: eventBus,
	}
}

// auditStatusOrder gates status changes: an audit moves forward through
// planned -> scheduled -> in_progress -> completed, and may be cancelled
// at any point before completion.
var auditStatusOrder = map[string]int{
	models.AuditStatusPlanned:    0,
	models.AuditStatusScheduled:  1,
	models.AuditStatusInProgress: 2,
	models.AuditStatusCompleted:  3,
}

func isValidAuditType(t string) bool {
	switch t {
	case models.AuditTypeStage1, models.AuditTypeStage2, models.AuditTypeSurveillance,
		models.AuditTypeRecertification, models.AuditTypeInternal, models.AuditTypeSpecial:
		return true
	}
	return false
}

// CreateAuditRequest carries the audit plan on create.
type CreateAuditRequest struct {
	ClientID      string     `json:"clientId" binding:"required"`
	StandardID    string     `json:"standardId" binding:"required"`
	PipelineID    *string    `json:"pipelineId"`
	Type          string     `json:"type" binding:"required"`
	ScheduledDate *time.Time `json:"scheduledDate"`
	LeadAuditorID *string    `json:"leadAuditorId"`
	TeamMembers   string     `json:"teamMembers"`
	DurationDays  float64    `json:"durationDays"`
	Scope         string     `json:"scope"`
}

func (s *AuditService) CreateAudit(ctx context.Context, req CreateAuditRequest) (*models.Audit, error) {
	if !isValidAuditType(req.Type) {
		return nil, errors.NewValidationError("type", "Unknown audit type: "+req.Type)
	}

	client, err := s.clients.GetByID(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if client == nil {
		return nil, errors.NewNotFoundError("client", req.ClientID)
	}

	status := models.AuditStatusPlanned
	if req.ScheduledDate != nil {
		status = models.AuditStatusScheduled
	}

	audit := &models.Audit{
		ID:            utils.GenerateID(),
		ClientID:      req.ClientID,
		StandardID:    req.StandardID,
		PipelineID:    req.PipelineID,
		Type:          req.Type,
		Status:        status,
		ScheduledDate: req.ScheduledDate,
		LeadAuditorID: req.LeadAuditorID,
		TeamMembers:   req.TeamMembers,
		DurationDays:  req.DurationDays,
		Scope:         req.Scope,
	}
	if err := s.audits.Insert(ctx, audit); err != nil {
		return nil, fmt.Errorf("failed to create audit: %w", err)
	}

	if status == models.AuditStatusScheduled {
		s.eventBus.PublishAsync(events.AuditScheduled, events.AuditEventPayload{
			AuditID:   audit.ID,
			ClientID:  audit.ClientID,
			AuditType: audit.Type,
		})
	}

	log.Printf("📋 Audit created: %s %s for client %s", audit.Type, audit.ID, audit.ClientID)
	return audit, nil
}

func (s *AuditService) GetAudit(ctx context.Context, id string) (*models.Audit, error) {
	audit, err := s.audits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if audit == nil {
		return nil, errors.NewNotFoundError("audit", id)
	}
	return audit, nil
}

func (s *AuditService) ListAudits(ctx context.Context, clientID, status, auditType string, limit, offset int) ([]*models.Audit, error) {
	return s.audits.List(ctx, clientID, status, auditType, normalizeLimit(limit), offset)
}

// UpdateAuditRequest carries the mutable audit fields.
type UpdateAuditRequest struct {
	Status        *string    `json:"status"`
	ScheduledDate *time.Time `json:"scheduledDate"`
	StartDate     *time.Time `json:"startDate"`
	EndDate       *time.Time `json:"endDate"`
	LeadAuditorID *string    `json:"leadAuditorId"`
	TeamMembers   *string    `json:"teamMembers"`
	DurationDays  *float64   `json:"durationDays"`
	Scope         *string    `json:"scope"`
	Summary       *string    `json:"summary"`
}

// UpdateAudit applies field changes and drives the status lifecycle. Status
// may only move forward; cancellation is allowed until completion.
func (s *AuditService) UpdateAudit(ctx context.Context, id string, actorID string, req UpdateAuditRequest) (*models.Audit, error) {
	audit, err := s.GetAudit(ctx, id)
	if err != nil {
		return nil, err
	}

	previousStatus := audit.Status

	if req.Status != nil && *req.Status != audit.Status {
		if err := s.checkStatusChange(audit.Status, *req.Status); err != nil {
			return nil, err
		}
		audit.Status = *req.Status
	}
	if req.ScheduledDate != nil {
		audit.ScheduledDate = req.ScheduledDate
		if audit.Status == models.AuditStatusPlanned {
			audit.Status = models.AuditStatusScheduled
		}
	}
	if req.StartDate != nil {
		audit.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		audit.EndDate = req.EndDate
	}
	if req.LeadAuditorID != nil {
		audit.LeadAuditorID = req.LeadAuditorID
	}
	if req.TeamMembers != nil {
		audit.TeamMembers = *req.TeamMembers
	}
	if req.DurationDays != nil {
		audit.DurationDays = *req.DurationDays
	}
	if req.Scope != nil {
		audit.Scope = *req.Scope
	}
	if req.Summary != nil {
		audit.Summary = *req.Summary
	}

	// Stamp actual dates on the status edges if the caller did not
	if audit.Status == models.AuditStatusInProgress && audit.StartDate == nil {
		now := time.Now()
		audit.StartDate = &now
	}
	if audit.Status == models.AuditStatusCompleted && audit.EndDate == nil {
		now := time.Now()
		audit.EndDate = &now
	}

	if err := s.audits.Update(ctx, audit); err != nil {
		return nil, fmt.Errorf("failed to update audit: %w", err)
	}

	s.publishStatusEvents(audit, previousStatus, actorID)
	return audit, nil
}

func (s *AuditService) checkStatusChange(from, to string) error {
	if to == models.AuditStatusCancelled {
		if from == models.AuditStatusCompleted {
			return errors.NewInvalidTransitionError("audit", from, to)
		}
		return nil
	}
	fromOrder, ok1 := auditStatusOrder[from]
	toOrder, ok2 := auditStatusOrder[to]
	if !ok1 || !ok2 || toOrder <= fromOrder {
		return errors.NewInvalidTransitionError("audit", from, to)
	}
	return nil
}

func (s *AuditService) publishStatusEvents(audit *models.Audit, previousStatus, actorID string) {
	if audit.Status == previousStatus {
		return
	}

	payload := events.AuditEventPayload{
		AuditID:   audit.ID,
		ClientID:  audit.ClientID,
		AuditType: audit.Type,
		ActorID:   actorID,
	}

	switch audit.Status {
	case models.AuditStatusScheduled:
		s.eventBus.PublishAsync(events.AuditScheduled, payload)
	case models.AuditStatusInProgress:
		s.eventBus.PublishAsync(events.AuditStarted, payload)
	case models.AuditStatusCompleted:
		s.eventBus.PublishAsync(events.AuditCompleted, payload)
	}
}

func (s *AuditService) DeleteAudit(ctx context.Context, id string) error {
	audit, err := s.GetAudit(ctx, id)
	if err != nil {
		return err
	}
	// Completed audits are records; they stay
	if audit.Status == models.AuditStatusCompleted {
		return errors.NewValidationError("status", "Completed audits cannot be deleted")
	}
	return s.audits.Delete(ctx, id)
}

func (s *AuditService) GetStats(ctx context.Context) (*models.AuditStats, error) {
	return s.audits.Stats(ctx)
}

// GetCalendar lists scheduled audits for the month containing the given day.
func (s *AuditService) GetCalendar(ctx context.Context, year int, month time.Month) ([]*models.AuditCalendarEntry, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return s.audits.Calendar(ctx, from, to)
}

// Findings

// FindingRequest carries a finding create/update.
type FindingRequest struct {
	Category         string     `json:"category" binding:"required"`
	ClauseRef        string     `json:"clauseRef"`
	Description      string     `json:"description" binding:"required"`
	DueDate          *time.Time `json:"dueDate"`
	CorrectiveAction string     `json:"correctiveAction"`
}

func isValidFindingCategory(c string) bool {
	switch c {
	case models.FindingMajorNC, models.FindingMinorNC, models.FindingObservation, models.FindingOFI:
		return true
	}
	return false
}

func (s *AuditService) AddFinding(ctx context.Context, auditID string, req FindingRequest) (*models.AuditFinding, error) {
	if !isValidFindingCategory(req.Category) {
		return nil, errors.NewValidationError("category", "Unknown finding category: "+req.Category)
	}

	audit, err := s.GetAudit(ctx, auditID)
	if err != nil {
		return nil, err
	}
	if audit.Status == models.AuditStatusCancelled {
		return nil, errors.NewValidationError("status", "Cannot raise findings on a cancelled audit")
	}

	finding := &models.AuditFinding{
		ID:               utils.GenerateID(),
		AuditID:          auditID,
		Category:         req.Category,
		ClauseRef:        req.ClauseRef,
		Description:      req.Description,
		Status:           models.FindingStatusOpen,
		DueDate:          req.DueDate,
		CorrectiveAction: req.CorrectiveAction,
	}
	if err := s.audits.InsertFinding(ctx, finding); err != nil {
		return nil, fmt.Errorf("failed to add finding: %w", err)
	}
	return finding, nil
}

func (s *AuditService) ListFindings(ctx context.Context, auditID string) ([]*models.AuditFinding, error) {
	if _, err := s.GetAudit(ctx, auditID); err != nil {
		return nil, err
	}
	return s.audits.ListFindings(ctx, auditID)
}

// UpdateFindingRequest carries the mutable finding fields.
type UpdateFindingRequest struct {
	Status           *string    `json:"status"`
	ClauseRef        *string    `json:"clauseRef"`
	Description      *string    `json:"description"`
	DueDate          *time.Time `json:"dueDate"`
	CorrectiveAction *string    `json:"correctiveAction"`
}

// UpdateFinding applies changes and the open -> closed -> verified lifecycle.
func (s *AuditService) UpdateFinding(ctx context.Context, auditID, findingID string, req UpdateFindingRequest) (*models.AuditFinding, error) {
	finding, err := s.audits.GetFinding(ctx, findingID)
	if err != nil {
		return nil, err
	}
	if finding == nil || finding.AuditID != auditID {
		return nil, errors.NewNotFoundError("finding", findingID)
	}

	if req.Status != nil && *req.Status != finding.Status {
		if err := checkFindingStatusChange(finding.Status, *req.Status); err != nil {
			return nil, err
		}
		finding.Status = *req.Status
		if finding.Status == models.FindingStatusClosed && finding.ClosedAt == nil {
			now := time.Now()
			finding.ClosedAt = &now
		}
	}
	if req.ClauseRef != nil {
		finding.ClauseRef = *req.ClauseRef
	}
	if req.Description != nil {
		finding.Description = *req.Description
	}
	if req.DueDate != nil {
		finding.DueDate = req.DueDate
	}
	if req.CorrectiveAction != nil {
		finding.CorrectiveAction = *req.CorrectiveAction
	}

	if err := s.audits.UpdateFinding(ctx, finding); err != nil {
		return nil, fmt.Errorf("failed to update finding: %w", err)
	}
	return finding, nil
}

func checkFindingStatusChange(from, to string) error {
	switch {
	case from == models.FindingStatusOpen && to == models.FindingStatusClosed:
		return nil
	case from == models.FindingStatusClosed && to == models.FindingStatusVerified:
		return nil
	case from == models.FindingStatusClosed && to == models.FindingStatusOpen:
		// Reopen when the corrective action did not hold
		return nil
	}
	return errors.NewInvalidTransitionError("finding", from, to)
}
