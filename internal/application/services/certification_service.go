package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/certibase/backend/internal/domain/events"
	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/infrastructure/persistence"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/errors"
	"github.com/certibase/backend/pkg/template"
	"github.com/certibase/backend/pkg/utils"
)

// CertificationService manages the certificate register: issuance,
// lifecycle actions, status derivation and certificate document generation.
type CertificationService struct {
	certs     *persistence.CertificationRepository
	clients   *persistence.ClientRepository
	standards *persistence.StandardRepository
	audits    *persistence.AuditRepository
	templates *persistence.TemplateRepository
	renderer  *template.Renderer
	eventBus  *EventBus
}

func NewCertificationService(
	certs *persistence.CertificationRepository,
	clients *persistence.ClientRepository,
	standards *persistence.StandardRepository,
	audits *persistence.AuditRepository,
	templates *persistence.TemplateRepository,
	eventBus *EventBus,
) *CertificationService {
	return &CertificationService{
		certs:     certs,
		clients:   clients,
		standards: standards,
		audits:    audits,
		templates: templates,
		renderer:  template.NewRenderer(),
		eventBus:  eventBus,
	}
}

// IssueCertificationRequest carries the issuance parameters.
type IssueCertificationRequest struct {
	ClientID          string     `json:"clientId" binding:"required"`
	StandardID        string     `json:"standardId" binding:"required"`
	PipelineID        *string    `json:"pipelineId"`
	DecisionAuditID   string     `json:"decisionAuditId"`
	IssueDate         *time.Time `json:"issueDate"`
	Scope             string     `json:"scope"`
	AccreditationBody string     `json:"accreditationBody"`
}

// IssueCertification issues a certificate for the standard three-year cycle.
// When a decision audit is named, it must be completed with no open major
// nonconformities. The CERT-YYYY-NNNN number is allocated per issue year and
// re-allocated on a lost duplicate-key race.
func (s *CertificationService) IssueCertification(ctx context.Context, actorID string, req IssueCertificationRequest) (*models.Certification, error) {
	client, err := s.clients.GetByID(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if client == nil {
		return nil, errors.NewNotFoundError("client", req.ClientID)
	}
	std, err := s.standards.GetByID(ctx, req.StandardID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if std == nil {
		return nil, errors.NewNotFoundError("standard", req.StandardID)
	}

	if req.DecisionAuditID != "" {
		if err := s.checkDecisionGate(ctx, req.DecisionAuditID); err != nil {
			return nil, err
		}
	}

	issueDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	expiryDate := issueDate.AddDate(constants.CertValidityYears, 0, -1)

	cert := &models.Certification{
		ID:                utils.GenerateID(),
		ClientID:          req.ClientID,
		StandardID:        req.StandardID,
		PipelineID:        req.PipelineID,
		Status:            models.CertStatusActive,
		IssueDate:         issueDate,
		ExpiryDate:        expiryDate,
		Scope:             req.Scope,
		AccreditationBody: req.AccreditationBody,
	}

	year := issueDate.Year()
	var lastErr error
	for attempt := 0; attempt < numberAllocRetries; attempt++ {
		seq, err := s.certs.NextNumberSeq(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate certificate number: %w", err)
		}
		cert.CertificateNumber = fmt.Sprintf("CERT-%d-%04d", year, seq+1)

		err = s.certs.Insert(ctx, cert)
		if err == nil {
			lastErr = nil
			break
		}
		if !persistence.IsDuplicateKey(err) {
			return nil, fmt.Errorf("failed to issue certification: %w", err)
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed to allocate certificate number after %d attempts: %w", numberAllocRetries, lastErr)
	}

	s.recordHistory(ctx, cert.ID, models.CertActionIssued, "", actorID)
	s.eventBus.PublishAsync(events.CertificationIssued, events.CertificationIssuedPayload{
		CertificationID: cert.ID,
		ClientID:        cert.ClientID,
		StandardID:      cert.StandardID,
		ActorID:         actorID,
	})

	log.Printf("🏅 Certification issued: %s for client %s", cert.CertificateNumber, cert.ClientID)
	return cert, nil
}

// checkDecisionGate requires the decision audit to be completed with no open
// major nonconformities.
func (s *CertificationService) checkDecisionGate(ctx context.Context, auditID string) error {
	audit, err := s.audits.GetByID(ctx, auditID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if audit == nil {
		return errors.NewNotFoundError("audit", auditID)
	}
	if audit.Status != models.AuditStatusCompleted {
		return errors.NewValidationError("decisionAuditId", "Decision audit is not completed")
	}

	openMajors, err := s.audits.CountOpenFindings(ctx, auditID, models.FindingMajorNC)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if openMajors > 0 {
		return errors.NewValidationError("decisionAuditId",
			fmt.Sprintf("Audit has %d open major nonconformities", openMajors))
	}
	return nil
}

func (s *CertificationService) GetCertification(ctx context.Context, id string) (*models.Certification, error) {
	cert, err := s.certs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, errors.NewNotFoundError("certification", id)
	}
	// Status derivation may lag the sweep; derive on read for accuracy
	if derived := DeriveCertStatus(cert, time.Now()); derived != cert.Status {
		cert.Status = derived
	}
	return cert, nil
}

func (s *CertificationService) ListCertifications(ctx context.Context, clientID, standardID, status string, limit, offset int) ([]*models.Certification, error) {
	return s.certs.List(ctx, clientID, standardID, status, normalizeLimit(limit), offset)
}

// DeriveCertStatus maps an expiry-derived status. Explicit suspended,
// revoked and withdrawn states are immune to derivation.
func DeriveCertStatus(cert *models.Certification, now time.Time) string {
	switch cert.Status {
	case models.CertStatusSuspended, models.CertStatusRevoked, models.CertStatusWithdrawn:
		return cert.Status
	}

	if cert.ExpiryDate.Before(now) {
		return models.CertStatusExpired
	}
	if cert.ExpiryDate.Before(now.AddDate(0, 0, constants.CertExpiryWarningDays)) {
		return models.CertStatusExpiringSoon
	}
	return models.CertStatusActive
}

// RefreshStatuses reconciles stored statuses with the derivation, for the
// daily sweep. Returns the number of rows updated.
func (s *CertificationService) RefreshStatuses(ctx context.Context) (int, error) {
	certs, err := s.certs.ListDerivable(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	updated := 0
	for _, cert := range certs {
		derived := DeriveCertStatus(cert, now)
		if derived == cert.Status {
			continue
		}
		if err := s.certs.UpdateStatus(ctx, cert.ID, derived); err != nil {
			log.Printf("⚠️ Failed to refresh status for %s: %v", cert.CertificateNumber, err)
			continue
		}
		updated++
	}
	return updated, nil
}

// LifecycleRequest carries a suspend/revoke/reactivate action reason.
type LifecycleRequest struct {
	Reason string `json:"reason"`
}

// Renew starts a fresh three-year cycle from the day after current expiry
// (or today if the certificate already lapsed).
func (s *CertificationService) Renew(ctx context.Context, id, actorID string, req LifecycleRequest) (*models.Certification, error) {
	cert, err := s.GetCertification(ctx, id)
	if err != nil {
		return nil, err
	}
	switch cert.Status {
	case models.CertStatusRevoked, models.CertStatusWithdrawn:
		return nil, errors.NewInvalidTransitionError("certification", cert.Status, "renewed")
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	start := cert.ExpiryDate.AddDate(0, 0, 1)
	if start.Before(now) {
		start = now
	}

	cert.IssueDate = start
	cert.ExpiryDate = start.AddDate(constants.CertValidityYears, 0, -1)
	cert.Status = models.CertStatusActive

	if err := s.certs.Update(ctx, cert); err != nil {
		return nil, fmt.Errorf("failed to renew certification: %w", err)
	}
	s.recordHistory(ctx, cert.ID, models.CertActionRenewed, req.Reason, actorID)
	log.Printf("🔄 Certification renewed: %s until %s", cert.CertificateNumber, cert.ExpiryDate.Format("2006-01-02"))
	return cert, nil
}

func (s *CertificationService) Suspend(ctx context.Context, id, actorID string, req LifecycleRequest) (*models.Certification, error) {
	return s.lifecycleChange(ctx, id, actorID, models.CertStatusSuspended, models.CertActionSuspended, req.Reason)
}

func (s *CertificationService) Revoke(ctx context.Context, id, actorID string, req LifecycleRequest) (*models.Certification, error) {
	return s.lifecycleChange(ctx, id, actorID, models.CertStatusRevoked, models.CertActionRevoked, req.Reason)
}

// Reactivate returns a suspended certificate to its derived status.
func (s *CertificationService) Reactivate(ctx context.Context, id, actorID string, req LifecycleRequest) (*models.Certification, error) {
	cert, err := s.certs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, errors.NewNotFoundError("certification", id)
	}
	if cert.Status != models.CertStatusSuspended {
		return nil, errors.NewInvalidTransitionError("certification", cert.Status, models.CertStatusActive)
	}

	cert.Status = models.CertStatusActive
	cert.Status = DeriveCertStatus(cert, time.Now())
	if err := s.certs.UpdateStatus(ctx, cert.ID, cert.Status); err != nil {
		return nil, fmt.Errorf("failed to reactivate certification: %w", err)
	}
	s.recordHistory(ctx, cert.ID, models.CertActionReactivated, req.Reason, actorID)
	return cert, nil
}

func (s *CertificationService) lifecycleChange(ctx context.Context, id, actorID, toStatus, action, reason string) (*models.Certification, error) {
	cert, err := s.certs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, errors.NewNotFoundError("certification", id)
	}

	switch cert.Status {
	case models.CertStatusRevoked, models.CertStatusWithdrawn:
		return nil, errors.NewInvalidTransitionError("certification", cert.Status, toStatus)
	case models.CertStatusSuspended:
		if toStatus == models.CertStatusSuspended {
			return nil, errors.NewInvalidTransitionError("certification", cert.Status, toStatus)
		}
	}

	cert.Status = toStatus
	if err := s.certs.UpdateStatus(ctx, cert.ID, toStatus); err != nil {
		return nil, fmt.Errorf("failed to update certification: %w", err)
	}
	s.recordHistory(ctx, cert.ID, action, reason, actorID)
	log.Printf("🏅 Certification %s: %s", action, cert.CertificateNumber)
	return cert, nil
}

// RecordSurveillance stamps a completed surveillance visit.
func (s *CertificationService) RecordSurveillance(ctx context.Context, id string, visitDate time.Time) (*models.Certification, error) {
	cert, err := s.GetCertification(ctx, id)
	if err != nil {
		return nil, err
	}
	cert.LastSurveillance = &visitDate
	if err := s.certs.Update(ctx, cert); err != nil {
		return nil, fmt.Errorf("failed to record surveillance: %w", err)
	}
	return cert, nil
}

func (s *CertificationService) GetHistory(ctx context.Context, id string) ([]*models.CertificationHistory, error) {
	if _, err := s.GetCertification(ctx, id); err != nil {
		return nil, err
	}
	return s.certs.ListHistory(ctx, id)
}

func (s *CertificationService) GetStats(ctx context.Context) (*models.CertificationStats, error) {
	return s.certs.Stats(ctx)
}

// GetExpiring lists certifications expiring within days (default warning
// window when days <= 0).
func (s *CertificationService) GetExpiring(ctx context.Context, days int) ([]*models.ExpiringCertification, error) {
	if days <= 0 {
		days = constants.CertExpiryWarningDays
	}
	return s.certs.Expiring(ctx, time.Now().AddDate(0, 0, days))
}

// GenerateDocument renders the active certificate template against the
// certificate's data and records the generation in history.
func (s *CertificationService) GenerateDocument(ctx context.Context, id, actorID string) (string, error) {
	cert, err := s.GetCertification(ctx, id)
	if err != nil {
		return "", err
	}

	tpl, err := s.templates.GetActiveByKind(ctx, models.TemplateKindCertificate)
	if err != nil {
		return "", fmt.Errorf("database error: %w", err)
	}
	if tpl == nil {
		return "", errors.NewNotFoundError("document template", models.TemplateKindCertificate)
	}

	client, err := s.clients.GetByID(ctx, cert.ClientID)
	if err != nil {
		return "", fmt.Errorf("database error: %w", err)
	}
	std, err := s.standards.GetByID(ctx, cert.StandardID)
	if err != nil {
		return "", fmt.Errorf("database error: %w", err)
	}

	env := map[string]interface{}{
		"certificate_number": cert.CertificateNumber,
		"status":             cert.Status,
		"issue_date":         cert.IssueDate,
		"expiry_date":        cert.ExpiryDate,
		"scope":              cert.Scope,
		"accreditation_body": cert.AccreditationBody,
	}
	if client != nil {
		env["client_name"] = client.Name
		env["client_code"] = client.Code
		env["client_address"] = client.Address
		env["client_city"] = client.City
		env["client_country"] = client.Country
	}
	if std != nil {
		env["standard_code"] = std.Code
		env["standard_name"] = std.Name
	}

	doc, err := s.renderer.Render(tpl.Body, env)
	if err != nil {
		return "", fmt.Errorf("failed to render certificate: %w", err)
	}

	s.recordHistory(ctx, cert.ID, models.CertActionGenerated, "", actorID)
	return doc, nil
}

func (s *CertificationService) recordHistory(ctx context.Context, certID, action, reason, actorID string) {
	h := &models.CertificationHistory{
		ID:              utils.GenerateID(),
		CertificationID: certID,
		Action:          action,
		Reason:          reason,
		ActorID:         actorID,
	}
	if err := s.certs.InsertHistory(ctx, h); err != nil {
		log.Printf("⚠️ Failed to record certification history for %s: %v", certID, err)
	}
}
