package services

import (
	"context"
	"fmt"
	"time"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/infrastructure/persistence"
	"github.com/certibase/backend/pkg/constants"
)

// DashboardService composes the read-only aggregates for the landing page
// and the finance view.
type DashboardService struct {
	clients        *persistence.ClientRepository
	certifications *persistence.CertificationRepository
	audits         *persistence.AuditRepository
	tasks          *persistence.TaskRepository
	pipelines      *persistence.PipelineRepository
	contracts      *persistence.ContractRepository
	leads          *persistence.LeadRepository
	payrolls       *persistence.PayrollRepository
}

func NewDashboardService(
	clients *persistence.ClientRepository,
	certifications *persistence.CertificationRepository,
	audits *persistence.AuditRepository,
	tasks *persistence.TaskRepository,
	pipelines *persistence.PipelineRepository,
	contracts *persistence.ContractRepository,
	leads *persistence.LeadRepository,
	payrolls *persistence.PayrollRepository,
) *DashboardService {
	return &DashboardService{
		clients:        clients,
		certifications: certifications,
		audits:         audits,
		tasks:          tasks,
		pipelines:      pipelines,
		contracts:      contracts,
		leads:          leads,
		payrolls:       payrolls,
	}
}

// GetOverview builds the landing-page aggregate.
func (s *DashboardService) GetOverview(ctx context.Context) (*models.DashboardOverview, error) {
	overview := &models.DashboardOverview{}

	clientStats, err := s.clients.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load client stats: %w", err)
	}
	overview.Clients = clientStats.Total

	certStats, err := s.certifications.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load certification stats: %w", err)
	}
	overview.ActiveCertifications = certStats.ByStatus[models.CertStatusActive] + certStats.ByStatus[models.CertStatusExpiringSoon]

	auditStats, err := s.audits.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit stats: %w", err)
	}
	overview.OpenAudits = auditStats.ByStatus[models.AuditStatusPlanned] +
		auditStats.ByStatus[models.AuditStatusScheduled] +
		auditStats.ByStatus[models.AuditStatusInProgress]
	overview.OpenFindings = auditStats.OpenFindings

	pending, err := s.tasks.CountPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending tasks: %w", err)
	}
	overview.PendingTasks = pending

	stages, err := s.pipelines.StageStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline stats: %w", err)
	}
	overview.PipelineStages = stages

	now := time.Now()
	upcoming, err := s.audits.Calendar(ctx, now, now.AddDate(0, 0, 30))
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming audits: %w", err)
	}
	overview.UpcomingAudits = upcoming

	expiring, err := s.certifications.Expiring(ctx, now.AddDate(0, 0, constants.CertExpiryWarningDays))
	if err != nil {
		return nil, fmt.Errorf("failed to load expiring certifications: %w", err)
	}
	overview.ExpiringCertifications = len(expiring)

	return overview, nil
}

// GetFinancial builds the finance aggregate.
func (s *DashboardService) GetFinancial(ctx context.Context, months int) (*models.DashboardFinancial, error) {
	if months <= 0 {
		months = 12
	}

	contractValues, err := s.contracts.ContractValueByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract values: %w", err)
	}
	oppValues, err := s.leads.OpportunityValueByStage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load opportunity values: %w", err)
	}
	payrollCost, err := s.payrolls.CostByPeriod(ctx, months)
	if err != nil {
		return nil, fmt.Errorf("failed to load payroll cost: %w", err)
	}

	return &models.DashboardFinancial{
		ContractValueByStatus: contractValues,
		OpportunityByStage:    oppValues,
		PayrollCostByMonth:    payrollCost,
	}, nil
}
