package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/infrastructure/persistence"
)

func TestGetOverview(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	svc := NewDashboardService(
		persistence.NewClientRepository(db),
		persistence.NewCertificationRepository(db),
		persistence.NewAuditRepository(db),
		persistence.NewTaskRepository(db),
		persistence.NewPipelineRepository(db),
		nil, nil, nil,
	)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM clients")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow(models.ClientStatusActive, 8).
			AddRow(models.ClientStatusProspect, 3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT industry, COUNT(*) FROM clients")).
		WillReturnRows(sqlmock.NewRows([]string{"industry", "count"}).AddRow("Manufacturing", 5))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM certifications")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow(models.CertStatusActive, 4).
			AddRow(models.CertStatusExpiringSoon, 2).
			AddRow(models.CertStatusExpired, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.code, COUNT(*) FROM certifications")).
		WillReturnRows(sqlmock.NewRows([]string{"code", "count"}).AddRow("ISO 9001", 4))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, type, COUNT(*) FROM audits")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "type", "count"}).
			AddRow(models.AuditStatusScheduled, models.AuditTypeStage1, 2).
			AddRow(models.AuditStatusInProgress, models.AuditTypeSurveillance, 1).
			AddRow(models.AuditStatusCompleted, models.AuditTypeStage2, 3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_findings")).
		WithArgs(models.FindingStatusOpen).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tasks")).
		WithArgs(models.TaskStatusTodo, models.TaskStatusInProgress).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT p.stage, COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"stage", "count", "value"}).
			AddRow("lead", 2, 0.0).
			AddRow("contract_signed", 1, 15000.0))

	scheduled := time.Now().AddDate(0, 0, 10).Format("2006-01-02 15:04:05")
	mock.ExpectQuery("SELECT a.id, c.name, s.code").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code", "type", "status", "scheduled_date"}).
			AddRow("audit-1", "Acme", "ISO 9001", models.AuditTypeStage1, models.AuditStatusScheduled, scheduled))

	mock.ExpectQuery("SELECT c.id, c.certificate_number").
		WillReturnRows(sqlmock.NewRows([]string{"id", "certificate_number", "name", "code", "expiry_date"}).
			AddRow("cert-1", "CERT-2024-0002", "Acme", "ISO 9001", time.Now().AddDate(0, 0, 45).Format("2006-01-02")))

	overview, err := svc.GetOverview(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 11, overview.Clients)
	assert.Equal(t, 6, overview.ActiveCertifications)
	assert.Equal(t, 3, overview.OpenAudits)
	assert.Equal(t, 5, overview.OpenFindings)
	assert.Equal(t, 7, overview.PendingTasks)
	assert.Len(t, overview.PipelineStages, 2)
	assert.Len(t, overview.UpcomingAudits, 1)
	assert.Equal(t, "Acme", overview.UpcomingAudits[0].ClientName)
	assert.Equal(t, 1, overview.ExpiringCertifications)
	assert.NoError(t, mock.ExpectationsWereMet())
}
