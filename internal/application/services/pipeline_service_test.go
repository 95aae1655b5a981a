package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/certibase/backend/internal/domain/events"
	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/infrastructure/persistence"
)

func newPipelineTestService(t *testing.T) (*PipelineService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := NewPipelineService(
		persistence.NewPipelineRepository(db),
		persistence.NewAuditRepository(db),
		persistence.NewContractRepository(db),
		persistence.NewCertificationRepository(db),
		persistence.NewLeadRepository(db),
		NewEventBus(),
	)
	return svc, mock
}

var pipelineTestCols = []string{"id", "number", "client_id", "standard_id", "stage", "progress",
	"lead_id", "opportunity_id", "contract_id", "audit_id", "certification_id",
	"stage_entered_at", "surveillance_due", "created_date", "last_modified_date"}

// A replayed event must not advance the stage again, but the entity link it
// carries still has to land on the pipeline row.
func TestCertificationIssuedLinksOnReplay(t *testing.T) {
	svc, mock := newPipelineTestService(t)

	certCols := []string{"id", "certificate_number", "client_id", "standard_id", "pipeline_id",
		"status", "issue_date", "expiry_date", "scope", "accreditation_body",
		"last_surveillance", "created_date", "last_modified_date"}
	mock.ExpectQuery("SELECT .+ FROM certifications WHERE id").
		WithArgs("cert-1").
		WillReturnRows(sqlmock.NewRows(certCols).AddRow(
			"cert-1", "CERT-2026-0001", "client-1", "std-9001", "pl-1",
			models.CertStatusActive, "2026-01-15", "2029-01-14", "", "",
			nil, "2026-01-15 12:00:00", "2026-01-15 12:00:00"))

	mock.ExpectQuery("SELECT .+ FROM pipelines WHERE id").
		WithArgs("pl-1").
		WillReturnRows(sqlmock.NewRows(pipelineTestCols).AddRow(
			"pl-1", "PL-00001", "client-1", "std-9001", "certified", 100,
			nil, nil, nil, nil, nil,
			"2026-01-15 12:00:00", nil, "2025-10-01 09:00:00", "2026-01-15 12:00:00"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE pipelines SET client_id = ?")).
		WithArgs("client-1", "std-9001", "certified", 100, nil, nil, nil, nil,
			"cert-1", sqlmock.AnyArg(), nil, "pl-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.onCertificationIssued(context.Background(), events.CertificationIssuedPayload{
		CertificationID: "cert-1",
		ClientID:        "client-1",
		StandardID:      "std-9001",
		ActorID:         "user-1",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpportunityWonStampsPipeline(t *testing.T) {
	svc, mock := newPipelineTestService(t)

	oppCols := []string{"id", "name", "client_id", "lead_id", "standard_id", "stage", "value",
		"probability", "expected_close", "owner_id", "closed_at", "created_date", "last_modified_date"}
	mock.ExpectQuery("SELECT .+ FROM opportunities WHERE id").
		WithArgs("opp-1").
		WillReturnRows(sqlmock.NewRows(oppCols).AddRow(
			"opp-1", "ISO 9001 certification", "client-1", "lead-1", "std-9001",
			models.OppStageWon, 12500.0, 100, nil, nil, "2026-02-10 15:00:00",
			"2026-01-05 09:00:00", "2026-02-10 15:00:00"))

	mock.ExpectQuery("SELECT .+ FROM pipelines WHERE opportunity_id").
		WithArgs("opp-1").
		WillReturnRows(sqlmock.NewRows(pipelineTestCols).AddRow(
			"pl-1", "PL-00001", nil, nil, "opportunity", 10,
			"lead-1", "opp-1", nil, nil, nil,
			"2026-02-01 09:00:00", nil, "2026-01-20 09:00:00", "2026-02-01 09:00:00"))

	mock.ExpectExec("INSERT INTO pipeline_milestones").
		WithArgs(sqlmock.AnyArg(), "pl-1", "opportunity", "Prepare certification agreement",
			models.MilestoneStatusPending, sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE pipelines SET client_id = ?")).
		WithArgs("client-1", "std-9001", "opportunity", 10, "lead-1", "opp-1", nil, nil,
			nil, sqlmock.AnyArg(), nil, "pl-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.onOpportunityWon(context.Background(), events.OpportunityWonPayload{
		OpportunityID: "opp-1",
		ClientID:      "client-1",
		ActorID:       "user-1",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadConvertedLinksWhenAlreadyAdvanced(t *testing.T) {
	svc, mock := newPipelineTestService(t)

	mock.ExpectQuery("SELECT .+ FROM pipelines WHERE lead_id").
		WithArgs("lead-1").
		WillReturnRows(sqlmock.NewRows(pipelineTestCols).AddRow(
			"pl-1", "PL-00001", nil, nil, "opportunity", 10,
			"lead-1", nil, nil, nil, nil,
			"2026-02-01 09:00:00", nil, "2026-01-20 09:00:00", "2026-02-01 09:00:00"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE pipelines SET client_id = ?")).
		WithArgs("client-1", nil, "opportunity", 10, "lead-1", "opp-1", nil, nil,
			nil, sqlmock.AnyArg(), nil, "pl-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.onLeadConverted(context.Background(), events.LeadConvertedPayload{
		LeadID:        "lead-1",
		ClientID:      "client-1",
		OpportunityID: "opp-1",
		ActorID:       "user-1",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
