package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/certibase/backend/internal/domain/models"
)

func TestCertificationNextNumberSeq(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCertificationRepository(db)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("CERT-2026-%").
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(17))

	seq, err := repo.NextNumberSeq(context.Background(), 2026)
	assert.NoError(t, err)
	assert.Equal(t, 17, seq)
}

func TestCertificationGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCertificationRepository(db)

	cols := []string{"id", "certificate_number", "client_id", "standard_id", "pipeline_id",
		"status", "issue_date", "expiry_date", "scope", "accreditation_body",
		"last_surveillance", "created_date", "last_modified_date"}

	rows := sqlmock.NewRows(cols).AddRow("cert-1", "CERT-2026-0001", "client-1", "std-9001",
		nil, models.CertStatusActive, "2026-01-15", "2029-01-14", "Design and manufacture",
		"UKAS", nil, "2026-01-15 12:00:00", "2026-01-15 12:00:00")

	mock.ExpectQuery("SELECT .+ FROM certifications WHERE id = .+").
		WithArgs("cert-1").WillReturnRows(rows)

	c, err := repo.GetByID(context.Background(), "cert-1")
	assert.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, "CERT-2026-0001", c.CertificateNumber)
	assert.Equal(t, 2029, c.ExpiryDate.Year())
	assert.Nil(t, c.PipelineID)
	assert.Nil(t, c.LastSurveillance)
}

func TestCertificationListDerivable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCertificationRepository(db)

	cols := []string{"id", "certificate_number", "client_id", "standard_id", "pipeline_id",
		"status", "issue_date", "expiry_date", "scope", "accreditation_body",
		"last_surveillance", "created_date", "last_modified_date"}

	rows := sqlmock.NewRows(cols).
		AddRow("cert-1", "CERT-2023-0004", "client-1", "std-9001", nil, models.CertStatusActive,
			"2023-06-01", "2026-05-31", "", "", nil, "2023-06-01 09:00:00", "2023-06-01 09:00:00").
		AddRow("cert-2", "CERT-2022-0011", "client-2", "std-14001", nil, models.CertStatusExpired,
			"2022-03-01", "2025-02-28", "", "", nil, "2022-03-01 09:00:00", "2022-03-01 09:00:00")

	mock.ExpectQuery("SELECT .+ FROM certifications WHERE status IN").
		WithArgs(models.CertStatusActive, models.CertStatusExpiringSoon, models.CertStatusExpired).
		WillReturnRows(rows)

	certs, err := repo.ListDerivable(context.Background())
	assert.NoError(t, err)
	assert.Len(t, certs, 2)
	assert.Equal(t, models.CertStatusExpired, certs[1].Status)
}

func TestCertificationUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCertificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE certifications SET status = ?")).
		WithArgs(models.CertStatusSuspended, "cert-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateStatus(context.Background(), "cert-1", models.CertStatusSuspended)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCertificationExpiring(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCertificationRepository(db)

	until := time.Now().AddDate(0, 0, 90)
	future := time.Now().AddDate(0, 0, 30).Format("2006-01-02")

	rows := sqlmock.NewRows([]string{"id", "certificate_number", "name", "code", "expiry_date"}).
		AddRow("cert-1", "CERT-2023-0004", "Acme", "ISO 9001", future)

	mock.ExpectQuery("SELECT c.id, c.certificate_number").
		WithArgs(models.CertStatusActive, models.CertStatusExpiringSoon, until).
		WillReturnRows(rows)

	list, err := repo.Expiring(context.Background(), until)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].ClientName)
	assert.Greater(t, list[0].DaysLeft, 0)
	assert.LessOrEqual(t, list[0].DaysLeft, 30)
}
