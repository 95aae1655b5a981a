package services

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certibase/backend/pkg/auth"
	"github.com/certibase/backend/pkg/constants"
)

func TestReportValidateAcceptsAllowlistedSelect(t *testing.T) {
	svc := NewReportService(nil)

	normalized, err := svc.validate("select id, name from clients where status = 'active'")
	require.NoError(t, err)
	assert.Contains(t, normalized, "SELECT")
	assert.Contains(t, normalized, "clients")
}

func TestReportValidateRejectsNonSelect(t *testing.T) {
	svc := NewReportService(nil)

	cases := []string{
		"DELETE FROM clients",
		"UPDATE clients SET name = 'x'",
		"INSERT INTO clients (id) VALUES ('1')",
		"DROP TABLE clients",
	}
	for _, q := range cases {
		_, err := svc.validate(q)
		assert.Error(t, err, q)
	}
}

func TestReportValidateRejectsMultipleStatements(t *testing.T) {
	svc := NewReportService(nil)

	_, err := svc.validate("SELECT 1 FROM clients; SELECT 2 FROM clients")
	assert.Error(t, err)
}

func TestReportValidateRejectsRestrictedTables(t *testing.T) {
	svc := NewReportService(nil)

	for _, q := range []string{
		"SELECT * FROM users",
		"SELECT * FROM sessions",
		"SELECT * FROM documents",
		"SELECT * FROM scheduled_jobs",
		// restricted tables hidden inside a subquery must be caught too
		"SELECT name FROM clients WHERE id IN (SELECT id FROM users)",
		"SELECT c.name, u.email FROM clients c JOIN users u ON u.id = c.account_manager_id",
	} {
		_, err := svc.validate(q)
		assert.Error(t, err, q)
	}
}

func TestReportValidateAllowsJoinsAcrossAllowlistedTables(t *testing.T) {
	svc := NewReportService(nil)

	_, err := svc.validate(`
		SELECT c.name, ct.status
		FROM clients c
		JOIN certifications ct ON ct.client_id = c.id
		WHERE ct.status = 'active'`)
	assert.NoError(t, err)
}

func TestRunQueryRequiresAdmin(t *testing.T) {
	svc := NewReportService(nil)

	_, err := svc.RunQuery(context.Background(), &auth.UserSession{Role: constants.RoleAuditor}, "SELECT 1 FROM clients")
	assert.Error(t, err)

	_, err = svc.RunQuery(context.Background(), nil, "SELECT 1 FROM clients")
	assert.Error(t, err)
}

func TestRunQueryReturnsRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"name", "status"}).
			AddRow("Acme Manufacturing", "active").
			AddRow("Globex", "inactive"))

	svc := NewReportService(db)
	admin := &auth.UserSession{ID: "u1", Role: constants.RoleAdmin}

	result, err := svc.RunQuery(context.Background(), admin, "SELECT name, status FROM clients")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "status"}, result.Columns)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "Acme Manufacturing", result.Rows[0]["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
