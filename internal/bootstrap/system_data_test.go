package bootstrap

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certibase/backend/internal/application/services"
	"github.com/certibase/backend/internal/infrastructure/persistence"
	"github.com/certibase/backend/pkg/template"
)

// Every seeded template goes through CreateTemplate on first boot, so each
// body must survive validation exactly as shipped.
func TestSeededTemplatesCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	svc := services.NewTemplateService(persistence.NewTemplateRepository(db))

	for _, req := range defaultTemplates {
		mock.ExpectExec("INSERT INTO document_templates").
			WithArgs(sqlmock.AnyArg(), req.Name, req.Kind, req.Body, true).
			WillReturnResult(sqlmock.NewResult(0, 1))

		tpl, err := svc.CreateTemplate(context.Background(), req)
		require.NoError(t, err, "seeded template %q must pass validation", req.Name)
		assert.Equal(t, req.Kind, tpl.Kind)
		assert.True(t, tpl.IsActive)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeededTemplatesRender(t *testing.T) {
	env := map[string]interface{}{
		"certificate_number": "CERT-2026-0001",
		"client_name":        "Acme Manufacturing",
		"client_code":        "CL-0001",
		"client_address":     "1 Industrial Way",
		"client_city":        "Sheffield",
		"client_country":     "United Kingdom",
		"standard_code":      "ISO 9001:2015",
		"standard_name":      "Quality management systems",
		"scope":              "Design and manufacture of widgets",
		"issue_date":         "2026-01-15",
		"expiry_date":        "2029-01-14",
		"accreditation_body": "UKAS",
		"number":             "PR-00001",
		"total_amount":       12500.0,
		"valid_until":        "2026-03-01",
		"start_date":         "2026-02-01",
		"end_date":           "2029-01-31",
		"signed_date":        "2026-01-20",
		"total_value":        45000.0,
	}

	r := template.NewRenderer()
	for _, req := range defaultTemplates {
		out, err := r.Render(req.Body, env)
		require.NoError(t, err, "seeded template %q must render", req.Name)
		assert.NotContains(t, out, "{{", "template %q left unresolved placeholders", req.Name)
	}

	out, err := r.Render(defaultTemplates[0].Body, env)
	require.NoError(t, err)
	assert.Contains(t, out, "ACME MANUFACTURING")
	assert.Contains(t, out, "Certificate No: CERT-2026-0001")
}
