package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBareFields(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("Certificate {{certificate_number}} for {{client_name}}", map[string]interface{}{
		"certificate_number": "CERT-2026-0001",
		"client_name":        "Acme Manufacturing",
	})
	require.NoError(t, err)
	assert.Equal(t, "Certificate CERT-2026-0001 for Acme Manufacturing", out)
}

func TestRenderMissingFieldIsEmpty(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("Scope: {{scope}}.", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "Scope: .", out)
}

func TestRenderExpressions(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("{{UPPER(client_name)}}", map[string]interface{}{
		"client_name": "Acme Manufacturing",
	})
	require.NoError(t, err)
	assert.Equal(t, "ACME MANUFACTURING", out)
}

func TestRenderBrokenExpressionFails(t *testing.T) {
	r := NewRenderer()

	_, err := r.Render("{{UPPER(}}", map[string]interface{}{})
	assert.Error(t, err)
}

func TestValidateCatchesBadExpressions(t *testing.T) {
	r := NewRenderer()

	assert.NoError(t, r.Validate("Plain body, {{client_name}} and {{UPPER(client_name)}}", nil))
	assert.Error(t, r.Validate("{{LOWER(}}", nil))
}

// Validation runs before any record exists, so field references inside
// expressions must compile against an empty environment.
func TestValidateFieldReferencesWithoutEnv(t *testing.T) {
	r := NewRenderer()

	assert.NoError(t, r.Validate("Valid until {{DATE_ADD(issue_date, 1095)}}", nil))
	assert.NoError(t, r.Validate("{{IF(total > 10000, \"major\", \"minor\")}}", nil))

	// A validated expression must still render correctly afterwards even
	// though the compiled program is cached.
	out, err := r.Render("Valid until {{DATE_ADD(issue_date, 1095)}}", map[string]interface{}{
		"issue_date": "2026-01-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "Valid until 2029-01-14", out)
}

func TestPlaceholdersDeduplicates(t *testing.T) {
	tokens := Placeholders("{{a}} {{b}} {{a}} {{UPPER(c)}}")
	assert.Equal(t, []string{"a", "b", "UPPER(c)"}, tokens)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "2026-03-15", Stringify(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1250.5", Stringify(1250.50))
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "7", Stringify(7))
}
