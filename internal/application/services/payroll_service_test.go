package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/certibase/backend/internal/domain/models"
)

func TestRecomputeTotals(t *testing.T) {
	p := &models.Payroll{
		BaseSalary: 5000,
		Items: []models.PayrollItem{
			{Type: models.PayrollItemEarning, Label: "Audit day allowance", Amount: 750},
			{Type: models.PayrollItemEarning, Label: "Travel bonus", Amount: 120.50},
			{Type: models.PayrollItemDeduction, Label: "Income tax", Amount: 1100},
			{Type: models.PayrollItemDeduction, Label: "Pension", Amount: 400},
		},
	}

	recomputeTotals(p)

	assert.Equal(t, 5870.50, p.Gross)
	assert.Equal(t, 1500.0, p.Deductions)
	assert.Equal(t, 4370.50, p.Net)
}

func TestRecomputeTotalsNoItems(t *testing.T) {
	p := &models.Payroll{BaseSalary: 3200}

	recomputeTotals(p)

	assert.Equal(t, 3200.0, p.Gross)
	assert.Equal(t, 0.0, p.Deductions)
	assert.Equal(t, 3200.0, p.Net)
}

func TestRecomputeTotalsRounds(t *testing.T) {
	p := &models.Payroll{
		BaseSalary: 1234.567,
		Items: []models.PayrollItem{
			{Type: models.PayrollItemDeduction, Label: "Tax", Amount: 234.567},
		},
	}

	recomputeTotals(p)

	assert.InDelta(t, 1234.57, p.Gross, 0.001)
	assert.InDelta(t, 234.57, p.Deductions, 0.001)
	assert.InDelta(t, 1000.0, p.Net, 0.001)
}

func TestValidatePayrollItem(t *testing.T) {
	assert.NoError(t, validatePayrollItem(PayrollItemRequest{Type: models.PayrollItemEarning, Label: "Bonus", Amount: 100}))
	assert.Error(t, validatePayrollItem(PayrollItemRequest{Type: "refund", Label: "Bad", Amount: 100}))
	assert.Error(t, validatePayrollItem(PayrollItemRequest{Type: models.PayrollItemDeduction, Label: "Negative", Amount: -5}))
}

func TestPeriodPattern(t *testing.T) {
	assert.True(t, periodPattern.MatchString("2026-01"))
	assert.True(t, periodPattern.MatchString("2026-12"))
	assert.False(t, periodPattern.MatchString("2026-13"))
	assert.False(t, periodPattern.MatchString("2026-1"))
	assert.False(t, periodPattern.MatchString("26-01"))
	assert.False(t, periodPattern.MatchString("2026/01"))
}
