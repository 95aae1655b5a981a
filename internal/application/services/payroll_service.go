package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/infrastructure/persistence"
	"github.com/certibase/backend/pkg/errors"
	"github.com/certibase/backend/pkg/utils"
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// PayrollService manages monthly payroll runs. One run exists per employee
// and period; totals are always recomputed from the base salary and the
// earning/deduction lines.
type PayrollService struct {
	payrolls  *persistence.PayrollRepository
	employees *persistence.EmployeeRepository
}

func NewPayrollService(payrolls *persistence.PayrollRepository, employees *persistence.EmployeeRepository) *PayrollService {
	return &PayrollService{
		payrolls:  payrolls,
		employees: employees,
	}
}

// PayrollItemRequest is one earning or deduction line.
type PayrollItemRequest struct {
	Type   string  `json:"type" binding:"required"`
	Label  string  `json:"label" binding:"required"`
	Amount float64 `json:"amount"`
}

// CreatePayrollRequest carries a payroll run create.
type CreatePayrollRequest struct {
	EmployeeID string               `json:"employeeId" binding:"required"`
	Period     string               `json:"period" binding:"required"`
	Items      []PayrollItemRequest `json:"items"`
}

// CreatePayroll opens a draft run for an employee and period. The base
// salary is snapshotted from the employee record at creation.
func (s *PayrollService) CreatePayroll(ctx context.Context, req CreatePayrollRequest) (*models.Payroll, error) {
	if !periodPattern.MatchString(req.Period) {
		return nil, errors.NewValidationError("period", "Period must be YYYY-MM")
	}

	employee, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if employee == nil {
		return nil, errors.NewNotFoundError("employee", req.EmployeeID)
	}
	if employee.Status == models.EmployeeStatusTerminated {
		return nil, errors.NewValidationError("employeeId", "Cannot run payroll for a terminated employee")
	}

	payroll := &models.Payroll{
		ID:         utils.GenerateID(),
		EmployeeID: req.EmployeeID,
		Period:     req.Period,
		BaseSalary: employee.BaseSalary,
		Status:     models.PayrollStatusDraft,
	}

	for _, item := range req.Items {
		if err := validatePayrollItem(item); err != nil {
			return nil, err
		}
		payroll.Items = append(payroll.Items, models.PayrollItem{
			ID:        utils.GenerateID(),
			PayrollID: payroll.ID,
			Type:      item.Type,
			Label:     item.Label,
			Amount:    item.Amount,
		})
	}
	recomputeTotals(payroll)

	if err := s.payrolls.Insert(ctx, payroll); err != nil {
		if persistence.IsDuplicateKey(err) {
			return nil, errors.NewConflictError("payrolls", "period", req.Period)
		}
		return nil, fmt.Errorf("failed to create payroll: %w", err)
	}
	for i := range payroll.Items {
		if err := s.payrolls.InsertItem(ctx, &payroll.Items[i]); err != nil {
			return nil, fmt.Errorf("failed to add payroll item: %w", err)
		}
	}

	log.Printf("💰 Payroll created: %s %s (net %.2f)", employee.Number, payroll.Period, payroll.Net)
	return payroll, nil
}

func (s *PayrollService) GetPayroll(ctx context.Context, id string) (*models.Payroll, error) {
	payroll, err := s.payrolls.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payroll == nil {
		return nil, errors.NewNotFoundError("payroll", id)
	}
	items, err := s.payrolls.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	payroll.Items = items
	return payroll, nil
}

func (s *PayrollService) ListPayrolls(ctx context.Context, employeeID, period, status string, limit, offset int) ([]*models.Payroll, error) {
	return s.payrolls.List(ctx, employeeID, period, status, normalizeLimit(limit), offset)
}

// AddItem appends an earning or deduction line to a draft run and
// recomputes the totals.
func (s *PayrollService) AddItem(ctx context.Context, payrollID string, req PayrollItemRequest) (*models.Payroll, error) {
	payroll, err := s.GetPayroll(ctx, payrollID)
	if err != nil {
		return nil, err
	}
	if payroll.Status != models.PayrollStatusDraft {
		return nil, errors.NewValidationError("status", "Only draft payrolls can be edited")
	}
	if err := validatePayrollItem(req); err != nil {
		return nil, err
	}

	item := models.PayrollItem{
		ID:        utils.GenerateID(),
		PayrollID: payrollID,
		Type:      req.Type,
		Label:     req.Label,
		Amount:    req.Amount,
	}
	if err := s.payrolls.InsertItem(ctx, &item); err != nil {
		return nil, fmt.Errorf("failed to add payroll item: %w", err)
	}
	payroll.Items = append(payroll.Items, item)

	recomputeTotals(payroll)
	if err := s.payrolls.Update(ctx, payroll); err != nil {
		return nil, fmt.Errorf("failed to update payroll: %w", err)
	}
	return payroll, nil
}

// RemoveItem deletes a line from a draft run and recomputes the totals.
func (s *PayrollService) RemoveItem(ctx context.Context, payrollID, itemID string) (*models.Payroll, error) {
	payroll, err := s.GetPayroll(ctx, payrollID)
	if err != nil {
		return nil, err
	}
	if payroll.Status != models.PayrollStatusDraft {
		return nil, errors.NewValidationError("status", "Only draft payrolls can be edited")
	}

	if err := s.payrolls.DeleteItem(ctx, payrollID, itemID); err != nil {
		return nil, fmt.Errorf("failed to remove payroll item: %w", err)
	}

	kept := payroll.Items[:0]
	for _, item := range payroll.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	payroll.Items = kept

	recomputeTotals(payroll)
	if err := s.payrolls.Update(ctx, payroll); err != nil {
		return nil, fmt.Errorf("failed to update payroll: %w", err)
	}
	return payroll, nil
}

// ApprovePayroll moves a draft run to approved and stamps the approver.
func (s *PayrollService) ApprovePayroll(ctx context.Context, id, approverID string) (*models.Payroll, error) {
	payroll, err := s.GetPayroll(ctx, id)
	if err != nil {
		return nil, err
	}
	if payroll.Status != models.PayrollStatusDraft {
		return nil, errors.NewInvalidTransitionError("payroll", payroll.Status, models.PayrollStatusApproved)
	}

	now := time.Now()
	payroll.Status = models.PayrollStatusApproved
	payroll.ApprovedBy = &approverID
	payroll.ApprovedAt = &now

	if err := s.payrolls.Update(ctx, payroll); err != nil {
		return nil, fmt.Errorf("failed to approve payroll: %w", err)
	}
	return payroll, nil
}

// MarkPaid moves an approved run to paid.
func (s *PayrollService) MarkPaid(ctx context.Context, id string) (*models.Payroll, error) {
	payroll, err := s.GetPayroll(ctx, id)
	if err != nil {
		return nil, err
	}
	if payroll.Status != models.PayrollStatusApproved {
		return nil, errors.NewInvalidTransitionError("payroll", payroll.Status, models.PayrollStatusPaid)
	}

	now := time.Now()
	payroll.Status = models.PayrollStatusPaid
	payroll.PaidAt = &now

	if err := s.payrolls.Update(ctx, payroll); err != nil {
		return nil, fmt.Errorf("failed to mark payroll paid: %w", err)
	}
	return payroll, nil
}

// CostByPeriod returns the approved and paid payroll cost per month,
// oldest first.
func (s *PayrollService) CostByPeriod(ctx context.Context, months int) ([]models.MonthlyAmount, error) {
	if months <= 0 {
		months = 12
	}
	return s.payrolls.CostByPeriod(ctx, months)
}

func validatePayrollItem(req PayrollItemRequest) error {
	if req.Type != models.PayrollItemEarning && req.Type != models.PayrollItemDeduction {
		return errors.NewValidationError("type", "Item type must be earning or deduction")
	}
	if req.Amount < 0 {
		return errors.NewValidationError("amount", "Item amount cannot be negative")
	}
	return nil
}

func recomputeTotals(p *models.Payroll) {
	gross := p.BaseSalary
	deductions := 0.0
	for _, item := range p.Items {
		switch item.Type {
		case models.PayrollItemEarning:
			gross += item.Amount
		case models.PayrollItemDeduction:
			deductions += item.Amount
		}
	}
	p.Gross = round2(gross)
	p.Deductions = round2(deductions)
	p.Net = round2(gross - deductions)
}
