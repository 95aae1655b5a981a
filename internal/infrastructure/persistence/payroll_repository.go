package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/utils"
)

type PayrollRepository struct {
	db *sql.DB
}

func NewPayrollRepository(db *sql.DB) *PayrollRepository {
	return &PayrollRepository{db: db}
}

const payrollColumns = `id, employee_id, period, base_salary, gross, deductions, net, status,
		approved_by, approved_at, paid_at, created_date, last_modified_date`

// Insert relies on the unique (employee_id, period) key to reject a second
// run for the same month.
func (r *PayrollRepository) Insert(ctx context.Context, p *models.Payroll) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, employee_id, period, base_salary, gross, deductions, net, status,
			approved_by, approved_at, paid_at, created_date, last_modified_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		constants.TablePayroll)

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.EmployeeID, p.Period, p.BaseSalary, p.Gross, p.Deductions, p.Net, p.Status,
		p.ApprovedBy, p.ApprovedAt, p.PaidAt)
	return err
}

func (r *PayrollRepository) GetByID(ctx context.Context, id string) (*models.Payroll, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", payrollColumns, constants.TablePayroll)

	row := r.db.QueryRowContext(ctx, query, id)
	p, err := scanPayroll(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *PayrollRepository) List(ctx context.Context, employeeID, period, status string, limit, offset int) ([]*models.Payroll, error) {
	var conds []string
	var args []interface{}

	if employeeID != "" {
		conds = append(conds, "employee_id = ?")
		args = append(args, employeeID)
	}
	if period != "" {
		conds = append(conds, "period = ?")
		args = append(args, period)
	}
	if status != "" {
		conds = append(conds, "status = ?")
		args = append(args, status)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY period DESC LIMIT ? OFFSET ?",
		payrollColumns, constants.TablePayroll, where)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*models.Payroll, 0)
	for rows.Next() {
		p, err := scanPayroll(rows.Scan)
		if err != nil {
			continue
		}
		runs = append(runs, p)
	}
	return runs, rows.Err()
}

func (r *PayrollRepository) Update(ctx context.Context, p *models.Payroll) error {
	query := fmt.Sprintf(`
		UPDATE %s SET base_salary = ?, gross = ?, deductions = ?, net = ?, status = ?,
			approved_by = ?, approved_at = ?, paid_at = ?, last_modified_date = NOW()
		WHERE id = ?`,
		constants.TablePayroll)

	_, err := r.db.ExecContext(ctx, query,
		p.BaseSalary, p.Gross, p.Deductions, p.Net, p.Status,
		p.ApprovedBy, p.ApprovedAt, p.PaidAt, p.ID)
	return err
}

// CostByPeriod sums net pay per period over recent months for the financial
// dashboard, oldest first.
func (r *PayrollRepository) CostByPeriod(ctx context.Context, months int) ([]models.MonthlyAmount, error) {
	query := fmt.Sprintf(`
		SELECT period, COALESCE(SUM(net), 0)
		FROM %s WHERE status IN (?, ?)
		GROUP BY period ORDER BY period DESC LIMIT ?`,
		constants.TablePayroll)

	rows, err := r.db.QueryContext(ctx, query,
		models.PayrollStatusApproved, models.PayrollStatusPaid, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.MonthlyAmount, 0)
	for rows.Next() {
		var m models.MonthlyAmount
		if err := rows.Scan(&m.Month, &m.Amount); err != nil {
			continue
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func scanPayroll(scan func(...interface{}) error) (*models.Payroll, error) {
	var p models.Payroll
	var approvedBy sql.NullString
	var approvedRaw, paidRaw, createdRaw, modifiedRaw []byte

	err := scan(&p.ID, &p.EmployeeID, &p.Period, &p.BaseSalary, &p.Gross, &p.Deductions,
		&p.Net, &p.Status, &approvedBy, &approvedRaw, &paidRaw, &createdRaw, &modifiedRaw)
	if err != nil {
		return nil, err
	}

	if approvedBy.Valid {
		p.ApprovedBy = &approvedBy.String
	}
	p.ApprovedAt = utils.ParseDBTimePtr(approvedRaw)
	p.PaidAt = utils.ParseDBTimePtr(paidRaw)
	p.CreatedAt = utils.ParseDBTime(createdRaw)
	p.UpdatedAt = utils.ParseDBTime(modifiedRaw)
	return &p, nil
}

// Items

func (r *PayrollRepository) InsertItem(ctx context.Context, item *models.PayrollItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, payroll_id, type, label, amount)
		VALUES (?, ?, ?, ?, ?)`,
		constants.TablePayrollItem)
	_, err := r.db.ExecContext(ctx, query, item.ID, item.PayrollID, item.Type, item.Label, item.Amount)
	return err
}

func (r *PayrollRepository) ListItems(ctx context.Context, payrollID string) ([]models.PayrollItem, error) {
	query := fmt.Sprintf(`
		SELECT id, payroll_id, type, label, amount
		FROM %s WHERE payroll_id = ?`,
		constants.TablePayrollItem)

	rows, err := r.db.QueryContext(ctx, query, payrollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.PayrollItem, 0)
	for rows.Next() {
		var item models.PayrollItem
		if err := rows.Scan(&item.ID, &item.PayrollID, &item.Type, &item.Label, &item.Amount); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PayrollRepository) DeleteItem(ctx context.Context, payrollID, itemID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ? AND payroll_id = ?", constants.TablePayrollItem)
	_, err := r.db.ExecContext(ctx, query, itemID, payrollID)
	return err
}
