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

type EmployeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `id, number, user_id, first_name, last_name, email, phone, position,
		department, hire_date, base_salary, status, qualifications,
		created_date, last_modified_date`

// NextNumberSeq returns the highest employee sequence already allocated.
// Numbers are EMP-%04d; the caller formats seq+1 and retries on duplicate key.
func (r *EmployeeRepository) NextNumberSeq(ctx context.Context) (int, error) {
	var seq int
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(CAST(SUBSTRING(number, 5) AS UNSIGNED)), 0)
		FROM %s`, constants.TableEmployee)
	err := r.db.QueryRowContext(ctx, query).Scan(&seq)
	return seq, err
}

func (r *EmployeeRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE email = ?)", constants.TableEmployee)
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	return exists, err
}

func (r *EmployeeRepository) Insert(ctx context.Context, e *models.Employee) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, number, user_id, first_name, last_name, email, phone, position,
			department, hire_date, base_salary, status, qualifications,
			created_date, last_modified_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		constants.TableEmployee)

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Number, e.UserID, e.FirstName, e.LastName, e.Email, e.Phone, e.Position,
		e.Department, e.HireDate, e.BaseSalary, e.Status, e.Qualifications)
	return err
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", employeeColumns, constants.TableEmployee)

	row := r.db.QueryRowContext(ctx, query, id)
	e, err := scanEmployee(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func (r *EmployeeRepository) List(ctx context.Context, status, department string, limit, offset int) ([]*models.Employee, error) {
	var conds []string
	var args []interface{}

	if status != "" {
		conds = append(conds, "status = ?")
		args = append(args, status)
	}
	if department != "" {
		conds = append(conds, "department = ?")
		args = append(args, department)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY last_name ASC, first_name ASC LIMIT ? OFFSET ?",
		employeeColumns, constants.TableEmployee, where)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*models.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows.Scan)
		if err != nil {
			continue
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// ListQualifiedAuditors returns active employees qualified for a standard.
// Qualifications are stored as a comma-separated ID list, so the match is a
// delimiter-padded LIKE.
func (r *EmployeeRepository) ListQualifiedAuditors(ctx context.Context, standardID string) ([]*models.Employee, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE status = ? AND CONCAT(',', qualifications, ',') LIKE ?
		ORDER BY last_name ASC`,
		employeeColumns, constants.TableEmployee)

	rows, err := r.db.QueryContext(ctx, query, models.EmployeeStatusActive, "%,"+standardID+",%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*models.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows.Scan)
		if err != nil {
			continue
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *EmployeeRepository) Update(ctx context.Context, e *models.Employee) error {
	query := fmt.Sprintf(`
		UPDATE %s SET user_id = ?, first_name = ?, last_name = ?, email = ?, phone = ?,
			position = ?, department = ?, hire_date = ?, base_salary = ?, status = ?,
			qualifications = ?, last_modified_date = NOW()
		WHERE id = ?`,
		constants.TableEmployee)

	_, err := r.db.ExecContext(ctx, query,
		e.UserID, e.FirstName, e.LastName, e.Email, e.Phone, e.Position, e.Department,
		e.HireDate, e.BaseSalary, e.Status, e.Qualifications, e.ID)
	return err
}

func scanEmployee(scan func(...interface{}) error) (*models.Employee, error) {
	var e models.Employee
	var userID sql.NullString
	var hireRaw, createdRaw, modifiedRaw []byte

	err := scan(&e.ID, &e.Number, &userID, &e.FirstName, &e.LastName, &e.Email, &e.Phone,
		&e.Position, &e.Department, &hireRaw, &e.BaseSalary, &e.Status, &e.Qualifications,
		&createdRaw, &modifiedRaw)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		e.UserID = &userID.String
	}
	e.HireDate = utils.ParseDBDatePtr(hireRaw)
	e.CreatedAt = utils.ParseDBTime(createdRaw)
	e.UpdatedAt = utils.ParseDBTime(modifiedRaw)
	return &e, nil
}
