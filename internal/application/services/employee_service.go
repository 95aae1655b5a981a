package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/infrastructure/persistence"
	"github.com/certibase/backend/pkg/auth"
	"github.com/certibase/backend/pkg/errors"
	"github.com/certibase/backend/pkg/utils"
)

// EmployeeService manages the certification body's own staff records.
type EmployeeService struct {
	employees *persistence.EmployeeRepository
	standards *persistence.StandardRepository
}

func NewEmployeeService(employees *persistence.EmployeeRepository, standards *persistence.StandardRepository) *EmployeeService {
	return &EmployeeService{
		employees: employees,
		standards: standards,
	}
}

// CreateEmployeeRequest carries an employee create.
type CreateEmployeeRequest struct {
	UserID         *string    `json:"userId"`
	FirstName      string     `json:"firstName" binding:"required"`
	LastName       string     `json:"lastName" binding:"required"`
	Email          string     `json:"email" binding:"required"`
	Phone          string     `json:"phone"`
	Position       string     `json:"position"`
	Department     string     `json:"department"`
	HireDate       *time.Time `json:"hireDate"`
	BaseSalary     float64    `json:"baseSalary"`
	Qualifications string     `json:"qualifications"`
}

// CreateEmployee allocates the next EMP number and inserts an active employee.
func (s *EmployeeService) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	if !auth.IsValidEmail(req.Email) {
		return nil, errors.NewValidationError("email", "Invalid email format")
	}
	exists, err := s.employees.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if exists {
		return nil, errors.NewConflictError("employees", "email", req.Email)
	}
	if req.BaseSalary < 0 {
		return nil, errors.NewValidationError("baseSalary", "Base salary cannot be negative")
	}

	employee := &models.Employee{
		ID:             utils.GenerateID(),
		UserID:         req.UserID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Position:       req.Position,
		Department:     req.Department,
		HireDate:       req.HireDate,
		BaseSalary:     req.BaseSalary,
		Status:         models.EmployeeStatusActive,
		Qualifications: req.Qualifications,
	}

	var lastErr error
	for attempt := 0; attempt < numberAllocRetries; attempt++ {
		seq, err := s.employees.NextNumberSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate employee number: %w", err)
		}
		employee.Number = fmt.Sprintf("EMP-%04d", seq+1)

		err = s.employees.Insert(ctx, employee)
		if err == nil {
			lastErr = nil
			break
		}
		if !persistence.IsDuplicateKey(err) {
			return nil, fmt.Errorf("failed to create employee: %w", err)
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed to allocate employee number after %d attempts: %w", numberAllocRetries, lastErr)
	}

	log.Printf("👤 Employee created: %s %s %s", employee.Number, employee.FirstName, employee.LastName)
	return employee, nil
}

func (s *EmployeeService) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, errors.NewNotFoundError("employee", id)
	}
	return employee, nil
}

func (s *EmployeeService) ListEmployees(ctx context.Context, status, department string, limit, offset int) ([]*models.Employee, error) {
	return s.employees.List(ctx, status, department, normalizeLimit(limit), offset)
}

// ListQualifiedAuditors returns active employees qualified for a standard.
func (s *EmployeeService) ListQualifiedAuditors(ctx context.Context, standardID string) ([]*models.Employee, error) {
	std, err := s.standards.GetByID(ctx, standardID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if std == nil {
		return nil, errors.NewNotFoundError("standard", standardID)
	}
	return s.employees.ListQualifiedAuditors(ctx, standardID)
}

// UpdateEmployeeRequest carries the mutable employee fields.
type UpdateEmployeeRequest struct {
	UserID         *string    `json:"userId"`
	FirstName      *string    `json:"firstName"`
	LastName       *string    `json:"lastName"`
	Email          *string    `json:"email"`
	Phone          *string    `json:"phone"`
	Position       *string    `json:"position"`
	Department     *string    `json:"department"`
	HireDate       *time.Time `json:"hireDate"`
	BaseSalary     *float64   `json:"baseSalary"`
	Status         *string    `json:"status"`
	Qualifications *string    `json:"qualifications"`
}

func (s *EmployeeService) UpdateEmployee(ctx context.Context, id string, req UpdateEmployeeRequest) (*models.Employee, error) {
	employee, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.UserID != nil {
		employee.UserID = req.UserID
	}
	if req.FirstName != nil {
		employee.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		employee.LastName = *req.LastName
	}
	if req.Email != nil && *req.Email != employee.Email {
		if !auth.IsValidEmail(*req.Email) {
			return nil, errors.NewValidationError("email", "Invalid email format")
		}
		exists, err := s.employees.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if exists {
			return nil, errors.NewConflictError("employees", "email", *req.Email)
		}
		employee.Email = *req.Email
	}
	if req.Phone != nil {
		employee.Phone = *req.Phone
	}
	if req.Position != nil {
		employee.Position = *req.Position
	}
	if req.Department != nil {
		employee.Department = *req.Department
	}
	if req.HireDate != nil {
		employee.HireDate = req.HireDate
	}
	if req.BaseSalary != nil {
		if *req.BaseSalary < 0 {
			return nil, errors.NewValidationError("baseSalary", "Base salary cannot be negative")
		}
		employee.BaseSalary = *req.BaseSalary
	}
	if req.Status != nil {
		switch *req.Status {
		case models.EmployeeStatusActive, models.EmployeeStatusOnLeave, models.EmployeeStatusTerminated:
			employee.Status = *req.Status
		default:
			return nil, errors.NewValidationError("status", "Unknown employee status: "+*req.Status)
		}
	}
	if req.Qualifications != nil {
		employee.Qualifications = *req.Qualifications
	}

	if err := s.employees.Update(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	return employee, nil
}
