package models

import "time"

// Employee statuses.
const (
	EmployeeStatusActive     = "active"
	EmployeeStatusOnLeave    = "on_leave"
	EmployeeStatusTerminated = "terminated"
)

// Employee is a staff member; auditors carry standard qualifications.
type Employee struct {
	ID             string     `json:"id"`
	Number         string     `json:"number"` // EMP-%04d
	UserID         *string    `json:"userId,omitempty"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Position       string     `json:"position,omitempty"`
	Department     string     `json:"department,omitempty"`
	HireDate       *time.Time `json:"hireDate,omitempty"`
	BaseSalary     float64    `json:"baseSalary"`
	Status         string     `json:"status"`
	Qualifications string     `json:"qualifications,omitempty"` // comma-separated standard IDs
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Payroll statuses.
const (
	PayrollStatusDraft    = "draft"
	PayrollStatusApproved = "approved"
	PayrollStatusPaid     = "paid"
)

// Payroll item types.
const (
	PayrollItemEarning   = "earning"
	PayrollItemDeduction = "deduction"
)

// Payroll is one employee's run for one period (unique per employee+period).
// Gross = base salary + earnings; net = gross - deductions. Totals are
// recomputed server-side whenever items change.
type Payroll struct {
	ID         string        `json:"id"`
	EmployeeID string        `json:"employeeId"`
	Period     string        `json:"period"` // YYYY-MM
	BaseSalary float64       `json:"baseSalary"`
	Gross      float64       `json:"gross"`
	Deductions float64       `json:"deductions"`
	Net        float64       `json:"net"`
	Status     string        `json:"status"`
	ApprovedBy *string       `json:"approvedBy,omitempty"`
	ApprovedAt *time.Time    `json:"approvedAt,omitempty"`
	PaidAt     *time.Time    `json:"paidAt,omitempty"`
	Items      []PayrollItem `json:"items,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// PayrollItem is one earning or deduction line.
type PayrollItem struct {
	ID        string  `json:"id"`
	PayrollID string  `json:"payrollId"`
	Type      string  `json:"type"` // earning | deduction
	Label     string  `json:"label"`
	Amount    float64 `json:"amount"`
}
