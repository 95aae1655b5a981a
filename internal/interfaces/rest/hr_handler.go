package rest

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/certibase/backend/internal/application/services"
)

// HRHandler serves employees and payroll.
type HRHandler struct {
	svcMgr *services.ServiceManager
}

func NewHRHandler(svcMgr *services.ServiceManager) *HRHandler {
	return &HRHandler{svcMgr: svcMgr}
}

// Employees

// CreateEmployee handles POST /api/employees
func (h *HRHandler) CreateEmployee(c *gin.Context) {
	var req services.CreateEmployeeRequest
	HandleCreateEnvelope(c, "employee", "Employee created successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Employees.CreateEmployee(c.Request.Context(), req)
	})
}

// GetEmployee handles GET /api/employees/:id
func (h *HRHandler) GetEmployee(c *gin.Context) {
	HandleGetEnvelope(c, "employee", func() (interface{}, error) {
		return h.svcMgr.Employees.GetEmployee(c.Request.Context(), c.Param("id"))
	})
}

// ListEmployees handles GET /api/employees
func (h *HRHandler) ListEmployees(c *gin.Context) {
	limit, offset := ParseListQuery(c)
	HandleGetEnvelope(c, "employees", func() (interface{}, error) {
		return h.svcMgr.Employees.ListEmployees(c.Request.Context(), c.Query("status"), c.Query("department"), limit, offset)
	})
}

// ListQualifiedAuditors handles GET /api/employees/auditors?standardId=...
func (h *HRHandler) ListQualifiedAuditors(c *gin.Context) {
	HandleGetEnvelope(c, "auditors", func() (interface{}, error) {
		return h.svcMgr.Employees.ListQualifiedAuditors(c.Request.Context(), c.Query("standardId"))
	})
}

// UpdateEmployee handles PUT /api/employees/:id
func (h *HRHandler) UpdateEmployee(c *gin.Context) {
	var req services.UpdateEmployeeRequest
	HandleUpdateEnvelope(c, "employee", "Employee updated successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Employees.UpdateEmployee(c.Request.Context(), c.Param("id"), req)
	})
}

// Payroll

// CreatePayroll handles POST /api/payrolls
func (h *HRHandler) CreatePayroll(c *gin.Context) {
	var req services.CreatePayrollRequest
	HandleCreateEnvelope(c, "payroll", "Payroll run created successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Payrolls.CreatePayroll(c.Request.Context(), req)
	})
}

// GetPayroll handles GET /api/payrolls/:id
func (h *HRHandler) GetPayroll(c *gin.Context) {
	HandleGetEnvelope(c, "payroll", func() (interface{}, error) {
		return h.svcMgr.Payrolls.GetPayroll(c.Request.Context(), c.Param("id"))
	})
}

// ListPayrolls handles GET /api/payrolls
func (h *HRHandler) ListPayrolls(c *gin.Context) {
	limit, offset := ParseListQuery(c)
	HandleGetEnvelope(c, "payrolls", func() (interface{}, error) {
		return h.svcMgr.Payrolls.ListPayrolls(c.Request.Context(),
			c.Query("employeeId"), c.Query("period"), c.Query("status"), limit, offset)
	})
}

// AddPayrollItem handles POST /api/payrolls/:id/items
func (h *HRHandler) AddPayrollItem(c *gin.Context) {
	var req services.PayrollItemRequest
	HandleCreateEnvelope(c, "payroll", "Payroll item added", &req, func() (interface{}, error) {
		return h.svcMgr.Payrolls.AddItem(c.Request.Context(), c.Param("id"), req)
	})
}

// RemovePayrollItem handles DELETE /api/payrolls/:id/items/:itemId
func (h *HRHandler) RemovePayrollItem(c *gin.Context) {
	HandleGetEnvelope(c, "payroll", func() (interface{}, error) {
		return h.svcMgr.Payrolls.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	})
}

// ApprovePayroll handles POST /api/payrolls/:id/approve
func (h *HRHandler) ApprovePayroll(c *gin.Context) {
	user := GetUserFromContext(c)
	HandleGetEnvelope(c, "payroll", func() (interface{}, error) {
		return h.svcMgr.Payrolls.ApprovePayroll(c.Request.Context(), c.Param("id"), user.ID)
	})
}

// MarkPayrollPaid handles POST /api/payrolls/:id/pay
func (h *HRHandler) MarkPayrollPaid(c *gin.Context) {
	HandleGetEnvelope(c, "payroll", func() (interface{}, error) {
		return h.svcMgr.Payrolls.MarkPaid(c.Request.Context(), c.Param("id"))
	})
}

// PayrollCost handles GET /api/payrolls/cost?months=12
func (h *HRHandler) PayrollCost(c *gin.Context) {
	months, _ := strconv.Atoi(c.DefaultQuery("months", "12"))
	HandleGetEnvelope(c, "cost", func() (interface{}, error) {
		return h.svcMgr.Payrolls.CostByPeriod(c.Request.Context(), months)
	})
}
