package services

import (
	"github.com/certibase/backend/internal/infrastructure/database"
	"github.com/certibase/backend/internal/infrastructure/persistence"
)

// ServiceManager wires every repository and service with shared
// dependencies and registers the event subscriptions.
type ServiceManager struct {
	db *database.Connection

	TxManager *persistence.TransactionManager
	EventBus  *EventBus

	Auth          *AuthService
	Clients       *ClientService
	Standards     *StandardService
	Audits        *AuditService
	Checklists    *ChecklistService
	Certification *CertificationService
	Leads         *LeadService
	Contracts     *ContractService
	Employees     *EmployeeService
	Payrolls      *PayrollService
	Tasks         *TaskService
	Documents     *DocumentService
	Templates     *TemplateService
	Pipelines     *PipelineService
	Dashboard     *DashboardService
	Reports       *ReportService
	Scheduler     *SchedulerService
}

// NewServiceManager builds the full service graph.
func NewServiceManager(db *database.Connection) *ServiceManager {
	sm := &ServiceManager{db: db}

	sm.TxManager = persistence.NewTransactionManager(db)
	sm.EventBus = NewEventBus()

	sqlDB := db.DB()
	users := persistence.NewUserRepository(sqlDB)
	sessions := persistence.NewSessionRepository(sqlDB)
	clients := persistence.NewClientRepository(sqlDB)
	standards := persistence.NewStandardRepository(sqlDB)
	audits := persistence.NewAuditRepository(sqlDB)
	checklists := persistence.NewChecklistRepository(sqlDB)
	certifications := persistence.NewCertificationRepository(sqlDB)
	templates := persistence.NewTemplateRepository(sqlDB)
	leads := persistence.NewLeadRepository(sqlDB)
	contracts := persistence.NewContractRepository(sqlDB)
	employees := persistence.NewEmployeeRepository(sqlDB)
	payrolls := persistence.NewPayrollRepository(sqlDB)
	tasks := persistence.NewTaskRepository(sqlDB)
	documents := persistence.NewDocumentRepository(sqlDB)
	pipelines := persistence.NewPipelineRepository(sqlDB)

	sm.Auth = NewAuthService(users, sessions)
	sm.Clients = NewClientService(clients)
	sm.Standards = NewStandardService(standards)
	sm.Audits = NewAuditService(audits, clients, sm.EventBus)
	sm.Checklists = NewChecklistService(checklists, audits, standards)
	sm.Certification = NewCertificationService(certifications, clients, standards, audits, templates, sm.EventBus)
	sm.Leads = NewLeadService(leads, sm.Clients, sm.EventBus)
	sm.Contracts = NewContractService(contracts, clients, leads, templates, sm.EventBus)
	sm.Employees = NewEmployeeService(employees, standards)
	sm.Payrolls = NewPayrollService(payrolls, employees)
	sm.Tasks = NewTaskService(tasks)
	sm.Documents = NewDocumentService(documents)
	sm.Templates = NewTemplateService(templates)
	sm.Pipelines = NewPipelineService(pipelines, audits, contracts, certifications, leads, sm.EventBus)
	sm.Dashboard = NewDashboardService(clients, certifications, audits, tasks, pipelines, contracts, leads, payrolls)
	sm.Reports = NewReportService(sqlDB)
	sm.Scheduler = NewSchedulerService(sqlDB, sm.Certification, sm.Tasks, sm.Pipelines)

	sm.Pipelines.RegisterEventHandlers()

	return sm
}

// StartScheduler launches the background maintenance loop.
func (sm *ServiceManager) StartScheduler() {
	go sm.Scheduler.Start()
}

// StopScheduler stops the maintenance loop and waits for running jobs.
func (sm *ServiceManager) StopScheduler() {
	sm.Scheduler.Stop()
}
