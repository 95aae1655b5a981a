package models

import "time"

// DashboardOverview is the landing-page aggregate.
type DashboardOverview struct {
	Clients                int                   `json:"clients"`
	ActiveCertifications   int                   `json:"activeCertifications"`
	OpenAudits             int                   `json:"openAudits"`
	OpenFindings           int                   `json:"openFindings"`
	PendingTasks           int                   `json:"pendingTasks"`
	PipelineStages         []PipelineStageStat   `json:"pipelineStages"`
	UpcomingAudits         []*AuditCalendarEntry `json:"upcomingAudits"`
	ExpiringCertifications int                   `json:"expiringCertifications"`
}

// MonthlyAmount is a month bucket in a financial series.
type MonthlyAmount struct {
	Month  string  `json:"month"` // YYYY-MM
	Amount float64 `json:"amount"`
}

// DashboardFinancial is the finance aggregate.
type DashboardFinancial struct {
	ContractValueByStatus map[string]float64 `json:"contractValueByStatus"`
	OpportunityByStage    map[string]float64 `json:"opportunityValueByStage"`
	PayrollCostByMonth    []MonthlyAmount    `json:"payrollCostByMonth"`
}

// ExpiringCertification is one row of the expiring list.
type ExpiringCertification struct {
	CertificationID   string    `json:"certificationId"`
	CertificateNumber string    `json:"certificateNumber"`
	ClientName        string    `json:"clientName"`
	StandardCode      string    `json:"standardCode"`
	ExpiryDate        time.Time `json:"expiryDate"`
	DaysLeft          int       `json:"daysLeft"`
}
