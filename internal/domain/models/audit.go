package models

import "time"

// Audit types.
const (
	AuditTypeStage1          = "stage1"
	AuditTypeStage2          = "stage2"
	AuditTypeSurveillance    = "surveillance"
	AuditTypeRecertification = "recertification"
	AuditTypeInternal        = "internal"
	AuditTypeSpecial         = "special"
)

// Audit statuses.
const (
	AuditStatusPlanned    = "planned"
	AuditStatusScheduled  = "scheduled"
	AuditStatusInProgress = "in_progress"
	AuditStatusCompleted  = "completed"
	AuditStatusCancelled  = "cancelled"
)

// Audit is a single audit engagement against a client and standard.
type Audit struct {
	ID            string     `json:"id"`
	ClientID      string     `json:"clientId"`
	StandardID    string     `json:"standardId"`
	PipelineID    *string    `json:"pipelineId,omitempty"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	LeadAuditorID *string    `json:"leadAuditorId,omitempty"`
	TeamMembers   string     `json:"teamMembers,omitempty"` // comma-separated employee IDs
	DurationDays  float64    `json:"durationDays,omitempty"`
	Scope         string     `json:"scope,omitempty"`
	Summary       string     `json:"summary,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Finding categories.
const (
	FindingMajorNC     = "major_nc"
	FindingMinorNC     = "minor_nc"
	FindingObservation = "observation"
	FindingOFI         = "ofi" // opportunity for improvement
)

// Finding statuses.
const (
	FindingStatusOpen     = "open"
	FindingStatusClosed   = "closed"
	FindingStatusVerified = "verified"
)

// AuditFinding is a nonconformity or observation raised during an audit.
type AuditFinding struct {
	ID               string     `json:"id"`
	AuditID          string     `json:"auditId"`
	Category         string     `json:"category"`
	ClauseRef        string     `json:"clauseRef,omitempty"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	CorrectiveAction string     `json:"correctiveAction,omitempty"`
	ClosedAt         *time.Time `json:"closedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// AuditStats aggregates audits for the stats endpoint.
type AuditStats struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"byStatus"`
	ByType       map[string]int `json:"byType"`
	OpenFindings int            `json:"openFindings"`
}

// AuditCalendarEntry is one audit on the month calendar.
type AuditCalendarEntry struct {
	AuditID       string    `json:"auditId"`
	ClientName    string    `json:"clientName"`
	StandardCode  string    `json:"standardCode"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	ScheduledDate time.Time `json:"scheduledDate"`
}
