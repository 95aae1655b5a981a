package models

import "time"

// Document categories.
const (
	DocCategoryContract    = "contract"
	DocCategoryCertificate = "certificate"
	DocCategoryAuditReport = "audit_report"
	DocCategoryPolicy      = "policy"
	DocCategoryOther       = "other"
)

// Document is file metadata; the payload lives on local disk under the
// upload dir, addressed by StoragePath.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	EntityType  string    `json:"entityType,omitempty"` // client | audit | certification | contract
	EntityID    *string   `json:"entityId,omitempty"`
	StoragePath string    `json:"-"` // never exposed; downloads go through the API
	MimeType    string    `json:"mimeType,omitempty"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}
