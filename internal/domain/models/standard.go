package models

// ISOStandard is a certifiable standard (ISO 9001, 14001, 45001, ...).
// Seeded at bootstrap; admins may add niche standards later.
type ISOStandard struct {
	ID          string `json:"id"`
	Code        string `json:"code"` // e.g. "ISO 9001:2015"
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}
