package models

import "time"

// Client statuses.
const (
	ClientStatusProspect = "prospect"
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

// Client is a certified (or prospective) organization.
type Client struct {
	ID                 string    `json:"id"`
	Code               string    `json:"code"` // CL-%05d, assigned on create
	Name               string    `json:"name"`
	Industry           string    `json:"industry,omitempty"`
	EmployeeCount      int       `json:"employeeCount,omitempty"`
	Address            string    `json:"address,omitempty"`
	City               string    `json:"city,omitempty"`
	Country            string    `json:"country,omitempty"`
	TaxNumber          string    `json:"taxNumber,omitempty"`
	RegistrationNumber string    `json:"registrationNumber,omitempty"`
	Website            string    `json:"website,omitempty"`
	Status             string    `json:"status"`
	AccountManagerID   *string   `json:"accountManagerId,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ClientContact is a person at a client organization.
type ClientContact struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId"`
	Name      string    `json:"name"`
	Title     string    `json:"title,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt time.Time `json:"createdAt"`
}

// ClientStats aggregates the client book for the overview endpoint.
type ClientStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByIndustry map[string]int `json:"byIndustry"`
}
