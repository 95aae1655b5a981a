package services

import (
	"context"
	"fmt"
	"log"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/infrastructure/persistence"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/errors"
	"github.com/certibase/backend/pkg/utils"
)

// numberAllocRetries bounds the duplicate-key retry loop for sequential
// numbers (client codes, certificate numbers, etc).
const numberAllocRetries = 3

// ClientService manages the client book and client contacts.
type ClientService struct {
	clients *persistence.ClientRepository
}

func NewClientService(clients *persistence.ClientRepository) *ClientService {
	return &ClientService{clients: clients}
}

// CreateClientRequest carries the client profile on create.
type CreateClientRequest struct {
	Name               string  `json:"name" binding:"required"`
	Industry           string  `json:"industry"`
	EmployeeCount      int     `json:"employeeCount"`
	Address            string  `json:"address"`
	City               string  `json:"city"`
	Country            string  `json:"country"`
	TaxNumber          string  `json:"taxNumber"`
	RegistrationNumber string  `json:"registrationNumber"`
	Website            string  `json:"website"`
	Status             string  `json:"status"`
	AccountManagerID   *string `json:"accountManagerId"`
	Notes              string  `json:"notes"`
}

// CreateClient allocates the next CL code and inserts the client. A lost
// race on the code's unique key is retried with a fresh sequence.
func (s *ClientService) CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error) {
	status := req.Status
	if status == "" {
		status = models.ClientStatusProspect
	}
	if status != models.ClientStatusProspect && status != models.ClientStatusActive && status != models.ClientStatusInactive {
		return nil, errors.NewValidationError("status", "Unknown client status: "+status)
	}

	client := &models.Client{
		ID:                 utils.GenerateID(),
		Name:               req.Name,
		Industry:           req.Industry,
		EmployeeCount:      req.EmployeeCount,
		Address:            req.Address,
		City:               req.City,
		Country:            req.Country,
		TaxNumber:          req.TaxNumber,
		RegistrationNumber: req.RegistrationNumber,
		Website:            req.Website,
		Status:             status,
		AccountManagerID:   req.AccountManagerID,
		Notes:              req.Notes,
	}

	var lastErr error
	for attempt := 0; attempt < numberAllocRetries; attempt++ {
		seq, err := s.clients.NextCodeSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate client code: %w", err)
		}
		client.Code = fmt.Sprintf("CL-%05d", seq+1)

		err = s.clients.Insert(ctx, client)
		if err == nil {
			log.Printf("🏢 Client created: %s (%s)", client.Name, client.Code)
			return client, nil
		}
		if !persistence.IsDuplicateKey(err) {
			return nil, fmt.Errorf("failed to create client: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to allocate client code after %d attempts: %w", numberAllocRetries, lastErr)
}

func (s *ClientService) GetClient(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, errors.NewNotFoundError("client", id)
	}
	return client, nil
}

func (s *ClientService) ListClients(ctx context.Context, status, search string, limit, offset int) ([]*models.Client, error) {
	return s.clients.List(ctx, status, search, normalizeLimit(limit), offset)
}

// UpdateClientRequest carries the mutable client fields; nil pointers mean
// "leave unchanged".
type UpdateClientRequest struct {
	Name               *string `json:"name"`
	Industry           *string `json:"industry"`
	EmployeeCount      *int    `json:"employeeCount"`
	Address            *string `json:"address"`
	City               *string `json:"city"`
	Country            *string `json:"country"`
	TaxNumber          *string `json:"taxNumber"`
	RegistrationNumber *string `json:"registrationNumber"`
	Website            *string `json:"website"`
	Status             *string `json:"status"`
	AccountManagerID   *string `json:"accountManagerId"`
	Notes              *string `json:"notes"`
}

func (s *ClientService) UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (*models.Client, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Industry != nil {
		client.Industry = *req.Industry
	}
	if req.EmployeeCount != nil {
		client.EmployeeCount = *req.EmployeeCount
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.City != nil {
		client.City = *req.City
	}
	if req.Country != nil {
		client.Country = *req.Country
	}
	if req.TaxNumber != nil {
		client.TaxNumber = *req.TaxNumber
	}
	if req.RegistrationNumber != nil {
		client.RegistrationNumber = *req.RegistrationNumber
	}
	if req.Website != nil {
		client.Website = *req.Website
	}
	if req.Status != nil {
		st := *req.Status
		if st != models.ClientStatusProspect && st != models.ClientStatusActive && st != models.ClientStatusInactive {
			return nil, errors.NewValidationError("status", "Unknown client status: "+st)
		}
		client.Status = st
	}
	if req.AccountManagerID != nil {
		client.AccountManagerID = req.AccountManagerID
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}

	if err := s.clients.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

func (s *ClientService) DeleteClient(ctx context.Context, id string) error {
	if _, err := s.GetClient(ctx, id); err != nil {
		return err
	}
	if err := s.clients.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	log.Printf("🗑️ Client deleted: %s", id)
	return nil
}

func (s *ClientService) GetStats(ctx context.Context) (*models.ClientStats, error) {
	return s.clients.Stats(ctx)
}

// Contacts

// ContactRequest carries a contact create/update.
type ContactRequest struct {
	Name      string `json:"name" binding:"required"`
	Title     string `json:"title"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsPrimary bool   `json:"isPrimary"`
}

func (s *ClientService) AddContact(ctx context.Context, clientID string, req ContactRequest) (*models.ClientContact, error) {
	if _, err := s.GetClient(ctx, clientID); err != nil {
		return nil, err
	}

	// Only one primary contact per client
	if req.IsPrimary {
		if err := s.clients.ClearPrimaryContacts(ctx, clientID); err != nil {
			return nil, fmt.Errorf("failed to clear primary contacts: %w", err)
		}
	}

	contact := &models.ClientContact{
		ID:        utils.GenerateID(),
		ClientID:  clientID,
		Name:      req.Name,
		Title:     req.Title,
		Email:     req.Email,
		Phone:     req.Phone,
		IsPrimary: req.IsPrimary,
	}
	if err := s.clients.InsertContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to add contact: %w", err)
	}
	return contact, nil
}

func (s *ClientService) ListContacts(ctx context.Context, clientID string) ([]*models.ClientContact, error) {
	if _, err := s.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	return s.clients.ListContacts(ctx, clientID)
}

func (s *ClientService) UpdateContact(ctx context.Context, clientID, contactID string, req ContactRequest) (*models.ClientContact, error) {
	if _, err := s.GetClient(ctx, clientID); err != nil {
		return nil, err
	}

	if req.IsPrimary {
		if err := s.clients.ClearPrimaryContacts(ctx, clientID); err != nil {
			return nil, fmt.Errorf("failed to clear primary contacts: %w", err)
		}
	}

	contact := &models.ClientContact{
		ID:        contactID,
		ClientID:  clientID,
		Name:      req.Name,
		Title:     req.Title,
		Email:     req.Email,
		Phone:     req.Phone,
		IsPrimary: req.IsPrimary,
	}
	if err := s.clients.UpdateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return contact, nil
}

func (s *ClientService) DeleteContact(ctx context.Context, clientID, contactID string) error {
	return s.clients.DeleteContact(ctx, clientID, contactID)
}

// normalizeLimit clamps list page sizes to the configured bounds.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return constants.DefaultListLimit
	}
	if limit > constants.MaxListLimit {
		return constants.MaxListLimit
	}
	return limit
}
