package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/certibase/backend/internal/application/services"
)

type ClientHandler struct {
	svcMgr *services.ServiceManager
}

func NewClientHandler(svcMgr *services.ServiceManager) *ClientHandler {
	return &ClientHandler{svcMgr: svcMgr}
}

// Create handles POST /api/clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req services.CreateClientRequest
	HandleCreateEnvelope(c, "client", "Client created successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Clients.CreateClient(c.Request.Context(), req)
	})
}

// Get handles GET /api/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "client", func() (interface{}, error) {
		return h.svcMgr.Clients.GetClient(c.Request.Context(), c.Param("id"))
	})
}

// List handles GET /api/clients
func (h *ClientHandler) List(c *gin.Context) {
	limit, offset := ParseListQuery(c)
	HandleGetEnvelope(c, "clients", func() (interface{}, error) {
		return h.svcMgr.Clients.ListClients(c.Request.Context(), c.Query("status"), c.Query("search"), limit, offset)
	})
}

// Update handles PUT /api/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	var req services.UpdateClientRequest
	HandleUpdateEnvelope(c, "client", "Client updated successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Clients.UpdateClient(c.Request.Context(), c.Param("id"), req)
	})
}

// Delete handles DELETE /api/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	HandleDeleteEnvelope(c, "Client deleted successfully", func() error {
		return h.svcMgr.Clients.DeleteClient(c.Request.Context(), c.Param("id"))
	})
}

// Stats handles GET /api/clients/stats
func (h *ClientHandler) Stats(c *gin.Context) {
	HandleGetEnvelope(c, "stats", func() (interface{}, error) {
		return h.svcMgr.Clients.GetStats(c.Request.Context())
	})
}

// Contacts

// AddContact handles POST /api/clients/:id/contacts
func (h *ClientHandler) AddContact(c *gin.Context) {
	var req services.ContactRequest
	HandleCreateEnvelope(c, "contact", "Contact added successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Clients.AddContact(c.Request.Context(), c.Param("id"), req)
	})
}

// ListContacts handles GET /api/clients/:id/contacts
func (h *ClientHandler) ListContacts(c *gin.Context) {
	HandleGetEnvelope(c, "contacts", func() (interface{}, error) {
		return h.svcMgr.Clients.ListContacts(c.Request.Context(), c.Param("id"))
	})
}

// UpdateContact handles PUT /api/clients/:id/contacts/:contactId
func (h *ClientHandler) UpdateContact(c *gin.Context) {
	var req services.ContactRequest
	HandleUpdateEnvelope(c, "contact", "Contact updated successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Clients.UpdateContact(c.Request.Context(), c.Param("id"), c.Param("contactId"), req)
	})
}

// DeleteContact handles DELETE /api/clients/:id/contacts/:contactId
func (h *ClientHandler) DeleteContact(c *gin.Context) {
	HandleDeleteEnvelope(c, "Contact deleted successfully", func() error {
		return h.svcMgr.Clients.DeleteContact(c.Request.Context(), c.Param("id"), c.Param("contactId"))
	})
}
