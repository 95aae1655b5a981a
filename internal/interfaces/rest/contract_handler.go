package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certibase/backend/internal/application/services"
	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/pkg/errors"
)

type ContractHandler struct {
	svcMgr *services.ServiceManager
}

func NewContractHandler(svcMgr *services.ServiceManager) *ContractHandler {
	return &ContractHandler{svcMgr: svcMgr}
}

// Proposals

// CreateProposal handles POST /api/proposals
func (h *ContractHandler) CreateProposal(c *gin.Context) {
	var req services.CreateProposalRequest
	HandleCreateEnvelope(c, "proposal", "Proposal created successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Contracts.CreateProposal(c.Request.Context(), req)
	})
}

// GetProposal handles GET /api/proposals/:id
func (h *ContractHandler) GetProposal(c *gin.Context) {
	HandleGetEnvelope(c, "proposal", func() (interface{}, error) {
		return h.svcMgr.Contracts.GetProposal(c.Request.Context(), c.Param("id"))
	})
}

// ListProposals handles GET /api/proposals
func (h *ContractHandler) ListProposals(c *gin.Context) {
	limit, offset := ParseListQuery(c)
	HandleGetEnvelope(c, "proposals", func() (interface{}, error) {
		return h.svcMgr.Contracts.ListProposals(c.Request.Context(), c.Query("clientId"), c.Query("status"), limit, offset)
	})
}

// ProposalStatusRequest moves a proposal through its lifecycle.
type ProposalStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateProposalStatus handles PUT /api/proposals/:id/status
func (h *ContractHandler) UpdateProposalStatus(c *gin.Context) {
	var req ProposalStatusRequest
	HandleUpdateEnvelope(c, "proposal", "Proposal status updated", &req, func() (interface{}, error) {
		return h.svcMgr.Contracts.UpdateProposalStatus(c.Request.Context(), c.Param("id"), req.Status)
	})
}

// ProposalItemsRequest replaces the service lines of a draft proposal.
type ProposalItemsRequest struct {
	Items []services.ProposalItemRequest `json:"items" binding:"required"`
}

// ReplaceProposalItems handles PUT /api/proposals/:id/items
func (h *ContractHandler) ReplaceProposalItems(c *gin.Context) {
	var req ProposalItemsRequest
	HandleUpdateEnvelope(c, "proposal", "Proposal items updated", &req, func() (interface{}, error) {
		return h.svcMgr.Contracts.ReplaceProposalItems(c.Request.Context(), c.Param("id"), req.Items)
	})
}

// Contracts

// CreateContract handles POST /api/contracts
func (h *ContractHandler) CreateContract(c *gin.Context) {
	var req services.CreateContractRequest
	HandleCreateEnvelope(c, "contract", "Contract created successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Contracts.CreateContract(c.Request.Context(), req)
	})
}

// GetContract handles GET /api/contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	HandleGetEnvelope(c, "contract", func() (interface{}, error) {
		return h.svcMgr.Contracts.GetContract(c.Request.Context(), c.Param("id"))
	})
}

// ListContracts handles GET /api/contracts
func (h *ContractHandler) ListContracts(c *gin.Context) {
	limit, offset := ParseListQuery(c)
	HandleGetEnvelope(c, "contracts", func() (interface{}, error) {
		return h.svcMgr.Contracts.ListContracts(c.Request.Context(), c.Query("clientId"), c.Query("status"), limit, offset)
	})
}

// Activate handles POST /api/contracts/:id/activate
func (h *ContractHandler) Activate(c *gin.Context) {
	user := GetUserFromContext(c)
	var req services.SignContractRequest
	HandleUpdateEnvelope(c, "contract", "Contract activated successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Contracts.ActivateContract(c.Request.Context(), c.Param("id"), user.ID, req)
	})
}

// ContractCloseRequest names the terminal status.
type ContractCloseRequest struct {
	Status string `json:"status" binding:"required"`
}

// Close handles POST /api/contracts/:id/close
func (h *ContractHandler) Close(c *gin.Context) {
	var req ContractCloseRequest
	HandleUpdateEnvelope(c, "contract", "Contract closed", &req, func() (interface{}, error) {
		return h.svcMgr.Contracts.CloseContract(c.Request.Context(), c.Param("id"), req.Status)
	})
}

// GenerateProposalDocument handles POST /api/proposals/:id/document
func (h *ContractHandler) GenerateProposalDocument(c *gin.Context) {
	h.generateDocument(c, models.TemplateKindProposal)
}

// GenerateContractDocument handles POST /api/contracts/:id/document
func (h *ContractHandler) GenerateContractDocument(c *gin.Context) {
	h.generateDocument(c, models.TemplateKindContract)
}

func (h *ContractHandler) generateDocument(c *gin.Context, kind string) {
	id := c.Param("id")
	if id == "" {
		RespondAppError(c, errors.NewValidationError("id", "ID is required"))
		return
	}

	doc, err := h.svcMgr.Contracts.GenerateDocument(c.Request.Context(), kind, id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}
