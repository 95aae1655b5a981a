package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/certibase/backend/internal/application/services"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/errors"
)

type CertificationHandler struct {
	svcMgr *services.ServiceManager
}

func NewCertificationHandler(svcMgr *services.ServiceManager) *CertificationHandler {
	return &CertificationHandler{svcMgr: svcMgr}
}

// Issue handles POST /api/certifications
func (h *CertificationHandler) Issue(c *gin.Context) {
	user := GetUserFromContext(c)
	var req services.IssueCertificationRequest
	HandleCreateEnvelope(c, "certification", "Certification issued successfully", &req, func() (interface{}, error) {
		return h.svcMgr.Certification.IssueCertification(c.Request.Context(), user.ID, req)
	})
}

// Get handles GET /api/certifications/:id
func (h *CertificationHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "certification", func() (interface{}, error) {
		return h.svcMgr.Certification.GetCertification(c.Request.Context(), c.Param("id"))
	})
}

// List handles GET /api/certifications
func (h *CertificationHandler) List(c *gin.Context) {
	limit, offset := ParseListQuery(c)
	HandleGetEnvelope(c, "certifications", func() (interface{}, error) {
		return h.svcMgr.Certification.ListCertifications(c.Request.Context(),
			c.Query("clientId"), c.Query("standardId"), c.Query("status"), limit, offset)
	})
}

func (h *CertificationHandler) lifecycle(c *gin.Context, successMsg string, action func(id, actorID string, req services.LifecycleRequest) (interface{}, error)) {
	user := GetUserFromContext(c)
	var req services.LifecycleRequest
	HandleUpdateEnvelope(c, "certification", successMsg, &req, func() (interface{}, error) {
		return action(c.Param("id"), user.ID, req)
	})
}

// Renew handles POST /api/certifications/:id/renew
func (h *CertificationHandler) Renew(c *gin.Context) {
	h.lifecycle(c, "Certification renewed successfully", func(id, actorID string, req services.LifecycleRequest) (interface{}, error) {
		return h.svcMgr.Certification.Renew(c.Request.Context(), id, actorID, req)
	})
}

// Suspend handles POST /api/certifications/:id/suspend
func (h *CertificationHandler) Suspend(c *gin.Context) {
	h.lifecycle(c, "Certification suspended", func(id, actorID string, req services.LifecycleRequest) (interface{}, error) {
		return h.svcMgr.Certification.Suspend(c.Request.Context(), id, actorID, req)
	})
}

// Revoke handles POST /api/certifications/:id/revoke
func (h *CertificationHandler) Revoke(c *gin.Context) {
	h.lifecycle(c, "Certification revoked", func(id, actorID string, req services.LifecycleRequest) (interface{}, error) {
		return h.svcMgr.Certification.Revoke(c.Request.Context(), id, actorID, req)
	})
}

// Reactivate handles POST /api/certifications/:id/reactivate
func (h *CertificationHandler) Reactivate(c *gin.Context) {
	h.lifecycle(c, "Certification reactivated", func(id, actorID string, req services.LifecycleRequest) (interface{}, error) {
		return h.svcMgr.Certification.Reactivate(c.Request.Context(), id, actorID, req)
	})
}

// SurveillanceRequest stamps a surveillance visit.
type SurveillanceRequest struct {
	VisitDate *time.Time `json:"visitDate"`
}

// RecordSurveillance handles POST /api/certifications/:id/surveillance
func (h *CertificationHandler) RecordSurveillance(c *gin.Context) {
	var req SurveillanceRequest
	HandleUpdateEnvelope(c, "certification", "Surveillance visit recorded", &req, func() (interface{}, error) {
		visit := time.Now()
		if req.VisitDate != nil {
			visit = *req.VisitDate
		}
		return h.svcMgr.Certification.RecordSurveillance(c.Request.Context(), c.Param("id"), visit)
	})
}

// History handles GET /api/certifications/:id/history
func (h *CertificationHandler) History(c *gin.Context) {
	HandleGetEnvelope(c, "history", func() (interface{}, error) {
		return h.svcMgr.Certification.GetHistory(c.Request.Context(), c.Param("id"))
	})
}

// Stats handles GET /api/certifications/stats
func (h *CertificationHandler) Stats(c *gin.Context) {
	HandleGetEnvelope(c, "stats", func() (interface{}, error) {
		return h.svcMgr.Certification.GetStats(c.Request.Context())
	})
}

// Expiring handles GET /api/certifications/expiring?days=90
func (h *CertificationHandler) Expiring(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(constants.CertExpiryWarningDays)))
	if err != nil || days < 1 {
		RespondAppError(c, errors.NewValidationError("days", "Days must be a positive number"))
		return
	}

	HandleGetEnvelope(c, "expiring", func() (interface{}, error) {
		return h.svcMgr.Certification.GetExpiring(c.Request.Context(), days)
	})
}

// GenerateDocument handles POST /api/certifications/:id/document
func (h *CertificationHandler) GenerateDocument(c *gin.Context) {
	user := GetUserFromContext(c)

	doc, err := h.svcMgr.Certification.GenerateDocument(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}
