package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certibase/backend/internal/application/services"
	"github.com/certibase/backend/pkg/errors"
)

type DocumentHandler struct {
	svcMgr *services.ServiceManager
}

func NewDocumentHandler(svcMgr *services.ServiceManager) *DocumentHandler {
	return &DocumentHandler{svcMgr: svcMgr}
}

// Upload handles POST /api/documents. The payload arrives as multipart
// form data: a "file" part plus category/entityType/entityId fields.
func (h *DocumentHandler) Upload(c *gin.Context) {
	user := GetUserFromContext(c)

	header, err := c.FormFile("file")
	if err != nil {
		RespondAppError(c, errors.NewValidationError("file", "A file part is required"))
		return
	}

	payload, err := header.Open()
	if err != nil {
		RespondAppError(c, errors.NewInternalError("Failed to read upload", err))
		return
	}
	defer payload.Close()

	var entityID *string
	if v := c.PostForm("entityId"); v != "" {
		entityID = &v
	}

	req := services.UploadDocumentRequest{
		Name:       header.Filename,
		Category:   c.PostForm("category"),
		EntityType: c.PostForm("entityType"),
		EntityID:   entityID,
		MimeType:   header.Header.Get("Content-Type"),
		Size:       header.Size,
	}

	doc, err := h.svcMgr.Documents.UploadDocument(c.Request.Context(), user.ID, req, payload)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"document": doc,
		"message":  "Document uploaded successfully",
	})
}

// Get handles GET /api/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "document", func() (interface{}, error) {
		return h.svcMgr.Documents.GetDocument(c.Request.Context(), c.Param("id"))
	})
}

// Download handles GET /api/documents/:id/download
func (h *DocumentHandler) Download(c *gin.Context) {
	doc, path, err := h.svcMgr.Documents.ResolveDownload(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondAppError(c, err)
		return
	}

	if doc.MimeType != "" {
		c.Header("Content-Type", doc.MimeType)
	}
	c.FileAttachment(path, doc.Name)
}

// List handles GET /api/documents
func (h *DocumentHandler) List(c *gin.Context) {
	limit, offset := ParseListQuery(c)
	HandleGetEnvelope(c, "documents", func() (interface{}, error) {
		return h.svcMgr.Documents.ListDocuments(c.Request.Context(),
			c.Query("category"), c.Query("entityType"), c.Query("entityId"), limit, offset)
	})
}

// Delete handles DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	HandleDeleteEnvelope(c, "Document deleted successfully", func() error {
		return h.svcMgr.Documents.DeleteDocument(c.Request.Context(), c.Param("id"))
	})
}
