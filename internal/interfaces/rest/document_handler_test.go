package rest

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/certibase/backend/internal/application/services"
	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/infrastructure/persistence"
	"github.com/certibase/backend/pkg/auth"
	"github.com/certibase/backend/pkg/constants"
)

func newDocumentTestContext(t *testing.T) (*DocumentHandler, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("UPLOAD_DIR", t.TempDir())

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })

	svcMgr := &services.ServiceManager{
		Documents: services.NewDocumentService(persistence.NewDocumentRepository(db)),
	}
	return NewDocumentHandler(svcMgr), mock
}

func performUpload(t *testing.T, h *DocumentHandler, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "report.pdf")
	if err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	part.Write([]byte("audit report payload"))
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/documents", body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	c.Set(constants.ContextKeyUser, auth.UserSession{ID: "user-1", Name: "Test User", Role: constants.RoleAdmin})

	h.Upload(c)
	return rec
}

func TestUploadLinksEntity(t *testing.T) {
	h, mock := newDocumentTestContext(t)

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(sqlmock.AnyArg(), "report.pdf", models.DocCategoryAuditReport, "audit", "audit-1",
			sqlmock.AnyArg(), sqlmock.AnyArg(), int64(len("audit report payload")), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := performUpload(t, h, map[string]string{
		"category":   models.DocCategoryAuditReport,
		"entityType": "audit",
		"entityId":   "audit-1",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Document models.Document `json:"document"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	if assert.NotNil(t, resp.Document.EntityID) {
		assert.Equal(t, "audit-1", *resp.Document.EntityID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadWithoutEntity(t *testing.T) {
	h, mock := newDocumentTestContext(t)

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(sqlmock.AnyArg(), "report.pdf", models.DocCategoryOther, "", nil,
			sqlmock.AnyArg(), sqlmock.AnyArg(), int64(len("audit report payload")), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := performUpload(t, h, map[string]string{})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Document models.Document `json:"document"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Document.EntityID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
