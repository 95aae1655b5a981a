package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/certibase/backend/internal/domain/models"
	"github.com/certibase/backend/internal/infrastructure/persistence"
	"github.com/certibase/backend/pkg/constants"
	"github.com/certibase/backend/pkg/errors"
	"github.com/certibase/backend/pkg/utils"
)

// DocumentService stores uploaded files on local disk and keeps their
// metadata in the database. Downloads are resolved back through the
// metadata row so storage paths never leave the server.
type DocumentService struct {
	documents *persistence.DocumentRepository
	uploadDir string
}

func NewDocumentService(documents *persistence.DocumentRepository) *DocumentService {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = constants.DefaultUploadDir
	}
	return &DocumentService{
		documents: documents,
		uploadDir: dir,
	}
}

func isValidDocCategory(c string) bool {
	switch c {
	case models.DocCategoryContract, models.DocCategoryCertificate,
		models.DocCategoryAuditReport, models.DocCategoryPolicy, models.DocCategoryOther:
		return true
	}
	return false
}

// UploadDocumentRequest carries the metadata of an upload.
type UploadDocumentRequest struct {
	Name       string
	Category   string
	EntityType string
	EntityID   *string
	MimeType   string
	Size       int64
}

// UploadDocument writes the payload to disk and records the metadata row.
// The file on disk is named by the generated ID, so the original name only
// lives in metadata.
func (s *DocumentService) UploadDocument(ctx context.Context, userID string, req UploadDocumentRequest, payload io.Reader) (*models.Document, error) {
	if req.Name == "" {
		return nil, errors.NewValidationError("name", "Document name is required")
	}
	category := req.Category
	if category == "" {
		category = models.DocCategoryOther
	}
	if !isValidDocCategory(category) {
		return nil, errors.NewValidationError("category", "Unknown document category: "+category)
	}
	if req.Size > constants.MaxUploadBytes {
		return nil, errors.NewValidationError("file", fmt.Sprintf("File exceeds the %d MB upload limit", constants.MaxUploadBytes>>20))
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare upload dir: %w", err)
	}

	id := utils.GenerateID()
	ext := filepath.Ext(req.Name)
	storagePath := filepath.Join(s.uploadDir, id+strings.ToLower(ext))

	out, err := os.Create(storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	written, err := io.Copy(out, io.LimitReader(payload, constants.MaxUploadBytes+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(storagePath)
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	if written > constants.MaxUploadBytes {
		os.Remove(storagePath)
		return nil, errors.NewValidationError("file", fmt.Sprintf("File exceeds the %d MB upload limit", constants.MaxUploadBytes>>20))
	}

	doc := &models.Document{
		ID:          id,
		Name:        req.Name,
		Category:    category,
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		StoragePath: storagePath,
		MimeType:    req.MimeType,
		SizeBytes:   written,
		UploadedBy:  userID,
	}
	if err := s.documents.Insert(ctx, doc); err != nil {
		os.Remove(storagePath)
		return nil, fmt.Errorf("failed to save document metadata: %w", err)
	}

	log.Printf("📎 Document uploaded: %s (%d bytes)", doc.Name, doc.SizeBytes)
	return doc, nil
}

func (s *DocumentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.NewNotFoundError("document", id)
	}
	return doc, nil
}

// ResolveDownload returns the metadata and the on-disk path for streaming.
func (s *DocumentService) ResolveDownload(ctx context.Context, id string) (*models.Document, string, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(doc.StoragePath); err != nil {
		return nil, "", errors.NewNotFoundError("document file", id)
	}
	return doc, doc.StoragePath, nil
}

func (s *DocumentService) ListDocuments(ctx context.Context, category, entityType, entityID string, limit, offset int) ([]*models.Document, error) {
	return s.documents.List(ctx, category, entityType, entityID, normalizeLimit(limit), offset)
}

// DeleteDocument removes the metadata row and the file on disk. A missing
// file is not an error; the metadata is the source of truth.
func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if err := os.Remove(doc.StoragePath); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ Failed to remove stored file %s: %v", doc.StoragePath, err)
	}
	log.Printf("🗑️ Document deleted: %s", doc.Name)
	return nil
}
