package handlers

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/cv-match-analyzer/internal/models"
	"alfredoptarigan/cv-match-analyzer/internal/repositories"
	"alfredoptarigan/cv-match-analyzer/internal/services"
)

type UploadHandler struct {
	orchestrator   services.Orchestrator
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
	maxFileSize    int64
}

// NewUploadHandler creates the upload handler. docRepo and storageService may be nil,
// in which case uploaded files are not kept.
func NewUploadHandler(
	orchestrator services.Orchestrator,
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		orchestrator:   orchestrator,
		docRepo:        docRepo,
		storageService: storageService,
		maxFileSize:    maxFileSize,
	}
}

// HandleUpload handles POST /sessions/:id/upload with a multipart "cv" file.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c)
	if !ok {
		return badRequest(c, "Invalid session ID format")
	}

	cvFile, err := c.FormFile("cv")
	if err != nil {
		return badRequest(c, "No file uploaded. Please upload the 'cv' field as a PDF or DOCX file.")
	}

	if cvFile.Size > h.maxFileSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": fmt.Sprintf("CV file too large. Max size: %d bytes", h.maxFileSize),
			"code":  fiber.StatusRequestEntityTooLarge,
		})
	}

	mediaType := cvFile.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = services.MediaTypeFromFilename(cvFile.Filename)
	}

	src, err := cvFile.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to open uploaded file",
			"code":  fiber.StatusInternalServerError,
		})
	}
	defer src.Close()

	session, err := h.orchestrator.UploadCV(c.UserContext(), id, mediaType, src)
	if err != nil {
		return respondError(c, err, session)
	}

	response := models.UploadResponse{
		OriginalName: cvFile.Filename,
		MediaType:    services.NormalizeMediaType(mediaType),
		Characters:   len([]rune(session.CVText)),
		Session:      models.NewSessionResponse(session),
	}

	if _, err := src.Seek(0, io.SeekStart); err == nil {
		response.DocumentID = h.keepDocument(id, src, cvFile.Filename, mediaType, cvFile.Size)
	}

	return c.JSON(response)
}

// keepDocument stores the uploaded file; failures only cost the stored copy.
func (h *UploadHandler) keepDocument(sessionID uuid.UUID, r io.Reader, originalName, mediaType string, size int64) *uuid.UUID {
	if h.storageService == nil || h.docRepo == nil {
		return nil
	}

	filename, filePath, err := h.storageService.SaveFile(r, originalName, mediaType)
	if err != nil {
		log.Printf("⚠️  Failed to store uploaded CV for session %s: %v\n", sessionID, err)
		return nil
	}

	doc := models.Document{
		ID:               uuid.New(),
		SessionID:        sessionID,
		Filename:         filename,
		OriginalFileName: originalName,
		MediaType:        services.NormalizeMediaType(mediaType),
		FilePath:         filePath,
		Size:             size,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := h.docRepo.Create(&doc); err != nil {
		// Cleanup uploaded file if database insert fails
		h.storageService.DeleteFile(filename)
		log.Printf("⚠️  Failed to save document record for session %s: %v\n", sessionID, err)
		return nil
	}

	return &doc.ID
}

// HandleListDocuments handles GET /sessions/:id/documents
func (h *UploadHandler) HandleListDocuments(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c)
	if !ok {
		return badRequest(c, "Invalid session ID format")
	}
	if h.docRepo == nil {
		return c.JSON(fiber.Map{"documents": []models.Document{}})
	}

	docs, err := h.docRepo.FindBySession(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load documents",
			"code":  fiber.StatusInternalServerError,
		})
	}
	return c.JSON(fiber.Map{"documents": docs})
}

// HandleDownloadDocument handles GET /documents/:id
func (h *UploadHandler) HandleDownloadDocument(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c)
	if !ok {
		return badRequest(c, "Invalid document ID format")
	}
	if h.docRepo == nil || h.storageService == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Document not found",
			"code":  fiber.StatusNotFound,
		})
	}

	doc, err := h.docRepo.FindByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Document not found",
			"code":  fiber.StatusNotFound,
		})
	}

	c.Set(fiber.HeaderContentType, doc.MediaType)
	c.Attachment(doc.OriginalFileName)
	return c.SendFile(h.storageService.GetFilePath(doc.Filename))
}
