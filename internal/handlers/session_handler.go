package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/cv-match-analyzer/internal/models"
	"alfredoptarigan/cv-match-analyzer/internal/services"
)

// AnalysisQueue hands a started analysis to background execution.
type AnalysisQueue interface {
	EnqueueJob(sessionID uuid.UUID) error
}

type SessionHandler struct {
	orchestrator services.Orchestrator
	queue        AnalysisQueue
}

func NewSessionHandler(orchestrator services.Orchestrator, queue AnalysisQueue) *SessionHandler {
	return &SessionHandler{
		orchestrator: orchestrator,
		queue:        queue,
	}
}

// HandleCreate handles POST /sessions
func (h *SessionHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request payload")
		}
	}

	session := h.orchestrator.CreateSession(req.CVText, req.JobDescription)
	return c.Status(fiber.StatusCreated).JSON(models.NewSessionResponse(session))
}

// HandleGet handles GET /sessions/:id
func (h *SessionHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c)
	if !ok {
		return badRequest(c, "Invalid session ID format")
	}

	session, err := h.orchestrator.GetSession(id)
	if err != nil {
		return respondError(c, err, nil)
	}
	return c.JSON(models.NewSessionResponse(session))
}

// HandleDelete handles DELETE /sessions/:id
func (h *SessionHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c)
	if !ok {
		return badRequest(c, "Invalid session ID format")
	}

	if err := h.orchestrator.DeleteSession(id); err != nil {
		return respondError(c, err, nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSetCV handles PUT /sessions/:id/cv
func (h *SessionHandler) HandleSetCV(c *fiber.Ctx) error {
	return h.updateText(c, h.orchestrator.SetCVText)
}

// HandleSetJobDescription handles PUT /sessions/:id/job-description
func (h *SessionHandler) HandleSetJobDescription(c *fiber.Ctx) error {
	return h.updateText(c, h.orchestrator.SetJobDescription)
}

func (h *SessionHandler) updateText(c *fiber.Ctx, set func(uuid.UUID, string) (*models.Session, error)) error {
	id, ok := parseUUIDParam(c)
	if !ok {
		return badRequest(c, "Invalid session ID format")
	}

	var req models.UpdateTextRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	session, err := set(id, req.Text)
	if err != nil {
		return respondError(c, err, session)
	}
	return c.JSON(models.NewSessionResponse(session))
}

// HandleAnalyze handles POST /sessions/:id/analyze. The analysis runs in the
// background; clients poll GET /sessions/:id.
func (h *SessionHandler) HandleAnalyze(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c)
	if !ok {
		return badRequest(c, "Invalid session ID format")
	}

	session, err := h.orchestrator.BeginAnalysis(id)
	if err != nil {
		return respondError(c, err, session)
	}

	if err := h.queue.EnqueueJob(id); err != nil {
		log.Printf("❌ Failed to enqueue analysis for session %s: %v\n", id, err)
		if _, abortErr := h.orchestrator.AbortAnalysis(id); abortErr != nil && !errors.Is(abortErr, services.ErrNotAnalyzing) {
			log.Printf("⚠️  Failed to roll back analysis for session %s: %v\n", id, abortErr)
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "The analysis queue is busy, please try again shortly",
			"code":  fiber.StatusServiceUnavailable,
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(models.AnalyzeResponse{
		ID:     id.String(),
		Status: session.State(),
	})
}

// HandleCancel handles POST /sessions/:id/cancel
func (h *SessionHandler) HandleCancel(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c)
	if !ok {
		return badRequest(c, "Invalid session ID format")
	}

	session, err := h.orchestrator.Cancel(id)
	if err != nil {
		return respondError(c, err, session)
	}
	return c.JSON(models.NewSessionResponse(session))
}
