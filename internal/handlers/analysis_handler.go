package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/cv-match-analyzer/internal/models"
	"alfredoptarigan/cv-match-analyzer/internal/repositories"
	"alfredoptarigan/cv-match-analyzer/internal/services"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	defaultSimilarLimit = 5
)

type AnalysisHandler struct {
	analysisRepo repositories.AnalysisRepository
	similarity   services.SimilarityService
}

// NewAnalysisHandler creates the history handler. similarity may be nil when the
// vector index is disabled.
func NewAnalysisHandler(analysisRepo repositories.AnalysisRepository, similarity services.SimilarityService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisRepo: analysisRepo,
		similarity:   similarity,
	}
}

// HandleList handles GET /analyses
func (h *AnalysisHandler) HandleList(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultHistoryLimit)
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}

	records, err := h.analysisRepo.FindRecent(limit)
	if err != nil {
		log.Printf("❌ Failed to load analyses: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load analyses",
			"code":  fiber.StatusInternalServerError,
		})
	}

	summaries := make([]models.AnalysisSummary, 0, len(records))
	for i := range records {
		summaries = append(summaries, summarize(&records[i]))
	}
	return c.JSON(fiber.Map{"analyses": summaries})
}

// HandleGet handles GET /analyses/:id
func (h *AnalysisHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c)
	if !ok {
		return badRequest(c, "Invalid analysis ID format")
	}

	record, err := h.analysisRepo.FindByID(id)
	if err != nil {
		return analysisLookupError(c, err)
	}
	return c.JSON(record)
}

// HandleSimilar handles GET /analyses/:id/similar
func (h *AnalysisHandler) HandleSimilar(c *fiber.Ctx) error {
	if h.similarity == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Similar analyses are not available",
			"code":  fiber.StatusServiceUnavailable,
		})
	}

	id, ok := parseUUIDParam(c)
	if !ok {
		return badRequest(c, "Invalid analysis ID format")
	}

	record, err := h.analysisRepo.FindByID(id)
	if err != nil {
		return analysisLookupError(c, err)
	}

	limit := c.QueryInt("limit", defaultSimilarLimit)
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultSimilarLimit
	}

	matches, err := h.similarity.FindSimilar(c.UserContext(), record.JobDescription, record.ID, limit)
	if err != nil {
		log.Printf("❌ Similarity search failed for analysis %s: %v\n", id, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to search similar analyses",
			"code":  fiber.StatusBadGateway,
		})
	}

	ids := make([]uuid.UUID, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, match.AnalysisID)
	}
	records, err := h.analysisRepo.FindByIDs(ids)
	if err != nil {
		log.Printf("❌ Failed to load similar analyses: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load analyses",
			"code":  fiber.StatusInternalServerError,
		})
	}

	byID := make(map[uuid.UUID]*models.AnalysisRecord, len(records))
	for i := range records {
		byID[records[i].ID] = &records[i]
	}

	// Keep the similarity order; index entries without a row are skipped.
	similar := make([]models.SimilarAnalysis, 0, len(matches))
	for _, match := range matches {
		if r, ok := byID[match.AnalysisID]; ok {
			similar = append(similar, models.SimilarAnalysis{
				AnalysisSummary: summarize(r),
				Similarity:      match.Score,
			})
		}
	}

	return c.JSON(fiber.Map{"similar": similar})
}

func summarize(r *models.AnalysisRecord) models.AnalysisSummary {
	return models.AnalysisSummary{
		ID:         r.ID,
		MatchScore: r.MatchScore,
		Summary:    r.Summary,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
}

func analysisLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repositories.ErrAnalysisNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Analysis not found",
			"code":  fiber.StatusNotFound,
		})
	}
	log.Printf("❌ Failed to load analysis: %v\n", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to load analysis",
		"code":  fiber.StatusInternalServerError,
	})
}
