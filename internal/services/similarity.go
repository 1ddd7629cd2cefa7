package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"

	"alfredoptarigan/cv-match-analyzer/internal/models"
)

const (
	similarityChunkSize    = 1000
	similarityChunkOverlap = 200
)

// SimilarityService indexes job descriptions of past analyses and finds comparable ones.
type SimilarityService interface {
	IndexAnalysis(ctx context.Context, record *models.AnalysisRecord) error
	FindSimilar(ctx context.Context, jobDescription string, exclude uuid.UUID, limit int) ([]SimilarMatch, error)
}

type SimilarMatch struct {
	AnalysisID uuid.UUID
	Score      float32
}

type similarityService struct {
	geminiService GeminiService
	qdrantService QdrantService
	chunker       TextChunker
	promptBuilder *PromptBuilder
}

func NewSimilarityService(geminiService GeminiService, qdrantService QdrantService) SimilarityService {
	return &similarityService{
		geminiService: geminiService,
		qdrantService: qdrantService,
		chunker:       NewTextChunker(),
		promptBuilder: NewPromptBuilder(),
	}
}

// IndexAnalysis implements SimilarityService.
func (s *similarityService) IndexAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	text := s.promptBuilder.BuildSimilarityQuery(record.JobDescription)
	chunks := s.chunker.ChunkText(text, similarityChunkSize, similarityChunkOverlap)
	if len(chunks) == 0 {
		return nil
	}

	stored := 0
	for i, chunk := range chunks {
		embedding, err := s.geminiService.GenerateEmbedding(ctx, chunk)
		if err != nil {
			log.Printf("⚠️  Failed to embed chunk %d of analysis %s: %v\n", i+1, record.ID, err)
			continue
		}

		if err := s.qdrantService.UpsertChunk(ctx, record.ID, i, chunk, embedding); err != nil {
			log.Printf("⚠️  Failed to store chunk %d of analysis %s: %v\n", i+1, record.ID, err)
			continue
		}
		stored++
	}

	if stored == 0 {
		return fmt.Errorf("no chunk of analysis %s could be indexed", record.ID)
	}

	log.Printf("📚 Indexed %d/%d chunks for analysis %s\n", stored, len(chunks), record.ID)
	return nil
}

// FindSimilar implements SimilarityService. An analysis matches with the score of its best chunk.
func (s *similarityService) FindSimilar(ctx context.Context, jobDescription string, exclude uuid.UUID, limit int) ([]SimilarMatch, error) {
	if limit <= 0 {
		limit = 5
	}

	query := s.promptBuilder.BuildSimilarityQuery(jobDescription)
	embedding, err := s.geminiService.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	// Several chunks can belong to one analysis, so over-fetch before grouping.
	results, err := s.qdrantService.SearchSimilar(ctx, embedding, limit*4)
	if err != nil {
		return nil, err
	}

	best := make(map[uuid.UUID]float32)
	for _, result := range results {
		if result.AnalysisID == exclude {
			continue
		}
		if score, ok := best[result.AnalysisID]; !ok || result.Score > score {
			best[result.AnalysisID] = result.Score
		}
	}

	matches := make([]SimilarMatch, 0, len(best))
	for id, score := range best {
		matches = append(matches, SimilarMatch{AnalysisID: id, Score: score})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].AnalysisID.String() < matches[j].AnalysisID.String()
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
