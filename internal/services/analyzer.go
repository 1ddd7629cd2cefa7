package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"alfredoptarigan/cv-match-analyzer/internal/models"
)

// AnalyzerService runs one CV / job description match analysis against the provider.
type AnalyzerService interface {
	Analyze(ctx context.Context, cvText, jobDescription string) (*models.AnalysisResult, error)
	ModelName() string
}

type analyzerService struct {
	geminiService GeminiService
	promptBuilder *PromptBuilder
	maxAttempts   int
}

func NewAnalyzerService(geminiService GeminiService, maxAttempts int) AnalyzerService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &analyzerService{
		geminiService: geminiService,
		promptBuilder: NewPromptBuilder(),
		maxAttempts:   maxAttempts,
	}
}

func (a *analyzerService) ModelName() string {
	return a.geminiService.ModelName()
}

// Analyze implements AnalyzerService. Failures are always *ProviderError; only
// network failures are attempted again.
func (a *analyzerService) Analyze(ctx context.Context, cvText, jobDescription string) (*models.AnalysisResult, error) {
	prompt, schema := a.promptBuilder.BuildAnalysisRequest(cvText, jobDescription)

	log.Printf("📝 Analysis prompt length: %d characters", len(prompt))

	var lastErr *ProviderError
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		result, err := a.analyzeOnce(ctx, prompt, schema)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !err.Retryable() || ctx.Err() != nil {
			break
		}

		if attempt < a.maxAttempts {
			log.Printf("⚠️ Attempt %d failed: %v. Retrying...\n", attempt, err)
		}
	}

	return nil, lastErr
}

func (a *analyzerService) analyzeOnce(ctx context.Context, prompt string, schema *Schema) (*models.AnalysisResult, *ProviderError) {
	response, err := a.geminiService.GenerateStructured(ctx, prompt, schema)
	if err != nil {
		var providerErr *ProviderError
		if errors.As(err, &providerErr) {
			return nil, providerErr
		}
		return nil, newProviderError(ProviderErrorNetwork, err)
	}

	log.Printf("✅ Analysis response received: %d characters", len(response))

	return ParseAnalysisResponse(response, schema)
}

// ParseAnalysisResponse strips fences, validates the text against schema and decodes it.
// A result that fails validation is never returned partially filled.
func ParseAnalysisResponse(response string, schema *Schema) (*models.AnalysisResult, *ProviderError) {
	cleaned := StripCodeFence(response)

	if err := schema.Validate([]byte(cleaned)); err != nil {
		var violations SchemaViolations
		if errors.As(err, &violations) {
			return nil, newProviderError(ProviderErrorSchema, err)
		}
		return nil, newProviderError(ProviderErrorParse, fmt.Errorf("%w (raw: %s)", err, truncate(cleaned, 500)))
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, newProviderError(ProviderErrorParse, fmt.Errorf("failed to unmarshal JSON: %w", err))
	}

	return &result, nil
}
