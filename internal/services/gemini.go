package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateStructured(ctx context.Context, prompt string, schema *Schema) (string, error)
	ModelName() string
}

type GeminiOptions struct {
	APIKey      string
	Model       string
	EmbedModel  string
	BaseURL     string
	Temperature float32
}

type geminiService struct {
	client      *genai.Client
	modelName   string
	embedModel  string
	temperature float32
}

func NewGeminiService(ctx context.Context, opts GeminiOptions) (GeminiService, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("failed to create gemini client: API key is empty")
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	if opts.EmbedModel == "" {
		opts.EmbedModel = "text-embedding-004"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: opts.BaseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:      client,
		modelName:   opts.Model,
		embedModel:  opts.EmbedModel,
		temperature: opts.Temperature,
	}, nil
}

func (g *geminiService) ModelName() string {
	return g.modelName
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateStructured implements GeminiService. Every error it returns is a *ProviderError.
func (g *geminiService) GenerateStructured(ctx context.Context, prompt string, schema *Schema) (string, error) {
	temperature := g.temperature
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGenaiSchema(schema),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		log.Printf("❌ Gemini API error: %v\n", err)
		return "", classifyGeminiError(err)
	}

	if resp == nil {
		return "", newProviderError(ProviderErrorNetwork, errors.New("no response generated (nil response)"))
	}

	log.Printf("📊 Gemini response received\n")

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		reason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
			reason = string(resp.Candidates[0].FinishReason)
		}
		return "", newProviderError(ProviderErrorNetwork, fmt.Errorf("no text content in response (finish reason: %s)", reason))
	}

	return text, nil
}

func classifyGeminiError(err error) *ProviderError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr.Code, apiErr.Message, err)
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyAPIError(apiErrPtr.Code, apiErrPtr.Message, err)
	}

	return newProviderError(ProviderErrorNetwork, err)
}

func classifyAPIError(code int, message string, err error) *ProviderError {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return newProviderError(ProviderErrorUnauthorized, err)
	case code == http.StatusBadRequest && strings.Contains(strings.ToLower(message), "api key"):
		// Gemini answers 400 INVALID_ARGUMENT for a malformed key.
		return newProviderError(ProviderErrorUnauthorized, err)
	case code == http.StatusBadRequest:
		return newProviderError(ProviderErrorSchema, err)
	default:
		return newProviderError(ProviderErrorNetwork, err)
	}
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:             toGenaiType(s.Type),
		Description:      s.Description,
		Required:         s.Required,
		PropertyOrdering: s.PropertyOrder,
		Minimum:          s.Minimum,
		Maximum:          s.Maximum,
		Items:            toGenaiSchema(s.Items),
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, property := range s.Properties {
			out.Properties[name] = toGenaiSchema(property)
		}
	}

	return out
}

func toGenaiType(t SchemaType) genai.Type {
	switch t {
	case TypeObject:
		return genai.TypeObject
	case TypeArray:
		return genai.TypeArray
	case TypeInteger:
		return genai.TypeInteger
	default:
		return genai.TypeString
	}
}
