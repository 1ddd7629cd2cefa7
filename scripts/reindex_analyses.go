package main

import (
	"context"
	"log"
	"os"
	"strings"

	"alfredoptarigan/cv-match-analyzer/internal/config"
	"alfredoptarigan/cv-match-analyzer/internal/models"
	"alfredoptarigan/cv-match-analyzer/internal/repositories"
	"alfredoptarigan/cv-match-analyzer/internal/services"
)

func main() {
	log.Println("🚀 Starting analysis reindex...")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx := context.Background()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	analysisRepo := repositories.NewAnalysisRepository(db)

	// Initialize services
	geminiService, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:     cfg.Gemini.APIKey,
		Model:      cfg.Gemini.Model,
		EmbedModel: cfg.Gemini.EmbedModel,
		BaseURL:    cfg.Gemini.BaseURL,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	similarityService := services.NewSimilarityService(geminiService, qdrantService)

	successCount := 0
	failCount := 0

	err = analysisRepo.FindAll(50, func(batch []models.AnalysisRecord) error {
		for i := range batch {
			record := &batch[i]
			log.Printf("\n📄 Processing analysis %s (score %d)", record.ID, record.MatchScore)

			// Old chunks would survive if the job description got shorter.
			if err := qdrantService.DeleteAnalysis(ctx, record.ID); err != nil {
				log.Printf("   ⚠️  Failed to clear old chunks: %v", err)
			}

			if err := similarityService.IndexAnalysis(ctx, record); err != nil {
				log.Printf("   ❌ Failed to index: %v", err)
				failCount++
				continue
			}

			successCount++
		}
		return nil
	})
	if err != nil {
		log.Fatalf("❌ Failed to read analyses: %v", err)
	}

	// Summary
	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Reindex Summary:")
	log.Printf("   ✅ Successful: %d analyses", successCount)
	log.Printf("   ❌ Failed: %d analyses", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Println("⚠️  Some analyses failed to index. Please check the logs above.")
		os.Exit(1)
	}

	log.Println("✅ All analyses indexed successfully!")
}
