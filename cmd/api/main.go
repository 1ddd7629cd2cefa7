package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/cv-match-analyzer/internal/config"
	"alfredoptarigan/cv-match-analyzer/internal/handlers"
	"alfredoptarigan/cv-match-analyzer/internal/repositories"
	"alfredoptarigan/cv-match-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ %v", err)
	}
	log.Println("✅ Config loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	docRepo := repositories.NewDocumentRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)
	log.Println("✅ Repositories initialized successfully")

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		EmbedModel:  cfg.Gemini.EmbedModel,
		BaseURL:     cfg.Gemini.BaseURL,
		Temperature: cfg.Analysis.Temperature,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize Qdrant
	var similarityService services.SimilarityService
	var indexer services.AnalysisIndexer
	if cfg.Qdrant.Enabled {
		qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
		}
		if err := qdrantService.InitCollection(ctx); err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		similarityService = services.NewSimilarityService(geminiService, qdrantService)
		indexer = similarityService
		log.Println("✅ Qdrant initialized successfully")
	} else {
		log.Println("⚠️  Qdrant disabled, similar analyses are not available")
	}

	orchestrator := services.NewOrchestrator(services.OrchestratorOptions{
		Extractor:    services.NewDocumentExtractor(),
		Analyzer:     services.NewAnalyzerService(geminiService, cfg.Worker.RetryMaxAttempts),
		AnalysisRepo: analysisRepo,
		Indexer:      indexer,
		Timeout:      cfg.Analysis.Timeout,
	})
	log.Println("✅ Orchestrator initialized")

	worker := services.NewWorker(orchestrator, cfg.Worker.Concurrency, 100)
	worker.Start(ctx)

	sessionHandler := handlers.NewSessionHandler(orchestrator, worker)
	uploadHandler := handlers.NewUploadHandler(orchestrator, docRepo, storageService, cfg.Storage.MaxFileSize)
	analysisHandler := handlers.NewAnalysisHandler(analysisRepo, similarityService)
	log.Println("✅ Handlers initialized")

	app := fiber.New(fiber.Config{
		AppName:      "CV Match Analyzer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		// Multipart overhead on top of the file itself.
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.RegisterRoutes(app, sessionHandler, uploadHandler, analysisHandler)

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Printf("❌ Failed to start server: %v", err)
		os.Exit(1)
	}
}
