package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"alfredoptarigan/cv-match-analyzer/internal/config"
	"alfredoptarigan/cv-match-analyzer/internal/services"
)

type analyzeOptions struct {
	cvPath string
	cvType string
	jdPath string
	asJSON bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze --cv <file> --jd <file>",
		Short: "Score a CV against a job description",
		Long: `Score a CV against a job description and print the match report.

The CV can be a PDF, a Word document or plain text. Pass "-" to read plain
text from stdin.

Example:
  analyze --cv resume.pdf --jd job.txt
  cat resume.txt | analyze --cv - --jd job.txt --json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.cvPath, "cv", "", "CV file (PDF, DOCX or plain text); '-' reads plain text from stdin")
	cmd.Flags().StringVar(&opts.cvType, "cv-type", "", "media type of the CV file; guessed from the extension when empty")
	cmd.Flags().StringVar(&opts.jdPath, "jd", "", "file holding the job description")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the raw analysis as JSON")
	_ = cmd.MarkFlagRequired("cv")
	_ = cmd.MarkFlagRequired("jd")

	return cmd
}

func runAnalyze(ctx context.Context, stdin io.Reader, stdout io.Writer, opts *analyzeOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	jobDescription, err := os.ReadFile(opts.jdPath)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	geminiService, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		EmbedModel:  cfg.Gemini.EmbedModel,
		BaseURL:     cfg.Gemini.BaseURL,
		Temperature: cfg.Analysis.Temperature,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Gemini AI: %w", err)
	}

	orchestrator := services.NewOrchestrator(services.OrchestratorOptions{
		Extractor: services.NewDocumentExtractor(),
		Analyzer:  services.NewAnalyzerService(geminiService, cfg.Worker.RetryMaxAttempts),
		Timeout:   cfg.Analysis.Timeout,
	})

	session := orchestrator.CreateSession("", string(jobDescription))

	if err := loadCV(ctx, orchestrator, session.ID, stdin, opts.cvPath, opts.cvType); err != nil {
		return err
	}

	session, err = orchestrator.Analyze(ctx, session.ID)
	if err != nil {
		if session != nil && session.Error != "" {
			log.Printf("❌ %s", session.Error)
		}
		return err
	}

	if opts.asJSON {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(session.Result); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		return nil
	}

	if err := services.RenderReport(stdout, session.Result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// loadCV fills the session CV from stdin, a plain text file or an uploaded document.
func loadCV(ctx context.Context, orchestrator services.Orchestrator, sessionID uuid.UUID, stdin io.Reader, path, mediaType string) error {
	if path == "-" {
		text, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("failed to read CV from stdin: %w", err)
		}
		_, err = orchestrator.SetCVText(sessionID, string(text))
		return err
	}

	if mediaType == "" {
		mediaType = services.MediaTypeFromFilename(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open CV: %w", err)
	}
	defer file.Close()

	if services.NormalizeMediaType(mediaType) == "text/plain" {
		text, err := io.ReadAll(file)
		if err != nil {
			return fmt.Errorf("failed to read CV: %w", err)
		}
		_, err = orchestrator.SetCVText(sessionID, string(text))
		return err
	}

	_, err = orchestrator.UploadCV(ctx, sessionID, mediaType, file)
	return err
}
