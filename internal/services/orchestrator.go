package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/cv-match-analyzer/internal/models"
	"alfredoptarigan/cv-match-analyzer/internal/repositories"
)

const (
	MessageValidation   = "Please provide both your CV content and the job description."
	MessageUnauthorized = "Failed to analyze the CV. Please check your API key and try again."
	MessageNetwork      = "Failed to analyze the CV. The analysis service could not be reached, please try again."
	MessageInvalid      = "Failed to analyze the CV. The analysis service returned an invalid response, please try again."
	MessageTimeout      = "Failed to analyze the CV. The analysis took too long, please try again."
	MessageCancelled    = "Analysis was cancelled."
)

// Orchestrator owns every session and is the only place their state changes.
// A session accepts one upload or analysis at a time; a second trigger is rejected
// with ErrSessionBusy and leaves the state untouched.
type Orchestrator interface {
	CreateSession(cvText, jobDescription string) *models.Session
	GetSession(id uuid.UUID) (*models.Session, error)
	DeleteSession(id uuid.UUID) error
	SetCVText(id uuid.UUID, text string) (*models.Session, error)
	SetJobDescription(id uuid.UUID, text string) (*models.Session, error)
	UploadCV(ctx context.Context, id uuid.UUID, mediaType string, r io.Reader) (*models.Session, error)
	BeginAnalysis(id uuid.UUID) (*models.Session, error)
	AbortAnalysis(id uuid.UUID) (*models.Session, error)
	RunAnalysis(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Analyze(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Cancel(id uuid.UUID) (*models.Session, error)
}

// AnalysisIndexer receives every successful analysis after it has been stored.
type AnalysisIndexer interface {
	IndexAnalysis(ctx context.Context, record *models.AnalysisRecord) error
}

type analysisRun struct {
	cvText         string
	jobDescription string
	ctx            context.Context
	cancel         context.CancelFunc
	// started is set once a RunAnalysis call owns the provider call.
	started        bool
	// previous is the outcome shown before BeginAnalysis cleared it.
	previous       outcome
}

type outcome struct {
	result     *models.AnalysisResult
	analysisID *uuid.UUID
	message    string
	kind       models.ErrorKind
}

type sessionEntry struct {
	session models.Session
	run     *analysisRun
}

type orchestrator struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry

	extractor    DocumentExtractor
	analyzer     AnalyzerService
	analysisRepo repositories.AnalysisRepository
	indexer      AnalysisIndexer
	timeout      time.Duration
	now          func() time.Time
}

type OrchestratorOptions struct {
	Extractor    DocumentExtractor
	Analyzer     AnalyzerService
	AnalysisRepo repositories.AnalysisRepository
	// Indexer is optional.
	Indexer AnalysisIndexer
	Timeout time.Duration
}

func NewOrchestrator(opts OrchestratorOptions) Orchestrator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &orchestrator{
		sessions:     make(map[uuid.UUID]*sessionEntry),
		extractor:    opts.Extractor,
		analyzer:     opts.Analyzer,
		analysisRepo: opts.AnalysisRepo,
		indexer:      opts.Indexer,
		timeout:      timeout,
		now:          time.Now,
	}
}

func (o *orchestrator) CreateSession(cvText, jobDescription string) *models.Session {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	entry := &sessionEntry{session: models.Session{
		ID:             uuid.New(),
		CVText:         cvText,
		JobDescription: jobDescription,
		CreatedAt:      now,
		UpdatedAt:      now,
	}}
	o.sessions[entry.session.ID] = entry

	return snapshot(entry)
}

func (o *orchestrator) GetSession(id uuid.UUID) (*models.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, err := o.entry(id)
	if err != nil {
		return nil, err
	}
	return snapshot(entry), nil
}

func (o *orchestrator) DeleteSession(id uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, err := o.entry(id)
	if err != nil {
		return err
	}
	if entry.run != nil {
		entry.run.cancel()
	}
	delete(o.sessions, id)
	return nil
}

func (o *orchestrator) SetCVText(id uuid.UUID, text string) (*models.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, err := o.entry(id)
	if err != nil {
		return nil, err
	}
	// The upload in flight would overwrite the text.
	if entry.session.Parsing {
		return snapshot(entry), ErrSessionBusy
	}
	entry.session.CVText = text
	o.touch(entry)
	return snapshot(entry), nil
}

func (o *orchestrator) SetJobDescription(id uuid.UUID, text string) (*models.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, err := o.entry(id)
	if err != nil {
		return nil, err
	}
	entry.session.JobDescription = text
	o.touch(entry)
	return snapshot(entry), nil
}

// UploadCV implements Orchestrator. On failure the previous CV text is kept. A
// context that ends while the file is read discards the extracted text.
func (o *orchestrator) UploadCV(ctx context.Context, id uuid.UUID, mediaType string, r io.Reader) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	entry, err := o.entry(id)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	if entry.session.Parsing || entry.session.Loading {
		current := snapshot(entry)
		o.mu.Unlock()
		return current, ErrSessionBusy
	}
	entry.session.Parsing = true
	entry.session.Error = ""
	entry.session.ErrorKind = ""
	o.touch(entry)
	o.mu.Unlock()

	log.Printf("📄 Extracting CV text for session %s (%s)\n", id, mediaType)
	text, extractErr := o.extractor.Extract(mediaType, r)

	o.mu.Lock()
	defer o.mu.Unlock()

	// The session may have been deleted while the file was being read.
	entry, err = o.entry(id)
	if err != nil {
		return nil, err
	}
	entry.session.Parsing = false
	o.touch(entry)

	if extractErr != nil {
		log.Printf("❌ File parsing error for session %s: %v\n", id, extractErr)
		entry.session.Error, entry.session.ErrorKind = extractionFailure(extractErr)
		entry.session.Result = nil
		entry.session.AnalysisID = nil
		return snapshot(entry), extractErr
	}
	if err := ctx.Err(); err != nil {
		log.Printf("⚠️  Upload for session %s abandoned: %v\n", id, err)
		return snapshot(entry), err
	}

	entry.session.CVText = text
	log.Printf("✅ Extracted %d characters for session %s\n", len(text), id)
	return snapshot(entry), nil
}

// BeginAnalysis implements Orchestrator.
func (o *orchestrator) BeginAnalysis(id uuid.UUID) (*models.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, err := o.entry(id)
	if err != nil {
		return nil, err
	}
	if entry.session.Parsing || entry.session.Loading {
		return snapshot(entry), ErrSessionBusy
	}

	if missing := missingInputs(&entry.session); len(missing) > 0 {
		entry.session.Error = MessageValidation
		entry.session.ErrorKind = models.ErrorKindValidation
		entry.session.Result = nil
		entry.session.AnalysisID = nil
		o.touch(entry)
		return snapshot(entry), &ValidationError{Fields: missing, Message: MessageValidation}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	entry.run = &analysisRun{
		cvText:         entry.session.CVText,
		jobDescription: entry.session.JobDescription,
		ctx:            runCtx,
		cancel:         cancel,
		previous: outcome{
			result:     entry.session.Result,
			analysisID: entry.session.AnalysisID,
			message:    entry.session.Error,
			kind:       entry.session.ErrorKind,
		},
	}
	entry.session.Loading = true
	entry.session.Error = ""
	entry.session.ErrorKind = ""
	entry.session.Result = nil
	entry.session.AnalysisID = nil
	o.touch(entry)

	return snapshot(entry), nil
}

// AbortAnalysis implements Orchestrator. It withdraws an analysis that was begun but
// never picked up and restores what the session showed before.
func (o *orchestrator) AbortAnalysis(id uuid.UUID) (*models.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, err := o.entry(id)
	if err != nil {
		return nil, err
	}
	run := entry.run
	if run == nil {
		return snapshot(entry), ErrNotAnalyzing
	}
	if run.started {
		return snapshot(entry), ErrSessionBusy
	}

	run.cancel()
	entry.run = nil
	entry.session.Loading = false
	entry.session.Result = run.previous.result
	entry.session.AnalysisID = run.previous.analysisID
	entry.session.Error = run.previous.message
	entry.session.ErrorKind = run.previous.kind
	o.touch(entry)

	return snapshot(entry), nil
}

// RunAnalysis implements Orchestrator. It performs the provider call of the analysis
// started by BeginAnalysis and records its outcome.
func (o *orchestrator) RunAnalysis(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	o.mu.Lock()
	entry, err := o.entry(id)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	run := entry.run
	if run == nil {
		current := snapshot(entry)
		o.mu.Unlock()
		return current, ErrNotAnalyzing
	}
	if run.started {
		current := snapshot(entry)
		o.mu.Unlock()
		return current, ErrSessionBusy
	}
	run.started = true
	o.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	stop := context.AfterFunc(run.ctx, cancel)
	defer stop()

	log.Printf("🤖 Analyzing session %s\n", id)
	result, analyzeErr := o.analyzer.Analyze(callCtx, run.cvText, run.jobDescription)

	o.mu.Lock()
	entry, err = o.entry(id)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	if entry.run != run {
		// Cancelled and possibly restarted; this answer is stale.
		current := snapshot(entry)
		o.mu.Unlock()
		return current, context.Canceled
	}
	entry.run = nil
	run.cancel()
	entry.session.Loading = false
	o.touch(entry)

	if analyzeErr != nil {
		kind, message := analysisFailure(analyzeErr, callCtx)
		log.Printf("❌ Analysis failed for session %s (%s): %v\n", id, kind, analyzeErr)
		entry.session.Result = nil
		entry.session.Error = message
		entry.session.ErrorKind = kind
		current := snapshot(entry)
		o.mu.Unlock()
		return current, analyzeErr
	}

	entry.session.Result = result
	entry.session.Error = ""
	entry.session.ErrorKind = ""
	o.mu.Unlock()

	log.Printf("✅ Analysis completed for session %s (score %d)\n", id, result.MatchScore)

	if analysisID := o.store(ctx, id, run, result); analysisID != nil {
		o.mu.Lock()
		if entry, err := o.entry(id); err == nil && entry.session.Result == result {
			entry.session.AnalysisID = analysisID
		}
		o.mu.Unlock()
	}

	return o.GetSession(id)
}

// Analyze implements Orchestrator.
func (o *orchestrator) Analyze(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	if session, err := o.BeginAnalysis(id); err != nil {
		return session, err
	}
	return o.RunAnalysis(ctx, id)
}

// Cancel implements Orchestrator.
func (o *orchestrator) Cancel(id uuid.UUID) (*models.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, err := o.entry(id)
	if err != nil {
		return nil, err
	}
	if entry.run == nil {
		return snapshot(entry), ErrNotAnalyzing
	}

	entry.run.cancel()
	entry.run = nil
	entry.session.Loading = false
	entry.session.Result = nil
	entry.session.Error = MessageCancelled
	entry.session.ErrorKind = models.ErrorKindCancelled
	o.touch(entry)

	log.Printf("🛑 Analysis cancelled for session %s\n", id)
	return snapshot(entry), nil
}

// store keeps a successful analysis in history and the similarity index. Neither
// failure affects the session outcome.
func (o *orchestrator) store(ctx context.Context, sessionID uuid.UUID, run *analysisRun, result *models.AnalysisResult) *uuid.UUID {
	if o.analysisRepo == nil {
		return nil
	}

	record := &models.AnalysisRecord{
		ID:             uuid.New(),
		SessionID:      sessionID,
		CVText:         run.cvText,
		JobDescription: run.jobDescription,
		MatchScore:     result.MatchScore,
		Summary:        result.Summary,
		Result:         *result,
		Model:          o.analyzer.ModelName(),
		CreatedAt:      o.now(),
	}

	if err := o.analysisRepo.Create(record); err != nil {
		log.Printf("⚠️  Failed to save analysis for session %s: %v\n", sessionID, err)
		return nil
	}

	if o.indexer != nil {
		if err := o.indexer.IndexAnalysis(context.WithoutCancel(ctx), record); err != nil {
			log.Printf("⚠️  Failed to index analysis %s: %v\n", record.ID, err)
		}
	}

	return &record.ID
}

func (o *orchestrator) entry(id uuid.UUID) (*sessionEntry, error) {
	entry, ok := o.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return entry, nil
}

func (o *orchestrator) touch(entry *sessionEntry) {
	entry.session.UpdatedAt = o.now()
}

func snapshot(entry *sessionEntry) *models.Session {
	s := entry.session
	if s.AnalysisID != nil {
		id := *s.AnalysisID
		s.AnalysisID = &id
	}
	return &s
}

func missingInputs(s *models.Session) []string {
	var missing []string
	if strings.TrimSpace(s.CVText) == "" {
		missing = append(missing, "cv_text")
	}
	if strings.TrimSpace(s.JobDescription) == "" {
		missing = append(missing, "job_description")
	}
	return missing
}

func extractionFailure(err error) (string, models.ErrorKind) {
	var unsupported *UnsupportedTypeError
	if errors.As(err, &unsupported) {
		return unsupported.Error(), models.ErrorKindUnsupportedType
	}
	var readErr *ReadError
	if errors.As(err, &readErr) {
		return readErr.Error(), models.ErrorKindRead
	}
	return "Failed to read the file.", models.ErrorKindRead
}

func analysisFailure(err error, callCtx context.Context) (models.ErrorKind, string) {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return models.ErrorKindTimeout, MessageTimeout
	}

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		return models.ErrorKindNetwork, MessageNetwork
	}

	switch providerErr.Kind {
	case ProviderErrorUnauthorized:
		return models.ErrorKindUnauthorized, MessageUnauthorized
	case ProviderErrorParse:
		return models.ErrorKindParse, MessageInvalid
	case ProviderErrorSchema:
		return models.ErrorKindSchema, MessageInvalid
	default:
		return models.ErrorKindNetwork, MessageNetwork
	}
}
