package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"

	"alfredoptarigan/cv-match-analyzer/internal/models"
	"alfredoptarigan/cv-match-analyzer/internal/repositories"
)

type mockGemini struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
	prompts   []string

	embedding  []float32
	embedErr   error
	embedCalls int
}

func (m *mockGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.embedding != nil {
		return m.embedding, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockGemini) GenerateStructured(ctx context.Context, prompt string, schema *Schema) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.calls
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	if len(m.responses) > 0 {
		return m.responses[len(m.responses)-1], nil
	}
	return "", errors.New("no response configured")
}

func (m *mockGemini) ModelName() string { return "mock-model" }

func (m *mockGemini) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// stubAnalyzer answers with a fixed result. When block is set it waits for the
// channel to close or the context to end.
type stubAnalyzer struct {
	mu      sync.Mutex
	calls   int
	inputs  [][2]string
	result  *models.AnalysisResult
	err     error
	block   chan struct{}
	started chan struct{}
}

func (s *stubAnalyzer) Analyze(ctx context.Context, cvText, jobDescription string) (*models.AnalysisResult, error) {
	s.mu.Lock()
	s.calls++
	s.inputs = append(s.inputs, [2]string{cvText, jobDescription})
	block, started, result, err := s.block, s.started, s.result, s.err
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, newProviderError(ProviderErrorNetwork, ctx.Err())
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *stubAnalyzer) ModelName() string { return "stub-model" }

func (s *stubAnalyzer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubAnalyzer) set(result *models.AnalysisResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result, s.err = result, err
}

type mockAnalysisRepo struct {
	mu        sync.Mutex
	records   []models.AnalysisRecord
	createErr error
}

var _ repositories.AnalysisRepository = (*mockAnalysisRepo)(nil)

func (m *mockAnalysisRepo) Create(record *models.AnalysisRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.records = append(m.records, *record)
	return nil
}

func (m *mockAnalysisRepo) FindByID(id uuid.UUID) (*models.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			record := m.records[i]
			return &record, nil
		}
	}
	return nil, repositories.ErrAnalysisNotFound
}

func (m *mockAnalysisRepo) FindByIDs(ids []uuid.UUID) ([]models.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AnalysisRecord
	for _, id := range ids {
		for _, record := range m.records {
			if record.ID == id {
				out = append(out, record)
			}
		}
	}
	return out, nil
}

func (m *mockAnalysisRepo) FindRecent(limit int) ([]models.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.AnalysisRecord(nil), m.records...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockAnalysisRepo) FindAll(batchSize int, fn func(batch []models.AnalysisRecord) error) error {
	m.mu.Lock()
	records := append([]models.AnalysisRecord(nil), m.records...)
	m.mu.Unlock()
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		if err := fn(records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockAnalysisRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type mockIndexer struct {
	mu      sync.Mutex
	indexed []uuid.UUID
	err     error
}

func (m *mockIndexer) IndexAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexed = append(m.indexed, record.ID)
	return m.err
}

type mockQdrant struct {
	mu      sync.Mutex
	upserts []SearchResult
	results []SearchResult
	limits  []int
	deleted []uuid.UUID
}

func (m *mockQdrant) InitCollection(ctx context.Context) error { return nil }

func (m *mockQdrant) UpsertChunk(ctx context.Context, analysisID uuid.UUID, chunkIndex int, text string, embedding []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts = append(m.upserts, SearchResult{AnalysisID: analysisID, ChunkIndex: chunkIndex, Text: text})
	return nil
}

func (m *mockQdrant) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limits = append(m.limits, limit)
	return m.results, nil
}

func (m *mockQdrant) DeleteAnalysis(ctx context.Context, analysisID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, analysisID)
	return nil
}

// extractorFunc adapts a function to DocumentExtractor.
type extractorFunc func(mediaType string, r io.Reader) (string, error)

func (f extractorFunc) Extract(mediaType string, r io.Reader) (string, error) {
	return f(mediaType, r)
}

// trackingReader records whether anything tried to read it.
type trackingReader struct {
	mu   sync.Mutex
	read bool
}

func (r *trackingReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.read = true
	return 0, io.EOF
}

func (r *trackingReader) wasRead() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read
}
