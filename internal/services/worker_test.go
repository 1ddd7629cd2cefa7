package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-match-analyzer/internal/models"
)

type recordingRunner struct {
	mu  sync.Mutex
	ids []uuid.UUID
	ran chan uuid.UUID
}

func (r *recordingRunner) RunAnalysis(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
	r.ran <- id
	return &models.Session{ID: id}, nil
}

func TestWorker_RunsEnqueuedJobs(t *testing.T) {
	runner := &recordingRunner{ran: make(chan uuid.UUID, 4)}
	w := NewWorker(runner, 2, 10)
	w.Start(context.Background())
	defer w.Stop()

	first, second := uuid.New(), uuid.New()
	require.NoError(t, w.EnqueueJob(first))
	require.NoError(t, w.EnqueueJob(second))

	got := map[uuid.UUID]bool{}
	for range 2 {
		select {
		case id := <-runner.ran:
			got[id] = true
		case <-time.After(2 * time.Second):
			t.Fatal("job was not processed")
		}
	}
	assert.True(t, got[first])
	assert.True(t, got[second])
}

func TestWorker_QueueFull(t *testing.T) {
	w := NewWorker(&recordingRunner{ran: make(chan uuid.UUID, 1)}, 1, 1)

	require.NoError(t, w.EnqueueJob(uuid.New()))
	assert.ErrorIs(t, w.EnqueueJob(uuid.New()), ErrQueueFull)
}

func TestWorker_RejectsAfterStop(t *testing.T) {
	w := NewWorker(&recordingRunner{ran: make(chan uuid.UUID, 1)}, 1, 1)
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	assert.ErrorIs(t, w.EnqueueJob(uuid.New()), ErrWorkerStopped)
}

func TestWorker_DrivesOrchestrator(t *testing.T) {
	f := newOrchestratorFixture(t)
	w := NewWorker(f.orch, 1, 10)
	w.Start(context.Background())
	defer w.Stop()

	session := f.orch.CreateSession("cv", "jd")
	session, err := f.orch.BeginAnalysis(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateAnalyzing, session.State())

	require.NoError(t, w.EnqueueJob(session.ID))

	assert.Eventually(t, func() bool {
		current, err := f.orch.GetSession(session.ID)
		return err == nil && current.State() == models.StateSucceeded
	}, 2*time.Second, 10*time.Millisecond)
}

// countingAnalyzer tracks how many provider calls are in flight at once.
type countingAnalyzer struct {
	mu          sync.Mutex
	calls       int
	inFlight    int
	maxInFlight int
	release     chan struct{}
}

func (a *countingAnalyzer) Analyze(ctx context.Context, cvText, jobDescription string) (*models.AnalysisResult, error) {
	a.mu.Lock()
	a.calls++
	a.inFlight++
	a.maxInFlight = max(a.maxInFlight, a.inFlight)
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.inFlight--
		a.mu.Unlock()
	}()

	select {
	case <-a.release:
		return sampleResult(80), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *countingAnalyzer) ModelName() string { return "counting-model" }

type observedRunner struct {
	runner AnalysisRunner
	errs   chan error
}

func (r *observedRunner) RunAnalysis(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session, err := r.runner.RunAnalysis(ctx, id)
	r.errs <- err
	return session, err
}

func TestWorker_RequeuedSessionRunsOnce(t *testing.T) {
	analyzer := &countingAnalyzer{release: make(chan struct{})}
	f := newOrchestratorFixture(t, func(o *OrchestratorOptions) {
		o.Analyzer = analyzer
	})
	runner := &observedRunner{runner: f.orch, errs: make(chan error, 2)}
	w := NewWorker(runner, 2, 10)

	session := f.orch.CreateSession("cv", "jd")
	_, err := f.orch.BeginAnalysis(session.ID)
	require.NoError(t, err)
	require.NoError(t, w.EnqueueJob(session.ID))
	_, err = f.orch.Cancel(session.ID)
	require.NoError(t, err)
	_, err = f.orch.BeginAnalysis(session.ID)
	require.NoError(t, err)
	require.NoError(t, w.EnqueueJob(session.ID))

	w.Start(context.Background())
	defer w.Stop()

	select {
	case err := <-runner.errs:
		assert.ErrorIs(t, err, ErrSessionBusy)
	case <-time.After(2 * time.Second):
		t.Fatal("second queue entry was not processed")
	}

	close(analyzer.release)
	select {
	case err := <-runner.errs:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("analysis did not finish")
	}

	analyzer.mu.Lock()
	assert.Equal(t, 1, analyzer.calls)
	assert.Equal(t, 1, analyzer.maxInFlight)
	analyzer.mu.Unlock()

	current, err := f.orch.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateSucceeded, current.State())
	assert.Equal(t, 80, current.Result.MatchScore)
}
