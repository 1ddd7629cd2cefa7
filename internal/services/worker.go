package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"alfredoptarigan/cv-match-analyzer/internal/models"
)

var (
	ErrQueueFull     = errors.New("analysis queue is full")
	ErrWorkerStopped = errors.New("worker stopped")
)

// AnalysisRunner executes an analysis that has already been started on a session.
type AnalysisRunner interface {
	RunAnalysis(ctx context.Context, id uuid.UUID) (*models.Session, error)
}

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(sessionID uuid.UUID) error
}

type worker struct {
	runner      AnalysisRunner
	jobQueue    chan uuid.UUID
	concurrency int
	wg          sync.WaitGroup
	stopOnce    sync.Once
	stopChan    chan struct{}
}

func NewWorker(runner AnalysisRunner, concurrency, queueSize int) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &worker{
		runner:      runner,
		jobQueue:    make(chan uuid.UUID, queueSize),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Worker stopped")
	})
}

// EnqueueJob implements Worker. It never blocks the caller.
func (w *worker) EnqueueJob(sessionID uuid.UUID) error {
	select {
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue analysis for session %s\n", sessionID)
		return ErrWorkerStopped
	default:
	}

	select {
	case w.jobQueue <- sessionID:
		log.Printf("📥 Analysis for session %s enqueued\n", sessionID)
		return nil
	default:
		log.Printf("⚠️  Queue full, cannot enqueue analysis for session %s\n", sessionID)
		return ErrQueueFull
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			log.Printf("👷 Worker #%d stopped: %v\n", workerID, ctx.Err())
			return
		case sessionID := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing session %s\n", workerID, sessionID)
			_, err := w.runner.RunAnalysis(ctx, sessionID)
			switch {
			case errors.Is(err, ErrSessionBusy), errors.Is(err, ErrNotAnalyzing):
				log.Printf("⏭️  Worker #%d skipped session %s: %v\n", workerID, sessionID, err)
			case errors.Is(err, context.Canceled):
				log.Printf("🛑 Worker #%d dropped cancelled analysis for session %s\n", workerID, sessionID)
			case err != nil:
				log.Printf("❌ Worker #%d failed to analyze session %s: %v\n", workerID, sessionID, err)
			default:
				log.Printf("✅ Worker #%d completed session %s\n", workerID, sessionID)
			}
		}
	}
}
