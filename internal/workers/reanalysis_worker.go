package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"issue-analyzer/internal/logger"
	"issue-analyzer/internal/models"
	"issue-analyzer/internal/services"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// ErrRunInProgress is returned by RunOnce while another run is still active.
var ErrRunInProgress = errors.New("reanalysis already in progress")

// Analyzer is the part of the analysis service the worker drives.
type Analyzer interface {
	SyncRepository(ctx context.Context, repo models.Repository) (int, error)
	RunPipeline(ctx context.Context, repoID string) (*services.PipelineResult, error)
}

// RepositoryLister enumerates the repositories to re-analyze.
type RepositoryLister interface {
	ListRepositories(ctx context.Context) ([]*models.Repository, error)
}

// RunSummary describes one pass over all repositories.
type RunSummary struct {
	Repositories int
	Succeeded    int
	Failed       map[string]error
}

// ReanalysisWorker re-runs the analysis pipeline over every stored repository
// on a cron schedule.
type ReanalysisWorker struct {
	*BaseWorker
	analyzer Analyzer
	repos    RepositoryLister
	logger   *logger.Logger

	cron   *cron.Cron
	runCtx context.Context
	cancel context.CancelFunc
	runMu  sync.Mutex
}

// NewReanalysisWorker creates a new reanalysis worker
func NewReanalysisWorker(config WorkerConfig, analyzer Analyzer, repos RepositoryLister, log *logger.Logger) *ReanalysisWorker {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultWorkerConfig(config.WorkerName).ShutdownTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ReanalysisWorker{
		BaseWorker: NewBaseWorker(config),
		analyzer:   analyzer,
		repos:      repos,
		logger:     log.With("worker", config.WorkerName),
	}
}

// Start registers the schedule and returns immediately.
func (w *ReanalysisWorker) Start(ctx context.Context) error {
	if w.IsRunning() {
		return NewWorkerError(w.Name(), "start", nil, "worker "+w.Name()+" is already running")
	}

	c := cron.New()
	w.runCtx, w.cancel = context.WithCancel(context.WithoutCancel(ctx))
	if _, err := c.AddFunc(w.config.Schedule, w.scheduledRun); err != nil {
		w.cancel()
		return NewWorkerError(w.Name(), "start", err, "")
	}

	w.cron = c
	w.resetStats()
	w.setRunning(true)
	c.Start()

	w.logger.Info("reanalysis scheduled", "schedule", w.config.Schedule)
	return nil
}

// Stop halts the schedule and waits for an in-flight run, up to the earlier
// of ctx and the shutdown timeout. Runs still going after that are cancelled.
func (w *ReanalysisWorker) Stop(ctx context.Context) error {
	if !w.IsRunning() {
		return nil
	}
	defer w.setRunning(false)
	defer w.cancel()

	stopCtx, cancel := context.WithTimeout(ctx, w.config.ShutdownTimeout)
	defer cancel()

	done := w.cron.Stop()
	select {
	case <-done.Done():
		w.logger.Info("reanalysis worker stopped")
		return nil
	case <-stopCtx.Done():
		return NewWorkerError(w.Name(), "stop", stopCtx.Err(), "")
	}
}

func (w *ReanalysisWorker) scheduledRun() {
	summary, err := w.RunOnce(w.runCtx)
	if err != nil {
		w.logger.Warn("scheduled reanalysis skipped", "error", err)
		return
	}
	w.logger.Info("scheduled reanalysis finished",
		"repositories", summary.Repositories,
		"succeeded", summary.Succeeded,
		"failed", len(summary.Failed))
}

// RunOnce processes every stored repository now. A failing repository does
// not stop the others; its error is reported in the summary.
func (w *ReanalysisWorker) RunOnce(ctx context.Context) (*RunSummary, error) {
	if !w.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer w.runMu.Unlock()

	repos, err := w.repos.ListRepositories(ctx)
	if err != nil {
		return nil, NewWorkerError(w.Name(), "list_repositories", err, "")
	}

	process := w.processRepository
	if w.config.EnableRecovery {
		process = RecoverableProcessor(process)
	}

	summary := &RunSummary{Repositories: len(repos), Failed: make(map[string]error)}
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(w.config.Concurrency)
	for _, repo := range repos {
		g.Go(func() error {
			start := time.Now()
			err := process(ctx, *repo)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				w.recordRunFailure(start)
				summary.Failed[repo.ID] = err
				w.logger.Error("reanalysis failed", "repository_id", repo.ID, "error", err)
				return nil
			}
			w.recordRunSuccess(start)
			summary.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	return summary, nil
}

func (w *ReanalysisWorker) processRepository(ctx context.Context, repo models.Repository) error {
	if w.config.SyncBeforeAnalysis {
		if _, err := w.analyzer.SyncRepository(ctx, repo); err != nil {
			return err
		}
	}
	_, err := w.analyzer.RunPipeline(ctx, repo.ID)
	return err
}
