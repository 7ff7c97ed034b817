package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"issue-analyzer/internal/models"
)

// Worker defines the interface for background workers
type Worker interface {
	// Start begins scheduled processing
	Start(ctx context.Context) error

	// Stop gracefully shuts down the worker
	Stop(ctx context.Context) error

	// Name returns the worker's name
	Name() string

	// IsRunning returns whether the worker is currently running
	IsRunning() bool

	// Stats returns worker statistics
	Stats() WorkerStats
}

// WorkerStats represents statistics about a worker. One processed run is one
// repository passed through the pipeline.
type WorkerStats struct {
	WorkerName         string        `json:"worker_name"`
	RunsProcessed      int64         `json:"runs_processed"`
	RunsSucceeded      int64         `json:"runs_succeeded"`
	RunsFailed         int64         `json:"runs_failed"`
	AverageProcessTime time.Duration `json:"average_process_time"`
	LastRunTime        time.Time     `json:"last_run_time,omitempty"`
	Uptime             time.Duration `json:"uptime"`
	IsRunning          bool          `json:"is_running"`
}

// WorkerConfig holds configuration for workers
type WorkerConfig struct {
	// WorkerName is a unique identifier for this worker instance
	WorkerName string

	// Schedule is a standard five-field cron expression
	Schedule string

	// Concurrency is the number of repositories processed at once
	Concurrency int

	// SyncBeforeAnalysis refetches issues from the source before each run
	SyncBeforeAnalysis bool

	// ShutdownTimeout is how long to wait for graceful shutdown
	ShutdownTimeout time.Duration

	// EnableRecovery enables panic recovery
	EnableRecovery bool
}

// DefaultWorkerConfig returns a worker configuration with sensible defaults
func DefaultWorkerConfig(workerName string) WorkerConfig {
	return WorkerConfig{
		WorkerName:      workerName,
		Schedule:        "0 * * * *",
		Concurrency:     2,
		ShutdownTimeout: 30 * time.Second,
		EnableRecovery:  true,
	}
}

// BaseWorker provides common functionality for workers
type BaseWorker struct {
	config  WorkerConfig
	running bool
	mu      sync.RWMutex

	// Stats tracking
	runsProcessed    int64
	runsSucceeded    int64
	runsFailed       int64
	totalProcessTime time.Duration
	startTime        time.Time
	lastRunTime      time.Time
	statsMu          sync.RWMutex
}

// NewBaseWorker creates a new base worker
func NewBaseWorker(config WorkerConfig) *BaseWorker {
	return &BaseWorker{
		config: config,
	}
}

// Name returns the worker's name
func (w *BaseWorker) Name() string {
	return w.config.WorkerName
}

// IsRunning returns whether the worker is currently running
func (w *BaseWorker) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// setRunning sets the running state
func (w *BaseWorker) setRunning(running bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = running
	if running {
		w.startTime = time.Now()
	}
}

// Stats returns worker statistics
func (w *BaseWorker) Stats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()

	var avgProcessTime time.Duration
	if w.runsProcessed > 0 {
		avgProcessTime = w.totalProcessTime / time.Duration(w.runsProcessed)
	}

	var uptime time.Duration
	if !w.startTime.IsZero() && w.IsRunning() {
		uptime = time.Since(w.startTime)
	}

	return WorkerStats{
		WorkerName:         w.config.WorkerName,
		RunsProcessed:      w.runsProcessed,
		RunsSucceeded:      w.runsSucceeded,
		RunsFailed:         w.runsFailed,
		AverageProcessTime: avgProcessTime,
		LastRunTime:        w.lastRunTime,
		Uptime:             uptime,
		IsRunning:          w.IsRunning(),
	}
}

// recordRunSuccess records a successful repository run
func (w *BaseWorker) recordRunSuccess(startTime time.Time) {
	w.recordRun(startTime, true)
}

// recordRunFailure records a failed repository run
func (w *BaseWorker) recordRunFailure(startTime time.Time) {
	w.recordRun(startTime, false)
}

func (w *BaseWorker) recordRun(startTime time.Time, ok bool) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()

	w.runsProcessed++
	if ok {
		w.runsSucceeded++
	} else {
		w.runsFailed++
	}
	w.totalProcessTime += time.Since(startTime)
	w.lastRunTime = time.Now()
}

// resetStats resets worker statistics
func (w *BaseWorker) resetStats() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()

	w.runsProcessed = 0
	w.runsSucceeded = 0
	w.runsFailed = 0
	w.totalProcessTime = 0
	w.lastRunTime = time.Time{}
}

// Config returns the worker configuration
func (w *BaseWorker) Config() WorkerConfig {
	return w.config
}

// RepositoryProcessor handles one repository
type RepositoryProcessor func(ctx context.Context, repo models.Repository) error

// RecoverableProcessor wraps a processor with panic recovery
func RecoverableProcessor(processor RepositoryProcessor) RepositoryProcessor {
	return func(ctx context.Context, repo models.Repository) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &WorkerPanicError{
					RepositoryID: repo.ID,
					Panic:        r,
				}
			}
		}()
		return processor(ctx, repo)
	}
}

// WorkerError represents a worker-specific error
type WorkerError struct {
	WorkerName string
	Operation  string
	Err        error
	Message    string
}

func (e *WorkerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	prefix := e.WorkerName + ":" + e.Operation
	if e.Err != nil {
		return prefix + ": " + e.Err.Error()
	}
	return prefix + ": unknown error"
}

func (e *WorkerError) Unwrap() error {
	return e.Err
}

// NewWorkerError creates a new worker error
func NewWorkerError(workerName, operation string, err error, message string) *WorkerError {
	return &WorkerError{
		WorkerName: workerName,
		Operation:  operation,
		Err:        err,
		Message:    message,
	}
}

// WorkerPanicError represents a panic that occurred while processing a repository
type WorkerPanicError struct {
	RepositoryID string
	Panic        interface{}
}

func (e *WorkerPanicError) Error() string {
	msg := "worker panic: " + formatPanic(e.Panic)
	if e.RepositoryID != "" {
		msg += " (repository: " + e.RepositoryID + ")"
	}
	return msg
}

func formatPanic(p interface{}) string {
	switch v := p.(type) {
	case string:
		return v
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return "unknown panic"
	}
}
