package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Job is a unit of background work run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error

	// RunOnStart runs the job immediately instead of waiting one interval.
	RunOnStart bool
}

// Worker runs periodic background jobs such as the welcome sweep and the
// PKCE state janitor. Each job has its own goroutine and ticker; a slow job
// never delays another.
type Worker struct {
	jobs   []Job
	logger *slog.Logger

	// Internal state
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	runs    map[string]*jobStatus
}

type jobStatus struct {
	lastRun   time.Time
	lastError string
	runs      int
}

// WorkerConfig holds configuration for the worker.
type WorkerConfig struct {
	Jobs   []Job
	Logger *slog.Logger
}

// NewWorker creates a new job worker.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	seen := make(map[string]bool, len(cfg.Jobs))
	for _, job := range cfg.Jobs {
		switch {
		case job.Name == "":
			return nil, errors.New("job name is required")
		case seen[job.Name]:
			return nil, fmt.Errorf("duplicate job %q", job.Name)
		case job.Interval <= 0:
			return nil, fmt.Errorf("job %q: interval must be positive", job.Name)
		case job.Run == nil:
			return nil, fmt.Errorf("job %q: run func is required", job.Name)
		}
		seen[job.Name] = true
	}

	runs := make(map[string]*jobStatus, len(cfg.Jobs))
	for _, job := range cfg.Jobs {
		runs[job.Name] = &jobStatus{}
	}

	return &Worker{
		jobs:   cfg.Jobs,
		logger: logger,
		runs:   runs,
	}, nil
}

// Start begins the worker loops.
// They run until Stop is called or context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting", "jobs", len(w.jobs))

	var wg sync.WaitGroup
	for _, job := range w.jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx, job)
		}()
	}

	// Wait for all loops to finish
	go func() {
		wg.Wait()
		close(w.doneCh)
	}()

	return nil
}

// Stop gracefully stops the worker. A job that is mid-run finishes first.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

// Wait blocks until the worker stops.
func (w *Worker) Wait() {
	w.mu.RLock()
	done := w.doneCh
	w.mu.RUnlock()
	if done != nil {
		<-done
	}
}

// loop runs one job on its interval.
func (w *Worker) loop(ctx context.Context, job Job) {
	logger := w.logger.With("job", job.Name)
	logger.Debug("job loop started", "interval", job.Interval)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	if job.RunOnStart {
		w.runJob(ctx, job, logger)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Debug("job loop context cancelled")
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.runJob(ctx, job, logger)
		}
	}
}

// runJob runs a job once, recovering from panics so one bad run cannot
// take down the worker.
func (w *Worker) runJob(ctx context.Context, job Job, logger *slog.Logger) {
	startTime := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return job.Run(ctx)
	}()
	duration := time.Since(startTime)

	w.mu.Lock()
	status := w.runs[job.Name]
	status.lastRun = startTime
	status.runs++
	status.lastError = ""
	if err != nil {
		status.lastError = err.Error()
	}
	w.mu.Unlock()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Error("job failed", "duration", duration, "error", err)
		return
	}
	logger.Debug("job completed", "duration", duration)
}

// JobHealth describes the last run of a job.
type JobHealth struct {
	Name      string     `json:"name"`
	Runs      int        `json:"runs"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// Health is the worker status.
type Health struct {
	Running bool        `json:"running"`
	Jobs    []JobHealth `json:"jobs"`
}

// Health returns the health status of the worker.
func (w *Worker) Health() Health {
	w.mu.RLock()
	defer w.mu.RUnlock()

	health := Health{
		Running: w.running,
		Jobs:    make([]JobHealth, 0, len(w.jobs)),
	}
	for _, job := range w.jobs {
		status := w.runs[job.Name]
		jh := JobHealth{Name: job.Name, Runs: status.runs, LastError: status.lastError}
		if !status.lastRun.IsZero() {
			last := status.lastRun
			jh.LastRun = &last
		}
		health.Jobs = append(health.Jobs, jh)
	}
	return health
}
