package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func countingJob(name string, interval time.Duration, counter *atomic.Int32, err error) Job {
	return Job{
		Name:     name,
		Interval: interval,
		Run: func(ctx context.Context) error {
			counter.Add(1)
			return err
		},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewWorker_Validation(t *testing.T) {
	noop := func(ctx context.Context) error { return nil }

	tests := []struct {
		name string
		jobs []Job
	}{
		{"missing name", []Job{{Interval: time.Second, Run: noop}}},
		{"zero interval", []Job{{Name: "a", Run: noop}}},
		{"missing run", []Job{{Name: "a", Interval: time.Second}}},
		{"duplicate", []Job{
			{Name: "a", Interval: time.Second, Run: noop},
			{Name: "a", Interval: time.Second, Run: noop},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWorker(WorkerConfig{Jobs: tt.jobs}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWorker_StartStop(t *testing.T) {
	var count atomic.Int32
	w, err := NewWorker(WorkerConfig{
		Jobs: []Job{countingJob("sweep", time.Hour, &count, nil)},
	})
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	if !w.Health().Running {
		t.Error("expected worker to be running")
	}

	// Start again should be no-op
	if err := w.Start(ctx); err != nil {
		t.Errorf("second start should not error: %v", err)
	}

	w.Stop()
	if w.Health().Running {
		t.Error("expected worker to be stopped")
	}

	// Stop again should be no-op
	w.Stop()
}

func TestWorker_RunsJobsOnInterval(t *testing.T) {
	var fast, slow atomic.Int32
	w, err := NewWorker(WorkerConfig{
		Jobs: []Job{
			countingJob("fast", 10*time.Millisecond, &fast, nil),
			countingJob("slow", time.Hour, &slow, nil),
		},
	})
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = w.Start(ctx)
	defer w.Stop()

	waitFor(t, func() bool { return fast.Load() >= 3 })
	if slow.Load() != 0 {
		t.Errorf("slow job ran %d times, want 0", slow.Load())
	}
}

func TestWorker_RunOnStart(t *testing.T) {
	var count atomic.Int32
	job := countingJob("janitor", time.Hour, &count, nil)
	job.RunOnStart = true

	w, err := NewWorker(WorkerConfig{Jobs: []Job{job}})
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = w.Start(ctx)
	defer w.Stop()

	waitFor(t, func() bool { return count.Load() == 1 })
}

func TestWorker_JobErrorRecordedAndLoopContinues(t *testing.T) {
	var count atomic.Int32
	w, err := NewWorker(WorkerConfig{
		Jobs: []Job{countingJob("flaky", 10*time.Millisecond, &count, errors.New("store down"))},
	})
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = w.Start(ctx)

	waitFor(t, func() bool { return count.Load() >= 2 })
	w.Stop()

	health := w.Health()
	if len(health.Jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(health.Jobs))
	}
	if health.Jobs[0].LastError != "store down" {
		t.Errorf("LastError = %q, want %q", health.Jobs[0].LastError, "store down")
	}
	if health.Jobs[0].LastRun == nil {
		t.Error("expected LastRun to be set")
	}
}

func TestWorker_RecoversFromPanic(t *testing.T) {
	var count atomic.Int32
	w, err := NewWorker(WorkerConfig{
		Jobs: []Job{{
			Name:     "panicky",
			Interval: 10 * time.Millisecond,
			Run: func(ctx context.Context) error {
				count.Add(1)
				panic("boom")
			},
		}},
	})
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = w.Start(ctx)

	waitFor(t, func() bool { return count.Load() >= 2 })
	w.Stop()

	if got := w.Health().Jobs[0].LastError; got != "panic: boom" {
		t.Errorf("LastError = %q", got)
	}
}

func TestWorker_ContextCancellation(t *testing.T) {
	var count atomic.Int32
	w, err := NewWorker(WorkerConfig{
		Jobs: []Job{countingJob("sweep", 10*time.Millisecond, &count, nil)},
	})
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	_ = w.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
