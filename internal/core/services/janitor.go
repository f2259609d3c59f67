package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
)

// StateJanitor removes abandoned authorization attempts.
type StateJanitor struct {
	store   driven.PKCEStore
	metrics driven.MetricsRecorder
	logger  *slog.Logger
}

// NewStateJanitor creates a janitor for store.
func NewStateJanitor(store driven.PKCEStore, metrics driven.MetricsRecorder, logger *slog.Logger) *StateJanitor {
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StateJanitor{store: store, metrics: metrics, logger: logger}
}

// Run deletes expired PKCE entries.
func (j *StateJanitor) Run(ctx context.Context) error {
	removed, err := j.store.Cleanup(ctx)
	if err != nil {
		return fmt.Errorf("cleanup pkce states: %w", err)
	}
	j.metrics.RecordStatesCleaned(removed)
	if removed > 0 {
		j.logger.Info("expired pkce states removed", "count", removed)
	}
	return nil
}
