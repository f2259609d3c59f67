package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
)

// DefaultWelcomeMessage is published once for every newly connected member.
const DefaultWelcomeMessage = "Excited to be sharing updates here. More soon!"

const sweepLockName = "welcome-sweep"

// WelcomeSweep publishes the default post for identities that have a
// credential but have not received it yet.
//
// For multi-instance deployments, configure a DistributedLock so only one
// instance sweeps per tick.
type WelcomeSweep struct {
	identities driven.IdentityStore
	provider   driven.SocialProvider
	codec      driven.SecretCodec
	lock       driven.DistributedLock
	metrics    driven.MetricsRecorder
	logger     *slog.Logger
	now        func() time.Time

	message     string
	batchSize   int
	concurrency int
	lockTTL     time.Duration
}

// WelcomeSweepConfig holds configuration for the sweep.
type WelcomeSweepConfig struct {
	IdentityStore driven.IdentityStore
	Provider      driven.SocialProvider
	Codec         driven.SecretCodec
	Lock          driven.DistributedLock // Optional
	Metrics       driven.MetricsRecorder
	Logger        *slog.Logger
	Now           func() time.Time

	Message     string        // default: DefaultWelcomeMessage
	BatchSize   int           // Max identities per tick (default: 100)
	Concurrency int           // Parallel publishes per tick (default: 4)
	LockTTL     time.Duration // default: 60s
}

// SweepResult summarizes one tick.
type SweepResult struct {
	Skipped   bool // another instance held the lock
	Eligible  int
	Published int
	Failed    int
}

// NewWelcomeSweep creates a new sweep.
func NewWelcomeSweep(cfg WelcomeSweepConfig) *WelcomeSweep {
	s := &WelcomeSweep{
		identities:  cfg.IdentityStore,
		provider:    cfg.Provider,
		codec:       cfg.Codec,
		lock:        cfg.Lock,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		now:         cfg.Now,
		message:     cfg.Message,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
		lockTTL:     cfg.LockTTL,
	}
	if s.metrics == nil {
		s.metrics = driven.NopMetrics{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.message == "" {
		s.message = DefaultWelcomeMessage
	}
	if s.batchSize <= 0 {
		s.batchSize = 100
	}
	if s.concurrency <= 0 {
		s.concurrency = 4
	}
	if s.lockTTL <= 0 {
		s.lockTTL = 60 * time.Second
	}
	return s
}

// Tick runs one pass. Per-identity failures are logged and counted, never
// returned; an identity that failed stays eligible for the next tick.
func (s *WelcomeSweep) Tick(ctx context.Context) SweepResult {
	var result SweepResult

	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, sweepLockName, s.lockTTL)
		if err != nil {
			s.logger.Warn("failed to acquire sweep lock", "error", err)
			result.Skipped = true
			return result
		}
		if !acquired {
			s.logger.Debug("sweep lock held by another instance, skipping cycle")
			result.Skipped = true
			return result
		}
		defer func() {
			if err := s.lock.Release(ctx, sweepLockName); err != nil {
				s.logger.Warn("failed to release sweep lock", "error", err)
			}
		}()
		stop := s.holdLock(ctx)
		defer stop()
	}

	candidates, err := s.identities.ListWelcomeCandidates(ctx, s.now(), s.batchSize)
	if err != nil {
		s.logger.Error("failed to list sweep candidates", "error", err)
		return result
	}
	result.Eligible = len(candidates)

	var published, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, identity := range candidates {
		g.Go(func() error {
			if s.welcome(gctx, identity) {
				published.Add(1)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Published = int(published.Load())
	result.Failed = int(failed.Load())
	s.metrics.RecordSweep(result.Published, result.Failed)

	if result.Eligible > 0 {
		s.logger.Info("welcome sweep finished",
			"eligible", result.Eligible,
			"published", result.Published,
			"failed", result.Failed,
		)
	}
	return result
}

// holdLock extends the sweep lock every half TTL until the returned func
// is called. A tick can outlive one TTL when publishes are slow.
func (s *WelcomeSweep) holdLock(ctx context.Context) func() {
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(s.lockTTL / 2)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.lock.Extend(ctx, sweepLockName, s.lockTTL); err != nil {
					s.logger.Warn("failed to extend sweep lock", "error", err)
				}
			}
		}
	}()
	return func() {
		close(done)
		<-stopped
	}
}

// Run adapts Tick to the worker job signature.
func (s *WelcomeSweep) Run(ctx context.Context) error {
	s.Tick(ctx)
	return nil
}

// welcome publishes the default post for one identity.
func (s *WelcomeSweep) welcome(ctx context.Context, identity *domain.Identity) bool {
	key := domain.ByProviderUserID(identity.ProviderUserID)
	logger := s.logger.With("identity", key.String())

	result, err := publishAs(ctx, s.provider, s.codec, identity, s.message, domain.TokenGuard{Now: s.now})
	if err != nil {
		logger.Warn("welcome post skipped", "error", err)
		return false
	}

	now := s.now()
	if result.PostID != "" {
		if _, err := s.identities.AppendPost(ctx, key, domain.PostRecord{
			ProviderPostID: result.PostID,
			Text:           s.message,
			PostedAt:       now,
		}); err != nil {
			logger.Error("failed to record welcome post", "post_id", result.PostID, "error", err)
		}
	}

	// Marking is what keeps the post from repeating on the next tick.
	if _, err := s.identities.MarkWelcomePosted(ctx, key, now); err != nil {
		logger.Error("failed to mark welcome posted", "post_id", result.PostID, "error", err)
		return false
	}

	logger.Info("welcome post published", "post_id", result.PostID)
	return true
}
